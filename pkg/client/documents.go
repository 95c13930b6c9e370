package client

import "strings"

// Document is a named GraphQL operation with every fragment it spreads
// appended. The root field is always aliased to "result".
type Document struct {
	Name string
	Body string
}

func newDocument(name, op string, fragments ...string) Document {
	seen := make(map[string]bool)
	var b strings.Builder
	for _, f := range fragments {
		if seen[f] {
			continue
		}
		seen[f] = true
		b.WriteString(f)
		b.WriteString("\n")
	}
	b.WriteString(op)
	return Document{Name: name, Body: b.String()}
}

const (
	errorFragment = `fragment errorFragment on ErrorType {
	field
	messages
}`
	pageFragment = `fragment pageFragment on PageType {
	previous
	current
	next
}`
	paginatorFragment = `fragment paginatorFragment on PaginatorType {
	perPage
	items
	pages
	page {
		...pageFragment
	}
}`
	userFragment = `fragment userFragment on UserType {
	id
	email
	givenName
	middleName
	familyName
	suffix
	fullName
}`
	currencyFragment = `fragment currencyFragment on CurrencyType {
	id
	abbreviation
	symbol
	name
}`
	accountFragment = `fragment accountFragment on AccountType {
	id
	currency {
		...currencyFragment
	}
	name
	balance
	futureBalance
}`
	tagFragment = `fragment tagFragment on TagType {
	id
	name
}`
	transactionFragment = `fragment transactionFragment on TransactionType {
	id
	account {
		...accountFragment
	}
	amount
	datetime
	name
	description
	tagSet {
		...tagFragment
	}
	resultingAccountBalance
}`
)

var (
	paginatorFragments   = []string{pageFragment, paginatorFragment}
	currencyFragments    = []string{currencyFragment}
	accountFragments     = []string{currencyFragment, accountFragment}
	tagFragments         = []string{tagFragment}
	transactionFragments = []string{currencyFragment, accountFragment, tagFragment, transactionFragment}
)

// EntityDocuments holds the five CRUD documents shared by every entity.
type EntityDocuments struct {
	Create, List, Get, Update, Delete Document
}

// newEntityDocuments derives the CRUD documents from the schema's naming
// convention: entity "Account" gives CreateAccountMutationInput,
// listAccounts, GetAccountQueryInput and so on.
func newEntityDocuments(entity, plural, fragment string, fragments []string) EntityDocuments {
	mutation := func(verb, variable string) Document {
		name := verb + entity
		op := "mutation " + name + "($" + variable + ": " + name + "MutationInput!) {\n" +
			"\tresult: " + lowerFirst(name) + "(input: $" + variable + ") {\n" +
			"\t\tdata {\n\t\t\t..." + fragment + "\n\t\t}\n" +
			"\t\terrors {\n\t\t\t...errorFragment\n\t\t}\n\t}\n}"
		return newDocument(name, op, append(append([]string{}, fragments...), errorFragment)...)
	}
	listName := "List" + plural
	list := "query " + listName + "(\n" +
		"\t$filter: " + entity + "FilterQueryInput\n" +
		"\t$order: [" + entity + "OrderQueryInput!]\n" +
		"\t$paginator: PaginatorQueryInput\n) {\n" +
		"\tresult: list" + plural + "(filter: $filter, order: $order, paginator: $paginator) {\n" +
		"\t\tdata {\n\t\t\t..." + fragment + "\n\t\t}\n" +
		"\t\tpaginator {\n\t\t\t...paginatorFragment\n\t\t}\n\t}\n}"
	getName := "Get" + entity
	get := "query " + getName + "($input: " + getName + "QueryInput!) {\n" +
		"\tresult: get" + entity + "(input: $input) {\n" +
		"\t\tdata {\n\t\t\t..." + fragment + "\n\t\t}\n\t}\n}"
	lower := lowerFirst(entity)
	return EntityDocuments{
		Create: mutation("Create", lower),
		List:   newDocument(listName, list, append(append([]string{}, fragments...), paginatorFragments...)...),
		Get:    newDocument(getName, get, fragments...),
		Update: mutation("Update", lower),
		Delete: mutation("Delete", "input"),
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// Entity documents.
var (
	CurrencyDocuments    = newEntityDocuments("Currency", "Currencies", "currencyFragment", currencyFragments)
	AccountDocuments     = newEntityDocuments("Account", "Accounts", "accountFragment", accountFragments)
	TagDocuments         = newEntityDocuments("Tag", "Tags", "tagFragment", tagFragments)
	TransactionDocuments = newEntityDocuments("Transaction", "Transactions", "transactionFragment", transactionFragments)
)

// Existence probes.
var (
	AccountExisting = newDocument("AccountExisting", `query AccountExisting($currency: ID!, $name: String!) {
	result: accountExisting(currency: $currency, name: $name)
}`)
	TagExisting = newDocument("TagExisting", `query TagExisting($name: String!) {
	result: tagExisting(name: $name)
}`)
	AuthExisting = newDocument("AuthExisting", `query AuthExisting($email: String!) {
	result: authExisting(email: $email)
}`)
)

// Authentication documents.
var (
	AuthSignIn = newDocument("AuthSignIn", `mutation AuthSignIn($email: String!, $password: String!) {
	result: authSignIn(email: $email, password: $password) {
		token
		refreshExpiresIn
		user {
			...userFragment
		}
	}
}`, userFragment)
	AuthVerify = newDocument("AuthVerify", `mutation AuthVerify($token: String!) {
	result: authVerify(token: $token) {
		user {
			...userFragment
		}
	}
}`, userFragment)
	AuthSignUp = newDocument("AuthSignUp", `mutation AuthSignUp($user: CreateUserMutationInput!) {
	result: authSignUp(input: $user) {
		data {
			...userFragment
		}
		errors {
			...errorFragment
		}
	}
}`, userFragment, errorFragment)
	AuthSendReset = newDocument("AuthSendReset", `mutation AuthSendReset($email: String!) {
	result: authSendReset(email: $email) {
		data
		errors {
			...errorFragment
		}
	}
}`, errorFragment)
	AuthVerifyReset = newDocument("AuthVerifyReset", `mutation AuthVerifyReset($token: String!) {
	result: authVerifyReset(token: $token) {
		data {
			...userFragment
		}
		errors {
			...errorFragment
		}
	}
}`, userFragment, errorFragment)
	AuthApplyReset = newDocument("AuthApplyReset", `mutation AuthApplyReset($input: ApplyResetMutationInput!) {
	result: authApplyReset(input: $input) {
		data {
			...userFragment
		}
		errors {
			...errorFragment
		}
	}
}`, userFragment, errorFragment)
)

// Signed-in user documents.
var (
	GetUser = newDocument("GetUser", `query GetUser {
	result: getUser {
		data {
			...userFragment
		}
	}
}`, userFragment)
	UpdateUser = newDocument("UpdateUser", `mutation UpdateUser($user: UpdateUserMutationInput!) {
	result: updateUser(input: $user) {
		data {
			...userFragment
		}
		errors {
			...errorFragment
		}
	}
}`, userFragment, errorFragment)
	DeleteUser = newDocument("DeleteUser", `mutation DeleteUser($input: DeleteUserMutationInput!) {
	result: deleteUser(input: $input) {
		data {
			...userFragment
		}
		errors {
			...errorFragment
		}
	}
}`, userFragment, errorFragment)
)
