package domain

import "github.com/shopspring/decimal"

// Account holds money in a single currency. Balances are computed server-side.
type Account struct {
	ID            string              `json:"id"`
	Currency      Currency            `json:"currency"`
	Name          string              `json:"name"`
	Balance       decimal.NullDecimal `json:"balance"`
	FutureBalance decimal.NullDecimal `json:"futureBalance"`
}

// CreateAccountInput creates an account in the given currency.
type CreateAccountInput struct {
	ClientMutationID string `json:"clientMutationId,omitempty"`
	Currency         string `json:"currency" validate:"required"`
	Name             string `json:"name" validate:"required,max=50"`
}

// UpdateAccountInput changes an account.
type UpdateAccountInput struct {
	ClientMutationID string  `json:"clientMutationId,omitempty"`
	ID               string  `json:"id" validate:"required"`
	Currency         *string `json:"currency,omitempty"`
	Name             *string `json:"name,omitempty" validate:"omitempty,max=50"`
}

// AccountFilter narrows account lists.
type AccountFilter struct {
	CurrencyIDContains *string `json:"currency_Id_Icontains,omitempty"`
	IDContains         *string `json:"id_Icontains,omitempty"`
	NameContains       *string `json:"name_Icontains,omitempty"`
}

// AccountOrder is a sort key understood by listAccounts.
type AccountOrder string

const (
	AccountCurrencyAsc  AccountOrder = "CURRENCY_ASC"
	AccountCurrencyDesc AccountOrder = "CURRENCY_DESC"
	AccountIDAsc        AccountOrder = "ID_ASC"
	AccountIDDesc       AccountOrder = "ID_DESC"
	AccountNameAsc      AccountOrder = "NAME_ASC"
	AccountNameDesc     AccountOrder = "NAME_DESC"
)

// AccountOrders lists every valid AccountOrder.
var AccountOrders = []AccountOrder{
	AccountCurrencyAsc, AccountCurrencyDesc,
	AccountIDAsc, AccountIDDesc,
	AccountNameAsc, AccountNameDesc,
}
