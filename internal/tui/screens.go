package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/thriftease/thriftease/internal/store"
	"github.com/thriftease/thriftease/internal/validate"
	"github.com/thriftease/thriftease/pkg/domain"
)

func searchTerm(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// firstError wraps a single field message as an ErrorList.
func firstError(field, msg string) domain.ErrorList {
	return domain.ErrorList{{Field: field, Messages: []string{msg}}}
}

func newCurrenciesModel(s *store.Currencies) listModel[domain.Currency] {
	return newListModel(listConfig[domain.Currency]{
		title: "Currencies",
		noun:  "currency",
		columns: []column[domain.Currency]{
			{"CODE", 8, func(c domain.Currency) string { return c.Abbreviation }},
			{"SYMBOL", 6, func(c domain.Currency) string { return c.Symbol }},
			{"NAME", 30, func(c domain.Currency) string { return c.Name }},
		},
		id:    func(c domain.Currency) string { return c.ID },
		label: func(c domain.Currency) string { return c.Abbreviation },
		load: func(ctx context.Context, page int, search string) store.Result[store.Page[domain.Currency]] {
			return s.List(ctx, store.CurrencyListParams{
				Filter:    &domain.CurrencyFilter{NameContains: searchTerm(search)},
				Order:     []domain.CurrencyOrder{domain.CurrencyAbbreviationAsc},
				Paginator: domain.NewPaginatorInput(page, perPage),
			})
		},
		remove: s.Delete,
		newForm: func() form {
			return newForm(
				field{name: "abbreviation", label: "code", hint: "USD, then ctrl+g to fill"},
				field{name: "symbol", label: "symbol"},
				field{name: "name", label: "name"},
			)
		},
		fill: func(ctx context.Context, f form) map[string]string {
			code := f.value("abbreviation")
			for _, g := range s.ListGiven(ctx) {
				if strings.EqualFold(g.Abbreviation, code) {
					return map[string]string{"abbreviation": strings.ToUpper(g.Abbreviation), "symbol": g.Symbol, "name": g.Name}
				}
			}
			return nil
		},
		create: func(ctx context.Context, f form) (domain.ErrorList, error) {
			in := domain.CreateCurrencyInput{
				Abbreviation: f.value("abbreviation"),
				Symbol:       f.value("symbol"),
				Name:         f.value("name"),
			}
			if errs := validate.Struct(in); errs != nil {
				return errs, nil
			}
			res := s.Create(ctx, in)
			return res.Errors, res.Err
		},
	})
}

func newAccountsModel(s *store.Accounts, currencies *store.Currencies) listModel[domain.Account] {
	return newListModel(listConfig[domain.Account]{
		title: "Accounts",
		noun:  "account",
		columns: []column[domain.Account]{
			{"NAME", 24, func(a domain.Account) string { return a.Name }},
			{"CUR", 5, func(a domain.Account) string { return a.Currency.Abbreviation }},
			{"BALANCE", 16, func(a domain.Account) string { return formatBalance(a.Balance, a.Currency.Symbol) }},
			{"FUTURE", 16, func(a domain.Account) string { return formatBalance(a.FutureBalance, a.Currency.Symbol) }},
		},
		id:    func(a domain.Account) string { return a.ID },
		label: func(a domain.Account) string { return a.Name },
		load: func(ctx context.Context, page int, search string) store.Result[store.Page[domain.Account]] {
			return s.List(ctx, store.AccountListParams{
				Filter:    &domain.AccountFilter{NameContains: searchTerm(search)},
				Order:     []domain.AccountOrder{domain.AccountNameAsc},
				Paginator: domain.NewPaginatorInput(page, perPage),
			})
		},
		summary: func(ctx context.Context, items []domain.Account) string {
			return accountsTotal(ctx, currencies, items)
		},
		remove: s.Delete,
		newForm: func() form {
			return newForm(
				field{name: "currency", label: "currency id"},
				field{name: "name", label: "name"},
			)
		},
		probe: &probe{field: "name", check: func(ctx context.Context, f form) (bool, string) {
			return s.Existing(ctx, f.value("currency"), f.value("name")),
				"An account with this name already exists for this currency."
		}},
		create: func(ctx context.Context, f form) (domain.ErrorList, error) {
			in := domain.CreateAccountInput{Currency: f.value("currency"), Name: f.value("name")}
			if errs := validate.Struct(in); errs != nil {
				return errs, nil
			}
			res := s.Create(ctx, in)
			return res.Errors, res.Err
		},
	})
}

// accountsTotal converts every balance to the first account's currency
// concurrently and reports the sum. Accounts without a rate count at face
// value, as Convert does.
func accountsTotal(ctx context.Context, currencies *store.Currencies, items []domain.Account) string {
	if len(items) == 0 || currencies == nil {
		return ""
	}
	target := items[0].Currency

	var (
		mu    sync.Mutex
		total decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, a := range items {
		if !a.Balance.Valid {
			continue
		}
		a := a
		g.Go(func() error {
			v := currencies.Convert(gctx, a.Balance.Decimal, a.Currency.Abbreviation, target.Abbreviation)
			mu.Lock()
			total = total.Add(v)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ""
	}
	return fmt.Sprintf("total on this page ≈ %s %s (%s)", target.Symbol, total.StringFixed(2), target.Abbreviation)
}

func newTagsModel(s *store.Tags) listModel[domain.Tag] {
	return newListModel(listConfig[domain.Tag]{
		title: "Tags",
		noun:  "tag",
		columns: []column[domain.Tag]{
			{"ID", 6, func(t domain.Tag) string { return t.ID }},
			{"NAME", 40, func(t domain.Tag) string { return tagStyle.Render(t.Name) }},
		},
		id:    func(t domain.Tag) string { return t.ID },
		label: func(t domain.Tag) string { return t.Name },
		load: func(ctx context.Context, page int, search string) store.Result[store.Page[domain.Tag]] {
			return s.List(ctx, store.TagListParams{
				Filter:    &domain.TagFilter{NameContains: searchTerm(search)},
				Order:     []domain.TagOrder{domain.TagNameAsc},
				Paginator: domain.NewPaginatorInput(page, perPage),
			})
		},
		remove: s.Delete,
		newForm: func() form {
			return newForm(field{name: "name", label: "name"})
		},
		probe: &probe{field: "name", check: func(ctx context.Context, f form) (bool, string) {
			return s.Existing(ctx, f.value("name")), "A tag with this name already exists."
		}},
		create: func(ctx context.Context, f form) (domain.ErrorList, error) {
			in := domain.CreateTagInput{Name: f.value("name")}
			if errs := validate.Struct(in); errs != nil {
				return errs, nil
			}
			res := s.Create(ctx, in)
			return res.Errors, res.Err
		},
	})
}

func newTransactionsModel(s *store.Transactions) listModel[domain.Transaction] {
	return newListModel(listConfig[domain.Transaction]{
		title: "Transactions",
		noun:  "transaction",
		columns: []column[domain.Transaction]{
			{"WHEN", 16, func(t domain.Transaction) string { return formatDatetime(t.Datetime) }},
			{"ACCOUNT", 14, func(t domain.Transaction) string { return t.Account.Name }},
			{"AMOUNT", 14, func(t domain.Transaction) string { return formatAmount(t.Amount, t.Account.Currency.Symbol) }},
			{"NAME", 20, func(t domain.Transaction) string { return t.Name }},
			{"TAGS", 20, func(t domain.Transaction) string { return tagStyle.Render(strings.Join(t.TagNames(), ", ")) }},
		},
		id:    func(t domain.Transaction) string { return t.ID },
		label: func(t domain.Transaction) string { return t.Name },
		load: func(ctx context.Context, page int, search string) store.Result[store.Page[domain.Transaction]] {
			return s.List(ctx, store.TransactionListParams{
				Filter:    &domain.TransactionFilter{NameContains: searchTerm(search)},
				Order:     []domain.TransactionOrder{domain.TransactionDatetimeDesc},
				Paginator: domain.NewPaginatorInput(page, perPage),
			})
		},
		remove: s.Delete,
		newForm: func() form {
			return newForm(
				field{name: "account", label: "account id"},
				field{name: "amount", label: "amount", hint: "-12.50"},
				field{name: "datetime", label: "when", hint: "now, or " + datetimeLayout},
				field{name: "name", label: "name"},
				field{name: "description", label: "description"},
				field{name: "tags", label: "tags", hint: "comma separated"},
			)
		},
		create: func(ctx context.Context, f form) (domain.ErrorList, error) {
			in, errs := transactionInput(f, time.Now())
			if errs != nil {
				return errs, nil
			}
			res := s.Create(ctx, in)
			return res.Errors, res.Err
		},
	})
}

// transactionInput parses the transaction form. A blank time means now.
func transactionInput(f form, now time.Time) (domain.CreateTransactionInput, domain.ErrorList) {
	in := domain.CreateTransactionInput{
		Account:     f.value("account"),
		Name:        optional(f.value("name")),
		Description: optional(f.value("description")),
		Tags:        splitList(f.value("tags")),
	}
	raw := f.value("amount")
	if !validate.Decimal(raw) {
		return in, firstError("amount", "Enter a number.")
	}
	amount := decimal.RequireFromString(raw)
	in.Amount = &amount

	when := now
	if s := f.value("datetime"); s != "" {
		t, err := time.ParseInLocation(datetimeLayout, s, time.Local)
		if err != nil {
			return in, firstError("datetime", "Use the form "+datetimeLayout+".")
		}
		when = t
	}
	in.Datetime = &when
	return in, validate.Struct(in)
}
