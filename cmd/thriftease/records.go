package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/thriftease/thriftease/internal/store"
	"github.com/thriftease/thriftease/internal/validate"
	"github.com/thriftease/thriftease/pkg/domain"
)

const datetimeLayout = "2006-01-02 15:04"

var (
	currencyOrders = []domain.CurrencyOrder{
		domain.CurrencyAbbreviationAsc, domain.CurrencyAbbreviationDesc,
		domain.CurrencyIDAsc, domain.CurrencyIDDesc,
		domain.CurrencyNameAsc, domain.CurrencyNameDesc,
		domain.CurrencySymbolAsc, domain.CurrencySymbolDesc,
		domain.CurrencyUserAsc, domain.CurrencyUserDesc,
	}
	accountOrders = []domain.AccountOrder{
		domain.AccountCurrencyAsc, domain.AccountCurrencyDesc,
		domain.AccountIDAsc, domain.AccountIDDesc,
		domain.AccountNameAsc, domain.AccountNameDesc,
	}
	tagOrders = []domain.TagOrder{
		domain.TagIDAsc, domain.TagIDDesc,
		domain.TagNameAsc, domain.TagNameDesc,
		domain.TagUserAsc, domain.TagUserDesc,
	}
	transactionOrders = []domain.TransactionOrder{
		domain.TransactionDatetimeAsc, domain.TransactionDatetimeDesc,
		domain.TransactionIDAsc, domain.TransactionIDDesc,
	}
)

// parseOrders accepts order keys case-insensitively and rejects unknown ones.
func parseOrders[O ~string](raw []string, allowed []O) ([]O, error) {
	var out []O
	for _, r := range raw {
		o := O(strings.ToUpper(strings.TrimSpace(r)))
		if !slices.Contains(allowed, o) {
			names := make([]string, len(allowed))
			for i, a := range allowed {
				names[i] = string(a)
			}
			return nil, cli.Exit(fmt.Sprintf("order: unknown key %q (want one of %s)", r, strings.Join(names, ", ")), 1)
		}
		out = append(out, o)
	}
	return out, nil
}

func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "page", Value: 1},
		&cli.IntFlag{Name: "per-page", Value: 20},
		&cli.StringSliceFlag{Name: "order", Usage: "sort key, repeatable"},
		&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "name contains"},
	}
}

func paginator(c *cli.Context) *domain.PaginatorInput {
	return domain.NewPaginatorInput(c.Int("page"), c.Int("per-page"))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deleteCommand[T any](noun string, remove func(c *cli.Context, id string) store.Result[T]) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "delete a " + noun,
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return cli.Exit("id: This field is required.", 1)
			}
			if err := check(c, remove(c, id)); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Deleted %s %s\n", noun, id)
			return nil
		},
	}
}

// getCommand fetches one record by id and prints it with show.
func getCommand[T any](noun string, fetch func(c *cli.Context, id string) store.Result[T], show func(v T) [][2]string) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "show one " + noun,
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return cli.Exit("id: This field is required.", 1)
			}
			res := fetch(c, id)
			if err := check(c, res); err != nil {
				return err
			}
			if res.Data == nil {
				return cli.Exit(fmt.Sprintf("no %s with id %s", noun, id), 1)
			}
			printDetails(c.App.Writer, show(*res.Data))
			return nil
		},
	}
}

// updateCommand reads the id argument and lets build turn the given flags into
// a request. build returns a nil send when no field flag was given.
func updateCommand[T any](noun string, flags []cli.Flag,
	build func(c *cli.Context, id string) (send func() store.Result[T], errs domain.ErrorList),
	show func(v T) [][2]string) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "change a " + noun + "; only the given flags are sent",
		ArgsUsage: "<id>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return cli.Exit("id: This field is required.", 1)
			}
			send, errs := build(c, id)
			if errs != nil {
				printErrors(c.App.ErrWriter, errs)
				return cli.Exit("", 1)
			}
			if send == nil {
				return cli.Exit("nothing to update: pass at least one field flag", 1)
			}
			res := send()
			if err := check(c, res); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Updated %s %s\n", noun, id)
			if res.Data != nil {
				printDetails(c.App.Writer, show(*res.Data))
			}
			return nil
		},
	}
}

// flagValue returns a pointer to the trimmed flag value when the flag was
// given, so an explicit empty value still reaches the server.
func flagValue(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := strings.TrimSpace(c.String(name))
	return &v
}

func currencyDetails(cur domain.Currency) [][2]string {
	return [][2]string{{"id", cur.ID}, {"code", cur.Abbreviation}, {"symbol", cur.Symbol}, {"name", cur.Name}}
}

func accountDetails(a domain.Account) [][2]string {
	return [][2]string{
		{"id", a.ID},
		{"name", a.Name},
		{"currency", a.Currency.Abbreviation},
		{"balance", balance(a.Balance, a.Currency.Symbol)},
		{"future", balance(a.FutureBalance, a.Currency.Symbol)},
	}
}

func tagDetails(t domain.Tag) [][2]string {
	return [][2]string{{"id", t.ID}, {"name", t.Name}}
}

func transactionDetails(t domain.Transaction) [][2]string {
	return [][2]string{
		{"id", t.ID},
		{"when", t.Datetime.Local().Format(datetimeLayout)},
		{"account", t.Account.Name},
		{"amount", amount(t.Amount, t.Account.Currency.Symbol)},
		{"name", t.Name},
		{"description", t.Description},
		{"tags", strings.Join(t.TagNames(), ", ")},
		{"balance after", balance(t.ResultingAccountBalance, t.Account.Currency.Symbol)},
	}
}

func currenciesCommand() *cli.Command {
	return &cli.Command{
		Name:    "currencies",
		Aliases: []string{"currency"},
		Usage:   "manage currencies",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list currencies",
				Flags: listFlags(),
				Action: func(c *cli.Context) error {
					order, err := parseOrders(c.StringSlice("order"), currencyOrders)
					if err != nil {
						return err
					}
					res := depsFrom(c).stores.Currencies.List(c.Context, store.CurrencyListParams{
						Filter:    &domain.CurrencyFilter{NameContains: optional(c.String("search"))},
						Order:     order,
						Paginator: paginator(c),
					})
					if err := check(c, res); err != nil {
						return err
					}
					rows := make([][]string, 0, len(res.Data.Items))
					for _, cur := range res.Data.Items {
						rows = append(rows, []string{cur.ID, cur.Abbreviation, cur.Symbol, cur.Name})
					}
					printTable(c.App.Writer, []string{"ID", "CODE", "SYMBOL", "NAME"}, rows)
					printPaginator(c.App.Writer, res.Data.Paginator, "currencies")
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "create a currency; --code alone fills the rest from the catalogue",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "code", Required: true},
					&cli.StringFlag{Name: "symbol"},
					&cli.StringFlag{Name: "name"},
				},
				Action: func(c *cli.Context) error {
					s := depsFrom(c).stores.Currencies
					in := domain.CreateCurrencyInput{
						Abbreviation: strings.ToUpper(strings.TrimSpace(c.String("code"))),
						Symbol:       strings.TrimSpace(c.String("symbol")),
						Name:         strings.TrimSpace(c.String("name")),
					}
					if in.Symbol == "" || in.Name == "" {
						for _, g := range s.ListGiven(c.Context) {
							if strings.EqualFold(g.Abbreviation, in.Abbreviation) {
								if in.Symbol == "" {
									in.Symbol = g.Symbol
								}
								if in.Name == "" {
									in.Name = g.Name
								}
								break
							}
						}
					}
					if errs := validate.Struct(in); errs != nil {
						printErrors(c.App.ErrWriter, errs)
						return cli.Exit("", 1)
					}
					res := s.Create(c.Context, in)
					if err := check(c, res); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Created currency %s (%s)\n", res.Data.Abbreviation, res.Data.ID)
					return nil
				},
			},
			getCommand("currency", func(c *cli.Context, id string) store.Result[domain.Currency] {
				return depsFrom(c).stores.Currencies.Get(c.Context, id)
			}, currencyDetails),
			currencyUpdateCommand(),
			deleteCommand("currency", func(c *cli.Context, id string) store.Result[domain.Currency] {
				return depsFrom(c).stores.Currencies.Delete(c.Context, id)
			}),
			{
				Name:  "given",
				Usage: "list well-known currencies from the rate service",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}},
				},
				Action: func(c *cli.Context) error {
					given := depsFrom(c).stores.Currencies.ListGiven(c.Context)
					if len(given) == 0 {
						return cli.Exit("error: the currency catalogue is unavailable", 1)
					}
					term := strings.ToLower(c.String("search"))
					var rows [][]string
					for _, g := range given {
						if term != "" && !strings.Contains(strings.ToLower(g.Abbreviation+" "+g.Name), term) {
							continue
						}
						rows = append(rows, []string{g.Abbreviation, g.Name})
					}
					printTable(c.App.Writer, []string{"CODE", "NAME"}, rows)
					return nil
				},
			},
		},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "convert an amount between currencies",
		ArgsUsage: "<value> <from> <to>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return cli.Exit("usage: thriftease convert <value> <from> <to>", 1)
			}
			value, err := decimal.NewFromString(c.Args().Get(0))
			if err != nil {
				return cli.Exit("value: Enter a number.", 1)
			}
			from, to := strings.ToUpper(c.Args().Get(1)), strings.ToUpper(c.Args().Get(2))
			s := depsFrom(c).stores.Currencies
			if _, ok := s.Rate(c.Context, from, to); !ok {
				fmt.Fprintf(c.App.ErrWriter, "no rate for %s to %s, showing the value unchanged\n", from, to)
			}
			out := s.Convert(c.Context, value, from, to)
			fmt.Fprintf(c.App.Writer, "%s %s = %s %s\n", value.String(), from, out.StringFixed(2), to)
			return nil
		},
	}
}

func accountsCommand() *cli.Command {
	return &cli.Command{
		Name:    "accounts",
		Aliases: []string{"account"},
		Usage:   "manage accounts",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list accounts",
				Flags: listFlags(),
				Action: func(c *cli.Context) error {
					order, err := parseOrders(c.StringSlice("order"), accountOrders)
					if err != nil {
						return err
					}
					res := depsFrom(c).stores.Accounts.List(c.Context, store.AccountListParams{
						Filter:    &domain.AccountFilter{NameContains: optional(c.String("search"))},
						Order:     order,
						Paginator: paginator(c),
					})
					if err := check(c, res); err != nil {
						return err
					}
					rows := make([][]string, 0, len(res.Data.Items))
					for _, a := range res.Data.Items {
						rows = append(rows, []string{a.ID, a.Name, a.Currency.Abbreviation,
							balance(a.Balance, a.Currency.Symbol), balance(a.FutureBalance, a.Currency.Symbol)})
					}
					printTable(c.App.Writer, []string{"ID", "NAME", "CUR", "BALANCE", "FUTURE"}, rows)
					printPaginator(c.App.Writer, res.Data.Paginator, "accounts")
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "currency", Usage: "currency id", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
				},
				Action: func(c *cli.Context) error {
					in := domain.CreateAccountInput{Currency: c.String("currency"), Name: strings.TrimSpace(c.String("name"))}
					if errs := validate.Struct(in); errs != nil {
						printErrors(c.App.ErrWriter, errs)
						return cli.Exit("", 1)
					}
					res := depsFrom(c).stores.Accounts.Create(c.Context, in)
					if err := check(c, res); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Created account %s (%s)\n", res.Data.Name, res.Data.ID)
					return nil
				},
			},
			getCommand("account", func(c *cli.Context, id string) store.Result[domain.Account] {
				return depsFrom(c).stores.Accounts.Get(c.Context, id)
			}, accountDetails),
			accountUpdateCommand(),
			deleteCommand("account", func(c *cli.Context, id string) store.Result[domain.Account] {
				return depsFrom(c).stores.Accounts.Delete(c.Context, id)
			}),
		},
	}
}

func tagsCommand() *cli.Command {
	return &cli.Command{
		Name:    "tags",
		Aliases: []string{"tag"},
		Usage:   "manage tags",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list tags",
				Flags: listFlags(),
				Action: func(c *cli.Context) error {
					order, err := parseOrders(c.StringSlice("order"), tagOrders)
					if err != nil {
						return err
					}
					res := depsFrom(c).stores.Tags.List(c.Context, store.TagListParams{
						Filter:    &domain.TagFilter{NameContains: optional(c.String("search"))},
						Order:     order,
						Paginator: paginator(c),
					})
					if err := check(c, res); err != nil {
						return err
					}
					rows := make([][]string, 0, len(res.Data.Items))
					for _, t := range res.Data.Items {
						rows = append(rows, []string{t.ID, t.Name})
					}
					printTable(c.App.Writer, []string{"ID", "NAME"}, rows)
					printPaginator(c.App.Writer, res.Data.Paginator, "tags")
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "create a tag",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
				},
				Action: func(c *cli.Context) error {
					in := domain.CreateTagInput{Name: strings.TrimSpace(c.String("name"))}
					if errs := validate.Struct(in); errs != nil {
						printErrors(c.App.ErrWriter, errs)
						return cli.Exit("", 1)
					}
					res := depsFrom(c).stores.Tags.Create(c.Context, in)
					if err := check(c, res); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Created tag %s (%s)\n", res.Data.Name, res.Data.ID)
					return nil
				},
			},
			getCommand("tag", func(c *cli.Context, id string) store.Result[domain.Tag] {
				return depsFrom(c).stores.Tags.Get(c.Context, id)
			}, tagDetails),
			tagUpdateCommand(),
			deleteCommand("tag", func(c *cli.Context, id string) store.Result[domain.Tag] {
				return depsFrom(c).stores.Tags.Delete(c.Context, id)
			}),
		},
	}
}

func transactionsCommand() *cli.Command {
	return &cli.Command{
		Name:    "transactions",
		Aliases: []string{"transaction", "tx"},
		Usage:   "manage transactions",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list transactions, newest first unless --order is given",
				Flags: append(listFlags(), &cli.StringFlag{Name: "account", Usage: "account id"}),
				Action: func(c *cli.Context) error {
					order, err := parseOrders(c.StringSlice("order"), transactionOrders)
					if err != nil {
						return err
					}
					if len(order) == 0 {
						order = []domain.TransactionOrder{domain.TransactionDatetimeDesc}
					}
					res := depsFrom(c).stores.Transactions.List(c.Context, store.TransactionListParams{
						Filter: &domain.TransactionFilter{
							NameContains:      optional(c.String("search")),
							AccountIDContains: optional(c.String("account")),
						},
						Order:     order,
						Paginator: paginator(c),
					})
					if err := check(c, res); err != nil {
						return err
					}
					rows := make([][]string, 0, len(res.Data.Items))
					for _, t := range res.Data.Items {
						rows = append(rows, []string{
							t.ID,
							t.Datetime.Local().Format(datetimeLayout),
							t.Account.Name,
							amount(t.Amount, t.Account.Currency.Symbol),
							t.Name,
							strings.Join(t.TagNames(), ", "),
						})
					}
					printTable(c.App.Writer, []string{"ID", "WHEN", "ACCOUNT", "AMOUNT", "NAME", "TAGS"}, rows)
					printPaginator(c.App.Writer, res.Data.Paginator, "transactions")
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "record a transaction",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Usage: "account id", Required: true},
					&cli.StringFlag{Name: "amount", Usage: "negative for spending", Required: true},
					&cli.StringFlag{Name: "datetime", Usage: "defaults to now, " + datetimeLayout},
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "description"},
					&cli.StringSliceFlag{Name: "tag", Usage: "tag name, repeatable; created when missing"},
				},
				Action: func(c *cli.Context) error {
					in, errs := transactionInput(c, time.Now())
					if errs != nil {
						printErrors(c.App.ErrWriter, errs)
						return cli.Exit("", 1)
					}
					res := depsFrom(c).stores.Transactions.Create(c.Context, in)
					if err := check(c, res); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Recorded %s on %s (%s)\n",
						res.Data.Amount.StringFixed(2), res.Data.Account.Name, res.Data.ID)
					return nil
				},
			},
			getCommand("transaction", func(c *cli.Context, id string) store.Result[domain.Transaction] {
				return depsFrom(c).stores.Transactions.Get(c.Context, id)
			}, transactionDetails),
			transactionUpdateCommand(),
			deleteCommand("transaction", func(c *cli.Context, id string) store.Result[domain.Transaction] {
				return depsFrom(c).stores.Transactions.Delete(c.Context, id)
			}),
		},
	}
}

func transactionInput(c *cli.Context, now time.Time) (domain.CreateTransactionInput, domain.ErrorList) {
	in := domain.CreateTransactionInput{
		Account:     c.String("account"),
		Name:        optional(c.String("name")),
		Description: optional(c.String("description")),
		Tags:        c.StringSlice("tag"),
	}
	raw := strings.TrimSpace(c.String("amount"))
	if !validate.Decimal(raw) {
		return in, domain.ErrorList{{Field: "amount", Messages: []string{"Enter a number."}}}
	}
	v := decimal.RequireFromString(raw)
	in.Amount = &v

	when := now
	if s := strings.TrimSpace(c.String("datetime")); s != "" {
		t, err := time.ParseInLocation(datetimeLayout, s, time.Local)
		if err != nil {
			return in, domain.ErrorList{{Field: "datetime", Messages: []string{"Use the form " + datetimeLayout + "."}}}
		}
		when = t
	}
	in.Datetime = &when
	return in, validate.Struct(in)
}

func currencyUpdateCommand() *cli.Command {
	return updateCommand("currency",
		[]cli.Flag{&cli.StringFlag{Name: "symbol"}, &cli.StringFlag{Name: "name"}},
		func(c *cli.Context, id string) (func() store.Result[domain.Currency], domain.ErrorList) {
			in := domain.UpdateCurrencyInput{ID: id, Symbol: flagValue(c, "symbol"), Name: flagValue(c, "name")}
			if errs := validate.Struct(in); errs != nil {
				return nil, errs
			}
			if in.Symbol == nil && in.Name == nil {
				return nil, nil
			}
			return func() store.Result[domain.Currency] {
				return depsFrom(c).stores.Currencies.Update(c.Context, in)
			}, nil
		}, currencyDetails)
}

func accountUpdateCommand() *cli.Command {
	return updateCommand("account",
		[]cli.Flag{&cli.StringFlag{Name: "currency", Usage: "currency id"}, &cli.StringFlag{Name: "name"}},
		func(c *cli.Context, id string) (func() store.Result[domain.Account], domain.ErrorList) {
			in := domain.UpdateAccountInput{ID: id, Currency: flagValue(c, "currency"), Name: flagValue(c, "name")}
			if errs := validate.Struct(in); errs != nil {
				return nil, errs
			}
			if in.Currency == nil && in.Name == nil {
				return nil, nil
			}
			return func() store.Result[domain.Account] {
				return depsFrom(c).stores.Accounts.Update(c.Context, in)
			}, nil
		}, accountDetails)
}

func tagUpdateCommand() *cli.Command {
	return updateCommand("tag",
		[]cli.Flag{&cli.StringFlag{Name: "name"}},
		func(c *cli.Context, id string) (func() store.Result[domain.Tag], domain.ErrorList) {
			in := domain.UpdateTagInput{ID: id, Name: flagValue(c, "name")}
			if errs := validate.Struct(in); errs != nil {
				return nil, errs
			}
			if in.Name == nil {
				return nil, nil
			}
			return func() store.Result[domain.Tag] {
				return depsFrom(c).stores.Tags.Update(c.Context, in)
			}, nil
		}, tagDetails)
}

func transactionUpdateCommand() *cli.Command {
	return updateCommand("transaction",
		[]cli.Flag{
			&cli.StringFlag{Name: "account", Usage: "account id"},
			&cli.StringFlag{Name: "amount"},
			&cli.StringFlag{Name: "datetime", Usage: datetimeLayout},
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "description"},
			&cli.StringSliceFlag{Name: "add-tag", Usage: "tag name to add, repeatable"},
			&cli.StringSliceFlag{Name: "remove-tag", Usage: "tag name to remove, repeatable"},
		},
		func(c *cli.Context, id string) (func() store.Result[domain.Transaction], domain.ErrorList) {
			in, errs := transactionUpdate(c, id)
			if errs != nil {
				return nil, errs
			}
			if in.Account == nil && in.Amount == nil && in.Datetime == nil && in.Name == nil &&
				in.Description == nil && len(in.AddTags) == 0 && len(in.RemoveTags) == 0 {
				return nil, nil
			}
			return func() store.Result[domain.Transaction] {
				return depsFrom(c).stores.Transactions.Update(c.Context, in)
			}, nil
		}, transactionDetails)
}

func transactionUpdate(c *cli.Context, id string) (domain.UpdateTransactionInput, domain.ErrorList) {
	in := domain.UpdateTransactionInput{
		ID:          id,
		Account:     flagValue(c, "account"),
		Name:        flagValue(c, "name"),
		Description: flagValue(c, "description"),
		AddTags:     c.StringSlice("add-tag"),
		RemoveTags:  c.StringSlice("remove-tag"),
	}
	if raw := flagValue(c, "amount"); raw != nil {
		if !validate.Decimal(*raw) {
			return in, domain.ErrorList{{Field: "amount", Messages: []string{"Enter a number."}}}
		}
		v := decimal.RequireFromString(*raw)
		in.Amount = &v
	}
	if raw := flagValue(c, "datetime"); raw != nil {
		t, err := time.ParseInLocation(datetimeLayout, *raw, time.Local)
		if err != nil {
			return in, domain.ErrorList{{Field: "datetime", Messages: []string{"Use the form " + datetimeLayout + "."}}}
		}
		in.Datetime = &t
	}
	return in, validate.Struct(in)
}
