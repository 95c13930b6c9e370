package router

import "github.com/sirupsen/logrus"

// DefaultTitle is shown when a route has no title of its own.
const DefaultTitle = "ThriftEase"

// Route names.
const (
	Index        = "index"
	Auth         = "auth"
	SignIn       = "auth-sign-in"
	SignUp       = "auth-sign-up"
	Reset        = "auth-reset"
	Dashboard    = "dashboard"
	Currencies   = "dashboard-currencies"
	Accounts     = "dashboard-accounts"
	Tags         = "dashboard-tags"
	Transactions = "dashboard-transactions"
)

// Title formats a page title for the window header.
func Title(title string) string {
	if title == "" {
		return DefaultTitle
	}
	return DefaultTitle + " - " + title
}

// Routes returns the application's route tree.
func Routes() []Route {
	return []Route{
		{Name: Index, Path: "/", Redirect: SignIn},
		{
			Path: "/auth",
			Auth: RequireAnonymous,
			Children: []Route{
				{Name: Auth, Path: "", Redirect: SignIn},
				{Name: SignIn, Path: "sign-in", Title: "Sign in"},
				{Name: SignUp, Path: "sign-up", Title: "Sign up"},
				{Name: Reset, Path: "reset", Title: "Reset password"},
			},
		},
		{
			Path: "/dashboard",
			Auth: RequireAuthenticated,
			Children: []Route{
				{Name: Dashboard, Path: "", Redirect: Currencies},
				{Name: Currencies, Path: "currencies", Title: "Currencies"},
				{Name: Accounts, Path: "accounts", Title: "Accounts"},
				{Name: Tags, Path: "tags", Title: "Tags"},
				{Name: Transactions, Path: "transactions", Title: "Transactions"},
			},
		},
	}
}

// Default builds a router over Routes with the auth and title guards
// installed, in that order.
func Default(session Verifier, log logrus.FieldLogger) (*Router, error) {
	r, err := New(Routes(), log)
	if err != nil {
		return nil, err
	}
	r.Use(NewAuthGuard(session, log), TitleGuard(r))
	return r, nil
}
