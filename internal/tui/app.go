package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/thriftease/thriftease/internal/browser"
	"github.com/thriftease/thriftease/internal/logging"
	"github.com/thriftease/thriftease/internal/router"
	"github.com/thriftease/thriftease/internal/session"
	"github.com/thriftease/thriftease/internal/store"
	"github.com/thriftease/thriftease/pkg/domain"
)

// navigateMsg asks the app to push a route through the router.
type navigateMsg struct {
	name string
}

// navigatedMsg carries the outcome of a router push.
type navigatedMsg struct {
	match router.Match
	err   error
}

// flashMsg shows a one-line notice until the next key press.
type flashMsg struct {
	text string
}

// sessionChangedMsg is delivered when the signed-in user changes.
type sessionChangedMsg struct {
	user *domain.User
}

func navigateTo(name string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{name: name} }
}

func flash(text string) tea.Cmd {
	return func() tea.Msg { return flashMsg{text: text} }
}

// Deps are the services the interface drives.
type Deps struct {
	Session *session.Session
	Router  *router.Router
	Stores  *store.Stores
	WebURL  string
	Log     logrus.FieldLogger
}

// App is the root Bubbletea model. Each route name maps to one screen.
type App struct {
	deps         Deps
	log          *logrus.Entry
	route        string
	title        string
	user         *domain.User
	sessionCh    chan *domain.User
	signIn       signInModel
	signUp       signUpModel
	reset        resetModel
	currencies   listModel[domain.Currency]
	accounts     listModel[domain.Account]
	tags         listModel[domain.Tag]
	transactions listModel[domain.Transaction]
	helpOpen     bool
	helpCursor   int
	notice       string
	navErr       string
	width        int
	height       int
	frame        int
}

// dashboardTabs are the routes reachable with the number keys.
var dashboardTabs = []struct {
	key   string
	name  string
	route string
}{
	{"1", "Currencies", router.Currencies},
	{"2", "Accounts", router.Accounts},
	{"3", "Tags", router.Tags},
	{"4", "Transactions", router.Transactions},
}

// NewApp creates the interface. It starts with no route; Init navigates to
// the index route and the guards decide where that lands.
func NewApp(d Deps) App {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	a := App{
		deps:      d,
		log:       logging.For(d.Log, logging.ComponentTUI),
		title:     router.DefaultTitle,
		sessionCh: make(chan *domain.User, 8),
	}
	if d.Session != nil {
		ch := a.sessionCh
		d.Session.Subscribe(func(u *domain.User) {
			select {
			case ch <- u:
			default:
			}
		})
		a.user = d.Session.User()
		a.signIn = newSignInModel(d.Session)
		a.signUp = newSignUpModel(d.Session)
		a.reset = newResetModel(d.Session)
	}
	if d.Stores != nil {
		a.currencies = newCurrenciesModel(d.Stores.Currencies)
		a.accounts = newAccountsModel(d.Stores.Accounts, d.Stores.Currencies)
		a.tags = newTagsModel(d.Stores.Tags)
		a.transactions = newTransactionsModel(d.Stores.Transactions)
	}
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.waitForSession(), navigateTo(router.Index))
}

func (a App) waitForSession() tea.Cmd {
	ch := a.sessionCh
	return func() tea.Msg {
		return sessionChangedMsg{user: <-ch}
	}
}

func (a App) push(name string) tea.Cmd {
	r := a.deps.Router
	return func() tea.Msg {
		m, err := r.Push(context.Background(), name)
		return navigatedMsg{match: m, err: err}
	}
}

// initScreen starts the screen for the current route.
func (a App) initScreen() tea.Cmd {
	switch a.route {
	case router.Currencies:
		return a.currencies.Init()
	case router.Accounts:
		return a.accounts.Init()
	case router.Tags:
		return a.tags.Init()
	case router.Transactions:
		return a.transactions.Init()
	}
	return nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + notice(1) + help(1) = 5 lines
		body := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.currencies, _ = a.currencies.Update(body)
		a.accounts, _ = a.accounts.Update(body)
		a.tags, _ = a.tags.Update(body)
		a.transactions, _ = a.transactions.Update(body)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case navigateMsg:
		return a, a.push(msg.name)

	case navigatedMsg:
		if msg.err != nil {
			a.log.WithError(msg.err).Warn("navigation failed")
			a.navErr = msg.err.Error()
			return a, nil
		}
		a.navErr = ""
		a.route = msg.match.Name
		a.title = a.deps.Router.Title()
		a.log.WithField(logging.FieldRoute, a.route).Debug("screen changed")
		return a, a.initScreen()

	case flashMsg:
		a.notice = msg.text
		return a, nil

	case sessionChangedMsg:
		a.user = msg.user
		cmds := []tea.Cmd{a.waitForSession()}
		// A lost session on a protected screen goes back through the guard.
		if msg.user == nil && a.requires() == router.RequireAuthenticated {
			cmds = append(cmds, navigateTo(router.Index))
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		a.notice = ""
		if a.helpOpen {
			switch msg.String() {
			case "?", "esc":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(helpItems)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				url := browser.Join(a.deps.WebURL, helpItems[a.helpCursor].path)
				if err := browser.Open(url); err != nil {
					a.log.WithError(err).Warn("open browser")
				}
			}
			return a, nil
		}

		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.isEditing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "?":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "o":
				if a.onDashboard() && a.deps.Session != nil {
					a.deps.Session.SignOut()
					return a, tea.Batch(flash("signed out"), navigateTo(router.Index))
				}
			case "1", "2", "3", "4":
				if a.onDashboard() {
					for _, t := range dashboardTabs {
						if t.key == msg.String() && t.route != a.route {
							return a, navigateTo(t.route)
						}
					}
					return a, nil
				}
			}
		}
	}

	var cmd tea.Cmd
	switch a.route {
	case router.SignIn:
		a.signIn, cmd = a.signIn.Update(msg)
	case router.SignUp:
		a.signUp, cmd = a.signUp.Update(msg)
	case router.Reset:
		a.reset, cmd = a.reset.Update(msg)
	case router.Currencies:
		a.currencies, cmd = a.currencies.Update(msg)
	case router.Accounts:
		a.accounts, cmd = a.accounts.Update(msg)
	case router.Tags:
		a.tags, cmd = a.tags.Update(msg)
	case router.Transactions:
		a.transactions, cmd = a.transactions.Update(msg)
	}
	return a, cmd
}

// requires reports the auth requirement of the current route.
func (a App) requires() router.Requirement {
	if a.deps.Router == nil || a.route == "" {
		return router.RequireNone
	}
	m, err := a.deps.Router.Resolve(a.route)
	if err != nil {
		return router.RequireNone
	}
	return m.Requirement()
}

func (a App) onDashboard() bool {
	for _, t := range dashboardTabs {
		if t.route == a.route {
			return true
		}
	}
	return false
}

// isEditing reports whether the screen is taking text input, in which case
// single-letter global keys go to the screen instead.
func (a App) isEditing() bool {
	switch a.route {
	case router.SignIn, router.SignUp, router.Reset:
		return true
	case router.Currencies:
		return a.currencies.editing()
	case router.Accounts:
		return a.accounts.editing()
	case router.Tags:
		return a.tags.editing()
	case router.Transactions:
		return a.transactions.editing()
	}
	return false
}

func (a App) View() string {
	header := center(renderShimmerLogo(a.frame), a.width)
	sub := titleStyle.Render(a.title)
	if a.user != nil {
		sub += metaStyle.Render(" · ") + dimStyle.Render(a.user.DisplayName())
	}
	header += "\n" + center(sub, a.width)

	var tabs string
	if a.onDashboard() {
		colWidth := a.width / len(dashboardTabs)
		var bar strings.Builder
		for _, t := range dashboardTabs {
			label := metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
			if t.route == a.route {
				label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
			}
			bar.WriteString(padCenter(label, colWidth))
		}
		tabs = bar.String()
	}

	var body, help string
	switch a.route {
	case router.SignIn:
		body, help = a.signIn.View(), a.signIn.helpKeys()
	case router.SignUp:
		body, help = a.signUp.View(), a.signUp.helpKeys()
	case router.Reset:
		body, help = a.reset.View(), a.reset.helpKeys()
	case router.Currencies:
		body, help = a.currencies.View(), a.currencies.helpKeys()
	case router.Accounts:
		body, help = a.accounts.View(), a.accounts.helpKeys()
	case router.Tags:
		body, help = a.tags.View(), a.tags.helpKeys()
	case router.Transactions:
		body, help = a.transactions.View(), a.transactions.helpKeys()
	default:
		body = " " + dimStyle.Render("loading...")
		help = helpBar(helpEntry("ctrl+c", "quit"))
	}

	if a.helpOpen {
		body = helpView(a.helpCursor, a.deps.WebURL)
		help = helpBar(helpEntry("j/k", "nav"), helpEntry("enter", "open"), helpEntry("esc", "close"))
	}

	notice := ""
	switch {
	case a.navErr != "":
		notice = " " + errorStyle.Render(a.navErr)
	case a.notice != "":
		notice = " " + successStyle.Render(a.notice)
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabs, body, notice, help)
}

func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func padCenter(s string, width int) string {
	w := lipgloss.Width(s)
	left := (width - w) / 2
	if left < 0 {
		left = 0
	}
	right := width - w - left
	if right < 0 {
		right = 0
	}
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
