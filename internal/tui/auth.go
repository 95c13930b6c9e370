package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thriftease/thriftease/internal/router"
	"github.com/thriftease/thriftease/internal/session"
	"github.com/thriftease/thriftease/internal/store"
	"github.com/thriftease/thriftease/internal/validate"
	"github.com/thriftease/thriftease/pkg/domain"
)

const (
	emailTakenMsg  = "An account with this email already exists."
	mismatchMsg    = "The passwords do not match."
	badResetMsg    = "This reset token is invalid or has expired."
	checkInboxMsg  = "If the address is registered, a reset token is on its way."
	signedUpMsg    = "Account created. Sign in to continue."
	passwordSetMsg = "Password updated. Sign in with the new one."
)

// -- messages --

type signInDoneMsg struct {
	res store.Result[domain.SignInPayload]
}

type signUpDoneMsg struct {
	res store.Result[domain.User]
}

type emailCheckedMsg struct {
	email  string
	exists bool
}

type resetSentMsg struct {
	res store.Result[bool]
}

type resetVerifiedMsg struct {
	token string
	res   store.Result[domain.User]
}

type resetAppliedMsg struct {
	res store.Result[domain.User]
}

// -- sign in --

type signInModel struct {
	session  *session.Session
	form     form
	remember bool
	busy     bool
	err      string
}

func newSignInModel(s *session.Session) signInModel {
	return signInModel{
		session: s,
		form: newForm(
			field{name: "email", label: "email"},
			field{name: "password", label: "password", secret: true},
		),
	}
}

func (m signInModel) Init() tea.Cmd { return nil }

func (m signInModel) Update(msg tea.Msg) (signInModel, tea.Cmd) {
	switch msg := msg.(type) {
	case signInDoneMsg:
		m.busy = false
		if msg.res.Err != nil {
			m.err = userMessage(msg.res.Err)
			return m, nil
		}
		m.form.reset()
		name := ""
		if msg.res.Data != nil && msg.res.Data.User != nil {
			name = msg.res.Data.User.DisplayName()
		}
		return m, tea.Batch(flash("signed in as "+name), navigateTo(router.Dashboard))

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		m.err = ""
		switch msg.String() {
		case "tab", "down":
			m.form.next()
		case "shift+tab", "up":
			m.form.prev()
		case "ctrl+t":
			m.remember = !m.remember
		case "ctrl+n":
			return m, navigateTo(router.SignUp)
		case "ctrl+r":
			return m, navigateTo(router.Reset)
		case "enter":
			if m.form.focus < len(m.form.fields)-1 {
				m.form.next()
				return m, nil
			}
			return m.submit()
		default:
			m.form.edit(msg.String())
		}
	}
	return m, nil
}

func (m signInModel) submit() (signInModel, tea.Cmd) {
	email, password := m.form.value("email"), m.form.fields[1].value
	errs := append(validate.Var("email", email, "required,email"), validate.Var("password", password, "required")...)
	if len(errs) > 0 {
		m.form.annotate(errs)
		return m, nil
	}
	m.busy = true
	s, remember := m.session, m.remember
	return m, func() tea.Msg {
		return signInDoneMsg{res: s.SignIn(context.Background(), email, password, remember)}
	}
}

func (m signInModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, " %s\n\n", sectionHeaderStyle.Render("Sign in"))
	b.WriteString(m.form.View())
	box := "[ ]"
	if m.remember {
		box = accentStyle.Render("[x]")
	}
	fmt.Fprintf(&b, "\n   %s %s\n\n", box, normalStyle.Render("remember me"))
	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("signing in...") + "\n")
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	}
	return b.String()
}

func (m signInModel) helpKeys() string {
	return helpBar(helpEntry("tab", "next"), helpEntry("enter", "sign in"), helpEntry("ctrl+t", "remember"),
		helpEntry("ctrl+n", "sign up"), helpEntry("ctrl+r", "reset"), helpEntry("ctrl+c", "quit"))
}

// -- sign up --

type signUpModel struct {
	session *session.Session
	form    form
	busy    bool
	err     string
}

func newSignUpModel(s *session.Session) signUpModel {
	return signUpModel{
		session: s,
		form: newForm(
			field{name: "email", label: "email"},
			field{name: "password", label: "password", secret: true, hint: "7+ chars, mixed case, digit, symbol"},
			field{name: "confirm", label: "confirm", secret: true},
			field{name: "givenName", label: "given name"},
			field{name: "middleName", label: "middle name", hint: "optional"},
			field{name: "familyName", label: "family name"},
			field{name: "suffix", label: "suffix", hint: "optional"},
		),
	}
}

func (m signUpModel) Init() tea.Cmd { return nil }

func (m signUpModel) Update(msg tea.Msg) (signUpModel, tea.Cmd) {
	switch msg := msg.(type) {
	case emailCheckedMsg:
		if msg.exists && m.form.value("email") == msg.email {
			m.form.fields[0].errs = []string{emailTakenMsg}
		}

	case signUpDoneMsg:
		m.busy = false
		if msg.res.Err != nil {
			m.err = userMessage(msg.res.Err)
			return m, nil
		}
		if !msg.res.Errors.Empty() {
			if rest := m.form.annotate(msg.res.Errors); len(rest) > 0 {
				m.err = strings.Join(rest, "; ")
			}
			return m, nil
		}
		m.form.reset()
		return m, tea.Batch(flash(signedUpMsg), navigateTo(router.SignIn))

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		m.err = ""
		switch msg.String() {
		case "esc", "ctrl+b":
			return m, navigateTo(router.SignIn)
		case "ctrl+s":
			return m.submit()
		case "enter":
			if m.form.focus == len(m.form.fields)-1 {
				return m.submit()
			}
			cmd := m.leaveField()
			m.form.next()
			return m, cmd
		case "tab", "down":
			cmd := m.leaveField()
			m.form.next()
			return m, cmd
		case "shift+tab", "up":
			cmd := m.leaveField()
			m.form.prev()
			return m, cmd
		default:
			m.form.edit(msg.String())
		}
	}
	return m, nil
}

func (m signUpModel) leaveField() tea.Cmd {
	email := m.form.value("email")
	if m.form.focused() != "email" || email == "" {
		return nil
	}
	s := m.session
	return func() tea.Msg {
		return emailCheckedMsg{email: email, exists: s.EmailExisting(context.Background(), email)}
	}
}

func (m signUpModel) input() domain.CreateUserInput {
	return domain.CreateUserInput{
		Email:      m.form.value("email"),
		Password:   m.form.fields[1].value,
		GivenName:  m.form.value("givenName"),
		MiddleName: optional(m.form.value("middleName")),
		FamilyName: m.form.value("familyName"),
		Suffix:     optional(m.form.value("suffix")),
	}
}

func (m signUpModel) submit() (signUpModel, tea.Cmd) {
	in := m.input()
	errs := validate.Struct(in)
	if m.form.fields[2].value != in.Password {
		errs = append(errs, firstError("confirm", mismatchMsg)...)
	}
	if len(errs) > 0 {
		m.form.annotate(errs)
		return m, nil
	}
	m.busy = true
	s := m.session
	return m, func() tea.Msg {
		return signUpDoneMsg{res: s.SignUp(context.Background(), in)}
	}
}

func (m signUpModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, " %s\n\n", sectionHeaderStyle.Render("Create an account"))
	b.WriteString(m.form.View())
	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("creating account...") + "\n")
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	}
	return b.String()
}

func (m signUpModel) helpKeys() string {
	return helpBar(helpEntry("tab", "next"), helpEntry("ctrl+s", "sign up"), helpEntry("esc", "sign in"), helpEntry("ctrl+c", "quit"))
}

// -- password reset --

type resetStage int

const (
	stageSend resetStage = iota
	stageApply
)

type resetModel struct {
	session *session.Session
	stage   resetStage
	send    form
	apply   form
	account string
	busy    bool
	err     string
	status  string
}

func newResetModel(s *session.Session) resetModel {
	return resetModel{
		session: s,
		send:    newForm(field{name: "email", label: "email"}),
		apply: newForm(
			field{name: "token", label: "reset token"},
			field{name: "password", label: "new password", secret: true},
			field{name: "confirm", label: "confirm", secret: true},
		),
	}
}

func (m resetModel) Init() tea.Cmd { return nil }

func (m *resetModel) active() *form {
	if m.stage == stageApply {
		return &m.apply
	}
	return &m.send
}

func (m resetModel) Update(msg tea.Msg) (resetModel, tea.Cmd) {
	switch msg := msg.(type) {
	case resetSentMsg:
		m.busy = false
		switch {
		case msg.res.Err != nil:
			m.err = userMessage(msg.res.Err)
		case !msg.res.Errors.Empty():
			if rest := m.send.annotate(msg.res.Errors); len(rest) > 0 {
				m.err = strings.Join(rest, "; ")
			}
		default:
			m.stage = stageApply
			m.status = checkInboxMsg
		}

	case resetVerifiedMsg:
		if m.apply.value("token") != msg.token {
			return m, nil
		}
		if msg.res.OK() && msg.res.Data != nil {
			m.account = msg.res.Data.Email
			return m, nil
		}
		m.account = ""
		m.apply.fields[0].errs = []string{badResetMsg}

	case resetAppliedMsg:
		m.busy = false
		switch {
		case msg.res.Err != nil:
			m.err = userMessage(msg.res.Err)
		case !msg.res.Errors.Empty():
			if rest := m.apply.annotate(msg.res.Errors); len(rest) > 0 {
				m.err = strings.Join(rest, "; ")
			}
		default:
			m.apply.reset()
			return m, tea.Batch(flash(passwordSetMsg), navigateTo(router.SignIn))
		}

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		m.err = ""
		f := m.active()
		switch msg.String() {
		case "esc", "ctrl+b":
			return m, navigateTo(router.SignIn)
		case "ctrl+t":
			m.stage = 1 - m.stage
			m.status = ""
		case "enter":
			if f.focus == len(f.fields)-1 {
				return m.submit()
			}
			cmd := m.leaveField()
			f.next()
			return m, cmd
		case "tab", "down":
			cmd := m.leaveField()
			f.next()
			return m, cmd
		case "shift+tab", "up":
			cmd := m.leaveField()
			f.prev()
			return m, cmd
		default:
			f.edit(msg.String())
		}
	}
	return m, nil
}

// leaveField verifies the reset token as soon as it has been typed.
func (m resetModel) leaveField() tea.Cmd {
	if m.stage != stageApply || m.apply.focused() != "token" {
		return nil
	}
	tok := m.apply.value("token")
	if tok == "" {
		return nil
	}
	s := m.session
	return func() tea.Msg {
		return resetVerifiedMsg{token: tok, res: s.VerifyReset(context.Background(), tok)}
	}
}

func (m resetModel) submit() (resetModel, tea.Cmd) {
	s := m.session
	if m.stage == stageSend {
		email := m.send.value("email")
		if errs := validate.Var("email", email, "required,email"); errs != nil {
			m.send.annotate(errs)
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg {
			return resetSentMsg{res: s.SendReset(context.Background(), email)}
		}
	}

	in := domain.ApplyResetInput{Token: m.apply.value("token"), Password: m.apply.fields[1].value}
	errs := validate.Struct(in)
	if m.apply.fields[2].value != in.Password {
		errs = append(errs, firstError("confirm", mismatchMsg)...)
	}
	if len(errs) > 0 {
		m.apply.annotate(errs)
		return m, nil
	}
	m.busy = true
	return m, func() tea.Msg {
		return resetAppliedMsg{res: s.ApplyReset(context.Background(), in.Token, in.Password)}
	}
}

func (m resetModel) View() string {
	var b strings.Builder
	if m.stage == stageSend {
		fmt.Fprintf(&b, " %s\n\n", sectionHeaderStyle.Render("Send a reset token"))
		b.WriteString(m.send.View())
	} else {
		fmt.Fprintf(&b, " %s\n\n", sectionHeaderStyle.Render("Choose a new password"))
		b.WriteString(m.apply.View())
		if m.account != "" {
			fmt.Fprintf(&b, "\n   %s\n", dimStyle.Render("for "+m.account))
		}
	}
	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("working...") + "\n")
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	case m.status != "":
		b.WriteString(" " + successStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m resetModel) helpKeys() string {
	label := "have a token"
	if m.stage == stageApply {
		label = "send again"
	}
	return helpBar(helpEntry("tab", "next"), helpEntry("enter", "submit"), helpEntry("ctrl+t", label),
		helpEntry("esc", "sign in"), helpEntry("ctrl+c", "quit"))
}
