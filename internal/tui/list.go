package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thriftease/thriftease/internal/store"
	"github.com/thriftease/thriftease/pkg/domain"
)

// -- messages --

type listLoadedMsg[T any] struct {
	res     store.Result[store.Page[T]]
	summary string
}

type listDeletedMsg[T any] struct {
	res store.Result[T]
}

type listCreatedMsg[T any] struct {
	errs domain.ErrorList
	err  error
}

type listProbedMsg[T any] struct {
	field  string
	value  string
	exists bool
	msg    string
}

type listFilledMsg[T any] struct {
	values map[string]string
}

type copiedMsg struct {
	id  string
	err error
}

// -- config --

type column[T any] struct {
	title  string
	width  int
	render func(T) string
}

// probe checks one form field against the server when focus leaves it.
type probe struct {
	field string
	check func(ctx context.Context, f form) (exists bool, msg string)
}

// listConfig describes one entity screen. Everything but create, probe and
// fill is required.
type listConfig[T any] struct {
	title   string
	noun    string
	columns []column[T]
	id      func(T) string
	label   func(T) string
	load    func(ctx context.Context, page int, search string) store.Result[store.Page[T]]
	summary func(ctx context.Context, items []T) string
	remove  func(ctx context.Context, id string) store.Result[T]
	newForm func() form
	create  func(ctx context.Context, f form) (domain.ErrorList, error)
	probe   *probe
	fill    func(ctx context.Context, f form) map[string]string
}

// -- model --

type listModel[T any] struct {
	cfg       listConfig[T]
	items     []T
	paginator *domain.Paginator
	page      int
	cursor    int
	search    string
	searching bool
	creating  bool
	form      form
	confirm   bool
	loading   bool
	busy      bool
	err       string
	status    string
	summary   string
	width     int
	height    int
}

func newListModel[T any](cfg listConfig[T]) listModel[T] {
	return listModel[T]{cfg: cfg, page: 1}
}

func (m listModel[T]) Init() tea.Cmd {
	return m.load()
}

func (m listModel[T]) editing() bool {
	return m.searching || m.creating
}

func (m listModel[T]) load() tea.Cmd {
	cfg := m.cfg
	page, search := m.page, m.search
	return func() tea.Msg {
		ctx := context.Background()
		res := cfg.load(ctx, page, search)
		msg := listLoadedMsg[T]{res: res}
		if res.Err == nil && res.Data != nil && cfg.summary != nil {
			msg.summary = cfg.summary(ctx, res.Data.Items)
		}
		return msg
	}
}

func (m listModel[T]) selected() (T, bool) {
	var zero T
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return zero, false
	}
	return m.items[m.cursor], true
}

func (m listModel[T]) Update(msg tea.Msg) (listModel[T], tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case listLoadedMsg[T]:
		m.loading = false
		if msg.res.Err != nil {
			m.err = userMessage(msg.res.Err)
			return m, nil
		}
		m.err = ""
		m.items, m.paginator = nil, nil
		if msg.res.Data != nil {
			m.items = msg.res.Data.Items
			m.paginator = msg.res.Data.Paginator
		}
		m.summary = msg.summary
		if m.cursor >= len(m.items) {
			m.cursor = max(len(m.items)-1, 0)
		}

	case listDeletedMsg[T]:
		m.busy = false
		switch {
		case msg.res.Err != nil:
			m.err = userMessage(msg.res.Err)
		case !msg.res.Errors.Empty():
			m.err = msg.res.Errors.String()
		default:
			m.status = m.cfg.noun + " deleted"
			m.loading = true
			return m, m.load()
		}

	case listCreatedMsg[T]:
		m.busy = false
		if msg.err != nil {
			m.err = userMessage(msg.err)
			return m, nil
		}
		if !msg.errs.Empty() {
			if rest := m.form.annotate(msg.errs); len(rest) > 0 {
				m.err = strings.Join(rest, "; ")
			}
			return m, nil
		}
		m.creating = false
		m.status = m.cfg.noun + " created"
		m.loading = true
		return m, m.load()

	case listProbedMsg[T]:
		if msg.exists && m.form.value(msg.field) == msg.value {
			for i := range m.form.fields {
				if m.form.fields[i].name == msg.field {
					m.form.fields[i].errs = []string{msg.msg}
				}
			}
		}

	case listFilledMsg[T]:
		for name, v := range msg.values {
			m.form.set(name, v)
		}
		if len(msg.values) == 0 {
			m.err = "no well-known currency matches"
		}

	case copiedMsg:
		if msg.err != nil {
			m.err = "clipboard unavailable"
		} else {
			m.status = "copied " + msg.id
		}

	case tea.KeyMsg:
		switch {
		case m.creating:
			return m.handleFormKey(msg)
		case m.searching:
			return m.handleSearchKey(msg)
		case m.confirm:
			return m.handleConfirmKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m listModel[T]) handleKey(msg tea.KeyMsg) (listModel[T], tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "]":
		if m.paginator != nil && m.paginator.HasNext() {
			m.page = *m.paginator.Page.Next
			m.cursor = 0
			m.loading = true
			return m, m.load()
		}
	case "[":
		if m.paginator != nil && m.paginator.HasPrevious() {
			m.page = *m.paginator.Page.Previous
			m.cursor = 0
			m.loading = true
			return m, m.load()
		}
	case "/":
		m.searching = true
	case "r":
		m.loading = true
		return m, m.load()
	case "n":
		if m.cfg.create != nil {
			m.creating = true
			m.err = ""
			m.form = m.cfg.newForm()
		}
	case "d":
		if _, ok := m.selected(); ok && m.cfg.remove != nil {
			m.confirm = true
		}
	case "c":
		if item, ok := m.selected(); ok {
			id := m.cfg.id(item)
			return m, func() tea.Msg {
				return copiedMsg{id: id, err: clipboard.WriteAll(id)}
			}
		}
	}
	return m, nil
}

func (m listModel[T]) handleSearchKey(msg tea.KeyMsg) (listModel[T], tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.page = 1
		m.cursor = 0
		m.loading = true
		return m, m.load()
	case "esc":
		m.searching = false
		if m.search != "" {
			m.search = ""
			m.page = 1
			m.loading = true
			return m, m.load()
		}
	default:
		m.search = editRune(m.search, msg.String())
	}
	return m, nil
}

func (m listModel[T]) handleConfirmKey(msg tea.KeyMsg) (listModel[T], tea.Cmd) {
	m.confirm = false
	if msg.String() != "y" {
		return m, nil
	}
	item, ok := m.selected()
	if !ok {
		return m, nil
	}
	id := m.cfg.id(item)
	remove := m.cfg.remove
	m.busy = true
	return m, func() tea.Msg {
		return listDeletedMsg[T]{res: remove(context.Background(), id)}
	}
}

func (m listModel[T]) handleFormKey(msg tea.KeyMsg) (listModel[T], tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.err = ""
	switch msg.String() {
	case "esc":
		m.creating = false
		return m, nil
	case "ctrl+s":
		return m.submit()
	case "ctrl+g":
		if m.cfg.fill == nil {
			return m, nil
		}
		fill, f := m.cfg.fill, m.form
		return m, func() tea.Msg {
			return listFilledMsg[T]{values: fill(context.Background(), f)}
		}
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
	return m, nil
}

// leaveField runs the configured probe when focus leaves its field.
func (m listModel[T]) leaveField() tea.Cmd {
	p := m.cfg.probe
	if p == nil || m.form.focused() != p.field {
		return nil
	}
	value := m.form.value(p.field)
	if value == "" {
		return nil
	}
	f := m.form
	return func() tea.Msg {
		exists, msg := p.check(context.Background(), f)
		return listProbedMsg[T]{field: p.field, value: value, exists: exists, msg: msg}
	}
}

func (m listModel[T]) submit() (listModel[T], tea.Cmd) {
	create, f := m.cfg.create, m.form
	m.busy = true
	return m, func() tea.Msg {
		errs, err := create(context.Background(), f)
		return listCreatedMsg[T]{errs: errs, err: err}
	}
}

func (m listModel[T]) View() string {
	var b strings.Builder

	if m.creating {
		fmt.Fprintf(&b, " %s\n\n", sectionHeaderStyle.Render("New "+m.cfg.noun))
		b.WriteString(m.form.View())
		b.WriteString("\n")
		switch {
		case m.busy:
			b.WriteString(" " + dimStyle.Render("saving...") + "\n")
		case m.err != "":
			b.WriteString(" " + errorStyle.Render(m.err) + "\n")
		}
		return b.String()
	}

	header := sectionHeaderStyle.Render(m.cfg.title)
	if m.search != "" || m.searching {
		cursor := ""
		if m.searching {
			cursor = accentStyle.Render("█")
		}
		header += "  " + inputPromptStyle.Render("/") + normalStyle.Render(m.search) + cursor
	}
	b.WriteString(" " + header + "\n")

	if m.loading && len(m.items) == 0 {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.err) + "\n")
	}
	if len(m.items) == 0 {
		if m.err == "" {
			b.WriteString("\n " + dimStyle.Render("no "+m.cfg.noun+"s yet, press n to add one") + "\n")
		}
		return b.String()
	}

	var cols strings.Builder
	for _, c := range m.cfg.columns {
		cols.WriteString(cell(c.title, c.width) + "  ")
	}
	b.WriteString("   " + metaStyle.Render(strings.TrimRight(cols.String(), " ")) + "\n")

	for i, item := range m.items {
		cursor := " "
		if i == m.cursor {
			cursor = accentStyle.Render("▸")
		}
		var row strings.Builder
		for _, c := range m.cfg.columns {
			row.WriteString(cell(c.render(item), c.width) + "  ")
		}
		line := strings.TrimRight(row.String(), " ")
		if i == m.cursor {
			line = selectedRowBg.Render(line)
		}
		fmt.Fprintf(&b, " %s %s\n", cursor, line)
	}

	b.WriteString("\n")
	if m.paginator != nil {
		b.WriteString(" " + metaStyle.Render(fmt.Sprintf("page %d of %d · %d %ss",
			m.paginator.Page.Current, max(m.paginator.Pages, 1), m.paginator.Items, m.cfg.noun)) + "\n")
	}
	if m.summary != "" {
		b.WriteString(" " + normalStyle.Render(m.summary) + "\n")
	}
	switch {
	case m.confirm:
		item, _ := m.selected()
		b.WriteString(" " + warnStyle.Render(fmt.Sprintf("delete %s %q? y/n", m.cfg.noun, m.cfg.label(item))) + "\n")
	case m.busy:
		b.WriteString(" " + dimStyle.Render("working...") + "\n")
	case m.status != "":
		b.WriteString(" " + successStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m listModel[T]) helpKeys() string {
	switch {
	case m.creating:
		keys := []string{helpEntry("tab", "next"), helpEntry("ctrl+s", "save")}
		if m.cfg.fill != nil {
			keys = append(keys, helpEntry("ctrl+g", "fill"))
		}
		return helpBar(append(keys, helpEntry("esc", "cancel"))...)
	case m.searching:
		return helpBar(helpEntry("enter", "search"), helpEntry("esc", "clear"))
	}
	return helpBar(
		helpEntry("1-4", "tabs"), helpEntry("j/k", "nav"), helpEntry("n", "new"),
		helpEntry("d", "delete"), helpEntry("/", "search"), helpEntry("[ ]", "page"),
		helpEntry("c", "copy id"), helpEntry("o", "sign out"), helpEntry("?", "help"), helpEntry("q", "quit"),
	)
}
