package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thriftease/thriftease/internal/store"
	"github.com/thriftease/thriftease/pkg/domain"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func intPtr(n int) *int { return &n }

// testList is a list of plain strings whose callbacks record what they saw.
type testList struct {
	loads   []int
	search  string
	removed string
	created form
}

func (tl *testList) config() listConfig[string] {
	return listConfig[string]{
		title:   "Things",
		noun:    "thing",
		columns: []column[string]{{"NAME", 10, func(s string) string { return s }}},
		id:      func(s string) string { return "id-" + s },
		label:   func(s string) string { return s },
		load: func(_ context.Context, page int, search string) store.Result[store.Page[string]] {
			tl.loads = append(tl.loads, page)
			tl.search = search
			return store.Result[store.Page[string]]{Data: &store.Page[string]{Items: []string{"a", "b"}}}
		},
		remove: func(_ context.Context, id string) store.Result[string] {
			tl.removed = id
			v := id
			return store.Result[string]{Data: &v}
		},
		newForm: func() form {
			return newForm(field{name: "name", label: "name"}, field{name: "note", label: "note"})
		},
		create: func(_ context.Context, f form) (domain.ErrorList, error) {
			tl.created = f
			return nil, nil
		},
	}
}

func loaded(items []string, p *domain.Paginator) listLoadedMsg[string] {
	return listLoadedMsg[string]{res: store.Result[store.Page[string]]{
		Data: &store.Page[string]{Items: items, Paginator: p},
	}}
}

func TestListLoadedShowsItems(t *testing.T) {
	m := newListModel((&testList{}).config())
	m, _ = m.Update(loaded([]string{"coffee", "rent"}, &domain.Paginator{PerPage: 15, Items: 2, Pages: 1, Page: domain.Page{Current: 1}}))

	view := m.View()
	for _, want := range []string{"coffee", "rent", "page 1 of 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestListLoadErrorKeepsMessage(t *testing.T) {
	m := newListModel((&testList{}).config())
	m, _ = m.Update(listLoadedMsg[string]{res: store.Result[store.Page[string]]{Err: errors.New("dial tcp: refused")}})
	if m.err != "could not reach the server" {
		t.Errorf("err = %q, want %q", m.err, "could not reach the server")
	}
}

func TestListEmptyHint(t *testing.T) {
	m := newListModel((&testList{}).config())
	m, _ = m.Update(loaded(nil, nil))
	if !strings.Contains(m.View(), "no things yet") {
		t.Errorf("expected empty hint, got:\n%s", m.View())
	}
}

func TestListCursorClampedAfterReload(t *testing.T) {
	m := newListModel((&testList{}).config())
	m, _ = m.Update(loaded([]string{"a", "b", "c"}, nil))
	m, _ = m.Update(keyRunes("j"))
	m, _ = m.Update(keyRunes("j"))
	m, _ = m.Update(keyRunes("j"))
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", m.cursor)
	}
	m, _ = m.Update(loaded([]string{"a"}, nil))
	if m.cursor != 0 {
		t.Errorf("cursor after shrink = %d, want 0", m.cursor)
	}
}

func TestListNextPageLoads(t *testing.T) {
	tl := &testList{}
	m := newListModel(tl.config())
	m, _ = m.Update(loaded([]string{"a"}, &domain.Paginator{Page: domain.Page{Current: 1, Next: intPtr(2)}}))

	m, cmd := m.Update(keyRunes("]"))
	if cmd == nil {
		t.Fatal("expected load command on ]")
	}
	if m.page != 2 {
		t.Errorf("page = %d, want 2", m.page)
	}
	cmd()
	if len(tl.loads) != 1 || tl.loads[0] != 2 {
		t.Errorf("loads = %v, want [2]", tl.loads)
	}
}

func TestListPreviousPageWithoutPreviousIsNoop(t *testing.T) {
	m := newListModel((&testList{}).config())
	m, _ = m.Update(loaded([]string{"a"}, &domain.Paginator{Page: domain.Page{Current: 1}}))
	m, cmd := m.Update(keyRunes("["))
	if cmd != nil || m.page != 1 {
		t.Errorf("expected no page change, got page=%d cmd=%v", m.page, cmd != nil)
	}
}

func TestListSearchResetsPage(t *testing.T) {
	tl := &testList{}
	m := newListModel(tl.config())
	m.page = 3
	m, _ = m.Update(keyRunes("/"))
	if !m.editing() {
		t.Fatal("expected editing while searching")
	}
	for _, r := range "rent" {
		m, _ = m.Update(keyRunes(string(r)))
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected load on enter")
	}
	cmd()
	if tl.search != "rent" || tl.loads[0] != 1 {
		t.Errorf("loaded page %v with search %q, want page 1 with %q", tl.loads, tl.search, "rent")
	}
	if m.editing() {
		t.Error("search should close after enter")
	}
}

func TestListDeleteNeedsConfirmation(t *testing.T) {
	tl := &testList{}
	m := newListModel(tl.config())
	m, _ = m.Update(loaded([]string{"a", "b"}, nil))
	m, _ = m.Update(keyRunes("j"))

	m, cmd := m.Update(keyRunes("d"))
	if cmd != nil || !m.confirm {
		t.Fatal("expected a confirmation prompt before deleting")
	}
	if !strings.Contains(m.View(), `delete thing "b"? y/n`) {
		t.Errorf("expected prompt in view:\n%s", m.View())
	}

	m, cmd = m.Update(keyRunes("n"))
	if cmd != nil || m.confirm {
		t.Error("n should cancel the delete")
	}

	m, _ = m.Update(keyRunes("d"))
	_, cmd = m.Update(keyRunes("y"))
	if cmd == nil {
		t.Fatal("expected delete command on y")
	}
	if _, ok := cmd().(listDeletedMsg[string]); !ok {
		t.Error("expected listDeletedMsg")
	}
	if tl.removed != "id-b" {
		t.Errorf("removed = %q, want %q", tl.removed, "id-b")
	}
}

func TestListDeletedReloads(t *testing.T) {
	m := newListModel((&testList{}).config())
	v := "x"
	m, cmd := m.Update(listDeletedMsg[string]{res: store.Result[string]{Data: &v}})
	if cmd == nil || m.status != "thing deleted" {
		t.Errorf("expected reload and status, got status=%q cmd=%v", m.status, cmd != nil)
	}

	m, cmd = m.Update(listDeletedMsg[string]{res: store.Result[string]{
		Errors: domain.ErrorList{{Field: "__all__", Messages: []string{"In use."}}},
	}})
	if cmd != nil || m.err != "In use." {
		t.Errorf("field errors should surface without reload, got err=%q", m.err)
	}
}

func TestListCreateFlow(t *testing.T) {
	tl := &testList{}
	m := newListModel(tl.config())
	m, _ = m.Update(keyRunes("n"))
	if !m.creating {
		t.Fatal("expected form after n")
	}
	for _, r := range "Cash" {
		m, _ = m.Update(keyRunes(string(r)))
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.form.focused() != "note" {
		t.Fatalf("focused = %q, want note", m.form.focused())
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil || !m.busy {
		t.Fatal("expected submit on ctrl+s")
	}
	msg := cmd()
	if got := tl.created.value("name"); got != "Cash" {
		t.Errorf("created name = %q, want Cash", got)
	}

	m, cmd = m.Update(msg)
	if m.creating || cmd == nil {
		t.Error("successful create should close the form and reload")
	}
	if m.status != "thing created" {
		t.Errorf("status = %q", m.status)
	}
}

func TestListCreateFieldErrorsKeepForm(t *testing.T) {
	m := newListModel((&testList{}).config())
	m, _ = m.Update(keyRunes("n"))
	m, _ = m.Update(listCreatedMsg[string]{errs: domain.ErrorList{
		{Field: "name", Messages: []string{"This field is required."}},
		{Field: "__all__", Messages: []string{"Duplicate."}},
	}})
	if !m.creating {
		t.Fatal("form should stay open on field errors")
	}
	if got := m.form.fields[0].errs; len(got) != 1 {
		t.Errorf("name errs = %v", got)
	}
	if m.err != "Duplicate." {
		t.Errorf("err = %q, want Duplicate.", m.err)
	}
}

func TestListProbeOnlyAppliesToCurrentValue(t *testing.T) {
	tl := &testList{}
	cfg := tl.config()
	cfg.probe = &probe{field: "name", check: func(context.Context, form) (bool, string) {
		return true, "taken"
	}}
	m := newListModel(cfg)
	m, _ = m.Update(keyRunes("n"))
	m, _ = m.Update(keyRunes("a"))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if cmd == nil {
		t.Fatal("expected probe when leaving the name field")
	}
	probed := cmd()

	stale := listProbedMsg[string]{field: "name", value: "old", exists: true, msg: "taken"}
	m, _ = m.Update(stale)
	if len(m.form.fields[0].errs) != 0 {
		t.Error("stale probe result should be ignored")
	}
	m, _ = m.Update(probed)
	if got := m.form.fields[0].errs; len(got) != 1 || got[0] != "taken" {
		t.Errorf("errs = %v, want [taken]", got)
	}
}

func TestListFillSetsValues(t *testing.T) {
	m := newListModel((&testList{}).config())
	m, _ = m.Update(keyRunes("n"))
	m, _ = m.Update(listFilledMsg[string]{values: map[string]string{"name": "Euro"}})
	if got := m.form.value("name"); got != "Euro" {
		t.Errorf("name = %q, want Euro", got)
	}
	m, _ = m.Update(listFilledMsg[string]{})
	if m.err == "" {
		t.Error("expected a message when nothing matched")
	}
}

func TestListCopiedStatus(t *testing.T) {
	m := newListModel((&testList{}).config())
	m, _ = m.Update(copiedMsg{id: "42"})
	if m.status != "copied 42" {
		t.Errorf("status = %q", m.status)
	}
	m, _ = m.Update(copiedMsg{err: errors.New("no xclip")})
	if m.err != "clipboard unavailable" {
		t.Errorf("err = %q", m.err)
	}
}

func TestTransactionInput(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	f := newForm(
		field{name: "account", value: "7"},
		field{name: "amount", value: "-12.50"},
		field{name: "datetime"},
		field{name: "name", value: "Coffee"},
		field{name: "description"},
		field{name: "tags", value: "food, , drinks"},
	)

	in, errs := transactionInput(f, now)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if in.Amount.String() != "-12.5" {
		t.Errorf("amount = %s", in.Amount)
	}
	if !in.Datetime.Equal(now) {
		t.Errorf("datetime = %v, want now", in.Datetime)
	}
	if in.Description != nil {
		t.Errorf("description = %q, want nil", *in.Description)
	}
	if len(in.Tags) != 2 || in.Tags[1] != "drinks" {
		t.Errorf("tags = %v", in.Tags)
	}
}

func TestTransactionInputErrors(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		when   string
		field  string
	}{
		{"bad amount", "twelve", "", "amount"},
		{"empty amount", "", "", "amount"},
		{"bad datetime", "5", "tomorrow", "datetime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm(
				field{name: "account", value: "7"},
				field{name: "amount", value: tt.amount},
				field{name: "datetime", value: tt.when},
			)
			_, errs := transactionInput(f, time.Now())
			if len(errs.Field(tt.field)) == 0 {
				t.Errorf("expected an error on %s, got %v", tt.field, errs)
			}
		})
	}
}
