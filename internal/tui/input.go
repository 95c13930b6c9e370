package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/thriftease/thriftease/pkg/domain"
)

// perPage is the number of records fetched per list page.
const perPage = 15

// maxInputLen is the maximum number of runes allowed in a form field.
const maxInputLen = 250

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	}
	if utf8.RuneCountInString(key) == 1 {
		if utf8.RuneCountInString(text) >= maxInputLen {
			return text
		}
		return text + key
	}
	return text
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// field is one labelled text input of a form. name matches the JSON field
// name the server uses, so field errors can be attached to it.
type field struct {
	name   string
	label  string
	value  string
	secret bool
	hint   string
	errs   []string
}

// form is a vertical list of fields with one focused at a time.
type form struct {
	fields []field
	focus  int
}

func newForm(fields ...field) form {
	return form{fields: fields}
}

func (f *form) next() { f.focus = (f.focus + 1) % len(f.fields) }

func (f *form) prev() { f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields) }

// edit applies a keystroke to the focused field and clears its errors.
func (f *form) edit(key string) {
	fl := &f.fields[f.focus]
	if v := editRune(fl.value, key); v != fl.value {
		fl.value = v
		fl.errs = nil
	}
}

func (f form) value(name string) string {
	for _, fl := range f.fields {
		if fl.name == name {
			return strings.TrimSpace(fl.value)
		}
	}
	return ""
}

func (f *form) set(name, value string) {
	for i := range f.fields {
		if f.fields[i].name == name {
			f.fields[i].value = value
			f.fields[i].errs = nil
		}
	}
}

func (f form) focused() string {
	return f.fields[f.focus].name
}

// annotate attaches errors to matching fields and returns the messages that
// match no field.
func (f *form) annotate(errs domain.ErrorList) []string {
	for i := range f.fields {
		f.fields[i].errs = errs.Field(f.fields[i].name)
	}
	var rest []string
	for _, e := range errs {
		if f.has(e.Field) {
			continue
		}
		rest = append(rest, domain.ErrorList{e}.Flatten()...)
	}
	return rest
}

func (f form) has(name string) bool {
	for _, fl := range f.fields {
		if fl.name == name {
			return true
		}
	}
	return false
}

func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].value = ""
		f.fields[i].errs = nil
	}
	f.focus = 0
}

func (f form) View() string {
	width := 0
	for _, fl := range f.fields {
		if w := utf8.RuneCountInString(fl.label); w > width {
			width = w
		}
	}

	var b strings.Builder
	for i, fl := range f.fields {
		cursor := " "
		label := metaStyle.Render(fmt.Sprintf("%-*s", width, fl.label))
		if i == f.focus {
			cursor = accentStyle.Render("▸")
			label = selectedStyle.Render(fmt.Sprintf("%-*s", width, fl.label))
		}
		value := fl.value
		if fl.secret {
			value = strings.Repeat("•", utf8.RuneCountInString(value))
		}
		switch {
		case i == f.focus:
			value = normalStyle.Render(value) + accentStyle.Render("█")
		case value == "" && fl.hint != "":
			value = inputPlaceholderStyle.Render(fl.hint)
		default:
			value = normalStyle.Render(value)
		}
		fmt.Fprintf(&b, " %s %s  %s\n", cursor, label, value)
		for _, e := range fl.errs {
			fmt.Fprintf(&b, "   %s  %s\n", strings.Repeat(" ", width), errorStyle.Render(e))
		}
	}
	return b.String()
}
