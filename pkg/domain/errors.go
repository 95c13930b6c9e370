package domain

import "strings"

// FieldError is a business validation failure reported by the server for one
// input field. It is data carried in a successful response, not a Go error.
type FieldError struct {
	Field    string   `json:"field"`
	Messages []string `json:"messages"`
}

// ErrorList is the ordered set of field errors attached to a mutation payload.
type ErrorList []FieldError

// Empty reports whether the list carries no errors.
func (l ErrorList) Empty() bool {
	return len(l) == 0
}

// Field returns the messages reported for name, in server order.
func (l ErrorList) Field(name string) []string {
	var msgs []string
	for _, e := range l {
		if e.Field == name {
			msgs = append(msgs, e.Messages...)
		}
	}
	return msgs
}

// Flatten collapses every message into one slice. Messages for the "__all__"
// pseudo-field and empty fields are kept unprefixed.
func (l ErrorList) Flatten() []string {
	var out []string
	for _, e := range l {
		for _, m := range e.Messages {
			if e.Field == "" || e.Field == "__all__" {
				out = append(out, m)
				continue
			}
			out = append(out, e.Field+": "+m)
		}
	}
	return out
}

// String joins Flatten with "; " for single-line alerts.
func (l ErrorList) String() string {
	return strings.Join(l.Flatten(), "; ")
}
