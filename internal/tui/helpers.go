package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/thriftease/thriftease/pkg/client"
)

// datetimeLayout is how transaction times are shown and typed.
const datetimeLayout = "2006-01-02 15:04"

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// cell truncates s and pads it with spaces to exactly width columns.
func cell(s string, width int) string {
	s = truncStr(s, width)
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// formatAmount renders d with two decimals and a sign-dependent color.
func formatAmount(d decimal.Decimal, symbol string) string {
	text := d.StringFixed(2)
	if symbol != "" {
		text = symbol + " " + text
	}
	return amountStyle(d.IsNegative()).Render(text)
}

// formatBalance renders a nullable balance, "-" when unknown.
func formatBalance(d decimal.NullDecimal, symbol string) string {
	if !d.Valid {
		return dimStyle.Render("-")
	}
	return formatAmount(d.Decimal, symbol)
}

// formatDatetime renders t in local time.
func formatDatetime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(datetimeLayout)
}

// splitList splits a comma separated field into trimmed, non-empty values.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// optional returns nil for blank input.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// userMessage turns a transport error into a short line for the status bar.
// GraphQL errors carry a message meant for people; anything else does not.
func userMessage(err error) string {
	if gql := client.GraphQLErrors(err); len(gql) > 0 {
		return gql[0].Message
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("server error (%d)", httpErr.StatusCode)
	}
	return "could not reach the server"
}
