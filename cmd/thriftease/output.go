package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/thriftease/thriftease/pkg/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5eead4")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0c4d0")).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#505868"))
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e06060"))
)

func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, metaStyle.Render("nothing here yet"))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func printPaginator(w io.Writer, p *domain.Paginator, noun string) {
	if p == nil {
		return
	}
	fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("page %d of %d · %d %s",
		p.Page.Current, max(p.Pages, 1), p.Items, noun)))
}

// printErrors writes one "field: message" line per message.
func printErrors(w io.Writer, errs domain.ErrorList) {
	for _, line := range errs.Flatten() {
		fmt.Fprintln(w, errorStyle.Render(line))
	}
}

func amount(d decimal.Decimal, symbol string) string {
	if symbol == "" {
		return d.StringFixed(2)
	}
	return symbol + " " + d.StringFixed(2)
}

func balance(d decimal.NullDecimal, symbol string) string {
	if !d.Valid {
		return "-"
	}
	return amount(d.Decimal, symbol)
}

// printDetails writes aligned "key  value" lines for a single record.
func printDetails(w io.Writer, pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	for _, p := range pairs {
		fmt.Fprintf(w, "%s  %s\n", metaStyle.Render(fmt.Sprintf("%-*s", width, p[0])), p[1])
	}
}
