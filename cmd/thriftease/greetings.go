package main

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/lipgloss"
)

var greetings = [...]string{
	"Your wallet called. It wants to know where last month went.",
	"Every coffee counts. Literally. That is the whole point.",
	"No session, no ledger. The receipts are piling up.",
	"Budgets are easier to keep when you can see them.",
	"The accounts are balanced. Well, they would be, if you signed in.",
	"A transaction unrecorded is a mystery waiting to happen.",
	"Money talks. Sign in and it will tell you where it went.",
	"Tags are ready. Categories are ready. You are the missing piece.",
	"Thrift is a habit. Habits start with showing up.",
	"The numbers will not add themselves. Mostly.",
}

var (
	greetLogoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2dd4bf")).Bold(true)
	greetQuoteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0c4d0")).Italic(true)
	greetHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0"))
	greetCmdStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5eead4")).Bold(true)
)

// printGreeting is shown when there is no usable session.
func printGreeting(w io.Writer) {
	g := greetings[rand.Intn(len(greetings))]
	fmt.Fprintf(w, "\n  %s\n\n", greetLogoStyle.Render("T H R I F T E A S E"))
	fmt.Fprintf(w, "  %s\n\n", greetQuoteStyle.Render(g))
	fmt.Fprintf(w, "  %s %s %s %s\n\n",
		greetHintStyle.Render("Not signed in. Run"),
		greetCmdStyle.Render("thriftease login"),
		greetHintStyle.Render("or"),
		greetCmdStyle.Render("thriftease signup"))
}
