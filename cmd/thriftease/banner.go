package main

import (
	"fmt"
	"io"
)

// ANSI colors for the version banner (no lipgloss, runs outside the TUI).
const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiTeal  = "\033[38;2;45;212;191m"  // #2dd4bf
	ansiMint  = "\033[38;2;94;234;212m"  // #5eead4
	ansiSlate = "\033[38;2;136;144;160m" // #8890a0
)

// printLogo prints the spaced THRIFTEASE wordmark in alternating teal.
func printLogo(w io.Writer) {
	letters := "THRIFTEASE"
	colors := [2]string{ansiTeal, ansiMint}
	fmt.Fprint(w, "\n  ")
	for i, ch := range letters {
		fmt.Fprintf(w, "%s%s%c%s", colors[i%2], ansiBold, ch, ansiReset)
		if i < len(letters)-1 {
			fmt.Fprint(w, " ")
		}
	}
	fmt.Fprintln(w)
}

func printVersion(w io.Writer) {
	printLogo(w)
	fmt.Fprintf(w, "\n  %s%s%s %s%s%s\n\n", ansiSlate, "version", ansiReset, ansiBold, version, ansiReset)
}
