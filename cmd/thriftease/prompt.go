package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// prompt asks for one line on stderr and reads it from the app's input.
func prompt(c *cli.Context, label string) (string, error) {
	fmt.Fprint(c.App.ErrWriter, label+": ")
	line, err := depsFrom(c).in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when the input is a terminal,
// and as a plain line otherwise (pipes, tests).
func promptPassword(c *cli.Context, label string) (string, error) {
	f, ok := c.App.Reader.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return prompt(c, label)
	}
	fmt.Fprint(c.App.ErrWriter, label+": ")
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(c.App.ErrWriter)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return string(b), nil
}

// flagOrPrompt returns the flag value, asking for it when unset.
func flagOrPrompt(c *cli.Context, flag, label string) (string, error) {
	if v := strings.TrimSpace(c.String(flag)); v != "" {
		return v, nil
	}
	return prompt(c, label)
}

// newPassword asks twice and insists on a match.
func newPassword(c *cli.Context) (string, error) {
	pw, err := promptPassword(c, "password")
	if err != nil {
		return "", err
	}
	again, err := promptPassword(c, "confirm password")
	if err != nil {
		return "", err
	}
	if pw != again {
		return "", cli.Exit("confirm: The passwords do not match.", 1)
	}
	return pw, nil
}
