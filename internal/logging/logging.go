// Package logging configures the structured logger shared by the CLI and TUI.
// The TUI owns the terminal, so records go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Field names used across components.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldRoute     = "route"
)

// Component names.
const (
	ComponentApp     = "app"
	ComponentClient  = "client"
	ComponentSession = "session"
	ComponentStore   = "store"
	ComponentRouter  = "router"
	ComponentRates   = "rates"
	ComponentTUI     = "tui"
)

// Config holds logger configuration.
type Config struct {
	Level string
	File  string
}

// New builds a JSON logger writing to cfg.File. An empty File discards output.
// The returned closer must be called on exit.
func New(cfg Config) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging.New: %w", err)
	}
	log.SetLevel(level)

	if cfg.File == "" {
		log.SetOutput(io.Discard)
		return log, io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
		return nil, nil, fmt.Errorf("logging.New: create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("logging.New: open log file: %w", err)
	}
	log.SetOutput(f)
	return log, f, nil
}

// Discard returns a logger that drops everything. Tests and library defaults
// use it.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// For returns an entry tagged with the component name.
func For(log logrus.FieldLogger, component string) *logrus.Entry {
	return log.WithField(FieldComponent, component)
}
