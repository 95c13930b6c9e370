package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "thriftease.log")
	log, closer, err := New(Config{Level: "debug", File: path})
	require.NoError(t, err)

	For(log, ComponentSession).WithField(FieldOperation, "verify").Info("verified")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "session", rec[FieldComponent])
	assert.Equal(t, "verify", rec[FieldOperation])
	assert.Equal(t, "verified", rec["msg"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewWithoutFileDiscards(t *testing.T) {
	log, closer, err := New(Config{Level: "info"})
	require.NoError(t, err)
	log.Info("dropped")
	assert.NoError(t, closer.Close())
}
