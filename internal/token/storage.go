package token

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrStorageUnavailable wraps every failure to persist or remove a value.
var ErrStorageUnavailable = errors.New("token storage unavailable")

// Storage is one key-value tier.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStorage keeps values for the lifetime of the process.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage returns an empty in-process tier.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileStorage keeps one file per key inside dir.
type FileStorage struct {
	dir string
}

// NewFileStorage returns a tier rooted at dir. The directory is created on
// first write.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

// Dir returns the directory backing the tier.
func (f *FileStorage) Dir() string { return f.dir }

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, key)
}

// Get returns the file content as written. A single trailing line ending, as
// left by editors or echo, is dropped.
func (f *FileStorage) Get(key string) (string, bool) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		return "", false
	}
	v := strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
	return v, v != ""
}

func (f *FileStorage) Set(key, value string) error {
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrStorageUnavailable, f.dir, err)
	}
	if err := os.WriteFile(f.path(key), []byte(value), 0600); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

func (f *FileStorage) Remove(key string) error {
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

// DurableDir returns ~/.thriftease.
func DurableDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".thriftease"), nil
}

// SessionDir returns $XDG_RUNTIME_DIR/thriftease, which the OS clears when the
// user's login session ends. ok is false when no runtime dir is available.
func SessionDir() (dir string, ok bool) {
	runtime := os.Getenv("XDG_RUNTIME_DIR")
	if runtime == "" {
		return "", false
	}
	return filepath.Join(runtime, "thriftease"), true
}
