// Package token persists the bearer credential across a session-scoped tier
// and a durable tier. At most one tier holds the token at any time.
package token

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Key is the fixed storage key of the credential in both tiers.
const Key = "auth_token"

// Store owns the credential.
type Store struct {
	mu      sync.Mutex
	session Storage
	durable Storage
}

// NewStore returns a Store over the given tiers.
func NewStore(session, durable Storage) *Store {
	return &Store{session: session, durable: durable}
}

// NewDefaultStore uses the runtime dir for the session tier (memory when the
// platform has none) and ~/.thriftease for the durable tier.
func NewDefaultStore() (*Store, error) {
	durableDir, err := DurableDir()
	if err != nil {
		return nil, err
	}
	var session Storage = NewMemoryStorage()
	if dir, ok := SessionDir(); ok {
		session = NewFileStorage(dir)
	}
	return NewStore(session, NewFileStorage(durableDir)), nil
}

// SessionPersistent reports whether the session tier outlives the process.
// It is false when no runtime dir was found and the tier lives in memory.
func (s *Store) SessionPersistent() bool {
	_, mem := s.session.(*MemoryStorage)
	return !mem
}

// SetToken stores tok in the durable tier when remember is set, otherwise in
// the session tier. The other tier is cleared first. An empty tok clears both
// tiers. Errors wrap ErrStorageUnavailable; the tiers are still left with at
// most one copy of the token whenever the removals succeed.
func (s *Store) SetToken(tok string, remember bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok == "" {
		return errors.Join(s.session.Remove(Key), s.durable.Remove(Key))
	}
	keep, drop := s.session, s.durable
	if remember {
		keep, drop = s.durable, s.session
	}
	if err := drop.Remove(Key); err != nil {
		return err
	}
	return keep.Set(Key, tok)
}

// GetToken returns the session tier's token, else the durable tier's.
func (s *Store) GetToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok, ok := s.session.Get(Key); ok && tok != "" {
		return tok, true
	}
	if tok, ok := s.durable.Get(Key); ok && tok != "" {
		return tok, true
	}
	return "", false
}

// Token returns the current token or "". It suits client.AuthLink.
func (s *Store) Token() string {
	tok, _ := s.GetToken()
	return tok
}

// Remembered reports whether the token lives in the durable tier.
func (s *Store) Remembered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok, ok := s.session.Get(Key); ok && tok != "" {
		return false
	}
	tok, ok := s.durable.Get(Key)
	return ok && tok != ""
}

// Expiry reads the exp claim of a JWT without verifying its signature.
// ok is false when tok is not a JWT or carries no exp claim.
func Expiry(tok string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}
	t, err := claims.GetExpirationTime()
	if err != nil || t == nil {
		return time.Time{}, false
	}
	return t.Time, true
}

// Expired reports whether tok carries an exp claim in the past relative to now.
// Tokens without a readable exp are never considered expired; the server
// decides.
func Expired(tok string, now time.Time) bool {
	exp, ok := Expiry(tok)
	return ok && !now.Before(exp)
}
