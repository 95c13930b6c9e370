// Package session tracks who is signed in. It owns the sign-in, verify and
// sign-out transitions and the account-recovery calls, and notifies
// subscribers whenever the signed-in user changes.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thriftease/thriftease/internal/logging"
	"github.com/thriftease/thriftease/internal/store"
	"github.com/thriftease/thriftease/internal/token"
	"github.com/thriftease/thriftease/pkg/client"
	"github.com/thriftease/thriftease/pkg/domain"
)

var (
	// ErrNoToken is returned by Verify when there is no token to check.
	ErrNoToken = errors.New("no auth token")
	// ErrTokenExpired is returned by Verify for a token whose exp claim has
	// passed. No request is made.
	ErrTokenExpired = errors.New("auth token expired")
)

// TokenStore persists the auth token between runs.
type TokenStore interface {
	SetToken(tok string, remember bool) error
	GetToken() (string, bool)
}

// Session is the client's authentication state: anonymous, or authenticated
// as a user. It is safe for concurrent use.
type Session struct {
	c      *client.Client
	tokens TokenStore
	log    *logrus.Entry
	now    func() time.Time

	mu        sync.Mutex
	user      *domain.User
	observers []observer
	nextID    int
}

type observer struct {
	id int
	fn func(*domain.User)
}

// New returns an anonymous session.
func New(c *client.Client, tokens TokenStore, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logging.Discard()
	}
	return &Session{
		c:      c,
		tokens: tokens,
		log:    logging.For(log, logging.ComponentSession),
		now:    time.Now,
	}
}

// User returns the signed-in user, or nil when anonymous.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SignedIn reports whether a user is signed in.
func (s *Session) SignedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Subscribe registers fn to be called with the new user (nil when anonymous)
// after every transition. The returned func removes it.
func (s *Session) Subscribe(fn func(*domain.User)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// setUser moves to the given state and notifies observers if it changed.
func (s *Session) setUser(u *domain.User) {
	s.mu.Lock()
	prev := s.user
	if u != nil {
		cp := *u
		u = &cp
	}
	s.user = u
	changed := (prev == nil) != (u == nil) || (prev != nil && *prev != *u)
	fns := make([]func(*domain.User), 0, len(s.observers))
	for _, o := range s.observers {
		fns = append(fns, o.fn)
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	entry := s.log
	if u != nil {
		entry = entry.WithField("user_id", u.ID)
	}
	entry.WithField("signed_in", u != nil).Info("session changed")
	for _, fn := range fns {
		if u == nil {
			fn(nil)
			continue
		}
		cp := *u
		fn(&cp)
	}
}

// SignIn exchanges credentials for a token. On success the token is stored,
// in the durable tier when remember is set, and the session becomes
// authenticated. On failure the state is left as it was.
func (s *Session) SignIn(ctx context.Context, email, password string, remember bool) store.Result[domain.SignInPayload] {
	r := client.Mutate[domain.SignInPayload](ctx, s.c, client.AuthSignIn,
		map[string]string{"email": email, "password": password})
	if r.Err != nil {
		s.log.WithError(r.Err).Warn("sign in failed")
		return store.Result[domain.SignInPayload]{Err: r.Err}
	}
	if r.Data == nil || r.Data.Token == "" || r.Data.User == nil {
		return store.Result[domain.SignInPayload]{Err: &client.TransportError{
			Op:      "client." + client.AuthSignIn.Name,
			Message: "empty sign-in response",
		}}
	}
	if err := s.tokens.SetToken(r.Data.Token, remember); err != nil {
		s.log.WithError(err).Warn("store token")
	}
	s.setUser(r.Data.User)
	return store.Result[domain.SignInPayload]{Data: r.Data}
}

// Verify checks tok, or the stored token when tok is empty, and updates the
// state to match the server's answer. Every failure leaves the session
// anonymous.
func (s *Session) Verify(ctx context.Context, tok string) (*domain.User, error) {
	stored := false
	if tok == "" {
		tok, stored = s.tokens.GetToken()
	}
	if tok == "" {
		s.setUser(nil)
		return nil, ErrNoToken
	}
	if token.Expired(tok, s.now()) {
		if stored {
			if err := s.tokens.SetToken("", false); err != nil {
				s.log.WithError(err).Warn("clear expired token")
			}
		}
		s.setUser(nil)
		return nil, ErrTokenExpired
	}

	r := client.Mutate[domain.VerifyPayload](ctx, s.c, client.AuthVerify, map[string]string{"token": tok},
		client.KeepCache())
	if r.Err != nil {
		s.log.WithError(r.Err).Info("verify failed")
		s.setUser(nil)
		return nil, r.Err
	}
	if r.Data == nil || r.Data.User == nil {
		s.setUser(nil)
		return nil, &client.TransportError{Op: "client." + client.AuthVerify.Name, Message: "token not accepted"}
	}
	s.setUser(r.Data.User)
	return s.User(), nil
}

// SignOut forgets the token and becomes anonymous. No request is made.
func (s *Session) SignOut() {
	if err := s.tokens.SetToken("", false); err != nil {
		s.log.WithError(err).Warn("clear token")
	}
	s.setUser(nil)
}

// SignUp registers a new user. It does not sign the user in.
func (s *Session) SignUp(ctx context.Context, in domain.CreateUserInput) store.Result[domain.User] {
	if in.ClientMutationID == "" {
		in.ClientMutationID = uuid.NewString()
	}
	r := client.Mutate[client.MutationPayload[domain.User]](ctx, s.c, client.AuthSignUp, map[string]any{"user": in})
	return fromPayload(r)
}

// SendReset asks the server to mail a password-reset link to email.
func (s *Session) SendReset(ctx context.Context, email string) store.Result[bool] {
	r := client.Mutate[client.MutationPayload[bool]](ctx, s.c, client.AuthSendReset, map[string]string{"email": email})
	return fromPayload(r)
}

// VerifyReset checks a reset token and returns the user it belongs to.
func (s *Session) VerifyReset(ctx context.Context, tok string) store.Result[domain.User] {
	r := client.Mutate[client.MutationPayload[domain.User]](ctx, s.c, client.AuthVerifyReset, map[string]string{"token": tok})
	return fromPayload(r)
}

// ApplyReset sets a new password using a reset token. The user must sign in
// afterwards.
func (s *Session) ApplyReset(ctx context.Context, tok, password string) store.Result[domain.User] {
	in := domain.ApplyResetInput{ClientMutationID: uuid.NewString(), Token: tok, Password: password}
	r := client.Mutate[client.MutationPayload[domain.User]](ctx, s.c, client.AuthApplyReset, map[string]any{"input": in})
	return fromPayload(r)
}

// EmailExisting reports whether an account uses email. It returns false when
// the server cannot be asked.
func (s *Session) EmailExisting(ctx context.Context, email string) bool {
	r := client.Query[bool](ctx, s.c, client.AuthExisting, map[string]string{"email": email},
		client.WithFetchPolicy(client.NoCache))
	if r.Err != nil {
		s.log.WithError(r.Err).Warn("email probe failed, assuming absent")
		return false
	}
	return r.Data != nil && *r.Data
}

func fromPayload[T any](r client.Result[client.MutationPayload[T]]) store.Result[T] {
	if r.Err != nil {
		return store.Result[T]{Err: r.Err}
	}
	if r.Data == nil {
		return store.Result[T]{}
	}
	return store.Result[T]{Data: r.Data.Data, Errors: r.Data.Errors}
}
