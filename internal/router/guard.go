package router

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/thriftease/thriftease/internal/logging"
	"github.com/thriftease/thriftease/pkg/domain"
)

// Verifier is the part of the session the auth guard needs.
type Verifier interface {
	Verify(ctx context.Context, tok string) (*domain.User, error)
	SignedIn() bool
}

// AuthGuard keeps anonymous users out of authenticated routes and signed-in
// users out of anonymous ones.
type AuthGuard struct {
	session   Verifier
	signIn    string
	dashboard string
	log       *logrus.Entry

	mu   sync.Mutex
	skip bool
}

// NewAuthGuard redirects to SignIn and Dashboard.
func NewAuthGuard(session Verifier, log logrus.FieldLogger) *AuthGuard {
	if log == nil {
		log = logging.Discard()
	}
	return &AuthGuard{
		session:   session,
		signIn:    SignIn,
		dashboard: Dashboard,
		log:       logging.For(log, logging.ComponentRouter).WithField("guard", "auth"),
	}
}

// BeforeEach verifies the session and redirects when the target's
// requirement is not met. After issuing a redirect it lets the next
// navigation through unchecked.
func (g *AuthGuard) BeforeEach(ctx context.Context, to, from Match) (string, error) {
	g.mu.Lock()
	skip := g.skip
	g.skip = false
	g.mu.Unlock()
	if skip {
		return "", nil
	}

	if _, err := g.session.Verify(ctx, ""); err != nil {
		g.log.WithError(err).Debug("session not verified")
	}

	switch to.Requirement() {
	case RequireAuthenticated:
		if !g.session.SignedIn() {
			return g.redirect(g.signIn), nil
		}
	case RequireAnonymous:
		if g.session.SignedIn() {
			return g.redirect(g.dashboard), nil
		}
	}
	return "", nil
}

func (g *AuthGuard) redirect(name string) string {
	g.mu.Lock()
	g.skip = true
	g.mu.Unlock()
	return name
}

// TitleGuard sets the router's title from the target route.
func TitleGuard(r *Router) Guard {
	return GuardFunc(func(_ context.Context, to, _ Match) (string, error) {
		r.setTitle(Title(to.Title))
		return "", nil
	})
}
