// Package router maps named screens onto a route tree and runs navigation
// guards before every transition. The TUI and the CLI navigate through it.
package router

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/thriftease/thriftease/internal/logging"
)

var (
	// ErrUnknownRoute is returned when navigating to a name that is not in
	// the tree.
	ErrUnknownRoute = errors.New("unknown route")
	// ErrRedirectLoop is returned when redirects do not settle.
	ErrRedirectLoop = errors.New("too many redirects")
)

// maxHops bounds redirects and guard restarts within one navigation.
const maxHops = 10

// Requirement is the authentication state a route demands.
type Requirement int

const (
	RequireNone Requirement = iota
	RequireAuthenticated
	RequireAnonymous
)

func (r Requirement) String() string {
	switch r {
	case RequireAuthenticated:
		return "authenticated"
	case RequireAnonymous:
		return "anonymous"
	default:
		return "none"
	}
}

// Route is a node of the route tree. A route's effective requirement is taken
// from its whole chain of ancestors, see Match.Requirement.
type Route struct {
	Name     string
	Path     string
	Auth     Requirement
	Title    string
	Redirect string
	Children []Route
}

// Match is a resolved route: the route itself and the chain of routes from
// the root down to it.
type Match struct {
	Name    string
	Path    string
	Title   string
	Matched []Route
}

// Requirement returns RequireAuthenticated when any route in the chain
// demands it, else RequireAnonymous when any route demands that, else
// RequireNone.
func (m Match) Requirement() Requirement {
	if m.requires(RequireAuthenticated) {
		return RequireAuthenticated
	}
	if m.requires(RequireAnonymous) {
		return RequireAnonymous
	}
	return RequireNone
}

func (m Match) requires(req Requirement) bool {
	for _, r := range m.Matched {
		if r.Auth == req {
			return true
		}
	}
	return false
}

func (m Match) redirect() string {
	if len(m.Matched) == 0 {
		return ""
	}
	return m.Matched[len(m.Matched)-1].Redirect
}

// Guard runs before every navigation. A non-empty redirect restarts the
// navigation at that route; a non-nil error aborts it.
type Guard interface {
	BeforeEach(ctx context.Context, to, from Match) (redirect string, err error)
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(ctx context.Context, to, from Match) (string, error)

func (f GuardFunc) BeforeEach(ctx context.Context, to, from Match) (string, error) {
	return f(ctx, to, from)
}

// Router resolves names and tracks the current location.
type Router struct {
	byName map[string]Match
	log    *logrus.Entry

	mu      sync.Mutex
	guards  []Guard
	current Match
	title   string
}

// New indexes routes by name. Names must be unique.
func New(routes []Route, log logrus.FieldLogger) (*Router, error) {
	if log == nil {
		log = logging.Discard()
	}
	r := &Router{
		byName: make(map[string]Match),
		log:    logging.For(log, logging.ComponentRouter),
		title:  DefaultTitle,
	}
	if err := r.index(routes, "/", nil); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Router) index(routes []Route, parent string, chain []Route) error {
	for _, rt := range routes {
		full := rt.Path
		if !path.IsAbs(full) {
			full = path.Join(parent, full)
		}
		matched := append(append([]Route{}, chain...), rt)
		if rt.Name != "" {
			if _, dup := r.byName[rt.Name]; dup {
				return fmt.Errorf("router.New: duplicate route name %q", rt.Name)
			}
			r.byName[rt.Name] = Match{Name: rt.Name, Path: full, Title: rt.Title, Matched: matched}
		}
		if err := r.index(rt.Children, full, matched); err != nil {
			return err
		}
	}
	return nil
}

// Use appends guards. They run in the order added.
func (r *Router) Use(guards ...Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards = append(r.guards, guards...)
}

// Resolve looks up a route by name without navigating or following
// redirects.
func (r *Router) Resolve(name string) (Match, error) {
	m, ok := r.byName[name]
	if !ok {
		return Match{}, fmt.Errorf("router.Resolve %q: %w", name, ErrUnknownRoute)
	}
	return m, nil
}

// Current returns the location of the last completed navigation.
func (r *Router) Current() Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Title returns the window title of the current location.
func (r *Router) Title() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.title
}

func (r *Router) setTitle(title string) {
	r.mu.Lock()
	r.title = title
	r.mu.Unlock()
}

// Push navigates to name. Route redirects are followed first, then every
// guard runs; a guard redirect starts over at the new target. On success the
// final location becomes current and is returned.
func (r *Router) Push(ctx context.Context, name string) (Match, error) {
	r.mu.Lock()
	from := r.current
	guards := append([]Guard(nil), r.guards...)
	r.mu.Unlock()

	target := name
	for hop := 0; hop < maxHops; hop++ {
		to, err := r.Resolve(target)
		if err != nil {
			return Match{}, err
		}
		if next := to.redirect(); next != "" {
			target = next
			continue
		}

		redirected := false
		for _, g := range guards {
			next, err := g.BeforeEach(ctx, to, from)
			if err != nil {
				r.log.WithError(err).WithField(logging.FieldRoute, to.Name).Warn("navigation aborted")
				return Match{}, fmt.Errorf("router.Push %q: %w", to.Name, err)
			}
			if next != "" {
				r.log.WithFields(logrus.Fields{logging.FieldRoute: to.Name, "redirect": next}).Debug("guard redirect")
				target = next
				redirected = true
				break
			}
		}
		if redirected {
			continue
		}

		r.mu.Lock()
		r.current = to
		r.mu.Unlock()
		r.log.WithField(logging.FieldRoute, to.Name).Debug("navigated")
		return to, nil
	}
	return Match{}, fmt.Errorf("router.Push %q: %w", name, ErrRedirectLoop)
}
