package router

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thriftease/thriftease/pkg/domain"
)

// fakeSession counts Verify calls and reports a fixed state.
type fakeSession struct {
	mu       sync.Mutex
	signedIn bool
	verifies int
}

func (f *fakeSession) Verify(context.Context, string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifies++
	if !f.signedIn {
		return nil, errors.New("anonymous")
	}
	return &domain.User{ID: "1"}, nil
}

func (f *fakeSession) SignedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signedIn
}

func (f *fakeSession) verifyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifies
}

func newDefault(t *testing.T, signedIn bool) (*Router, *fakeSession) {
	t.Helper()
	s := &fakeSession{signedIn: signedIn}
	r, err := Default(s, nil)
	require.NoError(t, err)
	return r, s
}

func TestResolvePathsAndRequirements(t *testing.T) {
	r, _ := newDefault(t, false)

	tests := []struct {
		name string
		path string
		req  Requirement
	}{
		{Index, "/", RequireNone},
		{Auth, "/auth", RequireAnonymous},
		{SignIn, "/auth/sign-in", RequireAnonymous},
		{Reset, "/auth/reset", RequireAnonymous},
		{Dashboard, "/dashboard", RequireAuthenticated},
		{Transactions, "/dashboard/transactions", RequireAuthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := r.Resolve(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.path, m.Path)
			assert.Equal(t, tt.req, m.Requirement())
		})
	}

	_, err := r.Resolve("nowhere")
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestAuthenticatedAncestorWins(t *testing.T) {
	r, err := New([]Route{
		{
			Path: "/a",
			Auth: RequireAuthenticated,
			Children: []Route{
				{Name: "marked-anonymous", Path: "anon", Auth: RequireAnonymous},
				{Name: "inherit", Path: "inherit"},
			},
		},
		{
			Path: "/b",
			Auth: RequireAnonymous,
			Children: []Route{
				{Name: "anon-inherit", Path: "inherit"},
				{Name: "authed-child", Path: "authed", Auth: RequireAuthenticated},
			},
		},
	}, nil)
	require.NoError(t, err)

	tests := map[string]Requirement{
		"marked-anonymous": RequireAuthenticated,
		"inherit":          RequireAuthenticated,
		"anon-inherit":     RequireAnonymous,
		"authed-child":     RequireAuthenticated,
	}
	for name, want := range tests {
		m, err := r.Resolve(name)
		require.NoError(t, err)
		assert.Equal(t, want, m.Requirement(), name)
	}
}

func TestDuplicateNames(t *testing.T) {
	_, err := New([]Route{{Name: "x", Path: "/x"}, {Name: "x", Path: "/y"}}, nil)
	assert.Error(t, err)
}

func TestIndexRedirectsToSignIn(t *testing.T) {
	r, _ := newDefault(t, false)
	m, err := r.Push(context.Background(), Index)
	require.NoError(t, err)
	assert.Equal(t, SignIn, m.Name)
	assert.Equal(t, "ThriftEase - Sign in", r.Title())
}

func TestAnonymousRedirectedToSignInOnce(t *testing.T) {
	r, s := newDefault(t, false)

	for i := 0; i < 3; i++ {
		m, err := r.Push(context.Background(), Accounts)
		require.NoError(t, err)
		assert.Equal(t, SignIn, m.Name)
	}
	// One verify per navigation: the redirected pass is let through.
	assert.Equal(t, 3, s.verifyCount())
	assert.Equal(t, SignIn, r.Current().Name)
}

func TestSignedInRedirectedToDashboard(t *testing.T) {
	r, s := newDefault(t, true)

	m, err := r.Push(context.Background(), SignUp)
	require.NoError(t, err)
	assert.Equal(t, Currencies, m.Name)
	assert.Equal(t, "ThriftEase - Currencies", r.Title())
	assert.Equal(t, 1, s.verifyCount())
}

func TestAllowedNavigation(t *testing.T) {
	r, s := newDefault(t, true)

	m, err := r.Push(context.Background(), Tags)
	require.NoError(t, err)
	assert.Equal(t, Tags, m.Name)
	assert.Equal(t, "/dashboard/tags", m.Path)
	assert.Equal(t, 1, s.verifyCount())

	m, err = r.Push(context.Background(), Transactions)
	require.NoError(t, err)
	assert.Equal(t, Transactions, m.Name)
	assert.Equal(t, 2, s.verifyCount())
}

func TestSkipFlagIsOneShot(t *testing.T) {
	s := &fakeSession{}
	g := NewAuthGuard(s, nil)
	r, _ := newDefault(t, false)
	to, _ := r.Resolve(Currencies)

	next, err := g.BeforeEach(context.Background(), to, Match{})
	require.NoError(t, err)
	assert.Equal(t, SignIn, next)
	assert.Equal(t, 1, s.verifyCount())

	next, err = g.BeforeEach(context.Background(), to, Match{})
	require.NoError(t, err)
	assert.Empty(t, next, "skip flag lets one navigation through")
	assert.Equal(t, 1, s.verifyCount())

	next, _ = g.BeforeEach(context.Background(), to, Match{})
	assert.Equal(t, SignIn, next)
	assert.Equal(t, 2, s.verifyCount())
}

func TestGuardErrorAborts(t *testing.T) {
	r, err := New(Routes(), nil)
	require.NoError(t, err)
	boom := errors.New("boom")
	r.Use(GuardFunc(func(context.Context, Match, Match) (string, error) { return "", boom }))

	_, err = r.Push(context.Background(), SignIn)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, r.Current().Name)
	assert.Equal(t, DefaultTitle, r.Title())
}

func TestRedirectLoop(t *testing.T) {
	r, err := New([]Route{
		{Name: "a", Path: "/a", Redirect: "b"},
		{Name: "b", Path: "/b", Redirect: "a"},
	}, nil)
	require.NoError(t, err)

	_, err = r.Push(context.Background(), "a")
	assert.ErrorIs(t, err, ErrRedirectLoop)
}

func TestGuardsSeeFrom(t *testing.T) {
	r, err := New(Routes(), nil)
	require.NoError(t, err)
	var froms []string
	r.Use(GuardFunc(func(_ context.Context, _ Match, from Match) (string, error) {
		froms = append(froms, from.Name)
		return "", nil
	}))

	_, err = r.Push(context.Background(), SignIn)
	require.NoError(t, err)
	_, err = r.Push(context.Background(), SignUp)
	require.NoError(t, err)
	assert.Equal(t, []string{"", SignIn}, froms)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "ThriftEase", Title(""))
	assert.Equal(t, "ThriftEase - Tags", Title("Tags"))
}
