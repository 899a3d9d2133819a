package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/ldsaas/portal/internal/api"
	"github.com/ldsaas/portal/internal/session"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	anon := session.Session{}
	employee := session.Session{Token: "t", Role: session.RoleEmployee}
	manager := session.Session{Token: "t", Role: session.RoleManager}
	admin := session.Session{Token: "t", Role: session.RoleAdmin}

	cases := []struct {
		name string
		path string
		sess session.Session
		want Decision
	}{
		{"anonymous root goes to login", "/", anon, Decision{Kind: Redirect, Target: "/login"}},
		{"anonymous protected page goes to login", "/manager", anon, Decision{Kind: Redirect, Target: "/login"}},
		{"anonymous login renders", "/login", anon, Decision{Kind: Render}},
		{"anonymous accept-invite renders", "/accept-invite", anon, Decision{Kind: Render}},
		{"anonymous static renders", "/static/app.css", anon, Decision{Kind: Render}},
		{"employee root lands on employee home", "/", employee, Decision{Kind: Redirect, Target: "/employee"}},
		{"manager root lands on manager home", "/", manager, Decision{Kind: Redirect, Target: "/manager"}},
		{"admin shares manager home", "/", admin, Decision{Kind: Redirect, Target: "/manager"}},
		{"signed-in login bounces home", "/login", manager, Decision{Kind: Redirect, Target: "/manager"}},
		{"employee on manager page corrected", "/manager", employee, Decision{Kind: Redirect, Target: "/employee"}},
		{"manager on employee page corrected", "/employee", manager, Decision{Kind: Redirect, Target: "/manager"}},
		{"admin may open manager pages", "/manager", admin, Decision{Kind: Render}},
		{"employee home renders", "/employee", employee, Decision{Kind: Render}},
		{"shared page renders for any role", "/profile", employee, Decision{Kind: Render}},
		{"admin console corrects employees", "/admin", employee, Decision{Kind: Redirect, Target: "/employee"}},
		{"admin console renders for admins", "/admin", admin, Decision{Kind: Render}},
		{"invite builder renders for any signed-in role", "/invite", employee, Decision{Kind: Render}},
		{"invite builder renders for managers", "/invite", manager, Decision{Kind: Render}},
		{"anonymous invite builder goes to login", "/invite", anon, Decision{Kind: Redirect, Target: "/login"}},
		{"unresolved role may still reach login", "/login", session.Session{Token: "t"}, Decision{Kind: Render}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Decide(tc.path, tc.sess))
		})
	}
}

func TestDecideCorrectionsReplaceHistory(t *testing.T) {
	t.Parallel()

	got := Decide("/manager", session.Session{Token: "t", Role: session.RoleEmployee})
	require.Equal(t, Redirect, got.Kind)
	require.Equal(t, NavReplace, got.Nav)
}

type fakeIdentity struct {
	user *api.User
	err  error
}

func (f *fakeIdentity) Me(ctx context.Context, token string) (*api.User, error) {
	return f.user, f.err
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test"))
	require.NoError(t, err)
	return tok
}

func TestResolvePrefersRoleClaim(t *testing.T) {
	t.Parallel()

	resolver := &Resolver{API: &fakeIdentity{err: errors.New("must not be called")}}
	token := signedToken(t, jwt.MapClaims{"sub": "7", "role": "manager"})
	role, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, session.RoleManager, role)
}

func TestResolveFallsBackToIdentityLookup(t *testing.T) {
	t.Parallel()

	resolver := &Resolver{API: &fakeIdentity{user: &api.User{Role: "employee"}}}
	token := signedToken(t, jwt.MapClaims{"sub": "7"})
	role, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, session.RoleEmployee, role)
}

func TestResolvePropagatesLookupFailure(t *testing.T) {
	t.Parallel()

	resolver := &Resolver{API: &fakeIdentity{err: &api.AuthError{Message: "expired"}}}
	role, err := resolver.Resolve(context.Background(), "not-a-jwt")
	require.Error(t, err)
	require.Equal(t, session.RoleUnknown, role)
}
