package guard

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ldsaas/portal/internal/api"
	"github.com/ldsaas/portal/internal/session"
)

// identitySource is the slice of the API client the resolver needs.
type identitySource interface {
	Me(ctx context.Context, token string) (*api.User, error)
}

// Resolver recovers a missing role for a session that still has a token,
// which happens when older cookies predate the role cookie. The token's
// claims are read without signature verification; they only steer which
// page renders, never what the API permits.
type Resolver struct {
	API identitySource
}

// Resolve returns the role behind a token, preferring the token's own role
// claim and falling back to an authenticated identity lookup.
func (r *Resolver) Resolve(ctx context.Context, token string) (session.Role, error) {
	if role := roleFromClaims(token); role != session.RoleUnknown {
		return role, nil
	}
	user, err := r.API.Me(ctx, token)
	if err != nil {
		return session.RoleUnknown, err
	}
	return session.ParseRole(user.Role), nil
}

func roleFromClaims(token string) session.Role {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return session.RoleUnknown
	}
	raw, ok := claims["role"].(string)
	if !ok {
		return session.RoleUnknown
	}
	return session.ParseRole(raw)
}
