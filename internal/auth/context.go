package auth

import (
	"context"
	"slices"
	"time"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
)

// AuthContext is the authenticated caller of a request. The auth middleware
// injects it after verifying the bearer token and reloading the user.
type AuthContext struct {
	User      model.User
	ExpiresAt time.Time
}

// UserID returns the id of the caller, or "" for a nil context.
func (ac *AuthContext) UserID() string {
	if ac == nil {
		return ""
	}
	return ac.User.ID
}

// HasRole reports whether the caller holds one of roles.
func (ac *AuthContext) HasRole(roles ...model.Role) bool {
	if ac == nil {
		return false
	}
	return slices.Contains(roles, ac.User.Role)
}

// IsSuperuser reports whether the caller may administer everything.
func (ac *AuthContext) IsSuperuser() bool {
	return ac.HasRole(model.RoleSuperuser)
}

type contextKey string

// AuthContextKey is the key for storing AuthContext in request context
const AuthContextKey contextKey = "authContext"

// WithAuthContext returns ctx carrying ac.
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, AuthContextKey, ac)
}

// GetAuthContext extracts the AuthContext from a request context.
// Returns nil if the request had no valid token.
func GetAuthContext(ctx context.Context) *AuthContext {
	ac, ok := ctx.Value(AuthContextKey).(*AuthContext)
	if !ok {
		return nil
	}
	return ac
}
