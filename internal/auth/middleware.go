package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
)

// Middleware verifies the bearer token when one is present and injects the
// caller into the request context. Requests without a valid token proceed
// without one; RequireAuth rejects them where needed.
func Middleware(authService *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		ac, err := authService.Authenticate(c.Request.Context(), header)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "failed to authenticate request",
				"error", err,
				"auth_header_length", len(header),
			)
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(WithAuthContext(c.Request.Context(), ac))
		slog.DebugContext(c.Request.Context(), "auth context injected", "user_id", ac.User.ID)
		c.Next()
	}
}

// FromGin returns the caller of the request, or nil.
func FromGin(c *gin.Context) *AuthContext {
	return GetAuthContext(c.Request.Context())
}

// RequireAuth rejects requests without an authenticated caller with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if FromGin(c) == nil {
			slog.WarnContext(c.Request.Context(), "authentication required but not provided",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireRole rejects callers holding none of roles with 403.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ac := FromGin(c)
		if ac == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "authentication required"})
			return
		}
		if !ac.HasRole(roles...) {
			slog.WarnContext(c.Request.Context(), "role check failed",
				"user_id", ac.User.ID,
				"role", ac.User.Role,
				"path", c.Request.URL.Path,
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "insufficient role"})
			return
		}
		c.Next()
	}
}
