package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"birthdayReminderTracker/internal/apperr"
	"birthdayReminderTracker/models"
)

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", errors.New("missing bearer token")
	}
	return tok, nil
}

// Middleware validates a Bearer JWT and injects the Principal into the request context.
// Requests without a valid token are rejected as unauthenticated.
func Middleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := ParseBearer(c.GetHeader("Authorization"))
		if err != nil {
			apperr.Abort(c, apperr.Authentication("Unauthorized"))
			return
		}
		claims := tokens.Verify(raw)
		if claims == nil {
			apperr.Abort(c, apperr.Authentication("Unauthorized"))
			return
		}
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), claims.Principal()))
		c.Next()
	}
}

// RequirePrincipal ensures a principal is present in context.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, apperr.Authentication("Unauthorized")
	}
	return p, nil
}

// RequireRole rejects callers whose token role is not one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := requireRole(c.Request.Context(), roles); err != nil {
			apperr.Abort(c, err)
			return
		}
		c.Next()
	}
}

func requireRole(ctx context.Context, roles []models.Role) (*Principal, error) {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if p.Role == r {
			return p, nil
		}
	}
	return nil, apperr.Authorization("Insufficient role")
}

// UserLookup loads a user by id.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// RequireAdmin ensures the caller is an admin principal AND that the stored
// user still has role admin. This prevents a stale token from keeping admin rights.
func RequireAdmin(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		p, err := requireRole(ctx, []models.Role{models.RoleAdmin})
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		u, err := users.GetByID(ctx, p.UserID)
		if err != nil {
			apperr.Abort(c, apperr.Internal(err))
			return
		}
		if !u.IsAdmin() {
			apperr.Abort(c, apperr.Authorization("Admin access required"))
			return
		}
		c.Next()
	}
}
