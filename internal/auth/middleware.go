package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AccountChecker reloads the caller's current role, so promotions and
// deactivations take effect before the access token expires.
type AccountChecker interface {
	CurrentRole(ctx context.Context, userID string) (Role, error)
}

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>.
// When accounts is non-nil the role from the token is replaced by the stored one
// and disabled or deleted accounts are rejected.
func AuthRequired(jwtManager *JWTManager, accounts AccountChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing Authorization header",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid Authorization header format",
			})
			return
		}

		claims, err := jwtManager.ParseAndValidate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		role := claims.Role
		if accounts != nil {
			role, err = accounts.CurrentRole(c.Request.Context(), claims.UserID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "account is disabled or no longer exists",
				})
				return
			}
		}

		// Store user info into Gin context for later handlers.
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Set(ctxUserRole, role)

		c.Next()
	}
}

// RequireRole allows the request through only for callers holding one of roles.
// It must run after AuthRequired.
func RequireRole(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := GetRole(c)
		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
	}
}
