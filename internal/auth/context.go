package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID    = "userID"
	ctxUserEmail = "userEmail"
	ctxUserRole  = "userRole"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ctxUserEmail)
}

// GetRole returns the authenticated user's role or empty string.
func GetRole(c *gin.Context) Role {
	if v, ok := c.Get(ctxUserRole); ok {
		if r, ok := v.(Role); ok {
			return r
		}
	}
	return ""
}

// SetRole overrides the role taken from the token, e.g. after reloading the account.
func SetRole(c *gin.Context, role Role) {
	c.Set(ctxUserRole, role)
}

// GetPrincipal collects the caller identity stored by AuthRequired.
func GetPrincipal(c *gin.Context) Principal {
	return Principal{
		UserID: GetUserID(c),
		Email:  GetUserEmail(c),
		Role:   GetRole(c),
	}
}
