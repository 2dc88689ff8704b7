package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	tenantIDKey = "tenantId"
	userIDKey   = "userId"

	headerTenantID = "x-tenant-id"
	headerUserID   = "x-user-id"
)

// Identity resolves the acting tenant and user for the request. Headers win;
// otherwise the configured defaults apply, so a bare local setup works
// without any client-side identity plumbing. The resolved identity is echoed
// back on the response.
func Identity(defaultTenantID, defaultUserID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.TrimSpace(c.GetHeader(headerTenantID))
		if tenantID == "" {
			tenantID = defaultTenantID
		}
		userID := strings.TrimSpace(c.GetHeader(headerUserID))
		if userID == "" {
			userID = defaultUserID
		}

		c.Set(tenantIDKey, tenantID)
		c.Set(userIDKey, userID)
		c.Writer.Header().Set("X-Tenant-Id", tenantID)
		c.Writer.Header().Set("X-User-Id", userID)
		c.Next()
	}
}

// TenantIDFromContext fetches the tenant id stored by Identity middleware.
func TenantIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(tenantIDKey)
}

// UserIDFromContext fetches the user id stored by Identity middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}
