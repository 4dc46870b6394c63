package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TenantGuard ensures the tenant context AuthMiddleware derives from the
// JWT is present before any tenant-scoped route runs. Every repository
// query is keyed by this tenant id, so a request without it must not reach
// a handler.
func TenantGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, exists := c.Get(ContextKeyTenantID)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "tenant context required"},
			})
			return
		}
		c.Next()
	}
}
