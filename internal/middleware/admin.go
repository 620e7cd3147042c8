package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin 全局管理员，必须走 Bearer token
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Verified(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "bearer token required"})
			return
		}
		if !CurrentUser(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"msg": "admin only"})
			return
		}
		c.Next()
	}
}
