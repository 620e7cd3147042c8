package middleware

import (
	"errors"
	"net/http"
	"strings"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "user_id"
	ContextUserKey   = "user"
	ContextAuthKey   = "auth_method"
	UserIDHeader     = "user-id"

	AuthBearer = "bearer"
	AuthHeader = "header"
)

// Identify 优先 Bearer token；没有 Authorization 时退回 user-id 头（clerk user id）
func Identify(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			user   *model.User
			err    error
			method string
		)
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization format"})
				return
			}
			user, err = users.Authenticate(c.Request.Context(), parts[1])
			method = AuthBearer
		} else if clerkID := strings.TrimSpace(c.GetHeader(UserIDHeader)); clerkID != "" {
			user, err = users.ByClerkID(c.Request.Context(), clerkID)
			method = AuthHeader
		} else {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing user identity"})
			return
		}

		if err != nil {
			switch {
			case errors.Is(err, pkg.ErrUnauthorized):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			case errors.Is(err, pkg.ErrNotFound):
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"msg": "user not found"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
			}
			return
		}

		// 注入 user_id 和 user
		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserKey, user)
		c.Set(ContextAuthKey, method)
		c.Next()
	}
}

// Verified 身份来自签名过的 access token；user-id 头只是自报的身份
func Verified(c *gin.Context) bool {
	return c.GetString(ContextAuthKey) == AuthBearer
}

// CurrentUser 必须在 Identify 之后调用
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}
