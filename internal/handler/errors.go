package handler

import (
	"log"
	"net/http"
	"strconv"

	"Lingo_Community/internal/middleware"
	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"

	"github.com/gin-gonic/gin"
)

// writeError 按 AppError.Kind 映射状态码，其他错误一律 500
func writeError(c *gin.Context, err error) {
	var status int
	switch pkg.KindOf(err) {
	case pkg.KindValidation:
		status = http.StatusBadRequest
	case pkg.KindNotFound:
		status = http.StatusNotFound
	case pkg.KindConflict:
		status = http.StatusConflict
	case pkg.KindForbidden:
		status = http.StatusForbidden
	case pkg.KindUnauthorized:
		status = http.StatusUnauthorized
	default:
		log.Printf("%s %s err: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
		return
	}
	body := gin.H{"msg": err.Error()}
	if ae, ok := err.(*pkg.AppError); ok && ae.Details != nil {
		body["details"] = ae.Details
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"msg": msg})
}

// paramID 解析路径里的正整数 id，失败时已写 400
func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func currentUser(c *gin.Context) *model.User {
	return middleware.CurrentUser(c)
}

// actingUser 权限判断用；只带 user-id 头的请求不享有 admin 身份
func actingUser(c *gin.Context) *model.User {
	u := middleware.CurrentUser(c)
	if u == nil || middleware.Verified(c) || !u.IsAdmin() {
		return u
	}
	demoted := *u
	demoted.Role = model.RoleUser
	return &demoted
}

func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	return page, size
}
