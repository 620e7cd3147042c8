package handler

import (
	"net/http"

	"Lingo_Community/internal/service"

	"github.com/gin-gonic/gin"
)

const SyncKeyHeader = "X-Sync-Key"

type UserHandler struct {
	svc *service.UserService
}

// SyncReq 身份服务推过来的用户资料
type SyncReq struct {
	ClerkUserID    string `json:"clerkUserId"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	TelegramChatID *int64 `json:"telegramChatId"`
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Sync 按 clerkUserId 新建或更新用户
func (h *UserHandler) Sync(c *gin.Context) {
	if err := h.svc.CheckSyncKey(c.GetHeader(SyncKeyHeader)); err != nil {
		writeError(c, err)
		return
	}
	var req SyncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	res, err := h.svc.Sync(c.Request.Context(), service.SyncInput{
		ClerkUserID:    req.ClerkUserID,
		Username:       req.Username,
		Email:          req.Email,
		Role:           req.Role,
		TelegramChatID: req.TelegramChatID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

func (h *UserHandler) ByClerkID(c *gin.Context) {
	u, err := h.svc.ByClerkID(c.Request.Context(), c.Param("clerkUserId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), currentUser(c).ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// TokenRefresh 利用refresh来更新access
func (h *UserHandler) TokenRefresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}
