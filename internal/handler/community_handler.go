package handler

import (
	"errors"
	"net/http"
	"time"

	"Lingo_Community/internal/middleware"
	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	svc   *service.CommunityService
	users *service.UserService
}

type CommunityCreateReq struct {
	Name            string     `json:"name" binding:"required"`
	Description     string     `json:"description"`
	EstablishedDate *time.Time `json:"establishedDate"`
}

type JoinReq struct {
	CommunityID uint64 `json:"communityId" binding:"required"`
	ClerkUserID string `json:"clerkUserId"`
}

func NewCommunityHandler(svc *service.CommunityService, users *service.UserService) *CommunityHandler {
	return &CommunityHandler{svc: svc, users: users}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	var established time.Time
	if req.EstablishedDate != nil {
		established = *req.EstablishedDate
	}

	community, err := h.svc.CreateCommunity(c.Request.Context(), currentUser(c).ID, req.Name, req.Description, established)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, community)
}

func (h *CommunityHandler) List(c *gin.Context) {
	page, size := pageQuery(c)
	list, err := h.svc.List(c.Request.Context(), page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	community, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

// Join clerkUserId 可以放在 body 里，也可以走 user-id 头
func (h *CommunityHandler) Join(c *gin.Context) {
	var req JoinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "communityId is required")
		return
	}
	if req.ClerkUserID == "" {
		req.ClerkUserID = c.GetHeader(middleware.UserIDHeader)
	}
	if req.ClerkUserID == "" {
		badRequest(c, "clerkUserId is required")
		return
	}

	user, err := h.users.ByClerkID(c.Request.Context(), req.ClerkUserID)
	if err != nil {
		writeError(c, err)
		return
	}
	m, err := h.svc.RequestJoin(c.Request.Context(), user.ID, req.CommunityID)
	if err != nil {
		if errors.Is(err, pkg.ErrConflict) {
			// 重复加入按 400 返回
			badRequest(c, "already a member")
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *CommunityHandler) Available(c *gin.Context) {
	user, ok := h.queryUser(c)
	if !ok {
		return
	}
	list, err := h.svc.Available(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CommunityHandler) Joined(c *gin.Context) {
	user, ok := h.queryUser(c)
	if !ok {
		return
	}
	list, err := h.svc.Joined(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Leave(c.Request.Context(), currentUser(c).ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) Requests(c *gin.Context) {
	id, ok := h.managed(c)
	if !ok {
		return
	}
	list, err := h.svc.Requests(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CommunityHandler) Approve(c *gin.Context) {
	id, ok := h.managed(c)
	if !ok {
		return
	}
	target, ok := h.paramUser(c)
	if !ok {
		return
	}
	m, err := h.svc.Approve(c.Request.Context(), id, target.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *CommunityHandler) Reject(c *gin.Context) {
	id, ok := h.managed(c)
	if !ok {
		return
	}
	target, ok := h.paramUser(c)
	if !ok {
		return
	}
	if err := h.svc.Reject(c.Request.Context(), id, target.ID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "request rejected"})
}

func (h *CommunityHandler) Kick(c *gin.Context) {
	id, ok := h.managed(c)
	if !ok {
		return
	}
	target, ok := h.paramUser(c)
	if !ok {
		return
	}
	if err := h.svc.Kick(c.Request.Context(), id, target.ID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "member removed"})
}

// managed 解析 :id 并校验当前用户能管理该社区；管理操作必须带 Bearer token
func (h *CommunityHandler) managed(c *gin.Context) (uint64, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return 0, false
	}
	if !middleware.Verified(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "bearer token required"})
		return 0, false
	}
	can, err := h.svc.CanManage(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return 0, false
	}
	if !can {
		c.JSON(http.StatusForbidden, gin.H{"msg": "community admin only"})
		return 0, false
	}
	return id, true
}

// paramUser :userId 只接受内部数字 id，和成员行里的 userId 一致
func (h *CommunityHandler) paramUser(c *gin.Context) (*model.User, bool) {
	id, ok := paramID(c, "userId")
	if !ok {
		return nil, false
	}
	user, err := h.users.ByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return user, true
}

func (h *CommunityHandler) queryUser(c *gin.Context) (*model.User, bool) {
	clerkID := c.Query("clerkUserId")
	if clerkID == "" {
		clerkID = c.GetHeader(middleware.UserIDHeader)
	}
	if clerkID == "" {
		badRequest(c, "clerkUserId required")
		return nil, false
	}
	user, err := h.users.ByClerkID(c.Request.Context(), clerkID)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return user, true
}
