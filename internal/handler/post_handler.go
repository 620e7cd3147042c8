package handler

import (
	"net/http"
	"strconv"

	"Lingo_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc *service.PostService
}

type CreatePostReq struct {
	CommunityID uint64 `json:"communityId"`
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content"`
	Category    string `json:"category"`
}

type UpdatePostReq struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

type CommentReq struct {
	Content string `json:"content" binding:"required"`
}

func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// CreatePost 创建帖子接口
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), currentUser(c).ID, service.CreatePostInput{
		CommunityID: req.CommunityID,
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// List 帖子列表，可按 communityId / category 过滤
func (h *PostHandler) List(c *gin.Context) {
	var communityID uint64
	if s := c.Query("communityId"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			badRequest(c, "invalid communityId")
			return
		}
		communityID = v
	}
	page, size := pageQuery(c)

	list, err := h.svc.List(c.Request.Context(), communityID, c.Query("category"), page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	post, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// UpdatePost 修改帖子接口，只改传了的字段
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	post, err := h.svc.UpdatePost(c.Request.Context(), currentUser(c).ID, id, service.UpdatePostInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost 删除帖子接口
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePost(c.Request.Context(), currentUser(c).ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

func (h *PostHandler) Comments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Comments(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PostHandler) AddComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	comment, err := h.svc.AddComment(c.Request.Context(), currentUser(c).ID, id, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
