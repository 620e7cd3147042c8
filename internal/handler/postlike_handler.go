package handler

import (
	"net/http"

	"Lingo_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type PostLikeHandler struct {
	svc *service.PostLikeService
}

func NewPostLikeHandler(svc *service.PostLikeService) *PostLikeHandler {
	return &PostLikeHandler{svc: svc}
}

// Toggle 已点赞则取消，否则点赞
func (h *PostLikeHandler) Toggle(c *gin.Context) {
	pid, ok := paramID(c, "id")
	if !ok {
		return
	}
	st, err := h.svc.Toggle(c.Request.Context(), currentUser(c).ID, pid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *PostLikeHandler) Status(c *gin.Context) {
	pid, ok := paramID(c, "id")
	if !ok {
		return
	}
	st, err := h.svc.Status(c.Request.Context(), currentUser(c).ID, pid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
