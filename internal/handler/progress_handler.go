package handler

import (
	"net/http"

	"Lingo_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	svc *service.ProgressService
}

type UpdateProgressReq struct {
	CardID     uint64 `json:"cardId" binding:"required"`
	Difficulty int    `json:"difficulty" binding:"required,oneof=1 2 3"`
}

func NewProgressHandler(svc *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// Update 记录一次复习
func (h *ProgressHandler) Update(c *gin.Context) {
	var req UpdateProgressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "cardId and difficulty (1, 2 or 3) are required")
		return
	}

	p, err := h.svc.RecordReview(c.Request.Context(), currentUser(c).ID, req.CardID, service.Difficulty(req.Difficulty))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProgressHandler) Due(c *gin.Context) {
	list, err := h.svc.ListDue(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProgressHandler) ForCard(c *gin.Context) {
	cardID, ok := paramID(c, "cardId")
	if !ok {
		return
	}
	p, err := h.svc.GetForCard(c.Request.Context(), currentUser(c).ID, cardID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
