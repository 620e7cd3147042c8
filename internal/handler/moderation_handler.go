package handler

import (
	"errors"
	"io"
	"net/http"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	svc   *service.ModerationService
	users *service.UserService
}

type ReportReq struct {
	Reason     string `json:"reason" binding:"required"`
	Details    string `json:"details"`
	ReporterID string `json:"reporterId"`
}

type ModerateReq struct {
	Notes string `json:"notes"`
}

func NewModerationHandler(svc *service.ModerationService, users *service.UserService) *ModerationHandler {
	return &ModerationHandler{svc: svc, users: users}
}

// Report reporterId 是 clerk user id；不传时用当前登录用户
func (h *ModerationHandler) Report(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	reporter := actingUser(c)
	if req.ReporterID != "" && req.ReporterID != reporter.ClerkUserID {
		if !reporter.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"msg": "cannot report on behalf of another user"})
			return
		}
		u, err := h.users.ByClerkID(c.Request.Context(), req.ReporterID)
		if err != nil {
			writeError(c, err)
			return
		}
		reporter = u
	}

	rep, err := h.svc.Report(c.Request.Context(), id, reporter.ID, req.Reason, req.Details)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *ModerationHandler) Approve(c *gin.Context) {
	h.moderate(c, model.ModerationApprove)
}

func (h *ModerationHandler) Delete(c *gin.Context) {
	h.moderate(c, model.ModerationDelete)
}

func (h *ModerationHandler) Resolve(c *gin.Context) {
	h.moderate(c, model.ModerationResolve)
}

func (h *ModerationHandler) moderate(c *gin.Context, action string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ModerateReq
	// body 可以为空；chunked 的 body 也要读到 notes
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid params")
		return
	}

	var (
		post *model.Post
		err  error
	)
	ctx, moderator := c.Request.Context(), currentUser(c).ID
	switch action {
	case model.ModerationApprove:
		post, err = h.svc.Approve(ctx, id, moderator, req.Notes)
	case model.ModerationDelete:
		post, err = h.svc.Delete(ctx, id, moderator, req.Notes)
	default:
		post, err = h.svc.Resolve(ctx, id, moderator, req.Notes)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	if action == model.ModerationDelete {
		c.JSON(http.StatusOK, gin.H{"msg": "post deleted", "postId": id, "notes": req.Notes})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *ModerationHandler) Pending(c *gin.Context) {
	list, err := h.svc.Pending(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ModerationHandler) Resolved(c *gin.Context) {
	list, err := h.svc.Resolved(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ModerationHandler) ReportedDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.ReportedDetail(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ModerationHandler) LatestReport(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rep, err := h.svc.LatestReport(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *ModerationHandler) Audit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Audit(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ModerationHandler) Reports(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Reports(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
