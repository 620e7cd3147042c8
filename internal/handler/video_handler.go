package handler

import (
	"net/http"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type VideoHandler struct {
	svc *service.VideoService
}

type PlaylistReq struct {
	Title string `json:"title"`
}

type VideoRefReq struct {
	VideoID uint64 `json:"videoId"`
}

func NewVideoHandler(svc *service.VideoService) *VideoHandler {
	return &VideoHandler{svc: svc}
}

func (h *VideoHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *VideoHandler) ByYoutubeID(c *gin.Context) {
	v, err := h.svc.ByYoutubeID(c.Request.Context(), c.Param("youtubeId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VideoHandler) WithProgress(c *gin.Context) {
	list, err := h.svc.WithProgress(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *VideoHandler) MarkWatched(c *gin.Context) {
	var req VideoRefReq
	if err := c.ShouldBindJSON(&req); err != nil || req.VideoID == 0 {
		badRequest(c, "videoId is required")
		return
	}
	p, err := h.svc.MarkWatched(c.Request.Context(), currentUser(c).ID, req.VideoID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *VideoHandler) Create(c *gin.Context) {
	var req model.Video
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	v, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *VideoHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.Video
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	v, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VideoHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

func (h *VideoHandler) MyPlaylists(c *gin.Context) {
	list, err := h.svc.MyPlaylists(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *VideoHandler) GetPlaylist(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Playlist(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *VideoHandler) CreatePlaylist(c *gin.Context) {
	var req PlaylistReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	p, err := h.svc.CreatePlaylist(c.Request.Context(), currentUser(c).ID, req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *VideoHandler) RenamePlaylist(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req PlaylistReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	p, err := h.svc.RenamePlaylist(c.Request.Context(), currentUser(c).ID, id, req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *VideoHandler) DeletePlaylist(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePlaylist(c.Request.Context(), currentUser(c).ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

func (h *VideoHandler) AddToPlaylist(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req VideoRefReq
	if err := c.ShouldBindJSON(&req); err != nil || req.VideoID == 0 {
		badRequest(c, "videoId is required")
		return
	}
	item, err := h.svc.AddToPlaylist(c.Request.Context(), currentUser(c).ID, id, req.VideoID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *VideoHandler) RemoveFromPlaylist(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	vid, ok := paramID(c, "videoId")
	if !ok {
		return
	}
	if err := h.svc.RemoveFromPlaylist(c.Request.Context(), currentUser(c).ID, id, vid); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "removed"})
}
