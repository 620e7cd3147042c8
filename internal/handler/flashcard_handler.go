package handler

import (
	"net/http"

	"Lingo_Community/internal/service"

	"github.com/gin-gonic/gin"
)

const maxImportSize = 5 << 20

type FlashcardHandler struct {
	svc *service.FlashcardService
}

type SetReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  uint64 `json:"categoryId"`
}

type CardReq struct {
	SetID      uint64 `json:"setId"`
	FrontText  string `json:"frontText"`
	BackText   string `json:"backText"`
	Difficulty string `json:"difficulty"`
}

func NewFlashcardHandler(svc *service.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{svc: svc}
}

func (h *FlashcardHandler) Categories(c *gin.Context) {
	list, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlashcardHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *FlashcardHandler) ListSets(c *gin.Context) {
	list, err := h.svc.ListSets(c.Request.Context(), 0)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlashcardHandler) SetsByCategory(c *gin.Context) {
	id, ok := paramID(c, "categoryId")
	if !ok {
		return
	}
	list, err := h.svc.ListSets(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlashcardHandler) GetSet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	set, err := h.svc.GetSet(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *FlashcardHandler) CreateSet(c *gin.Context) {
	var req SetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	set, err := h.svc.CreateSet(c.Request.Context(), currentUser(c).ID, service.SetInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, set)
}

func (h *FlashcardHandler) UpdateSet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req SetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	set, err := h.svc.UpdateSet(c.Request.Context(), actingUser(c), id, service.SetInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

// Import multipart 字段名 file
func (h *FlashcardHandler) Import(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if fh.Size > maxImportSize {
		badRequest(c, "file too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "cannot open file")
		return
	}
	defer f.Close()

	res, err := h.svc.ImportXLSX(c.Request.Context(), actingUser(c), id, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *FlashcardHandler) CardsBySet(c *gin.Context) {
	id, ok := paramID(c, "setId")
	if !ok {
		return
	}
	list, err := h.svc.Cards(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlashcardHandler) GetCard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	card, err := h.svc.GetCard(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *FlashcardHandler) CreateCard(c *gin.Context) {
	var req CardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	card, err := h.svc.CreateCard(c.Request.Context(), actingUser(c), service.CardInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (h *FlashcardHandler) UpdateCard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	card, err := h.svc.UpdateCard(c.Request.Context(), actingUser(c), id, service.CardInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *FlashcardHandler) DeleteCard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCard(c.Request.Context(), actingUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}
