package handler

import (
	"net/http"
	"strconv"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	svc *service.QuizService
}

type ChoiceReq struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type AttemptReq struct {
	Result int `json:"result"`
}

func NewQuizHandler(svc *service.QuizService) *QuizHandler {
	return &QuizHandler{svc: svc}
}

func (h *QuizHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *QuizHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	q, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// Create 可以连题目一起提交
func (h *QuizHandler) Create(c *gin.Context) {
	var req model.Quiz
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	q, err := h.svc.Create(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *QuizHandler) AddQuestion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.QuizQuestion
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	q, err := h.svc.AddQuestion(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	qid, ok := paramID(c, "questionId")
	if !ok {
		return
	}
	if err := h.svc.DeleteQuestion(c.Request.Context(), id, qid); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

func (h *QuizHandler) AddChoice(c *gin.Context) {
	qid, ok := paramID(c, "questionId")
	if !ok {
		return
	}
	var req ChoiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	choice, err := h.svc.AddChoice(c.Request.Context(), qid, req.Text, req.IsCorrect)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, choice)
}

func (h *QuizHandler) Delete(c *gin.Context) {
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

func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AttemptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	a, err := h.svc.SubmitAttempt(c.Request.Context(), id, currentUser(c).ID, req.Result)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Attempts 默认只看自己的，管理员可以传 ?all=true
func (h *QuizHandler) Attempts(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user := actingUser(c)
	userID := user.ID
	if all, _ := strconv.ParseBool(c.Query("all")); all && user.IsAdmin() {
		userID = 0
	}
	list, err := h.svc.Attempts(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
