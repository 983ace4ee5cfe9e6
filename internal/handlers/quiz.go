package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/services"
)

type QuizHandler struct {
	log     *logger.Logger
	quizSvc services.QuizService
}

func NewQuizHandler(log *logger.Logger, quizSvc services.QuizService) *QuizHandler {
	return &QuizHandler{
		log:     log.With("handler", "QuizHandler"),
		quizSvc: quizSvc,
	}
}

// GET /api/lessons/:id/quiz
func (h *QuizHandler) GetLessonQuiz(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	quiz, err := h.quizSvc.GetQuizByLesson(c.Request.Context(), lessonID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, quiz)
}

// PUT /api/lessons/:id/quiz
func (h *QuizHandler) SaveLessonQuiz(c *gin.Context) {
	if err := requireInstructor(c); err != nil {
		RespondError(c, err)
		return
	}
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	var req services.QuizInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	quiz, err := h.quizSvc.SaveQuiz(c.Request.Context(), lessonID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, quiz)
}

// POST /api/quizzes/:id/submit
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}
	var req struct {
		Answers map[uuid.UUID]int `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.quizSvc.SubmitQuiz(c.Request.Context(), quizID, req.Answers)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/quizzes/:id/attempts
func (h *QuizHandler) ListAttempts(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}
	attempts, err := h.quizSvc.ListAttempts(c.Request.Context(), quizID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, attempts)
}
