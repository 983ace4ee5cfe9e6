package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/services"
)

type StudentHandler struct {
	log         *logger.Logger
	enrollSvc   services.EnrollmentService
	progressSvc services.ProgressService
	statsSvc    services.StatsService
}

func NewStudentHandler(
	log *logger.Logger,
	enrollSvc services.EnrollmentService,
	progressSvc services.ProgressService,
	statsSvc services.StatsService,
) *StudentHandler {
	return &StudentHandler{
		log:         log.With("handler", "StudentHandler"),
		enrollSvc:   enrollSvc,
		progressSvc: progressSvc,
		statsSvc:    statsSvc,
	}
}

// POST /api/student/courses/:id/enroll
func (h *StudentHandler) Enroll(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	enrollment, err := h.enrollSvc.Enroll(c.Request.Context(), courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, enrollment)
}

// GET /api/student/courses/enrolled
func (h *StudentHandler) ListEnrolled(c *gin.Context) {
	courses, err := h.enrollSvc.ListEnrolled(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, courses)
}

// GET /api/student/courses/available
func (h *StudentHandler) ListAvailable(c *gin.Context) {
	courses, err := h.enrollSvc.ListAvailable(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, courses)
}

// POST /api/student/courses/:id/lessons/:lessonID/complete
func (h *StudentHandler) MarkLessonCompleted(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	lessonID, err := uuid.Parse(c.Param("lessonID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	if err := h.progressSvc.MarkLessonCompleted(c.Request.Context(), courseID, lessonID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"completed": true})
}

// POST /api/student/courses/:id/time
func (h *StudentHandler) TrackTime(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	var req struct {
		Seconds int64 `json:"seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.enrollSvc.TrackTime(c.Request.Context(), courseID, req.Seconds); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"tracked": true})
}

// GET /api/student/stats
func (h *StudentHandler) GetLearningStats(c *gin.Context) {
	stats, err := h.statsSvc.GetLearningStats(c.Request.Context(), time.Now())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, stats)
}
