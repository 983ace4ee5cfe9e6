package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/apierr"
	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/requestdata"
	"github.com/yungbote/lms-backend/internal/services"
	"github.com/yungbote/lms-backend/internal/types"
)

type CourseHandler struct {
	log         *logger.Logger
	catalogSvc  services.CatalogService
	progressSvc services.ProgressService
}

func NewCourseHandler(log *logger.Logger, catalogSvc services.CatalogService, progressSvc services.ProgressService) *CourseHandler {
	return &CourseHandler{
		log:         log.With("handler", "CourseHandler"),
		catalogSvc:  catalogSvc,
		progressSvc: progressSvc,
	}
}

// GET /api/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.catalogSvc.ListApprovedCourses(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, courses)
}

// GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	course, err := h.catalogSvc.GetCourse(c.Request.Context(), nil, courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, course)
}

// GET /api/courses/:id/lessons
func (h *CourseHandler) ListLessons(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	lessons, err := h.catalogSvc.ListLessonsForCourse(c.Request.Context(), courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, lessons)
}

// GET /api/courses/:id/progress
func (h *CourseHandler) GetCourseProgress(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	snapshot, err := h.progressSvc.GetCourseProgress(c.Request.Context(), courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, snapshot)
}

// POST /api/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	if err := requireInstructor(c); err != nil {
		RespondError(c, err)
		return
	}
	var req struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		CoverImageURL string `json:"cover_image_url"`
		Approved      bool   `json:"approved"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	course := &types.Course{
		Title:         req.Title,
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		Approved:      req.Approved,
		InstructorID:  rd.UserID,
	}
	created, err := h.catalogSvc.CreateCourse(c.Request.Context(), course)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, created)
}

// PUT /api/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	if err := requireInstructor(c); err != nil {
		RespondError(c, err)
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	var req struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		CoverImageURL string `json:"cover_image_url"`
		Approved      bool   `json:"approved"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	updated, err := h.catalogSvc.UpdateCourse(c.Request.Context(), courseID, &types.Course{
		Title:         req.Title,
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		Approved:      req.Approved,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, updated)
}

// POST /api/courses/:id/lessons
func (h *CourseHandler) CreateLesson(c *gin.Context) {
	if err := requireInstructor(c); err != nil {
		RespondError(c, err)
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	var req struct {
		Title           string `json:"title"`
		Content         string `json:"content"`
		MediaURL        string `json:"media_url"`
		Position        int    `json:"position"`
		DurationSeconds int    `json:"duration_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	lesson, err := h.catalogSvc.CreateLesson(c.Request.Context(), courseID, &types.Lesson{
		Title:           req.Title,
		Content:         req.Content,
		MediaURL:        req.MediaURL,
		Position:        req.Position,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, lesson)
}

// DELETE /api/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	if err := requireInstructor(c); err != nil {
		RespondError(c, err)
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	if err := h.catalogSvc.DeleteCourseCascade(c.Request.Context(), courseID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func requireInstructor(c *gin.Context) error {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized("not authenticated")
	}
	if rd.Role != types.RoleInstructor && rd.Role != types.RoleAdmin {
		return apierr.Unauthorized("instructor role required")
	}
	return nil
}
