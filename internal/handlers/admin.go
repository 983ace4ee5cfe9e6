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

type AdminHandler struct {
	log      *logger.Logger
	adminSvc services.AdminService
}

func NewAdminHandler(log *logger.Logger, adminSvc services.AdminService) *AdminHandler {
	return &AdminHandler{
		log:      log.With("handler", "AdminHandler"),
		adminSvc: adminSvc,
	}
}

// GET /api/admin/courses/pending
func (h *AdminHandler) ListPendingCourses(c *gin.Context) {
	if err := requireAdmin(c); err != nil {
		RespondError(c, err)
		return
	}
	courses, err := h.adminSvc.ListPendingCourses(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, courses)
}

// POST /api/admin/courses/:id/approve
func (h *AdminHandler) ApproveCourse(c *gin.Context) {
	if err := requireAdmin(c); err != nil {
		RespondError(c, err)
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	course, err := h.adminSvc.ApproveCourse(c.Request.Context(), courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, course)
}

// POST /api/admin/courses/:id/reject
func (h *AdminHandler) RejectCourse(c *gin.Context) {
	if err := requireAdmin(c); err != nil {
		RespondError(c, err)
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	if err := h.adminSvc.RejectCourse(c.Request.Context(), courseID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"rejected": true})
}

func requireAdmin(c *gin.Context) error {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized("not authenticated")
	}
	if rd.Role != types.RoleAdmin {
		return apierr.Unauthorized("admin role required")
	}
	return nil
}
