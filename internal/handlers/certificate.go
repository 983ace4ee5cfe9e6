package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/services"
)

type CertificateHandler struct {
	log     *logger.Logger
	certSvc services.CertificateService
}

func NewCertificateHandler(log *logger.Logger, certSvc services.CertificateService) *CertificateHandler {
	return &CertificateHandler{
		log:     log.With("handler", "CertificateHandler"),
		certSvc: certSvc,
	}
}

// GET /api/student/certificates
func (h *CertificateHandler) ListMine(c *gin.Context) {
	certs, err := h.certSvc.ListMine(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, certs)
}

// GET /api/student/certificates/:id/image
func (h *CertificateHandler) RenderCertificate(c *gin.Context) {
	certID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid certificate id"})
		return
	}
	png, err := h.certSvc.RenderCertificate(c.Request.Context(), certID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
