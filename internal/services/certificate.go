package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/apierr"
	"github.com/yungbote/lms-backend/internal/certimage"
	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/repos"
	"github.com/yungbote/lms-backend/internal/requestdata"
	"github.com/yungbote/lms-backend/internal/types"
)

type CertificateWithCover struct {
	Certificate   *types.Certificate `json:"certificate"`
	CoverImageURL string             `json:"cover_image_url"`
}

type CertificateService interface {
	// IssueIfMissing mints a certificate for (student, course) unless one
	// already exists. Safe to call from every progress-update path; the
	// unique index resolves concurrent issuance to a single row.
	IssueIfMissing(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) error
	ListMine(ctx context.Context) ([]*CertificateWithCover, error)
	RenderCertificate(ctx context.Context, certificateID uuid.UUID) ([]byte, error)
}

type certificateService struct {
	db         *gorm.DB
	log        *logger.Logger
	certRepo   repos.CertificateRepo
	userRepo   repos.UserRepo
	courseRepo repos.CourseRepo
	renderer   certimage.Renderer
}

func NewCertificateService(
	db *gorm.DB,
	baseLog *logger.Logger,
	certRepo repos.CertificateRepo,
	userRepo repos.UserRepo,
	courseRepo repos.CourseRepo,
	renderer certimage.Renderer,
) CertificateService {
	return &certificateService{
		db:         db,
		log:        baseLog.With("service", "CertificateService"),
		certRepo:   certRepo,
		userRepo:   userRepo,
		courseRepo: courseRepo,
		renderer:   renderer,
	}
}

func (s *certificateService) IssueIfMissing(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) error {
	existing, err := s.certRepo.GetByStudentAndCourse(ctx, tx, studentID, courseID)
	if err != nil {
		return fmt.Errorf("checking existing certificate: %w", err)
	}
	if existing != nil {
		return nil
	}

	students, err := s.userRepo.GetByIDs(ctx, tx, []uuid.UUID{studentID})
	if err != nil {
		return fmt.Errorf("loading student for certificate: %w", err)
	}
	if len(students) == 0 || students[0] == nil {
		return apierr.NotFound("student %s not found", studentID)
	}
	courses, err := s.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return fmt.Errorf("loading course for certificate: %w", err)
	}
	if len(courses) == 0 || courses[0] == nil {
		return apierr.NotFound("course %s not found", courseID)
	}

	cert := &types.Certificate{
		StudentID:       studentID,
		CourseID:        courseID,
		CertificateCode: newCertificateCode(),
		IssueDate:       time.Now(),
		StudentName:     students[0].FullName(),
		CourseName:      courses[0].Title,
	}

	created, err := s.certRepo.CreateIfAbsent(ctx, tx, cert)
	if err != nil {
		return fmt.Errorf("creating certificate: %w", err)
	}
	if created {
		s.log.Info("Certificate issued", "student_id", studentID, "course_id", courseID, "code", cert.CertificateCode)
	}
	return nil
}

func (s *certificateService) ListMine(ctx context.Context) ([]*CertificateWithCover, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}

	certs, err := s.certRepo.GetByStudentID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing certificates: %w", err)
	}

	courseIDs := make([]uuid.UUID, 0, len(certs))
	for _, c := range certs {
		courseIDs = append(courseIDs, c.CourseID)
	}
	courses, err := s.courseRepo.GetByIDs(ctx, nil, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("loading courses for certificates: %w", err)
	}
	coverByID := make(map[uuid.UUID]string, len(courses))
	for _, c := range courses {
		coverByID[c.ID] = c.CoverImageURL
	}

	out := make([]*CertificateWithCover, 0, len(certs))
	for _, c := range certs {
		out = append(out, &CertificateWithCover{
			Certificate:   c,
			CoverImageURL: coverByID[c.CourseID],
		})
	}
	return out, nil
}

func (s *certificateService) RenderCertificate(ctx context.Context, certificateID uuid.UUID) ([]byte, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	if s.renderer == nil {
		return nil, apierr.InvalidState("certificate rendering is not configured")
	}

	certs, err := s.certRepo.GetByIDs(ctx, nil, []uuid.UUID{certificateID})
	if err != nil {
		return nil, fmt.Errorf("loading certificate: %w", err)
	}
	if len(certs) == 0 || certs[0] == nil {
		return nil, apierr.NotFound("certificate %s not found", certificateID)
	}
	cert := certs[0]
	if cert.StudentID != rd.UserID {
		return nil, apierr.Unauthorized("certificate belongs to another student")
	}

	buf, err := s.renderer.Render(certimage.Input{
		StudentName: cert.StudentName,
		CourseName:  cert.CourseName,
		Code:        cert.CertificateCode,
		IssueDate:   cert.IssueDate,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// newCertificateCode keeps the legacy CERT-<millis>-<n> prefix for display
// and appends a uuid fragment so concurrent issuance cannot collide on the
// globally unique code column.
func newCertificateCode() string {
	return fmt.Sprintf("CERT-%d-%03d-%s", time.Now().UnixMilli(), rand.Intn(1000), uuid.NewString()[:8])
}
