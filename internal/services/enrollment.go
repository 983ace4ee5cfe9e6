package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/apierr"
	"github.com/yungbote/lms-backend/internal/cache"
	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/repos"
	"github.com/yungbote/lms-backend/internal/requestdata"
	"github.com/yungbote/lms-backend/internal/types"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, courseID uuid.UUID) (*types.Enrollment, error)
	// RecordProgress overwrites the derived progress value and, whenever the
	// new value reaches 100, hands off to certificate issuance. The check
	// runs on every update so issuance is level-triggered and idempotent.
	RecordProgress(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID, percentage float64) error
	TrackTime(ctx context.Context, courseID uuid.UUID, seconds int64) error
	ListEnrolled(ctx context.Context) ([]*types.Course, error)
	ListAvailable(ctx context.Context) ([]*types.Course, error)
}

type enrollmentService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	enrollRepo repos.EnrollmentRepo
	certSvc    CertificateService
	statsCache *cache.StatsCache
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	enrollRepo repos.EnrollmentRepo,
	certSvc CertificateService,
	statsCache *cache.StatsCache,
) EnrollmentService {
	return &enrollmentService{
		db:         db,
		log:        baseLog.With("service", "EnrollmentService"),
		courseRepo: courseRepo,
		enrollRepo: enrollRepo,
		certSvc:    certSvc,
		statsCache: statsCache,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, courseID uuid.UUID) (*types.Enrollment, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}

	courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("fetching course: %w", err)
	}
	if len(courses) == 0 || courses[0] == nil {
		return nil, apierr.NotFound("course %s not found", courseID)
	}
	course := courses[0]
	if !course.Approved {
		return nil, apierr.InvalidState("course %q is not approved for enrollment", course.Title)
	}

	enrollment := &types.Enrollment{
		StudentID:        rd.UserID,
		CourseID:         courseID,
		Progress:         0,
		TimeSpentSeconds: 0,
		EnrolledAt:       time.Now(),
	}
	created, err := s.enrollRepo.CreateIfAbsent(ctx, nil, enrollment)
	if err != nil {
		return nil, fmt.Errorf("creating enrollment: %w", err)
	}
	if !created {
		return nil, apierr.Conflict("already enrolled in course %q", course.Title)
	}

	s.log.Info("Student enrolled", "student_id", rd.UserID, "course_id", courseID, "title", course.Title)
	s.statsCache.Invalidate(ctx, rd.UserID)
	return enrollment, nil
}

func (s *enrollmentService) RecordProgress(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID, percentage float64) error {
	enrollment, err := s.enrollRepo.GetByStudentAndCourse(ctx, tx, studentID, courseID)
	if err != nil {
		return fmt.Errorf("fetching enrollment: %w", err)
	}
	if enrollment == nil {
		return apierr.NotFound("not enrolled in course %s", courseID)
	}

	if err := s.enrollRepo.UpdateProgress(ctx, tx, enrollment.ID, percentage); err != nil {
		return fmt.Errorf("updating progress: %w", err)
	}
	s.log.Debug("Progress recorded", "student_id", studentID, "course_id", courseID, "progress", percentage)

	if percentage >= 100 {
		if err := s.certSvc.IssueIfMissing(ctx, tx, studentID, courseID); err != nil {
			return fmt.Errorf("issuing certificate: %w", err)
		}
	}
	s.statsCache.Invalidate(ctx, studentID)
	return nil
}

func (s *enrollmentService) TrackTime(ctx context.Context, courseID uuid.UUID, seconds int64) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized("not authenticated")
	}
	if seconds < 0 {
		seconds = 0
	}

	enrollment, err := s.enrollRepo.GetByStudentAndCourse(ctx, nil, rd.UserID, courseID)
	if err != nil {
		return fmt.Errorf("fetching enrollment: %w", err)
	}
	if enrollment == nil {
		return apierr.NotFound("not enrolled in course %s", courseID)
	}

	if err := s.enrollRepo.AddTimeSpent(ctx, nil, enrollment.ID, seconds); err != nil {
		return fmt.Errorf("tracking time: %w", err)
	}
	s.statsCache.Invalidate(ctx, rd.UserID)
	return nil
}

func (s *enrollmentService) ListEnrolled(ctx context.Context) ([]*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}

	enrollments, err := s.enrollRepo.GetByStudentID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing enrollments: %w", err)
	}
	courseIDs := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		courseIDs = append(courseIDs, e.CourseID)
	}
	return s.courseRepo.GetByIDs(ctx, nil, courseIDs)
}

func (s *enrollmentService) ListAvailable(ctx context.Context) ([]*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}

	approved, err := s.courseRepo.ListApproved(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing approved courses: %w", err)
	}
	enrollments, err := s.enrollRepo.GetByStudentID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing enrollments: %w", err)
	}

	enrolled := make(map[uuid.UUID]struct{}, len(enrollments))
	for _, e := range enrollments {
		enrolled[e.CourseID] = struct{}{}
	}

	available := make([]*types.Course, 0, len(approved))
	for _, c := range approved {
		if _, ok := enrolled[c.ID]; !ok {
			available = append(available, c)
		}
	}
	return available, nil
}
