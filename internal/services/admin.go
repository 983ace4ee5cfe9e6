package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/apierr"
	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/repos"
	"github.com/yungbote/lms-backend/internal/types"
)

type AdminService interface {
	// ListPendingCourses returns every course still awaiting approval,
	// oldest first.
	ListPendingCourses(ctx context.Context) ([]*types.Course, error)
	ApproveCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	// RejectCourse removes the course outright, cascading through its
	// lessons, quizzes, enrollments and certificates.
	RejectCourse(ctx context.Context, courseID uuid.UUID) error
}

type adminService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	catalogSvc CatalogService
}

func NewAdminService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	catalogSvc CatalogService,
) AdminService {
	return &adminService{
		db:         db,
		log:        baseLog.With("service", "AdminService"),
		courseRepo: courseRepo,
		catalogSvc: catalogSvc,
	}
}

func (s *adminService) ListPendingCourses(ctx context.Context) ([]*types.Course, error) {
	return s.courseRepo.ListPending(ctx, nil)
}

func (s *adminService) ApproveCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	course, err := s.catalogSvc.GetCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course.Approved {
		return nil, apierr.InvalidState("course %s is already approved", courseID)
	}

	course.Approved = true
	if err := s.courseRepo.Update(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("approving course: %w", err)
	}
	s.log.Info("Course approved", "course_id", course.ID, "title", course.Title)
	return course, nil
}

func (s *adminService) RejectCourse(ctx context.Context, courseID uuid.UUID) error {
	course, err := s.catalogSvc.GetCourse(ctx, nil, courseID)
	if err != nil {
		return err
	}
	if course.Approved {
		return apierr.InvalidState("course %s is already approved", courseID)
	}

	if err := s.catalogSvc.DeleteCourseCascade(ctx, courseID); err != nil {
		return err
	}
	s.log.Info("Course rejected", "course_id", courseID, "title", course.Title)
	return nil
}
