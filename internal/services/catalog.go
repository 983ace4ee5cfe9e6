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

type CatalogService interface {
	GetCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	GetLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Lesson, error)
	ListApprovedCourses(ctx context.Context) ([]*types.Course, error)
	ListLessonsForCourse(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error)
	CreateCourse(ctx context.Context, course *types.Course) (*types.Course, error)
	UpdateCourse(ctx context.Context, courseID uuid.UUID, updated *types.Course) (*types.Course, error)
	CreateLesson(ctx context.Context, courseID uuid.UUID, lesson *types.Lesson) (*types.Lesson, error)
	// DeleteCourseCascade removes everything hanging off a course in one
	// transaction, deepest rows first, then the course itself. The order is
	// deliberate so a partial failure rolls back instead of orphaning rows.
	DeleteCourseCascade(ctx context.Context, courseID uuid.UUID) error
}

type catalogService struct {
	db           *gorm.DB
	log          *logger.Logger
	courseRepo   repos.CourseRepo
	lessonRepo   repos.LessonRepo
	enrollRepo   repos.EnrollmentRepo
	progressRepo repos.LessonProgressRepo
	quizRepo     repos.QuizRepo
	questionRepo repos.QuestionRepo
	attemptRepo  repos.QuizAttemptRepo
	certRepo     repos.CertificateRepo
}

func NewCatalogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	lessonRepo repos.LessonRepo,
	enrollRepo repos.EnrollmentRepo,
	progressRepo repos.LessonProgressRepo,
	quizRepo repos.QuizRepo,
	questionRepo repos.QuestionRepo,
	attemptRepo repos.QuizAttemptRepo,
	certRepo repos.CertificateRepo,
) CatalogService {
	return &catalogService{
		db:           db,
		log:          baseLog.With("service", "CatalogService"),
		courseRepo:   courseRepo,
		lessonRepo:   lessonRepo,
		enrollRepo:   enrollRepo,
		progressRepo: progressRepo,
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		certRepo:     certRepo,
	}
}

func (s *catalogService) GetCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	courses, err := s.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("fetching course: %w", err)
	}
	if len(courses) == 0 || courses[0] == nil {
		return nil, apierr.NotFound("course %s not found", courseID)
	}
	return courses[0], nil
}

func (s *catalogService) GetLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Lesson, error) {
	lessons, err := s.lessonRepo.GetByIDs(ctx, tx, []uuid.UUID{lessonID})
	if err != nil {
		return nil, fmt.Errorf("fetching lesson: %w", err)
	}
	if len(lessons) == 0 || lessons[0] == nil {
		return nil, apierr.NotFound("lesson %s not found", lessonID)
	}
	return lessons[0], nil
}

func (s *catalogService) ListApprovedCourses(ctx context.Context) ([]*types.Course, error) {
	return s.courseRepo.ListApproved(ctx, nil)
}

func (s *catalogService) ListLessonsForCourse(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error) {
	if _, err := s.GetCourse(ctx, nil, courseID); err != nil {
		return nil, err
	}
	return s.lessonRepo.GetByCourseIDOrdered(ctx, nil, courseID)
}

func (s *catalogService) CreateCourse(ctx context.Context, course *types.Course) (*types.Course, error) {
	if course == nil || course.Title == "" {
		return nil, apierr.InvalidState("course title is required")
	}
	created, err := s.courseRepo.Create(ctx, nil, []*types.Course{course})
	if err != nil {
		return nil, fmt.Errorf("creating course: %w", err)
	}
	s.log.Info("Course created", "course_id", created[0].ID, "title", created[0].Title)
	return created[0], nil
}

func (s *catalogService) UpdateCourse(ctx context.Context, courseID uuid.UUID, updated *types.Course) (*types.Course, error) {
	course, err := s.GetCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}

	course.Title = updated.Title
	course.Description = updated.Description
	course.CoverImageURL = updated.CoverImageURL

	approvalChanged := course.Approved != updated.Approved
	course.Approved = updated.Approved

	if err := s.courseRepo.Update(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("updating course: %w", err)
	}
	if approvalChanged {
		s.log.Info("Course approval changed", "course_id", course.ID, "approved", course.Approved)
	}
	return course, nil
}

func (s *catalogService) CreateLesson(ctx context.Context, courseID uuid.UUID, lesson *types.Lesson) (*types.Lesson, error) {
	if _, err := s.GetCourse(ctx, nil, courseID); err != nil {
		return nil, err
	}
	if lesson == nil || lesson.Title == "" {
		return nil, apierr.InvalidState("lesson title is required")
	}
	lesson.CourseID = courseID
	created, err := s.lessonRepo.Create(ctx, nil, []*types.Lesson{lesson})
	if err != nil {
		return nil, fmt.Errorf("creating lesson: %w", err)
	}
	return created[0], nil
}

func (s *catalogService) DeleteCourseCascade(ctx context.Context, courseID uuid.UUID) error {
	course, err := s.GetCourse(ctx, nil, courseID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lessons, err := s.lessonRepo.GetByCourseIDOrdered(ctx, tx, courseID)
		if err != nil {
			return fmt.Errorf("listing lessons for cascade: %w", err)
		}
		lessonIDs := make([]uuid.UUID, 0, len(lessons))
		for _, l := range lessons {
			lessonIDs = append(lessonIDs, l.ID)
		}

		quizIDs := make([]uuid.UUID, 0, len(lessonIDs))
		for _, lid := range lessonIDs {
			quiz, err := s.quizRepo.GetByLessonID(ctx, tx, lid)
			if err != nil {
				return fmt.Errorf("loading quiz for cascade: %w", err)
			}
			if quiz != nil {
				quizIDs = append(quizIDs, quiz.ID)
			}
		}

		if err := s.certRepo.FullDeleteByCourseIDs(ctx, tx, []uuid.UUID{courseID}); err != nil {
			return fmt.Errorf("deleting certificates: %w", err)
		}
		if err := s.progressRepo.FullDeleteByLessonIDs(ctx, tx, lessonIDs); err != nil {
			return fmt.Errorf("deleting lesson progress: %w", err)
		}
		if err := s.attemptRepo.FullDeleteByQuizIDs(ctx, tx, quizIDs); err != nil {
			return fmt.Errorf("deleting quiz attempts: %w", err)
		}
		if err := s.questionRepo.FullDeleteByQuizIDs(ctx, tx, quizIDs); err != nil {
			return fmt.Errorf("deleting questions: %w", err)
		}
		if err := s.quizRepo.FullDeleteByLessonIDs(ctx, tx, lessonIDs); err != nil {
			return fmt.Errorf("deleting quizzes: %w", err)
		}
		if err := s.enrollRepo.FullDeleteByCourseIDs(ctx, tx, []uuid.UUID{courseID}); err != nil {
			return fmt.Errorf("deleting enrollments: %w", err)
		}
		if err := s.lessonRepo.FullDeleteByCourseIDs(ctx, tx, []uuid.UUID{courseID}); err != nil {
			return fmt.Errorf("deleting lessons: %w", err)
		}
		if err := s.courseRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{courseID}); err != nil {
			return fmt.Errorf("deleting course: %w", err)
		}
		s.log.Info("Course deleted with cascade", "course_id", courseID, "title", course.Title)
		return nil
	})
}
