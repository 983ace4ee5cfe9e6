package services

import (
	"context"
	"fmt"
	"math"
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

type LessonStatus struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Position        int       `json:"position"`
	DurationSeconds int       `json:"duration_seconds"`
	Completed       bool      `json:"completed"`
}

type CourseProgressSnapshot struct {
	Course             *types.Course     `json:"course"`
	Enrollment         *types.Enrollment `json:"enrollment"`
	Lessons            []LessonStatus    `json:"lessons"`
	CompletedLessons   int64             `json:"completed_lessons"`
	TotalLessons       int               `json:"total_lessons"`
	ProgressPercentage float64           `json:"progress_percentage"`
}

type ProgressService interface {
	// MarkLessonCompleted upserts the completion marker and recomputes the
	// course progress from scratch. Re-marking a completed lesson refreshes
	// last_accessed_at and leaves the completed count unchanged.
	MarkLessonCompleted(ctx context.Context, courseID, lessonID uuid.UUID) error
	// CompleteLessonTx is MarkLessonCompleted scoped to the caller's
	// transaction, for flows (a passing quiz submission) that must complete
	// the lesson atomically with their own writes.
	CompleteLessonTx(ctx context.Context, tx *gorm.DB, studentID, courseID, lessonID uuid.UUID) error
	// GetCourseProgress reads the snapshot and reconciles the stored
	// percentage against the recomputed one. The reconcile is idempotent and
	// safe to trigger on every read; it exists to heal drift from missed
	// updates and can itself push a course over the issuance threshold.
	GetCourseProgress(ctx context.Context, courseID uuid.UUID) (*CourseProgressSnapshot, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	courseRepo   repos.CourseRepo
	lessonRepo   repos.LessonRepo
	enrollRepo   repos.EnrollmentRepo
	progressRepo repos.LessonProgressRepo
	enrollSvc    EnrollmentService
	statsCache   *cache.StatsCache
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	lessonRepo repos.LessonRepo,
	enrollRepo repos.EnrollmentRepo,
	progressRepo repos.LessonProgressRepo,
	enrollSvc EnrollmentService,
	statsCache *cache.StatsCache,
) ProgressService {
	return &progressService{
		db:           db,
		log:          baseLog.With("service", "ProgressService"),
		courseRepo:   courseRepo,
		lessonRepo:   lessonRepo,
		enrollRepo:   enrollRepo,
		progressRepo: progressRepo,
		enrollSvc:    enrollSvc,
		statsCache:   statsCache,
	}
}

func (s *progressService) MarkLessonCompleted(ctx context.Context, courseID, lessonID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized("not authenticated")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.CompleteLessonTx(ctx, tx, rd.UserID, courseID, lessonID)
	})
	if err != nil {
		return err
	}
	s.statsCache.Invalidate(ctx, rd.UserID)
	return nil
}

func (s *progressService) CompleteLessonTx(ctx context.Context, tx *gorm.DB, studentID, courseID, lessonID uuid.UUID) error {
	lessons, err := s.lessonRepo.GetByIDs(ctx, tx, []uuid.UUID{lessonID})
	if err != nil {
		return fmt.Errorf("fetching lesson: %w", err)
	}
	if len(lessons) == 0 || lessons[0] == nil {
		return apierr.NotFound("lesson %s not found", lessonID)
	}
	lesson := lessons[0]
	if lesson.CourseID != courseID {
		return apierr.InvalidState("lesson %s does not belong to course %s", lessonID, courseID)
	}

	enrollment, err := s.enrollRepo.GetByStudentAndCourse(ctx, tx, studentID, courseID)
	if err != nil {
		return fmt.Errorf("fetching enrollment: %w", err)
	}
	if enrollment == nil {
		return apierr.NotFound("not enrolled in course %s", courseID)
	}

	now := time.Now()
	completedAt := &now
	existing, err := s.progressRepo.GetByStudentAndLesson(ctx, tx, studentID, lessonID)
	if err != nil {
		return fmt.Errorf("fetching lesson progress: %w", err)
	}
	if existing != nil && existing.Completed && existing.CompletedAt != nil {
		// Re-marking only refreshes last_accessed_at.
		completedAt = existing.CompletedAt
	}

	row := &types.LessonProgress{
		StudentID:      studentID,
		LessonID:       lessonID,
		Completed:      true,
		CompletedAt:    completedAt,
		LastAccessedAt: &now,
	}
	if err := s.progressRepo.Upsert(ctx, tx, row); err != nil {
		return fmt.Errorf("upserting lesson progress: %w", err)
	}

	return s.reconcile(ctx, tx, studentID, courseID)
}

func (s *progressService) GetCourseProgress(ctx context.Context, courseID uuid.UUID) (*CourseProgressSnapshot, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}

	var snapshot *CourseProgressSnapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses, err := s.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
		if err != nil {
			return fmt.Errorf("fetching course: %w", err)
		}
		if len(courses) == 0 || courses[0] == nil {
			return apierr.NotFound("course %s not found", courseID)
		}

		enrollment, err := s.enrollRepo.GetByStudentAndCourse(ctx, tx, rd.UserID, courseID)
		if err != nil {
			return fmt.Errorf("fetching enrollment: %w", err)
		}
		if enrollment == nil {
			return apierr.NotFound("not enrolled in course %s", courseID)
		}

		if err := s.reconcile(ctx, tx, rd.UserID, courseID); err != nil {
			return err
		}

		// Re-read after reconcile so the snapshot carries the healed value.
		enrollment, err = s.enrollRepo.GetByStudentAndCourse(ctx, tx, rd.UserID, courseID)
		if err != nil {
			return fmt.Errorf("re-reading enrollment: %w", err)
		}

		lessons, err := s.lessonRepo.GetByCourseIDOrdered(ctx, tx, courseID)
		if err != nil {
			return fmt.Errorf("listing lessons: %w", err)
		}
		progressRows, err := s.progressRepo.GetByStudentAndCourse(ctx, tx, rd.UserID, courseID)
		if err != nil {
			return fmt.Errorf("listing lesson progress: %w", err)
		}

		completedByLesson := make(map[uuid.UUID]bool, len(progressRows))
		var completedCount int64
		for _, p := range progressRows {
			if p.Completed && !completedByLesson[p.LessonID] {
				completedByLesson[p.LessonID] = true
				completedCount++
			}
		}

		statuses := make([]LessonStatus, 0, len(lessons))
		for _, l := range lessons {
			statuses = append(statuses, LessonStatus{
				ID:              l.ID,
				Title:           l.Title,
				Position:        l.Position,
				DurationSeconds: l.DurationSeconds,
				Completed:       completedByLesson[l.ID],
			})
		}

		snapshot = &CourseProgressSnapshot{
			Course:             courses[0],
			Enrollment:         enrollment,
			Lessons:            statuses,
			CompletedLessons:   completedCount,
			TotalLessons:       len(lessons),
			ProgressPercentage: enrollment.Progress,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// reconcile recomputes course progress from lesson progress and pushes the
// value into the enrollment ledger, which cascades to certificate issuance
// at the 100% threshold.
func (s *progressService) reconcile(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) error {
	lessons, err := s.lessonRepo.GetByCourseIDOrdered(ctx, tx, courseID)
	if err != nil {
		return fmt.Errorf("listing lessons: %w", err)
	}
	completed, err := s.progressRepo.CountCompletedByStudentAndCourse(ctx, tx, studentID, courseID)
	if err != nil {
		return fmt.Errorf("counting completed lessons: %w", err)
	}

	var pct float64
	if len(lessons) > 0 {
		pct = round2(float64(completed) / float64(len(lessons)) * 100)
	}
	return s.enrollSvc.RecordProgress(ctx, tx, studentID, courseID, pct)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
