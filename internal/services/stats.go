package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/apierr"
	"github.com/yungbote/lms-backend/internal/cache"
	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/repos"
	"github.com/yungbote/lms-backend/internal/requestdata"
)

type LearningStats struct {
	TotalCourses              int     `json:"total_courses"`
	CompletedCourses          int     `json:"completed_courses"`
	InProgressCourses         int     `json:"in_progress_courses"`
	TotalCompletedLessons     int     `json:"total_completed_lessons"`
	TotalLearningHours        float64 `json:"total_learning_hours"`
	OverallProgressPercentage float64 `json:"overall_progress_percentage"`
	LearningStreak            int     `json:"learning_streak"`
	Certificates              int     `json:"certificates"`
}

type StatsService interface {
	// GetLearningStats aggregates the caller's enrollment and lesson
	// activity. Repo failures degrade individual fields to zero rather
	// than failing the whole request.
	GetLearningStats(ctx context.Context, now time.Time) (*LearningStats, error)
}

type statsService struct {
	db           *gorm.DB
	log          *logger.Logger
	enrollRepo   repos.EnrollmentRepo
	progressRepo repos.LessonProgressRepo
	statsCache   *cache.StatsCache
}

func NewStatsService(
	db *gorm.DB,
	baseLog *logger.Logger,
	enrollRepo repos.EnrollmentRepo,
	progressRepo repos.LessonProgressRepo,
	statsCache *cache.StatsCache,
) StatsService {
	return &statsService{
		db:           db,
		log:          baseLog.With("service", "StatsService"),
		enrollRepo:   enrollRepo,
		progressRepo: progressRepo,
		statsCache:   statsCache,
	}
}

func (s *statsService) GetLearningStats(ctx context.Context, now time.Time) (*LearningStats, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}

	if payload, ok := s.statsCache.Get(ctx, rd.UserID); ok {
		var cached LearningStats
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
		s.log.Warn("Discarding unreadable cached stats", "student_id", rd.UserID)
	}

	stats := &LearningStats{}

	enrollments, err := s.enrollRepo.GetByStudentID(ctx, nil, rd.UserID)
	if err != nil {
		s.log.Warn("Failed to load enrollments for stats", "student_id", rd.UserID, "error", err)
		enrollments = nil
	}

	var totalSeconds int64
	var progressSum float64
	for _, e := range enrollments {
		stats.TotalCourses++
		progressSum += e.Progress
		totalSeconds += e.TimeSpentSeconds
		switch {
		case e.Progress >= 100:
			stats.CompletedCourses++
		case e.Progress > 0:
			stats.InProgressCourses++
		}
		// Enrolling counts as learning activity even before any lesson
		// is opened.
		if sameDay(e.EnrolledAt, now) {
			stats.LearningStreak = 1
		}
	}
	if stats.TotalCourses > 0 {
		stats.OverallProgressPercentage = round2(progressSum / float64(stats.TotalCourses))
	}
	stats.TotalLearningHours = round1(float64(totalSeconds) / 3600)

	progress, err := s.progressRepo.GetByStudentID(ctx, nil, rd.UserID)
	if err != nil {
		s.log.Warn("Failed to load lesson progress for stats", "student_id", rd.UserID, "error", err)
		progress = nil
	}
	for _, p := range progress {
		if p.Completed {
			stats.TotalCompletedLessons++
		}
		if p.LastAccessedAt != nil && sameDay(*p.LastAccessedAt, now) {
			stats.LearningStreak = 1
		}
	}

	// Certificate issuance is keyed to full completion, so the counts match.
	stats.Certificates = stats.CompletedCourses

	if payload, err := json.Marshal(stats); err == nil {
		s.statsCache.Set(ctx, rd.UserID, payload)
	}
	return stats, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
