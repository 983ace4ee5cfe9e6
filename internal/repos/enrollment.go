package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/types"
)

type EnrollmentRepo interface {
	// CreateIfAbsent inserts the row unless one already exists for the same
	// (student, course). Returns false when the unique index swallowed the
	// insert, so a concurrent duplicate enroll surfaces as a conflict and
	// not as a driver error.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, row *types.Enrollment) (bool, error)
	GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Enrollment, error)
	GetByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Enrollment, error)
	UpdateProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, progress float64) error
	// AddTimeSpent increments time_spent_seconds in SQL so concurrent
	// heartbeats never clobber each other with stale reads.
	AddTimeSpent(ctx context.Context, tx *gorm.DB, id uuid.UUID, seconds int64) error
	FullDeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	repoLog := baseLog.With("repo", "EnrollmentRepo")
	return &enrollmentRepo{db: db, log: repoLog}
}

func (r *enrollmentRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, row *types.Enrollment) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return false, nil
	}

	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *enrollmentRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Enrollment
	if studentID == uuid.Nil || courseID == uuid.Nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *enrollmentRepo) GetByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Enrollment
	if studentID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("enrolled_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *enrollmentRepo) UpdateProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, progress float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("id = ?", id).
		Update("progress", progress).Error; err != nil {
		return err
	}
	return nil
}

func (r *enrollmentRepo) AddTimeSpent(ctx context.Context, tx *gorm.DB, id uuid.UUID, seconds int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil || seconds <= 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("id = ?", id).
		Update("time_spent_seconds", gorm.Expr("time_spent_seconds + ?", seconds)).Error; err != nil {
		return err
	}
	return nil
}

func (r *enrollmentRepo) FullDeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(courseIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Delete(&types.Enrollment{}).Error; err != nil {
		return err
	}
	return nil
}
