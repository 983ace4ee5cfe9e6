package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/types"
)

type QuestionRepo interface {
	// ReplaceForQuiz deletes every question attached to the quiz and inserts
	// the given rows. Saving a quiz is full-replace, never a merge.
	ReplaceForQuiz(ctx context.Context, tx *gorm.DB, quizID uuid.UUID, rows []*types.Question) error
	GetByQuizID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]*types.Question, error)
	FullDeleteByQuizIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	repoLog := baseLog.With("repo", "QuestionRepo")
	return &questionRepo{db: db, log: repoLog}
}

func (r *questionRepo) ReplaceForQuiz(ctx context.Context, tx *gorm.DB, quizID uuid.UUID, rows []*types.Question) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if quizID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Delete(&types.Question{}).Error; err != nil {
		return err
	}

	if len(rows) == 0 {
		return nil
	}
	for i, q := range rows {
		q.QuizID = quizID
		q.Position = i
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return err
	}
	return nil
}

func (r *questionRepo) GetByQuizID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Question
	if quizID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questionRepo) FullDeleteByQuizIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(quizIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("quiz_id IN ?", quizIDs).
		Delete(&types.Question{}).Error; err != nil {
		return err
	}
	return nil
}
