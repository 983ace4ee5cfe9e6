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

type QuestionResult struct {
	QuestionID    uuid.UUID `json:"question_id"`
	Text          string    `json:"text"`
	StudentAnswer *int      `json:"student_answer,omitempty"`
	CorrectAnswer int       `json:"correct_answer"`
	Correct       bool      `json:"correct"`
}

type QuizSubmissionResult struct {
	Attempt      *types.QuizAttempt `json:"attempt"`
	Score        float64            `json:"score"`
	Passed       bool               `json:"passed"`
	CorrectCount int                `json:"correct_count"`
	TotalCount   int                `json:"total_count"`
	Results      []QuestionResult   `json:"results"`
}

type QuestionInput struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

type QuizInput struct {
	PassingScore int             `json:"passing_score"`
	Questions    []QuestionInput `json:"questions"`
}

type QuizService interface {
	GetQuizByLesson(ctx context.Context, lessonID uuid.UUID) (*types.Quiz, error)
	// SubmitQuiz scores the answer set, records the attempt pass or fail,
	// and on a pass completes the quiz's lesson in the same transaction.
	// A question with no submitted answer counts as incorrect.
	SubmitQuiz(ctx context.Context, quizID uuid.UUID, answers map[uuid.UUID]int) (*QuizSubmissionResult, error)
	// SaveQuiz upserts the lesson's quiz, replacing the question list
	// wholesale. There is no partial-update path.
	SaveQuiz(ctx context.Context, lessonID uuid.UUID, input QuizInput) (*types.Quiz, error)
	ListAttempts(ctx context.Context, quizID uuid.UUID) ([]*types.QuizAttempt, error)
}

type quizService struct {
	db           *gorm.DB
	log          *logger.Logger
	lessonRepo   repos.LessonRepo
	quizRepo     repos.QuizRepo
	questionRepo repos.QuestionRepo
	attemptRepo  repos.QuizAttemptRepo
	progressSvc  ProgressService
	statsCache   *cache.StatsCache
}

func NewQuizService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lessonRepo repos.LessonRepo,
	quizRepo repos.QuizRepo,
	questionRepo repos.QuestionRepo,
	attemptRepo repos.QuizAttemptRepo,
	progressSvc ProgressService,
	statsCache *cache.StatsCache,
) QuizService {
	return &quizService{
		db:           db,
		log:          baseLog.With("service", "QuizService"),
		lessonRepo:   lessonRepo,
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		progressSvc:  progressSvc,
		statsCache:   statsCache,
	}
}

func (s *quizService) GetQuizByLesson(ctx context.Context, lessonID uuid.UUID) (*types.Quiz, error) {
	quiz, err := s.quizRepo.GetByLessonID(ctx, nil, lessonID)
	if err != nil {
		return nil, fmt.Errorf("fetching quiz: %w", err)
	}
	if quiz == nil {
		return nil, apierr.NotFound("no quiz found for lesson %s", lessonID)
	}
	return quiz, nil
}

func (s *quizService) SubmitQuiz(ctx context.Context, quizID uuid.UUID, answers map[uuid.UUID]int) (*QuizSubmissionResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}

	var result *QuizSubmissionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quizzes, err := s.quizRepo.GetByIDs(ctx, tx, []uuid.UUID{quizID})
		if err != nil {
			return fmt.Errorf("fetching quiz: %w", err)
		}
		if len(quizzes) == 0 || quizzes[0] == nil {
			return apierr.NotFound("quiz %s not found", quizID)
		}
		quiz := quizzes[0]

		total := len(quiz.Questions)
		if total == 0 {
			return apierr.InvalidState("quiz %s has no questions", quizID)
		}

		correct := 0
		results := make([]QuestionResult, 0, total)
		for i := range quiz.Questions {
			q := &quiz.Questions[i]
			qr := QuestionResult{
				QuestionID:    q.ID,
				Text:          q.Text,
				CorrectAnswer: q.CorrectOptionIndex,
			}
			if answer, ok := answers[q.ID]; ok {
				a := answer
				qr.StudentAnswer = &a
				qr.Correct = answer == q.CorrectOptionIndex
			}
			if qr.Correct {
				correct++
			}
			results = append(results, qr)
		}

		score := float64(correct) / float64(total) * 100
		passed := score >= float64(quiz.PassingScore)

		attempt := &types.QuizAttempt{
			StudentID:   rd.UserID,
			QuizID:      quiz.ID,
			Score:       score,
			Passed:      passed,
			CompletedAt: time.Now(),
		}
		if err := s.attemptRepo.Create(ctx, tx, attempt); err != nil {
			return fmt.Errorf("recording quiz attempt: %w", err)
		}

		if passed {
			lessons, err := s.lessonRepo.GetByIDs(ctx, tx, []uuid.UUID{quiz.LessonID})
			if err != nil {
				return fmt.Errorf("fetching quiz lesson: %w", err)
			}
			if len(lessons) == 0 || lessons[0] == nil {
				return apierr.NotFound("lesson %s not found", quiz.LessonID)
			}
			if err := s.progressSvc.CompleteLessonTx(ctx, tx, rd.UserID, lessons[0].CourseID, quiz.LessonID); err != nil {
				return fmt.Errorf("completing lesson after pass: %w", err)
			}
		}

		result = &QuizSubmissionResult{
			Attempt:      attempt,
			Score:        score,
			Passed:       passed,
			CorrectCount: correct,
			TotalCount:   total,
			Results:      results,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Quiz submitted", "student_id", rd.UserID, "quiz_id", quizID, "score", result.Score, "passed", result.Passed)
	s.statsCache.Invalidate(ctx, rd.UserID)
	return result, nil
}

func (s *quizService) SaveQuiz(ctx context.Context, lessonID uuid.UUID, input QuizInput) (*types.Quiz, error) {
	if input.PassingScore < 0 || input.PassingScore > 100 {
		return nil, apierr.InvalidState("passing score must be between 0 and 100")
	}
	for i, q := range input.Questions {
		if q.Text == "" {
			return nil, apierr.InvalidState("question %d has no text", i)
		}
		if len(q.Options) == 0 {
			return nil, apierr.InvalidState("question %d has no options", i)
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			return nil, apierr.InvalidState("question %d correct option index %d is out of range", i, q.CorrectOptionIndex)
		}
	}

	var saved *types.Quiz
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lessons, err := s.lessonRepo.GetByIDs(ctx, tx, []uuid.UUID{lessonID})
		if err != nil {
			return fmt.Errorf("fetching lesson: %w", err)
		}
		if len(lessons) == 0 || lessons[0] == nil {
			return apierr.NotFound("lesson %s not found", lessonID)
		}

		quiz, err := s.quizRepo.GetByLessonID(ctx, tx, lessonID)
		if err != nil {
			return fmt.Errorf("fetching quiz: %w", err)
		}
		if quiz == nil {
			quiz = &types.Quiz{
				LessonID:     lessonID,
				PassingScore: input.PassingScore,
			}
			if err := s.quizRepo.Create(ctx, tx, quiz); err != nil {
				return fmt.Errorf("creating quiz: %w", err)
			}
		} else {
			quiz.PassingScore = input.PassingScore
			if err := s.quizRepo.Update(ctx, tx, quiz); err != nil {
				return fmt.Errorf("updating quiz: %w", err)
			}
		}

		questions := make([]*types.Question, 0, len(input.Questions))
		for _, qi := range input.Questions {
			row := &types.Question{
				Text:               qi.Text,
				CorrectOptionIndex: qi.CorrectOptionIndex,
			}
			if err := row.SetOptions(qi.Options); err != nil {
				return fmt.Errorf("encoding question options: %w", err)
			}
			questions = append(questions, row)
		}
		if err := s.questionRepo.ReplaceForQuiz(ctx, tx, quiz.ID, questions); err != nil {
			return fmt.Errorf("replacing questions: %w", err)
		}

		reloaded, err := s.quizRepo.GetByIDs(ctx, tx, []uuid.UUID{quiz.ID})
		if err != nil {
			return fmt.Errorf("reloading quiz: %w", err)
		}
		saved = reloaded[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *quizService) ListAttempts(ctx context.Context, quizID uuid.UUID) ([]*types.QuizAttempt, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	return s.attemptRepo.GetByStudentAndQuiz(ctx, nil, rd.UserID, quizID)
}
