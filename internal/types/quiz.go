package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Quiz is attached 1:1 to a lesson. PassingScore is a percentage.
type Quiz struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LessonID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"lesson_id"`
	Lesson       *Lesson    `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	PassingScore int        `gorm:"column:passing_score;not null;default:70" json:"passing_score"`
	Questions    []Question `gorm:"foreignKey:QuizID;references:ID" json:"questions,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Quiz) TableName() string { return "quiz" }

type Question struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QuizID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Text               string         `gorm:"column:text;not null" json:"text"`
	Options            datatypes.JSON `gorm:"column:options;type:jsonb" json:"options"`
	CorrectOptionIndex int            `gorm:"column:correct_option_index;not null" json:"correct_option_index"`
	Position           int            `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Question) TableName() string { return "question" }

func (q *Question) OptionList() []string {
	var opts []string
	if len(q.Options) == 0 {
		return opts
	}
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}

func (q *Question) SetOptions(opts []string) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.Options = datatypes.JSON(raw)
	return nil
}
