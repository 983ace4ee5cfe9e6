package types

import (
	"time"

	"github.com/google/uuid"
)

// QuizAttempt is an append-only log row, one per scoring event.
type QuizAttempt struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Student     *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	QuizID      uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz        *Quiz     `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"quiz,omitempty"`
	Score       float64   `gorm:"column:score;not null" json:"score"`
	Passed      bool      `gorm:"column:passed;not null" json:"passed"`
	CompletedAt time.Time `gorm:"column:completed_at;not null" json:"completed_at"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }
