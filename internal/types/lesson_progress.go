package types

import (
	"time"

	"github.com/google/uuid"
)

// LessonProgress is the per-student, per-lesson completion marker. Once
// Completed flips to true it is never reset by the engine.
type LessonProgress struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_student_lesson,unique" json:"student_id"`
	Student        *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	LessonID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_student_lesson,unique" json:"lesson_id"`
	Lesson         *Lesson    `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	Completed      bool       `gorm:"column:completed;not null;default:false" json:"completed"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	LastAccessedAt *time.Time `gorm:"column:last_accessed_at" json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }
