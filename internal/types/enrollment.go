package types

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment binds a student to a course. Progress is always derived from
// lesson progress and overwritten, never adjusted incrementally by callers.
type Enrollment struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID        uuid.UUID `gorm:"type:uuid;not null;index:idx_student_course,unique" json:"student_id"`
	Student          *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	CourseID         uuid.UUID `gorm:"type:uuid;not null;index:idx_student_course,unique" json:"course_id"`
	Course           *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Progress         float64   `gorm:"column:progress;not null;default:0" json:"progress"`
	TimeSpentSeconds int64     `gorm:"column:time_spent_seconds;not null;default:0" json:"time_spent_seconds"`
	EnrolledAt       time.Time `gorm:"column:enrolled_at;not null;default:now()" json:"enrolled_at"`
	CreatedAt        time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Enrollment) TableName() string { return "enrollment" }
