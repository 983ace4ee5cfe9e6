package types

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is issued at most once per (student, course) and never
// mutated. StudentName and CourseName are snapshots taken at issuance.
type Certificate struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID       uuid.UUID `gorm:"type:uuid;not null;index:idx_cert_student_course,unique" json:"student_id"`
	Student         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	CourseID        uuid.UUID `gorm:"type:uuid;not null;index:idx_cert_student_course,unique" json:"course_id"`
	Course          *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	CertificateCode string    `gorm:"column:certificate_code;uniqueIndex;not null" json:"certificate_code"`
	IssueDate       time.Time `gorm:"column:issue_date;not null" json:"issue_date"`
	StudentName     string    `gorm:"column:student_name;not null" json:"student_name"`
	CourseName      string    `gorm:"column:course_name;not null" json:"course_name"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Certificate) TableName() string { return "certificate" }
