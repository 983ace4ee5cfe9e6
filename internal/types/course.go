package types

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	InstructorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Instructor    *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:InstructorID;references:ID" json:"instructor,omitempty"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	Description   string    `gorm:"column:description" json:"description"`
	CoverImageURL string    `gorm:"column:cover_image_url" json:"cover_image_url"`
	Approved      bool      `gorm:"column:approved;not null;default:false" json:"approved"`
	CreatedAt     time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Course) TableName() string { return "course" }
