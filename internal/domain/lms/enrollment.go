package lms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const EnrollmentStatusActive = "active"

type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Status    string    `gorm:"column:status;not null;index" json:"status"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Enrollment) TableName() string { return "enrollments" }

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type Course struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string     `gorm:"column:title;not null" json:"title"`
	InstructorID *uuid.UUID `gorm:"type:uuid;column:instructor_id;index" json:"instructor_id,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
}

func (Course) TableName() string { return "courses" }

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
