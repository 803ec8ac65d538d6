package lms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LearningSession struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_session_user_start,priority:1" json:"user_id"`
	CourseID        *uuid.UUID `gorm:"type:uuid;index" json:"course_id,omitempty"`
	StartTime       time.Time  `gorm:"column:start_time;not null;index:idx_session_user_start,priority:2" json:"start_time"`
	EndTime         *time.Time `gorm:"column:end_time;index" json:"end_time,omitempty"`
	DurationMinutes *float64   `gorm:"column:duration_minutes" json:"duration_minutes,omitempty"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
}

func (LearningSession) TableName() string { return "learning_sessions" }

func (s *LearningSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
