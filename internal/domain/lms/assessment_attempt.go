package lms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssessmentAttempt is owned by the assessment service; this module only reads it.
type AssessmentAttempt struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_attempt_user_created,priority:1" json:"user_id"`
	AssessmentID *uuid.UUID `gorm:"type:uuid;index" json:"assessment_id,omitempty"`
	Score        float64    `gorm:"column:score;not null" json:"score"`
	PassingScore *float64   `gorm:"column:passing_score" json:"passing_score,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;index:idx_attempt_user_created,priority:2" json:"created_at"`
}

func (AssessmentAttempt) TableName() string { return "assessment_attempts" }

func (a *AssessmentAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
