package lms

import (
	"time"

	"github.com/google/uuid"
)

type GamificationProfile struct {
	UserID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	CurrentStreak    int        `gorm:"column:current_streak;not null" json:"current_streak"`
	BestStreak       int        `gorm:"column:best_streak;not null" json:"best_streak"`
	LastActivityDate *time.Time `gorm:"column:last_activity_date" json:"last_activity_date,omitempty"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
}

func (GamificationProfile) TableName() string { return "gamification_profiles" }
