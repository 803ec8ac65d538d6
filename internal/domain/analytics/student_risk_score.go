package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StudentRiskScore is one computed risk assessment. Rows are append-only; the newest row
// with valid_until in the future is the learner's cached score.
type StudentRiskScore struct {
	ID                       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                   uuid.UUID      `gorm:"type:uuid;not null;index:idx_risk_score_user_calc,priority:1" json:"user_id"`
	RiskScore                float64        `gorm:"column:risk_score;not null" json:"risk_score"`
	RiskLevel                string         `gorm:"column:risk_level;not null;index" json:"risk_level"`
	Factors                  datatypes.JSON `gorm:"column:factors" json:"factors"`
	TopFactor                string         `gorm:"column:top_factor" json:"top_factor"`
	PredictedOutcome         string         `gorm:"column:predicted_outcome" json:"predicted_outcome"`
	RecommendedInterventions datatypes.JSON `gorm:"column:recommended_interventions" json:"recommended_interventions"`
	CalculatedAt             time.Time      `gorm:"column:calculated_at;not null;index:idx_risk_score_user_calc,priority:2" json:"calculated_at"`
	ValidUntil               time.Time      `gorm:"column:valid_until;not null;index" json:"valid_until"`
	CreatedAt                time.Time      `gorm:"not null;index" json:"created_at"`
}

func (StudentRiskScore) TableName() string { return "student_risk_scores" }

func (s *StudentRiskScore) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
