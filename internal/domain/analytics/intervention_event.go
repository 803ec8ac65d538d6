package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InterventionEvent is the dispatch ledger. The (student_user_id, intervention_type,
// created_at) index serves the cooldown lookup.
type InterventionEvent struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StudentUserID    uuid.UUID      `gorm:"type:uuid;column:student_user_id;not null;index:idx_intervention_cooldown,priority:1" json:"student_user_id"`
	InterventionType string         `gorm:"column:intervention_type;not null;index:idx_intervention_cooldown,priority:2" json:"intervention_type"`
	TriggerRiskScore float64        `gorm:"column:trigger_risk_score;not null" json:"trigger_risk_score"`
	TriggerFactors   datatypes.JSON `gorm:"column:trigger_factors" json:"trigger_factors"`
	MessageTemplate  string         `gorm:"column:message_template" json:"message_template,omitempty"`
	Subject          string         `gorm:"column:subject;type:text" json:"subject,omitempty"`
	MessageContent   string         `gorm:"column:message_content;type:text;not null" json:"message_content"`
	RecipientType    string         `gorm:"column:recipient_type;not null" json:"recipient_type"`
	RecipientID      *uuid.UUID     `gorm:"type:uuid;column:recipient_id;index" json:"recipient_id,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;index:idx_intervention_cooldown,priority:3" json:"created_at"`
	DeliveredAt      *time.Time     `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	OpenedAt         *time.Time     `gorm:"column:opened_at" json:"opened_at,omitempty"`
	ActedUponAt      *time.Time     `gorm:"column:acted_upon_at" json:"acted_upon_at,omitempty"`
	Outcome          *string        `gorm:"column:outcome" json:"outcome,omitempty"`
}

func (InterventionEvent) TableName() string { return "intervention_events" }

func (e *InterventionEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
