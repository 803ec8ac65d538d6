package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InterventionTemplate struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	InterventionType string    `gorm:"column:intervention_type;not null" json:"intervention_type"`
	RiskLevelTrigger string    `gorm:"column:risk_level_trigger;not null;index" json:"risk_level_trigger"`
	RecipientType    string    `gorm:"column:recipient_type;not null" json:"recipient_type"`
	SubjectTemplate  string    `gorm:"column:subject_template;type:text" json:"subject_template,omitempty"`
	MessageTemplate  string    `gorm:"column:message_template;type:text;not null" json:"message_template"`
	IsActive         bool      `gorm:"column:is_active;not null;index" json:"is_active"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

func (InterventionTemplate) TableName() string { return "intervention_templates" }

func (t *InterventionTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
