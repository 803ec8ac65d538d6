package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	types "github.com/yungbote/neurobridge-risk/internal/domain"
	"github.com/yungbote/neurobridge-risk/internal/risk"
)

func scoreToRow(s *risk.Score) (*types.StudentRiskScore, error) {
	factors, err := json.Marshal(s.Factors)
	if err != nil {
		return nil, fmt.Errorf("marshal factors: %w", err)
	}
	recs := s.RecommendedInterventions
	if recs == nil {
		recs = []string{}
	}
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("marshal recommendations: %w", err)
	}
	return &types.StudentRiskScore{
		UserID:                   s.UserID,
		RiskScore:                s.Score,
		RiskLevel:                string(s.Level),
		Factors:                  datatypes.JSON(factors),
		TopFactor:                s.TopFactor,
		PredictedOutcome:         s.PredictedOutcome,
		RecommendedInterventions: datatypes.JSON(recsJSON),
		CalculatedAt:             s.CalculatedAt,
		ValidUntil:               s.ValidUntil,
	}, nil
}

func scoreFromRow(row *types.StudentRiskScore) (*risk.Score, error) {
	s := &risk.Score{
		UserID:           row.UserID,
		Score:            row.RiskScore,
		Level:            risk.Level(row.RiskLevel),
		TopFactor:        row.TopFactor,
		PredictedOutcome: row.PredictedOutcome,
		CalculatedAt:     row.CalculatedAt.UTC(),
		ValidUntil:       row.ValidUntil.UTC(),
	}
	if len(row.Factors) > 0 {
		if err := json.Unmarshal(row.Factors, &s.Factors); err != nil {
			return nil, fmt.Errorf("decode factors for score %s: %w", row.ID, err)
		}
	}
	if len(row.RecommendedInterventions) > 0 {
		if err := json.Unmarshal(row.RecommendedInterventions, &s.RecommendedInterventions); err != nil {
			return nil, fmt.Errorf("decode recommendations for score %s: %w", row.ID, err)
		}
	}
	return s, nil
}

func templateFromRow(row *types.InterventionTemplate) risk.Template {
	return risk.Template{
		ID:              row.ID,
		Name:            row.Name,
		Type:            risk.InterventionType(row.InterventionType),
		LevelTrigger:    risk.Level(row.RiskLevelTrigger),
		RecipientType:   risk.RecipientType(row.RecipientType),
		SubjectTemplate: row.SubjectTemplate,
		MessageTemplate: row.MessageTemplate,
		Active:          row.IsActive,
	}
}

func eventToRow(e *risk.InterventionEvent) (*types.InterventionEvent, error) {
	factors, err := json.Marshal(e.TriggerFactors)
	if err != nil {
		return nil, fmt.Errorf("marshal trigger factors: %w", err)
	}
	row := &types.InterventionEvent{
		ID:               e.ID,
		StudentUserID:    e.StudentUserID,
		InterventionType: string(e.Type),
		TriggerRiskScore: e.TriggerRiskScore,
		TriggerFactors:   datatypes.JSON(factors),
		MessageTemplate:  e.TemplateName,
		Subject:          e.Subject,
		MessageContent:   e.MessageContent,
		RecipientType:    string(e.RecipientType),
		RecipientID:      e.RecipientID,
		CreatedAt:        e.CreatedAt,
		DeliveredAt:      e.DeliveredAt,
		OpenedAt:         e.OpenedAt,
		ActedUponAt:      e.ActedUponAt,
	}
	if e.Outcome != nil {
		o := string(*e.Outcome)
		row.Outcome = &o
	}
	return row, nil
}

func eventFromRow(row *types.InterventionEvent) (*risk.InterventionEvent, error) {
	e := &risk.InterventionEvent{
		ID:               row.ID,
		StudentUserID:    row.StudentUserID,
		Type:             risk.InterventionType(row.InterventionType),
		TriggerRiskScore: row.TriggerRiskScore,
		TemplateName:     row.MessageTemplate,
		Subject:          row.Subject,
		MessageContent:   row.MessageContent,
		RecipientType:    risk.RecipientType(row.RecipientType),
		RecipientID:      row.RecipientID,
		CreatedAt:        row.CreatedAt.UTC(),
		DeliveredAt:      row.DeliveredAt,
		OpenedAt:         row.OpenedAt,
		ActedUponAt:      row.ActedUponAt,
	}
	if len(row.TriggerFactors) > 0 {
		if err := json.Unmarshal(row.TriggerFactors, &e.TriggerFactors); err != nil {
			return nil, fmt.Errorf("decode trigger factors for event %s: %w", row.ID, err)
		}
	}
	if row.Outcome != nil {
		o := risk.Outcome(*row.Outcome)
		e.Outcome = &o
	}
	return e, nil
}
