package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-risk/internal/risk"
)

const (
	TypeRiskScored             = "risk.scored"
	TypeInterventionDispatched = "intervention.dispatched"
	TypeInterventionUpdated    = "intervention.updated"
)

// Event is the envelope published for downstream delivery collaborators.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	UserID     uuid.UUID       `json:"userId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

func newEvent(kind string, userID uuid.UUID, at time.Time, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.New(),
		Type:       kind,
		UserID:     userID,
		OccurredAt: at.UTC(),
		Payload:    raw,
	}, nil
}

func RiskScored(s *risk.Score) (Event, error) {
	return newEvent(TypeRiskScored, s.UserID, s.CalculatedAt, s)
}

func InterventionDispatched(e *risk.InterventionEvent) (Event, error) {
	return newEvent(TypeInterventionDispatched, e.StudentUserID, e.CreatedAt, e)
}

// InterventionUpdated carries the lifecycle change; field is delivered, opened or outcome.
func InterventionUpdated(eventID, userID uuid.UUID, field string, outcome string, at time.Time) (Event, error) {
	return newEvent(TypeInterventionUpdated, userID, at, map[string]interface{}{
		"interventionId": eventID,
		"field":          field,
		"outcome":        outcome,
	})
}
