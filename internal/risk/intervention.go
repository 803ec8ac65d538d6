package risk

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type InterventionType string

const (
	InterventionNudge           InterventionType = "nudge"
	InterventionInstructorAlert InterventionType = "instructor_alert"
	InterventionEmail           InterventionType = "email"
	InterventionInApp           InterventionType = "in_app"
)

func (t InterventionType) Valid() bool {
	switch t {
	case InterventionNudge, InterventionInstructorAlert, InterventionEmail, InterventionInApp:
		return true
	default:
		return false
	}
}

type RecipientType string

const (
	RecipientStudent    RecipientType = "student"
	RecipientInstructor RecipientType = "instructor"
	RecipientAdmin      RecipientType = "admin"
)

func (r RecipientType) Valid() bool {
	switch r {
	case RecipientStudent, RecipientInstructor, RecipientAdmin:
		return true
	default:
		return false
	}
}

// Outcome is the terminal result recorded for a dispatched intervention.
type Outcome string

const (
	OutcomeIgnored            Outcome = "ignored"
	OutcomeAcknowledged       Outcome = "acknowledged"
	OutcomeActionTaken        Outcome = "action_taken"
	OutcomeEngagementImproved Outcome = "engagement_improved"
)

var ErrInvalidOutcome = errors.New("invalid intervention outcome")

func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(strings.ToLower(strings.TrimSpace(s)))
	switch o {
	case OutcomeIgnored, OutcomeAcknowledged, OutcomeActionTaken, OutcomeEngagementImproved:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
}

// Template is an admin-configured intervention rule.
type Template struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Type            InterventionType `json:"interventionType"`
	LevelTrigger    Level            `json:"riskLevelTrigger"`
	RecipientType   RecipientType    `json:"recipientType"`
	SubjectTemplate string           `json:"subjectTemplate,omitempty"`
	MessageTemplate string           `json:"messageTemplate"`
	Active          bool             `json:"isActive"`
}

// Matches reports whether the template fires for a score at level.
func (t Template) Matches(level Level) bool {
	return t.Active && t.LevelTrigger == level
}

// InterventionEvent records one dispatched intervention and its delivery lifecycle.
type InterventionEvent struct {
	ID               uuid.UUID        `json:"id"`
	StudentUserID    uuid.UUID        `json:"studentUserId"`
	Type             InterventionType `json:"interventionType"`
	TriggerRiskScore float64          `json:"triggerRiskScore"`
	TriggerFactors   Factors          `json:"triggerFactors"`
	TemplateName     string           `json:"messageTemplate,omitempty"`
	Subject          string           `json:"subject,omitempty"`
	MessageContent   string           `json:"messageContent"`
	RecipientType    RecipientType    `json:"recipientType"`
	RecipientID      *uuid.UUID       `json:"recipientId,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	DeliveredAt      *time.Time       `json:"deliveredAt,omitempty"`
	OpenedAt         *time.Time       `json:"openedAt,omitempty"`
	ActedUponAt      *time.Time       `json:"actedUponAt,omitempty"`
	Outcome          *Outcome         `json:"outcome,omitempty"`
}

type Stage string

const (
	StageEligible   Stage = "eligible"
	StageDispatched Stage = "dispatched"
	StageDelivered  Stage = "delivered"
	StageOpened     Stage = "opened"
	StageActedUpon  Stage = "acted_upon"
)

// Stage derives the furthest lifecycle stage the event has reached.
func (e *InterventionEvent) Stage() Stage {
	switch {
	case e == nil:
		return StageEligible
	case e.ActedUponAt != nil || e.Outcome != nil:
		return StageActedUpon
	case e.OpenedAt != nil:
		return StageOpened
	case e.DeliveredAt != nil:
		return StageDelivered
	default:
		return StageDispatched
	}
}

// DefaultCooldown is the rolling window in which a learner receives at most one
// intervention of a given type.
const DefaultCooldown = 24 * time.Hour

// InCooldown reports whether an event created at lastCreatedAt still blocks a new
// dispatch of the same type at now.
func InCooldown(lastCreatedAt *time.Time, now time.Time, window time.Duration) bool {
	if lastCreatedAt == nil {
		return false
	}
	return !lastCreatedAt.Before(now.Add(-window))
}
