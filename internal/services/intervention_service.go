package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-risk/internal/data/repos"
	"github.com/yungbote/neurobridge-risk/internal/events"
	"github.com/yungbote/neurobridge-risk/internal/observability"
	"github.com/yungbote/neurobridge-risk/internal/pkg/dbctx"
	apperr "github.com/yungbote/neurobridge-risk/internal/pkg/errors"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/risk"
)

var ErrEventNotFound = errors.New("intervention event not found")

const defaultInterventionHistoryLimit = 20

const (
	fieldDelivered = "delivered"
	fieldOpened    = "opened"
	fieldOutcome   = "outcome"
)

type InterventionService interface {
	TriggerInterventions(ctx context.Context, score *risk.Score) ([]*risk.InterventionEvent, error)
	MarkDelivered(ctx context.Context, eventID uuid.UUID) error
	MarkOpened(ctx context.Context, eventID uuid.UUID) error
	MarkOutcome(ctx context.Context, eventID uuid.UUID, outcome risk.Outcome) error
	GetInterventionHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*risk.InterventionEvent, error)
}

type interventionService struct {
	db          *gorm.DB
	log         *logger.Logger
	templates   repos.InterventionTemplateRepo
	events      repos.InterventionEventRepo
	enrollments repos.EnrollmentRepo
	bus         events.Bus
	metrics     *observability.Metrics
	cooldown    time.Duration
	now         func() time.Time
}

func NewInterventionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	templates repos.InterventionTemplateRepo,
	eventRepo repos.InterventionEventRepo,
	enrollments repos.EnrollmentRepo,
	bus events.Bus,
	metrics *observability.Metrics,
	cooldown time.Duration,
) InterventionService {
	if cooldown <= 0 {
		cooldown = risk.DefaultCooldown
	}
	if bus == nil {
		bus = events.NopBus{}
	}
	return &interventionService{
		db:          db,
		log:         baseLog.With("service", "InterventionService"),
		templates:   templates,
		events:      eventRepo,
		enrollments: enrollments,
		bus:         bus,
		metrics:     metrics,
		cooldown:    cooldown,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// learnerContext is resolved at most once per trigger and shared by every template.
type learnerContext struct {
	name       string
	enrollment *repos.StudentEnrollment
}

func (s *interventionService) resolveLearner(dbc dbctx.Context, userID uuid.UUID) learnerContext {
	var lc learnerContext
	profiles, err := s.enrollments.GetProfiles(dbc, []uuid.UUID{userID})
	if err != nil {
		s.log.Warn("learner profile lookup failed", "student_user_id", userID, "error", err)
	} else if len(profiles) > 0 {
		lc.name = profiles[0].FullName
	}
	enr, err := s.enrollments.GetActiveEnrollment(dbc, userID)
	if err != nil {
		s.log.Warn("active enrollment lookup failed", "student_user_id", userID, "error", err)
	} else {
		lc.enrollment = enr
	}
	return lc
}

func (lc learnerContext) courseTitle() string {
	if lc.enrollment == nil {
		return ""
	}
	return lc.enrollment.CourseTitle
}

func (lc learnerContext) recipient(kind risk.RecipientType, userID uuid.UUID) *uuid.UUID {
	switch kind {
	case risk.RecipientStudent:
		id := userID
		return &id
	case risk.RecipientInstructor:
		if lc.enrollment != nil && lc.enrollment.InstructorID != nil && *lc.enrollment.InstructorID != uuid.Nil {
			id := *lc.enrollment.InstructorID
			return &id
		}
	}
	return nil
}

// TriggerInterventions fans one score out to every active template at its level. A
// template whose type fired for the learner inside the cooldown is skipped silently.
// Per-template failures are logged and joined; the remaining templates still run.
func (s *interventionService) TriggerInterventions(ctx context.Context, score *risk.Score) ([]*risk.InterventionEvent, error) {
	if score == nil || score.UserID == uuid.Nil {
		return nil, fmt.Errorf("risk score with user id required")
	}
	ctx, span := observability.Tracer().Start(ctx, "risk.trigger_interventions")
	defer span.End()
	span.SetAttributes(attribute.String("risk.level", string(score.Level)))

	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.templates.ListActiveByLevel(dbc, string(score.Level))
	if err != nil {
		return nil, fmt.Errorf("list templates for %s: %w", score.Level, err)
	}
	created := make([]*risk.InterventionEvent, 0, len(rows))
	if len(rows) == 0 {
		return created, nil
	}

	lc := s.resolveLearner(dbc, score.UserID)
	vars := risk.MessageVariables(score, lc.name, lc.courseTitle())

	var errs []error
	for _, row := range rows {
		tpl := templateFromRow(row)
		if !tpl.Matches(score.Level) {
			continue
		}
		now := s.now()
		last, err := s.events.LatestCreatedAt(dbc, score.UserID, string(tpl.Type))
		if err != nil {
			s.log.Error("cooldown lookup failed", "student_user_id", score.UserID, "template", tpl.Name, "error", err)
			errs = append(errs, fmt.Errorf("template %s: cooldown lookup: %w", tpl.Name, err))
			continue
		}
		if risk.InCooldown(last, now, s.cooldown) {
			s.metrics.IncInterventionSuppressed(string(tpl.Type), "cooldown")
			s.log.Debug("intervention in cooldown", "student_user_id", score.UserID, "type", tpl.Type)
			continue
		}

		ev := &risk.InterventionEvent{
			StudentUserID:    score.UserID,
			Type:             tpl.Type,
			TriggerRiskScore: score.Score,
			TriggerFactors:   score.Factors,
			TemplateName:     tpl.Name,
			Subject:          risk.Personalize(tpl.SubjectTemplate, vars),
			MessageContent:   risk.Personalize(tpl.MessageTemplate, vars),
			RecipientType:    tpl.RecipientType,
			RecipientID:      lc.recipient(tpl.RecipientType, score.UserID),
			CreatedAt:        now,
		}
		if ev.RecipientID == nil {
			s.log.Info("intervention recorded without recipient", "student_user_id", score.UserID, "recipient_type", tpl.RecipientType)
		}
		row, err := eventToRow(ev)
		if err == nil {
			row, err = s.events.Create(dbc, row)
		}
		if err != nil {
			s.log.Error("record intervention failed", "student_user_id", score.UserID, "template", tpl.Name, "error", err)
			errs = append(errs, fmt.Errorf("template %s: record: %w", tpl.Name, err))
			continue
		}
		ev.ID = row.ID
		created = append(created, ev)
		s.metrics.IncInterventionDispatched(string(ev.Type))

		msg, err := events.InterventionDispatched(ev)
		if err == nil {
			err = s.bus.Publish(ctx, msg)
		}
		if err != nil {
			s.metrics.IncEventPublishFailure(events.TypeInterventionDispatched)
			s.log.Warn("publish intervention event failed", "intervention_id", ev.ID, "error", err)
		}
	}
	span.SetAttributes(attribute.Int("risk.interventions_created", len(created)))
	return created, errors.Join(errs...)
}

func (s *interventionService) MarkDelivered(ctx context.Context, eventID uuid.UUID) error {
	return s.mark(ctx, eventID, fieldDelivered, map[string]interface{}{"delivered_at": s.now()}, "")
}

func (s *interventionService) MarkOpened(ctx context.Context, eventID uuid.UUID) error {
	return s.mark(ctx, eventID, fieldOpened, map[string]interface{}{"opened_at": s.now()}, "")
}

func (s *interventionService) MarkOutcome(ctx context.Context, eventID uuid.UUID, outcome risk.Outcome) error {
	if _, err := risk.ParseOutcome(string(outcome)); err != nil {
		return err
	}
	return s.mark(ctx, eventID, fieldOutcome, map[string]interface{}{
		"acted_upon_at": s.now(),
		"outcome":       string(outcome),
	}, string(outcome))
}

// mark applies one lifecycle write. Stage order is not enforced; a later write simply
// overwrites its own timestamp.
func (s *interventionService) mark(ctx context.Context, eventID uuid.UUID, field string, updates map[string]interface{}, outcome string) error {
	var studentID uuid.UUID
	apply := func(dbc dbctx.Context) error {
		row, err := s.events.GetByID(dbc, eventID)
		if err != nil {
			return fmt.Errorf("read intervention %s: %w", eventID, err)
		}
		if row == nil {
			return ErrEventNotFound
		}
		studentID = row.StudentUserID
		if err := s.events.UpdateFields(dbc, eventID, updates); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("mark intervention %s %s: %w", eventID, field, err)
		}
		return nil
	}
	var err error
	if s.db == nil {
		err = apply(dbctx.Context{Ctx: ctx})
	} else {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return apply(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	}
	if err != nil {
		return err
	}
	s.metrics.IncInterventionUpdate(field)

	msg, err := events.InterventionUpdated(eventID, studentID, field, outcome, s.now())
	if err == nil {
		err = s.bus.Publish(ctx, msg)
	}
	if err != nil {
		s.metrics.IncEventPublishFailure(events.TypeInterventionUpdated)
		s.log.Warn("publish intervention update failed", "intervention_id", eventID, "error", err)
	}
	return nil
}

func (s *interventionService) GetInterventionHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*risk.InterventionEvent, error) {
	if limit <= 0 {
		limit = defaultInterventionHistoryLimit
	}
	rows, err := s.events.ListByStudent(dbctx.Context{Ctx: ctx}, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list intervention history: %w", err)
	}
	out := make([]*risk.InterventionEvent, 0, len(rows))
	for _, r := range rows {
		ev, err := eventFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}
