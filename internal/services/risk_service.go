package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/neurobridge-risk/internal/data/cache"
	"github.com/yungbote/neurobridge-risk/internal/data/repos"
	"github.com/yungbote/neurobridge-risk/internal/events"
	"github.com/yungbote/neurobridge-risk/internal/observability"
	"github.com/yungbote/neurobridge-risk/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/risk"
)

const (
	defaultHistoryLimit = 10
	unknownStudentName  = "Unknown"
	unknownCourseTitle  = "Unknown Course"
)

// RiskHistoryEntry is one point of a learner's score history.
type RiskHistoryEntry struct {
	Score        float64    `json:"score"`
	Level        risk.Level `json:"level"`
	CalculatedAt time.Time  `json:"calculatedAt"`
}

// AtRiskStudent is a learner in one of an instructor's courses with a valid score at or
// above the requested level.
type AtRiskStudent struct {
	UserID      uuid.UUID   `json:"userId"`
	FullName    string      `json:"fullName"`
	Email       string      `json:"email"`
	CourseID    uuid.UUID   `json:"courseId"`
	CourseTitle string      `json:"courseTitle"`
	Score       *risk.Score `json:"riskScore"`
}

type RiskService interface {
	CalculateRiskScore(ctx context.Context, userID uuid.UUID) (*risk.Score, error)
	GetCurrentRiskScore(ctx context.Context, userID uuid.UUID) (*risk.Score, error)
	GetRiskScoreHistory(ctx context.Context, userID uuid.UUID, limit int) ([]RiskHistoryEntry, error)
	GetAtRiskStudentsForInstructor(ctx context.Context, instructorID uuid.UUID, minLevel risk.Level) ([]AtRiskStudent, error)
	GetRiskDistribution(ctx context.Context) (map[risk.Level]int, error)
}

type riskService struct {
	log         *logger.Logger
	engine      *risk.Engine
	activity    ActivityAggregator
	scores      repos.RiskScoreRepo
	enrollments repos.EnrollmentRepo
	cache       cache.ScoreCache
	bus         events.Bus
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewRiskService(
	baseLog *logger.Logger,
	engine *risk.Engine,
	activity ActivityAggregator,
	scores repos.RiskScoreRepo,
	enrollments repos.EnrollmentRepo,
	scoreCache cache.ScoreCache,
	bus events.Bus,
	metrics *observability.Metrics,
) RiskService {
	if scoreCache == nil {
		scoreCache = cache.NopScoreCache{}
	}
	if bus == nil {
		bus = events.NopBus{}
	}
	return &riskService{
		log:         baseLog.With("service", "RiskService"),
		engine:      engine,
		activity:    activity,
		scores:      scores,
		enrollments: enrollments,
		cache:       scoreCache,
		bus:         bus,
		metrics:     metrics,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *riskService) dbc(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx}
}

// CalculateRiskScore always recomputes. A failed history write is logged and the computed
// score is still returned.
func (s *riskService) CalculateRiskScore(ctx context.Context, userID uuid.UUID) (*risk.Score, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}
	ctx, span := observability.Tracer().Start(ctx, "risk.calculate")
	defer span.End()
	span.SetAttributes(attribute.String("risk.user_id", userID.String()))

	start := time.Now()
	now := s.now()
	act, err := s.activity.Aggregate(ctx, userID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate activity")
		return nil, fmt.Errorf("aggregate activity for %s: %w", userID, err)
	}
	score := s.engine.Assess(act, now)
	span.SetAttributes(
		attribute.Float64("risk.score", score.Score),
		attribute.String("risk.level", string(score.Level)),
	)
	s.metrics.ObserveRiskScore(string(score.Level), time.Since(start))

	s.persist(ctx, score)
	if err := s.cache.Set(ctx, score, now); err != nil {
		s.log.Warn("score cache write failed", "user_id", userID, "error", err)
		// a superseded cached score must not keep being served
		if err := s.cache.Delete(ctx, userID); err != nil {
			s.log.Warn("score cache evict failed", "user_id", userID, "error", err)
		}
	}
	s.publish(ctx, score)
	return score, nil
}

func (s *riskService) persist(ctx context.Context, score *risk.Score) {
	row, err := scoreToRow(score)
	if err == nil {
		_, err = s.scores.Create(s.dbc(ctx), row)
	}
	if err != nil {
		s.log.Error("persist risk score failed", "user_id", score.UserID, "level", score.Level, "error", err)
	}
}

func (s *riskService) publish(ctx context.Context, score *risk.Score) {
	ev, err := events.RiskScored(score)
	if err == nil {
		err = s.bus.Publish(ctx, ev)
	}
	if err != nil {
		s.metrics.IncEventPublishFailure(events.TypeRiskScored)
		s.log.Warn("publish risk score event failed", "user_id", score.UserID, "error", err)
	}
}

func (s *riskService) GetCurrentRiskScore(ctx context.Context, userID uuid.UUID) (*risk.Score, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}
	now := s.now()

	cached, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.log.Warn("score cache read failed", "user_id", userID, "error", err)
	}
	if cached.Fresh(now) {
		s.metrics.IncScoreLookup("cache")
		return cached, nil
	}

	row, err := s.scores.GetLatestValid(s.dbc(ctx), userID, now)
	if err != nil {
		return nil, fmt.Errorf("read latest risk score: %w", err)
	}
	if row != nil {
		stored, err := scoreFromRow(row)
		if err != nil {
			return nil, err
		}
		s.metrics.IncScoreLookup("store")
		if err := s.cache.Set(ctx, stored, now); err != nil {
			s.log.Warn("score cache backfill failed", "user_id", userID, "error", err)
		}
		return stored, nil
	}

	s.metrics.IncScoreLookup("computed")
	return s.CalculateRiskScore(ctx, userID)
}

func (s *riskService) GetRiskScoreHistory(ctx context.Context, userID uuid.UUID, limit int) ([]RiskHistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.scores.ListByUser(s.dbc(ctx), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list risk history: %w", err)
	}
	out := make([]RiskHistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, RiskHistoryEntry{
			Score:        r.RiskScore,
			Level:        risk.Level(r.RiskLevel),
			CalculatedAt: r.CalculatedAt.UTC(),
		})
	}
	return out, nil
}

func (s *riskService) GetAtRiskStudentsForInstructor(ctx context.Context, instructorID uuid.UUID, minLevel risk.Level) ([]AtRiskStudent, error) {
	if !minLevel.Valid() {
		minLevel = risk.LevelModerate
	}
	dbc := s.dbc(ctx)
	now := s.now()

	courses, err := s.enrollments.ListCoursesByInstructor(dbc, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	if len(courses) == 0 {
		return []AtRiskStudent{}, nil
	}
	titles := make(map[uuid.UUID]string, len(courses))
	courseIDs := make([]uuid.UUID, 0, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
		courseIDs = append(courseIDs, c.ID)
	}

	enrollments, err := s.enrollments.ListActiveByCourses(dbc, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	// first enrollment wins when a learner takes several of the instructor's courses
	courseOf := make(map[uuid.UUID]uuid.UUID, len(enrollments))
	learners := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		if _, ok := courseOf[e.UserID]; ok {
			continue
		}
		courseOf[e.UserID] = e.CourseID
		learners = append(learners, e.UserID)
	}
	if len(learners) == 0 {
		return []AtRiskStudent{}, nil
	}

	rows, err := s.scores.ListLatestValidByUsers(dbc, learners, now)
	if err != nil {
		return nil, fmt.Errorf("list learner scores: %w", err)
	}
	profiles, err := s.enrollments.GetProfiles(dbc, learners)
	if err != nil {
		return nil, fmt.Errorf("read learner profiles: %w", err)
	}
	names := make(map[uuid.UUID][2]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = [2]string{p.FullName, p.Email}
	}

	out := make([]AtRiskStudent, 0, len(rows))
	for _, row := range rows {
		if !risk.Level(row.RiskLevel).AtLeast(minLevel) {
			continue
		}
		score, err := scoreFromRow(row)
		if err != nil {
			s.log.Warn("skipping undecodable risk score", "user_id", row.UserID, "error", err)
			continue
		}
		courseID := courseOf[row.UserID]
		item := AtRiskStudent{
			UserID:      row.UserID,
			FullName:    unknownStudentName,
			CourseID:    courseID,
			CourseTitle: unknownCourseTitle,
			Score:       score,
		}
		if n, ok := names[row.UserID]; ok {
			if strings.TrimSpace(n[0]) != "" {
				item.FullName = n[0]
			}
			item.Email = n[1]
		}
		if t := strings.TrimSpace(titles[courseID]); t != "" {
			item.CourseTitle = t
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.Score > out[j].Score.Score
	})
	return out, nil
}

func (s *riskService) GetRiskDistribution(ctx context.Context) (map[risk.Level]int, error) {
	counts, err := s.scores.CountLatestValidByLevel(s.dbc(ctx), s.now())
	if err != nil {
		return nil, fmt.Errorf("count risk levels: %w", err)
	}
	out := make(map[risk.Level]int, len(risk.Levels))
	for _, l := range risk.Levels {
		out[l] = counts[string(l)]
	}
	return out, nil
}
