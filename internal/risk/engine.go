package risk

import (
	"time"
)

// Engine turns raw learner activity into a Score. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// DefaultEngine returns an engine over DefaultConfig.
func DefaultEngine() *Engine {
	return &Engine{cfg: DefaultConfig()}
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Factors(a Activity, now time.Time) Factors {
	w := e.cfg.Weights
	expected := a.ExpectedSessionMinutes
	if expected <= 0 {
		expected = e.cfg.ExpectedSessionMinutes
	}
	return Factors{
		DecliningScores:    DecliningScoresFactor(a.RecentScores, e.cfg.MinScoresForTrend, w.DecliningScores),
		MissedSessions:     MissedSessionsFactor(a.SessionCount7Days, e.cfg.ExpectedSessionsPerWeek, w.MissedSessions),
		LowEngagement:      LowEngagementFactor(a.AvgSessionMinutes, expected, w.LowEngagement),
		StreakBreaks:       StreakBreaksFactor(a.CurrentStreak, a.PreviousStreak, a.StreakLostAt, now, w.StreakBreaks),
		TimeAway:           TimeAwayFactor(a.LastActivityAt, now, w.TimeAway),
		AssessmentFailures: AssessmentFailuresFactor(a.ConsecutiveFailures, w.AssessmentFailures),
	}
}

// Assess runs the full pipeline: factors, score, level, top factor, prediction and
// recommendations.
func (e *Engine) Assess(a Activity, now time.Time) *Score {
	factors := e.Factors(a, now)
	score := OverallScore(factors)
	level := e.cfg.Thresholds.Level(score)
	return &Score{
		UserID:                   a.UserID,
		Score:                    score,
		Level:                    level,
		Factors:                  factors,
		TopFactor:                TopFactor(factors),
		PredictedOutcome:         PredictOutcome(level, factors),
		RecommendedInterventions: RecommendInterventions(level, factors, e.cfg.MaxRecommendations),
		CalculatedAt:             now,
		ValidUntil:               now.Add(e.cfg.ScoreTTL),
	}
}
