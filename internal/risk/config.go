package risk

import (
	"fmt"
	"math"
	"time"
)

// Weights holds the static contribution of each factor. They must sum to 1.
type Weights struct {
	DecliningScores    float64 `json:"decliningScores"`
	MissedSessions     float64 `json:"missedSessions"`
	LowEngagement      float64 `json:"lowEngagement"`
	StreakBreaks       float64 `json:"streakBreaks"`
	TimeAway           float64 `json:"timeAway"`
	AssessmentFailures float64 `json:"assessmentFailures"`
}

func (w Weights) Sum() float64 {
	return w.DecliningScores + w.MissedSessions + w.LowEngagement + w.StreakBreaks + w.TimeAway + w.AssessmentFailures
}

func (w Weights) For(key FactorKey) float64 {
	switch key {
	case FactorDecliningScores:
		return w.DecliningScores
	case FactorMissedSessions:
		return w.MissedSessions
	case FactorLowEngagement:
		return w.LowEngagement
	case FactorStreakBreaks:
		return w.StreakBreaks
	case FactorTimeAway:
		return w.TimeAway
	case FactorAssessmentFailures:
		return w.AssessmentFailures
	default:
		return 0
	}
}

// Thresholds are inclusive lower bounds on the 0-100 score.
type Thresholds struct {
	Moderate float64 `json:"moderate"`
	High     float64 `json:"high"`
	Critical float64 `json:"critical"`
}

func (t Thresholds) Level(score float64) Level {
	switch {
	case score >= t.Critical:
		return LevelCritical
	case score >= t.High:
		return LevelHigh
	case score >= t.Moderate:
		return LevelModerate
	default:
		return LevelLow
	}
}

type Config struct {
	Weights    Weights
	Thresholds Thresholds

	// ScoreTTL is how long a computed score is served before recomputation.
	ScoreTTL time.Duration

	ExpectedSessionsPerWeek int
	ExpectedSessionMinutes  float64
	DefaultPassingScore     float64
	FailureLookback         int
	MinScoresForTrend       int
	MaxRecommendations      int
}

var (
	DefaultWeights = Weights{
		DecliningScores:    0.25,
		MissedSessions:     0.20,
		LowEngagement:      0.20,
		StreakBreaks:       0.15,
		TimeAway:           0.10,
		AssessmentFailures: 0.10,
	}
	DefaultThresholds = Thresholds{Moderate: 50, High: 70, Critical: 85}
)

func DefaultConfig() Config {
	return Config{
		Weights:                 DefaultWeights,
		Thresholds:              DefaultThresholds,
		ScoreTTL:                4 * time.Hour,
		ExpectedSessionsPerWeek: 3,
		ExpectedSessionMinutes:  30,
		DefaultPassingScore:     70,
		FailureLookback:         5,
		MinScoresForTrend:       3,
		MaxRecommendations:      5,
	}
}

const weightSumTolerance = 1e-9

func (c Config) Validate() error {
	if sum := c.Weights.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("risk factor weights must sum to 1, got %.6f", sum)
	}
	for _, key := range FactorOrder {
		if w := c.Weights.For(key); w < 0 {
			return fmt.Errorf("risk factor weight %s is negative (%.3f)", key, w)
		}
	}
	t := c.Thresholds
	if !(0 <= t.Moderate && t.Moderate <= t.High && t.High <= t.Critical && t.Critical <= 100) {
		return fmt.Errorf("risk thresholds must be ordered within [0,100], got %+v", t)
	}
	if c.ScoreTTL <= 0 {
		return fmt.Errorf("score ttl must be positive")
	}
	if c.ExpectedSessionsPerWeek <= 0 || c.ExpectedSessionMinutes <= 0 {
		return fmt.Errorf("expected session cadence must be positive")
	}
	if c.FailureLookback <= 0 || c.MaxRecommendations <= 0 || c.MinScoresForTrend < 2 {
		return fmt.Errorf("invalid lookback/recommendation limits")
	}
	return nil
}
