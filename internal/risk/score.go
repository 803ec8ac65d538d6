package risk

import (
	"time"

	"github.com/google/uuid"
)

// TopFactorNone is reported when no factor contributes to the score.
const TopFactorNone = "Unknown"

// Score is the computed assessment for one learner at one point in time.
type Score struct {
	UserID                   uuid.UUID `json:"userId"`
	Score                    float64   `json:"score"`
	Level                    Level     `json:"level"`
	Factors                  Factors   `json:"factors"`
	TopFactor                string    `json:"topFactor"`
	PredictedOutcome         string    `json:"predictedOutcome"`
	RecommendedInterventions []string  `json:"recommendedInterventions"`
	CalculatedAt             time.Time `json:"calculatedAt"`
	ValidUntil               time.Time `json:"validUntil"`
}

// Fresh reports whether the score may still be served at now.
func (s *Score) Fresh(now time.Time) bool {
	return s != nil && now.Before(s.ValidUntil)
}

// OverallScore sums every factor's value*weight*100, clamped to [0,100].
func OverallScore(f Factors) float64 {
	var score float64
	for _, factor := range f.Ordered() {
		score += factor.Value * factor.Weight * 100
	}
	return clamp(score, 0, 100)
}

// DetermineLevel maps a score onto the default thresholds.
func DetermineLevel(score float64) Level {
	return DefaultThresholds.Level(score)
}

// TopFactor returns the name of the factor with the largest contribution. Ties go to the
// earlier factor in declared order.
func TopFactor(f Factors) string {
	top := TopFactorNone
	max := 0.0
	for _, factor := range f.Ordered() {
		if factor.Contribution > max {
			max = factor.Contribution
			top = factor.Name
		}
	}
	return top
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
