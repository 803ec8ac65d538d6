package risk

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is one graded assessment attempt.
type Attempt struct {
	Score        float64
	PassingScore float64 // zero means the configured default
	CreatedAt    time.Time
}

// Activity is the raw behavioural signal set for one learner.
type Activity struct {
	UserID uuid.UUID

	// RecentScores holds assessment scores from the lookback window in chronological
	// order, oldest first.
	RecentScores []float64

	LastActivityAt    *time.Time
	SessionCount7Days int
	AvgSessionMinutes float64

	// ExpectedSessionMinutes overrides the configured expectation when positive.
	ExpectedSessionMinutes float64

	CurrentStreak  int
	PreviousStreak int
	StreakLostAt   *time.Time

	ConsecutiveFailures int
	TotalAssessments    int
}

// ConsecutiveFailures counts failed attempts from the most recent backwards, stopping at
// the first pass. attempts must be ordered most recent first; only the first lookback
// attempts are inspected.
func ConsecutiveFailures(attempts []Attempt, defaultPassing float64, lookback int) int {
	if lookback > 0 && len(attempts) > lookback {
		attempts = attempts[:lookback]
	}
	n := 0
	for _, a := range attempts {
		passing := a.PassingScore
		if passing <= 0 {
			passing = defaultPassing
		}
		if a.Score >= passing {
			break
		}
		n++
	}
	return n
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
