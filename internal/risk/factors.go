package risk

import (
	"fmt"
	"math"
	"time"
)

type FactorKey string

const (
	FactorDecliningScores    FactorKey = "decliningScores"
	FactorMissedSessions     FactorKey = "missedSessions"
	FactorLowEngagement      FactorKey = "lowEngagement"
	FactorStreakBreaks       FactorKey = "streakBreaks"
	FactorTimeAway           FactorKey = "timeAway"
	FactorAssessmentFailures FactorKey = "assessmentFailures"
)

// FactorOrder is the declared factor order. Tie-breaks and recommendation order follow it.
var FactorOrder = []FactorKey{
	FactorDecliningScores,
	FactorMissedSessions,
	FactorLowEngagement,
	FactorStreakBreaks,
	FactorTimeAway,
	FactorAssessmentFailures,
}

// Factor is one dimension of risk.
type Factor struct {
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
	Value        float64 `json:"value"`
	RawValue     string  `json:"rawValue"`
	Contribution float64 `json:"contribution"`
	Description  string  `json:"description"`
}

func newFactor(name string, weight, value float64, raw, description string) Factor {
	return Factor{
		Name:         name,
		Weight:       weight,
		Value:        value,
		RawValue:     raw,
		Contribution: value * weight * 100,
		Description:  description,
	}
}

// Factors is the fixed set of six factors.
type Factors struct {
	DecliningScores    Factor `json:"decliningScores"`
	MissedSessions     Factor `json:"missedSessions"`
	LowEngagement      Factor `json:"lowEngagement"`
	StreakBreaks       Factor `json:"streakBreaks"`
	TimeAway           Factor `json:"timeAway"`
	AssessmentFailures Factor `json:"assessmentFailures"`
}

func (f Factors) Get(key FactorKey) Factor {
	switch key {
	case FactorDecliningScores:
		return f.DecliningScores
	case FactorMissedSessions:
		return f.MissedSessions
	case FactorLowEngagement:
		return f.LowEngagement
	case FactorStreakBreaks:
		return f.StreakBreaks
	case FactorTimeAway:
		return f.TimeAway
	case FactorAssessmentFailures:
		return f.AssessmentFailures
	default:
		return Factor{}
	}
}

// Ordered returns the factors in declared order.
func (f Factors) Ordered() []Factor {
	out := make([]Factor, 0, len(FactorOrder))
	for _, key := range FactorOrder {
		out = append(out, f.Get(key))
	}
	return out
}

// DecliningScoresFactor compares the older half of the chronological score list to the
// recent half (the floor(n/2) newest scores).
func DecliningScoresFactor(scores []float64, minScores int, weight float64) Factor {
	value := 0.0
	description := "Scores are stable"
	raw := "N/A"
	if len(scores) > 0 {
		raw = formatNumber(scores[len(scores)-1])
	}

	if len(scores) >= minScores && len(scores) >= 2 {
		recentCount := len(scores) / 2
		older := scores[:len(scores)-recentCount]
		recent := scores[len(scores)-recentCount:]
		decline := mean(older) - mean(recent)
		switch {
		case decline > 15:
			value = 1.0
			description = fmt.Sprintf("Scores dropped by %.0f%% recently", math.Round(decline))
		case decline > 10:
			value = 0.7
			description = fmt.Sprintf("Scores declined by %.0f%%", math.Round(decline))
		case decline > 5:
			value = 0.4
			description = "Slight score decline detected"
		}
	}
	return newFactor("Declining Scores", weight, value, raw, description)
}

func MissedSessionsFactor(sessionCount7Days, expectedPerWeek int, weight float64) Factor {
	value := 0.0
	description := "Regular session attendance"
	deficit := expectedPerWeek - sessionCount7Days
	switch {
	case deficit >= 3:
		value = 1.0
		description = "No sessions in the past week"
	case deficit >= 2:
		value = 0.7
		description = "Only 1 session this week"
	case deficit >= 1:
		value = 0.4
		description = "Fewer sessions than usual"
	}
	return newFactor("Missed Sessions", weight, value, fmt.Sprintf("%d sessions", sessionCount7Days), description)
}

func LowEngagementFactor(avgMinutes, expectedMinutes, weight float64) Factor {
	value := 0.0
	description := "Good engagement levels"
	ratio := 0.0
	if expectedMinutes > 0 {
		ratio = avgMinutes / expectedMinutes
	}
	switch {
	case ratio < 0.25:
		value = 1.0
		description = "Very low engagement time"
	case ratio < 0.5:
		value = 0.7
		description = "Below expected engagement"
	case ratio < 0.75:
		value = 0.4
		description = "Slightly lower engagement"
	}
	return newFactor("Low Engagement", weight, value, fmt.Sprintf("%.0f min avg", avgMinutes), description)
}

// StreakBreaksFactor scores a broken streak. A long streak (>7 days) lost at a known time
// scores by recency; a long streak lost more than a week ago no longer counts. Any other
// broken streak longer than 3 days scores 0.4.
func StreakBreaksFactor(current, previous int, lostAt *time.Time, now time.Time, weight float64) Factor {
	value := 0.0
	description := "Streak maintained"
	if previous > 7 && current == 0 && lostAt != nil {
		days := daysBetween(*lostAt, now)
		switch {
		case days <= 3:
			value = 1.0
			description = fmt.Sprintf("Lost %d-day streak %d days ago", previous, days)
		case days <= 7:
			value = 0.6
			description = "Streak lost recently"
		}
	} else if previous > 3 && current == 0 {
		value = 0.4
		description = "Short streak broken"
	}
	return newFactor("Streak Breaks", weight, value, fmt.Sprintf("%d days (was %d)", current, previous), description)
}

func TimeAwayFactor(lastActivity *time.Time, now time.Time, weight float64) Factor {
	value := 0.0
	description := "Recently active"
	days := 0
	if lastActivity == nil {
		value = 0.8
		description = "No activity recorded"
	} else {
		days = daysBetween(*lastActivity, now)
		switch {
		case days >= 14:
			value = 1.0
			description = fmt.Sprintf("Inactive for %d days", days)
		case days >= 7:
			value = 0.7
			description = "Inactive for over a week"
		case days >= 3:
			value = 0.4
			description = fmt.Sprintf("%d days since last activity", days)
		}
	}
	return newFactor("Time Away", weight, value, fmt.Sprintf("%d days", days), description)
}

func AssessmentFailuresFactor(consecutiveFailures int, weight float64) Factor {
	value := 0.0
	description := "Assessment performance OK"
	switch {
	case consecutiveFailures >= 4:
		value = 1.0
		description = fmt.Sprintf("%d consecutive failed assessments", consecutiveFailures)
	case consecutiveFailures >= 3:
		value = 0.7
		description = "3 consecutive failures"
	case consecutiveFailures >= 2:
		value = 0.4
		description = "2 consecutive failures"
	}
	return newFactor("Assessment Failures", weight, value, fmt.Sprintf("%d failures", consecutiveFailures), description)
}

// daysBetween is floor((to - from) / 24h).
func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
