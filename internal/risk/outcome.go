package risk

const (
	PredictionDropout        = "High likelihood of dropout without intervention"
	PredictionMayFail        = "May fail upcoming assessments"
	PredictionDisengagement  = "At risk of disengagement"
	PredictionNeedsAttention = "Needs attention to stay on track"
	PredictionMonitoring     = "Minor concerns - monitoring recommended"
	PredictionOnTrack        = "On track for successful completion"
)

func PredictOutcome(level Level, f Factors) string {
	switch level {
	case LevelCritical:
		return PredictionDropout
	case LevelHigh:
		if f.DecliningScores.Value > 0.7 {
			return PredictionMayFail
		}
		if f.TimeAway.Value > 0.7 {
			return PredictionDisengagement
		}
		return PredictionNeedsAttention
	case LevelModerate:
		return PredictionMonitoring
	default:
		return PredictionOnTrack
	}
}

var baseRecommendations = map[Level][]string{
	LevelCritical: {"Immediate instructor outreach", "Consider one-on-one support session"},
	LevelHigh:     {"Send personalized encouragement message"},
	LevelModerate: {"In-app nudge with study suggestions"},
}

var factorRecommendations = map[FactorKey][]string{
	FactorDecliningScores:    {"Recommend review of struggling topics", "Suggest easier practice questions"},
	FactorMissedSessions:     {"Send session reminder notifications"},
	FactorLowEngagement:      {"Suggest shorter, more focused study sessions"},
	FactorStreakBreaks:       {"Motivate with streak recovery challenge"},
	FactorTimeAway:           {`Send "we miss you" re-engagement email`},
	FactorAssessmentFailures: {"Provide additional study resources", "Consider adaptive difficulty adjustment"},
}

// factorRecommendationThreshold is the factor value above which its suggestions apply.
const factorRecommendationThreshold = 0.5

// RecommendInterventions builds the ordered, de-duplicated suggestion list: level base
// suggestions first, then per-factor suggestions in declared order, truncated to max.
func RecommendInterventions(level Level, f Factors, max int) []string {
	out := make([]string, 0, max)
	seen := make(map[string]struct{})
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range baseRecommendations[level] {
		add(s)
	}
	for _, key := range FactorOrder {
		if f.Get(key).Value > factorRecommendationThreshold {
			for _, s := range factorRecommendations[key] {
				add(s)
			}
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
