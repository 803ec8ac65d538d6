package risk

import (
	"encoding/json"
	"sort"
	"strings"
)

const (
	VarUserName    = "user_name"
	VarRiskLevel   = "risk_level"
	VarTopFactor   = "top_factor"
	VarRiskFactors = "risk_factors"
	VarSuggestion  = "suggestion"
	VarCourseName  = "course_name"
)

const (
	fallbackUserName   = "there"
	fallbackSuggestion = "Keep learning!"
	fallbackCourseName = "your course"
)

// MessageVariables builds the placeholder values for a score. Empty names fall back to
// neutral wording.
func MessageVariables(s *Score, userName, courseName string) map[string]string {
	if strings.TrimSpace(userName) == "" {
		userName = fallbackUserName
	}
	if strings.TrimSpace(courseName) == "" {
		courseName = fallbackCourseName
	}
	suggestion := fallbackSuggestion
	if len(s.RecommendedInterventions) > 0 {
		suggestion = s.RecommendedInterventions[0]
	}
	factors, err := json.Marshal(s.Factors)
	if err != nil {
		factors = []byte("{}")
	}
	return map[string]string{
		VarUserName:    userName,
		VarRiskLevel:   string(s.Level),
		VarTopFactor:   s.TopFactor,
		VarRiskFactors: string(factors),
		VarSuggestion:  suggestion,
		VarCourseName:  courseName,
	}
}

// Personalize replaces {{key}} placeholders literally. Placeholders without a value are
// left in place.
func Personalize(template string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := template
	for _, k := range keys {
		out = strings.ReplaceAll(out, "{{"+k+"}}", vars[k])
	}
	return out
}
