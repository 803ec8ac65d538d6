package domain

import (
	"github.com/yungbote/neurobridge-risk/internal/domain/analytics"
	"github.com/yungbote/neurobridge-risk/internal/domain/lms"
)

// Risk-owned tables.
type StudentRiskScore = analytics.StudentRiskScore
type InterventionTemplate = analytics.InterventionTemplate
type InterventionEvent = analytics.InterventionEvent

// LMS tables read by the activity aggregator.
type AssessmentAttempt = lms.AssessmentAttempt
type LearningSession = lms.LearningSession
type GamificationProfile = lms.GamificationProfile
type Enrollment = lms.Enrollment
type Course = lms.Course
type Profile = lms.Profile

const EnrollmentStatusActive = lms.EnrollmentStatusActive

// RiskModels are the tables this service owns and migrates in production.
func RiskModels() []interface{} {
	return []interface{}{
		&StudentRiskScore{},
		&InterventionTemplate{},
		&InterventionEvent{},
	}
}

// SourceModels are the LMS tables the aggregator reads. They are only migrated in tests
// and local development.
func SourceModels() []interface{} {
	return []interface{}{
		&AssessmentAttempt{},
		&LearningSession{},
		&GamificationProfile{},
		&Enrollment{},
		&Course{},
		&Profile{},
	}
}

func AllModels() []interface{} {
	return append(RiskModels(), SourceModels()...)
}
