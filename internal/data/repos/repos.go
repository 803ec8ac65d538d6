package repos

import (
	"github.com/yungbote/neurobridge-risk/internal/data/repos/analytics"
	"github.com/yungbote/neurobridge-risk/internal/data/repos/lms"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"gorm.io/gorm"
)

type RiskScoreRepo = analytics.RiskScoreRepo
type InterventionTemplateRepo = analytics.InterventionTemplateRepo
type InterventionEventRepo = analytics.InterventionEventRepo

type ActivityRepo = lms.ActivityRepo
type EnrollmentRepo = lms.EnrollmentRepo
type StudentEnrollment = lms.StudentEnrollment

func NewRiskScoreRepo(db *gorm.DB, baseLog *logger.Logger) RiskScoreRepo {
	return analytics.NewRiskScoreRepo(db, baseLog)
}
func NewInterventionTemplateRepo(db *gorm.DB, baseLog *logger.Logger) InterventionTemplateRepo {
	return analytics.NewInterventionTemplateRepo(db, baseLog)
}
func NewInterventionEventRepo(db *gorm.DB, baseLog *logger.Logger) InterventionEventRepo {
	return analytics.NewInterventionEventRepo(db, baseLog)
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return lms.NewActivityRepo(db, baseLog)
}
func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return lms.NewEnrollmentRepo(db, baseLog)
}

// Repos bundles every repository the services depend on.
type Repos struct {
	RiskScores  RiskScoreRepo
	Templates   InterventionTemplateRepo
	Events      InterventionEventRepo
	Activity    ActivityRepo
	Enrollments EnrollmentRepo
}

func New(db *gorm.DB, baseLog *logger.Logger) Repos {
	return Repos{
		RiskScores:  NewRiskScoreRepo(db, baseLog),
		Templates:   NewInterventionTemplateRepo(db, baseLog),
		Events:      NewInterventionEventRepo(db, baseLog),
		Activity:    NewActivityRepo(db, baseLog),
		Enrollments: NewEnrollmentRepo(db, baseLog),
	}
}
