package lms

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-risk/internal/domain"
	"github.com/yungbote/neurobridge-risk/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
)

// StudentEnrollment is an active enrollment joined with its course.
type StudentEnrollment struct {
	UserID       uuid.UUID
	CourseID     uuid.UUID
	CourseTitle  string
	InstructorID *uuid.UUID
}

type EnrollmentRepo interface {
	ListActiveLearnerIDs(dbc dbctx.Context) ([]uuid.UUID, error)
	GetActiveEnrollment(dbc dbctx.Context, userID uuid.UUID) (*StudentEnrollment, error)
	ListCoursesByInstructor(dbc dbctx.Context, instructorID uuid.UUID) ([]*types.Course, error)
	ListActiveByCourses(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.Enrollment, error)
	GetProfiles(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{
		db:  db,
		log: baseLog.With("repo", "EnrollmentRepo"),
	}
}

// ListActiveLearnerIDs returns each learner with an active enrollment once, ordered by their
// newest active enrollment first.
func (r *enrollmentRepo) ListActiveLearnerIDs(dbc dbctx.Context) ([]uuid.UUID, error) {
	var rows []*types.Enrollment
	if err := dbc.DB(r.db).
		Select("id", "user_id", "created_at").
		Where("status = ?", types.EnrollmentStatusActive).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]struct{}, len(rows))
	out := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.UserID]; ok {
			continue
		}
		seen[row.UserID] = struct{}{}
		out = append(out, row.UserID)
	}
	return out, nil
}

// GetActiveEnrollment returns the learner's newest active enrollment, or nil.
func (r *enrollmentRepo) GetActiveEnrollment(dbc dbctx.Context, userID uuid.UUID) (*StudentEnrollment, error) {
	var e types.Enrollment
	if err := dbc.DB(r.db).
		Where("user_id = ? AND status = ?", userID, types.EnrollmentStatusActive).
		Order("created_at DESC").
		Limit(1).
		Find(&e).Error; err != nil {
		return nil, err
	}
	if e.ID == uuid.Nil {
		return nil, nil
	}
	out := &StudentEnrollment{UserID: e.UserID, CourseID: e.CourseID}
	var c types.Course
	if err := dbc.DB(r.db).Where("id = ?", e.CourseID).Limit(1).Find(&c).Error; err != nil {
		return nil, err
	}
	if c.ID != uuid.Nil {
		out.CourseTitle = c.Title
		out.InstructorID = c.InstructorID
	}
	return out, nil
}

func (r *enrollmentRepo) ListCoursesByInstructor(dbc dbctx.Context, instructorID uuid.UUID) ([]*types.Course, error) {
	var out []*types.Course
	if instructorID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("instructor_id = ?", instructorID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) ListActiveByCourses(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.Enrollment, error) {
	var out []*types.Enrollment
	if len(courseIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("course_id IN ? AND status = ?", courseIDs, types.EnrollmentStatusActive).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) GetProfiles(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error) {
	var out []*types.Profile
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
