package lms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-risk/internal/domain"
	"github.com/yungbote/neurobridge-risk/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
)

// ActivityRepo reads the behavioural tables owned by the wider LMS.
type ActivityRepo interface {
	ListAttemptsSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.AssessmentAttempt, error)
	ListLatestAttempts(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.AssessmentAttempt, error)
	LastSessionEnd(dbc dbctx.Context, userID uuid.UUID) (*time.Time, error)
	CountSessionsSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int, error)
	AvgSessionMinutesSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (float64, error)
	GetGamificationProfile(dbc dbctx.Context, userID uuid.UUID) (*types.GamificationProfile, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{
		db:  db,
		log: baseLog.With("repo", "ActivityRepo"),
	}
}

// ListAttemptsSince returns attempts newest first.
func (r *activityRepo) ListAttemptsSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.AssessmentAttempt, error) {
	var out []*types.AssessmentAttempt
	if err := dbc.DB(r.db).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityRepo) ListLatestAttempts(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.AssessmentAttempt, error) {
	var out []*types.AssessmentAttempt
	q := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityRepo) LastSessionEnd(dbc dbctx.Context, userID uuid.UUID) (*time.Time, error) {
	var row types.LearningSession
	err := dbc.DB(r.db).
		Select("id", "end_time").
		Where("user_id = ? AND end_time IS NOT NULL", userID).
		Order("end_time DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return row.EndTime, nil
}

func (r *activityRepo) CountSessionsSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.LearningSession{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

// AvgSessionMinutesSince averages duration over sessions created since the cutoff; sessions
// without a duration count as zero minutes.
func (r *activityRepo) AvgSessionMinutesSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (float64, error) {
	var res struct {
		Total float64
		N     int64
	}
	if err := dbc.DB(r.db).
		Model(&types.LearningSession{}).
		Select("COALESCE(SUM(COALESCE(duration_minutes, 0)), 0) AS total, COUNT(*) AS n").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&res).Error; err != nil {
		return 0, err
	}
	if res.N == 0 {
		return 0, nil
	}
	return res.Total / float64(res.N), nil
}

func (r *activityRepo) GetGamificationProfile(dbc dbctx.Context, userID uuid.UUID) (*types.GamificationProfile, error) {
	var row types.GamificationProfile
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.UserID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
