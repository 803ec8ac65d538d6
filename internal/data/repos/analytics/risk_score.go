package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-risk/internal/domain"
	"github.com/yungbote/neurobridge-risk/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
)

type RiskScoreRepo interface {
	Create(dbc dbctx.Context, row *types.StudentRiskScore) (*types.StudentRiskScore, error)
	GetLatestValid(dbc dbctx.Context, userID uuid.UUID, now time.Time) (*types.StudentRiskScore, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.StudentRiskScore, error)
	ListLatestValidByUsers(dbc dbctx.Context, userIDs []uuid.UUID, now time.Time) ([]*types.StudentRiskScore, error)
	CountLatestValidByLevel(dbc dbctx.Context, now time.Time) (map[string]int, error)
}

type riskScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRiskScoreRepo(db *gorm.DB, baseLog *logger.Logger) RiskScoreRepo {
	return &riskScoreRepo{
		db:  db,
		log: baseLog.With("repo", "RiskScoreRepo"),
	}
}

func (r *riskScoreRepo) Create(dbc dbctx.Context, row *types.StudentRiskScore) (*types.StudentRiskScore, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *riskScoreRepo) GetLatestValid(dbc dbctx.Context, userID uuid.UUID, now time.Time) (*types.StudentRiskScore, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.StudentRiskScore
	err := dbc.DB(r.db).
		Where("user_id = ? AND valid_until > ?", userID, now).
		Order("calculated_at DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *riskScoreRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.StudentRiskScore, error) {
	var out []*types.StudentRiskScore
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("calculated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListLatestValidByUsers returns at most one row per learner: the newest still-valid score.
func (r *riskScoreRepo) ListLatestValidByUsers(dbc dbctx.Context, userIDs []uuid.UUID, now time.Time) ([]*types.StudentRiskScore, error) {
	var rows []*types.StudentRiskScore
	if len(userIDs) == 0 {
		return rows, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id IN ? AND valid_until > ?", userIDs, now).
		Order("user_id ASC").
		Order("calculated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return latestPerUser(rows), nil
}

func (r *riskScoreRepo) CountLatestValidByLevel(dbc dbctx.Context, now time.Time) (map[string]int, error) {
	var rows []*types.StudentRiskScore
	if err := dbc.DB(r.db).
		Select("id", "user_id", "risk_level", "calculated_at").
		Where("valid_until > ?", now).
		Order("user_id ASC").
		Order("calculated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, row := range latestPerUser(rows) {
		out[row.RiskLevel]++
	}
	return out, nil
}

// latestPerUser keeps the first row seen per user; rows must be sorted by calculated_at DESC
// within each user.
func latestPerUser(rows []*types.StudentRiskScore) []*types.StudentRiskScore {
	seen := make(map[uuid.UUID]struct{}, len(rows))
	out := make([]*types.StudentRiskScore, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		if _, ok := seen[row.UserID]; ok {
			continue
		}
		seen[row.UserID] = struct{}{}
		out = append(out, row)
	}
	return out
}
