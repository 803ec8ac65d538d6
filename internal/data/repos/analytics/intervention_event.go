package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-risk/internal/domain"
	"github.com/yungbote/neurobridge-risk/internal/pkg/dbctx"
	apperr "github.com/yungbote/neurobridge-risk/internal/pkg/errors"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
)

type InterventionEventRepo interface {
	Create(dbc dbctx.Context, event *types.InterventionEvent) (*types.InterventionEvent, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.InterventionEvent, error)
	LatestCreatedAt(dbc dbctx.Context, studentUserID uuid.UUID, interventionType string) (*time.Time, error)
	ListByStudent(dbc dbctx.Context, studentUserID uuid.UUID, limit int) ([]*types.InterventionEvent, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type interventionEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInterventionEventRepo(db *gorm.DB, baseLog *logger.Logger) InterventionEventRepo {
	return &interventionEventRepo{
		db:  db,
		log: baseLog.With("repo", "InterventionEventRepo"),
	}
}

func (r *interventionEventRepo) Create(dbc dbctx.Context, event *types.InterventionEvent) (*types.InterventionEvent, error) {
	if event == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(event).Error; err != nil {
		return nil, apperr.MapConflict(err)
	}
	return event, nil
}

func (r *interventionEventRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.InterventionEvent, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.InterventionEvent
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// LatestCreatedAt returns when the newest event of this type was created for the learner,
// or nil when none exists.
func (r *interventionEventRepo) LatestCreatedAt(dbc dbctx.Context, studentUserID uuid.UUID, interventionType string) (*time.Time, error) {
	var row types.InterventionEvent
	err := dbc.DB(r.db).
		Select("id", "created_at").
		Where("student_user_id = ? AND intervention_type = ?", studentUserID, interventionType).
		Order("created_at DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	t := row.CreatedAt
	return &t, nil
}

func (r *interventionEventRepo) ListByStudent(dbc dbctx.Context, studentUserID uuid.UUID, limit int) ([]*types.InterventionEvent, error) {
	var out []*types.InterventionEvent
	if studentUserID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).
		Where("student_user_id = ?", studentUserID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateFields patches one event. A missing id yields apperr.ErrNotFound.
func (r *interventionEventRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	res := dbc.DB(r.db).
		Model(&types.InterventionEvent{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
