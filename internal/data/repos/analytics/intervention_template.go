package analytics

import (
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-risk/internal/domain"
	"github.com/yungbote/neurobridge-risk/internal/pkg/dbctx"
	apperr "github.com/yungbote/neurobridge-risk/internal/pkg/errors"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
)

type InterventionTemplateRepo interface {
	Create(dbc dbctx.Context, templates []*types.InterventionTemplate) ([]*types.InterventionTemplate, error)
	ListActiveByLevel(dbc dbctx.Context, level string) ([]*types.InterventionTemplate, error)
	GetByNames(dbc dbctx.Context, names []string) ([]*types.InterventionTemplate, error)
}

type interventionTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInterventionTemplateRepo(db *gorm.DB, baseLog *logger.Logger) InterventionTemplateRepo {
	return &interventionTemplateRepo{
		db:  db,
		log: baseLog.With("repo", "InterventionTemplateRepo"),
	}
}

// Create inserts templates. A name collision fails with apperr.ErrAlreadyExists.
func (r *interventionTemplateRepo) Create(dbc dbctx.Context, templates []*types.InterventionTemplate) ([]*types.InterventionTemplate, error) {
	if len(templates) == 0 {
		return []*types.InterventionTemplate{}, nil
	}
	if err := dbc.DB(r.db).Create(&templates).Error; err != nil {
		return nil, apperr.MapConflict(err)
	}
	return templates, nil
}

// ListActiveByLevel returns active templates triggered by exactly level, oldest first so
// dispatch order is stable.
func (r *interventionTemplateRepo) ListActiveByLevel(dbc dbctx.Context, level string) ([]*types.InterventionTemplate, error) {
	var out []*types.InterventionTemplate
	if level == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("risk_level_trigger = ? AND is_active = ?", level, true).
		Order("created_at ASC").
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *interventionTemplateRepo) GetByNames(dbc dbctx.Context, names []string) ([]*types.InterventionTemplate, error) {
	var out []*types.InterventionTemplate
	if len(names) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("name IN ?", names).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
