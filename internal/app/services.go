package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-risk/internal/data/cache"
	"github.com/yungbote/neurobridge-risk/internal/data/repos"
	"github.com/yungbote/neurobridge-risk/internal/events"
	"github.com/yungbote/neurobridge-risk/internal/observability"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/risk"
	"github.com/yungbote/neurobridge-risk/internal/services"
)

type Services struct {
	Activity      services.ActivityAggregator
	Risk          services.RiskService
	Interventions services.InterventionService
	Scan          services.ScanService
}

func wireServices(
	ctx context.Context,
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	reposet repos.Repos,
	scoreCache cache.ScoreCache,
	bus events.Bus,
	metrics *observability.Metrics,
) (Services, error) {
	log.Info("Wiring services...")

	engine, err := risk.NewEngine(cfg.EngineConfig())
	if err != nil {
		return Services{}, fmt.Errorf("init risk engine: %w", err)
	}

	activity := services.NewActivityAggregator(log, reposet.Activity, engine.Config())
	riskSvc := services.NewRiskService(log, engine, activity, reposet.RiskScores, reposet.Enrollments, scoreCache, bus, metrics)
	interventions := services.NewInterventionService(db, log, reposet.Templates, reposet.Events, reposet.Enrollments, bus, metrics, cfg.Cooldown)
	scan := services.NewScanService(log, riskSvc, interventions, reposet.Enrollments, metrics, cfg.ScanBatchSize)

	if cfg.SeedTemplates {
		n, err := services.SeedTemplates(ctx, log, reposet.Templates)
		if err != nil {
			return Services{}, fmt.Errorf("seed intervention templates: %w", err)
		}
		log.Info("Intervention templates seeded", "created", n)
	}

	return Services{
		Activity:      activity,
		Risk:          riskSvc,
		Interventions: interventions,
		Scan:          scan,
	}, nil
}
