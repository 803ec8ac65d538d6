package app

import (
	"context"
	"fmt"
	"os"

	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-risk/internal/data/cache"
	"github.com/yungbote/neurobridge-risk/internal/data/db"
	"github.com/yungbote/neurobridge-risk/internal/data/repos"
	"github.com/yungbote/neurobridge-risk/internal/events"
	httpapi "github.com/yungbote/neurobridge-risk/internal/http"
	httpH "github.com/yungbote/neurobridge-risk/internal/http/handlers"
	"github.com/yungbote/neurobridge-risk/internal/observability"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/platform/shutdown"
	"github.com/yungbote/neurobridge-risk/internal/temporalx"
	"github.com/yungbote/neurobridge-risk/internal/temporalx/riskscan"
	"github.com/yungbote/neurobridge-risk/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Redis    *goredis.Client
	Bus      events.Bus
	Metrics  *observability.Metrics
	Server   *httpapi.Server
	Cfg      Config
	Repos    repos.Repos
	Services Services

	temporalCfg  temporalx.Config
	temporal     temporalsdkclient.Client
	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	ctx := context.Background()

	metrics := observability.Init(log)
	otelCfg := observability.OtelConfigFromEnv()
	otelCfg.Environment = cfg.Environment
	otelCfg.Version = cfg.Version
	otelShutdown := observability.InitOTel(ctx, log, otelCfg)

	pg, err := db.NewPostgresService(cfg.Postgres, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := db.AutoMigrateAll(pg.DB(), cfg.MigrateSource); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	a := &App{
		Log:          log,
		DB:           theDB,
		Metrics:      metrics,
		Cfg:          cfg,
		pg:           pg,
		otelShutdown: otelShutdown,
		temporalCfg:  temporalx.LoadConfig(),
	}

	var scoreCache cache.ScoreCache = cache.NopScoreCache{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.Redis = rdb
		scoreCache = cache.NewRedisScoreCache(rdb, cfg.CachePrefix, log)
	} else {
		log.Warn("REDIS_ADDR not set; risk scores will not be cached")
	}

	bus, err := events.New(ctx, cfg.Events, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init event bus: %w", err)
	}
	a.Bus = bus

	a.Repos = repos.New(theDB, log)
	a.Services, err = wireServices(ctx, theDB, log, cfg, a.Repos, scoreCache, bus, metrics)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Server = httpapi.NewServer(httpapi.RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		ServiceName:         otelCfg.ServiceName,
		CORSOrigins:         cfg.CORSOrigins,
		RiskHandler:         httpH.NewRiskHandler(a.Services.Risk),
		InterventionHandler: httpH.NewInterventionHandler(a.Services.Risk, a.Services.Interventions),
		ScanHandler:         httpH.NewScanHandler(a.Services.Scan),
		HealthHandler:       httpH.NewHealthHandler(a.healthChecks()),
	})
	return a, nil
}

func (a *App) healthChecks() map[string]httpH.Pinger {
	checks := map[string]httpH.Pinger{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}
	return checks
}

// Start launches background work: metrics collectors and, when TEMPORAL_ADDRESS is set,
// the scan worker and its cron schedule.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Metrics.StartPostgresCollector(a.Log, a.DB)
	if a.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Redis)
	}

	tcfg := a.temporalCfg
	if !tcfg.Enabled() {
		a.Log.Info("TEMPORAL_ADDRESS not set; scheduled scans disabled")
		return nil
	}
	tc, err := temporalx.NewClient(ctx, a.Log, tcfg)
	if err != nil {
		return fmt.Errorf("init temporal client: %w", err)
	}
	a.temporal = tc

	runner, err := temporalworker.NewRunner(a.Log, tc, tcfg, a.Services.Scan)
	if err != nil {
		return err
	}
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start temporal worker: %w", err)
	}
	in := riskscan.ScanInput{Dispatch: tcfg.ScanDispatch, BatchSize: a.Cfg.ScanBatchSize}
	if err := riskscan.StartCron(ctx, tc, a.Log, tcfg.TaskQueue, tcfg.ScanWorkflowID, tcfg.ScanCron, in); err != nil {
		a.Log.Warn("risk scan schedule not started", "error", err)
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Server.Run(":" + a.Cfg.Port)
}

// Close stops background work and releases connections. Safe to call more than once.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()

	var steps []shutdown.Step
	if a.Server != nil {
		steps = append(steps, shutdown.Step{Name: "http", Fn: a.Server.Shutdown})
	}
	if tc := a.temporal; tc != nil {
		steps = append(steps, shutdown.Step{Name: "temporal", Fn: func(context.Context) error { tc.Close(); return nil }})
	}
	if bus := a.Bus; bus != nil {
		steps = append(steps, shutdown.Step{Name: "events", Fn: func(context.Context) error { return bus.Close() }})
	}
	if rdb := a.Redis; rdb != nil {
		steps = append(steps, shutdown.Step{Name: "redis", Fn: func(context.Context) error { return rdb.Close() }})
	}
	if pg := a.pg; pg != nil {
		steps = append(steps, shutdown.Step{Name: "postgres", Fn: func(context.Context) error { return pg.Close() }})
	}
	if a.otelShutdown != nil {
		steps = append(steps, shutdown.Step{Name: "otel", Fn: a.otelShutdown})
	}
	a.Server, a.temporal, a.Bus, a.Redis, a.pg, a.otelShutdown = nil, nil, nil, nil, nil, nil

	if err := shutdown.Run(ctx, steps...); err != nil && a.Log != nil {
		a.Log.Warn("shutdown finished with errors", "error", err)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
