package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/neurobridge-risk/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-risk/internal/http/middleware"
	"github.com/yungbote/neurobridge-risk/internal/observability"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	RiskHandler         *httpH.RiskHandler
	InterventionHandler *httpH.InterventionHandler
	ScanHandler         *httpH.ScanHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Learner risk
		if cfg.RiskHandler != nil {
			api.GET("/learners/:id/risk", cfg.RiskHandler.GetLearnerRisk)
			api.GET("/learners/:id/risk/history", cfg.RiskHandler.GetLearnerRiskHistory)
			api.GET("/instructors/:id/at-risk", cfg.RiskHandler.ListAtRiskStudents)
			api.GET("/risk/distribution", cfg.RiskHandler.GetDistribution)
		}

		// Interventions
		if cfg.InterventionHandler != nil {
			api.GET("/learners/:id/interventions", cfg.InterventionHandler.ListLearnerInterventions)
			api.POST("/learners/:id/interventions", cfg.InterventionHandler.TriggerLearnerInterventions)
			api.POST("/interventions/:id/delivered", cfg.InterventionHandler.MarkDelivered)
			api.POST("/interventions/:id/opened", cfg.InterventionHandler.MarkOpened)
			api.POST("/interventions/:id/outcome", cfg.InterventionHandler.MarkOutcome)
		}

		// Scans
		if cfg.ScanHandler != nil {
			api.POST("/risk/scan", cfg.ScanHandler.Scan)
		}
	}

	return r
}
