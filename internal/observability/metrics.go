package observability

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-risk/internal/platform/envutil"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
)

// Metrics is nil when disabled; every method is safe to call on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	scoresComputed *prometheus.CounterVec
	scoreLatency   prometheus.Histogram
	scoreCache     *prometheus.CounterVec

	interventionsDispatched *prometheus.CounterVec
	interventionsSuppressed *prometheus.CounterVec
	interventionUpdates     *prometheus.CounterVec

	scanLearners *prometheus.CounterVec
	scanDuration prometheus.Histogram

	eventPublishFailures *prometheus.CounterVec

	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge

	dbCollectorOnce sync.Once
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	d := envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 15)
	if d <= 0 {
		return 15 * time.Second
	}
	return d
}

// Init builds the process-wide metrics when METRICS_ENABLED is set, otherwise returns nil.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics(prometheus.NewRegistry())
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "risk_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "risk_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		scoresComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_scores_computed_total",
			Help: "Risk scores computed by resulting level.",
		}, []string{"level"}),
		scoreLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "risk_score_compute_duration_seconds",
			Help:    "Time to aggregate activity and compute one score.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}),
		scoreCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_score_lookups_total",
			Help: "Current-score lookups by source (cache, store, computed).",
		}, []string{"source"}),
		interventionsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_interventions_dispatched_total",
			Help: "Intervention events recorded by type.",
		}, []string{"type"}),
		interventionsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_interventions_suppressed_total",
			Help: "Matching templates not dispatched, by type and reason.",
		}, []string{"type", "reason"}),
		interventionUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_intervention_updates_total",
			Help: "Lifecycle updates on intervention events.",
		}, []string{"field"}),
		scanLearners: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_scan_learners_total",
			Help: "Learners processed by cohort scans by status.",
		}, []string{"status"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "risk_scan_duration_seconds",
			Help:    "Wall time of a cohort scan.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		eventPublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_event_publish_failures_total",
			Help: "Domain events that could not be published, by type.",
		}, []string{"type"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "risk_redis_up",
			Help: "1 when the last redis ping succeeded.",
		}),
		redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "risk_redis_ping_seconds",
			Help: "Latency of the last redis ping.",
		}),
	}
	reg.MustRegister(
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.scoresComputed,
		m.scoreLatency,
		m.scoreCache,
		m.interventionsDispatched,
		m.interventionsSuppressed,
		m.interventionUpdates,
		m.scanLearners,
		m.scanDuration,
		m.eventPublishFailures,
		m.redisUp,
		m.redisPing,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveRiskScore(level string, dur time.Duration) {
	if m == nil {
		return
	}
	m.scoresComputed.WithLabelValues(level).Inc()
	m.scoreLatency.Observe(dur.Seconds())
}

func (m *Metrics) IncScoreLookup(source string) {
	if m == nil {
		return
	}
	m.scoreCache.WithLabelValues(source).Inc()
}

func (m *Metrics) IncInterventionDispatched(kind string) {
	if m == nil {
		return
	}
	m.interventionsDispatched.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncInterventionSuppressed(kind, reason string) {
	if m == nil {
		return
	}
	m.interventionsSuppressed.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) IncInterventionUpdate(field string) {
	if m == nil {
		return
	}
	m.interventionUpdates.WithLabelValues(field).Inc()
}

func (m *Metrics) ObserveScan(ok, failed int, dur time.Duration) {
	if m == nil {
		return
	}
	m.scanLearners.WithLabelValues("ok").Add(float64(ok))
	m.scanLearners.WithLabelValues("failed").Add(float64(failed))
	m.scanDuration.Observe(dur.Seconds())
}

func (m *Metrics) IncEventPublishFailure(kind string) {
	if m == nil {
		return
	}
	m.eventPublishFailures.WithLabelValues(kind).Inc()
}

// StartPostgresCollector exports database/sql pool stats for db.
func (m *Metrics) StartPostgresCollector(log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	m.dbCollectorOnce.Do(func() {
		sqlDB, err := db.DB()
		if err != nil {
			if log != nil {
				log.Warn("metrics: postgres stats unavailable", "error", err)
			}
			return
		}
		m.registry.MustRegister(collectors.NewDBStatsCollector(sqlDB, "risk"))
	})
}

// StartRedisCollector pings rdb on every scrape interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
