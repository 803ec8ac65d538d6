package temporalx

import (
	"time"

	"github.com/yungbote/neurobridge-risk/internal/platform/envutil"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	AutoRegisterNamespace bool
	RetentionDays         int

	DialTimeout time.Duration
	DialMaxWait time.Duration
	Backoff     time.Duration
	BackoffMax  time.Duration

	// ScanCron schedules the cohort scan workflow; empty disables the schedule.
	ScanCron       string
	ScanWorkflowID string
	ScanDispatch   bool

	WorkerConcurrency int
}

func LoadConfig() Config {
	return Config{
		Address:   envutil.String("TEMPORAL_ADDRESS", ""),
		Namespace: envutil.String("TEMPORAL_NAMESPACE", "neurobridge-risk"),
		TaskQueue: envutil.String("TEMPORAL_TASK_QUEUE", "risk-scan"),

		ClientCertPath: envutil.String("TEMPORAL_CLIENT_CERT_PATH", ""),
		ClientKeyPath:  envutil.String("TEMPORAL_CLIENT_KEY_PATH", ""),
		ClientCAPath:   envutil.String("TEMPORAL_CLIENT_CA_PATH", ""),

		AutoRegisterNamespace: envutil.Bool("TEMPORAL_AUTO_REGISTER_NAMESPACE", false),
		RetentionDays:         clampInt(envutil.Int("TEMPORAL_NAMESPACE_RETENTION_DAYS", 7), 1, 365),

		DialTimeout: envutil.Seconds("TEMPORAL_DIAL_TIMEOUT_SECONDS", 5),
		DialMaxWait: envutil.Seconds("TEMPORAL_DIAL_MAX_WAIT_SECONDS", 60),
		Backoff:     envutil.Millis("TEMPORAL_DIAL_BACKOFF_MS", 250),
		BackoffMax:  envutil.Millis("TEMPORAL_DIAL_BACKOFF_MAX_MS", 5000),

		ScanCron:       envutil.String("RISK_SCAN_CRON", ""),
		ScanWorkflowID: envutil.String("RISK_SCAN_WORKFLOW_ID", "risk-scan-cron"),
		ScanDispatch:   envutil.Bool("RISK_SCAN_DISPATCH", true),

		WorkerConcurrency: clampInt(envutil.Int("TEMPORAL_WORKER_CONCURRENCY", 4), 1, 64),
	}
}

func (c Config) Enabled() bool { return c.Address != "" }

func (c Config) tlsEnabled() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
