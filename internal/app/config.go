package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yungbote/neurobridge-risk/internal/data/db"
	"github.com/yungbote/neurobridge-risk/internal/events"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/risk"
	"github.com/yungbote/neurobridge-risk/internal/services"
)

type Config struct {
	LogMode     string `validate:"oneof=development production prod test"`
	Environment string
	Version     string
	Port        string `validate:"required,numeric"`
	CORSOrigins []string

	Postgres      db.PostgresConfig
	MigrateSource bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int `validate:"gte=0"`
	CachePrefix   string

	Events events.Config

	ScoreTTL      time.Duration `validate:"gt=0"`
	Cooldown      time.Duration `validate:"gt=0"`
	ScanBatchSize int           `validate:"gte=1,lte=500"`
	SeedTemplates bool

	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// LoadConfig reads .env (when present) and the process environment. Unset keys fall back
// to the defaults below.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && log != nil {
		log.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		LogMode:     v.GetString("LOG_MODE"),
		Environment: v.GetString("APP_ENV"),
		Version:     v.GetString("APP_VERSION"),
		Port:        v.GetString("PORT"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),

		Postgres: db.PostgresConfig{
			DSN:          v.GetString("POSTGRES_DSN"),
			Host:         v.GetString("POSTGRES_HOST"),
			Port:         v.GetString("POSTGRES_PORT"),
			User:         v.GetString("POSTGRES_USER"),
			Password:     v.GetString("POSTGRES_PASSWORD"),
			Name:         v.GetString("POSTGRES_NAME"),
			MaxOpenConns: v.GetInt("POSTGRES_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("POSTGRES_MAX_IDLE_CONNS"),
		},
		MigrateSource: v.GetBool("MIGRATE_LMS_TABLES"),

		RedisAddr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		CachePrefix:   v.GetString("RISK_CACHE_PREFIX"),

		Events: events.Config{
			Backend:      v.GetString("EVENTS_BACKEND"),
			RedisAddr:    strings.TrimSpace(v.GetString("REDIS_ADDR")),
			RedisChannel: v.GetString("REDIS_EVENTS_CHANNEL"),
			KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
			KafkaTopic:   v.GetString("KAFKA_TOPIC"),
		},

		ScoreTTL:      time.Duration(v.GetInt("RISK_SCORE_TTL_HOURS")) * time.Hour,
		Cooldown:      time.Duration(v.GetInt("RISK_COOLDOWN_HOURS")) * time.Hour,
		ScanBatchSize: v.GetInt("RISK_SCAN_BATCH_SIZE"),
		SeedTemplates: v.GetBool("SEED_INTERVENTION_TEMPLATES"),

		ShutdownTimeout: time.Duration(v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")) * time.Second,
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_NAME", "neurobridge")
	v.SetDefault("POSTGRES_MAX_OPEN_CONNS", 20)
	v.SetDefault("POSTGRES_MAX_IDLE_CONNS", 5)
	v.SetDefault("RISK_CACHE_PREFIX", "risk:score:")
	v.SetDefault("EVENTS_BACKEND", events.BackendNone)
	v.SetDefault("REDIS_EVENTS_CHANNEL", "risk-events")
	v.SetDefault("KAFKA_TOPIC", "risk-events")
	v.SetDefault("RISK_SCORE_TTL_HOURS", int(risk.DefaultConfig().ScoreTTL/time.Hour))
	v.SetDefault("RISK_COOLDOWN_HOURS", int(risk.DefaultCooldown/time.Hour))
	v.SetDefault("RISK_SCAN_BATCH_SIZE", services.DefaultScanBatchSize)
	v.SetDefault("SEED_INTERVENTION_TEMPLATES", true)
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 15)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EngineConfig applies the deployment overrides to the default scoring configuration.
func (c Config) EngineConfig() risk.Config {
	rc := risk.DefaultConfig()
	rc.ScoreTTL = c.ScoreTTL
	return rc
}
