package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
)

// Bus publishes domain events. Publishing is best effort: callers log failures and carry on.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

const (
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendKafka = "kafka"
)

type Config struct {
	Backend      string
	RedisAddr    string
	RedisChannel string
	KafkaBrokers []string
	KafkaTopic   string
}

func New(ctx context.Context, cfg Config, log *logger.Logger) (Bus, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNone:
		return NopBus{}, nil
	case BackendRedis:
		b, err := NewRedisBus(ctx, cfg.RedisAddr, cfg.RedisChannel, log)
		if err != nil {
			return nil, err
		}
		return b, nil
	case BackendKafka:
		b, err := NewKafkaBus(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

type NopBus struct{}

func (NopBus) Publish(context.Context, Event) error { return nil }
func (NopBus) Close() error                         { return nil }
