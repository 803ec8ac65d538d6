package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/risk"
)

// ScoreCache holds each learner's latest score until its validUntil. Get returns nil on a miss.
type ScoreCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*risk.Score, error)
	Set(ctx context.Context, score *risk.Score, now time.Time) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

const defaultKeyPrefix = "risk:score:"

type RedisScoreCache struct {
	rdb    goredis.UniversalClient
	prefix string
	log    *logger.Logger
}

func NewRedisScoreCache(rdb goredis.UniversalClient, prefix string, log *logger.Logger) *RedisScoreCache {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisScoreCache{
		rdb:    rdb,
		prefix: prefix,
		log:    log.With("service", "RedisScoreCache"),
	}
}

func (c *RedisScoreCache) key(userID uuid.UUID) string { return c.prefix + userID.String() }

func (c *RedisScoreCache) Get(ctx context.Context, userID uuid.UUID) (*risk.Score, error) {
	raw, err := c.rdb.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get score: %w", err)
	}
	var s risk.Score
	if err := json.Unmarshal(raw, &s); err != nil {
		c.log.Warn("dropping undecodable cached score", "user_id", userID, "error", err)
		_ = c.rdb.Del(ctx, c.key(userID)).Err()
		return nil, nil
	}
	return &s, nil
}

// Set stores the score with a TTL of validUntil - now. Already expired scores are not cached.
func (c *RedisScoreCache) Set(ctx context.Context, score *risk.Score, now time.Time) error {
	if score == nil {
		return nil
	}
	ttl := score.ValidUntil.Sub(now)
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(score)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, c.key(score.UserID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set score: %w", err)
	}
	return nil
}

func (c *RedisScoreCache) Delete(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}

// NopScoreCache always misses. Used when REDIS_ADDR is not configured.
type NopScoreCache struct{}

func (NopScoreCache) Get(context.Context, uuid.UUID) (*risk.Score, error) { return nil, nil }
func (NopScoreCache) Set(context.Context, *risk.Score, time.Time) error   { return nil }
func (NopScoreCache) Delete(context.Context, uuid.UUID) error             { return nil }
