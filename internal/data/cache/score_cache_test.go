package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/risk"
)

func testCache(t *testing.T) *RedisScoreCache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis cache tests")
	}
	rdb, err := NewRedisClient(context.Background(), addr, "", 0)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisScoreCache(rdb, "test:risk:"+uuid.NewString()+":", logger.Nop())
}

func TestRedisScoreCacheRoundTrip(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s := risk.DefaultEngine().Assess(risk.Activity{UserID: uuid.New()}, now)
	if err := c.Set(ctx, s, now); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, s.UserID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Score != s.Score || got.Level != s.Level || !got.ValidUntil.Equal(s.ValidUntil) {
		t.Fatalf("Get: want=%+v got=%+v", s, got)
	}
	ttl := c.rdb.TTL(ctx, c.key(s.UserID)).Val()
	if ttl <= 0 || ttl > 4*time.Hour {
		t.Fatalf("ttl: got=%v", ttl)
	}

	if err := c.Delete(ctx, s.UserID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, err := c.Get(ctx, s.UserID); err != nil || got != nil {
		t.Fatalf("Get after delete: got=%v err=%v", got, err)
	}
}

func TestRedisScoreCacheSkipsExpired(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s := &risk.Score{UserID: uuid.New(), ValidUntil: now.Add(-time.Minute)}
	if err := c.Set(ctx, s, now); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := c.Get(ctx, s.UserID); got != nil {
		t.Fatalf("expired score should not be cached")
	}
}

func TestNopScoreCacheMisses(t *testing.T) {
	var c ScoreCache = NopScoreCache{}
	if got, err := c.Get(context.Background(), uuid.New()); got != nil || err != nil {
		t.Fatalf("NopScoreCache.Get: got=%v err=%v", got, err)
	}
}
