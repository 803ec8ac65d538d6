package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/risk"
)

type fakeRedis struct {
	channels []string
	payloads [][]byte
	err      error
	closed   bool
}

func (r *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd {
	cmd := goredis.NewIntCmd(ctx)
	if r.err != nil {
		cmd.SetErr(r.err)
		return cmd
	}
	r.channels = append(r.channels, channel)
	r.payloads = append(r.payloads, message.([]byte))
	cmd.SetVal(1)
	return cmd
}

func (r *fakeRedis) Close() error {
	r.closed = true
	return nil
}

func TestRedisBusPublishesJSONOnChannel(t *testing.T) {
	rdb := &fakeRedis{}
	bus := newRedisBus(rdb, "risk-events", logger.Nop())

	s := risk.DefaultEngine().Assess(risk.Activity{UserID: uuid.New()}, time.Now().UTC())
	ev, err := RiskScored(s)
	if err != nil {
		t.Fatalf("RiskScored: %v", err)
	}
	if err := bus.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(rdb.channels) != 1 || rdb.channels[0] != "risk-events" {
		t.Fatalf("channels: got=%v", rdb.channels)
	}
	var decoded Event
	if err := json.Unmarshal(rdb.payloads[0], &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != TypeRiskScored || decoded.UserID != s.UserID {
		t.Fatalf("event: want=%s/%s got=%s/%s", TypeRiskScored, s.UserID, decoded.Type, decoded.UserID)
	}

	if err := bus.Close(); err != nil || !rdb.closed {
		t.Fatalf("Close: err=%v closed=%v", err, rdb.closed)
	}
}

func TestRedisBusWrapsPublishError(t *testing.T) {
	down := errors.New("connection refused")
	bus := newRedisBus(&fakeRedis{err: down}, "risk-events", logger.Nop())

	err := bus.Publish(context.Background(), Event{Type: TypeRiskScored})
	if !errors.Is(err, down) {
		t.Fatalf("Publish: want wrapped %v got=%v", down, err)
	}
}

func TestNewRedisBusRequiresAddr(t *testing.T) {
	if _, err := New(context.Background(), Config{Backend: BackendRedis}, logger.Nop()); err == nil {
		t.Fatalf("New(redis) without addr: expected error")
	}
}

func TestRedisBusRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis bus tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	channel := "test:risk-events:" + uuid.NewString()

	bus, err := New(ctx, Config{Backend: BackendRedis, RedisAddr: addr, RedisChannel: channel}, logger.Nop())
	if err != nil {
		t.Fatalf("New(redis): %v", err)
	}
	defer bus.Close()

	reader := goredis.NewClient(&goredis.Options{Addr: addr})
	defer reader.Close()
	sub := reader.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	s := risk.DefaultEngine().Assess(risk.Activity{UserID: uuid.New()}, time.Now().UTC())
	ev, err := RiskScored(s)
	if err != nil {
		t.Fatalf("RiskScored: %v", err)
	}
	if err := bus.Publish(ctx, ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case m := <-sub.Channel():
		var got Event
		if err := json.Unmarshal([]byte(m.Payload), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Type != TypeRiskScored || got.UserID != s.UserID {
			t.Fatalf("event: want=%s/%s got=%s/%s", TypeRiskScored, s.UserID, got.Type, got.UserID)
		}
	case <-ctx.Done():
		t.Fatalf("no event received on %s", channel)
	}
}
