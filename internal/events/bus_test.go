package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
	"github.com/yungbote/neurobridge-risk/internal/risk"
)

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaBusKeysByLearner(t *testing.T) {
	w := &fakeWriter{}
	bus := newKafkaBus(w, "risk-events", logger.Nop())

	now := time.Now().UTC()
	s := risk.DefaultEngine().Assess(risk.Activity{UserID: uuid.New()}, now)
	ev, err := RiskScored(s)
	if err != nil {
		t.Fatalf("RiskScored: %v", err)
	}
	if err := bus.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages: want=1 got=%d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != s.UserID.String() {
		t.Fatalf("key: want=%s got=%s", s.UserID, msg.Key)
	}
	if msg.Headers[0].Key != "event-type" || string(msg.Headers[0].Value) != TypeRiskScored {
		t.Fatalf("headers: got=%+v", msg.Headers)
	}

	var decoded Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var payload risk.Score
	if err := json.Unmarshal(decoded.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.UserID != s.UserID || payload.Level != s.Level {
		t.Fatalf("payload: want=%s/%s got=%s/%s", s.UserID, s.Level, payload.UserID, payload.Level)
	}

	if err := bus.Close(); err != nil || !w.closed {
		t.Fatalf("Close: err=%v closed=%v", err, w.closed)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	b, err := New(context.Background(), Config{Backend: ""}, logger.Nop())
	if err != nil {
		t.Fatalf("New(none): %v", err)
	}
	if _, ok := b.(NopBus); !ok {
		t.Fatalf("New(none): want NopBus got %T", b)
	}
	if _, err := New(context.Background(), Config{Backend: "carrier-pigeon"}, logger.Nop()); err == nil {
		t.Fatalf("New(unknown): expected error")
	}
	if _, err := New(context.Background(), Config{Backend: BackendKafka}, logger.Nop()); err == nil {
		t.Fatalf("New(kafka) without brokers: expected error")
	}
}

func TestInterventionUpdatedPayload(t *testing.T) {
	id, user := uuid.New(), uuid.New()
	ev, err := InterventionUpdated(id, user, "outcome", "acknowledged", time.Now())
	if err != nil {
		t.Fatalf("InterventionUpdated: %v", err)
	}
	var body map[string]string
	if err := json.Unmarshal(ev.Payload, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["interventionId"] != id.String() || body["outcome"] != "acknowledged" || ev.UserID != user {
		t.Fatalf("payload: got=%v", body)
	}
}
