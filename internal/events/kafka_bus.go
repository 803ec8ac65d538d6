package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
)

type KafkaBus struct {
	writer messageWriter
	topic  string
	log    *logger.Logger
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaBus(brokers []string, topic string, log *logger.Logger) (*KafkaBus, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("missing KAFKA_BROKERS")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "risk-events"
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
	}
	return newKafkaBus(w, topic, log), nil
}

func newKafkaBus(w messageWriter, topic string, log *logger.Logger) *KafkaBus {
	return &KafkaBus{
		writer: w,
		topic:  topic,
		log:    log.With("service", "KafkaEventBus"),
	}
}

// Publish keys messages by learner so one learner's events stay ordered within a partition.
func (b *KafkaBus) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	b.log.Debug("publishing event to kafka", "topic", b.topic, "type", ev.Type, "event_size", len(raw))
	msg := kafka.Message{
		Key:   []byte(ev.UserID.String()),
		Value: raw,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "event-id", Value: []byte(ev.ID.String())},
		},
	}
	return b.writer.WriteMessages(ctx, msg)
}

func (b *KafkaBus) Close() error { return b.writer.Close() }
