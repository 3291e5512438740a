package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fitclub/internal/logger"
	"fitclub/internal/metrics"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		topic: topic,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evs ...Event) error {
	msgs := make([]kafka.Message, 0, len(evs))
	for _, ev := range evs {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", ev.Type, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(ev.Key),
			Value: payload,
			Time:  ev.OccurredAt,
			Headers: []kafka.Header{
				{Key: "event-type", Value: []byte(ev.Type)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		for _, ev := range evs {
			metrics.RecordEvent(string(ev.Type), "error")
		}
		logger.Error("failed to publish events", "topic", p.topic, "count", len(evs), "error", err)
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	for _, ev := range evs {
		metrics.RecordEvent(string(ev.Type), "ok")
	}
	logger.Debug("events published", "topic", p.topic, "count", len(evs))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
