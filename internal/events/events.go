// Package events publishes booking lifecycle events to Kafka.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	ClassCreated         Type = "class.created"
	ClassRescheduled     Type = "class.rescheduled"
	ClassCancelled       Type = "class.cancelled"
	SessionScheduled     Type = "session.scheduled"
	SessionStatusChanged Type = "session.status_changed"
	EnrollmentCreated    Type = "enrollment.created"
)

type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// New stamps an event with a fresh id. key picks the partition, so events
// about the same booking stay ordered.
func New(t Type, key string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, ...Event) error { return nil }
