// Package notify publishes lifecycle events for evaluation requests so
// downstream consumers (push notifications, activity feeds) can react without
// coupling to the evaluation service.
package notify

import (
	"context"
	"sync"
	"time"

	id "peakform/pkg/domain"
)

// EventType identifies what happened to an evaluation request.
type EventType string

const (
	EventStatRequested EventType = "STAT_UPDATE_REQUEST"
	EventStatApproved  EventType = "STAT_UPDATE_APPROVED"
	EventStatDenied    EventType = "STAT_UPDATE_DENIED"
)

// Event is the payload published for each lifecycle transition. Recipient is
// the user the notification is addressed to, Actor the user whose action
// triggered it.
type Event struct {
	Type         EventType         `json:"type"`
	EvaluationID id.EvaluationID   `json:"evaluation_id"`
	Recipient    id.UserID         `json:"recipient"`
	Actor        id.UserID         `json:"actor"`
	Title        string            `json:"title"`
	Message      string            `json:"message"`
	Data         map[string]string `json:"data,omitempty"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

// Emitter publishes events. Implementations must not block the caller's
// request path on broker availability.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) {}

// InMemoryEmitter records events for inspection in tests.
type InMemoryEmitter struct {
	mu     sync.Mutex
	events []Event
}

func NewInMemoryEmitter() *InMemoryEmitter {
	return &InMemoryEmitter{}
}

func (e *InMemoryEmitter) Emit(_ context.Context, event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

// Events returns a copy of everything emitted so far.
func (e *InMemoryEmitter) Events() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}
