// Package events publishes order lifecycle events after a mutation is committed.
package events

import (
	"context"
	"time"
)

// Type names a lifecycle event. It doubles as the AMQP routing key.
type Type string

const (
	OrderPlaced      Type = "order.placed"
	OrderConfirmed   Type = "order.confirmed"
	OrderUnconfirmed Type = "order.unconfirmed"
	PaymentRecorded  Type = "payment.recorded"
	TableClosed      Type = "table.closed"
)

// Event is one committed change to a table.
type Event struct {
	Type       Type      `json:"type"`
	TableID    string    `json:"tableId"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

// New creates an event stamped with the current UTC time.
func New(t Type, tableID string, payload any) Event {
	return Event{
		Type:       t,
		TableID:    tableID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events to interested consumers (kitchen screens, reporting).
// Publishing is best-effort: callers log failures and never roll back the
// committed mutation.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
