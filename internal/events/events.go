// Package events publishes document lifecycle events once the change is committed.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	QuoteConverted   = "quote.converted"
	InvoiceCreated   = "invoice.created"
	InvoicePaid      = "invoice.paid"
	InvoiceCancelled = "invoice.cancelled"
)

// Event is the message body sent to the broker.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	DocumentID uint      `json:"document_id"`
	Number     string    `json:"number"`
	Data       any       `json:"data,omitempty"`
}

// New builds an event with a fresh id.
func New(typ string, documentID uint, number string, at time.Time, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: at,
		DocumentID: documentID,
		Number:     number,
		Data:       data,
	}
}

// Publisher delivers events. Failures never undo the committed change.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
