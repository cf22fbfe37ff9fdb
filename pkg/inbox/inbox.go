// Package inbox stores webhook deliveries that passed signature verification.
package inbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("inbox: event not found")
	ErrDuplicate = errors.New("inbox: event already stored")
)

// DefaultListLimit is used when List is called with a non-positive limit.
const DefaultListLimit = 50

// Event is one verified webhook delivery. Body is kept byte for byte as it
// was signed.
type Event struct {
	ID         uuid.UUID `json:"id"`
	RequestID  string    `json:"requestId,omitempty"`
	Body       []byte    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// NewEvent stamps body with a fresh id and the receive time.
func NewEvent(body []byte, requestID string, now time.Time) Event {
	return Event{
		ID:         uuid.New(),
		RequestID:  requestID,
		Body:       body,
		ReceivedAt: now.UTC(),
	}
}

// Store persists events.
type Store interface {
	Save(ctx context.Context, e Event) error
	Get(ctx context.Context, id uuid.UUID) (Event, error)
	// List returns up to limit events, newest first.
	List(ctx context.Context, limit int) ([]Event, error)
}
