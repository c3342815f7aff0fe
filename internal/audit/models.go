package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event records one verification status transition: which credential type
// was scanned and which status the pipeline reached. Events are append-only.
type Event struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
	IDType string    `json:"id_type"`
	At     time.Time `json:"at"`
}

// Store persists scan events. Recent returns events newest-first, at most
// limit.
type Store interface {
	Append(ctx context.Context, event Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}
