package store

import (
	"context"
	"errors"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// Purchases is the persistence boundary for confirmed purchases.
type Purchases interface {
	// Record inserts a purchase. Recording the same session id again is a
	// no-op; the first row wins.
	Record(ctx context.Context, p domain.Purchase) error

	// GetBySessionID returns the purchase for a checkout session, or
	// ErrNotFound.
	GetBySessionID(ctx context.Context, sessionID string) (domain.Purchase, error)

	// Count returns the total number of recorded purchases.
	Count(ctx context.Context) (int64, error)

	// Recent returns up to limit purchases, newest first.
	Recent(ctx context.Context, limit int) ([]domain.Purchase, error)
}

// Store aggregates the repositories behind a single connection.
type Store interface {
	Purchases() Purchases

	// Ping verifies the underlying connection is alive.
	Ping(ctx context.Context) error

	Close() error
}
