package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/blockedby/dosimetria-portal/internal/logger"
)

// ErrNoElevatedHandle is returned when the service-role DSN was not configured.
var ErrNoElevatedHandle = errors.New("elevated store handle not configured")

// Handles are two capability-scoped connections to the same store.
//
// The normal handle connects as the anon/authenticated role and is subject to
// row level security. The elevated handle connects as the service role and
// bypasses it. Call sites ask for the elevated handle explicitly and name the
// reason, so every privileged path shows up in the debug log.
type Handles struct {
	normal   *DB
	elevated *DB
	log      *logger.Logger
}

// NewHandles wraps already opened connections. elevated may be nil.
func NewHandles(normal, elevated *DB, log *logger.Logger) *Handles {
	if log == nil {
		log = logger.Get()
	}
	return &Handles{normal: normal, elevated: elevated, log: log}
}

// Open connects both handles. The elevated DSN is required.
func Open(ctx context.Context, normalURL, elevatedURL string, log *logger.Logger) (*Handles, error) {
	if elevatedURL == "" {
		return nil, ErrNoElevatedHandle
	}

	normal, err := New(ctx, normalURL)
	if err != nil {
		return nil, fmt.Errorf("open normal handle: %w", err)
	}

	elevated, err := New(ctx, elevatedURL)
	if err != nil {
		normal.Close()
		return nil, fmt.Errorf("open elevated handle: %w", err)
	}

	return NewHandles(normal, elevated, log), nil
}

// Normal returns the caller-identity handle.
func (h *Handles) Normal() *DB {
	return h.normal
}

// Elevated returns the service-role handle. reason must say why row level
// security has to be bypassed on this path.
func (h *Handles) Elevated(reason string) *DB {
	if h.elevated == nil {
		return nil
	}
	h.log.Debug().Str("reason", reason).Msg("using elevated store handle")
	return h.elevated
}

// Close closes both handles.
func (h *Handles) Close() {
	h.normal.Close()
	h.elevated.Close()
}
