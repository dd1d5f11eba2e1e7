package session

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/civix-service/internal/domain"
)

// ErrNotFound indicates the session id is unknown, expired or revoked.
var ErrNotFound = errors.New("session not found")

// Store is the server-side registry of live sessions. A JWT whose jti is
// absent from the store is treated as revoked regardless of its expiry.
type Store interface {
	// Put registers a session until its expiry.
	Put(ctx context.Context, s *domain.Session) error
	// Get returns the user id bound to the session, or ErrNotFound.
	Get(ctx context.Context, id string) (string, error)
	// Delete revokes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

func ttlUntil(expiresAt time.Time) time.Duration {
	return time.Until(expiresAt)
}
