package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civix-service/internal/domain"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	sess := &domain.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Put(ctx, sess))

	userID, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, store.Delete(ctx, "sess-1"))

	_, err = store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ExpiredSessionIsGone(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	sess := &domain.Session{
		ID:        "sess-expired",
		UserID:    "user-1",
		IssuedAt:  time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Put(ctx, sess))

	_, err := store.Get(ctx, "sess-expired")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DeleteUnknownIsNoError(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	assert.NoError(t, store.Delete(context.Background(), "never-existed"))
}
