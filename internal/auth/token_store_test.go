package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cache"
)

func TestTokenStore_WithoutRedisFailsOpen(t *testing.T) {
	store := NewTokenStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenStore_UnreachableRedisFailsOpen(t *testing.T) {
	// Nothing listens on port 1.
	store := NewTokenStore(cache.New("127.0.0.1:1", "", 0))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenStore_IgnoresEmptyIDs(t *testing.T) {
	store := NewTokenStore(nil)

	assert.NoError(t, store.Revoke(context.Background(), "", time.Minute))
	assert.NoError(t, store.Revoke(context.Background(), "jti", 0))

	revoked, err := store.IsRevoked(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, revoked)
}
