package auth

import (
	"context"
	"time"

	"storefront/internal/cache"
)

const revokedTokenKeyPrefix = "revoked:token:"

// TokenStoreInterface defines the interface for token revocation.
type TokenStoreInterface interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps revoked token ids in Redis until the token would have expired anyway.
type TokenStore struct {
	cache *cache.Client
}

var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// Revoke marks a token id as revoked for ttl.
func (s *TokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsRevoked checks if a token id was revoked. Redis outages fail open.
func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	return s.cache.Exists(ctx, revokedTokenKeyPrefix+tokenID), nil
}
