package auth

import (
	"context"
	"time"

	"phonebook/internal/cache"
)

const blacklistKeyPrefix = "blacklist:session:"

// TokenStoreInterface defines the blacklist operations used by logout and
// the auth gateway.
type TokenStoreInterface interface {
	BlacklistSessionToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsSessionTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps logged-out session tokens blacklisted in Redis until
// their natural expiry. The authoritative revocation is the cleared
// session_token column; this store just lets the gateway reject a stale
// token without touching the database. It inherits the cache's fail-safe
// behaviour: with Redis down, logout still succeeds and the gateway falls
// through to the store-equality check.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// BlacklistSessionToken marks a token id revoked for its remaining lifetime.
func (s *TokenStore) BlacklistSessionToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, blacklistKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsSessionTokenBlacklisted checks if a token id was revoked by logout.
func (s *TokenStore) IsSessionTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, blacklistKeyPrefix+tokenID)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}
