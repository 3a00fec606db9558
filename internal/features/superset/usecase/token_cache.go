package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"superset-embed/internal/features/superset/domain"
)

// CacheKey derives the token cache key for a credential pair
func CacheKey(cfg domain.Config) string {
	sum := sha256.Sum256([]byte(cfg.CacheKeySource()))
	return hex.EncodeToString(sum[:])
}

// TokenCache implements domain.TokenCache in process memory.
// Construct one per process and share it between services.
type TokenCache struct {
	mu      sync.RWMutex
	entries map[string]domain.CachedToken
	now     func() time.Time
}

// NewTokenCache creates an empty token cache
func NewTokenCache() *TokenCache {
	return &TokenCache{
		entries: make(map[string]domain.CachedToken),
		now:     time.Now,
	}
}

var _ domain.TokenCache = (*TokenCache)(nil)

// Get returns the token for key if it has not expired
func (c *TokenCache) Get(key string) (domain.CachedToken, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !entry.Valid(c.now()) {
		return domain.CachedToken{}, false
	}
	return entry, true
}

// Put stores token under key for ttl; a non-positive ttl stores nothing
func (c *TokenCache) Put(key, token string, ttl time.Duration) {
	if ttl <= 0 || token == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = domain.CachedToken{
		Token:     token,
		ExpiresAt: c.now().Add(ttl),
	}
}

// Clear drops every cached token
func (c *TokenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]domain.CachedToken)
}

// Len returns the number of stored entries, expired ones included
func (c *TokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
