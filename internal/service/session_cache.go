package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kitchenkin/recipes/backend/internal/observability"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

// DefaultSessionCacheTTL is how long a resolved session stays cached
const DefaultSessionCacheTTL = 30 * time.Minute

// SessionCache keeps resolved session identities in Redis so most
// authenticated requests skip the database. Failures are logged and treated
// as misses.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionCacheTTL
	}
	return &SessionCache{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Get returns the cached identity for a session token
func (c *SessionCache) Get(ctx context.Context, token string) (*types.Identity, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[SessionCache] Failed to read session: %v", err)
		}
		observability.SessionCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	var identity types.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		log.Printf("[SessionCache] Dropping malformed session entry: %v", err)
		c.Delete(ctx, token)
		observability.SessionCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	observability.SessionCacheLookups.WithLabelValues("hit").Inc()
	return &identity, true
}

// Set caches identity for the session, never beyond expiresAt
func (c *SessionCache) Set(ctx context.Context, token string, identity *types.Identity, expiresAt time.Time) {
	if c == nil || c.client == nil {
		return
	}
	ttl := c.ttl
	if remaining := time.Until(expiresAt); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(identity)
	if err != nil {
		log.Printf("[SessionCache] Failed to marshal identity: %v", err)
		return
	}
	if err := c.client.Set(ctx, sessionKey(token), data, ttl).Err(); err != nil {
		log.Printf("[SessionCache] Failed to cache session: %v", err)
	}
}

// Delete evicts a session token
func (c *SessionCache) Delete(ctx context.Context, token string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		log.Printf("[SessionCache] Failed to evict session: %v", err)
	}
}
