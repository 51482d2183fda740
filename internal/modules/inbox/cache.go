package inbox

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"studiobook/internal/domain"
)

// NameCache resolves display names for inbox items. It is scoped to one
// viewer: switching the viewer's role (or an explicit Refresh) evicts the
// local map, so names never leak across sessions or accumulate unbounded.
// A redis client, when configured, backs the local map as a shared second
// layer; without one the cache is purely in-process.
type NameCache struct {
	mu    sync.Mutex
	rdb   *redis.Client
	ttl   time.Duration
	role  domain.Role
	names map[string]string
}

func NewNameCache(rdb *redis.Client, ttl time.Duration) *NameCache {
	return &NameCache{
		rdb:   rdb,
		ttl:   ttl,
		names: make(map[string]string),
	}
}

// Scope pins the cache to a viewer role, evicting everything cached under a
// different one.
func (c *NameCache) Scope(role domain.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role != role {
		c.role = role
		c.names = make(map[string]string)
	}
}

// Refresh clears the local layer. Redis entries expire on their own TTL.
func (c *NameCache) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = make(map[string]string)
}

func (c *NameCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.Lock()
	if name, ok := c.names[key]; ok {
		c.mu.Unlock()
		return name, true
	}
	c.mu.Unlock()

	if c.rdb == nil {
		return "", false
	}
	name, err := c.rdb.Get(ctx, "name:"+key).Result()
	if err != nil {
		return "", false
	}
	c.mu.Lock()
	c.names[key] = name
	c.mu.Unlock()
	return name, true
}

func (c *NameCache) Put(ctx context.Context, key, name string) {
	c.mu.Lock()
	c.names[key] = name
	c.mu.Unlock()

	if c.rdb != nil {
		c.rdb.Set(ctx, "name:"+key, name, c.ttl)
	}
}
