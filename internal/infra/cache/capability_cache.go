package cache

import (
	"context"
	"sync"
	"time"

	"authz-service/pkg/rbac"
)

type capabilityEntry struct {
	caps       rbac.Capabilities
	expiryTime time.Time
}

// CapabilityCache is an rbac.CapabilityCache whose entries expire after a
// fixed TTL. The engine clears it whenever the grant table changes; the TTL
// only bounds how long an entry for a role nobody asks about lingers.
type CapabilityCache struct {
	ttl   time.Duration
	now   func() time.Time
	cache map[string]capabilityEntry
	mutex sync.RWMutex
}

var _ rbac.CapabilityCache = (*CapabilityCache)(nil)

func NewCapabilityCache(ttl time.Duration) *CapabilityCache {
	return &CapabilityCache{
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]capabilityEntry),
	}
}

// Get returns the cached capabilities for key if they have not expired.
func (c *CapabilityCache) Get(key string) (rbac.Capabilities, bool) {
	c.mutex.RLock()
	entry, found := c.cache[key]
	c.mutex.RUnlock()

	if found && c.now().Before(entry.expiryTime) {
		return entry.caps, true
	}

	return rbac.Capabilities{}, false
}

func (c *CapabilityCache) Set(key string, caps rbac.Capabilities) {
	c.mutex.Lock()
	c.cache[key] = capabilityEntry{
		caps:       caps,
		expiryTime: c.now().Add(c.ttl),
	}
	c.mutex.Unlock()
}

// Clear drops every entry.
func (c *CapabilityCache) Clear() {
	c.mutex.Lock()
	c.cache = make(map[string]capabilityEntry)
	c.mutex.Unlock()
}

// Prune removes expired entries and returns how many were removed.
func (c *CapabilityCache) Prune() int {
	now := c.now()
	removed := 0

	c.mutex.Lock()
	for key, entry := range c.cache {
		if now.After(entry.expiryTime) {
			delete(c.cache, key)
			removed++
		}
	}
	c.mutex.Unlock()

	return removed
}

func (c *CapabilityCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}

// RunPruner calls Prune every interval until ctx is done.
func (c *CapabilityCache) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Prune()
		}
	}
}
