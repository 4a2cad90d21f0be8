package permissions

import (
	"time"

	"brandops/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is the process-wide, time-bounded permission record cache. Entries
// expire after a fixed TTL independent of explicit invalidation, bounding
// staleness after an out-of-band permission change. Memory only; a miss
// simply triggers a store read, never an error.
type Cache struct {
	lru *expirable.LRU[string, *models.UserPermission]
}

func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 4096
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		lru: expirable.NewLRU[string, *models.UserPermission](size, nil, ttl),
	}
}

func (c *Cache) Get(userID string) (*models.UserPermission, bool) {
	return c.lru.Get(userID)
}

func (c *Cache) Set(userID string, record *models.UserPermission) {
	c.lru.Add(userID, record)
}

func (c *Cache) Invalidate(userID string) {
	c.lru.Remove(userID)
}

func (c *Cache) Clear() {
	c.lru.Purge()
}
