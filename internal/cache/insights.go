package cache

import (
	"time"

	"expensetracker/internal/log"
)

// Insights remembers the insight text produced for a given store version.
// A new version means the collection changed, so older entries simply stop
// being asked for and age out.
type Insights struct {
	lru    *LRUCache[uint64, string]
	logger *log.Logger
}

// NewInsights creates an insights cache. size and ttl follow NewLRUCache.
func NewInsights(size int, ttl time.Duration, logger *log.Logger) *Insights {
	if logger == nil {
		logger = log.Nop()
	}
	return &Insights{
		lru:    NewLRUCache[uint64, string](size, ttl),
		logger: logger.WithComponent(log.ComponentCache),
	}
}

// Get returns the cached text for version.
func (c *Insights) Get(version uint64) (string, bool) {
	text, ok := c.lru.Get(version)
	c.logger.Debug("Insights cache lookup", log.FieldVersion, version, "hit", ok)
	return text, ok
}

// Set stores text for version.
func (c *Insights) Set(version uint64, text string) {
	c.lru.Set(version, text)
}

// Invalidate drops the entry for version.
func (c *Insights) Invalidate(version uint64) {
	c.lru.Delete(version)
}

// CleanExpired implements Cleaner.
func (c *Insights) CleanExpired() int {
	return c.lru.CleanExpired()
}

// Size returns the number of cached versions.
func (c *Insights) Size() int {
	return c.lru.Size()
}
