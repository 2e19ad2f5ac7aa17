package easee

import (
	"context"
	"sync"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
	"github.com/gridleaf/easee-telemetry-etl/internal/observability"
)

// CachedSiteResolver wraps a SiteResolver with an in-memory LRU cache.
// Charger-to-site assignments change rarely, so cached entries are kept
// until evicted by capacity pressure.
type CachedSiteResolver struct {
	inner   domain.SiteResolver
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSiteResolver creates a cache decorator around a site resolver.
func NewCachedSiteResolver(inner domain.SiteResolver, maxEntries int, metrics *observability.Metrics) *CachedSiteResolver {
	return &CachedSiteResolver{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSiteResolver) ResolveSite(ctx context.Context, chargerID string) (domain.SiteInfo, error) {
	if info, ok := c.cache.get(chargerID); ok {
		c.metrics.SiteLookups.WithLabelValues("success", "hit").Inc()
		return info, nil
	}
	info, err := c.inner.ResolveSite(ctx, chargerID)
	if err != nil {
		c.metrics.SiteLookups.WithLabelValues("error", "miss").Inc()
		return info, err
	}
	c.metrics.SiteLookups.WithLabelValues("success", "miss").Inc()
	// Only cache populated results so a charger that has not been assigned
	// to a site yet can be retried.
	if info.SiteID != "" {
		c.cache.put(chargerID, info)
	}
	return info, nil
}

// lruCache is a simple thread-safe LRU cache for SiteInfo values.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.SiteInfo
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.SiteInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.SiteInfo{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.SiteInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
