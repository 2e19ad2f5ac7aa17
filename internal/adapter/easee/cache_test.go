package easee

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
	"github.com/gridleaf/easee-telemetry-etl/internal/observability"
)

// --- mock for cache tests ---

type countingResolver struct {
	calls int
	info  domain.SiteInfo
	err   error
}

func (m *countingResolver) ResolveSite(_ context.Context, _ string) (domain.SiteInfo, error) {
	m.calls++
	return m.info, m.err
}

// --- CachedSiteResolver tests ---

func TestCachedSiteResolver_CacheHit(t *testing.T) {
	inner := &countingResolver{
		info: domain.SiteInfo{SiteID: "42", CircuitID: "8", ChargerName: "Bay 2"},
	}
	cached := NewCachedSiteResolver(inner, 10, observability.NewMetricsForTesting())

	r1, err := cached.ResolveSite(context.Background(), "EH123456")
	require.NoError(t, err)
	assert.Equal(t, "42", r1.SiteID)

	r2, err := cached.ResolveSite(context.Background(), "EH123456")
	require.NoError(t, err)
	assert.Equal(t, "Bay 2", r2.ChargerName)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedSiteResolver_DifferentChargersMiss(t *testing.T) {
	inner := &countingResolver{info: domain.SiteInfo{SiteID: "42"}}
	cached := NewCachedSiteResolver(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ResolveSite(context.Background(), "EH123456")
	_, _ = cached.ResolveSite(context.Background(), "EH789012")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedSiteResolver_ErrorNotCached(t *testing.T) {
	inner := &countingResolver{err: errors.New("api unavailable")}
	cached := NewCachedSiteResolver(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.ResolveSite(context.Background(), "EH123456")
	require.Error(t, err)

	_, err = cached.ResolveSite(context.Background(), "EH123456")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls, "errors should be retried")
}

func TestCachedSiteResolver_EmptySiteNotCached(t *testing.T) {
	inner := &countingResolver{info: domain.SiteInfo{}}
	cached := NewCachedSiteResolver(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ResolveSite(context.Background(), "EH123456")
	_, _ = cached.ResolveSite(context.Background(), "EH123456")

	assert.Equal(t, 2, inner.calls, "unassigned chargers should be retried")
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.SiteInfo{SiteID: "1"})
	c.put("b", domain.SiteInfo{SiteID: "2"})

	info, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", info.SiteID)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.SiteInfo{SiteID: "1"})
	c.put("b", domain.SiteInfo{SiteID: "2"})
	c.put("c", domain.SiteInfo{SiteID: "3"}) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	info, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "2", info.SiteID)

	info, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "3", info.SiteID)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.SiteInfo{SiteID: "1"})
	c.put("b", domain.SiteInfo{SiteID: "2"})

	// Access "a" to promote it
	c.get("a")

	c.put("c", domain.SiteInfo{SiteID: "3"})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.SiteInfo{SiteID: "old"})
	c.put("a", domain.SiteInfo{SiteID: "new"})

	info, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "new", info.SiteID)
}
