package nominatim

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/couchcryptid/stadium-data-etl/internal/domain"
	"github.com/couchcryptid/stadium-data-etl/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory expiring LRU cache.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *expirable.LRU[string, domain.GeocodingResult]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder. A ttl of zero
// keeps entries until they are evicted by size.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   expirable.NewLRU[string, domain.GeocodingResult](maxEntries, nil, ttl),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, term, country string) (domain.GeocodingResult, error) {
	// Keyed by the query the client sends, so equal keys mean equal lookups.
	key := searchQuery(term, country)
	if result, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.ForwardGeocode(ctx, term, country)
	if err != nil {
		return result, err
	}
	// Only matched results are cached so a miss can be retried on the next run.
	if result.Matched {
		c.cache.Add(key, result)
	}
	return result, nil
}

// Len reports the number of cached entries.
func (c *CachedGeocoder) Len() int {
	return c.cache.Len()
}
