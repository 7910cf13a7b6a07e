package nominatim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/stadium-data-etl/internal/domain"
	"github.com/couchcryptid/stadium-data-etl/internal/observability"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) ForwardGeocode(_ context.Context, _, _ string) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 41.38, Lon: 2.12, DisplayName: "Camp Nou", Matched: true},
	}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, time.Hour, metrics)

	r1, err := cached.ForwardGeocode(context.Background(), "Camp Nou", "Spain")
	require.NoError(t, err)
	assert.Equal(t, "Camp Nou", r1.DisplayName)

	r2, err := cached.ForwardGeocode(context.Background(), "Camp Nou", "Spain")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{Matched: true}}
	cached := NewCachedGeocoder(inner, 10, time.Hour, observability.NewMetricsForTesting())

	_, _ = cached.ForwardGeocode(context.Background(), "Estadio Nacional", "Peru")
	_, _ = cached.ForwardGeocode(context.Background(), "Estadio Nacional", "Chile")

	assert.Equal(t, 2, inner.calls)
}

type echoGeocoder struct{ calls int }

func (m *echoGeocoder) ForwardGeocode(_ context.Context, term, country string) (domain.GeocodingResult, error) {
	m.calls++
	return domain.GeocodingResult{DisplayName: term + "/" + country, Matched: true}, nil
}

func TestCachedGeocoder_SeparatorInTerm(t *testing.T) {
	inner := &echoGeocoder{}
	cached := NewCachedGeocoder(inner, 10, time.Hour, observability.NewMetricsForTesting())

	r1, err := cached.ForwardGeocode(context.Background(), "A|B", "C")
	require.NoError(t, err)
	r2, err := cached.ForwardGeocode(context.Background(), "A", "B|C")
	require.NoError(t, err)

	assert.Equal(t, "A|B/C", r1.DisplayName)
	assert.Equal(t, "A/B|C", r2.DisplayName)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_MissNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, time.Hour, observability.NewMetricsForTesting())

	_, _ = cached.ForwardGeocode(context.Background(), "Nowhere", "XX")
	_, _ = cached.ForwardGeocode(context.Background(), "Nowhere", "XX")

	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, cached.Len())
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("boom")}
	cached := NewCachedGeocoder(inner, 10, time.Hour, observability.NewMetricsForTesting())

	_, err := cached.ForwardGeocode(context.Background(), "Camp Nou", "Spain")
	require.Error(t, err)
	assert.Zero(t, cached.Len())
}

func TestCachedGeocoder_Eviction(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{Matched: true}}
	cached := NewCachedGeocoder(inner, 2, time.Hour, observability.NewMetricsForTesting())

	for _, term := range []string{"a", "b", "c"} {
		_, _ = cached.ForwardGeocode(context.Background(), term, "X")
	}
	assert.Equal(t, 2, cached.Len())

	// "a" was evicted, so it goes back to the inner geocoder.
	_, _ = cached.ForwardGeocode(context.Background(), "a", "X")
	assert.Equal(t, 4, inner.calls)
}

func TestCachedGeocoder_Expiry(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{Matched: true}}
	cached := NewCachedGeocoder(inner, 10, 20*time.Millisecond, observability.NewMetricsForTesting())

	_, _ = cached.ForwardGeocode(context.Background(), "Camp Nou", "Spain")
	assert.Eventually(t, func() bool { return cached.Len() == 0 }, time.Second, 10*time.Millisecond)

	_, _ = cached.ForwardGeocode(context.Background(), "Camp Nou", "Spain")
	assert.Equal(t, 2, inner.calls)
}
