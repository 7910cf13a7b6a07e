//go:build nominatim

package nominatim

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/stadium-data-etl/internal/observability"
)

// These tests hit the public Nominatim instance, throttled to one lookup per second.
// Run with: go test -tags=nominatim ./internal/adapter/nominatim/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(Options{
		UserAgent: "stadiums-de",
		Timeout:   10 * time.Second,
		RateLimit: 1,
	}, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_ForwardGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ForwardGeocode(context.Background(), "Wembley Stadium", "England")
	require.NoError(t, err)

	assert.True(t, result.Matched)
	assert.InDelta(t, 51.556, result.Lat, 0.05, "lat should be near Wembley")
	assert.InDelta(t, -0.279, result.Lon, 0.05, "lon should be near Wembley")
	assert.Contains(t, result.DisplayName, "Wembley")
}

func TestSmoke_ForwardGeocode_NoMatch(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ForwardGeocode(context.Background(), "XYZNONEXISTENT99", "ZZ")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedGeocoder(c, 10, time.Hour, observability.NewMetricsForTesting())

	r1, err := cached.ForwardGeocode(context.Background(), "Camp Nou", "Spain")
	require.NoError(t, err)
	require.True(t, r1.Matched)

	r2, err := cached.ForwardGeocode(context.Background(), "Camp Nou", "Spain")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
