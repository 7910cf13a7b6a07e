package pipeline_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/stadium-data-etl/internal/adapter/wikipedia"
	"github.com/couchcryptid/stadium-data-etl/internal/domain"
	"github.com/couchcryptid/stadium-data-etl/internal/handoff"
	"github.com/couchcryptid/stadium-data-etl/internal/pipeline"
)

type tableGeocoder map[string]domain.GeocodingResult

func (g tableGeocoder) ForwardGeocode(_ context.Context, term, country string) (domain.GeocodingResult, error) {
	return g[term+", "+country], nil
}

type memoryWriter struct {
	objects map[string][]byte
}

func (w *memoryWriter) Put(_ context.Context, name string, data []byte) (string, error) {
	key := "data/" + name
	w.objects[key] = data
	return key, nil
}

func TestPipeline_EndToEnd_Fixture(t *testing.T) {
	page, err := os.ReadFile("testdata/stadiums.html")
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}))
	defer srv.Close()

	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 17, 9, 5, 3, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	// Both "Estadio Municipal" rows resolve to the same point on the first
	// pass; the Lima row is repaired by its city lookup.
	santiago := domain.GeocodingResult{Lat: -33.4489, Lon: -70.6693, Matched: true}
	geocoder := tableGeocoder{
		"Rungrado 1st of May Stadium, North Korea": {Lat: 39.0497, Lon: 125.7753, Matched: true},
		"Estadio Municipal, Chile":                 santiago,
		"Estadio Municipal, Lima, Peru":            santiago,
		"Lima, Peru":                               {Lat: -12.0464, Lon: -77.0428, Matched: true},
	}

	metrics := newTestMetrics()
	writer := &memoryWriter{objects: map[string][]byte{}}
	p := pipeline.New(
		pipeline.NewExtractor(wikipedia.NewFetcher(time.Second, "stadium-data-etl/test", discardLogger())),
		pipeline.NewEnricher(geocoder, discardLogger(), metrics),
		pipeline.NewLoader(writer, metrics),
		handoff.NewMemoryStore(),
		srv.URL,
		discardLogger(),
		metrics,
	)

	res, err := p.Run(context.Background(), "fixture", "")
	require.NoError(t, err)
	assert.Equal(t, "data/stadium_cleaned_2024-04-17_09_05_03.csv", res.Object)
	assert.Equal(t, 3, res.Extracted)

	records, err := domain.DecodeCSV(writer.objects[res.Object])
	require.NoError(t, err)

	want := []domain.StadiumRecord{
		{
			Rank:     1,
			Stadium:  "Rungrado 1st of May Stadium",
			Capacity: 114000,
			Region:   "East Asia",
			Country:  "North Korea",
			City:     "Pyongyang",
			Image:    "https://upload.wikimedia.org/wikipedia/commons/thumb/1/1e/Rungrado.jpg/120px-Rungrado.jpg",
			HomeTeam: "North Korea national football team",
			Location: &domain.Location{Lat: 39.0497, Lon: 125.7753},
		},
		{
			Rank:     2,
			Stadium:  "Estadio Municipal",
			Capacity: 80000,
			Region:   "South America",
			Country:  "Chile",
			City:     "Santiago",
			Image:    "https://upload.wikimedia.org/wikipedia/commons/thumb/2/2a/Municipal.jpg/120px-Municipal.jpg",
			HomeTeam: "Universidadde Chile",
			Location: &domain.Location{Lat: -33.4489, Lon: -70.6693},
		},
		{
			Rank:     3,
			Stadium:  "Estadio Municipal, Lima",
			Capacity: 45500,
			Region:   "South America",
			Country:  "Peru",
			City:     "Lima",
			Image:    domain.PlaceholderImageURL,
			HomeTeam: "Sporting Cristal",
			Location: &domain.Location{Lat: -12.0464, Lon: -77.0428},
		},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("written records mismatch (-want +got):\n%s", diff)
	}

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.LocationCollisions), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CollisionsRepaired), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.LocationsUnresolved), 0)
	assert.Greater(t, testutil.ToFloat64(metrics.OutputBytes), 0.0)
}

func TestPipeline_EndToEnd_NoGeocoder(t *testing.T) {
	page, err := os.ReadFile("testdata/stadiums.html")
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(page)
	}))
	defer srv.Close()

	metrics := newTestMetrics()
	writer := &memoryWriter{objects: map[string][]byte{}}
	p := pipeline.New(
		pipeline.NewExtractor(wikipedia.NewFetcher(time.Second, "stadium-data-etl/test", discardLogger())),
		pipeline.NewEnricher(nil, discardLogger(), metrics),
		pipeline.NewLoader(writer, metrics),
		handoff.NewMemoryStore(),
		srv.URL,
		discardLogger(),
		metrics,
	)

	res, err := p.Run(context.Background(), "no-geo", "")
	require.NoError(t, err)

	records, err := domain.DecodeCSV(writer.objects[res.Object])
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Nil(t, r.Location)
	}
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.LocationsUnresolved), 0)
}
