package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/stadium-data-etl/internal/domain"
	"github.com/couchcryptid/stadium-data-etl/internal/observability"
)

// StadiumEnricher implements Enricher using the domain enrichment rules with
// optional geocoding.
type StadiumEnricher struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewEnricher creates a StadiumEnricher. Pass a nil geocoder to disable
// geocoding; locations are then left absent.
func NewEnricher(geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *StadiumEnricher {
	return &StadiumEnricher{
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

func (t *StadiumEnricher) Enrich(ctx context.Context, rows []domain.RawStadium) ([]domain.StadiumRecord, error) {
	records, stats, err := domain.EnrichStadiums(ctx, rows, t.geocoder, t.logger)
	if err != nil {
		return nil, err
	}

	t.metrics.LocationCollisions.Add(float64(stats.Collisions))
	t.metrics.CollisionsRepaired.Add(float64(stats.Repaired))
	t.metrics.LocationsUnresolved.Add(float64(len(records) - stats.Matched))

	t.logger.Info("enrichment complete",
		"records", len(records),
		"matched", stats.Matched,
		"misses", stats.Misses,
		"failures", stats.Failures,
		"collisions", stats.Collisions,
		"repaired", stats.Repaired,
	)
	return records, nil
}
