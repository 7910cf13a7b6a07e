package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/couchcryptid/stadium-data-etl/internal/adapter/blob"
	"github.com/couchcryptid/stadium-data-etl/internal/adapter/nominatim"
	"github.com/couchcryptid/stadium-data-etl/internal/adapter/wikipedia"
	"github.com/couchcryptid/stadium-data-etl/internal/domain"
	"github.com/couchcryptid/stadium-data-etl/internal/handoff"
	"github.com/couchcryptid/stadium-data-etl/internal/observability"
	"github.com/couchcryptid/stadium-data-etl/internal/pipeline"
)

// pipelineEnv holds the wired pipeline and the resources it owns.
type pipelineEnv struct {
	Pipeline *pipeline.Pipeline
	Metrics  *observability.Metrics
	Store    handoff.Store
}

func (e *pipelineEnv) Close() {
	if err := e.Store.Close(); err != nil {
		logger.Error("handoff store close error", "error", err)
	}
}

func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	metrics := observability.NewMetrics()

	store, err := handoff.Open(ctx, cfg.HandoffDriver, cfg.HandoffPath)
	if err != nil {
		return nil, eris.Wrap(err, "open handoff store")
	}

	// Initialize geocoder (feature-flagged via GEOCODING_ENABLED).
	var geocoder domain.Geocoder
	if cfg.GeocodingEnabled {
		client := nominatim.NewClient(nominatim.Options{
			BaseURL:   cfg.NominatimURL,
			UserAgent: cfg.NominatimUserAgent,
			Timeout:   cfg.NominatimTimeout,
			RateLimit: cfg.NominatimRateLimit,
		}, metrics, logger)
		geocoder = nominatim.NewCachedGeocoder(client, cfg.NominatimCacheSize, cfg.NominatimCacheTTL, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("nominatim geocoding enabled",
			"url", cfg.NominatimURL,
			"cache_size", cfg.NominatimCacheSize,
			"timeout", cfg.NominatimTimeout,
			"rate_limit", cfg.NominatimRateLimit,
		)
	} else {
		logger.Info("geocoding disabled")
	}

	writer, err := blob.NewWriter(blob.Options{
		Endpoint:   cfg.BlobEndpoint,
		Account:    cfg.BlobAccount,
		AccountKey: cfg.AccountKey,
		Container:  cfg.BlobContainer,
		Prefix:     cfg.BlobPrefix,
		UseSSL:     cfg.BlobUseSSL,
	}, logger)
	if err != nil {
		_ = store.Close()
		return nil, eris.Wrap(err, "create blob writer")
	}

	fetcher := wikipedia.NewFetcher(cfg.FetchTimeout, cfg.FetchUserAgent, logger)
	p := pipeline.New(
		pipeline.NewExtractor(fetcher),
		pipeline.NewEnricher(geocoder, logger, metrics),
		pipeline.NewLoader(writer, metrics),
		store,
		cfg.SourceURL,
		logger,
		metrics,
	)

	return &pipelineEnv{Pipeline: p, Metrics: metrics, Store: store}, nil
}

// resolveRunID prefers the flag, then RUN_ID.
func resolveRunID(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cfg != nil && cfg.RunID != "" {
		return cfg.RunID, nil
	}
	return "", eris.New("a run id is required (--run-id or RUN_ID)")
}
