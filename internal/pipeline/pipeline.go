package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/rotisserie/eris"

	"github.com/couchcryptid/stadium-data-etl/internal/domain"
	"github.com/couchcryptid/stadium-data-etl/internal/handoff"
	"github.com/couchcryptid/stadium-data-etl/internal/observability"
)

// Task ids address each stage's output in the handoff store.
const (
	TaskExtract   = "extract_data_from_wikipedia"
	TaskTransform = "transform_wikipedia_data"
	TaskLoad      = "write_wikipedia_data"

	KeyRows   = "rows"
	KeyObject = "object"
)

// Stage names, used as log and metric labels.
const (
	StageExtract   = "extract"
	StageTransform = "transform"
	StageLoad      = "load"
)

// Extractor produces the raw rows of the stadium table at url.
type Extractor interface {
	Extract(ctx context.Context, url string) ([]domain.RawStadium, error)
}

// Enricher turns raw rows into finalized records.
type Enricher interface {
	Enrich(ctx context.Context, rows []domain.RawStadium) ([]domain.StadiumRecord, error)
}

// Loader persists finalized records and returns the object key written.
type Loader interface {
	Load(ctx context.Context, records []domain.StadiumRecord) (string, error)
}

// Result summarizes a complete run.
type Result struct {
	RunID     string
	Extracted int
	Enriched  int
	Object    string
}

// Pipeline sequences extract, transform and load. Each stage reads the
// previous stage's batch from the handoff store and pushes its own, so the
// stages can also run as separate processes sharing a store.
type Pipeline struct {
	extractor Extractor
	enricher  Enricher
	loader    Loader
	store     handoff.Store
	logger    *slog.Logger
	metrics   *observability.Metrics
	sourceURL string
}

// New creates a Pipeline with the given stages and observability. sourceURL
// is used when a run does not name a page.
func New(e Extractor, t Enricher, l Loader, store handoff.Store, sourceURL string, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		enricher:  t,
		loader:    l,
		store:     store,
		logger:    logger,
		metrics:   metrics,
		sourceURL: sourceURL,
	}
}

// pinger is implemented by stages backed by a remote service.
type pinger interface {
	Ping(ctx context.Context) error
}

// CheckReadiness reports whether the handoff store and, when the loader can
// tell, the output container are reachable.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	if err := p.store.Ping(ctx); err != nil {
		return eris.Wrap(err, "handoff store unreachable")
	}
	if lp, ok := p.loader.(pinger); ok {
		if err := lp.Ping(ctx); err != nil {
			return eris.Wrap(err, "output container unreachable")
		}
	}
	return nil
}

// RunExtract fetches and parses the page and pushes the raw rows.
// An empty url means the configured source.
func (p *Pipeline) RunExtract(ctx context.Context, runID, url string) (int, error) {
	if url == "" {
		url = p.sourceURL
	}
	var n int
	err := p.stage(StageExtract, runID, func() (int, error) {
		rows, err := p.extractor.Extract(ctx, url)
		if err != nil {
			return 0, err
		}
		n = len(rows)
		return n, p.push(ctx, runID, TaskExtract, KeyRows, rows)
	})
	return n, err
}

// RunTransform pulls the raw rows of runID, enriches them and pushes the
// finalized records.
func (p *Pipeline) RunTransform(ctx context.Context, runID string) (int, error) {
	var n int
	err := p.stage(StageTransform, runID, func() (int, error) {
		var rows []domain.RawStadium
		if err := p.pull(ctx, runID, TaskExtract, KeyRows, &rows); err != nil {
			return 0, err
		}
		records, err := p.enricher.Enrich(ctx, rows)
		if err != nil {
			return 0, err
		}
		n = len(records)
		return n, p.push(ctx, runID, TaskTransform, KeyRows, records)
	})
	return n, err
}

// RunLoad pulls the finalized records of runID and writes the output file.
// It returns the object key.
func (p *Pipeline) RunLoad(ctx context.Context, runID string) (string, error) {
	var key string
	err := p.stage(StageLoad, runID, func() (int, error) {
		var records []domain.StadiumRecord
		if err := p.pull(ctx, runID, TaskTransform, KeyRows, &records); err != nil {
			return 0, err
		}
		var err error
		key, err = p.loader.Load(ctx, records)
		if err != nil {
			return 0, err
		}
		return len(records), p.push(ctx, runID, TaskLoad, KeyObject, key)
	})
	return key, err
}

// Run executes all three stages for runID. The first failing stage stops the
// run; later stages do not execute.
func (p *Pipeline) Run(ctx context.Context, runID, url string) (Result, error) {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	start := time.Now()
	p.logger.Info("pipeline started", "run_id", runID)

	res := Result{RunID: runID}
	var err error
	if res.Extracted, err = p.RunExtract(ctx, runID, url); err != nil {
		return res, err
	}
	if res.Enriched, err = p.RunTransform(ctx, runID); err != nil {
		return res, err
	}
	if res.Object, err = p.RunLoad(ctx, runID); err != nil {
		return res, err
	}

	p.logger.Info("pipeline finished",
		"run_id", runID,
		"records", res.Enriched,
		"object", res.Object,
		"duration", time.Since(start),
	)
	return res, nil
}

// stage runs fn with logging and metrics. fn returns the number of records
// the stage emitted.
func (p *Pipeline) stage(name, runID string, fn func() (int, error)) error {
	start := time.Now()
	p.logger.Info("stage started", "stage", name, "run_id", runID)

	n, err := fn()
	elapsed := time.Since(start)
	p.metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	if err != nil {
		p.metrics.StageRuns.WithLabelValues(name, "error").Inc()
		p.logger.Error("stage failed", "stage", name, "run_id", runID, "error", err, "duration", elapsed)
		return eris.Wrapf(err, "%s", name)
	}

	p.metrics.StageRuns.WithLabelValues(name, "success").Inc()
	p.metrics.RecordsProcessed.WithLabelValues(name).Add(float64(n))
	p.logger.Info("stage complete", "stage", name, "run_id", runID, "records", n, "duration", elapsed)
	return nil
}

func (p *Pipeline) push(ctx context.Context, runID, taskID, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "encode %s/%s", taskID, key)
	}
	return p.store.Push(ctx, runID, taskID, key, data)
}

func (p *Pipeline) pull(ctx context.Context, runID, taskID, key string, v any) error {
	data, err := p.store.Pull(ctx, runID, taskID, key)
	if errors.Is(err, handoff.ErrNotFound) {
		return eris.Wrapf(err, "no %s output for run %s", taskID, runID)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "decode %s/%s", taskID, key)
	}
	return nil
}
