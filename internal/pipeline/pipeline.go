// Package pipeline runs one scrape: every registry source is fetched,
// extracted and enriched, then merged with the curated seed, aggregated and
// emitted.
//
// A source that fails contributes zero records; the run itself only fails
// when the artifacts cannot be rendered or written.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/awards-crawler/internal/aggregate"
	"github.com/JakeFAU/awards-crawler/internal/award"
	"github.com/JakeFAU/awards-crawler/internal/emit"
	"github.com/JakeFAU/awards-crawler/internal/enrich"
	"github.com/JakeFAU/awards-crawler/internal/extract"
	"github.com/JakeFAU/awards-crawler/internal/metrics"
	"github.com/JakeFAU/awards-crawler/internal/registry"
)

const tracerName = "github.com/JakeFAU/awards-crawler/internal/pipeline"

// Source outcomes.
const (
	StatusOK     = "ok"
	StatusEmpty  = "empty"
	StatusFailed = "failed"
)

// Config controls Pipeline behavior.
type Config struct {
	// Concurrency bounds how many sources are processed at once. Values
	// below 1 mean sequential.
	Concurrency int
	// Topic receives the run summary when a publisher is configured.
	Topic string
	// MetricsTextfile, when set, receives a Prometheus textfile dump at the
	// end of the run.
	MetricsTextfile string
}

// Summary describes a finished run.
type Summary struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	Sources    int           `json:"sources"`
	Failed     int           `json:"failed"`
	Empty      int           `json:"empty"`
	Scraped    int           `json:"scraped"`
	Seeded     int           `json:"seeded"`
	Final      int           `json:"final"`
	Categories int           `json:"categories"`
	Artifacts  []string      `json:"artifacts"`
}

// Pipeline wires the stages together.
type Pipeline struct {
	registry   registry.Registry
	seed       []award.Record
	fetcher    award.Fetcher
	extractor  *extract.Extractor
	enricher   *enrich.Enricher
	aggregator *aggregate.Aggregator
	emitter    *emit.Emitter
	output     award.BlobStore
	ids        award.IDGenerator
	clock      award.Clock
	publisher  award.Publisher
	snapshots  award.SnapshotStore
	tracer     trace.Tracer
	cfg        Config
	logger     *zap.Logger
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithPublisher publishes the run summary to cfg.Topic.
func WithPublisher(p award.Publisher) Option {
	return func(pl *Pipeline) {
		pl.publisher = p
	}
}

// WithSnapshots stores the final record set under the run id.
func WithSnapshots(s award.SnapshotStore) Option {
	return func(pl *Pipeline) {
		pl.snapshots = s
	}
}

// WithTracerProvider records spans with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(pl *Pipeline) {
		pl.tracer = tp.Tracer(tracerName)
	}
}

// New constructs a Pipeline.
func New(
	reg registry.Registry,
	seed []award.Record,
	fetcher award.Fetcher,
	extractor *extract.Extractor,
	enricher *enrich.Enricher,
	aggregator *aggregate.Aggregator,
	emitter *emit.Emitter,
	output award.BlobStore,
	ids award.IDGenerator,
	clock award.Clock,
	cfg Config,
	logger *zap.Logger,
	opts ...Option,
) (*Pipeline, error) {
	switch {
	case fetcher == nil:
		return nil, errors.New("pipeline: fetcher is required")
	case extractor == nil:
		return nil, errors.New("pipeline: extractor is required")
	case enricher == nil:
		return nil, errors.New("pipeline: enricher is required")
	case aggregator == nil:
		return nil, errors.New("pipeline: aggregator is required")
	case emitter == nil:
		return nil, errors.New("pipeline: emitter is required")
	case output == nil:
		return nil, errors.New("pipeline: output store is required")
	case ids == nil:
		return nil, errors.New("pipeline: id generator is required")
	case clock == nil:
		return nil, errors.New("pipeline: clock is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	metrics.Init()
	p := &Pipeline{
		registry:   reg,
		seed:       seed,
		fetcher:    fetcher,
		extractor:  extractor,
		enricher:   enricher,
		aggregator: aggregator,
		emitter:    emitter,
		output:     output,
		ids:        ids,
		clock:      clock,
		tracer:     otel.Tracer(tracerName),
		cfg:        cfg,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// sourceResult is the atomic outcome of one source.
type sourceResult struct {
	processed  bool
	status     string
	records    []award.Record
	categories []string
}

// Run executes a full scrape. Cancelling ctx stops new sources from being
// scheduled; artifacts are still written from the sources that finished.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	started := p.clock.Now()
	runID, err := p.ids.NewID()
	if err != nil {
		return Summary{}, fmt.Errorf("generate run id: %w", err)
	}
	ctx, span := p.tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()
	logger := p.logger.With(zap.String("run_id", runID))
	logger.Info("scrape started", zap.Int("sources", len(p.registry.Sources)), zap.Int("concurrency", p.cfg.Concurrency))

	results := p.processAll(ctx, logger, true)

	summary := Summary{RunID: runID, StartedAt: started, Seeded: len(p.seed)}
	var scraped []award.Record
	discovered := append([]string(nil), p.registry.Vocabulary...)
	for _, res := range results {
		if !res.processed {
			continue
		}
		summary.Sources++
		switch res.status {
		case StatusFailed:
			summary.Failed++
		case StatusEmpty:
			summary.Empty++
		}
		metrics.ObserveSource(res.status)
		scraped = append(scraped, res.records...)
		discovered = append(discovered, res.categories...)
	}
	summary.Scraped = len(scraped)

	final := p.aggregator.Aggregate(p.seed, scraped)
	summary.Final = len(final)
	categories := append(discovered, aggregate.Categories(final)...)

	metrics.ObserveRecords("scraped", summary.Scraped)
	metrics.ObserveRecords("seeded", summary.Seeded)
	metrics.ObserveRecords("final", summary.Final)

	categories = p.canonical(categories)
	summary.Categories = len(categories)

	span.SetAttributes(
		attribute.Int("run.sources", summary.Sources),
		attribute.Int("run.failed", summary.Failed),
		attribute.Int("run.records", summary.Final),
	)

	artifacts, err := p.emitter.Render(final, categories)
	if err != nil {
		span.SetStatus(codes.Error, "render artifacts")
		return summary, fmt.Errorf("render artifacts: %w", err)
	}

	// Completed work is persisted even when the run was cancelled.
	persistCtx := context.WithoutCancel(ctx)
	uris, err := p.emitter.Write(persistCtx, p.output, artifacts)
	summary.Artifacts = uris
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write artifacts")
		return summary, fmt.Errorf("write artifacts: %w", err)
	}
	if p.snapshots != nil {
		if err := p.snapshots.SaveSnapshot(persistCtx, runID, final); err != nil {
			logger.Error("snapshot save failed", zap.Error(err))
		}
	}

	finished := p.clock.Now()
	summary.Duration = finished.Sub(started)
	metrics.ObserveRun(finished, summary.Duration)
	p.finish(persistCtx, logger, summary)
	return summary, nil
}

// Categories visits every source and writes only the category list: the
// vocabulary, every label discovered on a page and the category of every
// extracted record. Nothing is enriched.
func (p *Pipeline) Categories(ctx context.Context) ([]string, error) {
	results := p.processAll(ctx, p.logger, false)
	categories := append([]string(nil), p.registry.Vocabulary...)
	for _, res := range results {
		categories = append(categories, res.categories...)
		for _, rec := range res.records {
			categories = append(categories, rec.Category)
		}
	}
	categories = p.canonical(categories)
	artifacts, err := p.emitter.RenderCategories(categories)
	if err != nil {
		return nil, err
	}
	if _, err := p.emitter.Write(context.WithoutCancel(ctx), p.output, artifacts); err != nil {
		return nil, fmt.Errorf("write categories: %w", err)
	}
	return categories, nil
}

// processAll runs every source on a bounded pool. Results are stored by
// registry index so the concatenation order never depends on scheduling.
func (p *Pipeline) processAll(ctx context.Context, logger *zap.Logger, enrichRecords bool) []sourceResult {
	results := make([]sourceResult, len(p.registry.Sources))
	workers := pool.New().WithMaxGoroutines(p.cfg.Concurrency)
	for i, src := range p.registry.Sources {
		if ctx.Err() != nil {
			logger.Warn("run cancelled, remaining sources skipped", zap.Int("skipped", len(results)-i))
			break
		}
		workers.Go(func() {
			if ctx.Err() != nil {
				return
			}
			results[i] = p.processSource(ctx, logger, src, enrichRecords)
		})
	}
	workers.Wait()
	return results
}

func (p *Pipeline) processSource(ctx context.Context, logger *zap.Logger, src award.Source, enrichRecords bool) sourceResult {
	ctx, span := p.tracer.Start(ctx, "pipeline.source", trace.WithAttributes(
		attribute.Int("award.year", src.Year),
		attribute.String("award.locator", src.Locator),
	))
	defer span.End()
	logger = logger.With(zap.Int("year", src.Year), zap.String("locator", src.Locator))
	res := sourceResult{processed: true, status: StatusFailed}
	defer func() {
		span.SetAttributes(attribute.String("source.status", res.status), attribute.Int("source.records", len(res.records)))
	}()

	page, err := p.fetcher.Fetch(ctx, src)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		logger.Warn("source skipped", zap.Error(err))
		return res
	}
	span.SetAttributes(attribute.String("fetch.strategy", string(page.Strategy)))
	extracted, err := p.extractor.Extract(page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		logger.Warn("extraction failed", zap.String("strategy", string(page.Strategy)), zap.Error(err))
		return res
	}
	res.categories = extracted.Categories
	if len(extracted.Candidates) == 0 {
		res.status = StatusEmpty
		logger.Info("no records on page",
			zap.String("strategy", string(page.Strategy)),
			zap.NamedError("reason", award.ErrExtractionEmpty),
		)
		return res
	}

	res.status = StatusOK
	res.records = make([]award.Record, 0, len(extracted.Candidates))
	for _, c := range extracted.Candidates {
		if enrichRecords {
			res.records = append(res.records, p.enricher.Enrich(ctx, c, extracted.Doc))
		} else {
			res.records = append(res.records, c.Record.Clone())
		}
	}
	logger.Info("source processed",
		zap.String("strategy", string(page.Strategy)),
		zap.String("extractor", extracted.Strategy),
		zap.Int("records", len(res.records)),
		zap.Int("categories", len(res.categories)),
	)
	return res
}

// canonical normalizes category labels with the aggregate rules and returns
// them sorted and distinct, dropping anything that is not a category.
func (p *Pipeline) canonical(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		c := p.aggregator.Label(l)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (p *Pipeline) finish(ctx context.Context, logger *zap.Logger, summary Summary) {
	logger.Info("scrape finished",
		zap.Int("sources", summary.Sources),
		zap.Int("failed", summary.Failed),
		zap.Int("empty", summary.Empty),
		zap.Int("scraped", summary.Scraped),
		zap.Int("seeded", summary.Seeded),
		zap.Int("final", summary.Final),
		zap.Int("categories", summary.Categories),
		zap.Duration("duration", summary.Duration),
	)
	if p.publisher != nil && p.cfg.Topic != "" {
		if id, err := p.publisher.Publish(ctx, p.cfg.Topic, summary); err != nil {
			logger.Error("summary publish failed", zap.String("topic", p.cfg.Topic), zap.Error(err))
		} else {
			logger.Debug("summary published", zap.String("topic", p.cfg.Topic), zap.String("message_id", id))
		}
	}
	if p.cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(p.cfg.MetricsTextfile); err != nil {
			logger.Warn("metrics textfile not written", zap.Error(err))
		}
	}
}
