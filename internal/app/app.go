// Package app builds the long-lived services a command needs from the loaded
// configuration and owns their shutdown.
package app

import (
	"context"
	"fmt"
	"time"

	gcsstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/awards-crawler/internal/aggregate"
	"github.com/JakeFAU/awards-crawler/internal/analysis"
	geminigen "github.com/JakeFAU/awards-crawler/internal/analysis/gemini"
	openaigen "github.com/JakeFAU/awards-crawler/internal/analysis/openai"
	"github.com/JakeFAU/awards-crawler/internal/api"
	"github.com/JakeFAU/awards-crawler/internal/award"
	memorycache "github.com/JakeFAU/awards-crawler/internal/cache/memory"
	rediscache "github.com/JakeFAU/awards-crawler/internal/cache/redis"
	"github.com/JakeFAU/awards-crawler/internal/clock/system"
	"github.com/JakeFAU/awards-crawler/internal/config"
	"github.com/JakeFAU/awards-crawler/internal/emit"
	"github.com/JakeFAU/awards-crawler/internal/enrich"
	"github.com/JakeFAU/awards-crawler/internal/extract"
	collyfetcher "github.com/JakeFAU/awards-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/awards-crawler/internal/fetcher/fallback"
	"github.com/JakeFAU/awards-crawler/internal/fetcher/headless"
	"github.com/JakeFAU/awards-crawler/internal/hash/sha256"
	"github.com/JakeFAU/awards-crawler/internal/headless/detector"
	"github.com/JakeFAU/awards-crawler/internal/id/uuid"
	"github.com/JakeFAU/awards-crawler/internal/metrics"
	"github.com/JakeFAU/awards-crawler/internal/normalize"
	"github.com/JakeFAU/awards-crawler/internal/pipeline"
	"github.com/JakeFAU/awards-crawler/internal/policy/ratelimit"
	pubsubpublisher "github.com/JakeFAU/awards-crawler/internal/publisher/pubsub"
	"github.com/JakeFAU/awards-crawler/internal/registry"
	"github.com/JakeFAU/awards-crawler/internal/storage/gcs"
	"github.com/JakeFAU/awards-crawler/internal/storage/local"
	"github.com/JakeFAU/awards-crawler/internal/storage/postgres"
	"github.com/JakeFAU/awards-crawler/internal/telemetry"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// OutputStore is where artifacts are written and later served from.
type OutputStore interface {
	award.BlobStore
	award.BlobReader
}

// App holds the shared services for one command invocation.
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	registry    registry.Registry
	normalizer  *normalize.Normalizer
	output      OutputStore
	diagnostics award.BlobStore
	cache       award.Cache
	publisher   award.Publisher
	snapshots   award.SnapshotStore
	closers     []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// New creates the App. Failing to reach a configured backend is fatal; an
// absent optional backend (pubsub, db, redis) is simply skipped.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: logger}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	tp, err := telemetry.InitTracerProvider(ctx, telemetry.Config{
		ServiceName: a.cfg.Tracing.ServiceName,
		Version:     Version,
		SampleRatio: a.cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, namedCloser{name: "tracing", close: func() error {
		return tp.Shutdown(context.Background())
	}})

	reg, err := registry.Load(a.cfg.Registry.File)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	a.registry = reg
	a.normalizer, err = normalize.New(normalize.Config{
		Synonyms:             reg.Synonyms,
		SiteOfTheYearAliases: reg.SiteOfTheYearAliases,
	})
	if err != nil {
		return fmt.Errorf("build normalizer: %w", err)
	}

	if err := a.initOutput(ctx); err != nil {
		return err
	}
	if a.cfg.Diagnostics.Enabled {
		diag, err := local.New(local.Config{BaseDir: a.cfg.Diagnostics.Dir})
		if err != nil {
			return fmt.Errorf("init diagnostics store: %w", err)
		}
		a.diagnostics = diag
	}
	if err := a.initCache(ctx); err != nil {
		return err
	}

	if a.cfg.PubSub.TopicName != "" {
		pub, err := pubsubpublisher.NewFromProject(ctx, a.cfg.PubSub.ProjectID)
		if err != nil {
			return fmt.Errorf("init pubsub publisher: %w", err)
		}
		a.publisher = pub
		a.closers = append(a.closers, namedCloser{name: "pubsub", close: pub.Close})
		a.logger.Info("publishing run summaries", zap.String("topic", a.cfg.PubSub.TopicName))
	}

	if a.cfg.DB.DSN != "" {
		store, err := postgres.NewSnapshotStore(ctx, postgres.Config{
			DSN:      a.cfg.DB.DSN,
			Table:    a.cfg.DB.Table,
			MaxConns: a.cfg.DB.MaxConns,
		})
		if err != nil {
			return fmt.Errorf("init snapshot store: %w", err)
		}
		a.closers = append(a.closers, namedCloser{name: "postgres", close: func() error {
			store.Close()
			return nil
		}})
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure snapshot schema: %w", err)
		}
		a.snapshots = store
	}
	return nil
}

func (a *App) initOutput(ctx context.Context) error {
	switch a.cfg.Output.Backend {
	case "gcs":
		client, err := gcsstorage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("create gcs client: %w", err)
		}
		a.closers = append(a.closers, namedCloser{name: "gcs", close: client.Close})
		store, err := gcs.New(client, gcs.Config{Bucket: a.cfg.Output.Bucket, Prefix: a.cfg.Output.Prefix})
		if err != nil {
			return fmt.Errorf("init gcs output: %w", err)
		}
		a.output = store
	default:
		store, err := local.New(local.Config{BaseDir: a.cfg.Output.Dir})
		if err != nil {
			return fmt.Errorf("init local output: %w", err)
		}
		a.output = store
	}
	a.logger.Info("output store ready", zap.String("backend", a.cfg.Output.Backend))
	return nil
}

func (a *App) initCache(ctx context.Context) error {
	switch a.cfg.Cache.Backend {
	case "redis":
		c, err := rediscache.New(ctx, rediscache.Config{
			Addr:     a.cfg.Cache.Addr,
			Password: a.cfg.Cache.Password,
			DB:       a.cfg.Cache.DB,
		}, a.logger.Named("cache"))
		if err != nil {
			return fmt.Errorf("init redis cache: %w", err)
		}
		a.cache = c
		a.closers = append(a.closers, namedCloser{name: "redis", close: c.Close})
	case "memory":
		a.cache = memorycache.New()
	}
	return nil
}

// Logger returns the shared logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Output returns the artifact store.
func (a *App) Output() OutputStore {
	return a.output
}

// Analyzer builds the configured analysis provider. Without a credential the
// no-op analyzer is returned and enrichment skips the analysis step.
func (a *App) Analyzer(ctx context.Context) (award.Analyzer, error) {
	if a.cfg.Analysis.APIKey == "" {
		a.logger.Info("no analysis credential configured, analysis disabled",
			zap.String("provider", a.cfg.Analysis.Provider))
		return analysis.Noop{}, nil
	}
	var gen analysis.Generator
	switch a.cfg.Analysis.Provider {
	case "gemini":
		g, err := geminigen.New(ctx, geminigen.Config{
			APIKey:      a.cfg.Analysis.APIKey,
			Model:       a.cfg.Analysis.Model,
			MaxTokens:   int32(a.cfg.Analysis.MaxTokens),
			Temperature: float32(a.cfg.Analysis.Temperature),
		})
		if err != nil {
			return nil, fmt.Errorf("init gemini generator: %w", err)
		}
		gen = g
	default:
		g, err := openaigen.New(openaigen.Config{
			APIKey:      a.cfg.Analysis.APIKey,
			Model:       a.cfg.Analysis.Model,
			MaxTokens:   int64(a.cfg.Analysis.MaxTokens),
			Temperature: a.cfg.Analysis.Temperature,
			BaseURL:     a.cfg.Analysis.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai generator: %w", err)
		}
		gen = g
	}
	opts := []analysis.Option{analysis.WithLogger(a.logger.Named("analysis"))}
	if a.cache != nil {
		opts = append(opts, analysis.WithCache(a.cache, sha256.New()))
	}
	return analysis.New(gen, analysis.Config{
		Timeout:  a.cfg.AnalysisTimeout(),
		QPS:      a.cfg.Analysis.QPS,
		CacheTTL: a.cfg.CacheTTL(),
	}, opts...), nil
}

// Fetcher builds the headless-first fetch chain.
func (a *App) Fetcher() (award.Fetcher, error) {
	limiter := ratelimit.New(ratelimit.Config{
		DefaultRPS:   a.cfg.Fetch.RPS,
		DefaultBurst: a.cfg.Fetch.Burst,
	})
	httpFetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:     a.cfg.Fetch.UserAgent,
		RespectRobots: a.cfg.Fetch.RespectRobots,
		Timeout:       a.cfg.FetchTimeout(),
	}, limiter)

	var primary award.Fetcher = headless.NewNoop()
	if a.cfg.Fetch.HeadlessEnabled {
		h := a.cfg.Fetch.Headless
		chrome, err := headless.NewChromedp(headless.Config{
			MaxParallel:       h.MaxParallel,
			UserAgent:         a.cfg.Fetch.UserAgent,
			ExecPath:          h.ExecPath,
			NavigationTimeout: time.Duration(h.NavTimeoutSeconds) * time.Second,
			SelectorTimeout:   time.Duration(h.SelectorTimeoutSeconds) * time.Second,
			SettleDelay:       time.Duration(h.SettleSeconds) * time.Second,
			ScrollStep:        h.ScrollStep,
			ScrollInterval:    time.Duration(h.ScrollIntervalMs) * time.Millisecond,
			MaxScrollSteps:    h.MaxScrollSteps,
			Screenshot:        h.Screenshot,
		})
		if err != nil {
			return nil, fmt.Errorf("init headless fetcher: %w", err)
		}
		primary = chrome
	}
	return fallback.New(primary, httpFetcher, a.diagnostics, a.logger.Named("fetch"),
		fallback.WithShellDetector(detector.NewHeuristic(0))), nil
}

// Pipeline assembles the scrape pipeline from the App's services.
func (a *App) Pipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	fetcher, err := a.Fetcher()
	if err != nil {
		return nil, err
	}
	analyzer, err := a.Analyzer(ctx)
	if err != nil {
		return nil, err
	}
	aggregator := aggregate.New(a.normalizer)
	enricher := enrich.New(analyzer, enrich.Config{MinDescription: a.cfg.Pipeline.MinDescription},
		a.logger.Named("enrich"), enrich.WithObserver(metrics.ObserveEnrichmentStep))
	clock := system.New()

	var opts []pipeline.Option
	if a.publisher != nil {
		opts = append(opts, pipeline.WithPublisher(a.publisher))
	}
	if a.snapshots != nil {
		opts = append(opts, pipeline.WithSnapshots(a.snapshots))
	}
	return pipeline.New(
		a.registry,
		registry.Seed(a.cfg.Seed.IncludeFallback),
		fetcher,
		extract.New(a.normalizer, a.registry.Vocabulary, a.logger.Named("extract")),
		enricher,
		aggregator,
		emit.New(clock, a.logger.Named("emit")),
		a.output,
		uuid.NewUUIDGenerator(),
		clock,
		pipeline.Config{
			Concurrency:     a.cfg.Pipeline.Concurrency,
			Topic:           a.cfg.PubSub.TopicName,
			MetricsTextfile: a.cfg.Metrics.Textfile,
		},
		a.logger.Named("pipeline"),
		opts...,
	)
}

// Server builds the read-only HTTP API over the output store.
func (a *App) Server() *api.Server {
	return api.NewServer(a.output, a.cfg, a.logger.Named("api"))
}

// Close shuts down every opened backend in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Warn("close failed", zap.String("service", c.name), zap.Error(err))
		}
	}
	a.closers = nil
}
