// Package analysis asks a text-generation model to describe why an entry won.
//
// The Analyzer wraps a provider-specific Generator with a per-call timeout,
// a process-wide rate limit and an optional result cache keyed by the digest
// of the description. Replies are parsed leniently; see Parse.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

// Generator sends a prompt to a model and returns the raw reply text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config tunes call behaviour.
type Config struct {
	Timeout  time.Duration
	QPS      float64
	CacheTTL time.Duration
}

// Analyzer implements award.Analyzer.
type Analyzer struct {
	gen     Generator
	cfg     Config
	limiter *rate.Limiter
	cache   award.Cache
	hasher  award.Hasher
	logger  *zap.Logger
}

// Option customises an Analyzer.
type Option func(*Analyzer)

// WithCache stores parsed results under "analysis:<sha256>" keys.
func WithCache(cache award.Cache, hasher award.Hasher) Option {
	return func(a *Analyzer) {
		a.cache = cache
		a.hasher = hasher
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New builds an Analyzer around gen.
func New(gen Generator, cfg Config, opts ...Option) *Analyzer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.QPS > 0 {
		limit = rate.Limit(cfg.QPS)
	}
	a := &Analyzer{
		gen:     gen,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enabled reports whether a generator is configured.
func (a *Analyzer) Enabled() bool {
	return a != nil && a.gen != nil
}

// Analyze returns the structured analysis of description. Transport errors are
// returned; unparseable replies are not errors and yield whatever fields the
// line fallback could recover.
func (a *Analyzer) Analyze(ctx context.Context, description string) (award.Analysis, error) {
	if !a.Enabled() {
		return award.Analysis{}, award.ErrAnalyzerDisabled
	}
	key := a.cacheKey(description)
	if cached, ok := a.lookup(ctx, key); ok {
		return cached, nil
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return award.Analysis{}, fmt.Errorf("analysis rate limit: %w", err)
	}
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	reply, err := a.gen.Generate(callCtx, Prompt(description))
	if err != nil {
		return award.Analysis{}, fmt.Errorf("generate analysis: %w", err)
	}
	result := Parse(reply)
	a.store(ctx, key, result)
	return result, nil
}

func (a *Analyzer) cacheKey(description string) string {
	if a.cache == nil || a.hasher == nil {
		return ""
	}
	digest, err := a.hasher.Hash([]byte(description))
	if err != nil {
		return ""
	}
	return "analysis:" + digest
}

func (a *Analyzer) lookup(ctx context.Context, key string) (award.Analysis, bool) {
	if key == "" {
		return award.Analysis{}, false
	}
	raw, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		a.logger.Warn("analysis cache read failed", zap.String("key", key), zap.Error(err))
		return award.Analysis{}, false
	}
	if !ok {
		return award.Analysis{}, false
	}
	var out award.Analysis
	if err := json.Unmarshal(raw, &out); err != nil {
		a.logger.Warn("analysis cache entry corrupt", zap.String("key", key), zap.Error(err))
		return award.Analysis{}, false
	}
	return out, true
}

func (a *Analyzer) store(ctx context.Context, key string, result award.Analysis) {
	if key == "" || result.Empty() {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, raw, a.cfg.CacheTTL); err != nil {
		a.logger.Warn("analysis cache write failed", zap.String("key", key), zap.Error(err))
	}
}
