// Package enrich adds best-effort detail to extracted candidates: social
// links, award criteria, judge commentary and a model-generated analysis.
//
// Enrich never fails. Every sub-step runs in isolation; a step that errors or
// panics leaves its fields empty and is logged. The candidate record is never
// mutated; a copy with the extra fields is returned.
package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/awards-crawler/internal/award"
	"github.com/JakeFAU/awards-crawler/internal/extract"
)

// DefaultMinDescription is the shortest description worth analysing.
const DefaultMinDescription = 50

// Config tunes enrichment.
type Config struct {
	MinDescription int
}

// Enricher implements the enrichment stage.
type Enricher struct {
	analyzer award.Analyzer
	cfg      Config
	logger   *zap.Logger
	observe  func(step string, ok bool)
}

// Option customises an Enricher.
type Option func(*Enricher)

// WithObserver registers a callback invoked once per executed step.
func WithObserver(fn func(step string, ok bool)) Option {
	return func(e *Enricher) {
		e.observe = fn
	}
}

// New builds an Enricher. A nil analyzer disables analysis.
func New(analyzer award.Analyzer, cfg Config, logger *zap.Logger, opts ...Option) *Enricher {
	if cfg.MinDescription <= 0 {
		cfg.MinDescription = DefaultMinDescription
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Enricher{
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger,
		observe:  func(string, bool) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich returns a copy of the candidate's record with optional fields filled.
// Records from context-only sources are returned unchanged.
func (e *Enricher) Enrich(ctx context.Context, c extract.Candidate, doc *goquery.Document) award.Record {
	rec := c.Record.Clone()
	if rec.Year == 0 {
		return rec
	}
	scope := contextFor(c, doc)

	var links award.SocialLinks
	e.run(rec, "social", func() error {
		links = socialLinks(scope)
		return nil
	})
	if !links.Empty() && rec.SocialMedia == nil {
		rec.SocialMedia = &links
	}

	var d details
	e.run(rec, "details", func() error {
		d = awardDetails(scope)
		return nil
	})
	if len(rec.AwardCriteria) == 0 {
		rec.AwardCriteria = d.criteria
	}
	if rec.JudgeComments == "" {
		rec.JudgeComments = d.comments
	}

	if e.analyzer == nil || !e.analyzer.Enabled() || len(rec.Description) < e.cfg.MinDescription {
		return rec
	}
	var a award.Analysis
	e.run(rec, "analysis", func() error {
		var err error
		a, err = e.analyzer.Analyze(ctx, rec.Description)
		return err
	})
	return merge(rec, a)
}

// run executes one step, converting panics and errors into a log entry.
func (e *Enricher) run(rec award.Record, step string, fn func() error) {
	ok := false
	defer func() {
		if r := recover(); r != nil {
			e.fail(rec, step, fmt.Errorf("%w: %s panicked: %v", award.ErrEnrichment, step, r))
		}
		e.observe(step, ok)
	}()
	if err := fn(); err != nil {
		if !errors.Is(err, award.ErrEnrichment) {
			err = fmt.Errorf("%w: %s: %w", award.ErrEnrichment, step, err)
		}
		e.fail(rec, step, err)
		return
	}
	ok = true
}

func (e *Enricher) fail(rec award.Record, step string, err error) {
	e.logger.Warn("enrichment step failed",
		zap.String("step", step),
		zap.Int("year", rec.Year),
		zap.String("category", rec.Category),
		zap.String("project", rec.Project),
		zap.Error(err),
	)
}

// merge copies analysis output into empty record fields.
func merge(rec award.Record, a award.Analysis) award.Record {
	if len(rec.Technologies) == 0 && len(a.Technologies) > 0 {
		rec.Technologies = append([]string(nil), a.Technologies...)
	}
	if len(rec.InnovativeFeatures) == 0 && len(a.InnovativeFeatures) > 0 {
		rec.InnovativeFeatures = append([]string(nil), a.InnovativeFeatures...)
	}
	if rec.TechnicalDetails == "" {
		rec.TechnicalDetails = a.TechnicalDetails
	}
	if rec.DesignHighlights == "" {
		rec.DesignHighlights = a.DesignHighlights
	}
	if rec.AIAnalysis == "" {
		rec.AIAnalysis = a.Summary
	}
	return rec
}
