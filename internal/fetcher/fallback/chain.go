// Package fallback combines a primary and a fallback fetcher and keeps the
// raw markup of every successful fetch for later inspection.
package fallback

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/awards-crawler/internal/award"
	"github.com/JakeFAU/awards-crawler/internal/metrics"
)

// Chain implements award.Fetcher.
type Chain struct {
	primary     award.Fetcher
	fallback    award.Fetcher
	diagnostics award.BlobStore
	detector    ShellDetector
	logger      *zap.Logger
}

// ShellDetector flags fallback markup that is only a script shell.
type ShellDetector interface {
	Unrendered(page award.Page) bool
}

// Option customises a Chain.
type Option func(*Chain)

// WithShellDetector warns when the fallback returns markup that still needs
// a browser. Such pages are returned as usual; extraction will likely find
// nothing in them.
func WithShellDetector(d ShellDetector) Option {
	return func(c *Chain) {
		c.detector = d
	}
}

// New builds a Chain. diagnostics may be nil to skip persisting markup.
func New(primary, fallback award.Fetcher, diagnostics award.BlobStore, logger *zap.Logger, opts ...Option) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	c := &Chain{
		primary:     primary,
		fallback:    fallback,
		diagnostics: diagnostics,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch tries the primary fetcher and falls back on any error. When both
// fail the result is an *award.FetchError.
func (c *Chain) Fetch(ctx context.Context, source award.Source) (award.Page, error) {
	page, primaryErr := c.primary.Fetch(ctx, source)
	observe(source, award.StrategyHeadless, page, primaryErr)
	if primaryErr == nil {
		c.persist(ctx, page)
		return page, nil
	}
	c.logger.Info("primary fetch failed, falling back",
		zap.Int("year", source.Year),
		zap.String("locator", source.Locator),
		zap.Error(primaryErr),
	)
	if ctx.Err() != nil {
		return award.Page{}, &award.FetchError{Locator: source.Locator, Primary: primaryErr, Fallback: ctx.Err()}
	}

	page, fallbackErr := c.fallback.Fetch(ctx, source)
	observe(source, award.StrategyHTTP, page, fallbackErr)
	if fallbackErr != nil {
		return award.Page{}, &award.FetchError{Locator: source.Locator, Primary: primaryErr, Fallback: fallbackErr}
	}
	if c.detector != nil && c.detector.Unrendered(page) {
		c.logger.Warn("fallback markup looks unrendered",
			zap.Int("year", source.Year),
			zap.String("locator", source.Locator),
			zap.Int("bytes", len(page.Markup)),
		)
	}
	c.persist(ctx, page)
	return page, nil
}

func observe(source award.Source, strategy award.Strategy, page award.Page, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ObserveFetch(source.Locator, string(strategy), status, len(page.Markup))
}

// persist writes html/debug-html-<year>.html and, when present, the
// screenshot. Later pages for the same year overwrite earlier ones.
func (c *Chain) persist(ctx context.Context, page award.Page) {
	if c.diagnostics == nil {
		return
	}
	year := page.Source.Year
	htmlPath := fmt.Sprintf("html/debug-html-%d.html", year)
	if _, err := c.diagnostics.PutObject(ctx, htmlPath, "text/html; charset=utf-8", bytes.NewReader(page.Markup)); err != nil {
		c.logger.Warn("diagnostic markup not saved", zap.String("path", htmlPath), zap.Error(err))
	}
	if len(page.Screenshot) == 0 {
		return
	}
	shotPath := fmt.Sprintf("screenshots/screenshot-%d.png", year)
	if _, err := c.diagnostics.PutObject(ctx, shotPath, "image/png", bytes.NewReader(page.Screenshot)); err != nil {
		c.logger.Warn("diagnostic screenshot not saved", zap.String("path", shotPath), zap.Error(err))
	}
}
