// Package extract turns fetched markup into candidate award records.
//
// Extraction runs an ordered chain of strategies over a parsed document and
// stops at the first one that yields candidates. Structured data embedded as
// JSON-LD is tried first; the remaining strategies walk headings, classed
// elements and list items looking for category sections with winner entries.
// Category discovery runs independently of the chain so that context-only
// pages still contribute to the category vocabulary.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

// Labeler maps a raw category label to its canonical form ("" = not a category).
type Labeler interface {
	Normalize(raw string) string
}

// Candidate is an extracted record plus the DOM node it was read from.
// Context is nil for records decoded from structured data.
type Candidate struct {
	Record  award.Record
	Context *goquery.Selection
}

// Result is the outcome of extracting one page.
type Result struct {
	Doc        *goquery.Document
	Candidates []Candidate
	Categories []string
	Strategy   string
}

// Strategy is one extraction approach in the chain.
type Strategy struct {
	Name string
	Run  func(p *pageContext) []Candidate
}

// Extractor runs the strategy chain. It holds no per-page state.
type Extractor struct {
	labels     Labeler
	vocabulary map[string]struct{}
	strategies []Strategy
	logger     *zap.Logger
}

// New builds an Extractor with the default strategy order.
func New(labels Labeler, vocabulary []string, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{
		labels:     labels,
		vocabulary: make(map[string]struct{}, len(vocabulary)),
		logger:     logger,
	}
	for _, v := range vocabulary {
		if label := labels.Normalize(v); label != "" {
			e.vocabulary[strings.ToLower(label)] = struct{}{}
		}
	}
	e.strategies = []Strategy{
		{Name: "structured", Run: e.structured},
		{Name: "headings", Run: e.headings},
		{Name: "classed", Run: e.classed},
		{Name: "list-items", Run: e.listItems},
	}
	return e
}

// Strategies lists the chain in priority order.
func (e *Extractor) Strategies() []string {
	names := make([]string, 0, len(e.strategies))
	for _, s := range e.strategies {
		names = append(names, s.Name)
	}
	return names
}

// Extract parses page markup and returns candidates that carry the
// required identity fields.
func (e *Extractor) Extract(page award.Page) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Markup))
	if err != nil {
		return Result{}, fmt.Errorf("parse markup: %w", err)
	}
	p := &pageContext{doc: doc, source: page.Source, base: baseURL(page)}

	res := Result{Doc: doc, Categories: e.discover(doc)}
	for _, strategy := range e.strategies {
		candidates := dedupe(strategy.Run(p))
		if len(candidates) == 0 {
			continue
		}
		res.Candidates = candidates
		res.Strategy = strategy.Name
		break
	}
	e.logger.Debug("page extracted",
		zap.Int("year", page.Source.Year),
		zap.String("locator", page.Source.Locator),
		zap.String("strategy", res.Strategy),
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("categories", len(res.Categories)),
	)
	return res, nil
}

type pageContext struct {
	doc    *goquery.Document
	source award.Source
	base   *url.URL
}

// resolve turns a relative href into an absolute URL when the page URL is known.
func (p *pageContext) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || p.base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return p.base.ResolveReference(u).String()
}

func baseURL(page award.Page) *url.URL {
	raw := page.URL
	if raw == "" {
		raw = page.Source.Locator
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil
	}
	return u
}

func dedupe(in []Candidate) []Candidate {
	if len(in) < 2 {
		return in
	}
	seen := make(map[[2]string]struct{}, len(in))
	out := in[:0]
	for _, c := range in {
		key := [2]string{c.Record.Category, c.Record.Project}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// collapse trims and folds internal whitespace.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
