// Package detector recognises markup that is only a script shell, i.e. a
// page whose winner listings would exist only after JavaScript runs.
package detector

import (
	"bytes"
	"strings"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

// Heuristic implements a handful of rule-based checks.
type Heuristic struct {
	BodyLengthThreshold int
}

// NewHeuristic creates a new detector. A zero threshold means 2048 bytes.
func NewHeuristic(threshold int) *Heuristic {
	if threshold == 0 {
		threshold = 2048
	}
	return &Heuristic{BodyLengthThreshold: threshold}
}

var spaMarkers = [][]byte{
	[]byte("__next"),
	[]byte("id=\"root\""),
	[]byte("id=\"app\""),
	[]byte("data-reactroot"),
	[]byte("wp-block-post-template is-loading"),
}

// Unrendered reports whether the page looks like it needs a browser to
// produce its content. Rendered pages are never flagged.
func (h *Heuristic) Unrendered(page award.Page) bool {
	if page.Strategy == award.StrategyHeadless {
		return false
	}
	body := page.Markup
	if len(bytes.TrimSpace(body)) == 0 {
		return true
	}
	if len(body) < h.BodyLengthThreshold && scriptDensityHigh(body) {
		return true
	}
	for _, marker := range spaMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	return false
}

// scriptDensityHigh reports whether script elements make up a quarter or more
// of the document.
func scriptDensityHigh(body []byte) bool {
	lower := strings.ToLower(string(body))
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	covered := 0
	pos := 0
	for {
		rel := strings.Index(lower[pos:], openTag)
		if rel == -1 {
			break
		}
		start := pos + rel
		tagEnd := strings.IndexByte(lower[start:], '>')
		if tagEnd == -1 {
			// Malformed tag; the remainder counts as script.
			covered += total - start
			break
		}
		bodyStart := start + tagEnd + 1
		next := total
		if end := strings.Index(lower[bodyStart:], closeTag); end != -1 {
			next = bodyStart + end + len(closeTag)
		}
		covered += next - start
		pos = next
	}
	return covered*100/total >= 25
}
