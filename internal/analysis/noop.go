package analysis

import (
	"context"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

// Noop is the analyzer used when no credential is configured.
type Noop struct{}

// Enabled always reports false.
func (Noop) Enabled() bool { return false }

// Analyze always returns ErrAnalyzerDisabled.
func (Noop) Analyze(context.Context, string) (award.Analysis, error) {
	return award.Analysis{}, award.ErrAnalyzerDisabled
}
