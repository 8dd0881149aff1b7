package headless

import (
	"context"
	"errors"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

// ErrDisabled is returned by Noop.
var ErrDisabled = errors.New("headless fetcher disabled")

// Noop stands in for the browser when headless rendering is switched off,
// sending every source down the fallback path.
type Noop struct{}

// NewNoop creates a new Noop fetcher.
func NewNoop() *Noop {
	return &Noop{}
}

// Fetch always fails with ErrDisabled.
func (Noop) Fetch(context.Context, award.Source) (award.Page, error) {
	return award.Page{}, ErrDisabled
}
