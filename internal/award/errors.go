package award

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable means neither retrieval strategy produced markup.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrExtractionEmpty means a page yielded no candidate records.
	ErrExtractionEmpty = errors.New("no records extracted")
	// ErrEnrichment marks a failed enrichment sub-step.
	ErrEnrichment = errors.New("enrichment failed")
	// ErrSerialization marks an embedded structured-data block that could not be decoded.
	ErrSerialization = errors.New("serialization failure")
	// ErrAnalyzerDisabled is returned by analyzers without a credential.
	ErrAnalyzerDisabled = errors.New("analyzer not configured")
	// ErrObjectNotFound is returned by BlobReader for missing artifacts.
	ErrObjectNotFound = errors.New("object not found")
)

// FetchError reports both strategy failures for one locator.
type FetchError struct {
	Locator  string
	Primary  error
	Fallback error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: primary: %v; fallback: %v", e.Locator, e.Primary, e.Fallback)
}

// Unwrap exposes both underlying causes to errors.Is and errors.As.
func (e *FetchError) Unwrap() []error {
	var out []error
	if e.Primary != nil {
		out = append(out, e.Primary)
	}
	if e.Fallback != nil {
		out = append(out, e.Fallback)
	}
	return out
}

// Is lets callers match any FetchError against ErrSourceUnavailable.
func (e *FetchError) Is(target error) bool {
	return target == ErrSourceUnavailable
}
