package award

import (
	"context"
	"io"
	"time"
)

// Fetcher retrieves the markup for a source.
type Fetcher interface {
	Fetch(ctx context.Context, source Source) (Page, error)
}

// Analyzer turns a free-text description into structured highlights.
type Analyzer interface {
	Analyze(ctx context.Context, description string) (Analysis, error)
	Enabled() bool
}

// BlobStore writes artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// BlobReader reads back a stored artifact. Missing paths return an error
// matching ErrObjectNotFound.
type BlobReader interface {
	GetObject(ctx context.Context, path string) ([]byte, error)
}

// Publisher pushes run notifications to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// SnapshotStore persists the final record set of a run.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, runID string, records []Record) error
}

// Cache stores serialized analysis results keyed by content digest.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Hasher computes digests for cache keys and markup fingerprints.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}
