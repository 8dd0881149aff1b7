// Package emit renders the final record set into the artifacts consumed by
// the site: a typed dataset, a plain JSON copy, a schema.org document, a
// narrative blog post and the category list.
//
// Rendering happens entirely in memory. Nothing is written unless every
// artifact rendered. Writes go to StagingPrefix first; live paths are only
// touched once the whole set staged, and a failed promotion puts the previous
// live contents back when the store can read them.
package emit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

// Artifact paths relative to the output store.
const (
	PathWinnersTS    = "awardWinners.ts"
	PathWinnersJSON  = "awardWinners.json"
	PathSchema       = "awards-schema.json"
	PathBlog         = "blog/australian-web-awards.mdx"
	PathCategoriesTS = "awardCategories.ts"

	// StagingPrefix holds the set being written. It is overwritten every run.
	StagingPrefix = "staging/"
)

// File is one rendered artifact.
type File struct {
	Path        string
	ContentType string
	Data        []byte
}

// Artifacts is the full rendered output of a run, in write order.
type Artifacts struct {
	Files []File
}

// Get returns the file rendered at path.
func (a Artifacts) Get(path string) (File, bool) {
	for _, f := range a.Files {
		if f.Path == path {
			return f, true
		}
	}
	return File{}, false
}

// Emitter renders and writes artifacts.
type Emitter struct {
	clock  award.Clock
	logger *zap.Logger
}

// New builds an Emitter. The clock dates the blog post front matter.
func New(clock award.Clock, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{clock: clock, logger: logger}
}

type renderer struct {
	path        string
	contentType string
	render      func() ([]byte, error)
}

// Render produces every artifact for records, which must already be
// aggregated. categories feeds the category list and is deduplicated and
// sorted here.
func (e *Emitter) Render(records []award.Record, categories []string) (Artifacts, error) {
	if records == nil {
		records = []award.Record{}
	}
	date := e.now()
	renderers := []renderer{
		{PathWinnersTS, "text/typescript; charset=utf-8", func() ([]byte, error) { return winnersTS(records) }},
		{PathWinnersJSON, "application/json", func() ([]byte, error) { return marshalJSON(records) }},
		{PathSchema, "application/ld+json", func() ([]byte, error) { return schemaDocument(records) }},
		{PathBlog, "text/markdown; charset=utf-8", func() ([]byte, error) { return blogPost(records, date) }},
		{PathCategoriesTS, "text/typescript; charset=utf-8", func() ([]byte, error) { return categoriesTS(categories) }},
	}

	out := Artifacts{Files: make([]File, 0, len(renderers))}
	for _, r := range renderers {
		data, err := r.render()
		if err != nil {
			return Artifacts{}, fmt.Errorf("render %s: %w", r.path, err)
		}
		out.Files = append(out.Files, File{Path: r.path, ContentType: r.contentType, Data: data})
	}
	return out, nil
}

// RenderCategories produces only the category list.
func (e *Emitter) RenderCategories(categories []string) (Artifacts, error) {
	data, err := categoriesTS(categories)
	if err != nil {
		return Artifacts{}, fmt.Errorf("render %s: %w", PathCategoriesTS, err)
	}
	return Artifacts{Files: []File{{Path: PathCategoriesTS, ContentType: "text/typescript; charset=utf-8", Data: data}}}, nil
}

// Write stages every artifact, then promotes the set to the live paths and
// returns their URIs in write order. A staging failure leaves the live paths
// untouched.
func (e *Emitter) Write(ctx context.Context, store award.BlobStore, artifacts Artifacts) ([]string, error) {
	for _, f := range artifacts.Files {
		if _, err := store.PutObject(ctx, StagingPrefix+f.Path, f.ContentType, bytes.NewReader(f.Data)); err != nil {
			return nil, fmt.Errorf("stage %s: %w", f.Path, err)
		}
	}

	previous := e.previous(ctx, store, artifacts)
	uris := make([]string, 0, len(artifacts.Files))
	for i, f := range artifacts.Files {
		uri, err := store.PutObject(ctx, f.Path, f.ContentType, bytes.NewReader(f.Data))
		if err != nil {
			e.restore(ctx, store, artifacts.Files[:i], previous)
			return uris, fmt.Errorf("write %s: %w", f.Path, err)
		}
		e.logger.Info("artifact written", zap.String("path", f.Path), zap.String("uri", uri), zap.Int("bytes", len(f.Data)))
		uris = append(uris, uri)
	}
	return uris, nil
}

// previous reads the live contents about to be replaced. Stores that cannot
// read return nothing, and a failed promotion then cannot be undone.
func (e *Emitter) previous(ctx context.Context, store award.BlobStore, artifacts Artifacts) map[string][]byte {
	reader, ok := store.(award.BlobReader)
	if !ok {
		return nil
	}
	out := make(map[string][]byte, len(artifacts.Files))
	for _, f := range artifacts.Files {
		data, err := reader.GetObject(ctx, f.Path)
		if err != nil {
			continue
		}
		out[f.Path] = data
	}
	return out
}

func (e *Emitter) restore(ctx context.Context, store award.BlobStore, written []File, previous map[string][]byte) {
	for _, f := range written {
		data, ok := previous[f.Path]
		if !ok {
			e.logger.Warn("artifact written before failure has no previous version", zap.String("path", f.Path))
			continue
		}
		if _, err := store.PutObject(ctx, f.Path, f.ContentType, bytes.NewReader(data)); err != nil {
			e.logger.Error("restore artifact failed", zap.String("path", f.Path), zap.Error(err))
			continue
		}
		e.logger.Info("artifact restored", zap.String("path", f.Path))
	}
}

func (e *Emitter) now() time.Time {
	if e.clock == nil {
		return time.Now().UTC()
	}
	return e.clock.Now()
}

// marshalJSON indents with two spaces and leaves &, < and > unescaped so the
// output matches hand-written data files.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %w", award.ErrSerialization, err)
	}
	return buf.Bytes(), nil
}

// distinctSorted drops blanks and duplicates.
func distinctSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
