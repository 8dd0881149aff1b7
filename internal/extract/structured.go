package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/awards-crawler/internal/award"
	"github.com/JakeFAU/awards-crawler/internal/rank"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// structured decodes JSON-LD blocks and keeps every node typed Award.
func (e *Extractor) structured(p *pageContext) []Candidate {
	var out []Candidate
	blocks := p.doc.Find(jsonLDSelector)
	for i := range blocks.Nodes {
		raw := strings.TrimSpace(blocks.Eq(i).Text())
		if raw == "" {
			continue
		}
		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			e.logger.Warn("structured data block skipped",
				zap.String("locator", p.source.Locator),
				zap.Int("block", i),
				zap.Error(fmt.Errorf("%w: %w", award.ErrSerialization, err)),
			)
			continue
		}
		for _, node := range awardNodes(payload) {
			if c, ok := p.fromStructured(node); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

func (p *pageContext) fromStructured(node map[string]any) (Candidate, bool) {
	category := text(node["category"])
	if category == "" {
		category = text(node["name"])
	}
	recipient := object(node["recipient"])
	project := name(node["recipient"])
	if project == "" {
		project = text(node["name"])
	}
	link := text(recipient["url"])
	if link == "" {
		link = text(node["url"])
	}
	image := imageURL(recipient["image"])
	if image == "" {
		image = imageURL(node["image"])
	}
	rec := award.Record{
		Year:        p.source.Year,
		Company:     project,
		Agency:      name(recipient["creator"]),
		Category:    category,
		Project:     project,
		Rank:        rank.Winner,
		URL:         p.resolve(link),
		Description: text(node["description"]),
		ImageURL:    p.resolve(image),
	}
	if !rec.Valid() {
		return Candidate{}, false
	}
	return Candidate{Record: rec}, true
}

// awardNodes walks objects, arrays and @graph containers.
func awardNodes(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		var out []map[string]any
		for _, item := range t {
			out = append(out, awardNodes(item)...)
		}
		return out
	case map[string]any:
		var out []map[string]any
		if isAward(t["@type"]) {
			out = append(out, t)
		}
		if graph, ok := t["@graph"]; ok {
			out = append(out, awardNodes(graph)...)
		}
		return out
	default:
		return nil
	}
}

func isAward(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Award"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "Award" {
				return true
			}
		}
	}
	return false
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return collapse(t)
	case float64:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

// object returns v as a JSON object, taking the first element of arrays.
func object(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				return m
			}
		}
	}
	return map[string]any{}
}

// name reads a schema.org Thing given as a bare string, an object or an array.
func name(v any) string {
	switch t := v.(type) {
	case string:
		return collapse(t)
	case map[string]any:
		return text(t["name"])
	case []any:
		if len(t) > 0 {
			return name(t[0])
		}
	}
	return ""
}

func imageURL(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if u := text(t["url"]); u != "" {
			return u
		}
		return text(t["contentUrl"])
	case []any:
		if len(t) > 0 {
			return imageURL(t[0])
		}
	}
	return ""
}
