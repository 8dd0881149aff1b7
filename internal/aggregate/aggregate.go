// Package aggregate merges curated and scraped records into the final,
// deterministic dataset.
package aggregate

import (
	"sort"
	"strings"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

// Labeler maps raw category labels onto canonical ones. Implementations must
// be idempotent.
type Labeler interface {
	Normalize(raw string) string
}

// Aggregator owns the merge rules.
type Aggregator struct {
	labels Labeler
}

// New returns an Aggregator that canonicalises categories with labels.
func New(labels Labeler) *Aggregator {
	return &Aggregator{labels: labels}
}

// Label returns the canonical form of a category label, or "" when it is
// not a category.
func (a *Aggregator) Label(raw string) string {
	if a.labels != nil {
		return a.labels.Normalize(raw)
	}
	return strings.Join(strings.Fields(raw), " ")
}

// Aggregate concatenates seed then scraped records, canonicalises the
// categories of scraped records, drops records that cannot be published and
// sorts the rest by year (newest first), category and rank. Seed records are
// kept verbatim. When two records share a (year, category, project) key the
// one that sorts first wins; because the sort is stable and seed records come
// first, a curated record beats a scraped one with the same key and rank.
//
// Inputs are not modified.
func (a *Aggregator) Aggregate(seed, scraped []award.Record) []award.Record {
	all := make([]award.Record, 0, len(seed)+len(scraped))
	for _, rec := range seed {
		if rec.Year == 0 || strings.TrimSpace(rec.Category) == "" {
			continue
		}
		all = append(all, rec.Clone())
	}
	for _, rec := range scraped {
		rec = rec.Clone()
		rec.Category = a.Label(rec.Category)
		if rec.Year == 0 || rec.Category == "" {
			continue
		}
		all = append(all, rec)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return less(all[i], all[j])
	})

	seen := make(map[award.Key]struct{}, len(all))
	out := all[:0]
	for _, rec := range all {
		key := rec.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func less(a, b award.Record) bool {
	if a.Year != b.Year {
		return a.Year > b.Year
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	return a.Rank < b.Rank
}

// CategoryGroup is one category within a year, records in rank order.
type CategoryGroup struct {
	Name    string
	Records []award.Record
}

// YearGroup is one year of the final dataset.
type YearGroup struct {
	Year       int
	Categories []CategoryGroup
}

// Count returns the number of records in the year.
func (g YearGroup) Count() int {
	n := 0
	for _, c := range g.Categories {
		n += len(c.Records)
	}
	return n
}

// Partition groups an aggregated record set by year then category. The
// input order is preserved, so groups follow the aggregate sort.
func Partition(records []award.Record) []YearGroup {
	var out []YearGroup
	for _, rec := range records {
		if len(out) == 0 || out[len(out)-1].Year != rec.Year {
			out = append(out, YearGroup{Year: rec.Year})
		}
		year := &out[len(out)-1]
		if n := len(year.Categories); n == 0 || year.Categories[n-1].Name != rec.Category {
			year.Categories = append(year.Categories, CategoryGroup{Name: rec.Category})
		}
		cat := &year.Categories[len(year.Categories)-1]
		cat.Records = append(cat.Records, rec)
	}
	return out
}

// Categories returns the sorted, distinct categories of records.
func Categories(records []award.Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		if _, ok := seen[rec.Category]; ok || rec.Category == "" {
			continue
		}
		seen[rec.Category] = struct{}{}
		out = append(out, rec.Category)
	}
	sort.Strings(out)
	return out
}
