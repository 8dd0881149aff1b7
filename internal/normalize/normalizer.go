// Package normalize maps raw category labels onto a canonical vocabulary.
package normalize

import (
	"fmt"
	"slices"
	"strings"
)

// SiteOfTheYear is the canonical label for the flagship prize.
const SiteOfTheYear = "Site of the Year"

var (
	boilerplateFragments = []string{"sponsor", "about", "judges"}
	boilerplateExact     = []string{"sponsors", "about us"}
)

// Config carries the injectable naming tables.
type Config struct {
	Synonyms             map[string]string
	SiteOfTheYearAliases []string
}

// Normalizer is a pure label mapper. It is safe for concurrent use.
type Normalizer struct {
	synonyms map[string]string
	aliases  []string
}

// New builds a Normalizer and rejects synonym tables whose targets would be
// rewritten again, since that would break Normalize(Normalize(x)) == Normalize(x).
// SiteOfTheYear is always an alias of itself, whatever the injected tables say.
func New(cfg Config) (*Normalizer, error) {
	n := &Normalizer{
		synonyms: make(map[string]string, len(cfg.Synonyms)),
		aliases:  []string{strings.ToLower(SiteOfTheYear)},
	}
	for _, alias := range cfg.SiteOfTheYearAliases {
		if alias = strings.ToLower(collapse(alias)); alias != "" && !slices.Contains(n.aliases, alias) {
			n.aliases = append(n.aliases, alias)
		}
	}
	for raw, canonical := range cfg.Synonyms {
		n.synonyms[collapse(raw)] = collapse(canonical)
	}
	for raw, canonical := range n.synonyms {
		if canonical == "" {
			return nil, fmt.Errorf("synonym %q maps to an empty label", raw)
		}
		if got := n.Normalize(canonical); got != canonical {
			return nil, fmt.Errorf("synonym target %q is not canonical (normalizes to %q)", canonical, got)
		}
	}
	return n, nil
}

// Normalize returns the canonical label for raw, or "" for labels that are
// not award categories.
func (n *Normalizer) Normalize(raw string) string {
	label := collapse(raw)
	lower := strings.ToLower(label)
	if isBoilerplate(lower) {
		return ""
	}
	for _, alias := range n.aliases {
		if strings.Contains(lower, alias) {
			return SiteOfTheYear
		}
	}
	if canonical, ok := n.synonyms[label]; ok {
		return canonical
	}
	return label
}

func isBoilerplate(lower string) bool {
	if lower == "" {
		return true
	}
	for _, exact := range boilerplateExact {
		if lower == exact {
			return true
		}
	}
	for _, fragment := range boilerplateFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// collapse trims and folds internal runs of whitespace to one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
