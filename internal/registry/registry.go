// Package registry holds the pages to visit and the naming tables used to
// reconcile category labels across years.
package registry

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

// Registry is the injectable configuration for one scrape run.
type Registry struct {
	Sources              []award.Source    `yaml:"sources"`
	Vocabulary           []string          `yaml:"vocabulary"`
	Synonyms             map[string]string `yaml:"synonyms"`
	SiteOfTheYearAliases []string          `yaml:"site_of_the_year_aliases"`
}

// Default returns the built-in registry.
func Default() Registry {
	return Registry{
		Sources:              defaultSources(),
		Vocabulary:           append([]string(nil), defaultVocabulary...),
		Synonyms:             defaultSynonyms(),
		SiteOfTheYearAliases: append([]string(nil), defaultSiteOfTheYearAliases...),
	}
}

// Load reads a YAML registry file. Sections absent from the file keep their
// built-in values; an empty path returns Default().
func Load(path string) (Registry, error) {
	reg := Default()
	if strings.TrimSpace(path) == "" {
		return reg, nil
	}
	// #nosec G304 -- path comes from operator configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return Registry{}, fmt.Errorf("read registry: %w", err)
	}
	var override Registry
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Registry{}, fmt.Errorf("decode registry: %w", err)
	}
	if len(override.Sources) > 0 {
		reg.Sources = override.Sources
	}
	if len(override.Vocabulary) > 0 {
		reg.Vocabulary = override.Vocabulary
	}
	if len(override.Synonyms) > 0 {
		reg.Synonyms = override.Synonyms
	}
	if len(override.SiteOfTheYearAliases) > 0 {
		reg.SiteOfTheYearAliases = override.SiteOfTheYearAliases
	}
	if err := reg.Validate(); err != nil {
		return Registry{}, err
	}
	return reg, nil
}

// Validate checks that every source is usable.
func (r Registry) Validate() error {
	if len(r.Sources) == 0 {
		return errors.New("registry has no sources")
	}
	for i, src := range r.Sources {
		if strings.TrimSpace(src.Locator) == "" {
			return fmt.Errorf("source %d: locator is required", i)
		}
		if src.Year < 0 {
			return fmt.Errorf("source %d: year must be >= 0", i)
		}
	}
	return nil
}

// YearScopedSources returns the sources whose records can reach the output.
func (r Registry) YearScopedSources() []award.Source {
	out := make([]award.Source, 0, len(r.Sources))
	for _, src := range r.Sources {
		if src.YearScoped() {
			out = append(out, src)
		}
	}
	return out
}
