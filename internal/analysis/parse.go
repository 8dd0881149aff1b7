package analysis

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

var (
	technologiesLine = regexp.MustCompile(`(?i)technologies[:\s]+(.*?)(?:\n|$)`)
	featuresLine     = regexp.MustCompile(`(?i)features[:\s]+(.*?)(?:\n|$)`)
	detailsLine      = regexp.MustCompile(`(?i)technical details[:\s]+(.*?)(?:\n|$)`)
	designLine       = regexp.MustCompile(`(?i)design highlights[:\s]+(.*?)(?:\n|$)`)
	analysisLine     = regexp.MustCompile(`(?i)analysis[:\s]+(.*?)(?:\n|$)`)
)

// response tolerates models that return lists as a single string and
// vice versa.
type response struct {
	Technologies       flexible `json:"technologies"`
	InnovativeFeatures flexible `json:"innovative_features"`
	TechnicalDetails   flexible `json:"technical_details"`
	DesignHighlights   flexible `json:"design_highlights"`
	Analysis           flexible `json:"ai_analysis"`
}

type flexible []string

func (f *flexible) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*f = []string{single}
		}
		return nil
	}
	// Anything else (numbers, objects, null) is treated as absent.
	*f = nil
	return nil
}

func (f flexible) list() []string {
	out := make([]string, 0, len(f))
	for _, item := range f {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (f flexible) text() string {
	return strings.TrimSpace(strings.Join(f.list(), " "))
}

// Parse reads a model reply. JSON is preferred; otherwise each field is
// recovered from labeled lines. A reply with nothing recognizable yields the
// empty analysis.
func Parse(reply string) award.Analysis {
	if a, ok := parseJSON(reply); ok {
		return a
	}
	return parseLines(reply)
}

func parseJSON(reply string) (award.Analysis, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return award.Analysis{}, false
	}
	var r response
	if err := json.Unmarshal([]byte(reply[start:end+1]), &r); err != nil {
		return award.Analysis{}, false
	}
	return award.Analysis{
		Technologies:       r.Technologies.list(),
		InnovativeFeatures: r.InnovativeFeatures.list(),
		TechnicalDetails:   r.TechnicalDetails.text(),
		DesignHighlights:   r.DesignHighlights.text(),
		Summary:            r.Analysis.text(),
	}, true
}

func parseLines(reply string) award.Analysis {
	return award.Analysis{
		Technologies:       splitList(match(technologiesLine, reply)),
		InnovativeFeatures: splitList(match(featuresLine, reply)),
		TechnicalDetails:   match(detailsLine, reply),
		DesignHighlights:   match(designLine, reply),
		Summary:            match(analysisLine, reply),
	}
}

func match(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
