// Package award defines the core types shared across the scraping pipeline.
package award

import (
	"fmt"
	"strings"
)

// Source is one page to visit. Year 0 marks a context-only page (categories,
// judges, about) whose records never reach the final output.
type Source struct {
	Year    int    `json:"year" yaml:"year" mapstructure:"year"`
	Locator string `json:"locator" yaml:"locator" mapstructure:"locator"`
}

// YearScoped reports whether records from this source can appear in output.
func (s Source) YearScoped() bool {
	return s.Year != 0
}

func (s Source) String() string {
	return fmt.Sprintf("%d %s", s.Year, s.Locator)
}

// Strategy names the retrieval path that produced a page.
type Strategy string

// Retrieval strategies.
const (
	StrategyHeadless Strategy = "headless"
	StrategyHTTP     Strategy = "http"
)

// Page is the raw markup returned by a Fetcher.
type Page struct {
	Source     Source
	URL        string
	Markup     []byte
	Screenshot []byte
	Strategy   Strategy
}

// SocialLinks holds the first link found per platform.
type SocialLinks struct {
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Empty reports whether no platform link was found.
func (s SocialLinks) Empty() bool {
	return s == SocialLinks{}
}

// PerformanceMetrics mirrors the optional web-vitals block of the dataset.
type PerformanceMetrics struct {
	LCP             *float64 `json:"lcp,omitempty"`
	FID             *float64 `json:"fid,omitempty"`
	CLS             *float64 `json:"cls,omitempty"`
	LighthouseScore *float64 `json:"lighthouse_score,omitempty"`
}

// Record is one award outcome. Field names match the published dataset.
type Record struct {
	Year     int    `json:"year"`
	Company  string `json:"company"`
	Agency   string `json:"agency"`
	Category string `json:"category"`
	Project  string `json:"project"`
	Rank     int    `json:"rank"`

	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`

	Technologies        []string            `json:"technologies,omitempty"`
	TeamMembers         []string            `json:"team_members,omitempty"`
	SocialMedia         *SocialLinks        `json:"social_media,omitempty"`
	JudgeComments       string              `json:"judge_comments,omitempty"`
	AwardCriteria       []string            `json:"award_criteria,omitempty"`
	InnovativeFeatures  []string            `json:"innovative_features,omitempty"`
	SEOScore            *float64            `json:"seo_score,omitempty"`
	AccessibilityScore  *float64            `json:"accessibility_score,omitempty"`
	PerformanceMetrics  *PerformanceMetrics `json:"performance_metrics,omitempty"`
	CaseStudyURL        string              `json:"case_study_url,omitempty"`
	ClientTestimonial   string              `json:"client_testimonial,omitempty"`
	TechnicalDetails    string              `json:"technical_details,omitempty"`
	DesignHighlights    string              `json:"design_highlights,omitempty"`
	ContentQuality      string              `json:"content_quality,omitempty"`
	UserExperienceNotes string              `json:"user_experience_notes,omitempty"`
	AIAnalysis          string              `json:"ai_analysis,omitempty"`
}

// Key identifies a record for deduplication.
type Key struct {
	Year     int
	Category string
	Project  string
}

// Key returns the (year, category, project) identity of the record.
func (r Record) Key() Key {
	return Key{Year: r.Year, Category: r.Category, Project: r.Project}
}

// Valid reports whether the identity fields needed downstream are present.
func (r Record) Valid() bool {
	return strings.TrimSpace(r.Company) != "" &&
		strings.TrimSpace(r.Project) != "" &&
		strings.TrimSpace(r.Category) != ""
}

// Clone returns a deep copy so enrichment never aliases the source record.
func (r Record) Clone() Record {
	out := r
	out.Technologies = cloneStrings(r.Technologies)
	out.TeamMembers = cloneStrings(r.TeamMembers)
	out.AwardCriteria = cloneStrings(r.AwardCriteria)
	out.InnovativeFeatures = cloneStrings(r.InnovativeFeatures)
	if r.SocialMedia != nil {
		links := *r.SocialMedia
		out.SocialMedia = &links
	}
	out.SEOScore = cloneFloat(r.SEOScore)
	out.AccessibilityScore = cloneFloat(r.AccessibilityScore)
	if r.PerformanceMetrics != nil {
		pm := PerformanceMetrics{
			LCP:             cloneFloat(r.PerformanceMetrics.LCP),
			FID:             cloneFloat(r.PerformanceMetrics.FID),
			CLS:             cloneFloat(r.PerformanceMetrics.CLS),
			LighthouseScore: cloneFloat(r.PerformanceMetrics.LighthouseScore),
		}
		out.PerformanceMetrics = &pm
	}
	return out
}

// Analysis is the structured result of describing a winning entry.
type Analysis struct {
	Technologies       []string `json:"technologies"`
	InnovativeFeatures []string `json:"innovative_features"`
	TechnicalDetails   string   `json:"technical_details"`
	DesignHighlights   string   `json:"design_highlights"`
	Summary            string   `json:"ai_analysis"`
}

// Empty reports whether the analysis carries no information.
func (a Analysis) Empty() bool {
	return len(a.Technologies) == 0 &&
		len(a.InnovativeFeatures) == 0 &&
		a.TechnicalDetails == "" &&
		a.DesignHighlights == "" &&
		a.Summary == ""
}

func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

func cloneFloat(src *float64) *float64 {
	if src == nil {
		return nil
	}
	v := *src
	return &v
}
