package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/awards-crawler/internal/award"
	"github.com/JakeFAU/awards-crawler/internal/extract"
)

type fakeAnalyzer struct {
	enabled bool
	result  award.Analysis
	err     error
	panics  bool
	calls   []string
}

func (f *fakeAnalyzer) Enabled() bool { return f.enabled }

func (f *fakeAnalyzer) Analyze(_ context.Context, description string) (award.Analysis, error) {
	f.calls = append(f.calls, description)
	if f.panics {
		panic("analyzer exploded")
	}
	return f.result, f.err
}

const longDescription = "A regional tourism portal with live availability, itinerary planning and offline maps."

const cardPage = `<html><body>
<footer class="social"><a href="https://twitter.com/webawards">AWA</a></footer>
<div class="winner-card">
  <h4>Visit Margaret River</h4>
  <p>` + longDescription + `</p>
  <ul class="criteria"><li>Usability</li><li> Visual design </li></ul>
  <blockquote>A joy to use on any device.</blockquote>
  <div class="social-links">
    <a href="https://www.facebook.com/margaretriver">Facebook</a>
    <a href="https://x.com/margaretriver">X</a>
    <a href="https://twitter.com/other">Other</a>
    <a class="linkedin" href="/company/mr">LinkedIn</a>
  </div>
</div>
</body></html>`

func parse(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func candidate(doc *goquery.Document) extract.Candidate {
	return extract.Candidate{
		Record: award.Record{
			Year:        2019,
			Company:     "Visit Margaret River",
			Category:    "Travel & Tourism",
			Project:     "Visit Margaret River",
			Rank:        1,
			Description: longDescription,
		},
		Context: doc.Find(".winner-card"),
	}
}

func TestEnrichFillsOptionalFields(t *testing.T) {
	t.Parallel()

	doc := parse(t, cardPage)
	c := candidate(doc)
	analyzer := &fakeAnalyzer{enabled: true, result: award.Analysis{
		Technologies:       []string{"Craft CMS"},
		InnovativeFeatures: []string{"Offline maps"},
		TechnicalDetails:   "Server rendered.",
		DesignHighlights:   "Photography led.",
		Summary:            "Makes planning a trip effortless.",
	}}
	var steps []string
	e := New(analyzer, Config{}, zap.NewNop(), WithObserver(func(step string, ok bool) {
		if ok {
			steps = append(steps, step)
		}
	}))

	got := e.Enrich(context.Background(), c, doc)

	require.NotNil(t, got.SocialMedia)
	assert.Equal(t, award.SocialLinks{
		Twitter:  "https://twitter.com/other",
		Facebook: "https://www.facebook.com/margaretriver",
		LinkedIn: "/company/mr",
	}, *got.SocialMedia)
	assert.Equal(t, []string{"Usability", "Visual design"}, got.AwardCriteria)
	assert.Equal(t, "A joy to use on any device.", got.JudgeComments)
	assert.Equal(t, []string{"Craft CMS"}, got.Technologies)
	assert.Equal(t, []string{"Offline maps"}, got.InnovativeFeatures)
	assert.Equal(t, "Server rendered.", got.TechnicalDetails)
	assert.Equal(t, "Photography led.", got.DesignHighlights)
	assert.Equal(t, "Makes planning a trip effortless.", got.AIAnalysis)
	assert.Equal(t, []string{"social", "details", "analysis"}, steps)

	assert.Equal(t, c.Record.Key(), got.Key())
	assert.Nil(t, c.Record.SocialMedia, "candidate record must not be mutated")
	assert.Empty(t, c.Record.Technologies)
}

func TestEnrichWithoutAnalyzer(t *testing.T) {
	t.Parallel()

	doc := parse(t, cardPage)
	for name, analyzer := range map[string]award.Analyzer{
		"nil":      nil,
		"disabled": &fakeAnalyzer{},
	} {
		c := candidate(doc)
		c.Record.Agency = "Bam Creative"
		c.Record.URL = "https://www.margaretriver.com"
		got := New(analyzer, Config{}, nil).Enrich(context.Background(), c, doc)
		assert.Equal(t, c.Record.Key(), got.Key(), name)
		assert.Equal(t, c.Record.Company, got.Company, name)
		assert.Equal(t, c.Record.Agency, got.Agency, name)
		assert.Equal(t, c.Record.Rank, got.Rank, name)
		assert.Equal(t, c.Record.Description, got.Description, name)
		assert.Equal(t, c.Record.URL, got.URL, name)
		assert.Empty(t, got.Technologies, name)
		assert.Empty(t, got.InnovativeFeatures, name)
		assert.Empty(t, got.TechnicalDetails, name)
		assert.Empty(t, got.DesignHighlights, name)
		assert.Empty(t, got.AIAnalysis, name)
		assert.NotEmpty(t, got.AwardCriteria, name)
	}
}

func TestEnrichSkipsShortDescriptions(t *testing.T) {
	t.Parallel()

	doc := parse(t, cardPage)
	c := candidate(doc)
	c.Record.Description = strings.Repeat("x", 49)
	analyzer := &fakeAnalyzer{enabled: true}

	New(analyzer, Config{}, nil).Enrich(context.Background(), c, doc)
	assert.Empty(t, analyzer.calls)

	c.Record.Description = strings.Repeat("x", 50)
	New(analyzer, Config{}, nil).Enrich(context.Background(), c, doc)
	assert.Len(t, analyzer.calls, 1)
}

func TestEnrichSurvivesAnalyzerFailures(t *testing.T) {
	t.Parallel()

	doc := parse(t, cardPage)
	for name, analyzer := range map[string]*fakeAnalyzer{
		"error": {enabled: true, err: errors.New("503")},
		"panic": {enabled: true, panics: true},
	} {
		failed := false
		e := New(analyzer, Config{}, nil, WithObserver(func(step string, ok bool) {
			if step == "analysis" && !ok {
				failed = true
			}
		}))
		got := e.Enrich(context.Background(), candidate(doc), doc)
		assert.True(t, failed, name)
		assert.Empty(t, got.AIAnalysis, name)
		assert.Equal(t, "A joy to use on any device.", got.JudgeComments, name)
	}
}

func TestEnrichContextOnlySource(t *testing.T) {
	t.Parallel()

	doc := parse(t, cardPage)
	c := candidate(doc)
	c.Record.Year = 0
	analyzer := &fakeAnalyzer{enabled: true}

	got := New(analyzer, Config{}, nil).Enrich(context.Background(), c, doc)
	assert.Nil(t, got.SocialMedia)
	assert.Empty(t, analyzer.calls)
}

func TestEnrichStructuredCandidateFindsProjectNode(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<html><body>
<section class="winner">
  <h3>Koala</h3>
  <div class="judge-comments">Slick checkout.</div>
</section>
<div class="social"><a href="https://instagram.com/awa">IG</a></div>
</body></html>`)
	c := extract.Candidate{Record: award.Record{Year: 2024, Company: "Koala", Category: "eCommerce", Project: "Koala"}}

	got := New(nil, Config{}, nil).Enrich(context.Background(), c, doc)
	assert.Equal(t, "Slick checkout.", got.JudgeComments)
	assert.Nil(t, got.SocialMedia, "links outside the winner's section are ignored")
}

func TestEnrichSocialWidensToEnclosingSection(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<html><body>
<section class="category">
  <h2>Government</h2>
  <div class="winner-card"><h4>City of Perth</h4></div>
  <p class="share"><a href="https://www.linkedin.com/company/cityofperth">LinkedIn</a></p>
</section>
<footer><a href="https://twitter.com/webawards">Follow the awards</a></footer>
</body></html>`)
	c := extract.Candidate{
		Record:  award.Record{Year: 2023, Company: "City of Perth", Category: "Government", Project: "City of Perth", Rank: 1},
		Context: doc.Find(".winner-card"),
	}

	got := New(nil, Config{}, nil).Enrich(context.Background(), c, doc)
	require.NotNil(t, got.SocialMedia)
	assert.Equal(t, "https://www.linkedin.com/company/cityofperth", got.SocialMedia.LinkedIn)
	assert.Empty(t, got.SocialMedia.Twitter, "footer links belong to the page, not the winner")
}

func TestPlatform(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		href, class, want string
	}{
		"twitter":      {href: "https://twitter.com/a", want: "twitter"},
		"x":            {href: "https://x.com/a", want: "twitter"},
		"not x":        {href: "https://dropbox.com/a", want: ""},
		"mobile fb":    {href: "https://m.facebook.com/a", want: "facebook"},
		"class":        {href: "/follow", class: "btn instagram", want: "instagram"},
		"unrecognised": {href: "https://example.com", class: "social", want: ""},
		"linkedin www": {href: "https://www.linkedin.com/company/a", want: "linkedin"},
	}
	for name, tc := range tests {
		assert.Equal(t, tc.want, platform(tc.href, tc.class), name)
	}
}
