package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/awards-crawler/internal/award"
	"github.com/JakeFAU/awards-crawler/internal/rank"
)

const (
	headingSelector = "h1, h2, h3, h4, h5, h6"
	classedSelector = `.category, .award-category, .category-name, [class*="category"], [class*="award"]`
	listSelector    = "ul li, ol li"

	maxCategoryLen = 80
	maxTitleLen    = 120
)

// entrySelectors are tried in order inside a category section.
var entrySelectors = []string{
	`[class*="winner"], [class*="finalist"], [class*="entry"], [class*="project"]`,
	"article",
	"li",
}

const (
	titleSelectors   = `[class*="title"], [class*="name"], h2, h3, h4, h5, h6, strong, b, a`
	companySelectors = `[class*="company"], [class*="client"]`
	agencySelectors  = `[class*="agency"]`
)

var (
	agencyLine = regexp.MustCompile(`(?i)^(?:agency\s*[:\-]|by\s)\s*(.+)$`)
	titleBy    = regexp.MustCompile(`^(.+?)\s+by\s+(.+)$`)
)

// section is a category label plus the part of the page it governs.
type section struct {
	anchor *goquery.Selection
	scope  *goquery.Selection
	found  []Candidate
}

func (e *Extractor) headings(p *pageContext) []Candidate {
	var sections []section
	p.doc.Find(headingSelector).Each(func(_ int, h *goquery.Selection) {
		category := e.categoryLabel(h.Text())
		if category == "" {
			return
		}
		scope := h.NextUntil(stopAt(goquery.NodeName(h)))
		sections = append(sections, section{
			anchor: h,
			scope:  scope,
			found:  p.entries(scope, category, ""),
		})
	})
	return prune(sections)
}

func (e *Extractor) classed(p *pageContext) []Candidate {
	labels := p.doc.Find(classedSelector).Not(headingSelector).FilterFunction(func(_ int, el *goquery.Selection) bool {
		return e.categoryLabel(el.Text()) != ""
	})
	var sections []section
	labels.Each(func(_ int, el *goquery.Selection) {
		class, _ := el.Attr("class")
		scope := el.NextUntilSelection(labels)
		sections = append(sections, section{
			anchor: el,
			scope:  scope,
			found:  p.entries(scope, e.categoryLabel(el.Text()), class),
		})
	})
	return prune(sections)
}

func (e *Extractor) listItems(p *pageContext) []Candidate {
	var sections []section
	p.doc.Find(listSelector).Each(func(_ int, li *goquery.Selection) {
		label := ownText(li)
		if label == "" {
			label = collapse(li.Children().Not("ul, ol").First().Text())
		}
		if !listLabel(label) {
			return
		}
		if _, known := e.vocabulary[strings.ToLower(e.labels.Normalize(label))]; !known {
			return
		}
		scope := li.Children().Filter("ul, ol, div")
		sections = append(sections, section{
			anchor: li,
			scope:  scope,
			found:  p.entries(scope, label, ""),
		})
	})
	return prune(sections)
}

// prune drops sections that enclose another productive section, so page-level
// headings such as "2024 Awards" never claim the entries of their subsections.
func prune(sections []section) []Candidate {
	var out []Candidate
	for i, s := range sections {
		if len(s.found) == 0 {
			continue
		}
		enclosing := false
		for j, other := range sections {
			if i == j || len(other.found) == 0 {
				continue
			}
			node := other.anchor.Get(0)
			if s.scope.IsNodes(node) || s.scope.Contains(node) {
				enclosing = true
				break
			}
		}
		if !enclosing {
			out = append(out, s.found...)
		}
	}
	return out
}

// categoryLabel returns the trimmed label when text looks like a category.
func (e *Extractor) categoryLabel(raw string) string {
	label := collapse(raw)
	if label == "" || len(label) > maxCategoryLen {
		return ""
	}
	normalized := e.labels.Normalize(label)
	if normalized == "" || strings.Contains(normalized, "Winners") || strings.Contains(normalized, "Finalists") {
		return ""
	}
	return label
}

// entries reads winner entries from a category section.
func (p *pageContext) entries(scope *goquery.Selection, category, contextClass string) []Candidate {
	if scope.Length() == 0 {
		return nil
	}
	var out []Candidate
	locateEntries(scope).Each(func(_ int, item *goquery.Selection) {
		if c, ok := p.entry(item, category, contextClass); ok {
			out = append(out, c)
		}
	})
	return out
}

// locateEntries returns the elements matching the first productive entry
// selector, or an empty selection.
func locateEntries(scope *goquery.Selection) *goquery.Selection {
	for _, sel := range entrySelectors {
		found := scope.Filter(sel).AddSelection(scope.Find(sel))
		if found.Length() > 0 {
			return narrow(found)
		}
	}
	return scope.Slice(0, 0)
}

// narrow keeps the outermost matches, descending through list wrappers such
// as .winners-list whose children repeat one tag and class.
func narrow(found *goquery.Selection) *goquery.Selection {
	out := found.Slice(0, 0)
	outermost(found).Each(func(_ int, m *goquery.Selection) {
		inner := found.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return m.Contains(s.Get(0))
		})
		if repeats(outermost(inner)) {
			out = out.AddSelection(narrow(inner))
			return
		}
		out = out.AddSelection(m)
	})
	return out
}

func outermost(found *goquery.Selection) *goquery.Selection {
	return found.FilterFunction(func(i int, s *goquery.Selection) bool {
		node := s.Get(0)
		for j := range found.Nodes {
			if j != i && found.Eq(j).Contains(node) {
				return false
			}
		}
		return true
	})
}

// repeats reports whether at least two elements share a tag and leading class.
func repeats(s *goquery.Selection) bool {
	seen := make(map[string]struct{}, s.Length())
	dup := false
	s.EachWithBreak(func(_ int, el *goquery.Selection) bool {
		sig := goquery.NodeName(el)
		if class, ok := el.Attr("class"); ok {
			if fields := strings.Fields(class); len(fields) > 0 {
				sig += "." + fields[0]
			}
		}
		if _, ok := seen[sig]; ok {
			dup = true
			return false
		}
		seen[sig] = struct{}{}
		return true
	})
	return dup
}

func (p *pageContext) entry(item *goquery.Selection, category, contextClass string) (Candidate, bool) {
	project, agency := title(item, category)
	if project == "" {
		return Candidate{}, false
	}
	company := firstText(item, companySelectors)
	if company == "" {
		company = project
	}
	if agency == "" {
		agency = agencyOf(item, project)
	}
	class, _ := item.Attr("class")
	info := p.additionalInfo(item)
	rec := award.Record{
		Year:        p.source.Year,
		Company:     company,
		Agency:      agency,
		Category:    category,
		Project:     project,
		Rank:        rank.Classify(item.Text(), strings.TrimSpace(class+" "+contextClass)),
		URL:         info.url,
		Description: info.description,
		ImageURL:    info.imageURL,
	}
	if !rec.Valid() {
		return Candidate{}, false
	}
	return Candidate{Record: rec, Context: item}, true
}

// title picks the entry name, splitting "Project by Agency" forms.
func title(item *goquery.Selection, category string) (string, string) {
	var project string
	item.Find(titleSelectors).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := collapse(s.Text())
		if t == "" || t == category || len(t) > maxTitleLen {
			return true
		}
		project = t
		return false
	})
	if project == "" && item.Is("a, strong, b") {
		if t := collapse(item.Text()); len(t) <= maxTitleLen && t != category {
			project = t
		}
	}
	if project == "" {
		return "", ""
	}
	if m := titleBy.FindStringSubmatch(project); m != nil {
		return m[1], m[2]
	}
	return project, ""
}

func agencyOf(item *goquery.Selection, project string) string {
	if agency := firstText(item, agencySelectors); agency != "" {
		if m := agencyLine.FindStringSubmatch(agency); m != nil {
			return m[1]
		}
		return agency
	}
	prefix := project + " by "
	for _, line := range strings.Split(item.Text(), "\n") {
		line = collapse(line)
		if line == "" || len(line) > maxTitleLen {
			continue
		}
		if m := agencyLine.FindStringSubmatch(line); m != nil {
			return m[1]
		}
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}

type entryInfo struct {
	url         string
	description string
	imageURL    string
}

// additionalInfo reads the nearest link, paragraph and image of an entry.
func (p *pageContext) additionalInfo(item *goquery.Selection) entryInfo {
	var info entryInfo
	link := item.Filter("a[href]").AddSelection(item.Find("a[href]")).First()
	if href, ok := link.Attr("href"); ok {
		info.url = p.resolve(href)
	}
	info.description = collapse(item.Find("p").First().Text())
	img := item.Filter("img").AddSelection(item.Find("img")).First()
	src, ok := img.Attr("src")
	if !ok || strings.HasPrefix(src, "data:") {
		src, _ = img.Attr("data-src")
	}
	info.imageURL = p.resolve(src)
	return info
}

func firstText(item *goquery.Selection, selector string) string {
	var out string
	item.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out = collapse(s.Text())
		return out == ""
	})
	return out
}

// ownText concatenates the direct text children of a node.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
			b.WriteByte(' ')
		}
	})
	return collapse(b.String())
}

// stopAt returns the selector for headings of the same or higher level.
func stopAt(heading string) string {
	if len(heading) != 2 || heading[0] != 'h' || heading[1] < '1' || heading[1] > '6' {
		return headingSelector
	}
	level := int(heading[1] - '0')
	parts := make([]string, 0, level)
	for i := 1; i <= level; i++ {
		parts = append(parts, "h"+string(rune('0'+i)))
	}
	return strings.Join(parts, ", ")
}

// listLabel applies the length and content limits for list-item labels.
func listLabel(text string) bool {
	return len(text) > 3 && len(text) < 50 &&
		!strings.Contains(text, "http") &&
		!strings.Contains(text, "@") &&
		!strings.Contains(text, "$")
}
