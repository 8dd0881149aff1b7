package enrich

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/awards-crawler/internal/extract"
)

const containerSelector = "article, section, li, div"

var (
	criteriaSelectors = []string{".criteria", ".award-criteria", "ul", "ol", ".details li"}
	commentSelectors  = []string{".judge-comments", ".comment", ".testimonial", ".feedback", "blockquote"}
)

type details struct {
	criteria []string
	comments string
}

// contextFor finds the container a candidate was read from. Structured
// candidates carry no node, so the element naming the project stands in.
func contextFor(c extract.Candidate, doc *goquery.Document) *goquery.Selection {
	node := c.Context
	if (node == nil || node.Length() == 0) && doc != nil {
		project := c.Record.Project
		node = doc.Find("body *").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return ownText(s) == project
		}).First()
	}
	if node == nil || node.Length() == 0 {
		return nil
	}
	if container := node.Closest(containerSelector); container.Length() > 0 {
		return container
	}
	return node
}

func awardDetails(scope *goquery.Selection) details {
	var d details
	if scope == nil {
		return d
	}
	for _, sel := range criteriaSelectors {
		if items := criteria(scope, sel); len(items) > 0 {
			d.criteria = items
			break
		}
	}
	for _, sel := range commentSelectors {
		if text := collapse(scope.Find(sel).First().Text()); text != "" {
			d.comments = text
			break
		}
	}
	return d
}

func criteria(scope *goquery.Selection, sel string) []string {
	var out []string
	scope.Find(sel).Each(func(_ int, s *goquery.Selection) {
		items := s
		if goquery.NodeName(s) != "li" {
			items = s.Find("li")
		}
		items.Each(func(_ int, li *goquery.Selection) {
			if text := collapse(li.Text()); text != "" {
				out = append(out, text)
			}
		})
	})
	return out
}

func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return collapse(b.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
