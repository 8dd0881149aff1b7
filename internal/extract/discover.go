package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// discover collects canonical labels that look like categories, in document
// order and without duplicates.
func (e *Extractor) discover(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(label string) {
		if label == "" {
			return
		}
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}

	doc.Find(headingSelector).Each(func(_ int, h *goquery.Selection) {
		label := e.labels.Normalize(h.Text())
		if strings.Contains(label, "Winners") || strings.Contains(label, "Finalists") {
			return
		}
		add(label)
	})
	doc.Find(classedSelector).Each(func(_ int, el *goquery.Selection) {
		if text := collapse(el.Text()); len(text) <= maxCategoryLen {
			add(e.labels.Normalize(text))
		}
	})
	doc.Find(listSelector).Each(func(_ int, li *goquery.Selection) {
		if text := collapse(li.Text()); listLabel(text) {
			add(e.labels.Normalize(text))
		}
	})
	return out
}
