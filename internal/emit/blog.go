package emit

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/JakeFAU/awards-crawler/internal/aggregate"
	"github.com/JakeFAU/awards-crawler/internal/award"
	"github.com/JakeFAU/awards-crawler/internal/rank"
)

type frontMatter struct {
	Title   string   `yaml:"title"`
	Date    string   `yaml:"date"`
	Tags    []string `yaml:"tags,flow"`
	Draft   bool     `yaml:"draft"`
	Summary string   `yaml:"summary"`
	Images  []string `yaml:"images,flow"`
}

const blogIntro = `# Australian Web Awards Winners

This comprehensive guide showcases the best of Australian web design and development as recognized by the Australian Web Awards.

`

func blogPost(records []award.Record, date time.Time) ([]byte, error) {
	fm := frontMatter{
		Title:   listName,
		Date:    date.Format(time.DateOnly),
		Tags:    []string{"awards", "web-design", "australia"},
		Summary: "A comprehensive collection of Australian Web Awards winners with detailed analysis",
		Images:  []string{},
	}
	if len(records) > 0 && records[0].ImageURL != "" {
		fm.Images = []string{records[0].ImageURL}
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("%w: front matter: %w", award.ErrSerialization, err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(blogIntro)

	for _, year := range aggregate.Partition(records) {
		fmt.Fprintf(&b, "\n## %d Awards\n\n", year.Year)
		writeTable(&b, summaryRows(year))
		b.WriteString("\n")
		for _, cat := range year.Categories {
			fmt.Fprintf(&b, "### %s\n\n", cat.Name)
			for _, rec := range cat.Records {
				writeWinner(&b, rec)
			}
		}
	}
	return []byte(b.String()), nil
}

func summaryRows(year aggregate.YearGroup) [][]string {
	rows := [][]string{{"Category", "Placement", "Project", "Agency"}}
	for _, cat := range year.Categories {
		for _, rec := range cat.Records {
			rows = append(rows, []string{cat.Name, rank.Label(rec.Rank), rec.Project, agencyOrDefault(rec.Agency)})
		}
	}
	return rows
}

// writeTable renders rows as a markdown table whose columns line up by
// display width, so emoji and CJK text do not skew the layout.
func writeTable(b *strings.Builder, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for i := range widths {
		widths[i] = 3
	}
	for _, row := range rows {
		for i, cell := range row {
			row[i] = strings.ReplaceAll(cell, "|", `\|`)
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	line := func(cells []string) {
		b.WriteString("|")
		for i, cell := range cells {
			b.WriteString(" ")
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	line(rows[0])
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	line(sep)
	for _, row := range rows[1:] {
		line(row)
	}
}

func writeWinner(b *strings.Builder, rec award.Record) {
	fmt.Fprintf(b, "#### %s: %s\n\n", rank.Label(rec.Rank), rec.Project)
	if rec.ImageURL != "" {
		fmt.Fprintf(b, "![%s](%s)\n\n", rec.Project, rec.ImageURL)
	}
	fmt.Fprintf(b, "**Agency:** %s\n\n", agencyOrDefault(rec.Agency))
	if rec.Description != "" {
		fmt.Fprintf(b, "%s\n\n", rec.Description)
	}
	if rec.URL != "" {
		fmt.Fprintf(b, "[Visit Website](%s)\n\n", rec.URL)
	}
	if len(rec.Technologies) > 0 {
		fmt.Fprintf(b, "**Technologies Used:** %s\n\n", strings.Join(rec.Technologies, ", "))
	}
	if rec.JudgeComments != "" {
		fmt.Fprintf(b, "> **Judges Say:** %s\n\n", rec.JudgeComments)
	}
	if len(rec.InnovativeFeatures) > 0 {
		b.WriteString("**Innovative Features:**\n\n")
		for _, f := range rec.InnovativeFeatures {
			fmt.Fprintf(b, "- %s\n", f)
		}
		b.WriteString("\n")
	}
	if rec.DesignHighlights != "" {
		fmt.Fprintf(b, "**Design Highlights:** %s\n\n", rec.DesignHighlights)
	}
	if links := socialLine(rec.SocialMedia); links != "" {
		fmt.Fprintf(b, "**Social Media:** %s\n\n", links)
	}
	if rec.AIAnalysis != "" {
		fmt.Fprintf(b, "**Why This Won:** %s\n\n", rec.AIAnalysis)
	}
	b.WriteString("---\n\n")
}

func socialLine(s *award.SocialLinks) string {
	if s == nil {
		return ""
	}
	var parts []string
	for _, l := range []struct{ name, href string }{
		{"Twitter", s.Twitter},
		{"Facebook", s.Facebook},
		{"LinkedIn", s.LinkedIn},
		{"Instagram", s.Instagram},
	} {
		if l.href != "" {
			parts = append(parts, fmt.Sprintf("[%s](%s)", l.name, l.href))
		}
	}
	return strings.Join(parts, " | ")
}

func agencyOrDefault(agency string) string {
	if strings.TrimSpace(agency) == "" {
		return "Not specified"
	}
	return agency
}
