package registry

import (
	"fmt"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

const (
	winnersBase = "https://webawards.com.au/winners/"
	archiveBase = "https://web.archive.org/web/"
	siteBase    = "https://webawards.com.au/"
)

var archivedYears = []int{2018, 2014, 2013, 2012, 2011, 2010, 2009}

var contextPages = []string{"categories", "awards", "about", "hall-of-fame", "judges", "criteria"}

func defaultSources() []award.Source {
	sources := []award.Source{{Year: 2024, Locator: winnersBase}}
	for year := 2023; year >= 2009; year-- {
		sources = append(sources, award.Source{Year: year, Locator: fmt.Sprintf("%s%d/", winnersBase, year)})
	}
	for _, year := range archivedYears {
		sources = append(sources, award.Source{
			Year:    year,
			Locator: fmt.Sprintf("%s%d1201000000*/%s%d/", archiveBase, year, winnersBase, year),
		})
	}
	sources = append(sources,
		award.Source{Year: 2018, Locator: archiveBase + "20181015152124/" + winnersBase},
		award.Source{Year: 2014, Locator: archiveBase + "20141015152124/" + winnersBase},
	)
	for _, page := range contextPages {
		sources = append(sources, award.Source{Year: 0, Locator: siteBase + page + "/"})
	}
	return sources
}

var defaultVocabulary = []string{
	"Site of the Year",
	"McFarlane Prize",
	"Agency",
	"Agency of the Year",
	"Community & Culture",
	"Construction & Manufacturing",
	"Education",
	"Enterprise Business",
	"Entertainment & Events",
	"Financial Services",
	"Government",
	"Health & Wellness",
	"Hospitality",
	"Innovation",
	"Not for Profit",
	"Professional Services",
	"Retail & eCommerce",
	"E-Commerce",
	"Science & Sustainability",
	"Sport & Recreation",
	"Start-up",
	"Startup",
	"Travel & Tourism",
	"Technology",
	"Technology (IT / Software)",
	"Mobile App",
	"Web App",
	"Drupal",
	"Headless",
	"Shopify",
	"WordPress",
	"Small Business",
	"Medium Business",
	"Large Business",
	"SEO Effectiveness",
	"Accessibility Award",
	"Content Award",
	"Design Award",
	"Development Award",
	"User Experience Award",
	"Social Media",
	"Digital Marketing",
	"Personal",
	"Commercial",
	"Winner",
	"Finalists",
	"Shoestring Website",
	"Medium-to-Large Business",
}

var defaultSiteOfTheYearAliases = []string{"McFarlane", "Site of the Year", "best website"}

func defaultSynonyms() map[string]string {
	return map[string]string{
		"Agency of the Year":       "Agency",
		"Government Sector":        "Government",
		"Non-profit":               "Not for Profit",
		"NFP":                      "Not for Profit",
		"Not-for-profit":           "Not for Profit",
		"Charity":                  "Not for Profit",
		"eCommerce":                "E-Commerce",
		"E-commerce":               "E-Commerce",
		"Ecommerce":                "E-Commerce",
		"Mobile":                   "Mobile App",
		"Small Business Website":   "Small Business",
		"Medium Business Website":  "Medium Business",
		"Large Business Website":   "Large Business",
		"Small to Medium Business": "Medium Business",
		"Tech/IT":                  "Technology (IT / Software)",
		"Business":                 "Commercial",
		"Social":                   "Social Media",
		"Events":                   "Entertainment & Events",
		"Arts":                     "Entertainment & Events",
		"Tourism":                  "Travel & Tourism",
		"Banking":                  "Financial Services",
		"Insurance":                "Financial Services",
		"Health":                   "Health & Wellness",
		"Medical":                  "Health & Wellness",
		"Culture":                  "Community & Culture",
		"Community":                "Community & Culture",
		"Sport":                    "Sport & Recreation",
		"Recreation":               "Sport & Recreation",
		"UX":                       "User Experience Award",
		"Web Design":               "Design Award",
		"Development":              "Development Award",
		"SEO":                      "SEO Effectiveness",
		"Accessibility":            "Accessibility Award",
	}
}
