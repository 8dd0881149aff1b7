package enrich

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

var socialSelectors = []string{
	`a[href*="twitter.com"]`,
	`a[href*="x.com"]`,
	`a[href*="facebook.com"]`,
	`a[href*="linkedin.com"]`,
	`a[href*="instagram.com"]`,
	".social a",
	".social-media a",
	".social-links a",
	"a.twitter",
	"a.facebook",
	"a.linkedin",
	"a.instagram",
}

// sectionSelector bounds how far the social link search widens.
const sectionSelector = "section, article"

// socialLinks scans the candidate's container, then the closest enclosing
// section when the container has none. Page chrome outside that section is
// never consulted, so site-wide footer links do not attach to every winner.
func socialLinks(scope *goquery.Selection) award.SocialLinks {
	if scope == nil || scope.Length() == 0 {
		return award.SocialLinks{}
	}
	if links := scanSocial(scope); !links.Empty() {
		return links
	}
	section := scope.Parent().Closest(sectionSelector)
	if section.Length() == 0 {
		return award.SocialLinks{}
	}
	return scanSocial(section)
}

func scanSocial(root *goquery.Selection) award.SocialLinks {
	var links award.SocialLinks
	for _, sel := range socialSelectors {
		root.Find(sel).Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			href = strings.TrimSpace(href)
			if !ok || href == "" {
				return
			}
			class, _ := a.Attr("class")
			switch platform(href, class) {
			case "twitter":
				setOnce(&links.Twitter, href)
			case "facebook":
				setOnce(&links.Facebook, href)
			case "linkedin":
				setOnce(&links.LinkedIn, href)
			case "instagram":
				setOnce(&links.Instagram, href)
			}
		})
	}
	return links
}

// platform classifies a link by host, then by class name.
func platform(href, class string) string {
	if u, err := url.Parse(href); err == nil {
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		switch {
		case host == "twitter.com" || host == "x.com" || strings.HasSuffix(host, ".twitter.com"):
			return "twitter"
		case host == "facebook.com" || strings.HasSuffix(host, ".facebook.com"):
			return "facebook"
		case host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com"):
			return "linkedin"
		case host == "instagram.com" || strings.HasSuffix(host, ".instagram.com"):
			return "instagram"
		}
	}
	for _, name := range strings.Fields(strings.ToLower(class)) {
		switch name {
		case "twitter", "facebook", "linkedin", "instagram":
			return name
		}
	}
	return ""
}

func setOnce(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
