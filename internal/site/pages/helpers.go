// Package pages holds the server-rendered HTML components of the site. The
// components live in *.templ files; run `templ generate` after editing them.
package pages

import (
	"net/url"
	"strconv"
	"strings"

	blogmodels "civicfund/internal/blog/models"
	campaignmodels "civicfund/internal/campaign/models"
	"civicfund/internal/site/format"
	"civicfund/internal/site/routes"
)

const siteName = "CivicFund"

// ResultsID is the element HTMX search requests swap.
const ResultsID = "blog-results"

func pageTitle(title string) string {
	if title == "" {
		return siteName
	}
	return title + " | " + siteName
}

// navRoutes are the marketing pages linked from the header.
func navRoutes() []routes.Route {
	var out []routes.Route
	for _, r := range routes.Grouped()[routes.SectionMarketing] {
		if r.Parameterized() || r.Name == "privacy" || r.Name == "terms" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func progressValue(c *campaignmodels.Campaign) string {
	return strconv.FormatFloat(c.ProgressPercent(), 'f', 0, 64)
}

func raisedLabel(c *campaignmodels.Campaign) string {
	return format.Money(format.Default, c.RaisedCents) + " raised of " + format.WholeMoney(format.Default, c.GoalCents)
}

func donorsLabel(c *campaignmodels.Campaign) string {
	return format.Count(format.Default, c.DonorCount) + " donors"
}

func percentLabel(c *campaignmodels.Campaign) string {
	return format.Percent(format.Default, c.ProgressPercent())
}

func categoryLabel(c blogmodels.CategoryCount) string {
	return c.Name + " (" + strconv.Itoa(c.Count) + ")"
}

func resultCount(total int) string {
	if total == 1 {
		return "1 post"
	}
	return strconv.Itoa(total) + " posts"
}

func byline(p *blogmodels.Post) string {
	return p.Author + " · " + p.PublishedAt.Format("January 2, 2006") + " · " + strconv.Itoa(p.ReadMinutes) + " min read"
}

// paragraphs splits post content on blank lines.
func paragraphs(content string) []string {
	var out []string
	for _, para := range strings.Split(content, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			out = append(out, para)
		}
	}
	return out
}

func tagURL(tag string) string {
	return "/blog?tag=" + url.QueryEscape(tag)
}
