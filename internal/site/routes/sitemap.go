package routes

import (
	"encoding/xml"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Entry is a concrete page added to the sitemap next to the indexed routes,
// such as an individual campaign or blog post.
type Entry struct {
	Path     string
	Modified time.Time
}

// Sitemap renders the indexed routes followed by entries as a sitemap
// document rooted at baseURL.
func Sitemap(baseURL string, entries ...Entry) ([]byte, error) {
	base := strings.TrimSuffix(baseURL, "/")
	set := urlSet{XMLNS: sitemapNS}
	for _, r := range all {
		if !r.Indexed {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{Loc: base + r.Path})
	}
	for _, e := range entries {
		u := sitemapURL{Loc: base + e.Path}
		if !e.Modified.IsZero() {
			u.LastMod = e.Modified.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
