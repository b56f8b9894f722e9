package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// sitemapPages are the navigable pages of the site, in sitemap order.
var sitemapPages = []string{"", "/quiz", "/result", "/report", "/books"}

// RobotsHandler serves robots.txt pointing crawlers at the sitemap.
func RobotsHandler(baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := strings.Join([]string{
			"User-agent: *",
			"Allow: /",
			"Sitemap: " + baseURL + "/sitemap.xml",
			"",
		}, "\n")

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		_, _ = w.Write([]byte(body))
	}
}

// SitemapHandler serves the XML sitemap for the site's public pages.
func SitemapHandler(baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC().Format(time.RFC3339)

		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
		b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
		for _, page := range sitemapPages {
			priority := "0.7"
			if page == "" {
				priority = "1.0"
			}
			fmt.Fprintf(&b,
				"  <url><loc>%s%s</loc><lastmod>%s</lastmod><changefreq>weekly</changefreq><priority>%s</priority></url>\n",
				baseURL, page, now, priority)
		}
		b.WriteString("</urlset>\n")

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		_, _ = w.Write([]byte(b.String()))
	}
}
