// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog scans the university's catalog page for undergraduate
// bulletin links. It reports what the page offers; the batch download
// list is not changed by anything found here.
package catalog

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aamu-gdg/bulletin-fetcher/internal/bulletin"
	"github.com/aamu-gdg/bulletin-fetcher/internal/httputil"
)

// DefaultPageURL is the catalog landing page that links the bulletins.
const DefaultPageURL = "https://www.aamu.edu/academics/catalogs/"

// bulletinLink matches the file name of an undergraduate bulletin link.
var bulletinLink = regexp.MustCompile(`(?i)^undergraduate-bulletin-(\d{4}-\d{4})\.pdf$`)

// Link is a bulletin link found on the catalog page.
type Link struct {
	Range bulletin.YearRange
	URL   string
	Text  string
}

// Discover fetches pageURL and returns the bulletin links on it in page
// order. A range linked more than once is reported once. A non-2xx
// response is an error here: there is nothing to scan.
func Discover(ctx context.Context, client httputil.Doer, pageURL, userAgent string) ([]Link, error) {
	if pageURL == "" {
		pageURL = DefaultPageURL
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog URL: %w", err)
	}

	resp, err := httputil.Get(ctx, client, pageURL, userAgent)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog page: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("catalog page returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing catalog page: %w", err)
	}
	return extractLinks(doc, base), nil
}

func extractLinks(doc *goquery.Document, base *url.URL) []Link {
	var links []Link
	seen := make(map[bulletin.YearRange]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := base.Parse(href)
		if err != nil {
			return
		}
		m := bulletinLink.FindStringSubmatch(path.Base(u.Path))
		if m == nil {
			return
		}
		r, err := bulletin.ParseYearRange(m[1])
		if err != nil || seen[r] {
			return
		}
		seen[r] = true
		links = append(links, Link{
			Range: r,
			URL:   u.String(),
			Text:  normalizeSpace(s.Text()),
		})
	})
	return links
}

// Unknown returns the links whose range is not in the fixed download list.
func Unknown(links []Link) []Link {
	var out []Link
	for _, l := range links {
		if !bulletin.Known(l.Range) {
			out = append(out, l)
		}
	}
	return out
}

// Missing returns the known ranges that have no link in links.
func Missing(links []Link) []bulletin.YearRange {
	linked := make(map[bulletin.YearRange]bool, len(links))
	for _, l := range links {
		linked[l.Range] = true
	}
	var out []bulletin.YearRange
	for _, r := range bulletin.YearRanges() {
		if !linked[r] {
			out = append(out, r)
		}
	}
	return out
}

var spaceRun = regexp.MustCompile(`\s+`)

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
