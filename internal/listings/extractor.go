// Package listings extracts marketplace listing candidates from the
// HTML body of an OLX alert email.
package listings

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

const (
	// Selectors mirror the patterns OLX uses in its alert emails:
	// plain anchors to the marketplace, or listing/ad card containers.
	anchorSelector    = `a[href*="olx.pt"], a[href*="olx.com"]`
	containerSelector = `.listing-item, .ad-item, [class*="listing"], [class*="ad"]`
	containerLink     = `a[href*="olx"]`
	containerTitle    = `h2, h3, .title`
)

// ParsedListing is one normalized listing candidate. Price, Location
// and PostedAt are best-effort; Location == "" means absent.
type ParsedListing struct {
	Title    string
	URL      string
	Price    *float64
	Location string
	PostedAt *time.Time
}

// Extractor scans HTML for listing candidates. The clock is injectable
// so relative ages ("há 2 dias") resolve deterministically in tests.
type Extractor struct {
	now func() time.Time
}

// NewExtractor creates an extractor using the wall clock.
func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// Extract returns the listings found in html, in document discovery
// order, deduplicated by canonical URL (first occurrence wins). A
// fallbackDate (typically the email's own Date header) substitutes for
// listings whose surrounding text carries no date. Malformed input
// yields an empty slice, never an error.
func (e *Extractor) Extract(html string, fallbackDate *time.Time) []ParsedListing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logrus.Debugf("Failed to parse listing HTML: %v", err)
		return nil
	}

	var results []ParsedListing
	seen := make(map[string]struct{})

	add := func(title, href, context string) {
		url, ok := CanonicalURL(href)
		if !ok {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}

		postedAt := e.parsePostedAt(context)
		if postedAt == nil {
			postedAt = fallbackDate
		}

		results = append(results, ParsedListing{
			Title:    title,
			URL:      url,
			Price:    ParsePrice(context),
			Location: ParseLocation(context),
			PostedAt: postedAt,
		})
	}

	// Strategy 1: every marketplace anchor is a candidate; heuristics
	// run over the link's immediate parent text.
	doc.Find(anchorSelector).Each(func(_ int, link *goquery.Selection) {
		href, exists := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if !exists || href == "" || title == "" {
			return
		}

		context := strings.TrimSpace(link.Parent().Text())
		if context == "" {
			context = title
		}
		add(title, href, context)
	})

	// Strategy 2: listing/ad containers; the title falls back to a
	// heading child when the link itself has no text, and heuristics
	// see the whole container.
	doc.Find(containerSelector).Each(func(_ int, container *goquery.Selection) {
		link := container.Find(containerLink).First()
		if link.Length() == 0 {
			return
		}

		href, exists := link.Attr("href")
		if !exists || href == "" {
			return
		}

		title := strings.TrimSpace(link.Text())
		if title == "" {
			title = strings.TrimSpace(container.Find(containerTitle).First().Text())
		}
		if title == "" {
			return
		}

		add(title, href, strings.TrimSpace(container.Text()))
	})

	return results
}
