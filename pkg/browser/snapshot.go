package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// Navigate loads url in the session's page and waits for the load event.
func (s *Session) Navigate(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.lastUsedAt = time.Now()

	waitUntil := playwright.WaitUntilStateLoad
	_, err := s.page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: waitUntil,
		Timeout:   playwright.Float(s.timeout),
	})
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", target, err)
	}

	s.currentURL = s.page.URL()
	return nil
}

// Observe harvests the current page into a PageSnapshot without navigating.
// The snapshot carries every anchor's href, visible text, and the text of
// its parent element, which downstream classification uses as surrounding
// context.
func (s *Session) Observe(ctx context.Context) (*PageSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lastUsedAt = time.Now()

	html, err := s.page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}

	title, err := s.page.Title()
	if err != nil {
		title = ""
	}

	pageURL := s.page.URL()
	snapshot, err := ParseSnapshot(html, pageURL)
	if err != nil {
		return nil, err
	}
	snapshot.Title = title
	return snapshot, nil
}

// Snapshot navigates to url and returns the resulting page snapshot.
func (s *Session) Snapshot(ctx context.Context, target string) (*PageSnapshot, error) {
	if err := s.Navigate(ctx, target); err != nil {
		return nil, err
	}
	return s.Observe(ctx)
}

// ParseSnapshot builds a PageSnapshot from raw HTML and the URL it was
// served from. Split out from Observe so it can be exercised without a live
// browser.
func ParseSnapshot(html, pageURL string) (*PageSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}

	snapshot := &PageSnapshot{
		URL:    pageURL,
		Domain: domainOf(pageURL),
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		snapshot.Title = t
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		snapshot.Links = append(snapshot.Links, Anchor{
			Href:        strings.TrimSpace(href),
			Text:        collapseSpace(sel.Text()),
			Surrounding: clampText(collapseSpace(sel.Parent().Text()), maxSurroundingLen),
		})
	})

	return snapshot, nil
}

// domainOf extracts the host portion of a URL, or "unknown" when the URL
// does not parse.
func domainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clampText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
