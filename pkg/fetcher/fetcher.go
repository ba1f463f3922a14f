// Package fetcher loads pages and reduces them to the link graph and text
// the crawler needs. It is the only package that knows HTML exists; the
// crawler works purely on models.PageSnapshot.
package fetcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"sermonbot/models"
)

// Loader is the fetching collaborator: given a URL it returns the page's
// navigation structure, content links and visible text.
type Loader interface {
	Load(ctx context.Context, pageURL string) (*models.PageSnapshot, error)
}

// Config holds the selector set describing the site's structure. Defaults
// are filled from models.SiteConfig.
type Config struct {
	NavLinkSelector   string
	NavArrowSelector  string
	ContentSelector   string
	ParagraphSelector string
	UserAgent         string
	Timeout           time.Duration
}

// HTTPLoader fetches pages over plain HTTP and parses them with goquery.
type HTTPLoader struct {
	client *http.Client
	cfg    Config
}

// NewHTTPLoader builds a loader with a per-request timeout.
func NewHTTPLoader(cfg Config) *HTTPLoader {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPLoader{
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
	}
}

// Load fetches pageURL and extracts the page snapshot.
func (l *HTTPLoader) Load(ctx context.Context, pageURL string) (*models.PageSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	if l.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", l.cfg.UserAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s, status code: %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body for %s: %w", pageURL, err)
	}

	return l.parse(pageURL, string(body))
}

func (l *HTTPLoader) parse(pageURL, html string) (*models.PageSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML for %s: %w", pageURL, err)
	}

	snapshot := &models.PageSnapshot{
		Title: l.extractTitle(doc),
		Nav:   l.extractNav(doc),
	}

	content := doc.Find(l.cfg.ContentSelector)
	if content.Length() > 0 {
		content.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			snapshot.ContentLinks = append(snapshot.ContentLinks, models.Link{
				Href: href,
				Text: anchorText(a),
			})
		})

		content.Find(l.cfg.ParagraphSelector).Each(func(_ int, p *goquery.Selection) {
			if text := normalizeBlock(p.Text()); text != "" {
				snapshot.ContentBlocks = append(snapshot.ContentBlocks, text)
			}
		})

		snapshot.ContentText = normalizeBlock(content.Text())
	}

	// Readability gets the whole page as a last resort. Its failure is not
	// a page failure; the structured extraction above may still be enough.
	if parsed, err := url.Parse(pageURL); err == nil {
		parser := readability.NewParser()
		article, err := parser.Parse(strings.NewReader(html), parsed)
		if err == nil {
			snapshot.FullText = normalizeBlock(article.TextContent)
			if snapshot.Title == "" {
				snapshot.Title = strings.TrimSpace(article.Title)
			}
		}
	}

	return snapshot, nil
}

// titleSelectors is the in-page heading preference order.
var titleSelectors = []string{"h1", "h2", ".wsite-content-title", ".wsite-section-title"}

func (l *HTTPLoader) extractTitle(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		title := strings.TrimSpace(doc.Find(sel).First().Text())
		if len(title) > 2 {
			return normalizeBlock(title)
		}
	}
	return ""
}

// extractNav walks the navigation menu. An anchor containing the arrow
// marker expands into sub-entries and becomes a NavEntry with children; the
// children are the non-arrow nav anchors inside the same list item.
func (l *HTTPLoader) extractNav(doc *goquery.Document) []models.NavEntry {
	var entries []models.NavEntry

	doc.Find(l.cfg.NavLinkSelector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		entry := models.NavEntry{
			Link: models.Link{Href: href, Text: anchorText(a)},
		}

		if a.Find(l.cfg.NavArrowSelector).Length() > 0 {
			item := a.Closest("li")
			item.Find(l.cfg.NavLinkSelector).Each(func(_ int, child *goquery.Selection) {
				childHref, ok := child.Attr("href")
				if !ok || childHref == href {
					return
				}
				if child.Find(l.cfg.NavArrowSelector).Length() > 0 {
					return
				}
				entry.Children = append(entry.Children, models.Link{
					Href: childHref,
					Text: anchorText(child),
				})
			})
		}

		entries = append(entries, entry)
	})

	return entries
}

// anchorText prefers the dedicated title span the menu templates emit and
// falls back to the anchor's own text.
func anchorText(a *goquery.Selection) string {
	if span := a.Find(".wsite-menu-title").First(); span.Length() > 0 {
		if text := strings.TrimSpace(span.Text()); text != "" {
			return text
		}
	}
	return strings.TrimSpace(a.Text())
}

// normalizeBlock joins the non-empty lines of extracted text with single
// spaces. Heavier cleaning belongs to textnorm, not here.
func normalizeBlock(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(line)
		}
	}
	return b.String()
}
