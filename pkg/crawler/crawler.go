// Package crawler turns a two-level site hierarchy (listing -> categories ->
// documents) into a deduplicated set of cleaned documents.
//
// Every page on the target site renders the full navigation menu, so naive
// link-following re-traverses hundreds of shared menu links from every page.
// The crawler therefore only trusts two sources of links: category entries on
// the listing page, and each category's own nav subtree (with a filtered
// content-region fallback). Links discovered on document pages are never
// followed.
package crawler

import (
	"context"
	"fmt"
	"log/slog"

	"sermonbot/models"
	"sermonbot/pkg/fetcher"
	"sermonbot/pkg/identity"
	"sermonbot/pkg/language"
	"sermonbot/pkg/textnorm"
	"sermonbot/pkg/urlx"
)

// Config bounds the crawl. BaseURL and ListingPath come from the site
// config; the rest are pruning thresholds.
type Config struct {
	BaseURL       string
	ListingPath   string
	MinContentLen int
	MinAnchorLen  int
	EnglishOnly   bool
}

// Crawler discovers and extracts documents. It holds no mutable state
// between runs; Crawl is self-contained.
type Crawler struct {
	loader fetcher.Loader
	cfg    Config
	gate   *language.Gate
	logger *slog.Logger
}

// New builds a crawler. gate may be nil when no language filtering is
// wanted; logger may be nil.
func New(loader fetcher.Loader, cfg Config, gate *language.Gate, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinAnchorLen <= 0 {
		cfg.MinAnchorLen = 2
	}
	return &Crawler{loader: loader, cfg: cfg, gate: gate, logger: logger}
}

// docLink is a discovered document candidate before it is visited.
type docLink struct {
	url      string
	title    string
	category string
}

// Crawl walks listing -> categories -> documents and returns the documents
// keyed the way the corpus snapshot is keyed (title, with a URL-slug suffix
// on collision), plus the categories encountered. A failing category or
// document is logged and skipped; only a failing listing page aborts the
// crawl.
func (c *Crawler) Crawl(ctx context.Context) (map[string]models.Document, []models.Category, error) {
	listingURL, err := urlx.Canonicalize(c.cfg.BaseURL, c.cfg.ListingPath)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid listing URL: %w", err)
	}

	categories, err := c.collectCategories(ctx, listingURL)
	if err != nil {
		return nil, nil, err
	}
	c.logger.Info("collected categories", "count", len(categories))

	links := c.collectDocumentLinks(ctx, listingURL, categories)
	c.logger.Info("collected unique document links", "count", len(links))

	documents := c.visitDocuments(ctx, links)
	return documents, categories, nil
}

// collectCategories reads the listing page once and keeps only nav entries
// that expand into sub-entries. Deduplicated by canonical URL, first-seen
// order preserved.
func (c *Crawler) collectCategories(ctx context.Context, listingURL string) ([]models.Category, error) {
	snap, err := c.loader.Load(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing page %s: %w", listingURL, err)
	}

	seen := make(map[string]struct{})
	var categories []models.Category
	for _, entry := range snap.Nav {
		if len(entry.Children) == 0 {
			continue
		}
		canonical, err := urlx.Canonicalize(c.cfg.BaseURL, entry.Href)
		if err != nil {
			continue
		}
		if canonical == listingURL {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}

		name := entry.Text
		if name == "" {
			name = urlx.HumanizeSlug(urlx.Slug(canonical))
		}
		categories = append(categories, models.Category{Name: name, CanonicalURL: canonical})
	}
	return categories, nil
}

// collectDocumentLinks visits each category page and gathers the document
// links scoped to that category's nav subtree, deduplicated globally by
// canonical URL. The first category to reach a document keeps it.
func (c *Crawler) collectDocumentLinks(ctx context.Context, listingURL string, categories []models.Category) []docLink {
	categoryURLs := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		categoryURLs[cat.CanonicalURL] = struct{}{}
	}

	seen := make(map[string]struct{})
	var links []docLink

	for _, cat := range categories {
		snap, err := c.loader.Load(ctx, cat.CanonicalURL)
		if err != nil {
			c.logger.Warn("failed to read category, skipping", "category", cat.Name, "url", cat.CanonicalURL, "error", err)
			continue
		}

		candidates := c.scopedLinks(snap, cat)
		if len(candidates) == 0 {
			// Structural scoping unavailable; fall back to the links of the
			// content region. The loop below strips categories, the listing
			// root and the category's own URL.
			candidates = snap.ContentLinks
		}

		for _, link := range candidates {
			canonical, err := urlx.Canonicalize(c.cfg.BaseURL, link.Href)
			if err != nil {
				continue
			}
			if canonical == listingURL || canonical == cat.CanonicalURL {
				continue
			}
			if _, isCategory := categoryURLs[canonical]; isCategory {
				continue
			}
			title := link.Text
			if len(title) < c.cfg.MinAnchorLen {
				continue
			}
			if _, dup := seen[canonical]; dup {
				continue
			}
			seen[canonical] = struct{}{}
			links = append(links, docLink{url: canonical, title: title, category: cat.Name})
		}
	}

	return links
}

// scopedLinks returns the children of the nav entry matching the category's
// canonical URL: the structural scoping the menu hierarchy gives for free.
func (c *Crawler) scopedLinks(snap *models.PageSnapshot, cat models.Category) []models.Link {
	for _, entry := range snap.Nav {
		canonical, err := urlx.Canonicalize(c.cfg.BaseURL, entry.Href)
		if err != nil {
			continue
		}
		if canonical == cat.CanonicalURL && len(entry.Children) > 0 {
			return entry.Children
		}
	}
	return nil
}

// visitDocuments loads every deduplicated document link exactly once and
// extracts title and body. Failures and too-short extractions are logged and
// skipped, never fatal.
func (c *Crawler) visitDocuments(ctx context.Context, links []docLink) map[string]models.Document {
	visited := make(map[string]struct{}, len(links))
	documents := make(map[string]models.Document, len(links))

	for _, link := range links {
		if _, done := visited[link.url]; done {
			continue
		}
		visited[link.url] = struct{}{}

		snap, err := c.loader.Load(ctx, link.url)
		if err != nil {
			c.logger.Warn("failed to scrape document, skipping", "title", link.title, "url", link.url, "error", err)
			continue
		}

		title := c.deriveTitle(snap, link)
		cleaned := textnorm.Normalize(snap.BodyText())

		if len(cleaned) < c.cfg.MinContentLen {
			c.logger.Warn("content too short, skipping",
				"url", link.url, "cleaned_len", len(cleaned), "min", c.cfg.MinContentLen)
			continue
		}
		if c.cfg.EnglishOnly && c.gate != nil && !c.gate.IsEnglish(cleaned) {
			c.logger.Warn("content failed language gate, skipping", "url", link.url, "title", title)
			continue
		}

		category := link.category
		if category == "" {
			category = "General"
		}

		key := title
		if existing, clash := documents[key]; clash && existing.CanonicalURL != link.url {
			// Two distinct documents derived the same title; keep both by
			// suffixing the newcomer with its URL slug.
			key = fmt.Sprintf("%s (%s)", title, urlx.Slug(link.url))
		}

		documents[key] = models.Document{
			ID:           identity.DocumentID(link.url),
			Title:        title,
			CanonicalURL: link.url,
			Category:     category,
			CleanedText:  cleaned,
		}
		c.logger.Info("scraped document", "title", title, "category", category)
	}

	return documents
}

// deriveTitle prefers the in-page heading, then the link text the category
// page showed, then a humanized URL slug.
func (c *Crawler) deriveTitle(snap *models.PageSnapshot, link docLink) string {
	if len(snap.Title) > 2 {
		return snap.Title
	}
	if link.title != "" {
		return link.title
	}
	return urlx.HumanizeSlug(urlx.Slug(link.url))
}
