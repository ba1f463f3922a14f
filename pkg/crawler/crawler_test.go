package crawler

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"sermonbot/models"
)

const base = "https://sermons.test"

// fakeLoader serves canned snapshots keyed by canonical URL and records how
// often each URL was requested.
type fakeLoader struct {
	pages map[string]*models.PageSnapshot
	fail  map[string]bool
	loads map[string]int
}

func (f *fakeLoader) Load(_ context.Context, url string) (*models.PageSnapshot, error) {
	if f.loads == nil {
		f.loads = make(map[string]int)
	}
	f.loads[url]++
	if f.fail[url] {
		return nil, fmt.Errorf("navigation timeout for %s", url)
	}
	snap, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no such page %s", url)
	}
	return snap, nil
}

func sermonBody(topic string) []string {
	return []string{strings.Repeat(topic+" is spoken of here. ", 10)}
}

// siteNav is the shared navigation menu every page renders: two categories,
// one flat link, and one document (/faith.html) reachable from both
// categories.
func siteNav() []models.NavEntry {
	return []models.NavEntry{
		{
			Link: models.Link{Href: "/faith-series.html", Text: "Faith Series"},
			Children: []models.Link{
				{Href: "/faith.html", Text: "On Faith"},
				{Href: "/doubt.html", Text: "On Doubt"},
			},
		},
		{
			Link: models.Link{Href: "/grace-series.html", Text: "Grace Series"},
			Children: []models.Link{
				{Href: "/grace.html", Text: "On Grace"},
				{Href: "/faith.html", Text: "On Faith"},
			},
		},
		{Link: models.Link{Href: "/about.html", Text: "About"}},
	}
}

func testSite() *fakeLoader {
	nav := siteNav()
	return &fakeLoader{
		pages: map[string]*models.PageSnapshot{
			base + "/categories.html":   {Nav: nav},
			base + "/faith-series.html": {Nav: nav},
			base + "/grace-series.html": {Nav: nav},
			base + "/faith.html":        {Title: "On Faith", Nav: nav, ContentBlocks: sermonBody("faith")},
			base + "/doubt.html":        {Title: "On Doubt", Nav: nav, ContentBlocks: sermonBody("doubt")},
			base + "/grace.html":        {Title: "On Grace", Nav: nav, ContentBlocks: sermonBody("grace")},
		},
		fail: map[string]bool{},
	}
}

func testConfig() Config {
	return Config{
		BaseURL:       base,
		ListingPath:   "/categories.html",
		MinContentLen: 50,
		MinAnchorLen:  2,
	}
}

func TestCrawlDiscoversAndDeduplicates(t *testing.T) {
	loader := testSite()
	c := New(loader, testConfig(), nil, nil)

	docs, categories, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}

	if len(categories) != 2 {
		t.Errorf("categories = %d, want 2 (flat nav links are not categories)", len(categories))
	}
	if len(docs) != 3 {
		t.Fatalf("documents = %d, want 3: %v", len(docs), keys(docs))
	}

	// /faith.html is reachable from both categories but must be visited once
	// and labeled with the first-seen category.
	faith, ok := docs["On Faith"]
	if !ok {
		t.Fatal("document On Faith missing")
	}
	if loader.loads[base+"/faith.html"] != 1 {
		t.Errorf("/faith.html loaded %d times, want 1", loader.loads[base+"/faith.html"])
	}
	if faith.Category != "Faith Series" {
		t.Errorf("shared document category = %q, want first-seen %q", faith.Category, "Faith Series")
	}
	if faith.CanonicalURL != base+"/faith.html" {
		t.Errorf("canonical url = %q", faith.CanonicalURL)
	}
	if faith.ID == "" || faith.ID != docs["On Faith"].ID {
		t.Error("document id must be stable and non-empty")
	}
}

func TestCrawlCategoryFailureIsSkipped(t *testing.T) {
	loader := testSite()
	loader.fail[base+"/grace-series.html"] = true
	c := New(loader, testConfig(), nil, nil)

	docs, _, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}

	// Faith Series still contributes its two documents.
	if len(docs) != 2 {
		t.Errorf("documents = %d, want 2 after one category failed: %v", len(docs), keys(docs))
	}
}

func TestCrawlDocumentFailureIsSkipped(t *testing.T) {
	loader := testSite()
	loader.fail[base+"/doubt.html"] = true
	c := New(loader, testConfig(), nil, nil)

	docs, _, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}
	if _, ok := docs["On Doubt"]; ok {
		t.Error("failed document must not appear in the result")
	}
	if len(docs) != 2 {
		t.Errorf("documents = %d, want 2", len(docs))
	}
}

func TestCrawlListingFailureAborts(t *testing.T) {
	loader := testSite()
	loader.fail[base+"/categories.html"] = true
	c := New(loader, testConfig(), nil, nil)

	if _, _, err := c.Crawl(context.Background()); err == nil {
		t.Fatal("Crawl() must fail when the listing page cannot be loaded")
	}
}

func TestCrawlRejectsShortContent(t *testing.T) {
	loader := testSite()
	loader.pages[base+"/doubt.html"] = &models.PageSnapshot{
		Title:         "On Doubt",
		ContentBlocks: []string{"too short"},
	}
	c := New(loader, testConfig(), nil, nil)

	docs, _, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}
	if _, ok := docs["On Doubt"]; ok {
		t.Error("document below the minimum content length must be discarded")
	}
}

func TestCrawlContentFallbackExcludesNavNoise(t *testing.T) {
	nav := siteNav()
	// The hope category's own page is missing its nav node, so the crawler
	// must fall back to content-region links and filter out the categories,
	// the listing root, the page itself, and anchors with unusable text.
	loader := &fakeLoader{
		pages: map[string]*models.PageSnapshot{
			base + "/categories.html": {Nav: []models.NavEntry{
				{
					Link:     models.Link{Href: "/hope-series.html", Text: "Hope Series"},
					Children: []models.Link{{Href: "/hope.html", Text: "On Hope"}},
				},
				nav[0],
			}},
			base + "/hope-series.html": {
				ContentLinks: []models.Link{
					{Href: "/hope.html", Text: "On Hope"},
					{Href: "/faith-series.html", Text: "Faith Series"},
					{Href: "/categories.html", Text: "All Categories"},
					{Href: "/hope-series.html", Text: "Hope Series"},
					{Href: "/x.html", Text: "x"},
				},
			},
			base + "/faith-series.html": {Nav: nav},
			base + "/hope.html":         {Title: "On Hope", ContentBlocks: sermonBody("hope")},
			base + "/faith.html":        {Title: "On Faith", Nav: nav, ContentBlocks: sermonBody("faith")},
			base + "/doubt.html":        {Title: "On Doubt", Nav: nav, ContentBlocks: sermonBody("doubt")},
		},
		fail: map[string]bool{},
	}
	c := New(loader, testConfig(), nil, nil)

	docs, _, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}

	hope, ok := docs["On Hope"]
	if !ok {
		t.Fatalf("fallback document On Hope missing: %v", keys(docs))
	}
	if hope.Category != "Hope Series" {
		t.Errorf("category = %q, want Hope Series", hope.Category)
	}
	if loader.loads[base+"/x.html"] != 0 {
		t.Error("short-anchor link must never be visited")
	}
	if loader.loads[base+"/categories.html"] != 1 {
		t.Errorf("listing loaded %d times, want exactly 1", loader.loads[base+"/categories.html"])
	}
}

func TestCrawlTitleCollisionKeepsBoth(t *testing.T) {
	loader := testSite()
	// Two distinct URLs that derive the same in-page title.
	loader.pages[base+"/grace.html"] = &models.PageSnapshot{
		Title: "On Faith", ContentBlocks: sermonBody("grace"),
	}
	c := New(loader, testConfig(), nil, nil)

	docs, _, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}

	if len(docs) != 3 {
		t.Fatalf("documents = %d, want 3 (collision must not drop one): %v", len(docs), keys(docs))
	}
	if _, ok := docs["On Faith"]; !ok {
		t.Error("first document lost its key")
	}
	if _, ok := docs["On Faith (grace)"]; !ok {
		t.Errorf("colliding document missing suffixed key: %v", keys(docs))
	}
}

func TestCrawlTitleFallbacks(t *testing.T) {
	loader := testSite()
	// No in-page heading: link text wins.
	loader.pages[base+"/doubt.html"] = &models.PageSnapshot{ContentBlocks: sermonBody("doubt")}
	c := New(loader, testConfig(), nil, nil)

	docs, _, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}
	if _, ok := docs["On Doubt"]; !ok {
		t.Errorf("link-text title fallback failed: %v", keys(docs))
	}
}

func keys(m map[string]models.Document) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
