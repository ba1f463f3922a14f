package fetcher

import (
	"testing"
	"time"
)

const samplePage = `
<html><body>
<ul class="wsite-menu">
  <li>
    <a class="wsite-menu-subitem" href="/faith-series.html">
      <span class="wsite-menu-title">Faith Series</span>
      <span class="wsite-menu-arrow">&gt;</span>
    </a>
    <ul>
      <li><a class="wsite-menu-subitem" href="/faith.html"><span class="wsite-menu-title">On Faith</span></a></li>
      <li><a class="wsite-menu-subitem" href="/doubt.html"><span class="wsite-menu-title">On Doubt</span></a></li>
    </ul>
  </li>
  <li><a class="wsite-menu-subitem" href="/about.html"><span class="wsite-menu-title">About</span></a></li>
</ul>
<div id="wsite-content">
  <h2 class="wsite-content-title">On Faith</h2>
  <div class="paragraph">Faith is trust in what is unseen.</div>
  <div class="paragraph">It grows by hearing.</div>
  <a href="/grace.html">On Grace</a>
</div>
</body></html>`

func testLoader() *HTTPLoader {
	return NewHTTPLoader(Config{
		NavLinkSelector:   "a.wsite-menu-subitem",
		NavArrowSelector:  "span.wsite-menu-arrow",
		ContentSelector:   "#wsite-content",
		ParagraphSelector: "div.paragraph",
		Timeout:           5 * time.Second,
	})
}

func TestParseNavTree(t *testing.T) {
	snap, err := testLoader().parse("https://example.com/categories.html", samplePage)
	if err != nil {
		t.Fatalf("parse() error: %v", err)
	}

	category := -1
	for i, entry := range snap.Nav {
		if entry.Href == "/faith-series.html" {
			category = i
			break
		}
	}
	if category < 0 {
		t.Fatal("category entry /faith-series.html not found in nav")
	}

	entry := snap.Nav[category]
	if entry.Text != "Faith Series" {
		t.Errorf("category text = %q, want %q", entry.Text, "Faith Series")
	}
	if len(entry.Children) != 2 {
		t.Fatalf("category children = %d, want 2", len(entry.Children))
	}
	if entry.Children[0].Href != "/faith.html" || entry.Children[1].Href != "/doubt.html" {
		t.Errorf("unexpected children: %+v", entry.Children)
	}

	// The flat About link must appear without children.
	for _, e := range snap.Nav {
		if e.Href == "/about.html" && len(e.Children) != 0 {
			t.Errorf("flat nav link got children: %+v", e.Children)
		}
	}
}

func TestParseContent(t *testing.T) {
	snap, err := testLoader().parse("https://example.com/faith.html", samplePage)
	if err != nil {
		t.Fatalf("parse() error: %v", err)
	}

	if snap.Title != "On Faith" {
		t.Errorf("title = %q, want %q", snap.Title, "On Faith")
	}
	if len(snap.ContentBlocks) != 2 {
		t.Fatalf("content blocks = %d, want 2", len(snap.ContentBlocks))
	}
	if snap.ContentBlocks[0] != "Faith is trust in what is unseen." {
		t.Errorf("first block = %q", snap.ContentBlocks[0])
	}

	var found bool
	for _, link := range snap.ContentLinks {
		if link.Href == "/grace.html" && link.Text == "On Grace" {
			found = true
		}
	}
	if !found {
		t.Errorf("content link /grace.html not extracted: %+v", snap.ContentLinks)
	}

	body := snap.BodyText()
	if body != "Faith is trust in what is unseen.\n\nIt grows by hearing." {
		t.Errorf("BodyText() = %q", body)
	}
}
