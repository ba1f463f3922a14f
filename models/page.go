package models

// Link is a single anchor discovered on a page.
type Link struct {
	Href string
	Text string
}

// NavEntry is a navigation-menu anchor together with the anchors nested under
// it. A non-empty Children slice is what distinguishes a category entry from
// a plain document link.
type NavEntry struct {
	Link
	Children []Link
}

// PageSnapshot is everything the crawler needs from one fetched page: title
// candidates, the navigation link tree, the links and text of the content
// region, and a whole-page fallback text.
type PageSnapshot struct {
	// Title is the best in-page heading, empty when none was found.
	Title string
	// Nav holds the site navigation entries with their subtree structure.
	Nav []NavEntry
	// ContentLinks are anchors found inside the content region only.
	ContentLinks []Link
	// ContentBlocks are the text blocks of the dedicated content region, in
	// document order.
	ContentBlocks []string
	// ContentText is broader content-region text, used when no blocks
	// matched the configured selector.
	ContentText string
	// FullText is the readability-extracted whole-page text, the last-resort
	// body source.
	FullText string
}

// ContentText or FullText may be empty; callers fall through the chain
// ContentBlocks -> ContentText -> FullText.
func (p *PageSnapshot) BodyText() string {
	if len(p.ContentBlocks) > 0 {
		var out string
		for i, b := range p.ContentBlocks {
			if i > 0 {
				out += "\n\n"
			}
			out += b
		}
		return out
	}
	if p.ContentText != "" {
		return p.ContentText
	}
	return p.FullText
}
