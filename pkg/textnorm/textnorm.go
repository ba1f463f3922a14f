// Package textnorm cleans scraped sermon text before chunking.
//
// Normalization is deliberately minimal. Earlier, more aggressive cleaning
// (stripping capitalized keywords, parentheticals, digits) destroyed
// legitimate scripture references and sentence structure, so only three
// targeted transforms remain: non-ASCII removal, bracketed-annotation
// removal, and a single leading label strip.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	nonASCII     = regexp.MustCompile(`[^\x00-\x7F]+`)
	bracketed    = regexp.MustCompile(`\[.*?\]`)
	leadingLabel = regexp.MustCompile(`(?i)^\s*(summary|summarized)\s*:?\s*`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Normalize returns cleaned text suitable for chunking and embedding.
// Empty input yields an empty string; Normalize never fails.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := nonASCII.ReplaceAllString(raw, "")

	// Bracketed spans are footnote markers and scraping junk, never content.
	s = bracketed.ReplaceAllString(s, " ")

	// Strip only a leading "Summary:" caption. Matching "summary" anywhere
	// else would erase legitimate sermon text.
	s = leadingLabel.ReplaceAllString(s, "")

	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
