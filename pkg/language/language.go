// Package language gates crawled documents on language. The corpus is
// English; when extraction picks up navigation junk or rendering artifacts
// the resulting "text" often stops looking like English at all, so a failed
// language check is treated like any other extraction failure.
package language

import (
	lingua "github.com/pemistahl/lingua-go"
)

// Gate decides whether cleaned text is confidently English.
type Gate struct {
	detector lingua.LanguageDetector
	// minConfidence below which the text is rejected.
	minConfidence float64
}

// NewGate builds a detector over a small set of plausible languages. A
// detector restricted to few candidates is both faster and more decisive
// than one covering every language lingua knows.
func NewGate(minConfidence float64) *Gate {
	if minConfidence <= 0 {
		minConfidence = 0.7
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Spanish, lingua.French, lingua.German).
		Build()
	return &Gate{detector: detector, minConfidence: minConfidence}
}

// IsEnglish reports whether text is confidently English. Very short inputs
// pass: the length gate elsewhere handles those, and lingua's confidence on
// a handful of words is noise.
func (g *Gate) IsEnglish(text string) bool {
	if len(text) < 40 {
		return true
	}
	confidence := g.detector.ComputeLanguageConfidence(text, lingua.English)
	return confidence >= g.minConfidence
}
