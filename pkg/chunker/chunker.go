// Package chunker splits cleaned text into overlapping word windows. The
// window sequence is deterministic for a given input, which is what keeps
// re-indexing idempotent.
package chunker

import "strings"

const (
	// DefaultSize is the window size in words.
	DefaultSize = 500
	// DefaultOverlap is how many words consecutive windows share.
	DefaultOverlap = 50
)

// Split returns fixed-size sliding windows of size words, advancing by
// size-overlap words per step. The step is clamped to at least one word so a
// misconfigured overlap >= size cannot loop forever. Empty input yields a nil
// slice.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := size - overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[i:end], " ")
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
