// Package keywords produces per-document keyword summaries for the ingestion
// run history. Purely observational: nothing downstream depends on it.
package keywords

import (
	"fmt"
	"sort"
	"strings"
)

// stopwords are skipped in frequency counts. The list is intentionally
// small; it only needs to keep glue words out of the top-N summaries.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "had": {}, "has": {},
	"have": {}, "he": {}, "her": {}, "his": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "not": {}, "of": {}, "on": {}, "or": {}, "our": {}, "she": {},
	"so": {}, "that": {}, "the": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "they": {}, "this": {}, "to": {}, "us": {}, "was": {},
	"we": {}, "were": {}, "what": {}, "when": {}, "which": {}, "who": {},
	"will": {}, "with": {}, "you": {}, "your": {},
}

// Frequencies counts non-stopword occurrences in text, lowercased and with
// surrounding punctuation trimmed.
func Frequencies(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return ('a' > r || r > 'z') && ('0' > r || r > '9')
		})
		if word == "" {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		frequencies[word]++
	}
	return frequencies
}

// Merge aggregates per-document frequency maps into a corpus-wide one.
func Merge(frequencies []map[string]int) map[string]int {
	merged := make(map[string]int)
	for _, counts := range frequencies {
		for word, count := range counts {
			merged[word] += count
		}
	}
	return merged
}

// Top returns the n most frequent words formatted as "word:count", ordered
// by count descending with an alphabetical tie-break so output is stable.
func Top(frequencies map[string]int, n int) []string {
	type kv struct {
		word  string
		count int
	}

	counts := make([]kv, 0, len(frequencies))
	for w, c := range frequencies {
		counts = append(counts, kv{w, c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].word < counts[j].word
	})

	if n > len(counts) {
		n = len(counts)
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = fmt.Sprintf("%s:%d", counts[i].word, counts[i].count)
	}
	return out
}

// Summary is the one-line form stored with each ingested document.
func Summary(text string, n int) string {
	return strings.Join(Top(Frequencies(text), n), ", ")
}
