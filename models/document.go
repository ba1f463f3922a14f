// Package models defines the shared data structures for the ingestion and
// retrieval pipeline.
package models

// Document is a single scraped sermon after cleaning. Identity is derived
// from the canonical URL alone and never changes once assigned.
type Document struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CanonicalURL string `json:"url"`
	Category     string `json:"category"`
	CleanedText  string `json:"content"`
}

// Chunk is one overlapping word-window of a document's cleaned text.
// Chunks are regenerated whenever the document text changes; they have no
// lifecycle of their own.
type Chunk struct {
	ChunkID     string `json:"chunk_id"`
	DocumentID  string `json:"document_id"`
	Index       int    `json:"index"`
	TotalChunks int    `json:"total_chunks"`
	Text        string `json:"text"`
}

// Category is a grouping label from the site navigation.
type Category struct {
	Name         string `json:"name"`
	CanonicalURL string `json:"url"`
}

// Source is a citation entry attached to an answer.
type Source struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

// ChunkMetadata is the provenance carried on every index record. It is the
// only state the retriever has at query time, so it must be complete.
type ChunkMetadata struct {
	Text        string `json:"text"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}
