// Package vectorstore abstracts the vector index. The pipeline writes
// pre-embedded chunk records and reads back scored matches; which engine
// holds them is a config choice.
package vectorstore

import (
	"context"

	"sermonbot/models"
)

// Record is one chunk ready for upsert: stable id, vector, and the metadata
// that lets a match be rendered without re-reading the corpus.
type Record struct {
	ID     string
	Vector []float32
	Meta   models.ChunkMetadata
}

// Match is a scored query hit. Score is cosine similarity in [0, 1] for the
// backends used here.
type Match struct {
	ID    string
	Score float32
	Meta  models.ChunkMetadata
}

// Store is the index contract. Upsert with an existing ID replaces the
// stored record.
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
