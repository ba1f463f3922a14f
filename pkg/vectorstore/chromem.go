package vectorstore

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"sermonbot/models"
)

// Chromem persists vectors in a local chromem-go database. It is the default
// backend: a single directory on disk, no server to run.
type Chromem struct {
	db   *chromem.DB
	coll *chromem.Collection
}

// NewChromem opens (or creates) the database at path and its collection.
func NewChromem(path, collection string) (*Chromem, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector db at %s: %w", path, err)
	}

	// Records always arrive pre-embedded, so the collection never invokes an
	// embedding func. A stub satisfies the API and fails loudly if it is
	// ever reached.
	coll, err := db.GetOrCreateCollection(collection, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", collection, err)
	}
	return &Chromem{db: db, coll: coll}, nil
}

func rejectEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("store received a document without an embedding")
}

func (c *Chromem) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, chromem.Document{
			ID:        rec.ID,
			Content:   rec.Meta.Text,
			Embedding: rec.Vector,
			Metadata:  metaToMap(rec.Meta),
		})
	}
	if err := c.coll.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to upsert %d records: %w", len(docs), err)
	}
	return nil
}

func (c *Chromem) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	// chromem rejects nResults beyond the collection size.
	if n := c.coll.Count(); n < topK {
		topK = n
	}
	if topK <= 0 {
		return nil, nil
	}

	results, err := c.coll.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, res := range results {
		meta := metaFromMap(res.Metadata)
		meta.Text = res.Content
		matches = append(matches, Match{ID: res.ID, Score: res.Similarity, Meta: meta})
	}
	return matches, nil
}

func (c *Chromem) Count(context.Context) (int, error) {
	return c.coll.Count(), nil
}

func (c *Chromem) Close() error { return nil }

func metaToMap(meta models.ChunkMetadata) map[string]string {
	return map[string]string{
		"title":        meta.Title,
		"url":          meta.URL,
		"category":     meta.Category,
		"chunk_index":  strconv.Itoa(meta.ChunkIndex),
		"total_chunks": strconv.Itoa(meta.TotalChunks),
	}
}

func metaFromMap(m map[string]string) models.ChunkMetadata {
	idx, _ := strconv.Atoi(m["chunk_index"])
	total, _ := strconv.Atoi(m["total_chunks"])
	return models.ChunkMetadata{
		Title:       m["title"],
		URL:         m["url"],
		Category:    m["category"],
		ChunkIndex:  idx,
		TotalChunks: total,
	}
}
