// Package indexer chunks, embeds and upserts documents into the vector
// store. Re-running it over the same documents rewrites the same chunk ids,
// so indexing is idempotent.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"sermonbot/models"
	"sermonbot/pkg/chunker"
	"sermonbot/pkg/embeddings"
	"sermonbot/pkg/identity"
	"sermonbot/pkg/vectorstore"
)

// DefaultBatchSize is how many chunk records go into one upsert call.
const DefaultBatchSize = 100

// Config tunes chunking and batching.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
}

// Writer drives the embed-and-upsert stage of ingestion.
type Writer struct {
	embedder embeddings.Embedder
	store    vectorstore.Store
	cfg      Config
	logger   *slog.Logger
}

// NewWriter builds a writer. Zero config fields fall back to the package
// defaults; logger may be nil.
func NewWriter(embedder embeddings.Embedder, store vectorstore.Store, cfg Config, logger *slog.Logger) *Writer {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunker.DefaultSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = chunker.DefaultOverlap
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{embedder: embedder, store: store, cfg: cfg, logger: logger}
}

// Result reports one indexing pass. Failed names the documents whose chunks
// were not fully written, either because embedding failed or because an
// upsert batch did; those documents must stay dirty so a later run retries
// them.
type Result struct {
	ChunksWritten int
	ChunksStaged  int
	Failed        []string
}

// Write indexes the given documents. A document whose embedding fails is
// logged and skipped; a failing upsert batch is logged and its records stay
// staged but unwritten. Both kinds of failure put the document key into
// Result.Failed.
func (w *Writer) Write(ctx context.Context, docs map[string]models.Document) (Result, error) {
	keys := make([]string, 0, len(docs))
	for key := range docs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var res Result
	failed := make(map[string]struct{})

	var batch []vectorstore.Record
	var batchKeys []string
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := w.store.Upsert(ctx, batch); err != nil {
			w.logger.Error("failed to upsert batch", "size", len(batch), "error", err)
			for _, key := range batchKeys {
				failed[key] = struct{}{}
			}
		} else {
			res.ChunksWritten += len(batch)
		}
		batch = batch[:0]
		batchKeys = batchKeys[:0]
	}

	for _, key := range keys {
		doc := docs[key]
		records, err := w.stage(ctx, doc)
		if err != nil {
			w.logger.Warn("failed to embed document, skipping", "title", doc.Title, "error", err)
			failed[key] = struct{}{}
			continue
		}

		for _, rec := range records {
			batch = append(batch, rec)
			batchKeys = append(batchKeys, key)
			res.ChunksStaged++
			if len(batch) >= w.cfg.BatchSize {
				flush()
			}
		}
	}
	flush()

	for key := range failed {
		res.Failed = append(res.Failed, key)
	}
	sort.Strings(res.Failed)

	w.logger.Info("indexing finished", "documents", len(keys),
		"chunks_staged", res.ChunksStaged, "chunks_written", res.ChunksWritten, "failed", len(res.Failed))
	return res, nil
}

// stage chunks one document and embeds all its chunks in a single call.
func (w *Writer) stage(ctx context.Context, doc models.Document) ([]vectorstore.Record, error) {
	texts := chunker.Split(doc.CleanedText, w.cfg.ChunkSize, w.cfg.ChunkOverlap)
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := w.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d chunks: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts))
	}

	records := make([]vectorstore.Record, 0, len(texts))
	for i, text := range texts {
		records = append(records, vectorstore.Record{
			ID:     identity.ChunkID(doc.ID, i),
			Vector: vectors[i],
			Meta: models.ChunkMetadata{
				Text:        text,
				Title:       doc.Title,
				URL:         doc.CanonicalURL,
				Category:    doc.Category,
				ChunkIndex:  i,
				TotalChunks: len(texts),
			},
		})
	}
	return records, nil
}
