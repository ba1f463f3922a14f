package indexer

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"sermonbot/models"
	"sermonbot/pkg/vectorstore"
)

// hashEmbedder is a deterministic stand-in for the real model: the vector
// encodes text length, so identical text always embeds identically.
type hashEmbedder struct {
	failOn string
	calls  int
}

func (h *hashEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	h.calls++
	vecs := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if h.failOn != "" && strings.Contains(text, h.failOn) {
			return nil, errors.New("model refused input")
		}
		vecs = append(vecs, []float32{float32(len(text)), 1})
	}
	return vecs, nil
}

func (h *hashEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

func (h *hashEmbedder) Dimension() int { return 2 }
func (h *hashEmbedder) Close() error   { return nil }

// brokenStore rejects every upsert.
type brokenStore struct{}

func (brokenStore) Upsert(context.Context, []vectorstore.Record) error {
	return errors.New("index offline")
}
func (brokenStore) Query(context.Context, []float32, int) ([]vectorstore.Match, error) {
	return nil, nil
}
func (brokenStore) Count(context.Context) (int, error) { return 0, nil }
func (brokenStore) Close() error                       { return nil }

func doc(id, title, text string) models.Document {
	return models.Document{ID: id, Title: title, CanonicalURL: "https://example.com/" + id, Category: "Faith", CleanedText: text}
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestWriteChunksAndUpserts(t *testing.T) {
	store := vectorstore.NewMemory()
	w := NewWriter(&hashEmbedder{}, store, Config{ChunkSize: 10, ChunkOverlap: 2}, nil)

	docs := map[string]models.Document{
		"A": doc("docA", "A", words(25)),
		"B": doc("docB", "B", words(5)),
	}

	res, err := w.Write(context.Background(), docs)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if res.ChunksWritten != res.ChunksStaged {
		t.Errorf("written = %d, staged = %d, want equal on success", res.ChunksWritten, res.ChunksStaged)
	}
	if len(res.Failed) != 0 {
		t.Errorf("Failed = %v, want empty", res.Failed)
	}

	// 25 words at size 10 step 8 gives 4 windows, plus 1 for the short doc.
	if res.ChunksStaged != 5 {
		t.Errorf("staged = %d, want 5", res.ChunksStaged)
	}
	n, _ := store.Count(context.Background())
	if n != 5 {
		t.Errorf("store holds %d records, want 5", n)
	}

	matches, err := store.Query(context.Background(), []float32{float32(len(words(5))), 1}, 5)
	if err != nil {
		t.Fatal(err)
	}
	var foundB bool
	for _, m := range matches {
		if m.ID == "docB_chunk_0" {
			foundB = true
			if m.Meta.Title != "B" || m.Meta.TotalChunks != 1 || m.Meta.ChunkIndex != 0 {
				t.Errorf("chunk metadata wrong: %+v", m.Meta)
			}
		}
	}
	if !foundB {
		t.Error("expected chunk id docB_chunk_0 in the store")
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	store := vectorstore.NewMemory()
	w := NewWriter(&hashEmbedder{}, store, Config{ChunkSize: 10, ChunkOverlap: 2}, nil)
	docs := map[string]models.Document{"A": doc("docA", "A", words(25))}

	if _, err := w.Write(context.Background(), docs); err != nil {
		t.Fatal(err)
	}
	first, _ := store.Count(context.Background())

	if _, err := w.Write(context.Background(), docs); err != nil {
		t.Fatal(err)
	}
	second, _ := store.Count(context.Background())

	if first != second {
		t.Errorf("re-indexing grew the store from %d to %d records", first, second)
	}
}

func TestWriteSkipsFailingDocument(t *testing.T) {
	store := vectorstore.NewMemory()
	w := NewWriter(&hashEmbedder{failOn: "poison"}, store, Config{ChunkSize: 10, ChunkOverlap: 2}, nil)

	docs := map[string]models.Document{
		"Good": doc("docA", "Good", words(5)),
		"Bad":  doc("docB", "Bad", "poison "+words(4)),
	}

	res, err := w.Write(context.Background(), docs)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if res.ChunksWritten != 1 || res.ChunksStaged != 1 {
		t.Errorf("written = %d, staged = %d, want 1 and 1", res.ChunksWritten, res.ChunksStaged)
	}
	if !reflect.DeepEqual(res.Failed, []string{"Bad"}) {
		t.Errorf("Failed = %v, want [Bad]", res.Failed)
	}
}

// A rejected upsert batch must surface every affected document, otherwise the
// caller persists them as indexed and the lost chunks are never retried.
func TestWriteFailedBatchReportsDocuments(t *testing.T) {
	w := NewWriter(&hashEmbedder{}, brokenStore{}, Config{ChunkSize: 10, ChunkOverlap: 2}, nil)

	docs := map[string]models.Document{
		"A": doc("docA", "A", words(5)),
		"B": doc("docB", "B", words(5)),
	}

	res, err := w.Write(context.Background(), docs)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if res.ChunksWritten != 0 || res.ChunksStaged != 2 {
		t.Errorf("written = %d, staged = %d, want 0 and 2", res.ChunksWritten, res.ChunksStaged)
	}
	if !reflect.DeepEqual(res.Failed, []string{"A", "B"}) {
		t.Errorf("Failed = %v, want [A B]", res.Failed)
	}
}

func TestWriteBatchesLargeCorpora(t *testing.T) {
	store := vectorstore.NewMemory()
	emb := &hashEmbedder{}
	w := NewWriter(emb, store, Config{ChunkSize: 10, ChunkOverlap: 0, BatchSize: 3}, nil)

	// One document with 7 chunks forces three flushes at batch size 3.
	docs := map[string]models.Document{"A": doc("docA", "A", words(70))}

	res, err := w.Write(context.Background(), docs)
	if err != nil {
		t.Fatal(err)
	}
	if res.ChunksStaged != 7 || res.ChunksWritten != 7 {
		t.Errorf("written = %d, staged = %d, want 7 and 7", res.ChunksWritten, res.ChunksStaged)
	}
	if emb.calls != 1 {
		t.Errorf("document embedded in %d calls, want a single batched call", emb.calls)
	}
}

func TestWriteEmptyDocumentStagesNothing(t *testing.T) {
	store := vectorstore.NewMemory()
	w := NewWriter(&hashEmbedder{}, store, Config{}, nil)

	res, err := w.Write(context.Background(), map[string]models.Document{
		"Empty": doc("docA", "Empty", "   "),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.ChunksWritten != 0 || res.ChunksStaged != 0 {
		t.Errorf("written = %d, staged = %d, want 0 and 0", res.ChunksWritten, res.ChunksStaged)
	}
}
