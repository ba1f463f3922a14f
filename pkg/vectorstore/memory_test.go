package vectorstore

import (
	"context"
	"math"
	"testing"

	"sermonbot/models"
)

func rec(id string, vec []float32, title string) Record {
	return Record{ID: id, Vector: vec, Meta: models.ChunkMetadata{Title: title, Text: "body of " + id}}
}

func TestMemoryQueryRanksByCosine(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	err := store.Upsert(ctx, []Record{
		rec("a_chunk_0", []float32{1, 0, 0}, "A"),
		rec("b_chunk_0", []float32{0.9, 0.1, 0}, "B"),
		rec("c_chunk_0", []float32{0, 1, 0}, "C"),
	})
	if err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	matches, err := store.Query(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].ID != "a_chunk_0" || matches[1].ID != "b_chunk_0" {
		t.Errorf("ranking wrong: %q then %q", matches[0].ID, matches[1].ID)
	}
	if matches[0].Score < 0.999 {
		t.Errorf("identical vector score = %f, want ~1", matches[0].Score)
	}
	if matches[0].Meta.Title != "A" {
		t.Errorf("metadata lost: %+v", matches[0].Meta)
	}
}

func TestMemoryUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.Upsert(ctx, []Record{rec("a_chunk_0", []float32{1, 0}, "old")}); err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(ctx, []Record{rec("a_chunk_0", []float32{0, 1}, "new")}); err != nil {
		t.Fatal(err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("Count() = %d, want 1 after replacing upsert", n)
	}

	matches, err := store.Query(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if matches[0].Meta.Title != "new" {
		t.Errorf("record not replaced: %+v", matches[0].Meta)
	}
}

func TestMemoryQueryOnEmptyStore(t *testing.T) {
	matches, err := NewMemory().Query(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %d, want 0", len(matches))
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := float64(cosine(tt.a, tt.b))
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("cosine() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestPointIDIsDeterministic(t *testing.T) {
	a := pointID("abc_chunk_0")
	b := pointID("abc_chunk_0")
	c := pointID("abc_chunk_1")
	if a != b {
		t.Errorf("same chunk id produced different point ids: %s vs %s", a, b)
	}
	if a == c {
		t.Error("distinct chunk ids collided")
	}
	if len(a) != 36 {
		t.Errorf("point id %q is not a UUID", a)
	}
}
