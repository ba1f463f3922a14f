package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"sermonbot/models"
)

// Qdrant stores vectors in a Qdrant server over gRPC. Qdrant point ids must
// be UUIDs, so each chunk id is mapped to a deterministic UUIDv5 and the
// original chunk id travels in the payload.
type Qdrant struct {
	client     *qdrant.Client
	collection string
}

// QdrantConfig is the connection and collection setup.
type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Dimension  int
}

// NewQdrant connects to the server and creates the collection (cosine
// distance) if it does not exist yet.
func NewQdrant(ctx context.Context, cfg QdrantConfig) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	exists, err := client.CollectionExists(ctx, cfg.Collection)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to check collection %s: %w", cfg.Collection, err)
	}
	if !exists {
		err := client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: cfg.Collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(cfg.Dimension),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create collection %s: %w", cfg.Collection, err)
		}
	}

	return &Qdrant{client: client, collection: cfg.Collection}, nil
}

func (q *Qdrant) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, rec := range records {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(rec.ID)),
			Vectors: qdrant.NewVectors(rec.Vector...),
			Payload: payloadFromMeta(rec.ID, rec.Meta),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}
	return nil
}

func (q *Qdrant) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	matches := make([]Match, 0, len(points))
	for _, point := range points {
		id, meta := metaFromPayload(point.Payload)
		matches = append(matches, Match{ID: id, Score: point.Score, Meta: meta})
	}
	return matches, nil
}

func (q *Qdrant) Count(ctx context.Context) (int, error) {
	n, err := q.client.Count(ctx, &qdrant.CountPoints{CollectionName: q.collection})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(n), nil
}

func (q *Qdrant) Close() error {
	return q.client.Close()
}

// pointID derives a stable UUID from the chunk id, so re-upserting the same
// chunk overwrites its previous point.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}

func payloadFromMeta(chunkID string, meta models.ChunkMetadata) map[string]*qdrant.Value {
	return map[string]*qdrant.Value{
		"chunk_id":     {Kind: &qdrant.Value_StringValue{StringValue: chunkID}},
		"text":         {Kind: &qdrant.Value_StringValue{StringValue: meta.Text}},
		"title":        {Kind: &qdrant.Value_StringValue{StringValue: meta.Title}},
		"url":          {Kind: &qdrant.Value_StringValue{StringValue: meta.URL}},
		"category":     {Kind: &qdrant.Value_StringValue{StringValue: meta.Category}},
		"chunk_index":  {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(meta.ChunkIndex)}},
		"total_chunks": {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(meta.TotalChunks)}},
	}
}

func metaFromPayload(payload map[string]*qdrant.Value) (string, models.ChunkMetadata) {
	str := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	num := func(key string) int {
		if v, ok := payload[key]; ok {
			return int(v.GetIntegerValue())
		}
		return 0
	}
	return str("chunk_id"), models.ChunkMetadata{
		Text:        str("text"),
		Title:       str("title"),
		URL:         str("url"),
		Category:    str("category"),
		ChunkIndex:  num("chunk_index"),
		TotalChunks: num("total_chunks"),
	}
}
