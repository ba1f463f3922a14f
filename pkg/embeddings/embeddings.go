// Package embeddings turns text into vectors. Documents and queries go
// through separate entry points because the underlying models prefix them
// differently.
package embeddings

import (
	"context"
	"fmt"
	"strings"

	fastembed "github.com/anush008/fastembed-go"
)

// Embedder is what the indexer and retriever depend on.
type Embedder interface {
	// EmbedDocuments embeds passage texts for storage.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dimension reports the vector width the model produces.
	Dimension() int
	// Close releases the model runtime.
	Close() error
}

// knownModels maps config-level model names onto the local ONNX models and
// their vector widths.
var knownModels = map[string]struct {
	model fastembed.EmbeddingModel
	dim   int
}{
	"sentence-transformers/all-MiniLM-L6-v2": {fastembed.AllMiniLML6V2, 384},
	"all-minilm-l6-v2":                       {fastembed.AllMiniLML6V2, 384},
	"bge-small-en":                           {fastembed.BGESmallEN, 384},
	"bge-base-en":                            {fastembed.BGEBaseEN, 768},
}

// FastEmbed runs sentence embedding locally through ONNX; no API key, no
// network call per embed.
type FastEmbed struct {
	flag      *fastembed.FlagEmbedding
	dim       int
	batchSize int
}

// Config selects the model and its cache location.
type Config struct {
	Model     string
	CacheDir  string
	BatchSize int
}

// NewFastEmbed initializes the local embedding model, downloading it into
// CacheDir on first use.
func NewFastEmbed(cfg Config) (*FastEmbed, error) {
	known, ok := knownModels[strings.ToLower(cfg.Model)]
	if !ok {
		known, ok = knownModels[cfg.Model]
	}
	if !ok {
		return nil, fmt.Errorf("unknown embedding model %q", cfg.Model)
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = "data/models"
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	quiet := false
	flag, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                known.model,
		CacheDir:             cacheDir,
		MaxLength:            512,
		ShowDownloadProgress: &quiet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding model %q: %w", cfg.Model, err)
	}

	return &FastEmbed{flag: flag, dim: known.dim, batchSize: batchSize}, nil
}

func (f *FastEmbed) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	// The ONNX runtime call is not cancellable; honor the context up front.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vecs, err := f.flag.PassageEmbed(texts, f.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d passages: %w", len(texts), err)
	}
	return vecs, nil
}

func (f *FastEmbed) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec, err := f.flag.QueryEmbed(text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return vec, nil
}

func (f *FastEmbed) Dimension() int { return f.dim }

func (f *FastEmbed) Close() error {
	f.flag.Destroy()
	return nil
}
