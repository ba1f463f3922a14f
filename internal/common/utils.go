// Package common holds the bootstrap shared by all commands: logger, config
// loading and construction of the embedder and vector store collaborators.
package common

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"sermonbot/models"
	"sermonbot/pkg/embeddings"
	"sermonbot/pkg/vectorstore"
)

// NewLogger builds the JSON logger every command logs through. Quiet mode
// keeps errors only.
func NewLogger(quiet bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads .env (if present) and then the YAML config named by the
// --config flag.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	_ = godotenv.Load()
	return models.LoadConfig(c.String("config"))
}

// NewEmbedder builds the local embedding model from config.
func NewEmbedder(cfg *models.Config) (embeddings.Embedder, error) {
	return embeddings.NewFastEmbed(embeddings.Config{
		Model:     cfg.Embedding.Model,
		CacheDir:  cfg.Embedding.CacheDir,
		BatchSize: cfg.Index.BatchSize,
	})
}

// OpenStore opens the configured vector index. dimension must match the
// embedder's output width.
func OpenStore(ctx context.Context, cfg *models.Config, dimension int) (vectorstore.Store, error) {
	switch cfg.Index.Provider {
	case "memory":
		return vectorstore.NewMemory(), nil
	case "qdrant":
		return vectorstore.NewQdrant(ctx, vectorstore.QdrantConfig{
			Host:       cfg.Index.QdrantHost,
			Port:       cfg.Index.QdrantPort,
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			Collection: cfg.Index.Collection,
			Dimension:  dimension,
		})
	case "chromem":
		return vectorstore.NewChromem(cfg.Index.Path, cfg.Index.Collection)
	default:
		return nil, fmt.Errorf("unknown index provider %q", cfg.Index.Provider)
	}
}

// LLMAPIKey resolves the generation API key from the environment.
func LLMAPIKey() string {
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GROQ_API_KEY")
}
