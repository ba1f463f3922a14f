package serve

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"sermonbot/internal/common"
	"sermonbot/pkg/answer"
	"sermonbot/pkg/retriever"
)

// ServeAction starts the HTTP chat server.
func ServeAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	embedder, err := common.NewEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}
	defer embedder.Close()

	store, err := common.OpenStore(c.Context, cfg, embedder.Dimension())
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	defer store.Close()

	generator, err := answer.NewOpenAICompatible(answer.LLMConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  common.LLMAPIKey(),
		Model:   cfg.LLM.Model,
	}, answer.Config{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, logger)
	if err != nil {
		return err
	}

	ret := retriever.New(embedder, store, retriever.Config{
		TopK:           cfg.Retrieval.TopK,
		ScoreThreshold: float32(cfg.Retrieval.ScoreThreshold),
	}, logger)

	server := NewServer(ret, generator, store, logger)
	return server.Start(cfg.Server.Addr)
}
