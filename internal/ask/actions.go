package ask

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"sermonbot/internal/common"
	"sermonbot/pkg/answer"
	"sermonbot/pkg/retriever"
)

// AskAction answers a single question from the command line.
func AskAction(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return cli.Exit("usage: sermonbot ask <question>", 1)
	}

	logger := common.NewLogger(c.Bool("quiet"))
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

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

	// Greetings skip retrieval entirely.
	if answer.IsSmallTalk(question) {
		fmt.Println(generator.SmallTalk(c.Context, question))
		return nil
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

	ret := retriever.New(embedder, store, retriever.Config{
		TopK:           cfg.Retrieval.TopK,
		ScoreThreshold: float32(cfg.Retrieval.ScoreThreshold),
	}, logger)

	res := ret.Retrieve(c.Context, question)

	sources := make([]answer.Source, 0, len(res.Sources))
	for _, src := range res.Sources {
		sources = append(sources, answer.Source{Title: src.Title, URL: src.URL})
	}

	fmt.Println(generator.Grounded(c.Context, question, res.Context, sources))
	return nil
}
