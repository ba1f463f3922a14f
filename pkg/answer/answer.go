// Package answer turns retrieval results into a chat reply. Small talk is
// routed past retrieval, grounded questions get an LLM answer constrained to
// the retrieved excerpts, and every failure degrades to a friendly canned
// reply instead of an error page.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	groundedSystem = "You are SermonBot, a knowledgeable and warm assistant helping people understand sermons. Provide clear, helpful answers based on the sermon content provided. Be conversational but stay grounded in the sermons."

	smallTalkSystem = "You are SermonBot, a friendly assistant that helps people explore sermons and teachings. When greeted, respond warmly and invite them to ask questions about faith, sermons, or related topics."

	greetingFallback = "Hello! I'm SermonBot, here to help you explore our sermons. Ask me about faith, grace, prayer, love, hope, or any related topic!"

	noContentReply = "I couldn't find any relevant sermon content to answer that specific question. I can help you with topics like faith, grace, prayer, love, hope, and other teachings. Could you rephrase your question or try a different topic?"

	generationFallback = "I apologize, but I'm having trouble generating a response right now. Please try again in a moment."

	maxLinkedSources = 3
)

var greetings = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "yo": {}, "sup": {}, "howdy": {},
	"greetings": {}, "good morning": {}, "good afternoon": {}, "good evening": {},
}

// noSermonIndicators mark an answer that admits it found nothing; source
// links would be misleading under such an answer.
var noSermonIndicators = []string{
	"don't have specific sermons",
	"don't have sermons",
	"no sermons about",
	"sermons don't cover",
}

// Source is the minimal link data the reply footer needs.
type Source struct {
	Title string
	URL   string
}

// Config tunes generation.
type Config struct {
	Temperature float64
	MaxTokens   int
}

// LLMConfig selects the OpenAI-compatible endpoint and model.
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Generator produces chat replies.
type Generator struct {
	llm    llms.Model
	cfg    Config
	logger *slog.Logger
}

// NewGenerator wraps an existing model, mainly for tests.
func NewGenerator(llm llms.Model, cfg Config, logger *slog.Logger) *Generator {
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 400
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: llm, cfg: cfg, logger: logger}
}

// NewOpenAICompatible connects to an OpenAI-compatible chat endpoint, such
// as Groq.
func NewOpenAICompatible(llmCfg LLMConfig, cfg Config, logger *slog.Logger) (*Generator, error) {
	opts := []openai.Option{openai.WithModel(llmCfg.Model), openai.WithToken(llmCfg.APIKey)}
	if llmCfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(llmCfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	return NewGenerator(llm, cfg, logger), nil
}

// IsSmallTalk reports whether the question should skip retrieval entirely:
// a known greeting, or too short to be a real question.
func IsSmallTalk(question string) bool {
	normalized := strings.ToLower(strings.TrimSpace(question))
	if _, ok := greetings[normalized]; ok {
		return true
	}
	return len(strings.Fields(question)) <= 2 && !strings.Contains(question, "?")
}

// SmallTalk answers a greeting. Generation failures fall back to a canned
// welcome.
func (g *Generator) SmallTalk(ctx context.Context, question string) string {
	reply, err := g.generate(ctx, smallTalkSystem, question, 0.8, 150)
	if err != nil {
		g.logger.Warn("small talk generation failed", "error", err)
		return greetingFallback
	}
	return reply
}

// Grounded answers a question from retrieved sermon excerpts and appends up
// to three source links. Empty context gets the no-content reply without an
// LLM call.
func (g *Generator) Grounded(ctx context.Context, question, excerpts string, sources []Source) string {
	if strings.TrimSpace(excerpts) == "" {
		return noContentReply
	}

	prompt := fmt.Sprintf(`Use the following sermon excerpts to answer the question. Be conversational, clear, and faithful to the content.

SERMON EXCERPTS:
%s

QUESTION:
%s

ANSWER (be warm and helpful):`, excerpts, question)

	reply, err := g.generate(ctx, groundedSystem, prompt, g.cfg.Temperature, g.cfg.MaxTokens)
	if err != nil {
		g.logger.Error("answer generation failed", "error", err)
		return generationFallback
	}

	return appendSources(reply, sources)
}

func (g *Generator) generate(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	resp, err := g.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, system),
			llms.TextParts(llms.ChatMessageTypeHuman, user),
		},
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	reply := strings.TrimSpace(resp.Choices[0].Content)
	if reply == "" {
		return "", fmt.Errorf("model returned an empty reply")
	}
	return reply, nil
}

// appendSources adds the "learn more" footer unless the answer admits it
// found no sermon content.
func appendSources(reply string, sources []Source) string {
	if len(sources) == 0 {
		return reply
	}
	lower := strings.ToLower(reply)
	for _, indicator := range noSermonIndicators {
		if strings.Contains(lower, indicator) {
			return reply
		}
	}

	var b strings.Builder
	b.WriteString(reply)
	b.WriteString("\n\n📖 **Learn more from these sermons:**")
	for i, src := range sources {
		if i >= maxLinkedSources {
			break
		}
		b.WriteString(fmt.Sprintf("\n• [%s](%s)", src.Title, src.URL))
	}
	return b.String()
}
