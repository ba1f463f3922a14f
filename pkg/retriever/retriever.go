// Package retriever answers "what does the corpus say about X": embed the
// question, query the index, gate by relevance and assemble the context
// block for generation.
package retriever

import (
	"context"
	"log/slog"
	"strings"

	"sermonbot/models"
	"sermonbot/pkg/embeddings"
	"sermonbot/pkg/vectorstore"
)

// Defaults for the retrieval stage. The threshold is deliberately low; the
// embedding space scores loosely related text around 0.3.
const (
	DefaultTopK           = 5
	DefaultScoreThreshold = 0.25
)

// contextSeparator joins chunk texts in the prompt context.
const contextSeparator = "\n\n---\n\n"

// Config tunes retrieval.
type Config struct {
	TopK           int
	ScoreThreshold float32
}

// Result is what retrieval hands to answer generation. NoContent means no
// chunk cleared the relevance gate (or retrieval itself failed) and the
// answerer must not pretend otherwise.
type Result struct {
	Matches   []vectorstore.Match
	Sources   []models.Source
	Context   string
	NoContent bool
}

// Retriever binds an embedder and a store.
type Retriever struct {
	embedder embeddings.Embedder
	store    vectorstore.Store
	cfg      Config
	logger   *slog.Logger
}

// New builds a retriever. Zero config fields take the package defaults.
func New(embedder embeddings.Embedder, store vectorstore.Store, cfg Config, logger *slog.Logger) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = DefaultScoreThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{embedder: embedder, store: store, cfg: cfg, logger: logger}
}

// Retrieve runs the full retrieval stage for one question. Failures inside
// the stage degrade to a NoContent result instead of propagating: the caller
// always gets something it can answer from.
func (r *Retriever) Retrieve(ctx context.Context, question string) Result {
	vector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		r.logger.Error("failed to embed question", "error", err)
		return Result{NoContent: true}
	}

	matches, err := r.store.Query(ctx, vector, r.cfg.TopK)
	if err != nil {
		r.logger.Error("vector query failed", "error", err)
		return Result{NoContent: true}
	}

	relevant := matches[:0:0]
	for _, m := range matches {
		if m.Score >= r.cfg.ScoreThreshold {
			relevant = append(relevant, m)
		}
	}
	if len(relevant) == 0 {
		r.logger.Info("no relevant chunks", "candidates", len(matches), "threshold", r.cfg.ScoreThreshold)
		return Result{NoContent: true}
	}

	return Result{
		Matches: relevant,
		Sources: dedupeSources(relevant),
		Context: joinContext(relevant),
	}
}

// dedupeSources keeps one source per document URL, in score order.
func dedupeSources(matches []vectorstore.Match) []models.Source {
	seen := make(map[string]struct{}, len(matches))
	sources := make([]models.Source, 0, len(matches))
	for _, m := range matches {
		if _, dup := seen[m.Meta.URL]; dup {
			continue
		}
		seen[m.Meta.URL] = struct{}{}
		sources = append(sources, models.Source{
			Title:    m.Meta.Title,
			URL:      m.Meta.URL,
			Category: m.Meta.Category,
		})
	}
	return sources
}

func joinContext(matches []vectorstore.Match) string {
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Meta.Text)
	}
	return strings.Join(texts, contextSeparator)
}
