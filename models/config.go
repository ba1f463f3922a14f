package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RequestTimeout returns the per-request timeout as a duration.
func (c CrawlConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// SiteConfig describes where the corpus lives and how to recognize its
// structure. The selector defaults match a Weebly-style layout but every
// selector is overridable, so the crawler itself stays site-agnostic.
type SiteConfig struct {
	BaseURL     string `yaml:"base_url"`
	ListingPath string `yaml:"listing_path"`

	// NavLinkSelector matches navigation-menu anchors.
	NavLinkSelector string `yaml:"nav_link_selector"`
	// NavArrowSelector marks a nav anchor that expands into sub-entries,
	// i.e. a category.
	NavArrowSelector string `yaml:"nav_arrow_selector"`
	// ContentSelector is the dedicated content region of a page.
	ContentSelector string `yaml:"content_selector"`
	// ParagraphSelector matches the structured text blocks inside the
	// content region.
	ParagraphSelector string `yaml:"paragraph_selector"`
}

// CrawlConfig bounds the crawl.
type CrawlConfig struct {
	RequestTimeoutSecs int `yaml:"request_timeout_secs"`
	MinContentLen      int `yaml:"min_content_len"`
	// MinAnchorLen prunes nav noise: links whose anchor text is shorter
	// than this are never treated as documents.
	MinAnchorLen int `yaml:"min_anchor_len"`
	// EnglishOnly skips documents whose cleaned text is not confidently
	// English. Non-English text on this corpus means extraction picked up
	// rendering junk, not a real sermon.
	EnglishOnly bool `yaml:"english_only"`
	UserAgent   string `yaml:"user_agent"`
}

// ChunkingConfig controls the word-window chunker.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// EmbeddingConfig selects the local embedding model.
type EmbeddingConfig struct {
	Model    string `yaml:"model"`
	CacheDir string `yaml:"cache_dir"`
}

// IndexConfig selects and configures the vector index.
type IndexConfig struct {
	// Provider is "chromem" (embedded, default) or "qdrant".
	Provider   string `yaml:"provider"`
	Collection string `yaml:"collection"`
	// Path is the chromem persistence directory.
	Path string `yaml:"path"`
	// Qdrant gRPC endpoint, used when Provider is "qdrant". The API key is
	// read from QDRANT_API_KEY.
	QdrantHost string `yaml:"qdrant_host"`
	QdrantPort int    `yaml:"qdrant_port"`
	BatchSize  int    `yaml:"batch_size"`
}

// RetrievalConfig controls query-time behavior.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
	// ScoreThreshold is the relevance gate: matches scoring below it are
	// discarded rather than used as grounding.
	ScoreThreshold float64 `yaml:"score_threshold"`
}

// LLMConfig configures the generative collaborator. The endpoint is
// OpenAI-compatible; the defaults point at Groq. The API key is read from
// LLM_API_KEY (GROQ_API_KEY also accepted).
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// StorageConfig locates the on-disk state.
type StorageConfig struct {
	// SnapshotPath is the human-diffable JSON record of what is indexed.
	SnapshotPath string `yaml:"snapshot_path"`
	// HistoryDB is the SQLite ingestion-run history.
	HistoryDB string `yaml:"history_db"`
}

// ServerConfig configures the HTTP chat surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the full runtime configuration.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Crawl     CrawlConfig     `yaml:"crawl"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
}

// DefaultConfig returns the configuration used when a field is absent from
// the YAML file.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			ListingPath:       "/categories.html",
			NavLinkSelector:   "a.wsite-menu-subitem",
			NavArrowSelector:  "span.wsite-menu-arrow",
			ContentSelector:   "#wsite-content",
			ParagraphSelector: "div.paragraph",
		},
		Crawl: CrawlConfig{
			RequestTimeoutSecs: 30,
			MinContentLen:      200,
			MinAnchorLen:       2,
			UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		},
		Chunking: ChunkingConfig{Size: 500, Overlap: 50},
		Embedding: EmbeddingConfig{
			Model:    "sentence-transformers/all-MiniLM-L6-v2",
			CacheDir: "local_cache",
		},
		Index: IndexConfig{
			Provider:   "chromem",
			Collection: "sermon-index",
			Path:       "data/index",
			QdrantHost: "localhost",
			QdrantPort: 6334,
			BatchSize:  100,
		},
		Retrieval: RetrievalConfig{TopK: 5, ScoreThreshold: 0.25},
		LLM: LLMConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.7,
			MaxTokens:   400,
		},
		Storage: StorageConfig{
			SnapshotPath: "data/sermon_data.json",
			HistoryDB:    "data/sermonbot.db",
		},
		Server: ServerConfig{Addr: ":5000"},
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be in [0, size), got %d", c.Chunking.Overlap)
	}
	if c.Index.BatchSize <= 0 {
		return fmt.Errorf("index.batch_size must be positive, got %d", c.Index.BatchSize)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	switch c.Index.Provider {
	case "chromem", "qdrant", "memory":
	default:
		return fmt.Errorf("index.provider must be chromem, qdrant or memory, got %q", c.Index.Provider)
	}
	return nil
}
