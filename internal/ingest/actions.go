package ingest

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"sermonbot/internal/common"
	"sermonbot/models"
	"sermonbot/pkg/corpus"
	"sermonbot/pkg/crawler"
	"sermonbot/pkg/db"
	"sermonbot/pkg/fetcher"
	"sermonbot/pkg/indexer"
	"sermonbot/pkg/keywords"
	"sermonbot/pkg/language"
)

// IngestAction runs the full pipeline: crawl, diff against the previous
// snapshot, embed and upsert the changed documents, persist the new snapshot
// and record the run in the history database.
func IngestAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fullRebuild := c.Bool("full")
	dryRun := c.Bool("dry-run")

	history, err := db.Open(cfg.Storage.HistoryDB)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer history.Close()

	runID, err := history.StartRun(fullRebuild, dryRun)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	logger.Info("ingestion run started", "run_id", runID, "full", fullRebuild, "dry_run", dryRun)

	loader := fetcher.NewHTTPLoader(fetcher.Config{
		NavLinkSelector:   cfg.Site.NavLinkSelector,
		NavArrowSelector:  cfg.Site.NavArrowSelector,
		ContentSelector:   cfg.Site.ContentSelector,
		ParagraphSelector: cfg.Site.ParagraphSelector,
		UserAgent:         cfg.Crawl.UserAgent,
		Timeout:           cfg.Crawl.RequestTimeout(),
	})

	var gate *language.Gate
	if cfg.Crawl.EnglishOnly {
		gate = language.NewGate(0)
	}

	crawl := crawler.New(loader, crawler.Config{
		BaseURL:       cfg.Site.BaseURL,
		ListingPath:   cfg.Site.ListingPath,
		MinContentLen: cfg.Crawl.MinContentLen,
		MinAnchorLen:  cfg.Crawl.MinAnchorLen,
		EnglishOnly:   cfg.Crawl.EnglishOnly,
	}, gate, logger)

	docs, categories, err := crawl.Crawl(c.Context)
	if err != nil {
		_ = history.FailRun(runID, err.Error())
		return fmt.Errorf("crawl failed: %w", err)
	}
	logger.Info("crawl finished", "documents", len(docs), "categories", len(categories))

	prev, err := corpus.Load(cfg.Storage.SnapshotPath)
	if err != nil {
		_ = history.FailRun(runID, err.Error())
		return fmt.Errorf("failed to load previous snapshot: %w", err)
	}

	cur := corpus.FromDocuments(docs)
	delta := corpus.Diff(prev, cur)
	logger.Info("snapshot delta",
		"new", len(delta.New), "updated", len(delta.Updated),
		"unchanged", len(delta.Unchanged), "removed", len(delta.Tombstoned))

	recordDelta(history, runID, cur, delta, logger)

	// Full rebuild re-embeds everything; otherwise only the delta.
	toIndex := delta.Dirty()
	if fullRebuild {
		toIndex = toIndex[:0]
		for key := range cur {
			toIndex = append(toIndex, key)
		}
	}

	stats := db.RunStats{
		DocumentsSeen:      len(cur),
		DocumentsNew:       len(delta.New),
		DocumentsUpdated:   len(delta.Updated),
		DocumentsUnchanged: len(delta.Unchanged),
		DocumentsRemoved:   len(delta.Tombstoned),
	}

	if dryRun {
		logger.Info("dry run, skipping indexing and snapshot save", "would_index", len(toIndex))
		if err := history.FinishRun(runID, stats); err != nil {
			return err
		}
		return nil
	}

	if len(toIndex) > 0 {
		res, err := indexDocuments(c, cfg, docs, toIndex)
		if err != nil {
			_ = history.FailRun(runID, err.Error())
			return err
		}
		stats.ChunksStaged = res.ChunksStaged
		stats.ChunksWritten = res.ChunksWritten

		// Documents whose chunks were not fully written must not enter the
		// snapshot; the next run then sees them as new and retries.
		for _, key := range res.Failed {
			delete(cur, key)
		}
		if len(res.Failed) > 0 {
			logger.Warn("some documents were not fully indexed, deferring to the next run",
				"documents", len(res.Failed))
		}
	} else {
		logger.Info("nothing to index, corpus unchanged")
	}

	if err := corpus.Save(cfg.Storage.SnapshotPath, cur); err != nil {
		_ = history.FailRun(runID, err.Error())
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if err := history.FinishRun(runID, stats); err != nil {
		return err
	}
	logger.Info("ingestion run finished", "run_id", runID,
		"chunks_written", stats.ChunksWritten, "chunks_staged", stats.ChunksStaged)
	return nil
}

// indexDocuments embeds and upserts the selected documents.
func indexDocuments(c *cli.Context, cfg *models.Config, docs map[string]models.Document, keys []string) (indexer.Result, error) {
	embedder, err := common.NewEmbedder(cfg)
	if err != nil {
		return indexer.Result{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	defer embedder.Close()

	store, err := common.OpenStore(c.Context, cfg, embedder.Dimension())
	if err != nil {
		return indexer.Result{}, fmt.Errorf("failed to open vector store: %w", err)
	}
	defer store.Close()

	selected := make(map[string]models.Document, len(keys))
	for _, key := range keys {
		if doc, ok := docs[key]; ok {
			selected[key] = doc
		}
	}

	writer := indexer.NewWriter(embedder, store, indexer.Config{
		ChunkSize:    cfg.Chunking.Size,
		ChunkOverlap: cfg.Chunking.Overlap,
		BatchSize:    cfg.Index.BatchSize,
	}, common.NewLogger(c.Bool("quiet")))

	return writer.Write(c.Context, selected)
}

// recordDelta writes one run_documents row per document. Keyword summaries
// are computed for changed documents only; unchanged content was summarized
// by an earlier run.
func recordDelta(history *db.DB, runID int64, cur corpus.Snapshot, delta corpus.Delta, logger *slog.Logger) {
	record := func(key, change string, withKeywords bool) {
		entry := cur[key]
		doc := db.RunDocument{
			Title:      key,
			URL:        entry.URL,
			Category:   entry.Category,
			Change:     change,
			ContentLen: len(entry.Content),
		}
		if withKeywords {
			doc.TopKeywords = keywords.Summary(entry.Content, 5)
		}
		if err := history.RecordDocument(runID, doc); err != nil {
			logger.Warn("failed to record document", "title", key, "error", err)
		}
	}

	for _, key := range delta.New {
		record(key, "new", true)
	}
	for _, key := range delta.Updated {
		record(key, "updated", true)
	}
	for _, key := range delta.Unchanged {
		record(key, "unchanged", false)
	}
	for _, key := range delta.Tombstoned {
		if err := history.RecordDocument(runID, db.RunDocument{Title: key, Change: "removed"}); err != nil {
			logger.Warn("failed to record document", "title", key, "error", err)
		}
	}
}
