package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"sermonbot/internal/common"
	"sermonbot/pkg/corpus"
	"sermonbot/pkg/db"
	"sermonbot/pkg/keywords"
)

// StatsAction prints what is currently crawled and indexed: snapshot size,
// per-category counts and the latest run outcome.
func StatsAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	snap, err := corpus.Load(cfg.Storage.SnapshotPath)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	fmt.Printf("Corpus snapshot: %s\n", cfg.Storage.SnapshotPath)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Documents:  %d\n", len(snap))

	if len(snap) > 0 {
		byCategory := make(map[string]int)
		var totalChars int
		var frequencies []map[string]int
		for _, entry := range snap {
			category := entry.Category
			if category == "" {
				category = "General"
			}
			byCategory[category]++
			totalChars += len(entry.Content)
			frequencies = append(frequencies, keywords.Frequencies(entry.Content))
		}
		fmt.Printf("Content:    %d characters\n", totalChars)

		names := make([]string, 0, len(byCategory))
		for name := range byCategory {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Printf("\nCategories (%d):\n", len(names))
		fmt.Println(strings.Repeat("-", 60))
		for _, name := range names {
			fmt.Printf("%-40s %d\n", name, byCategory[name])
		}

		fmt.Printf("\nTop keywords across the corpus:\n")
		fmt.Println(strings.Repeat("-", 60))
		for _, kw := range keywords.Top(keywords.Merge(frequencies), 15) {
			fmt.Printf("  %s\n", kw)
		}
	}

	history, err := db.Open(cfg.Storage.HistoryDB)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer history.Close()

	runs, err := history.ListRuns(1)
	if err != nil {
		return fmt.Errorf("failed to read run history: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("\nNo ingestion runs recorded yet")
		return nil
	}

	last := runs[0]
	fmt.Printf("\nLast run: #%d (%s)\n", last.RunID, last.Status)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Started:    %s\n", last.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Documents:  %d seen (%d new, %d updated, %d unchanged, %d removed)\n",
		last.DocumentsSeen, last.DocumentsNew, last.DocumentsUpdated,
		last.DocumentsUnchanged, last.DocumentsRemoved)
	fmt.Printf("Chunks:     %d written of %d staged\n", last.ChunksWritten, last.ChunksStaged)
	if last.ErrorMessage != "" {
		fmt.Printf("Error:      %s\n", last.ErrorMessage)
	}

	return nil
}
