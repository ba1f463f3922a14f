package runs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"sermonbot/internal/common"
	"sermonbot/pkg/db"
)

// RunsAction lists ingestion runs, most recent first.
func RunsAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	history, err := db.Open(cfg.Storage.HistoryDB)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer history.Close()

	runs, err := history.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-10s %-6s %-5s %-5s %-5s %-5s %-8s\n",
		"ID", "Started", "Status", "Seen", "New", "Upd", "Same", "Gone", "Written")
	fmt.Println(strings.Repeat("-", 80))

	for _, run := range runs {
		status := run.Status
		if run.DryRun {
			status += " (dry)"
		}
		fmt.Printf("%-6d %-20s %-10s %-6d %-5d %-5d %-5d %-5d %-8d\n",
			run.RunID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			status,
			run.DocumentsSeen,
			run.DocumentsNew,
			run.DocumentsUpdated,
			run.DocumentsUnchanged,
			run.DocumentsRemoved,
			run.ChunksWritten,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'sermonbot run <id>' to see details\n")

	return nil
}

// RunAction shows one run with its per-document decisions.
func RunAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: sermonbot run <id>", 1)
	}
	runID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid run id %q", c.Args().First()), 1)
	}

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	history, err := db.Open(cfg.Storage.HistoryDB)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer history.Close()

	run, err := history.GetRunByID(runID)
	if err != nil {
		return err
	}
	docs, err := history.GetRunDocuments(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %d\n", run.RunID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Started:    %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if !run.FinishedAt.IsZero() {
		fmt.Printf("Finished:   %s\n", run.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Status:     %s\n", run.Status)
	fmt.Printf("Mode:       full=%v dry_run=%v\n", run.FullRebuild, run.DryRun)
	fmt.Printf("Documents:  %d seen (%d new, %d updated, %d unchanged, %d removed)\n",
		run.DocumentsSeen, run.DocumentsNew, run.DocumentsUpdated,
		run.DocumentsUnchanged, run.DocumentsRemoved)
	fmt.Printf("Chunks:     %d written of %d staged\n", run.ChunksWritten, run.ChunksStaged)
	if run.ErrorMessage != "" {
		fmt.Printf("Error:      %s\n", run.ErrorMessage)
	}

	if len(docs) == 0 {
		return nil
	}

	fmt.Printf("\nDocuments (%d):\n", len(docs))
	fmt.Println(strings.Repeat("-", 60))
	for _, doc := range docs {
		fmt.Printf("[%-9s] %-40s %s\n", doc.Change, doc.Title, doc.Category)
		if doc.TopKeywords != "" {
			fmt.Printf("            keywords: %s\n", doc.TopKeywords)
		}
	}

	return nil
}
