package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"sermonbot/internal/ask"
	"sermonbot/internal/ingest"
	"sermonbot/internal/runs"
	"sermonbot/internal/serve"
	"sermonbot/internal/stats"
)

func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config.yaml",
		Usage:   "path to the YAML config file",
	}
	quietFlag := &cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "log errors only",
	}

	app := &cli.App{
		Name:  "sermonbot",
		Usage: "crawl, index and chat over a sermon corpus",
		Commands: []*cli.Command{
			{
				Name:  "ingest",
				Usage: "crawl the site and sync changed documents into the vector index",
				Flags: []cli.Flag{
					configFlag,
					quietFlag,
					&cli.BoolFlag{
						Name:  "full",
						Usage: "re-embed every document instead of only the changed ones",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "report the delta without embedding or saving",
					},
				},
				Action: ingest.IngestAction,
			},
			{
				Name:      "ask",
				Usage:     "answer one question from the indexed corpus",
				ArgsUsage: "<question>",
				Flags:     []cli.Flag{configFlag, quietFlag},
				Action:    ask.AskAction,
			},
			{
				Name:   "serve",
				Usage:  "start the HTTP chat server",
				Flags:  []cli.Flag{configFlag, quietFlag},
				Action: serve.ServeAction,
			},
			{
				Name:   "stats",
				Usage:  "show snapshot and index statistics",
				Flags:  []cli.Flag{configFlag},
				Action: stats.StatsAction,
			},
			{
				Name:  "runs",
				Usage: "list ingestion runs",
				Flags: []cli.Flag{
					configFlag,
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "maximum number of runs to show (0 for all)",
					},
				},
				Action: runs.RunsAction,
			},
			{
				Name:      "run",
				Usage:     "show one ingestion run in detail",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{configFlag},
				Action:    runs.RunAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
