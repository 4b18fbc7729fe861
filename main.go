package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/llm-log-parser/internal/aggregate"
	"github.com/dtnitsch/llm-log-parser/internal/common"
	"github.com/dtnitsch/llm-log-parser/internal/config"
	"github.com/dtnitsch/llm-log-parser/internal/db"
	"github.com/dtnitsch/llm-log-parser/internal/extract"
	"github.com/dtnitsch/llm-log-parser/pkg/help"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	dbFlag := &cli.StringFlag{Name: "db", Usage: "run history database path", EnvVars: []string{"LLP_DB"}}

	return &cli.App{
		Name:      "llp",
		Usage:     "aggregate mistake statistics from LLM workflow logs",
		UsageText: "llp [global options] command [command options] <root>",
		Flags:     common.GlobalFlags(),
		Commands: []*cli.Command{
			{
				Name:      "aggregate",
				Usage:     "match every submission against a baseline folder and report per-item mistake rates",
				ArgsUsage: "<root>",
				Flags: append(common.RunFlags(),
					&cli.StringFlag{Name: "baseline", Aliases: []string{"b"}, Usage: "submission folder that defines the canonical items", Required: true},
					&cli.BoolFlag{Name: "tag-language", Usage: "tag canonical items with their detected language"},
					&cli.BoolFlag{Name: "png", Usage: "also render a PNG summary of the top items"},
				),
				Action: aggregate.AggregateAction,
			},
			{
				Name:      "group",
				Usage:     "cluster similar items across all submissions without a baseline",
				ArgsUsage: "<root>",
				Flags:     common.RunFlags(),
				Action:    aggregate.GroupAction,
			},
			{
				Name:      "scan",
				Usage:     "list every item of every submission with per-folder accuracy",
				ArgsUsage: "<root>",
				Flags:     common.RunFlags(),
				Action:    aggregate.ScanAction,
			},
			{
				Name:      "extract",
				Usage:     "flatten log files into markdown key/value blocks",
				ArgsUsage: "<file>...",
				Flags: append(common.RunFlags(),
					&cli.StringFlag{Name: "out-dir", Usage: "write one .md (and .png) per file here instead of stdout"},
					&cli.BoolFlag{Name: "png", Usage: "render each message as a PNG card"},
				),
				Action: extract.ExtractAction,
			},
			{
				Name:  "runs",
				Usage: "inspect recorded aggregate runs",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "list runs, newest first",
						Flags:  []cli.Flag{dbFlag, &cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum runs to show (0 = all)"}},
						Action: db.RunsAction,
					},
					{
						Name:      "show",
						Usage:     "show the items of a run (latest when no id is given)",
						ArgsUsage: "[run-id]",
						Flags: []cli.Flag{
							dbFlag,
							&cli.IntFlag{Name: "width", Value: 60, Usage: "truncate item text to this display width"},
							&cli.BoolFlag{Name: "mistakes", Usage: "also list every mistake record"},
						},
						Action: db.RunAction,
					},
					{
						Name:      "get",
						Usage:     "print a report file of a run",
						ArgsUsage: "[run-id]",
						Flags: []cli.Flag{
							dbFlag,
							&cli.StringFlag{Name: "file", Value: "manifest", Usage: "manifest, mistakes, stats, summary, or detail"},
						},
						Action: db.GetRunAction,
					},
					{
						Name:      "delete",
						Usage:     "remove a run from the database (reports stay on disk)",
						ArgsUsage: "<run-id>",
						Flags:     []cli.Flag{dbFlag},
						Action:    db.DeleteRunAction,
					},
				},
			},
			{
				Name:  "config",
				Usage: "manage the YAML configuration",
				Subcommands: []*cli.Command{
					{
						Name:      "init",
						Usage:     "write the default configuration",
						ArgsUsage: "[path]",
						Flags:     []cli.Flag{&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"}},
						Action:    config.InitAction,
					},
					{
						Name:   "show",
						Usage:  "print the effective configuration",
						Flags:  common.RunFlags(),
						Action: config.ShowAction,
					},
				},
			},
			{
				Name:  "quickstart",
				Usage: "print a YAML quick start",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}
}
