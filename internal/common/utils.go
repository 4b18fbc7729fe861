package common

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/urfave/cli/v2"
)

// NewLogger builds the JSON stderr logger every command uses.
// --quiet wins over --verbose.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// GlobalFlags are accepted by every command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file (defaults apply when omitted)", EnvVars: []string{"LLP_CONFIG"}},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log debug details such as records without a payload"},
	}
}

// RunFlags configure extraction and matching. They override the config file.
func RunFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "directory for run reports"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "folders parsed in parallel"},
		&cli.Float64Flag{Name: "threshold", Usage: "similarity threshold in (0, 1]"},
		&cli.BoolFlag{Name: "exact", Usage: "disable fuzzy matching against the baseline"},
		&cli.StringFlag{Name: "pattern", Usage: "file glob for log discovery"},
		&cli.BoolFlag{Name: "no-recursive", Usage: "only read files directly inside each folder"},
		&cli.StringFlag{Name: "text-field", Usage: "payload field holding the item text"},
		&cli.StringFlag{Name: "data-field", Usage: "payload field holding the item list"},
		&cli.StringFlag{Name: "db", Usage: "run history database path", EnvVars: []string{"LLP_DB"}},
		&cli.BoolFlag{Name: "no-db", Usage: "do not record the run in the database"},
		&cli.StringFlag{Name: "font", Usage: "TTF font for PNG output (needed for CJK glyphs)"},
	}
}

// LoadConfig reads --config and applies flag overrides, then validates.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("threshold") {
		cfg.SimilarityThreshold = c.Float64("threshold")
	}
	if c.Bool("exact") {
		cfg.FuzzyMatch = false
	}
	if c.IsSet("pattern") {
		cfg.Discovery.FilePattern = c.String("pattern")
	}
	if c.Bool("no-recursive") {
		cfg.Discovery.Recursive = false
	}
	if c.IsSet("text-field") {
		cfg.Fields.TextField = c.String("text-field")
	}
	if c.IsSet("data-field") {
		cfg.Fields.DataField = c.String("data-field")
	}
	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
	}
	if c.IsSet("font") {
		cfg.Report.FontPath = c.String("font")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// RootArg returns the single directory argument of a command.
func RootArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one directory argument, got %d", c.NArg())
	}
	root := c.Args().First()
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("failed to read root directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", root)
	}
	return root, nil
}
