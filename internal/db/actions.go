package db

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/llm-log-parser/pkg/manifest"
	"github.com/dtnitsch/llm-log-parser/pkg/report"
	"github.com/dtnitsch/llm-log-parser/pkg/storage"
	"github.com/urfave/cli/v2"
)

func RunsAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	// Print table header
	fmt.Printf("%-34s %-20s %-12s %-6s %-8s %-8s %-10s\n",
		"Run ID", "Created", "Baseline", "Subs", "Items", "Skipped", "Unmatched")
	fmt.Println(strings.Repeat("-", 104))

	for _, r := range runs {
		fmt.Printf("%-34s %-20s %-12s %-6d %-8d %-8d %-10d\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Baseline,
			r.Summary.Submissions,
			r.CanonicalCount,
			r.Summary.FilesSkipped,
			r.Summary.UnmatchedItems,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'llp runs show <id>' to see details\n")

	return nil
}

// RunAction shows the items and mistakes of one run
func RunAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	run, err := GetRunOrLatest(c, database)
	if err != nil {
		return err
	}

	items, err := database.GetRunItems(run.RunID)
	if err != nil {
		return fmt.Errorf("failed to get run items: %w", err)
	}
	mistakes, err := database.GetRunMistakes(run.RunID)
	if err != nil {
		return fmt.Errorf("failed to get run mistakes: %w", err)
	}

	s := run.Summary
	fmt.Printf("Run %s\n", run.RunID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Created:     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Root:        %s\n", run.Root)
	fmt.Printf("Baseline:    %s\n", run.Baseline)
	fmt.Printf("Directory:   %s\n", run.RunDir)
	fmt.Printf("Submissions: %d\n", s.Submissions)
	fmt.Printf("Files:       %d processed, %d skipped\n", s.FilesProcessed, s.FilesSkipped)
	fmt.Printf("Items:       %d (%d unmatched)\n", s.Items, s.UnmatchedItems)

	fmt.Printf("\nCanonical items (%d):\n", len(items))
	fmt.Println(strings.Repeat("-", 60))
	width := c.Int("width")
	for _, it := range items {
		lang := ""
		if it.Language != "" {
			lang = " [" + it.Language + "]"
		}
		fmt.Printf("%3d. %s%s\n", it.Position, report.Truncate(it.Key, width), lang)
		fmt.Printf("     %s (%d mistakes, %d seen)\n", report.Percent(it.MistakeRate), it.MistakeCount, it.Occurrences)
	}

	if len(mistakes) > 0 && c.Bool("mistakes") {
		fmt.Printf("\nMistakes (%d):\n", len(mistakes))
		fmt.Println(strings.Repeat("-", 60))
		for _, m := range mistakes {
			fmt.Printf("[%s] %s\n", m.Submitter, report.Truncate(m.Key, width))
			if m.Mistake != "" {
				fmt.Printf("    %s\n", m.Mistake)
			}
		}
	}

	fmt.Printf("\nTip: Use 'llp runs get %s' to see the run manifest\n", run.RunID)

	return nil
}

// GetRunAction prints a file from the run directory
func GetRunAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	run, err := GetRunOrLatest(c, database)
	if err != nil {
		return err
	}

	fileType := strings.ToLower(c.String("file"))
	var fileName string
	switch fileType {
	case "manifest":
		fileName = manifest.FileName
	case "mistakes":
		fileName = "1_student_mistakes.json"
	case "stats":
		fileName = "2_statistics_summary.json"
	case "summary":
		fileName = "mistake_report_summary.txt"
	case "detail":
		fileName = "mistake_report_detail.txt"
	default:
		return fmt.Errorf("unknown file type: %s (use: manifest, mistakes, stats, summary, or detail)", fileType)
	}

	store := storage.New(filepath.Clean(run.RunDir))
	if !store.HasFile(fileName) {
		return fmt.Errorf("file not found: %s\nRun directory: %s", fileName, run.RunDir)
	}
	data, err := store.ReadFile(fileName)
	if err != nil {
		return err
	}

	fmt.Print(string(data))
	return nil
}

func DeleteRunAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	if c.NArg() == 0 {
		return fmt.Errorf("run id required")
	}
	run, err := database.GetRun(c.Args().First())
	if err != nil {
		return err
	}
	if err := database.DeleteRun(run.RunID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	fmt.Printf("Deleted run %s (reports kept in %s)\n", run.RunID, run.RunDir)
	return nil
}
