package aggregate

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/dtnitsch/llm-log-parser/pkg/manifest"
	"github.com/dtnitsch/llm-log-parser/pkg/session"
	"github.com/dtnitsch/llm-log-parser/pkg/storage"
	"github.com/google/uuid"
)

const (
	modeAggregate = "aggregate"
	modeGroup     = "group"
	modeScan      = "scan"
)

// run tracks the directory and outputs of one command invocation.
type run struct {
	ID       string
	UUID     string
	Created  time.Time
	Mode     string
	Root     string
	Baseline string
	Dir      string

	outputDir string
	store     *storage.Storage
	outputs   []string
	logger    *slog.Logger
}

func startRun(cfg *models.Config, logger *slog.Logger, mode, root, baseline string) (*run, error) {
	r := &run{
		UUID:      uuid.NewString(),
		Created:   time.Now(),
		Mode:      mode,
		Root:      root,
		Baseline:  baseline,
		outputDir: cfg.OutputDir,
		logger:    logger,
	}
	r.ID = session.GenerateRunID(r.Created, mode, root, baseline, r.UUID)

	dir, err := session.EnsureRunDir(cfg.OutputDir, r.ID)
	if err != nil {
		return nil, err
	}
	r.Dir = dir
	r.store = storage.New(dir)
	return r, nil
}

// write renders one report into the run directory.
func (r *run) write(name string, fn func(io.Writer) error) error {
	if _, err := r.store.Render(name, fn); err != nil {
		return err
	}
	r.outputs = append(r.outputs, name)
	return nil
}

func (r *run) save(name string, data []byte) error {
	if _, err := r.store.SaveFile(name, data); err != nil {
		return err
	}
	r.outputs = append(r.outputs, name)
	return nil
}

// finish writes manifest.yaml and records the run in index.yaml.
// Index failures are logged; the reports are already on disk.
func (r *run) finish(sum models.RunSummary, canonical int, files []models.FileResult, mistakeText map[string]int) error {
	_, err := manifest.Generate(manifest.Run{
		RunID:       r.ID,
		UUID:        r.UUID,
		Mode:        r.Mode,
		Root:        r.Root,
		Baseline:    r.Baseline,
		Summary:     sum,
		Canonical:   canonical,
		Files:       files,
		MistakeText: mistakeText,
		Outputs:     r.outputs,
	}, r.store)
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	info := session.NewRunInfo(r.ID, r.UUID, r.Mode, r.Root, r.Baseline, r.Created, sum)
	info.Outputs = append(append([]string{}, r.outputs...), manifest.FileName)
	if err := session.UpdateRunIndex(r.outputDir, info); err != nil {
		r.logger.Warn("failed to update run index", "error", err)
	}
	return nil
}

func printSummary(r *run, sum models.RunSummary) {
	fmt.Printf("Run %s (%s)\n", r.ID, r.Mode)
	fmt.Printf("  Submissions: %d\n", sum.Submissions)
	fmt.Printf("  Files:       %d processed, %d skipped\n", sum.FilesProcessed, sum.FilesSkipped)
	fmt.Printf("  Records:     %d (%d without payload, %d parse failures)\n", sum.Records, sum.PayloadNotFound, sum.ParseFailures)
	fmt.Printf("  Items:       %d", sum.Items)
	if r.Mode == modeAggregate {
		fmt.Printf(" (%d unmatched)", sum.UnmatchedItems)
	}
	fmt.Printf("\nResults: %s\n", r.Dir)
}
