package manifest

import (
	"fmt"
	"time"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/dtnitsch/llm-log-parser/pkg/mapreduce"
	"github.com/dtnitsch/llm-log-parser/pkg/storage"
	"gopkg.in/yaml.v3"
)

// FileName is the manifest written into each run directory.
const FileName = "manifest.yaml"

const topMistakes = 10

// Run carries what a command knows about a finished run.
// It is built by the caller to keep this package free of engine types.
type Run struct {
	RunID       string
	UUID        string
	Mode        string
	Root        string
	Baseline    string
	Summary     models.RunSummary
	Canonical   int
	Files       []models.FileResult
	MistakeText map[string]int
	Outputs     []string // file names relative to the storage directory
}

// Build assembles the manifest. Output sizes come from the storage layer;
// outputs that cannot be stat'ed are listed with size 0.
func Build(run Run, s *storage.Storage, now time.Time) RunManifest {
	m := RunManifest{
		GeneratedAt: now.Format(time.RFC3339),
		RunID:       run.RunID,
		UUID:        run.UUID,
		Mode:        run.Mode,
		Root:        run.Root,
		Baseline:    run.Baseline,
		Summary:     run.Summary,
		Canonical:   run.Canonical,
		TopMistakes: mapreduce.FormatCounts(mapreduce.TopN(run.MistakeText, topMistakes)),
		Outputs:     []OutputFile{},
		Files:       []FileSummary{},
	}

	for _, name := range run.Outputs {
		out := OutputFile{Name: name}
		if stats, err := s.GetFileStats(name); err == nil {
			out.SizeBytes = stats.SizeBytes
		}
		m.Outputs = append(m.Outputs, out)
	}

	for _, f := range run.Files {
		m.Files = append(m.Files, FileSummary{
			Path:         f.Path,
			Submitter:    f.Submitter,
			Status:       f.Status,
			Records:      f.Records,
			Items:        f.Items,
			ErrorType:    f.ErrorType,
			ErrorMessage: f.Error,
		})
	}
	return m
}

// Generate builds the manifest and saves it next to the run's reports.
// Returns the path to the generated manifest file.
func Generate(run Run, s *storage.Storage) (string, error) {
	m := Build(run, s, time.Now())

	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}
	path, err := s.SaveFile(FileName, data)
	if err != nil {
		return "", fmt.Errorf("failed to save manifest: %w", err)
	}
	return path, nil
}
