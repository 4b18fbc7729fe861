package manifest

import "github.com/dtnitsch/llm-log-parser/models"

// RunManifest is the manifest.yaml written into every run directory.
// It gives an overview of the run, the outcome of each input file and the
// most frequent mistakes without opening the full reports.
type RunManifest struct {
	GeneratedAt string            `yaml:"generated_at"`
	RunID       string            `yaml:"run_id"`
	UUID        string            `yaml:"uuid"`
	Mode        string            `yaml:"mode"`
	Root        string            `yaml:"root"`
	Baseline    string            `yaml:"baseline,omitempty"`
	Summary     models.RunSummary `yaml:"summary"`
	Canonical   int               `yaml:"canonical_items,omitempty"`
	TopMistakes []string          `yaml:"top_mistakes,omitempty"`
	Outputs     []OutputFile      `yaml:"outputs"`
	Files       []FileSummary     `yaml:"files"`
}

// OutputFile is one report written by the run.
type OutputFile struct {
	Name      string `yaml:"name"`
	SizeBytes int64  `yaml:"size_bytes"`
}

// FileSummary represents the outcome of one input file.
type FileSummary struct {
	Path         string `yaml:"path"`
	Submitter    string `yaml:"submitter"`
	Status       string `yaml:"status"` // "processed" or "skipped"
	Records      int    `yaml:"records,omitempty"`
	Items        int    `yaml:"items,omitempty"`
	ErrorType    string `yaml:"error_type,omitempty"`
	ErrorMessage string `yaml:"error_message,omitempty"`
}
