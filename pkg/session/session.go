package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dtnitsch/llm-log-parser/models"
	"gopkg.in/yaml.v3"
)

// RunInfo is one entry of <output_dir>/index.yaml.
type RunInfo struct {
	RunID          string    `yaml:"run_id"`
	UUID           string    `yaml:"uuid"`
	Created        time.Time `yaml:"created"`
	Mode           string    `yaml:"mode"`
	Root           string    `yaml:"root"`
	Baseline       string    `yaml:"baseline,omitempty"`
	Submissions    int       `yaml:"submissions"`
	FilesProcessed int       `yaml:"files_processed"`
	FilesSkipped   int       `yaml:"files_skipped"`
	UnmatchedItems int       `yaml:"unmatched_items"`
	Outputs        []string  `yaml:"outputs,omitempty"`
}

// RunIndex represents the index.yaml file.
type RunIndex struct {
	Runs []RunInfo `yaml:"runs"`
}

// NewRunInfo fills the counters of an index entry from a run summary.
func NewRunInfo(runID, uuid, mode, root, baseline string, created time.Time, sum models.RunSummary) RunInfo {
	return RunInfo{
		RunID:          runID,
		UUID:           uuid,
		Created:        created,
		Mode:           mode,
		Root:           root,
		Baseline:       baseline,
		Submissions:    sum.Submissions,
		FilesProcessed: sum.FilesProcessed,
		FilesSkipped:   sum.FilesSkipped,
		UnmatchedItems: sum.UnmatchedItems,
	}
}

// GenerateRunID creates a timestamp-first run ID.
// Format: YYYY-MM-DDTHH-MM-SS-{hash}
// The hash covers the mode, root, baseline and the uuid of the run, so two
// runs started within the same second still get distinct IDs.
func GenerateRunID(now time.Time, mode, root, baseline, uuid string) string {
	h := sha256.New()
	for _, part := range []string{mode, root, baseline, uuid} {
		h.Write([]byte(part))
		h.Write([]byte("\n"))
	}
	shortHash := hex.EncodeToString(h.Sum(nil)[:6]) // 12 char hex

	return fmt.Sprintf("%s-%s", now.Format("2006-01-02T15-04-05"), shortHash)
}

// GetRunDir returns the full path to a run directory.
func GetRunDir(baseDir, runID string) string {
	return filepath.Join(baseDir, "runs", runID)
}

// GetRunsIndexPath returns the path to the runs index file (at output root).
func GetRunsIndexPath(baseDir string) string {
	return filepath.Join(baseDir, "index.yaml")
}

// EnsureRunDir creates the run directory structure if it doesn't exist.
func EnsureRunDir(baseDir, runID string) (string, error) {
	runDir := GetRunDir(baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}
	return runDir, nil
}

// ReadRunIndex loads index.yaml. A missing file is an empty index.
func ReadRunIndex(baseDir string) (*RunIndex, error) {
	var index RunIndex
	data, err := os.ReadFile(GetRunsIndexPath(baseDir))
	if os.IsNotExist(err) {
		return &index, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run index: %w", err)
	}
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse run index: %w", err)
	}
	return &index, nil
}

// UpdateRunIndex adds or updates a run entry in index.yaml.
func UpdateRunIndex(baseDir string, info RunInfo) error {
	index, err := ReadRunIndex(baseDir)
	if err != nil {
		return err
	}

	found := false
	for i, r := range index.Runs {
		if r.RunID == info.RunID {
			index.Runs[i] = info
			found = true
			break
		}
	}
	if !found {
		index.Runs = append(index.Runs, info)
	}

	// Timestamp-first naming keeps this chronological
	sort.Slice(index.Runs, func(i, j int) bool {
		return index.Runs[i].RunID > index.Runs[j].RunID // Newest first
	})

	output, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal run index: %w", err)
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(GetRunsIndexPath(baseDir), output, 0644); err != nil {
		return fmt.Errorf("failed to write run index: %w", err)
	}

	return nil
}
