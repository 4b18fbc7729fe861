package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/dtnitsch/llm-log-parser/pkg/mapreduce"
)

// StatEntry is the per-key shape of the statistics export.
type StatEntry struct {
	TotalSubmissions int      `json:"total_submissions"`
	MistakeCount     int      `json:"mistake_count"`
	MistakeRate      string   `json:"mistake_rate"`
	UniqueMistakes   []string `json:"unique_mistakes"`
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteStatistics writes every canonical key with its counts and rate.
func WriteStatistics(w io.Writer, stats []mapreduce.AggregateStats) error {
	out := make(map[string]StatEntry, len(stats))
	for _, s := range stats {
		unique := s.UniqueMistakes
		if unique == nil {
			unique = []string{}
		}
		out[s.Key] = StatEntry{
			TotalSubmissions: s.Total,
			MistakeCount:     s.MistakeCount,
			MistakeRate:      Percent(s.Rate),
			UniqueMistakes:   unique,
		}
	}
	return encode(w, out)
}

// WriteSubmitterMistakes writes key -> submitter -> mistake for keys with mistakes.
func WriteSubmitterMistakes(w io.Writer, mistakes map[string][]models.MistakeRecord) error {
	return encode(w, mapreduce.SubmitterMistakes(mistakes))
}

// WriteCounts writes counts as an ordered list of {key, count} objects.
func WriteCounts(w io.Writer, counts []mapreduce.Count) error {
	if counts == nil {
		counts = []mapreduce.Count{}
	}
	return encode(w, counts)
}

// ScanExport is the JSON document written by scan mode.
type ScanExport struct {
	ScanTime      string                  `json:"scan_time"`
	Root          string                  `json:"root"`
	TotalRecords  int                     `json:"total_records"`
	Correct       int                     `json:"correct"`
	Mistakes      int                     `json:"mistakes"`
	Unflagged     int                     `json:"unflagged"`
	Summary       models.RunSummary       `json:"summary"`
	FieldMappings models.FieldConfig      `json:"field_mappings"`
	Folders       []mapreduce.FolderStats `json:"folders"`
	Records       []models.ScanRecord     `json:"record_details"`
}

// WriteScanJSON writes the full scan listing.
func WriteScanJSON(w io.Writer, scannedAt time.Time, root string, fields models.FieldConfig, sum models.RunSummary, records []models.ScanRecord) error {
	exp := ScanExport{
		ScanTime:      scannedAt.Format(time.RFC3339),
		Root:          root,
		TotalRecords:  len(records),
		Summary:       sum,
		FieldMappings: fields,
		Folders:       mapreduce.FolderAccuracy(records),
		Records:       records,
	}
	for _, r := range records {
		switch {
		case r.IsMistake:
			exp.Mistakes++
		case r.IsCorrect:
			exp.Correct++
		default:
			exp.Unflagged++
		}
	}
	if exp.Records == nil {
		exp.Records = []models.ScanRecord{}
	}
	return encode(w, exp)
}
