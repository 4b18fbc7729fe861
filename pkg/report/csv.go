package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dtnitsch/llm-log-parser/models"
)

// utf8BOM lets spreadsheet tools detect UTF-8 when opening the CSV.
const utf8BOM = "\ufeff"

var csvHeader = []string{
	"index", "text", "total", "mistakes", "correct", "mistake_rate", "sample_mistakes", "submitters",
}

// WriteCSV writes one row per canonical item or group.
func WriteCSV(w io.Writer, rows []Row, opts Options) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Index),
			Truncate(r.Text, opts.TruncateWidth),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Mistakes),
			strconv.Itoa(r.Correct),
			Percent(r.Rate),
			sample(r.Samples, opts.SampleMistakes),
			submitterList(r.Submitters, opts.SampleSubmitters),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

var scanHeader = []string{
	"folder", "file", "message_index", "sentence_index", "text", "original_text", "flag", "is_mistake", "mistake", "timestamp",
}

// WriteScanCSV writes every scan record as one row.
func WriteScanCSV(w io.Writer, records []models.ScanRecord) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(scanHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		record := []string{
			r.Submitter,
			r.SourceFile,
			strconv.Itoa(r.RecordIndex),
			strconv.Itoa(r.SentenceIndex),
			r.Text,
			r.OriginalText,
			r.Flag,
			strconv.FormatBool(r.IsMistake),
			r.Mistake,
			r.Timestamp,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
