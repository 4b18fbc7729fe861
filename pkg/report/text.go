package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/dtnitsch/llm-log-parser/pkg/mapreduce"
)

// Header is the common preamble of text reports.
type Header struct {
	Title       string
	Source      string
	GeneratedAt time.Time
	Summary     models.RunSummary
}

func writeHeader(b *strings.Builder, h Header, width int) {
	b.WriteString(strings.Repeat("=", width) + "\n")
	b.WriteString(h.Title + "\n")
	b.WriteString(strings.Repeat("=", width) + "\n")
	fmt.Fprintf(b, "Generated:   %s\n", h.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(b, "Source:      %s\n", h.Source)
	s := h.Summary
	fmt.Fprintf(b, "Submissions: %d\n", s.Submissions)
	fmt.Fprintf(b, "Files:       %d processed, %d skipped\n", s.FilesProcessed, s.FilesSkipped)
	fmt.Fprintf(b, "Records:     %d (%d without payload, %d parse failures)\n", s.Records, s.PayloadNotFound, s.ParseFailures)
	fmt.Fprintf(b, "Items:       %d (%d unmatched)\n", s.Items, s.UnmatchedItems)
}

// WriteDetail writes one block per row, highest mistake rate first.
func WriteDetail(w io.Writer, h Header, rows []Row, opts Options) error {
	var b strings.Builder
	writeHeader(&b, h, 80)

	var mistakes, correct int
	for _, r := range rows {
		mistakes += r.Mistakes
		correct += r.Correct
	}
	fmt.Fprintf(&b, "Groups:      %d\n", len(rows))
	fmt.Fprintf(&b, "Mistakes:    %d\n", mistakes)
	fmt.Fprintf(&b, "Correct:     %d\n", correct)
	b.WriteString("\n" + strings.Repeat("=", 80) + "\n\n")

	for _, r := range rankRows(rows) {
		fmt.Fprintf(&b, "[Group %d]\n", r.Index)
		fmt.Fprintf(&b, "Text:     %s\n", r.Text)
		fmt.Fprintf(&b, "Counts:   %d total, %d mistakes, %d correct\n", r.Total, r.Mistakes, r.Correct)
		fmt.Fprintf(&b, "Rate:     %s\n", Percent(r.Rate))
		if len(r.Counts) > 0 {
			b.WriteString("Mistakes:\n")
			for _, c := range r.Counts {
				fmt.Fprintf(&b, "  - %q: %d\n", c.Key, c.Count)
			}
		}
		if len(r.Submitters) > 0 {
			fmt.Fprintf(&b, "Submitters (%d): %s\n", len(r.Submitters), strings.Join(r.Submitters, ", "))
		}
		b.WriteString(strings.Repeat("-", 60) + "\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary writes the top N rows by mistake rate and overall totals.
func WriteSummary(w io.Writer, h Header, rows []Row, opts Options) error {
	var b strings.Builder
	writeHeader(&b, h, 50)

	ranked := rankRows(rows)
	if opts.TopN > 0 && len(ranked) > opts.TopN {
		ranked = ranked[:opts.TopN]
	}

	fmt.Fprintf(&b, "\nTop %d by mistake rate:\n", len(ranked))
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for i, r := range ranked {
		fmt.Fprintf(&b, "%d. %s (%d/%d)\n", i+1, Percent(r.Rate), r.Mistakes, r.Total)
		fmt.Fprintf(&b, "   Text:   %s\n", Truncate(r.Text, opts.TruncateWidth))
		common := "none"
		if len(r.Counts) > 0 {
			common = r.Counts[0].Key
		} else if len(r.Samples) > 0 {
			common = r.Samples[0]
		}
		fmt.Fprintf(&b, "   Common: %s\n\n", common)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteScanReport writes per-folder accuracy and the most common mistakes.
func WriteScanReport(w io.Writer, h Header, records []models.ScanRecord, opts Options) error {
	var b strings.Builder
	writeHeader(&b, h, 80)

	var mistakes, correct int
	var perFolder []map[string]int
	byFolder := make(map[string][]models.ScanRecord)
	var order []string
	for _, r := range records {
		if r.IsMistake {
			mistakes++
		} else if r.IsCorrect {
			correct++
		}
		if _, ok := byFolder[r.Submitter]; !ok {
			order = append(order, r.Submitter)
		}
		byFolder[r.Submitter] = append(byFolder[r.Submitter], r)
	}
	for _, f := range order {
		perFolder = append(perFolder, mapreduce.Map(byFolder[f]))
	}

	fmt.Fprintf(&b, "Sentences:   %d (%d correct, %d mistakes", len(records), correct, mistakes)
	if other := len(records) - correct - mistakes; other > 0 {
		fmt.Fprintf(&b, ", %d unrecognized flags", other)
	}
	b.WriteString(")\n")
	fmt.Fprintf(&b, "Accuracy:    %s\n", Percent(mapreduce.Rate(correct, len(records))))

	b.WriteString("\nPer folder:\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for _, fs := range mapreduce.FolderAccuracy(records) {
		fmt.Fprintf(&b, "%-30s %s (%d/%d)\n", fs.Folder, Percent(fs.Accuracy), fs.Correct, fs.Total)
	}

	topN := opts.TopN
	if topN <= 0 {
		topN = 10
	}
	b.WriteString("\nCommon mistakes:\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for i, c := range mapreduce.TopN(mapreduce.Reduce(perFolder), topN) {
		fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, Truncate(c.Key, opts.TruncateWidth), c.Count)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// rankRows orders rows by mistake rate descending, keeping input order on ties.
func rankRows(rows []Row) []Row {
	ranked := make([]Row, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rate > ranked[j].Rate
	})
	return ranked
}
