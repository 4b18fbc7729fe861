// Package report renders aggregation results as CSV, text, JSON, markdown and PNG.
package report

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/dtnitsch/llm-log-parser/pkg/mapreduce"
	"golang.org/x/text/width"
)

// Row is one canonical item or group as it appears in tabular reports.
type Row struct {
	Index      int
	Text       string
	Total      int
	Mistakes   int
	Correct    int
	Rate       float64
	Samples    []string
	Counts     []mapreduce.Count
	Submitters []string
}

// Options bounds how much of each row is shown.
type Options struct {
	TruncateWidth    int
	SampleMistakes   int
	SampleSubmitters int
	TopN             int
}

// RowsFromStats builds rows for a baseline aggregation. Total is the number
// of submissions seen in the run.
func RowsFromStats(stats []mapreduce.AggregateStats) []Row {
	rows := make([]Row, len(stats))
	for i, s := range stats {
		rows[i] = Row{
			Index:      s.Index,
			Text:       s.Key,
			Total:      s.Total,
			Mistakes:   s.MistakeCount,
			Correct:    s.Correct(),
			Rate:       s.Rate,
			Samples:    s.UniqueMistakes,
			Counts:     s.MistakeTexts,
			Submitters: s.MistakeSubmitters,
		}
	}
	return rows
}

// RowsFromGroups builds rows for fuzzy groups. Samples are ordered by frequency.
func RowsFromGroups(groups []mapreduce.GroupStats) []Row {
	rows := make([]Row, len(groups))
	for i, g := range groups {
		samples := make([]string, len(g.MistakeTexts))
		for j, c := range g.MistakeTexts {
			samples[j] = c.Key
		}
		rows[i] = Row{
			Index:      g.Index,
			Text:       g.Key,
			Total:      g.Total,
			Mistakes:   g.Mistakes,
			Correct:    g.Correct,
			Rate:       g.Rate,
			Samples:    samples,
			Counts:     g.MistakeTexts,
			Submitters: g.Submitters,
		}
	}
	return rows
}

// Percent formats a rate as "30.00%".
func Percent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

// Truncate cuts s to at most maxWidth display columns, counting East Asian
// wide runes as two, and appends "..." when cut. Widths too narrow for the
// ellipsis get a plain cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 || DisplayWidth(s) <= maxWidth {
		return s
	}
	ellipsis := "..."
	if maxWidth <= len(ellipsis) {
		ellipsis = ""
	}
	limit := maxWidth - len(ellipsis)
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := runeWidth(r)
		if w+rw > limit {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	b.WriteString(ellipsis)
	return b.String()
}

// DisplayWidth returns the column width of s.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// sample joins the first n items; n <= 0 keeps all.
func sample(items []string, n int) string {
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}

// submitterList shows up to n names and a total when there are more.
func submitterList(names []string, n int) string {
	s := sample(names, n)
	if n > 0 && len(names) > n {
		s += fmt.Sprintf(" (+%d more, %d total)", len(names)-n, len(names))
	}
	return s
}

// OptionsFromConfig copies the report limits from the configuration.
func OptionsFromConfig(cfg models.ReportConfig) Options {
	return Options{
		TruncateWidth:    cfg.TruncateWidth,
		SampleMistakes:   cfg.SampleMistakes,
		SampleSubmitters: cfg.SampleSubmitters,
		TopN:             cfg.TopN,
	}
}
