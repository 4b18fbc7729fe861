package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/dtnitsch/llm-log-parser/pkg/flatten"
	"github.com/dtnitsch/llm-log-parser/pkg/mapreduce"
	"github.com/google/go-cmp/cmp"
)

var testOpts = Options{TruncateWidth: 20, SampleMistakes: 2, SampleSubmitters: 2, TopN: 1}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghijkl", 10, "abcdefg..."},
		{"测试句子测试句子", 10, "测试句..."},
		{"测试句子", 8, "测试句子"},
		{"anything", 0, "anything"},
		{"abcdef", 3, "abc"},
		{"abcdef", 2, "ab"},
		{"abcdef", 1, "a"},
		{"测试句子", 1, ""},
		{"测试句子", 3, "测"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.input, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
		}
		if tt.width > 0 && DisplayWidth(Truncate(tt.input, tt.width)) > tt.width {
			t.Errorf("Truncate(%q, %d) is wider than %d", tt.input, tt.width, tt.width)
		}
	}
	if got := DisplayWidth("他很好。ab"); got != 10 {
		t.Errorf("DisplayWidth() = %d, want 10", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.3); got != "30.00%" {
		t.Errorf("Percent(0.3) = %q, want 30.00%%", got)
	}
}

func sampleRows() []Row {
	stats := []mapreduce.AggregateStats{
		{
			Key: "测试句子", Index: 1, Total: 4, MistakeCount: 3,
			MistakeSubmitters: []string{"B", "C", "D"}, Rate: 0.75,
			UniqueMistakes: []string{"a", "b", "c"},
			MistakeTexts:   []mapreduce.Count{{Key: "b", Count: 2}, {Key: "a", Count: 1}},
		},
		{Key: "他很好。", Index: 2, Total: 4},
	}
	return RowsFromStats(stats)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRows(), testOpts); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "\ufeff") {
		t.Error("WriteCSV() output missing UTF-8 BOM")
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("csv.ReadAll() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want header + 2", len(records))
	}
	want := []string{"1", "测试句子", "4", "3", "1", "75.00%", "a, b", "B, C (+1 more, 3 total)"}
	if diff := cmp.Diff(want, records[1]); diff != "" {
		t.Errorf("row 1 mismatch (-want +got):\n%s", diff)
	}
	if records[2][5] != "0.00%" || records[2][4] != "4" {
		t.Errorf("row 2 = %v, want 0.00%% with 4 correct", records[2])
	}
}

func TestRowsFromStats_CountsAgree(t *testing.T) {
	st := mapreduce.ReduceKey("测试句子", []models.MistakeRecord{
		{Submitter: "B", IsMistake: true, Mistake: "wrong tense"},
		{Submitter: "B", IsMistake: true, Mistake: "wrong tense"},
	}, 2)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, RowsFromStats([]mapreduce.AggregateStats{st}), testOpts); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("csv.ReadAll() error = %v", err)
	}
	want := []string{"0", "测试句子", "2", "1", "1", "50.00%", "wrong tense", "B"}
	if diff := cmp.Diff(want, records[1]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteScanCSV(t *testing.T) {
	var buf bytes.Buffer
	records := []models.ScanRecord{{Submitter: "s1", Text: "他很好", IsMistake: true, RecordIndex: 1, SentenceIndex: 2}}
	if err := WriteScanCSV(&buf, records); err != nil {
		t.Fatalf("WriteScanCSV() error = %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("csv.ReadAll() error = %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "s1" || rows[1][7] != "true" {
		t.Errorf("rows = %v, want one mistake row for s1", rows)
	}
}

func TestWriteDetailAndSummary(t *testing.T) {
	h := Header{Title: "Mistake report", Source: "/data", GeneratedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Summary: models.RunSummary{Submissions: 4, FilesProcessed: 4, UnmatchedItems: 1}}

	rows := sampleRows()
	rows[0], rows[1] = rows[1], rows[0]

	var detail bytes.Buffer
	if err := WriteDetail(&detail, h, rows, testOpts); err != nil {
		t.Fatalf("WriteDetail() error = %v", err)
	}
	out := detail.String()
	if strings.Index(out, "测试句子") > strings.Index(out, "他很好。") {
		t.Error("WriteDetail() did not put the highest rate first")
	}
	for _, want := range []string{"Items:       0 (1 unmatched)", `- "b": 2`, "Submitters (3): B, C, D", "Rate:     75.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteDetail() output missing %q", want)
		}
	}

	var summary bytes.Buffer
	if err := WriteSummary(&summary, h, rows, testOpts); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}
	out = summary.String()
	if !strings.Contains(out, "Top 1 by mistake rate") || !strings.Contains(out, "Common: b") {
		t.Errorf("WriteSummary() = %s, want top 1 with common mistake b", out)
	}
	if strings.Contains(out, "他很好。") {
		t.Error("WriteSummary() included a row beyond TopN")
	}
}

func TestWriteScanReport(t *testing.T) {
	records := []models.ScanRecord{
		{Submitter: "a", IsMistake: true, Mistake: "tense"},
		{Submitter: "a", IsCorrect: true},
		{Submitter: "b", IsMistake: true, Mistake: "tense"},
		{Submitter: "b", IsMistake: true, Mistake: "order"},
	}
	var buf bytes.Buffer
	if err := WriteScanReport(&buf, Header{Title: "Scan"}, records, Options{}); err != nil {
		t.Fatalf("WriteScanReport() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Accuracy:    25.00%", "1. tense (2)", "2. order (1)"} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteScanReport() output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteStatistics(t *testing.T) {
	stats := []mapreduce.AggregateStats{
		{Key: "测试句子", Total: 10, MistakeCount: 3, Rate: 0.3, UniqueMistakes: []string{"x"}},
		{Key: "他很好。", Total: 10},
	}
	var buf bytes.Buffer
	if err := WriteStatistics(&buf, stats); err != nil {
		t.Fatalf("WriteStatistics() error = %v", err)
	}
	var got map[string]StatEntry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	want := map[string]StatEntry{
		"测试句子": {TotalSubmissions: 10, MistakeCount: 3, MistakeRate: "30.00%", UniqueMistakes: []string{"x"}},
		"他很好。": {TotalSubmissions: 10, MistakeRate: "0.00%", UniqueMistakes: []string{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WriteStatistics() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteSubmitterMistakes(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSubmitterMistakes(&buf, map[string][]models.MistakeRecord{
		"测试句子": {{Submitter: "B", IsMistake: true, Mistake: "wrong tense"}},
	})
	if err != nil {
		t.Fatalf("WriteSubmitterMistakes() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"B": "wrong tense"`) {
		t.Errorf("WriteSubmitterMistakes() = %s", buf.String())
	}
}

func TestWriteCounts(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCounts(&buf, nil); err != nil {
		t.Fatalf("WriteCounts() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("WriteCounts(nil) = %q, want []", buf.String())
	}

	buf.Reset()
	if err := WriteCounts(&buf, []mapreduce.Count{{Key: "B", Count: 2}}); err != nil {
		t.Fatalf("WriteCounts() error = %v", err)
	}
	var got []mapreduce.Count
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff([]mapreduce.Count{{Key: "B", Count: 2}}, got); diff != "" {
		t.Errorf("WriteCounts() mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	got := OptionsFromConfig(models.DefaultConfig().Report)
	want := Options{TruncateWidth: 100, SampleMistakes: 3, SampleSubmitters: 5, TopN: 10}
	if got != want {
		t.Errorf("OptionsFromConfig() = %+v, want %+v", got, want)
	}
}

func TestWriteScanJSON(t *testing.T) {
	var buf bytes.Buffer
	records := []models.ScanRecord{{Submitter: "a", IsMistake: true}, {Submitter: "a", IsCorrect: true}, {Submitter: "a", Thought: "unsure"}}
	err := WriteScanJSON(&buf, time.Now(), "/data", models.DefaultConfig().Fields, models.RunSummary{}, records)
	if err != nil {
		t.Fatalf("WriteScanJSON() error = %v", err)
	}
	var got ScanExport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got.TotalRecords != 3 || got.Mistakes != 1 || got.Correct != 1 || got.Unflagged != 1 || got.FieldMappings.TextField != "chinese_txt" {
		t.Errorf("WriteScanJSON() = %+v", got)
	}
	if got.Records[2].Thought != "unsure" {
		t.Errorf("record thought = %q, want unsure", got.Records[2].Thought)
	}
}

func TestWriteLeaves(t *testing.T) {
	var buf bytes.Buffer
	pairs := []flatten.Pair{{Key: "chinese_txt", Value: "他很好"}, {Key: "mistake", Value: ""}}
	if err := WriteLeaves(&buf, pairs); err != nil {
		t.Fatalf("WriteLeaves() error = %v", err)
	}
	want := "**chinese_txt**\n*他很好*\n\n\n**mistake**\n**\n\n\n"
	if buf.String() != want {
		t.Errorf("WriteLeaves() = %q, want %q", buf.String(), want)
	}
}

func TestRenderLeaves(t *testing.T) {
	pairs := []flatten.Pair{
		{Key: "comment", Value: strings.Repeat("a long comment that must wrap ", 20)},
		{Key: "mistake", Value: "line one\nline two"},
	}
	buf, err := RenderLeaves("record 1", pairs, ImageOptions{Width: 400})
	if err != nil {
		t.Fatalf("RenderLeaves() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 400 || b.Dy() < 100 {
		t.Errorf("image bounds = %v, want width 400 and wrapped height", b)
	}

	if _, err := RenderLeaves("x", pairs, ImageOptions{FontPath: "/nonexistent/font.ttf"}); err == nil {
		t.Error("RenderLeaves() with missing font error = nil, want error")
	}
}
