package manifest

import (
	"testing"
	"time"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/dtnitsch/llm-log-parser/pkg/storage"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func testRun() Run {
	return Run{
		RunID:    "2025-03-01T09-00-00-abc",
		UUID:     "u-1",
		Mode:     "aggregate",
		Root:     "/data",
		Baseline: "A",
		Summary:  models.RunSummary{Submissions: 2, FilesProcessed: 1, FilesSkipped: 1},
		Files: []models.FileResult{
			{Path: "A/log.json", Submitter: "A", Status: models.StatusProcessed, Records: 1, Items: 2},
			{Path: "B/log.json", Submitter: "B", Status: models.StatusSkipped, ErrorType: models.ErrorTypeEnvelope, Error: "bad json"},
		},
		MistakeText: map[string]int{"wrong tense": 3, "word order": 1, "": 7},
		Outputs:     []string{"report.csv", "missing.txt"},
	}
}

func TestBuild(t *testing.T) {
	s := storage.New(t.TempDir())
	if _, err := s.SaveFile("report.csv", []byte("a,b\n")); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	m := Build(testRun(), s, now)

	if m.GeneratedAt != "2025-03-01T09:00:00Z" {
		t.Errorf("GeneratedAt = %q", m.GeneratedAt)
	}
	if diff := cmp.Diff([]string{"wrong tense:3", "word order:1"}, m.TopMistakes); diff != "" {
		t.Errorf("TopMistakes mismatch (-want +got):\n%s", diff)
	}
	wantOutputs := []OutputFile{{Name: "report.csv", SizeBytes: 4}, {Name: "missing.txt"}}
	if diff := cmp.Diff(wantOutputs, m.Outputs); diff != "" {
		t.Errorf("Outputs mismatch (-want +got):\n%s", diff)
	}
	if len(m.Files) != 2 || m.Files[1].ErrorType != models.ErrorTypeEnvelope || m.Files[1].ErrorMessage != "bad json" {
		t.Errorf("Files = %+v", m.Files)
	}
}

func TestGenerate(t *testing.T) {
	s := storage.New(t.TempDir())

	path, err := Generate(testRun(), s)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if path != s.Path(FileName) {
		t.Errorf("Generate() path = %q, want %q", path, s.Path(FileName))
	}

	data, err := s.ReadFile(FileName)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var got RunManifest
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if got.RunID != "2025-03-01T09-00-00-abc" || got.Summary.FilesSkipped != 1 || got.Baseline != "A" {
		t.Errorf("manifest = %+v", got)
	}
}
