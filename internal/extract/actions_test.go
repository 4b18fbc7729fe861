package extract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtnitsch/llm-log-parser/internal/common"
	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/urfave/cli/v2"
)

func testApp() *cli.App {
	return &cli.App{
		Name:  "llp",
		Flags: common.GlobalFlags(),
		Commands: []*cli.Command{{
			Name: "extract",
			Flags: append(common.RunFlags(),
				&cli.StringFlag{Name: "out-dir"},
				&cli.BoolFlag{Name: "png"},
			),
			Action: ExtractAction,
		}},
	}
}

func writeEnvelope(t *testing.T, path string, raws ...string) {
	t.Helper()
	env := models.Envelope{FolderName: "student-01", Timestamp: "2025-03-01 09:00:00", TotalMessages: len(raws)}
	for i, r := range raws {
		env.RawMessages = append(env.RawMessages, models.RawMessage{MessageIndex: i + 1, RawContent: r})
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractAction(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "run.json")
	writeEnvelope(t, in,
		`Message(content='{\"output_arr_obj\": [{\"chinese_txt\": \"他很好\", \"mistake\": \"\"}]}' node_title='End')`,
		`no payload here`,
	)
	out := filepath.Join(dir, "md")

	if err := testApp().Run([]string{"llp", "--quiet", "extract", "--out-dir", out, in}); err != nil {
		t.Fatalf("extract error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "run.md"))
	if err != nil {
		t.Fatalf("failed to read markdown: %v", err)
	}
	got := string(data)
	for _, want := range []string{
		"**folder_name**\n*student-01*",
		"## Message 1",
		"**chinese_txt**\n*他很好*",
		"**raw_content**\n*no payload here*",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q:\n%s", want, got)
		}
	}
}

func TestExtractAction_PNG(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "run.json")
	writeEnvelope(t, in, `content='{\"comment\": \"ok\"}' node_title`)
	out := filepath.Join(dir, "out")

	if err := testApp().Run([]string{"llp", "--quiet", "extract", "--png", "--out-dir", out, in}); err != nil {
		t.Fatalf("extract error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "run_1.png")); err != nil {
		t.Errorf("missing run_1.png: %v", err)
	}
}

func TestExtractAction_AllUnreadable(t *testing.T) {
	err := testApp().Run([]string{"llp", "--quiet", "extract", filepath.Join(t.TempDir(), "missing.json")})
	if err == nil {
		t.Error("extract error = nil, want error when no file can be read")
	}
}
