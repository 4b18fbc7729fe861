package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/llm-log-parser/models"
	dbpkg "github.com/dtnitsch/llm-log-parser/pkg/db"
	"github.com/dtnitsch/llm-log-parser/pkg/manifest"
	"github.com/urfave/cli/v2"
)

func testApp() *cli.App {
	dbFlag := &cli.StringFlag{Name: "db"}
	return &cli.App{
		Name: "llp",
		Commands: []*cli.Command{{
			Name: "runs",
			Subcommands: []*cli.Command{
				{Name: "list", Flags: []cli.Flag{dbFlag, &cli.IntFlag{Name: "limit"}}, Action: RunsAction},
				{Name: "show", Flags: []cli.Flag{dbFlag, &cli.IntFlag{Name: "width"}, &cli.BoolFlag{Name: "mistakes"}}, Action: RunAction},
				{Name: "get", Flags: []cli.Flag{dbFlag, &cli.StringFlag{Name: "file", Value: "manifest"}}, Action: GetRunAction},
				{Name: "delete", Flags: []cli.Flag{dbFlag}, Action: DeleteRunAction},
			},
		}},
	}
}

// seed stores one run whose directory holds a manifest.
func seed(t *testing.T) (dbPath, runDir string) {
	t.Helper()
	dbPath = filepath.Join(t.TempDir(), "runs.db")
	runDir = t.TempDir()
	if err := os.WriteFile(filepath.Join(runDir, manifest.FileName), []byte("run_id: r-1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	database, err := dbpkg.Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	err = database.InsertRun(dbpkg.Run{
		RunID: "2025-03-01T09-00-00-abc", CreatedAt: time.Now(), Root: "/data", Baseline: "A", RunDir: runDir,
		Summary: models.RunSummary{Submissions: 2},
	}, []models.CanonicalItem{{Key: "测试句子", Index: 1}}, nil, nil)
	if err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
	return dbPath, runDir
}

func TestRunActions(t *testing.T) {
	dbPath, _ := seed(t)
	app := testApp()

	for _, args := range [][]string{
		{"llp", "runs", "list", "--db", dbPath},
		{"llp", "runs", "show", "--db", dbPath},
		{"llp", "runs", "show", "--db", dbPath, "--mistakes", "2025-03-01"},
		{"llp", "runs", "get", "--db", dbPath, "2025-03-01T09"},
	} {
		if err := app.Run(args); err != nil {
			t.Errorf("%s error = %v", strings.Join(args[1:3], " "), err)
		}
	}
}

func TestGetRunAction_UnknownFile(t *testing.T) {
	dbPath, _ := seed(t)
	err := testApp().Run([]string{"llp", "runs", "get", "--db", dbPath, "--file", "bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown file type") {
		t.Errorf("get error = %v, want unknown file type", err)
	}
}

func TestGetRunAction_MissingFile(t *testing.T) {
	dbPath, _ := seed(t)
	err := testApp().Run([]string{"llp", "runs", "get", "--db", dbPath, "--file", "stats"})
	if err == nil || !strings.Contains(err.Error(), "file not found: 2_statistics_summary.json") {
		t.Errorf("get error = %v, want file not found", err)
	}
}

func TestRunAction_NoRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	err := testApp().Run([]string{"llp", "runs", "show", "--db", dbPath})
	if err == nil || !strings.Contains(err.Error(), "no runs found") {
		t.Errorf("show error = %v, want no runs found", err)
	}
}

func TestDeleteRunAction(t *testing.T) {
	dbPath, runDir := seed(t)
	app := testApp()

	if err := app.Run([]string{"llp", "runs", "delete", "--db", dbPath, "2025-03-01"}); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(runDir, manifest.FileName)); err != nil {
		t.Errorf("delete removed run reports: %v", err)
	}
	if err := app.Run([]string{"llp", "runs", "show", "--db", dbPath, "2025-03-01"}); err == nil {
		t.Error("show after delete error = nil, want not found")
	}
}
