package config

import (
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
			Name: "config",
			Subcommands: []*cli.Command{
				{Name: "init", Flags: []cli.Flag{&cli.BoolFlag{Name: "force"}}, Action: InitAction},
				{Name: "show", Flags: common.RunFlags(), Action: ShowAction},
			},
		}},
	}
}

func TestInitAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llp.yaml")
	app := testApp()

	if err := app.Run([]string{"llp", "config", "init", path}); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	cfg, err := models.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Fields.TextField != "chinese_txt" || cfg.SimilarityThreshold != 0.8 {
		t.Errorf("written config = %+v", cfg)
	}

	err = app.Run([]string{"llp", "config", "init", path})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init error = %v, want already exists", err)
	}
	if err := app.Run([]string{"llp", "config", "init", "--force", path}); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestShowAction_InvalidOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llp.yaml")
	if err := os.WriteFile(path, []byte("workers: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	app := testApp()

	if err := app.Run([]string{"llp", "--config", path, "config", "show"}); err != nil {
		t.Errorf("config show error = %v", err)
	}
	err := app.Run([]string{"llp", "--config", path, "config", "show", "--threshold", "1.5"})
	if err == nil || !strings.Contains(err.Error(), "similarity_threshold") {
		t.Errorf("config show error = %v, want threshold validation error", err)
	}
}
