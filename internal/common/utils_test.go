package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/urfave/cli/v2"
)

// loadWith runs a throwaway command and returns the config it loaded.
func loadWith(t *testing.T, args ...string) (*models.Config, error) {
	t.Helper()
	var cfg *models.Config
	var loadErr error
	app := &cli.App{
		Name:  "llp",
		Flags: GlobalFlags(),
		Commands: []*cli.Command{{
			Name:  "load",
			Flags: RunFlags(),
			Action: func(c *cli.Context) error {
				cfg, loadErr = LoadConfig(c)
				return nil
			},
		}},
	}
	if err := app.Run(append([]string{"llp"}, args...)); err != nil {
		t.Fatalf("app.Run() error = %v", err)
	}
	return cfg, loadErr
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadWith(t, "load")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Workers != 4 || !cfg.FuzzyMatch || cfg.OutputDir != "llp-reports" {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_FileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llp.yaml")
	content := "workers: 2\nsimilarity_threshold: 0.9\nfields:\n  text_field: english_txt\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadWith(t, "--config", path, "load", "--workers", "8", "--exact", "--no-recursive", "--db", "/tmp/x.db")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want flag value 8", cfg.Workers)
	}
	if cfg.SimilarityThreshold != 0.9 || cfg.Fields.TextField != "english_txt" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.FuzzyMatch || cfg.Discovery.Recursive || cfg.Database.Path != "/tmp/x.db" {
		t.Errorf("flag overrides not applied: %+v", cfg)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	if _, err := loadWith(t, "load", "--workers", "0"); err == nil {
		t.Error("LoadConfig() workers=0 error = nil, want error")
	}
}
