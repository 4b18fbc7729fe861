package config

import (
	"fmt"
	"os"

	"github.com/dtnitsch/llm-log-parser/internal/common"
	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "llp.yaml"

// InitAction writes the default configuration to a file.
func InitAction(c *cli.Context) error {
	path := defaultConfigFile
	if c.NArg() > 0 {
		path = c.Args().First()
	}
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := models.WriteConfig(path, models.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// ShowAction prints the effective configuration after file and flag overrides.
func ShowAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}
