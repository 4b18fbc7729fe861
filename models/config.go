// Package models defines data structures for configuration and aggregation records.
package models

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for a parse/aggregate run.
// Values come from an optional YAML file and are overridden by CLI flags.
type Config struct {
	Payload             PayloadConfig   `yaml:"payload"`
	Discovery           DiscoveryConfig `yaml:"discovery"`
	Fields              FieldConfig     `yaml:"fields"`
	Flags               FlagConfig      `yaml:"flags"`
	SimilarityThreshold float64         `yaml:"similarity_threshold"`
	FuzzyMatch          bool            `yaml:"fuzzy_match"`
	Workers             int             `yaml:"workers"`
	Report              ReportConfig    `yaml:"report"`
	Database            DatabaseConfig  `yaml:"database"`
	OutputDir           string          `yaml:"output_dir"`
}

// PayloadConfig describes where the embedded payload sits inside a raw message.
// Pattern wins over the marker pair when set.
type PayloadConfig struct {
	StartMarker string `yaml:"start_marker"`
	EndMarker   string `yaml:"end_marker"`
	Pattern     string `yaml:"pattern,omitempty"`
}

type DiscoveryConfig struct {
	FilePattern string `yaml:"file_pattern"`
	Recursive   bool   `yaml:"recursive"`
}

// FieldConfig maps payload field names to their roles.
type FieldConfig struct {
	DataField    string `yaml:"data_field" json:"data_field"`
	TextField    string `yaml:"text_field" json:"text_field"`
	FlagField    string `yaml:"flag_field" json:"flag_field"`
	MistakeField string `yaml:"mistake_field" json:"mistake_field"`
	CommentField string `yaml:"comment_field" json:"comment_field"`
	InputField   string `yaml:"input_field" json:"input_field"`
	ThoughtField string `yaml:"thought_field" json:"thought_field"`
}

// FlagConfig lists the flag values recognized as mistake or correct.
type FlagConfig struct {
	Mistake []string `yaml:"mistake"`
	Correct []string `yaml:"correct"`
}

type ReportConfig struct {
	TruncateWidth    int    `yaml:"truncate_width"`
	SampleMistakes   int    `yaml:"sample_mistakes"`
	SampleSubmitters int    `yaml:"sample_submitters"`
	TopN             int    `yaml:"top_n"`
	FontPath         string `yaml:"font_path,omitempty"`
}

type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"` // empty: next to the binary
}

// DefaultConfig returns the configuration matching the translation-review workflow output.
func DefaultConfig() *Config {
	return &Config{
		Payload: PayloadConfig{
			StartMarker: "content='",
			EndMarker:   "' node_title",
		},
		Discovery: DiscoveryConfig{
			FilePattern: "*.json",
			Recursive:   true,
		},
		Fields: FieldConfig{
			DataField:    "output_arr_obj",
			TextField:    "chinese_txt",
			FlagField:    "mistake_flag",
			MistakeField: "mistake",
			CommentField: "comment",
			InputField:   "std_input",
			ThoughtField: "thought",
		},
		Flags: FlagConfig{
			Mistake: []string{"翻得不好", "false"},
			Correct: []string{"翻得好", "true"},
		},
		SimilarityThreshold: 0.8,
		FuzzyMatch:          true,
		Workers:             4,
		Report: ReportConfig{
			TruncateWidth:    100,
			SampleMistakes:   3,
			SampleSubmitters: 5,
			TopN:             10,
		},
		OutputDir: "llp-reports",
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and that a configured pattern is usable.
func (c *Config) Validate() error {
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("invalid similarity_threshold %v: must be in (0, 1]", c.SimilarityThreshold)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers %d: must be at least 1", c.Workers)
	}
	if c.Fields.TextField == "" {
		return errors.New("fields.text_field must not be empty")
	}
	if c.Payload.Pattern != "" {
		re, err := regexp.Compile(c.Payload.Pattern)
		if err != nil {
			return fmt.Errorf("invalid payload pattern: %w", err)
		}
		if re.NumSubexp() != 1 {
			return fmt.Errorf("payload pattern must have exactly one capture group, got %d", re.NumSubexp())
		}
	} else if c.Payload.StartMarker == "" || c.Payload.EndMarker == "" {
		return errors.New("payload markers must not be empty when no pattern is set")
	}
	return nil
}

// IsMistake reports whether a flag value is one of the configured mistake values.
func (c *Config) IsMistake(flag string) bool {
	for _, v := range c.Flags.Mistake {
		if v == flag {
			return true
		}
	}
	return false
}

// IsCorrect reports whether a flag value is one of the configured correct
// values. With no correct values configured, any non-mistake flag is correct.
func (c *Config) IsCorrect(flag string) bool {
	if len(c.Flags.Correct) == 0 {
		return !c.IsMistake(flag)
	}
	for _, v := range c.Flags.Correct {
		if v == flag {
			return true
		}
	}
	return false
}

// WriteConfig marshals cfg as YAML to path.
func WriteConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
