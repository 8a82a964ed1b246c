package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for jsontab
type Config struct {
	Flatten FlattenConfig `yaml:"flatten"`
	Table   TableConfig   `yaml:"table"`
	Schema  SchemaConfig  `yaml:"schema"`
	Dev     DevConfig     `yaml:"dev"`
}

// FlattenConfig controls how nested paths become column names
type FlattenConfig struct {
	Separator string `yaml:"separator"`
	KeyCase   string `yaml:"key_case"`
	KeepEmpty bool   `yaml:"keep_empty"`
}

// TableConfig controls the text table display
type TableConfig struct {
	Format    string `yaml:"format"`
	MaxWidth  int    `yaml:"max_width"`
	ShowIndex bool   `yaml:"show_index"`
	ShowInfo  bool   `yaml:"show_info"`
}

// SchemaConfig controls schema inference and rendering
type SchemaConfig struct {
	Detailed         bool   `yaml:"detailed"`
	Format           string `yaml:"format"`
	Title            string `yaml:"title"`
	PatternCacheSize int    `yaml:"pattern_cache_size"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Known values for the enumerated settings.
var (
	TableFormats  = []string{"grid", "plain", "simple", "github", "fancy_grid"}
	SchemaFormats = []string{"json", "yaml", "markdown", "text"}
	KeyCases      = []string{"original", "snake", "camel", "lower_camel", "kebab"}
	LogLevels     = []string{"debug", "info", "warn", "error"}
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Flatten: FlattenConfig{
			Separator: ".",
			KeyCase:   "original",
			KeepEmpty: false,
		},
		Table: TableConfig{
			Format:    "grid",
			MaxWidth:  50,
			ShowIndex: true,
			ShowInfo:  true,
		},
		Schema: SchemaConfig{
			Detailed:         false,
			Format:           "json",
			Title:            "Inferred schema",
			PatternCacheSize: 4096,
		},
		Dev: DevConfig{
			Debug:    false,
			LogLevel: "warn",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// Validate checks numeric bounds and rewrites enumerated settings to their
// canonical snake_case spelling, so "lowerCamel" and "fancy-grid" are accepted.
func (c *Config) Validate() error {
	if c.Flatten.Separator == "" {
		return fmt.Errorf("flatten.separator must not be empty")
	}
	if c.Table.MaxWidth < 4 {
		return fmt.Errorf("table.max_width must be at least 4, got %d", c.Table.MaxWidth)
	}
	if c.Schema.PatternCacheSize < 0 {
		return fmt.Errorf("schema.pattern_cache_size must not be negative")
	}

	enums := []struct {
		field   string
		value   *string
		allowed []string
	}{
		{"flatten.key_case", &c.Flatten.KeyCase, KeyCases},
		{"table.format", &c.Table.Format, TableFormats},
		{"schema.format", &c.Schema.Format, SchemaFormats},
		{"dev.log_level", &c.Dev.LogLevel, LogLevels},
	}
	for _, e := range enums {
		canonical := strcase.ToSnake(*e.value)
		if !slices.Contains(e.allowed, canonical) {
			return fmt.Errorf("%s: unknown value %q (want one of %v)", e.field, *e.value, e.allowed)
		}
		*e.value = canonical
	}
	return nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsontab.yml", ".jsontab.yaml", "jsontab.yml", "jsontab.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Overrides carries values given on the command line. Empty strings, zero
// widths and nil booleans mean "not given".
type Overrides struct {
	Separator    string
	KeyCase      string
	KeepEmpty    *bool
	TableFormat  string
	MaxWidth     int
	ShowIndex    *bool
	ShowInfo     *bool
	Detailed     *bool
	SchemaFormat string
	Debug        *bool
	LogFile      string
}

// MergeConfigs applies the explicitly set CLI overrides on top of a base config
func MergeConfigs(base *Config, override Overrides) *Config {
	merged := *base

	if override.Separator != "" {
		merged.Flatten.Separator = override.Separator
	}
	if override.KeyCase != "" {
		merged.Flatten.KeyCase = override.KeyCase
	}
	if override.KeepEmpty != nil {
		merged.Flatten.KeepEmpty = *override.KeepEmpty
	}
	if override.TableFormat != "" {
		merged.Table.Format = override.TableFormat
	}
	if override.MaxWidth > 0 {
		merged.Table.MaxWidth = override.MaxWidth
	}
	if override.ShowIndex != nil {
		merged.Table.ShowIndex = *override.ShowIndex
	}
	if override.ShowInfo != nil {
		merged.Table.ShowInfo = *override.ShowInfo
	}
	if override.Detailed != nil {
		merged.Schema.Detailed = *override.Detailed
	}
	if override.SchemaFormat != "" {
		merged.Schema.Format = override.SchemaFormat
	}
	if override.Debug != nil {
		merged.Dev.Debug = *override.Debug
		if merged.Dev.Debug {
			merged.Dev.LogLevel = "debug"
		}
	}
	if override.LogFile != "" {
		merged.Dev.LogFile = override.LogFile
	}

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence:
// CLI > config file > defaults
func LoadConfigWithCLI(configPath string, override Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	merged := MergeConfigs(cfg, override)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}
