package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "balancemate.yaml"

// EnvPrefix prefixes environment overrides, e.g. BALANCEMATE_PATHS_TEMPLATE.
// Only prefixed keys are read.
const EnvPrefix = "BALANCEMATE"

// Config represents the top-level balancemate.yaml configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" split_words:"true"`
	Report   ReportConfig   `yaml:"report" split_words:"true"`
	Calendar CalendarConfig `yaml:"calendar" split_words:"true"`
	Logging  LoggingConfig  `yaml:"logging" split_words:"true"`
}

// PathsConfig locates the template asset and generated files.
type PathsConfig struct {
	Template  string `yaml:"template" split_words:"true" validate:"required"`
	OutputDir string `yaml:"output_dir" split_words:"true" validate:"required"`
	RunLog    string `yaml:"run_log" split_words:"true"` // empty disables the run history
}

// ReportConfig controls the generated workbook layout.
type ReportConfig struct {
	FilePrefix   string `yaml:"file_prefix" split_words:"true" validate:"required,excludesall=/\\"`
	StartRow     int    `yaml:"start_row" split_words:"true" validate:"min=1"`
	NumberFormat string `yaml:"number_format" split_words:"true" validate:"required"`
}

// CalendarConfig bounds the years offered for a report.
type CalendarConfig struct {
	YearStart int `yaml:"year_start" split_words:"true" validate:"min=1900"`
	YearEnd   int `yaml:"year_end" split_words:"true" validate:"gtefield=YearStart"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	Level  string `yaml:"level" split_words:"true" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" split_words:"true" validate:"oneof=console json"`
}

var validate = validator.New()

// Load reads a balancemate.yaml file from disk. Fields missing from the
// file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists and falls back to Default
// otherwise. Environment overrides are applied and the result validated.
func LoadOrDefault(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		cfg, err = Load(path)
		if err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnv overlays BALANCEMATE_* environment variables onto cfg.
// Unset variables leave the current value alone.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("loading config from env: %w", err)
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Default returns a Config matching the layout created by `balancemate init`.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Template:  "docs/original/balance-mate-template.xlsx",
			OutputDir: "temp",
			RunLog:    "logs/run-log.csv",
		},
		Report: ReportConfig{
			FilePrefix:   "balance-mate",
			StartRow:     8,
			NumberFormat: "#,##0.00",
		},
		Calendar: CalendarConfig{
			YearStart: 2025,
			YearEnd:   2039,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
