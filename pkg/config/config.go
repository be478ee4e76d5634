package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/omicslab/sra-engine/pkg/jsonutil"
)

// Config holds the submission configuration for a validation run.
// Configuration comes from a JSON or YAML file (the original submission
// tooling shipped a config.json) with environment variable overrides; all of
// it is optional and falls back to built-in defaults.
type Config struct {
	// DefaultValues maps column names to the value used when a cell is empty
	// or fails vocabulary coercion. User-provided entries are merged over the
	// built-in defaults key by key.
	DefaultValues jsonutil.FlexibleStringMap `json:"default_values" yaml:"default_values"`

	// Contact is stamped onto prepared metadata as contact_* columns.
	Contact ContactConfig `json:"contact" yaml:"contact"`

	// Performance tunes file resolution and any downstream transfer tooling.
	Performance PerformanceConfig `json:"performance" yaml:"performance"`
}

// ContactConfig identifies the submitting lab.
type ContactConfig struct {
	Name         string `json:"name" yaml:"name" env:"SRA_CONTACT_NAME" env-default:""`
	Email        string `json:"email" yaml:"email" env:"SRA_CONTACT_EMAIL" env-default:""`
	Organization string `json:"organization" yaml:"organization" env:"SRA_CONTACT_ORGANIZATION" env-default:""`
}

// PerformanceConfig holds throughput settings. BatchSize and
// EnableCheckpoints exist for compatibility with transfer tooling that
// consumes the same config file; the engine itself only uses MaxWorkers.
type PerformanceConfig struct {
	BatchSize         int  `json:"batch_size" yaml:"batch_size" env:"SRA_BATCH_SIZE" env-default:"100"`
	MaxWorkers        int  `json:"max_workers" yaml:"max_workers" env:"SRA_MAX_WORKERS" env-default:"10"`
	EnableCheckpoints bool `json:"enable_checkpoints" yaml:"enable_checkpoints" env:"SRA_ENABLE_CHECKPOINTS" env-default:"false"`
}

// Load reads configuration from the given file with environment variable
// overrides. An empty path loads built-ins and environment only; a non-empty
// path must exist. Unknown keys in the file are ignored.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.mergeBuiltinDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration, ignoring files and environment.
func Default() *Config {
	cfg := &Config{
		Performance: PerformanceConfig{
			BatchSize:  100,
			MaxWorkers: 10,
		},
	}
	cfg.mergeBuiltinDefaults()
	return cfg
}

// BuiltinDefaults returns the stock per-column default values applied when a
// config file does not override them.
func BuiltinDefaults() jsonutil.FlexibleStringMap {
	return jsonutil.FlexibleStringMap{
		// Bioproject metadata defaults
		"organism":     "Homo sapiens",
		"geo_loc_name": "United States: Ohio: Cincinnati",
		"lat_lon":      "39.10 N 84.51 W",

		// Sample metadata defaults
		"title":             "metagenomics project",
		"library_strategy":  "WGS",
		"library_source":    "METAGENOMIC",
		"library_selection": "RANDOM",
		"library_layout":    "paired",
		"platform":          "ILLUMINA",
		"instrument_model":  "Illumina NovaSeq X",
		"filetype":          "fastq",
	}
}

// DefaultFor returns the configured default for a column, or empty string.
func (c *Config) DefaultFor(column string) string {
	return c.DefaultValues[column]
}

func (c *Config) mergeBuiltinDefaults() {
	merged := BuiltinDefaults()
	for k, v := range c.DefaultValues {
		merged[k] = v
	}
	c.DefaultValues = merged
}

func (c *Config) validate() error {
	if c.Performance.MaxWorkers < 1 {
		return fmt.Errorf("performance.max_workers must be at least 1, got %d", c.Performance.MaxWorkers)
	}
	if c.Performance.BatchSize < 1 {
		return fmt.Errorf("performance.batch_size must be at least 1, got %d", c.Performance.BatchSize)
	}
	return nil
}

// Exists reports whether a config path points at a readable file. Callers use
// it to distinguish "no config given" from "config given but missing" before
// Load turns the latter into an error.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
