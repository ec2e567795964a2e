package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Load loads configuration from path, or defaults when path is empty, and
// then applies EXGRADE_* environment overrides.
//
// Environment variables always take precedence over file-based configuration.
func Load(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
// Unparseable values are ignored.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("EXGRADE_GRADING_AGGREGATE_CELL"); val != "" {
		cfg.Grading.AggregateCell = val
	}
	if val := os.Getenv("EXGRADE_GRADING_TOLERANCE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Grading.Tolerance = &f
		}
	}
	if val := os.Getenv("EXGRADE_SCORING_API_KEY"); val != "" {
		cfg.Scoring.APIKey = val
	} else if val := os.Getenv("GENAI_API_KEY"); val != "" && cfg.Scoring.APIKey == "" {
		cfg.Scoring.APIKey = val
	}
	if val := os.Getenv("EXGRADE_SCORING_BASE_URL"); val != "" {
		cfg.Scoring.BaseURL = val
	}
	if val := os.Getenv("EXGRADE_SCORING_MODEL"); val != "" {
		cfg.Scoring.Model = val
	}
	if val := os.Getenv("EXGRADE_SCORING_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Scoring.Timeout = d
		}
	}
	if val := os.Getenv("EXGRADE_TEMPLATE_PATH"); val != "" {
		cfg.Template.Path = val
	}
	if val := os.Getenv("EXGRADE_TRANSCRIPT_PATH"); val != "" {
		cfg.Transcript.Path = val
	}
	if val := os.Getenv("EXGRADE_BATCH_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Batch.Workers = i
		}
	}
	if val := os.Getenv("EXGRADE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("EXGRADE_SERVER_MAX_UPLOAD_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Server.MaxUploadBytes = i
		}
	}
	if val := os.Getenv("EXGRADE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("EXGRADE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("EXGRADE_SERVER_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.MetricsEnabled = &b
		}
	}
	if val := os.Getenv("EXGRADE_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("EXGRADE_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}
