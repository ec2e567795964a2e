package config

import (
	"time"

	"github.com/ukaji3/exgrade-go/pkg/exgrade/scoring"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/validator"
)

// Default values for configuration fields.
const (
	DefaultTemplatePath    = "templates/task1_template.xlsx"
	DefaultTranscriptPath  = "data/interviews.jsonl"
	DefaultBatchWorkers    = 4
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultMaxUploadBytes  = 10 << 20 // 10MB
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLoggingLevel    = "info"
	DefaultLoggingFormat   = "text"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field.
func ApplyDefaults(cfg *Config) {
	def := validator.DefaultOptions()
	applyColumnDefaults(&cfg.Grading.Qty, def.Qty)
	applyColumnDefaults(&cfg.Grading.Price, def.Price)
	applyColumnDefaults(&cfg.Grading.Total, def.Total)
	if cfg.Grading.AggregateCell == "" {
		cfg.Grading.AggregateCell = def.AggregateCell
	}
	if cfg.Grading.Tolerance == nil {
		tol := def.Tolerance
		cfg.Grading.Tolerance = &tol
	}

	if cfg.Scoring.BaseURL == "" {
		cfg.Scoring.BaseURL = scoring.DefaultBaseURL
	}
	if cfg.Scoring.Model == "" {
		cfg.Scoring.Model = scoring.DefaultModel
	}
	if cfg.Scoring.MaxTokens == 0 {
		cfg.Scoring.MaxTokens = scoring.DefaultMaxTokens
	}
	if cfg.Scoring.Timeout == 0 {
		cfg.Scoring.Timeout = scoring.DefaultTimeout
	}

	if cfg.Template.Path == "" {
		cfg.Template.Path = DefaultTemplatePath
	}
	if cfg.Transcript.Path == "" {
		cfg.Transcript.Path = DefaultTranscriptPath
	}
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = DefaultBatchWorkers
	}

	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
}

func applyColumnDefaults(c *ColumnConfig, role validator.Role) {
	if c.Header == "" {
		c.Header = role.Header
	}
	if c.Fallback == nil {
		fallback := role.Fallback
		c.Fallback = &fallback
	}
}
