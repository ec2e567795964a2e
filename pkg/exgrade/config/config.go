// Package config loads grader configuration from YAML with environment overrides.
package config

import (
	"strings"
	"time"

	"github.com/ukaji3/exgrade-go/pkg/exgrade/scoring"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/template"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/validator"
	"github.com/xuri/excelize/v2"
)

// Config is the root configuration.
type Config struct {
	Grading    GradingConfig    `yaml:"grading"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Template   TemplateConfig   `yaml:"template"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Batch      BatchConfig      `yaml:"batch"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ColumnConfig maps a role to its header text and fallback column.
type ColumnConfig struct {
	Header   string `yaml:"header"`
	Fallback *int   `yaml:"fallback"`
}

// GradingConfig configures the validator.
type GradingConfig struct {
	Qty           ColumnConfig `yaml:"qty"`
	Price         ColumnConfig `yaml:"price"`
	Total         ColumnConfig `yaml:"total"`
	AggregateCell string       `yaml:"aggregate_cell"`
	// Tolerance is a pointer so that an explicit 0 survives defaulting.
	Tolerance *float64 `yaml:"tolerance"`
}

// ScoringConfig configures the model-backed scorer. Without an API key the
// deterministic stub scores alone.
type ScoringConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// TemplateConfig locates the task template.
type TemplateConfig struct {
	Path string `yaml:"path"`
}

// TranscriptConfig locates the interview transcript.
type TranscriptConfig struct {
	Path string `yaml:"path"`
}

// BatchConfig configures concurrent grading.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	ListenAddress   string        `yaml:"listen_address"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MetricsEnabled  *bool         `yaml:"metrics_enabled"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ValidatorOptions converts the grading section into validator options.
// ApplyDefaults must have run first.
func (c *Config) ValidatorOptions() validator.Options {
	g := c.Grading
	return validator.Options{
		Qty:           validator.Role{Header: g.Qty.Header, Fallback: deref(g.Qty.Fallback)},
		Price:         validator.Role{Header: g.Price.Header, Fallback: deref(g.Price.Fallback)},
		Total:         validator.Role{Header: g.Total.Header, Fallback: deref(g.Total.Fallback)},
		AggregateCell: g.AggregateCell,
		Tolerance:     deref(g.Tolerance),
	}
}

// RemoteScoring converts the scoring section into scorer settings.
func (c *Config) RemoteScoring() scoring.RemoteConfig {
	s := c.Scoring
	return scoring.RemoteConfig{
		APIKey:      s.APIKey,
		BaseURL:     s.BaseURL,
		Model:       s.Model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		Timeout:     s.Timeout,
	}
}

// TemplateLayout returns the template layout matching the grading section.
func (c *Config) TemplateLayout() template.Layout {
	layout := template.DefaultLayout()
	layout.Headers = []string{c.Grading.Qty.Header, c.Grading.Price.Header, c.Grading.Total.Header}
	if _, _, err := excelize.CellNameToCoordinates(strings.ReplaceAll(c.Grading.AggregateCell, "$", "")); err == nil {
		layout.AggregateCell = strings.ReplaceAll(c.Grading.AggregateCell, "$", "")
	} else {
		// A defined name: keep the default cell and name it.
		layout.AggregateName = c.Grading.AggregateCell
	}
	return layout
}

// MetricsOn reports whether the metrics endpoint is enabled.
func (c *Config) MetricsOn() bool {
	return c.Server.MetricsEnabled == nil || *c.Server.MetricsEnabled
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
