package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "grading.tolerance").
	Field   string
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field error found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the configuration and returns a ValidationError listing
// every problem, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	if err := cfg.ValidatorOptions().Check(); err != nil {
		errs = append(errs, FieldError{Field: "grading", Message: err.Error()})
	}
	for name, col := range map[string]ColumnConfig{"qty": cfg.Grading.Qty, "price": cfg.Grading.Price, "total": cfg.Grading.Total} {
		if strings.TrimSpace(col.Header) == "" {
			errs = append(errs, FieldError{Field: "grading." + name + ".header", Message: "must not be empty"})
		}
	}

	if u, err := url.Parse(cfg.Scoring.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, FieldError{Field: "scoring.base_url", Message: fmt.Sprintf("must be an http(s) URL, got %q", cfg.Scoring.BaseURL)})
	}
	if cfg.Scoring.MaxTokens < 1 {
		errs = append(errs, FieldError{Field: "scoring.max_tokens", Message: "must be positive"})
	}
	if cfg.Scoring.Timeout <= 0 {
		errs = append(errs, FieldError{Field: "scoring.timeout", Message: "must be positive"})
	}
	if cfg.Scoring.Temperature < 0 || cfg.Scoring.Temperature > 2 {
		errs = append(errs, FieldError{Field: "scoring.temperature", Message: fmt.Sprintf("must be within [0, 2], got %g", cfg.Scoring.Temperature)})
	}

	if cfg.Template.Path == "" {
		errs = append(errs, FieldError{Field: "template.path", Message: "must not be empty"})
	}
	if cfg.Transcript.Path == "" {
		errs = append(errs, FieldError{Field: "transcript.path", Message: "must not be empty"})
	}
	if cfg.Batch.Workers < 1 {
		errs = append(errs, FieldError{Field: "batch.workers", Message: fmt.Sprintf("must be >= 1, got %d", cfg.Batch.Workers)})
	}

	if cfg.Server.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "must not be empty"})
	}
	if cfg.Server.MaxUploadBytes < 1 {
		errs = append(errs, FieldError{Field: "server.max_upload_bytes", Message: "must be positive"})
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", cfg.Logging.Level)})
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, FieldError{Field: "logging.format", Message: fmt.Sprintf("must be text or json, got %q", cfg.Logging.Format)})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
