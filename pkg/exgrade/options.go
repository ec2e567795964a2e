// Package exgrade grades quantity/price/total workbook submissions.
package exgrade

import "github.com/ukaji3/exgrade-go/pkg/exgrade/validator"

// Options configures grading.
type Options struct {
	// Validator holds column roles, the aggregate cell and the tolerance.
	Validator validator.Options
}

// DefaultOptions returns default grading options.
func DefaultOptions() Options {
	return Options{
		Validator: validator.DefaultOptions(),
	}
}
