package exgrade

import (
	"fmt"
	"io"

	"github.com/ukaji3/exgrade-go/pkg/exgrade/grid"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/validator"
)

// Grade validates an already loaded grid.
func Grade(g grid.Grid, opts Options) *models.Report {
	report := validator.Validate(g, opts.Validator)
	return &report
}

// GradeFile loads the active sheet of a workbook (or a CSV file) and validates it.
// Only loading can fail; every grading problem is reported in the returned report.
func GradeFile(path string, opts Options) (*models.Report, error) {
	if err := opts.Validator.Check(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	g, err := grid.Open(path)
	if err != nil {
		return nil, err
	}
	return Grade(g, opts), nil
}

// GradeReader loads an xlsx workbook from r and validates it.
func GradeReader(r io.Reader, opts Options) (*models.Report, error) {
	if err := opts.Validator.Check(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	g, err := grid.OpenReader(r)
	if err != nil {
		return nil, err
	}
	return Grade(g, opts), nil
}
