// Package template generates the blank task workbook handed to candidates.
package template

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet the task is written to.
const DefaultSheet = "Sheet1"

// Layout describes the task workbook.
type Layout struct {
	// Headers are written to row 1 starting at A1.
	Headers []string
	// Rows are sample qty/price pairs; their totals are left for the candidate.
	Rows [][2]float64
	// AggregateCell is left empty for the candidate's sum.
	AggregateCell string
	// AggregateName, when set, is defined as a workbook name for AggregateCell.
	AggregateName string
}

// DefaultLayout returns the standard Qty/Price/Total task.
func DefaultLayout() Layout {
	return Layout{
		Headers:       []string{"Qty", "Price", "Total"},
		Rows:          [][2]float64{{2, 100}, {5, 9.99}, {1, 250}},
		AggregateCell: "G1",
	}
}

// Build creates the task workbook. The caller must close the returned file.
func Build(layout Layout) (*excelize.File, error) {
	aggCol, aggRow, err := excelize.CellNameToCoordinates(layout.AggregateCell)
	if err != nil {
		return nil, fmt.Errorf("invalid aggregate cell %q: %w", layout.AggregateCell, err)
	}

	f := excelize.NewFile()

	header := make([]any, len(layout.Headers))
	for i, h := range layout.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(DefaultSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	for i, r := range layout.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []any{r[0], r[1]}
		if err := f.SetSheetRow(DefaultSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if layout.AggregateName != "" {
		ref, err := excelize.CoordinatesToCellName(aggCol, aggRow, true)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetDefinedName(&excelize.DefinedName{
			Name:     layout.AggregateName,
			RefersTo: DefaultSheet + "!" + ref,
		}); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to define %q: %w", layout.AggregateName, err)
		}
	}

	return f, nil
}

// Write streams the task workbook to w.
func Write(w io.Writer, layout Layout) error {
	f, err := Build(layout)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}

// Save writes the task workbook to path, creating parent directories.
func Save(path string, layout Layout) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := Build(layout)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save template %q: %w", path, err)
	}
	return nil
}

// EnsureFile creates the template at path unless a file already exists there.
// It reports whether a new file was written.
func EnsureFile(path string, layout Layout) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := Save(path, layout); err != nil {
		return false, err
	}
	return true, nil
}
