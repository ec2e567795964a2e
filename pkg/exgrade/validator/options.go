// Package validator checks quantity/price/total workbooks.
//
// Every data row must satisfy total = qty × price, and a designated aggregate
// cell must hold the sum of all row totals. Problems are reported as data in a
// models.Report; validation itself never fails.
package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// DefaultTolerance is the absolute tolerance used for every comparison.
const DefaultTolerance = 1e-6

// DefaultAggregateCell is where the workbook total is expected.
const DefaultAggregateCell = "G1"

// Role is a logical column purpose.
type Role struct {
	// Header is the literal header text looked up in row 1.
	Header string
	// Fallback is the 0-based column used when the header is not found.
	Fallback int
}

// Options configures validation.
type Options struct {
	Qty   Role
	Price Role
	Total Role
	// AggregateCell is the A1-style location of the aggregate cell, or the
	// defined name of a single cell in the workbook.
	AggregateCell string
	// Tolerance is the absolute tolerance for row and aggregate comparisons.
	Tolerance float64
}

// DefaultOptions returns the standard Qty/Price/Total layout with the aggregate in G1.
func DefaultOptions() Options {
	return Options{
		Qty:           Role{Header: "Qty", Fallback: 0},
		Price:         Role{Header: "Price", Fallback: 1},
		Total:         Role{Header: "Total", Fallback: 2},
		AggregateCell: DefaultAggregateCell,
		Tolerance:     DefaultTolerance,
	}
}

// Check reports whether the options are usable.
func (o Options) Check() error {
	for name, r := range map[string]Role{"qty": o.Qty, "price": o.Price, "total": o.Total} {
		if r.Fallback < 0 {
			return fmt.Errorf("%s fallback column must be >= 0, got %d", name, r.Fallback)
		}
	}
	if !validCellReference(o.AggregateCell) && !validDefinedName(o.AggregateCell) {
		return fmt.Errorf("invalid aggregate cell %q: not a cell reference or defined name", o.AggregateCell)
	}
	if o.Tolerance < 0 {
		return fmt.Errorf("tolerance must be >= 0, got %g", o.Tolerance)
	}
	return nil
}

func validCellReference(s string) bool {
	_, _, err := excelize.CellNameToCoordinates(strings.ReplaceAll(s, "$", ""))
	return err == nil
}

// validDefinedName reports whether s is shaped like a workbook defined name:
// a letter or underscore followed by letters, digits, underscores or dots.
func validDefinedName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r), r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '.'):
		default:
			return false
		}
	}
	return true
}
