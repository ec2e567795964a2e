package validator

import (
	"strings"

	"github.com/ukaji3/exgrade-go/pkg/exgrade/grid"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
	"github.com/xuri/excelize/v2"
)

// rowResult is the outcome of evaluating data rows.
type rowResult struct {
	count      int
	mismatches []models.RowMismatch
	expected   []float64
}

// Validate checks every data row and the aggregate cell of g.
// It reads g without modifying it and has no other side effects, so it is
// safe to call concurrently on independent grids.
func Validate(g grid.Grid, opts Options) models.Report {
	cols := ResolveColumns(g.Header(), opts)
	rows := evaluateRows(g, cols, opts.Tolerance)
	expectedSum := sum(rows.expected)
	actual, aggMismatch := checkAggregate(g, opts.AggregateCell, expectedSum, opts.Tolerance)
	return assemble(rows, expectedSum, actual, aggMismatch)
}

// evaluateRows walks rows 2..MaxRow and compares each total with qty×price.
func evaluateRows(g grid.Grid, cols Columns, tolerance float64) rowResult {
	var res rowResult
	for r := 2; r <= g.MaxRow(); r++ {
		qty := cellAt(g, r, cols.Qty)
		price := cellAt(g, r, cols.Price)
		total := cellAt(g, r, cols.Total)

		if qty.IsAbsent() && price.IsAbsent() && total.IsAbsent() {
			continue
		}
		res.count++

		q, qok := Coerce(qty)
		p, pok := Coerce(price)
		if !qok || !pok {
			res.mismatches = append(res.mismatches, models.NewCoercionMismatch(r, qty, price, total))
			res.expected = append(res.expected, 0)
			continue
		}

		expected := q * p
		res.expected = append(res.expected, expected)

		t, tok := Coerce(total)
		if total.IsAbsent() || !tok || !withinTolerance(t, expected, tolerance) {
			res.mismatches = append(res.mismatches, models.NewValueMismatch(r, expected, total))
		}
	}
	return res
}

// checkAggregate compares the aggregate cell with the expected sum. A cell
// that cannot be located is treated as absent.
func checkAggregate(g grid.Grid, cell string, expectedSum, tolerance float64) (models.CellValue, *models.AggregateMismatch) {
	actual := models.Absent()
	if row, col, ok := locate(g, cell); ok {
		if v, err := g.Cell(row, col); err == nil {
			actual = v
		}
	}

	a, ok := Coerce(actual)
	if actual.IsAbsent() || !ok || !withinTolerance(a, expectedSum, tolerance) {
		return actual, &models.AggregateMismatch{Expected: expectedSum, Actual: actual}
	}
	return actual, nil
}

func assemble(rows rowResult, expectedSum float64, actual models.CellValue, agg *models.AggregateMismatch) models.Report {
	return models.Report{
		RowCount:          rows.count,
		RowMismatches:     rows.mismatches,
		AggregateMismatch: agg,
		ExpectedSum:       expectedSum,
		AggregateActual:   actual,
		Pass:              len(rows.mismatches) == 0 && agg == nil,
	}
}

// locate resolves an A1 reference (optionally with $ anchors) or, for grids
// that carry them, a workbook defined name.
func locate(g grid.Grid, cell string) (row, col int, ok bool) {
	if col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(cell, "$", "")); err == nil {
		return row, col, true
	}
	if named, isNamed := g.(grid.Named); isNamed {
		return named.ResolveName(cell)
	}
	return 0, 0, false
}

// cellAt reads a 0-based column of a row; lookup failures read as absent.
func cellAt(g grid.Grid, row, col int) models.CellValue {
	v, err := g.Cell(row, col+1)
	if err != nil {
		return models.Absent()
	}
	return v
}

// withinTolerance reports |a-b| <= tolerance. NaN is never within tolerance.
func withinTolerance(a, b, tolerance float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}
