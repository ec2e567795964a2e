// Package grid provides the tabular view of a workbook sheet that grading reads from.
package grid

import (
	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
)

// Grid is a read-only sheet. Rows and columns are 1-based and row 1 is the header.
type Grid interface {
	// Header returns the cells of row 1.
	Header() []models.CellValue
	// MaxRow returns the index of the last row holding any cell.
	MaxRow() int
	// Cell returns the value at (row, col). Cells past the stored data are absent.
	// Coordinates below 1 return ErrOutOfRange.
	Cell(row, col int) (models.CellValue, error)
}

// Memory is a Grid held entirely in memory.
type Memory struct {
	rows  [][]models.CellValue
	names map[string]CellRef
}

// NewMemory creates a grid from rows of cell values. rows[0] is the header.
// The slices are owned by the grid afterwards and must not be modified.
func NewMemory(rows [][]models.CellValue) *Memory {
	return &Memory{rows: trimTrailingRows(rows)}
}

// FromRows builds a grid from Go values; nil cells are absent.
func FromRows(rows ...[]any) *Memory {
	out := make([][]models.CellValue, len(rows))
	for i, row := range rows {
		cells := make([]models.CellValue, len(row))
		for j, v := range row {
			cells[j] = models.ValueOf(v)
		}
		out[i] = cells
	}
	return NewMemory(out)
}

// Header returns a copy of row 1.
func (m *Memory) Header() []models.CellValue {
	if len(m.rows) == 0 {
		return nil
	}
	header := make([]models.CellValue, len(m.rows[0]))
	copy(header, m.rows[0])
	return header
}

// MaxRow returns the number of stored rows.
func (m *Memory) MaxRow() int {
	return len(m.rows)
}

// Cell returns the value at (row, col).
func (m *Memory) Cell(row, col int) (models.CellValue, error) {
	if row < 1 || col < 1 {
		return models.Absent(), &CoordinateError{Row: row, Col: col}
	}
	if row > len(m.rows) {
		return models.Absent(), nil
	}
	cells := m.rows[row-1]
	if col > len(cells) {
		return models.Absent(), nil
	}
	return cells[col-1], nil
}

// trimTrailingRows drops trailing rows without any present cell, so that
// MaxRow matches the last row holding data.
func trimTrailingRows(rows [][]models.CellValue) [][]models.CellValue {
	end := len(rows)
	for end > 0 && rowIsEmpty(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func rowIsEmpty(row []models.CellValue) bool {
	for _, c := range row {
		if !c.IsAbsent() {
			return false
		}
	}
	return true
}
