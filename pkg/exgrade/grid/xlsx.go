package grid

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
	"github.com/xuri/excelize/v2"
)

// OpenFile loads the active sheet of an xlsx workbook into memory.
// Cached formula results are read, never the formulas themselves.
func OpenFile(path string) (*Memory, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, NewLoadError(path, "open", ErrFileNotFound)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, NewLoadError(path, "open", errors.Join(ErrInvalidFormat, err))
	}
	defer f.Close()

	return loadWorkbook(f, path)
}

// OpenReader loads the active sheet of an xlsx workbook read from r.
func OpenReader(r io.Reader) (*Memory, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewLoadError("", "open", errors.Join(ErrInvalidFormat, err))
	}
	defer f.Close()

	return loadWorkbook(f, "")
}

func loadWorkbook(f *excelize.File, path string) (*Memory, error) {
	sheetName := f.GetSheetName(f.GetActiveSheetIndex())
	if sheetName == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, NewLoadError(path, "sheet", ErrInvalidFormat)
		}
		sheetName = list[0]
	}

	rows, err := ExtractCells(f, sheetName)
	if err != nil {
		return nil, NewLoadError(path, "rows", err)
	}
	return NewMemory(rows).WithNames(extractNames(f, sheetName)), nil
}

// ExtractCells reads every row of a sheet as typed cell values.
// Row i of the result is sheet row i+1.
func ExtractCells(f *excelize.File, sheetName string) ([][]models.CellValue, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	result := make([][]models.CellValue, len(rows))
	for rowIdx, row := range rows {
		rowNum := rowIdx + 1 // 1-based row index
		cells := make([]models.CellValue, len(row))
		for colIdx, raw := range row {
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheetName, cellName)
			if err != nil {
				return nil, err
			}
			cells[colIdx] = typedValue(cellType, raw)
		}
		result[rowIdx] = cells
	}

	return result, nil
}

// typedValue converts a raw stored cell value using the cell's declared type.
func typedValue(cellType excelize.CellType, raw string) models.CellValue {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError, excelize.CellTypeDate:
		return models.Text(raw)
	case excelize.CellTypeBool:
		switch strings.ToUpper(raw) {
		case "1", "TRUE":
			return models.Bool(true)
		case "0", "FALSE":
			return models.Bool(false)
		}
		return models.Text(raw)
	default:
		if raw == "" {
			return models.Absent()
		}
		return parseValue(raw)
	}
}

// parseValue attempts to parse a stored string as a number.
// Returns a number cell, or a text cell holding the original string.
func parseValue(s string) models.CellValue {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return models.Number(f)
	}
	return models.Text(s)
}
