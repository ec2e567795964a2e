package grid

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input is not a readable workbook.
var ErrInvalidFormat = errors.New("invalid workbook format")

// ErrUnsupportedType indicates the file extension has no loader.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrOutOfRange indicates a cell coordinate outside the sheet.
var ErrOutOfRange = errors.New("cell coordinate out of range")

// CoordinateError reports an invalid cell coordinate.
type CoordinateError struct {
	Row int
	Col int
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("cell (row %d, col %d): %v", e.Row, e.Col, ErrOutOfRange)
}

func (e *CoordinateError) Unwrap() error {
	return ErrOutOfRange
}

// LoadError represents an error while loading a grid.
type LoadError struct {
	Path      string
	Component string // "open", "sheet", "rows", "csv"
	Err       error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load error (%s): %v", e.Component, e.Err)
	}
	return fmt.Sprintf("load error in %q (%s): %v", e.Path, e.Component, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new LoadError.
func NewLoadError(path, component string, err error) *LoadError {
	return &LoadError{
		Path:      path,
		Component: component,
		Err:       err,
	}
}
