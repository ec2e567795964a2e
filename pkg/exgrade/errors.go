package exgrade

import "github.com/ukaji3/exgrade-go/pkg/exgrade/grid"

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = grid.ErrFileNotFound

// ErrInvalidFormat indicates the input file is not a valid workbook.
var ErrInvalidFormat = grid.ErrInvalidFormat

// ErrUnsupportedType indicates the file extension has no loader.
var ErrUnsupportedType = grid.ErrUnsupportedType
