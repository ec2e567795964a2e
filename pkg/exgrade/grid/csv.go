package grid

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
)

// ReadCSV loads a CSV document as a grid. Numeric fields become numbers
// and empty fields are absent.
func ReadCSV(r io.Reader) (*Memory, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, NewLoadError("", "csv", errors.Join(ErrInvalidFormat, err))
	}

	rows := make([][]models.CellValue, len(records))
	for i, record := range records {
		cells := make([]models.CellValue, len(record))
		for j, field := range record {
			if field == "" {
				continue
			}
			cells[j] = parseValue(field)
		}
		rows[i] = cells
	}
	return NewMemory(rows), nil
}

// Open loads a grid from a file, choosing the loader by extension.
func Open(path string) (*Memory, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return OpenFile(path)
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, NewLoadError(path, "open", ErrFileNotFound)
			}
			return nil, NewLoadError(path, "open", err)
		}
		defer file.Close()

		g, err := ReadCSV(file)
		if err != nil {
			var loadErr *LoadError
			if errors.As(err, &loadErr) {
				loadErr.Path = path
			}
			return nil, err
		}
		return g, nil
	default:
		return nil, NewLoadError(path, "open", ErrUnsupportedType)
	}
}
