package validator

import (
	"strings"

	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
)

// Columns holds the resolved 0-based column of each role.
type Columns struct {
	Qty   int
	Price int
	Total int
}

// ResolveColumn returns the 0-based index of the first header cell whose
// trimmed text equals role exactly, or fallback if none does.
// Absent header cells read as empty text; numeric and boolean cells never match.
func ResolveColumn(header []models.CellValue, role string, fallback int) int {
	for i, cell := range header {
		var text string
		switch cell.Kind {
		case models.KindText:
			text = strings.TrimSpace(cell.Text)
		case models.KindAbsent:
		default:
			continue
		}
		if text == role {
			return i
		}
	}
	return fallback
}

// ResolveColumns resolves all three roles against a header row.
func ResolveColumns(header []models.CellValue, opts Options) Columns {
	return Columns{
		Qty:   ResolveColumn(header, opts.Qty.Header, opts.Qty.Fallback),
		Price: ResolveColumn(header, opts.Price.Header, opts.Price.Fallback),
		Total: ResolveColumn(header, opts.Total.Header, opts.Total.Fallback),
	}
}
