package grid

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// Named is implemented by grids that carry workbook defined names.
type Named interface {
	// ResolveName returns the 1-based coordinates of a single-cell defined name.
	ResolveName(name string) (row, col int, ok bool)
}

// CellRef is a single-cell location.
type CellRef struct {
	Row int
	Col int
}

// WithNames attaches single-cell defined names to the grid.
func (m *Memory) WithNames(names map[string]CellRef) *Memory {
	m.names = names
	return m
}

// ResolveName implements Named. Names are matched case-insensitively.
func (m *Memory) ResolveName(name string) (row, col int, ok bool) {
	for n, ref := range m.names {
		if strings.EqualFold(n, name) {
			return ref.Row, ref.Col, true
		}
	}
	return 0, 0, false
}

// extractNames collects defined names that refer to a single cell on sheetName.
// Workbook-scoped and sheet-scoped names are both included.
func extractNames(f *excelize.File, sheetName string) map[string]CellRef {
	result := make(map[string]CellRef)

	for _, dn := range f.GetDefinedName() {
		if strings.HasPrefix(strings.ToLower(dn.Name), "_xlnm.") {
			continue
		}
		if dn.Scope != "" && dn.Scope != "Workbook" && dn.Scope != sheetName {
			continue
		}
		sheet, ref, ok := parseCellReference(dn.RefersTo)
		if !ok || (sheet != "" && sheet != sheetName) {
			continue
		}
		result[dn.Name] = ref
	}

	return result
}

// parseCellReference parses a single-cell reference string.
// Format: 'SheetName'!$G$1, SheetName!$G$1 or G1
func parseCellReference(ref string) (string, CellRef, bool) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "=")

	// Ranges and unions are not single cells
	if strings.ContainsAny(ref, ":,") {
		return "", CellRef{}, false
	}

	var sheet string
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		sheet = strings.Trim(ref[:idx], "'")
		ref = ref[idx+1:]
	}

	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(ref, "$", ""))
	if err != nil {
		return "", CellRef{}, false
	}
	return sheet, CellRef{Row: row, Col: col}, true
}
