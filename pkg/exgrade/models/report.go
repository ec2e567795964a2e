package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// ReasonNonNumeric is the reason attached to rows whose quantity or price
// cannot be read as a number.
const ReasonNonNumeric = "non-numeric qty/price"

// MismatchKind distinguishes the two row mismatch shapes.
type MismatchKind int

const (
	// MismatchValue is a missing total or a total that differs from qty×price.
	MismatchValue MismatchKind = iota
	// MismatchCoercion is a row whose qty or price is not numeric.
	MismatchCoercion
)

// RowMismatch describes one data row that failed a check.
type RowMismatch struct {
	// Row is the 1-based sheet row index.
	Row int
	// Kind selects which of the remaining fields are meaningful.
	Kind MismatchKind
	// Reason is set for coercion failures.
	Reason string
	// Qty, Price and Total hold the raw cells of a coercion failure.
	Qty   CellValue
	Price CellValue
	Total CellValue
	// Expected is qty×price for value mismatches.
	Expected float64
	// Actual is the raw total cell for value mismatches.
	Actual CellValue
}

// NewCoercionMismatch creates a mismatch for a row with a non-numeric qty or price.
func NewCoercionMismatch(row int, qty, price, total CellValue) RowMismatch {
	return RowMismatch{
		Row:    row,
		Kind:   MismatchCoercion,
		Reason: ReasonNonNumeric,
		Qty:    qty,
		Price:  price,
		Total:  total,
	}
}

// NewValueMismatch creates a mismatch for a row whose total is missing or wrong.
func NewValueMismatch(row int, expected float64, actual CellValue) RowMismatch {
	return RowMismatch{
		Row:      row,
		Kind:     MismatchValue,
		Expected: expected,
		Actual:   actual,
	}
}

// MarshalJSON emits only the fields that belong to the mismatch kind.
func (m RowMismatch) MarshalJSON() ([]byte, error) {
	if m.Kind == MismatchCoercion {
		return json.Marshal(struct {
			Row    int       `json:"row"`
			Reason string    `json:"reason"`
			Qty    CellValue `json:"qty"`
			Price  CellValue `json:"price"`
			Total  CellValue `json:"total"`
		}{m.Row, m.Reason, m.Qty, m.Price, m.Total})
	}
	return json.Marshal(struct {
		Row      int       `json:"row"`
		Expected any       `json:"expected"`
		Actual   CellValue `json:"actual"`
	}{m.Row, jsonFloat(m.Expected), m.Actual})
}

// UnmarshalJSON restores a mismatch written by MarshalJSON.
func (m *RowMismatch) UnmarshalJSON(data []byte) error {
	var raw struct {
		Row      int             `json:"row"`
		Reason   string          `json:"reason"`
		Qty      CellValue       `json:"qty"`
		Price    CellValue       `json:"price"`
		Total    CellValue       `json:"total"`
		Expected json.RawMessage `json:"expected"`
		Actual   CellValue       `json:"actual"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Reason != "" {
		*m = NewCoercionMismatch(raw.Row, raw.Qty, raw.Price, raw.Total)
		m.Reason = raw.Reason
		return nil
	}
	expected, err := parseJSONFloat(raw.Expected)
	if err != nil {
		return err
	}
	*m = NewValueMismatch(raw.Row, expected, raw.Actual)
	return nil
}

// AggregateMismatch describes a failed aggregate cell check.
type AggregateMismatch struct {
	// Expected is the sum of all row-level expected totals.
	Expected float64
	// Actual is the raw aggregate cell.
	Actual CellValue
}

// MarshalJSON encodes the mismatch as {"expected": ..., "actual": ...}.
func (m AggregateMismatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Expected any       `json:"expected"`
		Actual   CellValue `json:"actual"`
	}{jsonFloat(m.Expected), m.Actual})
}

// UnmarshalJSON restores an aggregate mismatch.
func (m *AggregateMismatch) UnmarshalJSON(data []byte) error {
	var raw struct {
		Expected json.RawMessage `json:"expected"`
		Actual   CellValue       `json:"actual"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	expected, err := parseJSONFloat(raw.Expected)
	if err != nil {
		return err
	}
	m.Expected = expected
	m.Actual = raw.Actual
	return nil
}

// Report is the result of validating one grid.
type Report struct {
	// RowCount is the number of data rows with at least one of qty/price/total present.
	RowCount int
	// RowMismatches lists failed rows in ascending row order.
	RowMismatches []RowMismatch
	// AggregateMismatch is set when the aggregate cell check failed.
	AggregateMismatch *AggregateMismatch
	// ExpectedSum is the sum of qty×price over rows with numeric qty and price.
	ExpectedSum float64
	// AggregateActual is the raw aggregate cell.
	AggregateActual CellValue
	// Pass is true when there are no row mismatches and no aggregate mismatch.
	Pass bool
}

type reportJSON struct {
	RowCount      int                `json:"row_count"`
	RowMismatches []RowMismatch      `json:"row_mismatches"`
	G1Mismatch    *AggregateMismatch `json:"g1_mismatch"`
	ExpectedSum   json.RawMessage    `json:"expected_sum"`
	G1Actual      CellValue          `json:"g1_actual"`
	Pass          bool               `json:"pass"`
}

// MarshalJSON encodes the report with its stable wire field names.
func (r Report) MarshalJSON() ([]byte, error) {
	sum, err := json.Marshal(jsonFloat(r.ExpectedSum))
	if err != nil {
		return nil, err
	}
	mismatches := r.RowMismatches
	if mismatches == nil {
		mismatches = []RowMismatch{}
	}
	return json.Marshal(reportJSON{
		RowCount:      r.RowCount,
		RowMismatches: mismatches,
		G1Mismatch:    r.AggregateMismatch,
		ExpectedSum:   sum,
		G1Actual:      r.AggregateActual,
		Pass:          r.Pass,
	})
}

// UnmarshalJSON restores a report, e.g. when replaying a transcript.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw reportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sum, err := parseJSONFloat(raw.ExpectedSum)
	if err != nil {
		return err
	}
	*r = Report{
		RowCount:          raw.RowCount,
		RowMismatches:     raw.RowMismatches,
		AggregateMismatch: raw.G1Mismatch,
		ExpectedSum:       sum,
		AggregateActual:   raw.G1Actual,
		Pass:              raw.Pass,
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// jsonFloat returns f unchanged when JSON can represent it, otherwise its
// string form ("NaN", "+Inf", "-Inf").
func jsonFloat(f float64) any {
	if isFinite(f) {
		return f
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseJSONFloat(data json.RawMessage) (float64, error) {
	if len(data) == 0 || string(data) == "null" {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}
