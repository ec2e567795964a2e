// Package models defines data structures for workbook grading.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies what a cell holds.
type Kind int

const (
	// KindAbsent is a cell that holds nothing.
	KindAbsent Kind = iota
	// KindNumber is a numeric cell.
	KindNumber
	// KindText is a text cell. Empty text is still present.
	KindText
	// KindBool is a boolean cell.
	KindBool
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return "absent"
	}
}

// CellValue is a single raw cell value as read from a grid.
// The zero value is an absent cell.
type CellValue struct {
	Kind Kind
	Num  float64
	Text string
	Bool bool
}

// Absent returns an absent cell value.
func Absent() CellValue { return CellValue{} }

// Number returns a numeric cell value.
func Number(f float64) CellValue { return CellValue{Kind: KindNumber, Num: f} }

// Text returns a text cell value.
func Text(s string) CellValue { return CellValue{Kind: KindText, Text: s} }

// Bool returns a boolean cell value.
func Bool(b bool) CellValue { return CellValue{Kind: KindBool, Bool: b} }

// ValueOf converts a Go value into a CellValue.
// nil becomes absent; unsupported types are rendered as text.
func ValueOf(v any) CellValue {
	switch x := v.(type) {
	case nil:
		return Absent()
	case CellValue:
		return x
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case string:
		return Text(x)
	case bool:
		return Bool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return Text("")
		}
		return Text(string(b))
	}
}

// IsAbsent reports whether the cell holds nothing.
func (v CellValue) IsAbsent() bool { return v.Kind == KindAbsent }

// Interface returns the value as nil, float64, string or bool.
func (v CellValue) Interface() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindText:
		return v.Text
	case KindBool:
		return v.Bool
	default:
		return nil
	}
}

// String renders the value for logs and messages.
func (v CellValue) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return strconv.Quote(v.Text)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return "<absent>"
	}
}

// MarshalJSON encodes the value as null, a number, a string or a boolean.
// Non-finite numbers have no JSON number form and are encoded as
// {"number": "NaN" | "+Inf" | "-Inf"} so that they stay numbers on replay.
func (v CellValue) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNumber && !isFinite(v.Num) {
		return json.Marshal(nonFinite{Number: strconv.FormatFloat(v.Num, 'g', -1, 64)})
	}
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes null, a number, a string, a boolean or a tagged
// non-finite number.
func (v *CellValue) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var nf nonFinite
		if err := json.Unmarshal(trimmed, &nf); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(nf.Number, 64)
		if err != nil {
			return fmt.Errorf("invalid non-finite cell %q: %w", nf.Number, err)
		}
		*v = Number(f)
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

// nonFinite is the JSON form of a NaN or infinite numeric cell.
type nonFinite struct {
	Number string `json:"number"`
}
