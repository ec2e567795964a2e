package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellValue_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   CellValue
		want string
	}{
		{"absent", Absent(), `null`},
		{"number", Number(2.5), `2.5`},
		{"text", Text("+Inf"), `"+Inf"`},
		{"bool", Bool(true), `true`},
		{"positive infinity", Number(math.Inf(1)), `{"number":"+Inf"}`},
		{"negative infinity", Number(math.Inf(-1)), `{"number":"-Inf"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var got CellValue
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestCellValue_NaNStaysNumber(t *testing.T) {
	t.Parallel()

	mismatch := NewCoercionMismatch(3, Number(math.NaN()), Text("x"), Absent())
	data, err := json.Marshal(mismatch)
	require.NoError(t, err)

	var got RowMismatch
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, KindNumber, got.Qty.Kind)
	assert.True(t, math.IsNaN(got.Qty.Num))
	assert.Equal(t, Text("x"), got.Price)
}

func TestCellValue_InvalidTag(t *testing.T) {
	t.Parallel()

	var got CellValue
	assert.Error(t, json.Unmarshal([]byte(`{"number":"lots"}`), &got))
}
