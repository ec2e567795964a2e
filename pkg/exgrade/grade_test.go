package exgrade

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func submission(t *testing.T, aggregate any) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	rows := [][]any{
		{"Qty", "Price", "Total"},
		{2, 100, 200},
		{5, 9.99, 49.95},
		{1, 250, 250},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	if aggregate != nil {
		require.NoError(t, f.SetCellValue("Sheet1", "G1", aggregate))
	}
	return f
}

func TestGradeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "submission.xlsx")
	require.NoError(t, submission(t, 499.95).SaveAs(path))

	report, err := GradeFile(path, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, report.Pass)
	assert.Equal(t, 3, report.RowCount)
	assert.InDelta(t, 499.95, report.ExpectedSum, 1e-9)
}

func TestGradeReader_WrongAggregate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := submission(t, 100).WriteTo(&buf)
	require.NoError(t, err)

	report, err := GradeReader(&buf, DefaultOptions())
	require.NoError(t, err)

	assert.False(t, report.Pass)
	assert.Empty(t, report.RowMismatches)
	require.NotNil(t, report.AggregateMismatch)
	assert.InDelta(t, 499.95, report.AggregateMismatch.Expected, 1e-9)
}

func TestGradeFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := GradeFile(filepath.Join(t.TempDir(), "none.xlsx"), DefaultOptions())
	assert.True(t, errors.Is(err, ErrFileNotFound))

	opts := DefaultOptions()
	opts.Validator.AggregateCell = ""
	_, err = GradeFile("whatever.xlsx", opts)
	assert.Error(t, err)
}
