package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
)

func TestReportToJSON(t *testing.T) {
	t.Parallel()

	report := &models.Report{
		RowCount:        1,
		ExpectedSum:     200,
		AggregateActual: models.Number(200),
		Pass:            true,
	}

	compact, err := ReportToJSON(report, false)
	require.NoError(t, err)
	assert.NotContains(t, string(compact), "\n")
	assert.Contains(t, string(compact), `"row_mismatches":[]`)

	pretty, err := ReportToJSON(report, true)
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  \"row_count\": 1")
	assert.JSONEq(t, string(compact), string(pretty))
}

func TestWriteJSONLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteJSONLine(&buf, map[string]int{"a": 1}))
	require.NoError(t, WriteJSONLine(&buf, map[string]int{"b": 2}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, lines)
}
