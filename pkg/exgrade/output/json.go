// Package output serializes grading results.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
)

// ToJSON serializes any value to JSON, indented when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// ReportToJSON serializes a validation report.
func ReportToJSON(r *models.Report, pretty bool) ([]byte, error) {
	data, err := ToJSON(r, pretty)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}
	return data, nil
}

// WriteJSONLine writes v as a single JSON line terminated by a newline.
func WriteJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
