// Package scoring produces qualitative feedback on interview answers and
// graded workbooks, and fuses it with the deterministic grade.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
)

// Kind selects what is being scored.
type Kind string

const (
	// KindConcept scores a free-text answer to a conceptual question.
	KindConcept Kind = "concept"
	// KindWorkbook scores a validation report.
	KindWorkbook Kind = "workbook"
)

// ErrUnsupportedPayload indicates a payload that does not match its kind.
var ErrUnsupportedPayload = errors.New("unsupported payload")

// Feedback is a 0-5 score with a short explanation.
type Feedback struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// Scorer rates a payload. Concept payloads are strings; workbook payloads
// are *models.Report or models.Report.
type Scorer interface {
	Score(ctx context.Context, kind Kind, payload any) (Feedback, error)
}

// Stub is a deterministic scorer used when no model backend is configured.
type Stub struct{}

// Score implements Scorer.
func (Stub) Score(_ context.Context, kind Kind, payload any) (Feedback, error) {
	switch kind {
	case KindConcept:
		text := strings.ToLower(fmt.Sprint(payload))
		if strings.Contains(text, "$a$1") || strings.Contains(text, "absolute") {
			return Feedback{Score: 4, Explanation: "Good, you mentioned absolute referencing."}, nil
		}
		return Feedback{Score: 2, Explanation: "Partial answer. Mention absolute vs relative referencing."}, nil
	case KindWorkbook:
		report, err := reportOf(payload)
		if err != nil {
			return Feedback{}, err
		}
		if report != nil && report.Pass {
			return Feedback{Score: 5, Explanation: "Workbook checks passed."}, nil
		}
		return Feedback{Score: 1, Explanation: "Workbook mismatches found. Check formulas."}, nil
	default:
		return Feedback{}, fmt.Errorf("%w: kind %q", ErrUnsupportedPayload, kind)
	}
}

func reportOf(payload any) (*models.Report, error) {
	switch p := payload.(type) {
	case *models.Report:
		return p, nil
	case models.Report:
		return &p, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %T for workbook", ErrUnsupportedPayload, payload)
	}
}

// Fallback tries the primary scorer and uses the fallback when it fails.
type Fallback struct {
	Primary  Scorer
	Fallback Scorer
	Logger   *slog.Logger
}

// WithFallback chains two scorers.
func WithFallback(primary, fallback Scorer, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{Primary: primary, Fallback: fallback, Logger: logger}
}

// Score implements Scorer.
func (f *Fallback) Score(ctx context.Context, kind Kind, payload any) (Feedback, error) {
	if f.Primary != nil {
		fb, err := f.Primary.Score(ctx, kind, payload)
		if err == nil {
			return fb, nil
		}
		f.Logger.WarnContext(ctx, "primary scorer failed, using fallback", "kind", kind, "error", err)
	}
	return f.Fallback.Score(ctx, kind, payload)
}

// DeterministicScore converts a report to 0-100: 100 on pass, otherwise 50
// minus 10 per row mismatch, floored at 0.
func DeterministicScore(report *models.Report) int {
	if report == nil {
		return 0
	}
	if report.Pass {
		return 100
	}
	return max(0, 50-len(report.RowMismatches)*10)
}

// Fuse combines the deterministic score (60%) with the workbook feedback
// score scaled to 0-100 (40%).
func Fuse(report *models.Report, workbook Feedback) int {
	det := float64(DeterministicScore(report))
	llm := float64(workbook.Score * 20)
	return int(0.6*det + 0.4*llm)
}
