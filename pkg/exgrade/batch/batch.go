// Package batch grades many submissions concurrently.
package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/ukaji3/exgrade-go/pkg/exgrade"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/metrics"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
)

const metricsSource = "batch"

// gradeFile is swapped in tests.
var gradeFile = exgrade.GradeFile

// Options configures a batch run.
type Options struct {
	Grade   exgrade.Options
	Workers int
	Logger  *slog.Logger
}

// Result is the outcome for one file. Exactly one of Report and Error is set.
type Result struct {
	Path   string         `json:"path"`
	Report *models.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
	Err    error          `json:"-"`
}

// Summary aggregates a batch.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Errors int `json:"errors"`
}

// Run grades every path on a worker pool. Results are in input order. Files
// not started before ctx is cancelled carry ctx's error.
func Run(ctx context.Context, paths []string, opts Options) []Result {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	pool := pond.NewPool(workers)
	defer pool.StopAndWait()

	results := make([]Result, len(paths))
	tasks := make([]pond.Task, len(paths))
	for i, path := range paths {
		tasks[i] = pool.Submit(func() {
			results[i] = gradeOne(ctx, path, opts.Grade, logger)
		})
	}
	for i, task := range tasks {
		// A panicking grader leaves its slot unset; record the failure there.
		if err := task.Wait(); err != nil {
			logger.ErrorContext(ctx, "grading task failed", "path", paths[i], "error", err)
			results[i] = Result{Path: paths[i], Error: err.Error(), Err: err}
		}
	}

	return results
}

func gradeOne(ctx context.Context, path string, opts exgrade.Options, logger *slog.Logger) Result {
	if err := ctx.Err(); err != nil {
		return Result{Path: path, Error: err.Error(), Err: err}
	}

	start := time.Now()
	report, err := gradeFile(path, opts)
	metrics.Observe(metricsSource, report, time.Since(start))
	if err != nil {
		logger.WarnContext(ctx, "failed to grade submission", "path", path, "error", err)
		return Result{Path: path, Error: err.Error(), Err: err}
	}

	logger.DebugContext(ctx, "graded submission",
		"path", path, "pass", report.Pass, "rows", report.RowCount, "mismatches", len(report.RowMismatches))
	return Result{Path: path, Report: report}
}

// Summarize counts outcomes.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Report == nil:
			s.Errors++
		case r.Report.Pass:
			s.Passed++
		default:
			s.Failed++
		}
	}
	return s
}
