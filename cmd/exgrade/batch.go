package main

import (
	"github.com/spf13/cobra"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/batch"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/output"
)

var batchWorkers int

// batchOutput is the JSON document printed by the batch command.
type batchOutput struct {
	Summary batch.Summary  `json:"summary"`
	Results []batch.Result `json:"results"`
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [input...]",
		Short: "Grade many workbooks concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatch,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().IntVar(&batchWorkers, "workers", 0, "Concurrent graders (default from config)")
	cmd.Flags().BoolVar(&failOnReject, "fail", false, "Exit non-zero unless every submission passes")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	workers := cfg.Batch.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}

	results := batch.Run(cmd.Context(), args, batch.Options{
		Grade:   gradeOptions(cfg),
		Workers: workers,
		Logger:  logger,
	})
	summary := batch.Summarize(results)
	logger.Info("batch complete",
		"total", summary.Total, "passed", summary.Passed, "failed", summary.Failed, "errors", summary.Errors)

	jsonData, err := output.ToJSON(batchOutput{Summary: summary, Results: results}, pretty)
	if err != nil {
		return err
	}
	if err := writeOutput(jsonData); err != nil {
		return err
	}

	if failOnReject && summary.Passed != summary.Total {
		return errSubmissionFailed
	}
	return nil
}
