package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ukaji3/exgrade-go/pkg/exgrade"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/output"
)

func newGradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade [input.xlsx]",
		Short: "Grade one workbook and print the validation report",
		Args:  cobra.ExactArgs(1),
		RunE:  runGrade,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().BoolVar(&failOnReject, "fail", false, "Exit non-zero when the submission does not pass")
	return cmd
}

func runGrade(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	// Validate input file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	report, err := exgrade.GradeFile(inputPath, gradeOptions(cfg))
	if err != nil {
		return fmt.Errorf("grading failed: %w", err)
	}
	logger.Debug("graded submission", "path", inputPath, "pass", report.Pass, "rows", report.RowCount)

	jsonData, err := output.ReportToJSON(report, pretty)
	if err != nil {
		return err
	}
	if err := writeOutput(jsonData); err != nil {
		return err
	}

	if failOnReject && !report.Pass {
		return errSubmissionFailed
	}
	return nil
}
