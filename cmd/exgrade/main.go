// Package main provides the CLI entry point for exgrade-go.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/ukaji3/exgrade-go/internal/logging"
	"github.com/ukaji3/exgrade-go/pkg/exgrade"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/config"
)

// errSubmissionFailed makes the process exit non-zero without printing an error.
var errSubmissionFailed = errors.New("submission failed grading")

var (
	configPath    string
	envFile       string
	outputPath    string
	pretty        bool
	aggregateCell string
	tolerance     float64
	failOnReject  bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errSubmissionFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "exgrade",
		Short: "Grade quantity/price/total workbook submissions",
		Long: `exgrade-go checks that every row total equals qty × price and that the
aggregate cell holds the sum of all row totals, and reports every discrepancy as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Environment file loaded before configuration (default .env when present)")
	rootCmd.PersistentFlags().StringVar(&aggregateCell, "aggregate-cell", "", "Aggregate cell location (default from config, G1)")
	rootCmd.PersistentFlags().Float64Var(&tolerance, "tolerance", 0, "Absolute comparison tolerance (default from config, 1e-6)")

	rootCmd.AddCommand(newGradeCmd(), newBatchCmd(), newTemplateCmd(), newServeCmd())
	return rootCmd
}

// loadConfig reads configuration and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if err := loadEnvFile(); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("aggregate-cell") {
		cfg.Grading.AggregateCell = aggregateCell
	}
	if flags.Changed("tolerance") {
		tol := tolerance
		cfg.Grading.Tolerance = &tol
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.Configure(logging.Options{
		JSON:     cfg.Logging.Format == "json",
		MinLevel: level,
		Output:   os.Stderr,
	})
	return cfg, logger, nil
}

// loadEnvFile loads --env-file, or ./.env when it exists. Variables already
// set in the environment are kept.
func loadEnvFile() error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %q: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func gradeOptions(cfg *config.Config) exgrade.Options {
	return exgrade.Options{Validator: cfg.ValidatorOptions()}
}

// writeOutput writes data to --output or stdout.
func writeOutput(data []byte) error {
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Println(string(data))
	return nil
}
