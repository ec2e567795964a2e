package main

import (
	"github.com/spf13/cobra"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/scoring"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/server"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/transcript"
)

var listenAddress string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve template download, grading and interview endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&listenAddress, "listen", "", "Listen address (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listenAddress != "" {
		cfg.Server.ListenAddress = listenAddress
	}

	scorer := scoring.New(cfg.RemoteScoring(), logger)
	logger.Info("scorer configured", "remote", scorer.Primary != nil, "model", cfg.Scoring.Model)

	srv := server.New(server.Config{
		ListenAddress:   cfg.Server.ListenAddress,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsEnabled:  cfg.MetricsOn(),
		Grade:           gradeOptions(cfg),
		Layout:          cfg.TemplateLayout(),
	},
		scorer,
		transcript.NewFileStore(cfg.Transcript.Path),
		logger,
	)

	return srv.Run(cmd.Context())
}
