package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"media-etl/config"
	"media-etl/generator"
	"media-etl/pipeline"
	"media-etl/storage"
	"media-etl/utils"
)

func main() {
	root := &cobra.Command{
		Use:   "media-etl [data-dir]",
		Short: "Batch ETL for user-interaction events",
		Long: `media-etl ingests JSON files of user-interaction events, enriches them,
and loads them idempotently into a month-partitioned PostgreSQL table.

The optional positional argument is the input directory (default ./data).`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runPipeline,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Write synthetic interaction files matching the input contract",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runPipeline is fault-contained: once the writer is up, pipeline failures
// are logged and reported through the terminal state, not the exit code.
func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := utils.NewFileLogger(cfg.LogFile)
	defer logger.Close()

	dataDir := cfg.DataDir
	if len(args) > 0 {
		dataDir = args[0]
	}

	logger.Info("=== media-etl starting — input: %s ===", dataDir)

	writer, err := storage.NewPostgresWriter(cfg.DSN(), logger)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		return err
	}
	defer writer.Close()

	state, summary := pipeline.New(logger, writer).Run(dataDir)
	if state == pipeline.StateLoaded {
		logger.Info("Run finished in state %s — %d inserted, %d duplicates skipped",
			state, summary.Inserted, summary.Skipped)
	} else {
		logger.Info("Run finished in state %s", state)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := utils.NewLogger()

	gen := generator.New(generator.Options{
		Users:                  cfg.GenUsers,
		SessionsPerUser:        cfg.GenSessionsPerUser,
		InteractionsPerSession: cfg.GenInteractionsPerSession,
	}, logger)

	logger.Info("Generating sample data: %d users with %d sessions each",
		cfg.GenUsers, cfg.GenSessionsPerUser)

	records := gen.Generate()

	writer, err := storage.NewJSONWriter(cfg.GenOutputDir)
	if err != nil {
		logger.Error("Failed to create output writer: %v", err)
		return err
	}
	if err := gen.WriteFiles(records, writer, cfg.GenFiles); err != nil {
		logger.Error("Failed to write sample data: %v", err)
		return err
	}
	return nil
}
