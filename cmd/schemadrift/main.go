package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tordrt/schemadrift/internal/config"
	"github.com/tordrt/schemadrift/internal/logging"
)

// errDriftDetected ends a check run with stop_on_mismatch set.
var errDriftDetected = errors.New("schema drift detected")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schemadrift",
		Short: "Derive MySQL tables from entity descriptions and reconcile live schemas",
		Long: `schemadrift turns YAML entity descriptions into MySQL table definitions, writes their DDL,
and checks a live database (or a catalog snapshot) for drift, recommending or applying the repairs.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: ./schemadrift.yaml when present)")
	flags.StringSlice("entities", nil, "Entity description files or directories")
	flags.StringSlice("include", nil, "Entity name patterns to include (default: all)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("log-dir", "", "Also write logs to a dated file in this directory")

	rootCmd.AddCommand(newGenerateCmd(), newCheckCmd(), newSnapshotCmd())
	return rootCmd
}

// setupLogger installs the configured logger as the slog default.
func setupLogger(s *config.Config) (*slog.Logger, error) {
	logger, err := logging.Setup(s.Logging.Level, s.Logging.Format, s.Logging.Directory)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errDriftDetected):
		return 2
	default:
		return 1
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	stop()
	os.Exit(exitCode(err))
}
