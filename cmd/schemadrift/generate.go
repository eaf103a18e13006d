package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tordrt/schemadrift"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the DDL of every entity",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringP("output-dir", "d", "", "Output directory: one <table>.sql per table plus _overview.md")
	cmd.Flags().StringP("format", "f", schemadrift.FormatSQL, "Output format: sql, markdown or text")
	cmd.Flags().Bool("drop-if-exists", true, "Prefix each create statement with drop table if exists")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := setupLogger(s)
	if err != nil {
		return err
	}

	// Validate flag combinations
	if s.Generate.Output != "" && s.Generate.OutputDir != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	tables, err := schemadrift.BuildTableSpecs(cmd.Context(), &schemadrift.Options{
		Paths:   s.Entities.Paths,
		Include: s.Entities.Include,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	var writer io.Writer = cmd.OutOrStdout()
	if s.Generate.Output != "" {
		f, err := os.Create(s.Generate.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	format, _ := cmd.Flags().GetString("format")
	err = schemadrift.FormatTables(tables, &schemadrift.OutputOptions{
		Writer:       writer,
		OutputDir:    s.Generate.OutputDir,
		Format:       format,
		DropIfExists: s.Generate.DropIfExists,
	})
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	logger.Info("schema generated", "tables", len(tables))
	return nil
}
