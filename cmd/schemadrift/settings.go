package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tordrt/schemadrift/internal/config"
)

const envPrefix = "SCHEMADRIFT"

// flagKeys maps config keys to the flags that override them. Keys
// without a flag can still be set from the environment.
var flagKeys = map[string]string{
	"database.url":              "database-url",
	"database.schema":           "schema",
	"entities.paths":            "entities",
	"entities.include":          "include",
	"validate.enable":           "",
	"validate.auto_fix":         "auto-fix",
	"validate.stop_on_mismatch": "stop-on-mismatch",
	"validate.snapshot":         "snapshot",
	"generate.output":           "output",
	"generate.output_dir":       "output-dir",
	"generate.drop_if_exists":   "drop-if-exists",
	"logging.level":             "log-level",
	"logging.format":            "log-format",
	"logging.directory":         "log-dir",
}

// loadSettings resolves the effective configuration of cmd: the config
// file overlaid with SCHEMADRIFT_* environment variables and flags, in
// increasing precedence.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfigFile(cmd)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// File values act as defaults so that they win over flag defaults.
	for key, value := range fileValues(cfg) {
		v.SetDefault(key, value)
	}
	for key, flag := range flagKeys {
		if flag == "" {
			continue
		}
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	s := cfg
	s.Database.URL = v.GetString("database.url")
	s.Database.Schema = v.GetString("database.schema")
	s.Entities.Paths = v.GetStringSlice("entities.paths")
	s.Entities.Include = v.GetStringSlice("entities.include")
	s.Validate.Enable = v.GetBool("validate.enable")
	s.Validate.AutoFix = v.GetBool("validate.auto_fix")
	s.Validate.StopOnMismatch = v.GetBool("validate.stop_on_mismatch")
	s.Validate.Snapshot = v.GetString("validate.snapshot")
	s.Generate.Output = v.GetString("generate.output")
	s.Generate.OutputDir = v.GetString("generate.output_dir")
	s.Generate.DropIfExists = v.GetBool("generate.drop_if_exists")
	s.Logging.Level = v.GetString("logging.level")
	s.Logging.Format = v.GetString("logging.format")
	s.Logging.Directory = v.GetString("logging.directory")

	if s.Database.URL, err = config.ResolveValue(s.Database.URL); err != nil {
		return nil, fmt.Errorf("database url: %w", err)
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadConfigFile reads --config, or ./schemadrift.yaml when it exists.
func loadConfigFile(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if _, err := os.Stat(config.DefaultPath); errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		path = config.DefaultPath
	}
	return config.Load(path)
}

func fileValues(cfg *config.Config) map[string]any {
	return map[string]any{
		"database.url":              cfg.Database.URL,
		"database.schema":           cfg.Database.Schema,
		"entities.paths":            cfg.Entities.Paths,
		"entities.include":          cfg.Entities.Include,
		"validate.enable":           cfg.Validate.Enable,
		"validate.auto_fix":         cfg.Validate.AutoFix,
		"validate.stop_on_mismatch": cfg.Validate.StopOnMismatch,
		"validate.snapshot":         cfg.Validate.Snapshot,
		"generate.output":           cfg.Generate.Output,
		"generate.output_dir":       cfg.Generate.OutputDir,
		"generate.drop_if_exists":   cfg.Generate.DropIfExists,
		"logging.level":             cfg.Logging.Level,
		"logging.format":            cfg.Logging.Format,
		"logging.directory":         cfg.Logging.Directory,
	}
}
