package main

import (
	"fmt"
	"log/slog"

	"github.com/jpalmerr/finboard"
	"github.com/jpalmerr/finboard/config"
	"github.com/spf13/cobra"
)

// app bundles what every data command needs.
type app struct {
	fb     *finboard.Finboard
	cfg    *config.Config
	logger *slog.Logger
}

// addConfigFlag registers -c/--config on cmd.
func addConfigFlag(cmd *cobra.Command, required bool) {
	usage := "path to config file"
	if required {
		usage += " (required)"
	}
	cmd.Flags().StringP("config", "c", "", usage)
	if required {
		_ = cmd.MarkFlagRequired("config")
	}
}

// loadConfig reads the --config file, or returns defaults when none is set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Parse(nil)
	}
	return config.Load(path)
}

// newApp builds a Finboard from the --config file. extra options are
// applied last.
func newApp(cmd *cobra.Command, extra ...finboard.Option) (*app, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build symbols: %w", err)
	}
	opts = append(opts, finboard.WithLogger(logger))
	opts = append(opts, extra...)

	fb, err := finboard.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create finboard: %w", err)
	}
	return &app{fb: fb, cfg: cfg, logger: logger}, nil
}

func (a *app) close() {
	if err := a.fb.Close(); err != nil {
		a.logger.Warn("failed to close", "error", err)
	}
}
