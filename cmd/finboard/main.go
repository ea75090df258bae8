// Package main is the entry point for the finboard CLI.
//
// finboard can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	finboard serve -c config.yaml    # Start the dashboard
//	finboard validate -c config.yaml # Validate configuration
//	finboard fetch VALE PBR          # Print metrics as a table
//	finboard render VALE > vale.html # Render a company page
//	finboard cache clear             # Drop cached responses
//	finboard version                 # Show version info
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "finboard",
	Short: "A financial health dashboard",
	Long: `finboard is a financial health dashboard for listed companies.

It pulls annual statements from Yahoo Finance, derives debt to equity,
cash reserves, working capital and free cash flow margin, and displays
them in a web UI with Server-Sent Events for live updates.

Quick start:
  1. Create a config file (finboard.yaml)
  2. Run: finboard serve -c finboard.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  refresh_interval: 1h
  symbols:
    - symbol: VALE
      labels:
        sector: mining

Variables in a .env file in the working directory are loaded into the
environment before the config is read.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvFile,
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file to load before reading config")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// loadEnvFile loads the dotenv file. A missing default file is ignored; a
// missing file named explicitly is an error.
func loadEnvFile(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}
	return fmt.Errorf("failed to load env file: %w", err)
}

// newLogger creates a JSON logger on stderr at the --log-level level.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	var level slog.Level
	raw, _ := cmd.Flags().GetString("log-level")
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", raw)
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})), nil
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this finboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "finboard %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
