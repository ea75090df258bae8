package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jpalmerr/finboard"
	"github.com/spf13/cobra"
)

// fetchCmd prints metrics for symbols without starting the server.
var fetchCmd = &cobra.Command{
	Use:   "fetch SYMBOL...",
	Short: "Fetch and print metrics for symbols",
	Long: `Fetch annual statements for each symbol and print the derived metrics.

Source and cache settings come from the config file when one is given, so
repeated runs are served from the response cache.

Example:
  finboard fetch VALE PBR
  finboard fetch -c config.yaml --output json AAPL`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	addConfigFlag(fetchCmd, false)
	fetchCmd.Flags().StringP("output", "o", "table", "output format (table, json)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		return fmt.Errorf("unknown output format %q (expected table or json)", output)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	snapshots := make([]finboard.Snapshot, 0, len(args))
	failed := 0
	for _, symbol := range args {
		s, err := a.fb.Fetch(cmd.Context(), symbol)
		if err != nil {
			failed++
			a.logger.Warn("fetch failed", "symbol", symbol, "error", err)
			if s.Symbol == "" {
				s.Symbol = symbol
			}
			s.Error = err
		}
		snapshots = append(snapshots, s)
	}

	out := cmd.OutOrStdout()
	switch output {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snapshots); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	default:
		now := time.Now()
		rows := make([]metricsRow, len(snapshots))
		for i, s := range snapshots {
			rows[i] = newMetricsRow(s, now)
		}
		fmt.Fprintln(out, renderMetricsTable(rows))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d symbols failed", failed, len(args))
	}
	return nil
}
