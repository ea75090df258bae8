package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCmd groups response cache maintenance.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the upstream response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached upstream response",
	Long: `Remove every cached upstream response, forcing the next fetch of each
symbol to go to the provider.

The cache location comes from the config file, or the default user cache
directory.

Example:
  finboard cache clear
  finboard cache clear -c config.yaml`,
	Args: cobra.NoArgs,
	RunE: runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	addConfigFlag(cacheClearCmd, false)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.Cache.Disabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled, nothing to clear")
		return nil
	}
	if err := a.fb.ClearCache(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
	return nil
}
