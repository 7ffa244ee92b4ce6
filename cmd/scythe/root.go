package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkarlsen/scythe/pkg/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:     "scythe",
	Short:   "Remove methods nothing calls",
	Version: version,
	Long: `Scythe parses a codebase, finds methods that are declared but never
invoked anywhere in it, and builds the edits that remove them. Interface
declarations satisfied only by removed methods go with them.

Supports: Java, C#, TypeScript, Go`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
}

// loadConfig honors --config when set, falling back to the standard
// search locations.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", cfgFile, err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault(), nil
}
