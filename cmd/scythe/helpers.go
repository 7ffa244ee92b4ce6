package main

import "github.com/spf13/cobra"

// getPaths returns paths from args, defaulting to ["."]
func getPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// getFormat returns the format flag value, falling back to the config
// default when the flag is unset.
func getFormat(cmd *cobra.Command, fallback string) string {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		return fallback
	}
	return format
}

// getOutputFile returns the output file path from the command.
func getOutputFile(cmd *cobra.Command) string {
	outputFile, _ := cmd.Flags().GetString("output")
	return outputFile
}
