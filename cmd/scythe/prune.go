package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dkarlsen/scythe/internal/cleanup"
	"github.com/dkarlsen/scythe/internal/fileproc"
	"github.com/dkarlsen/scythe/internal/output"
	"github.com/dkarlsen/scythe/internal/progress"
	"github.com/dkarlsen/scythe/internal/scanner"
	"github.com/dkarlsen/scythe/pkg/change"
	"github.com/dkarlsen/scythe/pkg/config"
)

var pruneCmd = &cobra.Command{
	Use:   "prune [path...]",
	Short: "Detect and remove unused methods",
	RunE:  runPrune,
}

func init() {
	pruneCmd.Flags().StringP("format", "f", "", "Output format: text, json, markdown")
	pruneCmd.Flags().StringP("output", "o", "", "Write output to file")
	pruneCmd.Flags().Bool("apply", false, "Write the edits to the source files")
	pruneCmd.Flags().Bool("confirm-graph", false, "Show per-file changes with their dependencies")
	pruneCmd.Flags().Int("workers", 0, "Parallel parse workers (0 = 2x NumCPU)")
	pruneCmd.Flags().Int64("max-file-size", 0, "Skip files larger than this many bytes (0 = no limit)")

	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Cleanup.Enabled {
		return nil
	}

	apply, _ := cmd.Flags().GetBool("apply")
	confirmGraph, _ := cmd.Flags().GetBool("confirm-graph")
	workers, _ := cmd.Flags().GetInt("workers")
	maxFileSize, _ := cmd.Flags().GetInt64("max-file-size")
	if workers == 0 {
		workers = cfg.Cleanup.Workers
	}

	format := getFormat(cmd, cfg.Output.Format)
	formatter, err := output.NewFormatter(output.ParseFormat(format), getOutputFile(cmd), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	files, err := scanPaths(cfg, getPaths(args))
	if err != nil {
		return err
	}
	files, skipped := scanner.FilterBySize(files, maxFileSize)
	if skipped > 0 && verbose {
		formatter.Info("%d file(s) skipped by size limit", skipped)
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	tracker := progress.NewTracker("Parsing...", len(files))
	if getOutputFile(cmd) != "" {
		tracker = progress.NewQuiet("Parsing...")
	}
	contexts, parseErrs := fileproc.ParseBatch(cmd.Context(), files, workers, tracker.Tick)
	tracker.FinishSuccess()
	if parseErrs != nil && verbose {
		for _, pe := range parseErrs.Errors {
			formatter.Warning("%s", pe.Error())
		}
	}

	eng := cleanup.New(cfg)

	if confirmGraph {
		return renderGraph(eng, formatter, cmd, contexts)
	}

	composite, err := eng.ComputeChanges(cmd.Context(), contexts)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	if composite == nil {
		formatter.Success("No unused methods found")
		return nil
	}

	if err := formatter.Output(output.PlanTable(composite)); err != nil {
		return err
	}
	min := cleanup.SeverityWarning
	if verbose {
		min = cleanup.SeverityInfo
	}
	if tbl := output.StatusTable(eng.Report(), min); tbl != nil && formatter.Format() != output.FormatJSON {
		if err := formatter.Output(tbl); err != nil {
			return err
		}
	}

	if !apply {
		formatter.Info("Run again with --apply to write %d edit(s)", composite.EditCount())
		return nil
	}
	return applyComposite(formatter, composite)
}

func renderGraph(eng *cleanup.Cleanup, formatter *output.Formatter, cmd *cobra.Command, contexts []cleanup.FileContext) error {
	graph, err := eng.ComputeIndependentChanges(cmd.Context(), contexts)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	if graph == nil {
		formatter.Success("No unused methods found")
		return nil
	}

	rows := make([][]string, 0, len(graph.Nodes))
	for i, n := range graph.Nodes {
		deps := "-"
		for _, e := range graph.Edges {
			if e[1] == i {
				deps = graph.Nodes[e[0]].Change.Path
				break
			}
		}
		kind := "independent"
		if !n.Independent {
			kind = "coupled"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			n.Change.Path,
			fmt.Sprintf("%d", len(n.Change.Edits)),
			kind,
			deps,
		})
	}

	return formatter.Output(output.NewTable(
		"Change graph",
		[]string{"Node", "File", "Removals", "Kind", "Requires"},
		rows,
		nil,
		graph,
	))
}

func applyComposite(formatter *output.Formatter, composite *change.Composite) error {
	written := 0
	for _, fc := range composite.Changes {
		source, err := os.ReadFile(fc.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", fc.Path, err)
		}
		updated, err := fc.Apply(source)
		if err != nil {
			return fmt.Errorf("failed to apply edits to %s: %w", fc.Path, err)
		}
		info, err := os.Stat(fc.Path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(fc.Path, updated, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", fc.Path, err)
		}
		written++
	}
	formatter.Success("Applied %d edit(s) across %d file(s)", composite.EditCount(), written)
	return nil
}

// scanPaths expands each argument into eligible source files, sorted
// for deterministic batch order.
func scanPaths(cfg *config.Config, paths []string) ([]string, error) {
	scan := scanner.NewScanner(cfg)

	var files []string
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", path, err)
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if info.IsDir() {
			found, err := scan.ScanDir(absPath)
			if err != nil {
				return nil, fmt.Errorf("failed to scan %s: %w", path, err)
			}
			files = append(files, found...)
			continue
		}
		ok, err := scan.ScanFile(absPath)
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, absPath)
		}
	}

	sort.Strings(files)
	return files, nil
}
