package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/revpilot/revpilot/internal/cli/config"
	"github.com/revpilot/revpilot/pkg/reviewer"
)

const timeRounding = time.Millisecond

// runDryRun prints the analysis plan without invoking any processor.
func runDryRun(files []string, cfg config.Config) error {
	plan := reviewer.CreateAnalysisPlan(files)

	if cfg.OutputFormat == config.OutputJSON || cfg.OutputFormat == config.OutputBoth {
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal analysis plan: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(data))
	}
	if cfg.OutputFormat == config.OutputConsole || cfg.OutputFormat == config.OutputBoth {
		printPlan(os.Stdout, plan)
	}
	return nil
}

func printPlan(w io.Writer, plan *reviewer.AnalysisPlan) {
	fmt.Fprintf(w, "Dry run: %d file(s) would be reviewed\n", plan.TotalFiles)
	if len(plan.SkippedFiles) > 0 {
		fmt.Fprintf(w, "Skipped (missing or not a regular file): %d\n", len(plan.SkippedFiles))
		for _, f := range plan.SkippedFiles {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	fmt.Fprintf(w, "Estimated duration: %s\n", plan.EstimatedDuration)
}

// emit renders the completed run per the configured output format and
// persists the JSON artifact when requested.
func emit(report *reviewer.Report, results []reviewer.Result, grouped *reviewer.GroupedRun, files []string, cfg config.Config, logger *slog.Logger) error {
	if cfg.OutputFormat == config.OutputJSON || cfg.OutputFormat == config.OutputBoth {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(data))
	}
	if cfg.OutputFormat == config.OutputConsole || cfg.OutputFormat == config.OutputBoth {
		printSummary(os.Stdout, report, results, grouped, files, cfg, logger)
	}

	if cfg.JSONReport != "" {
		if err := reviewer.WriteReport(cfg.JSONReport, report); err != nil {
			return err
		}
		logger.Debug("Report written", slog.String("path", cfg.JSONReport))
	}

	if report.Summary.FailedFiles > 0 && !cfg.ContinueOnError {
		return fmt.Errorf("review failed for %d file(s)", report.Summary.FailedFiles)
	}
	return nil
}

// printSummary writes the human-readable run summary.
func printSummary(w io.Writer, report *reviewer.Report, results []reviewer.Result, grouped *reviewer.GroupedRun, files []string, cfg config.Config, logger *slog.Logger) {
	stats := reviewer.ComputeStats(results)

	fmt.Fprintf(w, "\nReviewed %d of %d file(s): %d passed, %d failed",
		stats.Total, len(files), stats.Successful, stats.Failed)
	if stats.Warnings > 0 {
		fmt.Fprintf(w, ", %d with findings", stats.Warnings)
	}
	fmt.Fprintln(w)

	if stats.Total > 0 {
		fmt.Fprintf(w, "Total time: %s (avg %s/file)\n",
			stats.TotalDuration.Round(timeRounding), stats.AverageDuration.Round(timeRounding))
	}

	opts := cfg.EngineOptions(logger.Handler())
	if reason := reviewer.StopReason(opts, len(files), stats.Total, stats.Failed); reason != "" {
		fmt.Fprintf(w, "Run %s\n", reason)
	}

	if report.AggregatedMetrics != nil && len(report.AggregatedMetrics.GradeDistribution) > 0 {
		fmt.Fprintf(w, "Grades: %s\n", formatGrades(report.AggregatedMetrics.GradeDistribution))
	}
	if report.AggregatedMetrics != nil && report.AggregatedMetrics.CoverageStats != nil {
		cov := report.AggregatedMetrics.CoverageStats
		fmt.Fprintf(w, "Doc coverage: min %.0f%%, max %.0f%%, avg %.0f%% (%d sampled)\n",
			cov.Min*100, cov.Max*100, cov.Avg*100, cov.Samples)
	}

	for _, r := range results {
		if !r.Success && r.Err != nil {
			fmt.Fprintf(w, "  ✗ %s: %v\n", r.File, r.Err)
		}
	}

	if grouped != nil {
		printGroups(w, grouped)
	}
}

func formatGrades(dist map[string]int) string {
	grades := make([]string, 0, len(dist))
	for g := range dist {
		grades = append(grades, g)
	}
	sort.Strings(grades)
	parts := make([]string, 0, len(grades))
	for _, g := range grades {
		parts = append(parts, fmt.Sprintf("%s=%d", g, dist[g]))
	}
	return strings.Join(parts, " ")
}

func printGroups(w io.Writer, grouped *reviewer.GroupedRun) {
	fmt.Fprintf(w, "\nGroups (%d):\n", len(grouped.Groups))
	for _, g := range grouped.Groups {
		label := g.Name
		if g.Language != "" {
			label = fmt.Sprintf("%s (%s)", g.Name, g.Language)
		}
		fmt.Fprintf(w, "  %s: %d file(s)\n", label, len(g.Files))
	}
	if len(grouped.ExcludedDirectories) > 0 {
		fmt.Fprintf(w, "Excluded directories: %s\n", strings.Join(grouped.ExcludedDirectories, ", "))
	}
	if grouped.Tree != nil {
		fmt.Fprintln(w, "\nDirectory tree:")
		printTree(w, grouped.Tree, 0)
	}
}

func printTree(w io.Writer, node *reviewer.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s/ (%d file(s))\n", indent, node.Name, len(node.Files))
	for _, child := range node.Children {
		printTree(w, child, depth+1)
	}
}
