package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/revpilot/revpilot/internal/cli"
	"github.com/revpilot/revpilot/internal/cli/config"
	"github.com/revpilot/revpilot/pkg/reviewer"
)

var (
	// Set during build time using -ldflags.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "revpilot",
	Short: "Reviews source files and produces graded reports.",
	Long: `revpilot runs an automated review pass over source files and reports
per-file grades, findings, and aggregate metrics.

It features:
  - Deterministic sequential processing with configurable stop policies.
  - Directory and file-type grouping with an optional directory tree view.
  - Git integration for reviewing worktree changes or a branch diff.
  - JSON report artifacts for machine consumption.
  - An interactive Terminal UI (TUI) for monitoring progress.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: false,
}

// reviewRunE builds the shared RunE for every review subcommand.
func reviewRunE(cmdType reviewer.CommandType) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		cfg, logger, err := config.LoadAndValidate(cfgFile, version, cmd.Flags())
		if err != nil {
			return err
		}
		command := reviewer.Command{Type: cmdType, Targets: args}
		return cli.Run(ctx, command, cfg, logger)
	}
}

var filesCmd = &cobra.Command{
	Use:   "files <path>...",
	Short: "Review the given files in order.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  reviewRunE(reviewer.CommandFiles),
}

var dirCmd = &cobra.Command{
	Use:   "dir [path]",
	Short: "Review every file under a directory (default: current directory).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  reviewRunE(reviewer.CommandDirectory),
}

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Review files changed in the Git worktree relative to HEAD.",
	Args:  cobra.NoArgs,
	RunE:  reviewRunE(reviewer.CommandChanges),
}

var prCmd = &cobra.Command{
	Use:   "pr [base-ref]",
	Short: "Review files changed since a base reference (default: main).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  reviewRunE(reviewer.CommandPR),
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default is search standard locations like ., $HOME/.config/revpilot/)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging output (disables TUI)")

	// Behavior flags shared by every review subcommand.
	rootCmd.PersistentFlags().Bool("no-tui", false, "Disable interactive Terminal UI even if in a TTY")
	rootCmd.PersistentFlags().Bool("show-progress", reviewer.DefaultShowProgress, "Show per-file progress while reviewing")
	rootCmd.PersistentFlags().Bool("show-eta", true, "Show estimated time remaining on the progress bar")
	rootCmd.PersistentFlags().Bool("show-throughput", false, "Show files-per-second throughput on the progress bar")
	rootCmd.PersistentFlags().Bool("continue-on-error", true, "Keep reviewing after a file fails")
	rootCmd.PersistentFlags().Int("max-errors", reviewer.DefaultMaxErrors, "Stop after this many failures (0 = unbounded)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Plan the run without reviewing any file")

	// Mode selection flags.
	rootCmd.PersistentFlags().Bool("sequential", false, "Force sequential processing regardless of command type")
	rootCmd.PersistentFlags().Bool("parallel", false, "Force parallel mode selection regardless of command type")
	rootCmd.PersistentFlags().Int("sequential-threshold", reviewer.DefaultSequentialThreshold, "Select sequential mode when at most this many files (0 = unset)")

	// Grouping flags.
	rootCmd.PersistentFlags().Bool("group-by-directory", false, "Group files by containing directory before reviewing")
	rootCmd.PersistentFlags().String("group-by", "", `Grouping key ("directory" or "fileType")`)
	rootCmd.PersistentFlags().Bool("show-directory-tree", false, "Print the grouped directory tree in the summary")
	rootCmd.PersistentFlags().StringSlice("exclude-dir", nil, "Directory to exclude from grouped runs (can be repeated)")
	rootCmd.PersistentFlags().StringSlice("include-dir", nil, "Keep only these directories in grouped runs (can be repeated)")

	// Input & output flags.
	rootCmd.PersistentFlags().String("file-ordering", string(reviewer.DefaultFileOrdering), `File ordering ("alphabetical", "natural", "size", "modified")`)
	rootCmd.PersistentFlags().StringSlice("ignore", nil, "Glob patterns for files/directories to ignore (can be repeated)")
	rootCmd.PersistentFlags().String("output-format", string(config.OutputConsole), `Result format ("console", "json", "both")`)
	rootCmd.PersistentFlags().String("json-report", "", "Write the JSON report artifact to this path")

	rootCmd.AddCommand(filesCmd, dirCmd, changesCmd, prCmd, initCmd)
}
