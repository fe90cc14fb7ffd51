// Package cli orchestrates a review run: it resolves the command's targets
// into a file list, selects the processing mode, drives the engine with the
// right presentation surface, and emits the final report.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/revpilot/revpilot/internal/cli/analyze"
	"github.com/revpilot/revpilot/internal/cli/config"
	"github.com/revpilot/revpilot/internal/cli/gitfiles"
	"github.com/revpilot/revpilot/internal/cli/hooks"
	"github.com/revpilot/revpilot/internal/cli/ui"
	"github.com/revpilot/revpilot/pkg/reviewer"
)

// Run executes the command described by cmd under the loaded configuration.
// It is the single entry point used by every review subcommand.
func Run(ctx context.Context, command reviewer.Command, cfg config.Config, logger *slog.Logger) error {
	handler := logger.Handler()

	files, err := ResolveFiles(command, cfg, handler)
	if err != nil {
		return err
	}
	files, err = reviewer.OrderFiles(files, reviewer.FileOrdering(cfg.FileOrdering))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w (command %q)", reviewer.ErrNoFiles, command.Type)
	}

	mode := reviewer.DetermineProcessingModeAdvanced(command, len(files), cfg.ModeOptions())
	logger.Debug("Processing mode selected",
		slog.String("mode", string(mode)), slog.Int("files", len(files)))
	if mode == reviewer.ModeParallel {
		// Only the sequential engine exists; the selected mode is still
		// recorded in the report.
		logger.Debug("Parallel mode selected, executing with the sequential engine")
	}

	if cfg.DryRun {
		return runDryRun(files, cfg)
	}

	processor := analyze.New(handler)
	opts := cfg.EngineOptions(handler)

	var results []reviewer.Result
	var grouped *reviewer.GroupedRun
	if useTUI(cfg) {
		results, grouped, err = runWithTUI(ctx, files, processor, opts, cfg)
		if err != nil {
			return err
		}
	} else {
		opts.Renderer = plainRenderer(cfg, logger, len(files))
		results, grouped = runEngine(ctx, files, processor, opts, cfg)
	}

	modeLabel := string(mode)
	if grouped != nil {
		modeLabel = grouped.ProcessingMode
	}
	report := reviewer.GenerateReport(results, reviewer.ReportOptions{
		ProcessingMode: modeLabel,
		IncludeMetrics: true,
	})
	return emit(report, results, grouped, files, cfg, logger)
}

// ResolveFiles expands the command's targets into the list of files to
// review.
func ResolveFiles(command reviewer.Command, cfg config.Config, handler slog.Handler) ([]string, error) {
	switch command.Type {
	case reviewer.CommandFiles:
		return command.Targets, nil
	case reviewer.CommandDirectory:
		root := "."
		if len(command.Targets) > 0 {
			root = command.Targets[0]
		}
		return reviewer.CollectFiles(root, cfg.Ignore, handler)
	case reviewer.CommandChanges:
		return gitfiles.NewClient(handler).WorktreeChanges(".")
	case reviewer.CommandPR:
		base := "main"
		if len(command.Targets) > 0 {
			base = command.Targets[0]
		}
		return gitfiles.NewClient(handler).ChangedSince(".", base)
	default:
		return nil, fmt.Errorf("%w: unknown command type %q", reviewer.ErrConfigValidation, command.Type)
	}
}

// runEngine drives a flat or grouped run with the renderer already set on
// opts.
func runEngine(ctx context.Context, files []string, processor reviewer.FileProcessor, opts reviewer.Options, cfg config.Config) ([]reviewer.Result, *reviewer.GroupedRun) {
	proc := reviewer.NewSequentialProcessor(opts)
	if cfg.Grouped() {
		run := proc.ProcessFilesGrouped(ctx, files, processor, cfg.GroupingOptions())
		return run.Results, run
	}
	return proc.ProcessFiles(ctx, files, processor), nil
}

// runWithTUI runs the engine behind a Bubble Tea program and blocks until
// both the engine and the program have finished.
func runWithTUI(ctx context.Context, files []string, processor reviewer.FileProcessor, opts reviewer.Options, cfg config.Config) ([]reviewer.Result, *reviewer.GroupedRun, error) {
	model := ui.NewModel(cfg.AppVersion)
	program := tea.NewProgram(&model, tea.WithOutput(os.Stderr))
	opts.Renderer = hooks.NewCLIRenderer(nil, true, false, program, nil)

	type engineOut struct {
		results []reviewer.Result
		grouped *reviewer.GroupedRun
	}
	done := make(chan engineOut, 1)
	go func() {
		results, grouped := runEngine(ctx, files, processor, opts, cfg)
		done <- engineOut{results, grouped}
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		return nil, nil, fmt.Errorf("terminal UI failed: %w", err)
	}
	out := <-done
	return out.results, out.grouped, nil
}

// useTUI reports whether the interactive view should drive this run.
func useTUI(cfg config.Config) bool {
	return cfg.TUIEnabled && !cfg.Verbose && term.IsTerminal(int(os.Stderr.Fd()))
}

// plainRenderer builds the non-interactive renderer: a progress bar on a
// terminal, log-only otherwise.
func plainRenderer(cfg config.Config, logger *slog.Logger, total int) reviewer.ProgressRenderer {
	if !cfg.ShowProgress {
		return &reviewer.NoOpRenderer{}
	}
	var bar hooks.ProgressBar
	if !cfg.Verbose && term.IsTerminal(int(os.Stderr.Fd())) {
		barOpts := []progressbar.Option{
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("reviewing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetPredictTime(cfg.ShowETA),
		}
		if cfg.ShowThroughput {
			barOpts = append(barOpts, progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("files"))
		}
		bar = &barAdapter{bar: progressbar.NewOptions(total, barOpts...)}
	}
	return hooks.NewCLIRenderer(logger, false, cfg.Verbose, nil, bar)
}

// barAdapter adapts the schollz progress bar to the hooks.ProgressBar
// interface (Describe carries no error there).
type barAdapter struct {
	bar *progressbar.ProgressBar
}

func (b *barAdapter) Add(num int) error { return b.bar.Add(num) }

func (b *barAdapter) Describe(description string) error {
	b.bar.Describe(description)
	return nil
}

func (b *barAdapter) Close() error { return b.bar.Close() }
