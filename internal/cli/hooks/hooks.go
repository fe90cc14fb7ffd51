// Package hooks bridges engine progress events to the CLI's presentation
// layer: the Bubble Tea TUI when attached to a terminal, a plain progress
// bar otherwise, and the logger in verbose mode.
package hooks

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/revpilot/revpilot/pkg/reviewer"
)

// --- TUI message structs ---

// RunStartMsg signals that a run over Total files is beginning.
type RunStartMsg struct{ Total int }

// FileStatusMsg signals a change in a file's processing status.
type FileStatusMsg struct {
	Path   string
	Status reviewer.Status
}

// ProgressMsg signals that Completed of Total files have finished.
type ProgressMsg struct {
	Path      string
	Completed int
	Total     int
}

// FileErrorMsg carries a per-file failure message.
type FileErrorMsg struct {
	Path    string
	Message string
}

// RunCompleteMsg signals the end of the run.
type RunCompleteMsg struct{}

// TUIProgram is the slice of the Bubble Tea program the renderer needs.
type TUIProgram interface {
	Send(msg tea.Msg)
}

// ProgressBar is the slice of the terminal progress bar the renderer needs.
type ProgressBar interface {
	Add(num int) error
	Describe(description string) error
	Close() error
}

// NoOpTUIProgram provides a default null implementation.
type NoOpTUIProgram struct{}

// Send implements TUIProgram.
func (n *NoOpTUIProgram) Send(msg tea.Msg) {}

// NoOpProgressBar provides a default null implementation.
type NoOpProgressBar struct{}

// Add implements ProgressBar.
func (n *NoOpProgressBar) Add(num int) error { return nil }

// Describe implements ProgressBar.
func (n *NoOpProgressBar) Describe(description string) error { return nil }

// Close implements ProgressBar.
func (n *NoOpProgressBar) Close() error { return nil }

// CLIRenderer implements reviewer.ProgressRenderer on top of whichever
// presentation surface is active. Pass nil for tuiProgram or progressBar to
// substitute the NoOp versions.
type CLIRenderer struct {
	logger         *slog.Logger
	tuiEnabled     bool
	verboseEnabled bool
	tuiProgram     TUIProgram
	progressBar    ProgressBar
	barActive      bool
	mu             sync.Mutex
	total          int
}

// NewCLIRenderer creates a renderer for the active presentation surface.
func NewCLIRenderer(logger *slog.Logger, tuiEnabled, verboseEnabled bool, tuiProg TUIProgram, progBar ProgressBar) *CLIRenderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if tuiProg == nil {
		tuiProg = &NoOpTUIProgram{}
	}
	barActive := progBar != nil
	if !barActive {
		progBar = &NoOpProgressBar{}
	}
	return &CLIRenderer{
		logger:         logger,
		tuiEnabled:     tuiEnabled,
		verboseEnabled: verboseEnabled,
		tuiProgram:     tuiProg,
		progressBar:    progBar,
		barActive:      barActive,
	}
}

// Start implements reviewer.ProgressRenderer.
func (r *CLIRenderer) Start(total int) {
	r.mu.Lock()
	r.total = total
	r.mu.Unlock()

	if r.tuiEnabled {
		r.tuiProgram.Send(RunStartMsg{Total: total})
		return
	}
	if r.verboseEnabled {
		r.logger.Debug("Run starting", slog.Int("total", total))
		return
	}
	_ = r.progressBar.Describe(fmt.Sprintf("Reviewing %d files", total))
}

// UpdateFileStatus implements reviewer.ProgressRenderer.
func (r *CLIRenderer) UpdateFileStatus(file string, status reviewer.Status) {
	if r.tuiEnabled {
		r.tuiProgram.Send(FileStatusMsg{Path: file, Status: status})
		return
	}
	if r.verboseEnabled {
		level := slog.LevelDebug
		if status == reviewer.StatusSuccess {
			level = slog.LevelInfo
		}
		r.logger.Log(nil, level, "File status updated",
			slog.String("path", file), slog.String("status", string(status)))
	}
}

// UpdateProgress implements reviewer.ProgressRenderer.
func (r *CLIRenderer) UpdateProgress(file string, completed, total int) {
	if r.tuiEnabled {
		r.tuiProgram.Send(ProgressMsg{Path: file, Completed: completed, Total: total})
		return
	}
	if r.verboseEnabled {
		r.logger.Debug("Progress",
			slog.String("path", file), slog.Int("completed", completed), slog.Int("total", total))
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.progressBar.Add(1)
}

// Error implements reviewer.ProgressRenderer. Failures are surfaced on the
// logger in every non-TUI mode so they are not lost behind the bar.
func (r *CLIRenderer) Error(file, message string) {
	if r.tuiEnabled {
		r.tuiProgram.Send(FileErrorMsg{Path: file, Message: message})
		return
	}
	r.logger.Error("File review failed", slog.String("path", file), slog.String("error", message))
}

// Complete implements reviewer.ProgressRenderer.
func (r *CLIRenderer) Complete() {
	if r.tuiEnabled {
		r.tuiProgram.Send(RunCompleteMsg{})
		return
	}
	if r.verboseEnabled {
		r.logger.Debug("Run complete")
	}
}

// Cleanup implements reviewer.ProgressRenderer. Safe to call more than once.
func (r *CLIRenderer) Cleanup() {
	if r.tuiEnabled {
		return
	}
	r.mu.Lock()
	_ = r.progressBar.Close()
	r.mu.Unlock()
	if r.barActive && !r.verboseEnabled {
		// Prevent the shell prompt from overlapping the finished bar.
		_, _ = fmt.Fprintf(os.Stderr, "\n")
	}
}

var _ reviewer.ProgressRenderer = (*CLIRenderer)(nil)
