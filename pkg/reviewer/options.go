package reviewer

import (
	"context"
	"io"
	"log/slog"
)

// FileProcessor is the injected single-file analysis capability. The engine
// imposes no requirements on the returned Outcome beyond what the report
// generator optionally reads. Implementations may be slow (LLM calls, static
// analysis); the engine awaits each call to completion before the next file.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (*Outcome, error)
}

// ProcessorFunc adapts a plain function to the FileProcessor interface.
type ProcessorFunc func(ctx context.Context, path string) (*Outcome, error)

// ProcessFile implements FileProcessor.
func (f ProcessorFunc) ProcessFile(ctx context.Context, path string) (*Outcome, error) {
	return f(ctx, path)
}

// ProgressRenderer receives lifecycle events from the engine. All methods
// are fire-and-forget from the engine's perspective except Cleanup, which is
// guaranteed to run even when a callback panics mid-run. Implementations
// need not be thread-safe: the sequential engine calls them from a single
// goroutine, in file order.
type ProgressRenderer interface {
	Start(total int)
	UpdateProgress(file string, completed, total int)
	UpdateFileStatus(file string, status Status)
	Complete()
	Error(file, message string)
	Cleanup()
}

// NoOpRenderer is the default, do-nothing ProgressRenderer.
type NoOpRenderer struct{}

func (NoOpRenderer) Start(total int) {}

func (NoOpRenderer) UpdateProgress(file string, completed, total int) {}

func (NoOpRenderer) UpdateFileStatus(file string, status Status) {}

func (NoOpRenderer) Complete() {}

func (NoOpRenderer) Error(file, message string) {}

func (NoOpRenderer) Cleanup() {}

// Options configures a SequentialProcessor. The zero value is usable:
// progress rendering on a no-op renderer, continue-on-error semantics and an
// unbounded error budget.
type Options struct {
	// ShowProgress gates all renderer calls. Observer callbacks fire
	// regardless.
	ShowProgress bool

	// OnErrorMode stops the run at the first failure when set to
	// OnErrorStop. The empty string means OnErrorContinue.
	OnErrorMode OnErrorMode

	// MaxErrors stops the run once the cumulative failure count reaches
	// this value, even under OnErrorContinue. 0 means unbounded.
	MaxErrors int

	// Observer callbacks, invoked synchronously in file order, exactly
	// once per attempted file. A panic in a callback is not recovered:
	// observers are trusted collaborators and a panic there is a
	// programming error that should surface.
	OnFileStart    func(file string, index, total int)
	OnFileComplete func(file string, result Result)
	OnError        func(file string, err error)

	// Renderer is the external progress sink. Nil means NoOpRenderer.
	Renderer ProgressRenderer

	// Logger is the slog backend for engine diagnostics. Nil discards.
	Logger slog.Handler
}

// DefaultOptions returns Options with the package defaults applied.
func DefaultOptions() Options {
	return Options{
		ShowProgress: DefaultShowProgress,
		OnErrorMode:  DefaultOnErrorMode,
		MaxErrors:    DefaultMaxErrors,
	}
}

// normalize fills nil collaborators so the engine never branches on them.
func (o *Options) normalize() {
	if o.Renderer == nil {
		o.Renderer = NoOpRenderer{}
	}
	if o.OnErrorMode == "" {
		o.OnErrorMode = OnErrorContinue
	}
	if o.MaxErrors < 0 {
		o.MaxErrors = 0
	}
	if o.Logger == nil {
		o.Logger = slog.NewTextHandler(io.Discard, nil)
	}
}
