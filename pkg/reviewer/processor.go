package reviewer

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SequentialProcessor drives ordered, one-at-a-time execution of a
// FileProcessor over a file list. It holds no shared mutable state across
// calls; independent ProcessFiles calls may run concurrently as long as each
// uses its own FileProcessor instance or the processor is reentrant.
type SequentialProcessor struct {
	opts   Options
	logger *slog.Logger
}

// NewSequentialProcessor creates a processor with the given options.
// Nil collaborators in opts are replaced with no-op defaults.
func NewSequentialProcessor(opts Options) *SequentialProcessor {
	opts.normalize()
	return &SequentialProcessor{
		opts:   opts,
		logger: slog.New(opts.Logger).With(slog.String("component", "processor")),
	}
}

// ProcessFiles executes proc over files in input order and returns one
// Result per attempted file, in the same order. Per-file failures never
// escape as errors; they become Results with Success=false. The returned
// slice may be shorter than files when the stop policy (OnErrorStop or
// MaxErrors) or context cancellation ends the run early; files never
// attempted are simply absent.
func (p *SequentialProcessor) ProcessFiles(ctx context.Context, files []string, proc FileProcessor) []Result {
	if len(files) == 0 {
		return []Result{}
	}
	if proc == nil {
		// Misuse, not a per-file failure: surface loudly.
		panic(ErrNoProcessor)
	}

	total := len(files)
	results := make([]Result, 0, total)
	failures := 0

	renderer := p.opts.Renderer
	if !p.opts.ShowProgress {
		renderer = NoOpRenderer{}
	}

	renderer.Start(total)
	defer renderer.Cleanup()

	p.logger.Debug("Starting sequential run",
		slog.Int("files", total),
		slog.String("onError", string(p.opts.OnErrorMode)),
		slog.Int("maxErrors", p.opts.MaxErrors))

	for i, file := range files {
		if ctx.Err() != nil {
			p.logger.Info("Run cancelled", slog.String("reason", ctx.Err().Error()), slog.Int("completed", len(results)))
			break
		}

		if p.opts.OnFileStart != nil {
			p.opts.OnFileStart(file, i, total)
		}
		renderer.UpdateFileStatus(file, StatusRunning)

		res := p.processOne(ctx, file, proc)
		results = append(results, res)

		if res.Success {
			if p.opts.OnFileComplete != nil {
				p.opts.OnFileComplete(file, res)
			}
			renderer.UpdateProgress(file, len(results), total)
		} else {
			failures++
			if p.opts.OnError != nil {
				p.opts.OnError(file, res.Err)
			}
			renderer.Error(file, res.Err.Error())
		}

		if !res.Success && p.opts.OnErrorMode == OnErrorStop {
			p.logger.Info("Stopping on first error", slog.String("file", file))
			break
		}
		if p.opts.MaxErrors > 0 && failures >= p.opts.MaxErrors {
			p.logger.Info("Error budget exhausted",
				slog.Int("failures", failures), slog.Int("maxErrors", p.opts.MaxErrors))
			break
		}
	}

	renderer.Complete()
	return results
}

// processOne runs the capability for a single file, converting both returned
// errors and panics into an error Result. A panicking FileProcessor must not
// take the whole run down with it.
func (p *SequentialProcessor) processOne(ctx context.Context, file string, proc FileProcessor) (res Result) {
	start := time.Now()
	res = Result{File: file, StartTime: start}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Panic recovered in file processor",
				slog.String("file", file), slog.Any("panicValue", r))
			res.Success = false
			res.Outcome = nil
			res.Err = fmt.Errorf("processor panic: %v", r)
			res.Status = StatusError
			res.Duration = time.Since(start)
		}
	}()

	outcome, err := proc.ProcessFile(ctx, file)
	res.Duration = time.Since(start)
	if err != nil {
		res.Success = false
		res.Err = err
		res.Status = StatusError
		p.logger.Debug("File failed", slog.String("file", file), slog.String("error", err.Error()))
		return res
	}
	res.Success = true
	res.Outcome = outcome
	res.Status = StatusSuccess
	p.logger.Debug("File processed", slog.String("file", file), slog.Duration("duration", res.Duration))
	return res
}

// ComputeStats derives aggregate statistics from a result set. An empty set
// yields zeroed stats with SuccessRate 0. A successful result whose outcome
// carries at least one issue counts toward Warnings.
func ComputeStats(results []Result) Stats {
	s := Stats{Total: len(results)}
	if s.Total == 0 {
		return s
	}
	for _, r := range results {
		s.TotalDuration += r.Duration
		if !r.Success {
			s.Failed++
			continue
		}
		s.Successful++
		if r.Outcome != nil && len(r.Outcome.Issues) > 0 {
			s.Warnings++
		}
	}
	s.AverageDuration = s.TotalDuration / time.Duration(s.Total)
	s.SuccessRate = float64(s.Successful) / float64(s.Total)
	return s
}

// StopReason describes why a run returned fewer results than it was given
// files, for user-facing summaries. It returns "" when the run was
// exhaustive.
func StopReason(opts Options, files, results int, failed int) string {
	if results >= files {
		return ""
	}
	if opts.MaxErrors > 0 && failed >= opts.MaxErrors {
		return fmt.Sprintf("stopped after %d errors (max-errors=%d)", failed, opts.MaxErrors)
	}
	if opts.OnErrorMode == OnErrorStop && failed > 0 {
		return "stopped on first error"
	}
	return "stopped early (cancelled)"
}
