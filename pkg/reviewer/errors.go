package reviewer

import "errors"

// Exported error variables. These represent categories of failure a caller
// can test for with errors.Is. Per-file processing failures are never
// surfaced this way; they are recorded as Result values (see ProcessFiles).

var (
	// ErrConfigValidation indicates an Options value failed validation
	// before any file was processed.
	ErrConfigValidation = errors.New("invalid configuration options provided")

	// ErrNoProcessor indicates ProcessFiles was called without a
	// FileProcessor capability.
	ErrNoProcessor = errors.New("file processor is required")

	// ErrNoFiles indicates a command's targets resolved to an empty
	// file set, so there is nothing to review.
	ErrNoFiles = errors.New("no files to review")

	// ErrReportWrite indicates the JSON report artifact could not be
	// persisted to disk.
	ErrReportWrite = errors.New("failed to write report")

	// ErrWalkFailed indicates the directory walk used to expand a
	// directory target failed at its root. Unreadable entries below the
	// root are skipped, not fatal.
	ErrWalkFailed = errors.New("directory walk failed")

	// ErrUnknownOrdering indicates an unrecognized FileOrdering value.
	ErrUnknownOrdering = errors.New("unknown file ordering")
)
