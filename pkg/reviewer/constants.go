package reviewer

import "time"

// Defaults for engine options. The CLI layer feeds these into viper so that
// config files, environment variables and flags all share one source of
// truth.
const (
	// DefaultShowProgress controls whether a progress renderer is driven.
	DefaultShowProgress = true
	// DefaultOnErrorMode is the behavior after a per-file failure.
	DefaultOnErrorMode = OnErrorContinue
	// DefaultMaxErrors of 0 means the error budget is unbounded.
	DefaultMaxErrors = 0
	// DefaultFileOrdering leaves the caller-supplied order untouched unless
	// an ordering is requested explicitly.
	DefaultFileOrdering = OrderAlphabetical
	// DefaultGroupBy is the partition key for grouped processing.
	DefaultGroupBy = GroupByDirectory
	// DefaultSequentialThreshold of 0 means "no threshold configured";
	// mode selection then falls back to the command-type rule.
	DefaultSequentialThreshold = 0
)

// Report schema constants.
const (
	// ReportSchemaVersion identifies the JSON report structure. Bump on
	// incompatible changes to the serialized Report.
	ReportSchemaVersion = "1.0"
	// DefaultProcessingModeLabel is echoed into report metadata when the
	// caller does not supply a label.
	DefaultProcessingModeLabel = string(ModeSequential)
)

// Dry-run planning constants.
const (
	// PlannedFileDuration is the flat per-file estimate used by the
	// dry-run planner. Analysis time is dominated by the injected
	// capability, so the planner does not try to be clever about it.
	PlannedFileDuration = 1500 * time.Millisecond
)
