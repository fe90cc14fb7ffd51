package reviewer

import (
	"encoding/json"
	"time"
)

// Status is the processing state of a single file.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// ProcessingMode labels the execution strategy chosen for a run. This
// package only implements sequential execution; ModeParallel is a decision
// output that a caller may act on with a different engine.
type ProcessingMode string

const (
	ModeSequential ProcessingMode = "sequential"
	ModeParallel   ProcessingMode = "parallel"
)

// OnErrorMode controls whether the processor keeps going after a file fails.
type OnErrorMode string

const (
	OnErrorContinue OnErrorMode = "continue"
	OnErrorStop     OnErrorMode = "stop"
)

// CommandType identifies the shape of the user command that produced the
// file list. It is an input to mode selection only.
type CommandType string

const (
	CommandFiles     CommandType = "files"
	CommandDirectory CommandType = "directory"
	CommandPR        CommandType = "pr"
	CommandChanges   CommandType = "changes"
)

// Command is the read-only description of what the user asked for.
type Command struct {
	Type    CommandType
	Targets []string
}

// FileOrdering selects how the input file list is sorted before processing.
type FileOrdering string

const (
	OrderAlphabetical FileOrdering = "alphabetical"
	OrderNatural      FileOrdering = "natural"
	OrderSize         FileOrdering = "size"
	OrderModified     FileOrdering = "modified"
)

// GroupBy selects the partitioning key for grouped processing.
type GroupBy string

const (
	GroupByDirectory GroupBy = "directory"
	GroupByFileType  GroupBy = "fileType"
)

// Issue is a single finding reported by an analysis capability.
type Issue struct {
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
}

// Metrics holds optional numeric measurements attached to an outcome.
// Coverage is a ratio in [0,1]; negative means "not measured".
type Metrics struct {
	Coverage float64 `json:"coverage"`
}

// Outcome is the payload produced by a FileProcessor for one file. All
// fields are optional; unknown extra fields from an external analyzer are
// ignored. The engine only ever reads Grade and Metrics.Coverage (for report
// aggregation) and treats the rest as opaque.
type Outcome struct {
	Grade   string   `json:"grade,omitempty"`
	State   string   `json:"state,omitempty"`
	Issues  []Issue  `json:"issues,omitempty"`
	Metrics *Metrics `json:"metrics,omitempty"`
}

// Result is the terminal record for one attempted file. Exactly one of
// Outcome and Err is set, matching Success; Status is always StatusSuccess
// or StatusError by the time a Result is returned to the caller.
type Result struct {
	File      string
	Success   bool
	Outcome   *Outcome
	Err       error
	Duration  time.Duration
	Status    Status
	StartTime time.Time
}

// resultJSON is the wire form of Result used by the JSON report. Err does
// not marshal usefully, so it is flattened to its message.
type resultJSON struct {
	File       string    `json:"file"`
	Success    bool      `json:"success"`
	Outcome    *Outcome  `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"durationMs"`
	Status     Status    `json:"status"`
	StartTime  time.Time `json:"startTime"`
}

// MarshalJSON implements json.Marshaler.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		File:       r.File,
		Success:    r.Success,
		Outcome:    r.Outcome,
		DurationMs: r.Duration.Milliseconds(),
		Status:     r.Status,
		StartTime:  r.StartTime,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Stats is derived from a result set, never stored.
type Stats struct {
	Total           int
	Successful      int
	Failed          int
	Warnings        int
	AverageDuration time.Duration
	TotalDuration   time.Duration
	SuccessRate     float64
}
