package reviewer

// ModeOptions carries the explicit overrides consulted by advanced mode
// selection. ForceSequential and ForceParallel are mutually exclusive; the
// CLI layer reports the conflict before calling in, and ForceSequential wins
// here if both are set anyway.
type ModeOptions struct {
	ForceSequential bool
	ForceParallel   bool
	// SequentialThreshold selects sequential execution when the file count
	// is at or below it. Values < 1 mean "not configured".
	SequentialThreshold int
}

// DetermineProcessingMode picks an execution strategy from the command shape
// alone. Single-target commands (explicit files, a directory) default to
// sequential; review-set commands (pr, changes) default to parallel. Unknown
// command types get the safe sequential default.
func DetermineProcessingMode(cmd Command) ProcessingMode {
	switch cmd.Type {
	case CommandFiles, CommandDirectory:
		return ModeSequential
	case CommandPR, CommandChanges:
		return ModeParallel
	default:
		return ModeSequential
	}
}

// DetermineProcessingModeAdvanced refines the basic rule with explicit
// overrides and a file-count threshold, checked in that precedence order.
// It is a pure function: no side effects, no state.
func DetermineProcessingModeAdvanced(cmd Command, fileCount int, opts ModeOptions) ProcessingMode {
	if opts.ForceSequential {
		return ModeSequential
	}
	if opts.ForceParallel {
		return ModeParallel
	}
	if opts.SequentialThreshold > 0 {
		if fileCount <= opts.SequentialThreshold {
			return ModeSequential
		}
		return ModeParallel
	}
	return DetermineProcessingMode(cmd)
}
