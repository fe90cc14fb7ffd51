package reviewer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ReportMetadata describes the run that produced a report.
type ReportMetadata struct {
	TotalFiles     int       `json:"totalFiles"`
	ProcessingMode string    `json:"processingMode"`
	Timestamp      time.Time `json:"timestamp"`
	SchemaVersion  string    `json:"schemaVersion"`
}

// ReportSummary holds the success/failure split.
type ReportSummary struct {
	SuccessfulFiles int `json:"successfulFiles"`
	FailedFiles     int `json:"failedFiles"`
}

// CoverageStats aggregates the coverage metric across successful results
// that exposed one.
type CoverageStats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Avg     float64 `json:"avg"`
	Samples int     `json:"samples"`
}

// AggregatedMetrics holds run-wide derived metrics.
type AggregatedMetrics struct {
	// GradeDistribution maps grade label to count. Failed or grade-less
	// results are excluded, never counted under a placeholder grade.
	GradeDistribution map[string]int `json:"gradeDistribution"`
	// CoverageStats is nil when no successful result carried a coverage
	// metric.
	CoverageStats *CoverageStats `json:"coverageStats,omitempty"`
}

// Report is the immutable aggregate built once per completed run. When a
// run stops early, the report reflects attempted files only; files never
// attempted are not padded in.
type Report struct {
	Metadata ReportMetadata `json:"metadata"`
	Files    []Result       `json:"files"`
	Summary  ReportSummary  `json:"summary"`
	// AggregatedMetrics is omitted entirely (nil) when report options set
	// IncludeMetrics to false.
	AggregatedMetrics *AggregatedMetrics `json:"aggregatedMetrics,omitempty"`
}

// ReportOptions configures report generation.
type ReportOptions struct {
	// ProcessingMode is echoed into metadata. Empty means "sequential".
	ProcessingMode string
	// IncludeMetrics controls whether aggregatedMetrics is computed.
	IncludeMetrics bool
}

// DefaultReportOptions returns the options used when the caller has no
// opinion: sequential label, metrics included.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{ProcessingMode: DefaultProcessingModeLabel, IncludeMetrics: true}
}

// GenerateReport aggregates a result set into a Report. The input slice is
// read, never mutated; the report holds its own copy of the result list.
func GenerateReport(results []Result, opts ReportOptions) *Report {
	if opts.ProcessingMode == "" {
		opts.ProcessingMode = DefaultProcessingModeLabel
	}

	files := make([]Result, len(results))
	copy(files, results)

	report := &Report{
		Metadata: ReportMetadata{
			TotalFiles:     len(results),
			ProcessingMode: opts.ProcessingMode,
			Timestamp:      time.Now().UTC(),
			SchemaVersion:  ReportSchemaVersion,
		},
		Files: files,
	}
	for _, r := range results {
		if r.Success {
			report.Summary.SuccessfulFiles++
		} else {
			report.Summary.FailedFiles++
		}
	}
	if opts.IncludeMetrics {
		report.AggregatedMetrics = aggregateMetrics(results)
	}
	return report
}

// aggregateMetrics derives the grade distribution and coverage stats from
// successful results. Extraction is total: missing grades and metrics are
// skipped, never an error.
func aggregateMetrics(results []Result) *AggregatedMetrics {
	agg := &AggregatedMetrics{GradeDistribution: make(map[string]int)}
	var cov CoverageStats
	var covSum float64
	for _, r := range results {
		if !r.Success || r.Outcome == nil {
			continue
		}
		if r.Outcome.Grade != "" {
			agg.GradeDistribution[r.Outcome.Grade]++
		}
		m := r.Outcome.Metrics
		if m == nil || m.Coverage < 0 {
			continue
		}
		if cov.Samples == 0 || m.Coverage < cov.Min {
			cov.Min = m.Coverage
		}
		if cov.Samples == 0 || m.Coverage > cov.Max {
			cov.Max = m.Coverage
		}
		covSum += m.Coverage
		cov.Samples++
	}
	if cov.Samples > 0 {
		cov.Avg = covSum / float64(cov.Samples)
		agg.CoverageStats = &cov
	}
	return agg
}

// WriteReport persists the report as pretty-printed UTF-8 JSON. Parent
// directories are created as needed.
func WriteReport(path string, report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal report: %w", ErrReportWrite, err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create report directory %q: %w", ErrReportWrite, dir, err)
		}
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %q: %w", ErrReportWrite, path, err)
	}
	return nil
}
