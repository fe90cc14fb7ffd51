package reviewer_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/revpilot/revpilot/pkg/reviewer"
)

// reportSchema is the authoritative shape of the persisted JSON artifact.
const reportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["metadata", "files", "summary"],
  "properties": {
    "metadata": {
      "type": "object",
      "required": ["totalFiles", "processingMode", "timestamp", "schemaVersion"],
      "properties": {
        "totalFiles": {"type": "integer", "minimum": 0},
        "processingMode": {"type": "string"},
        "timestamp": {"type": "string"},
        "schemaVersion": {"type": "string"}
      }
    },
    "files": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["file", "success", "durationMs", "status", "startTime"],
        "properties": {
          "file": {"type": "string"},
          "success": {"type": "boolean"},
          "result": {"type": "object"},
          "error": {"type": "string"},
          "durationMs": {"type": "integer"},
          "status": {"enum": ["success", "error"]}
        }
      }
    },
    "summary": {
      "type": "object",
      "required": ["successfulFiles", "failedFiles"],
      "properties": {
        "successfulFiles": {"type": "integer", "minimum": 0},
        "failedFiles": {"type": "integer", "minimum": 0}
      }
    },
    "aggregatedMetrics": {
      "type": "object",
      "properties": {
        "gradeDistribution": {"type": "object"},
        "coverageStats": {
          "type": "object",
          "required": ["min", "max", "avg", "samples"]
        }
      }
    }
  }
}`

func sampleResults() []reviewer.Result {
	now := time.Now()
	return []reviewer.Result{
		{
			File: "a.go", Success: true, Status: reviewer.StatusSuccess, StartTime: now,
			Duration: 120 * time.Millisecond,
			Outcome:  &reviewer.Outcome{Grade: "A", Metrics: &reviewer.Metrics{Coverage: 0.9}},
		},
		{
			File: "b.go", Success: true, Status: reviewer.StatusSuccess, StartTime: now,
			Duration: 80 * time.Millisecond,
			Outcome:  &reviewer.Outcome{Grade: "B", Metrics: &reviewer.Metrics{Coverage: 0.5}},
		},
		{
			File: "c.go", Success: true, Status: reviewer.StatusSuccess, StartTime: now,
			Duration: 50 * time.Millisecond,
			Outcome:  &reviewer.Outcome{Grade: "A"},
		},
		{
			File: "d.go", Success: false, Status: reviewer.StatusError, StartTime: now,
			Duration: 10 * time.Millisecond,
			Err:      errors.New("parse failure"),
		},
	}
}

func TestGenerateReportSummary(t *testing.T) {
	results := sampleResults()
	report := reviewer.GenerateReport(results, reviewer.DefaultReportOptions())

	assert.Equal(t, len(results), report.Metadata.TotalFiles)
	assert.Equal(t, "sequential", report.Metadata.ProcessingMode)
	assert.Equal(t, reviewer.ReportSchemaVersion, report.Metadata.SchemaVersion)
	assert.False(t, report.Metadata.Timestamp.IsZero())

	assert.Equal(t, 3, report.Summary.SuccessfulFiles)
	assert.Equal(t, 1, report.Summary.FailedFiles)
	assert.Equal(t, report.Metadata.TotalFiles, report.Summary.SuccessfulFiles+report.Summary.FailedFiles)
}

func TestGenerateReportGradeDistribution(t *testing.T) {
	report := reviewer.GenerateReport(sampleResults(), reviewer.DefaultReportOptions())

	require.NotNil(t, report.AggregatedMetrics)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, report.AggregatedMetrics.GradeDistribution,
		"failed and grade-less results are excluded, not counted as a fake grade")
}

func TestGenerateReportCoverageStats(t *testing.T) {
	report := reviewer.GenerateReport(sampleResults(), reviewer.DefaultReportOptions())

	cov := report.AggregatedMetrics.CoverageStats
	require.NotNil(t, cov)
	assert.Equal(t, 2, cov.Samples, "only results exposing coverage are sampled")
	assert.InDelta(t, 0.5, cov.Min, 1e-9)
	assert.InDelta(t, 0.9, cov.Max, 1e-9)
	assert.InDelta(t, 0.7, cov.Avg, 1e-9)
}

func TestGenerateReportNoCoverageResults(t *testing.T) {
	results := []reviewer.Result{
		{File: "a.go", Success: true, Status: reviewer.StatusSuccess, Outcome: &reviewer.Outcome{Grade: "C"}},
	}
	report := reviewer.GenerateReport(results, reviewer.DefaultReportOptions())
	assert.Nil(t, report.AggregatedMetrics.CoverageStats)
}

func TestGenerateReportWithoutMetrics(t *testing.T) {
	report := reviewer.GenerateReport(sampleResults(), reviewer.ReportOptions{IncludeMetrics: false})
	assert.Nil(t, report.AggregatedMetrics, "includeMetrics=false omits aggregatedMetrics entirely")

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "aggregatedMetrics")
}

func TestGenerateReportDoesNotMutateInput(t *testing.T) {
	results := sampleResults()
	before := make([]reviewer.Result, len(results))
	copy(before, results)

	report := reviewer.GenerateReport(results, reviewer.DefaultReportOptions())
	report.Files[0].File = "mutated.go"

	assert.Equal(t, before, results)
}

func TestGenerateReportEmptyResults(t *testing.T) {
	report := reviewer.GenerateReport(nil, reviewer.DefaultReportOptions())
	assert.Zero(t, report.Metadata.TotalFiles)
	assert.Zero(t, report.Summary.SuccessfulFiles)
	assert.Zero(t, report.Summary.FailedFiles)
	require.NotNil(t, report.AggregatedMetrics)
	assert.Empty(t, report.AggregatedMetrics.GradeDistribution)
}

func TestGenerateReportModeLabel(t *testing.T) {
	report := reviewer.GenerateReport(nil, reviewer.ReportOptions{ProcessingMode: "grouped", IncludeMetrics: true})
	assert.Equal(t, "grouped", report.Metadata.ProcessingMode)
}

func TestWriteReportArtifact(t *testing.T) {
	report := reviewer.GenerateReport(sampleResults(), reviewer.DefaultReportOptions())
	path := filepath.Join(t.TempDir(), "reports", "run.json")

	require.NoError(t, reviewer.WriteReport(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, utf8.Valid(data))
	assert.Contains(t, string(data), "\n  \"metadata\"", "artifact is pretty-printed")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
}

func TestWriteReportMatchesSchema(t *testing.T) {
	report := reviewer.GenerateReport(sampleResults(), reviewer.DefaultReportOptions())
	data, err := json.Marshal(report)
	require.NoError(t, err)

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(reportSchema),
		gojsonschema.NewBytesLoader(data),
	)
	require.NoError(t, err)
	assert.True(t, result.Valid(), "schema violations: %v", result.Errors())
}
