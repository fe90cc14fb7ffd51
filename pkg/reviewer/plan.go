package reviewer

import (
	"encoding/json"
	"os"
	"time"
)

// AnalysisPlan is the output of dry-run planning: what a real run would
// attempt, what it would skip, and a rough duration estimate. TotalFiles
// counts the files the planner intends to process, not the raw input size.
type AnalysisPlan struct {
	TotalFiles        int
	SkippedFiles      []string
	EstimatedDuration time.Duration
}

// MarshalJSON implements json.Marshaler, emitting the estimate in
// milliseconds rather than time.Duration's default nanoseconds.
func (p AnalysisPlan) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalFiles          int      `json:"totalFiles"`
		SkippedFiles        []string `json:"skippedFiles"`
		EstimatedDurationMs int64    `json:"estimatedDurationMs"`
	}{p.TotalFiles, p.SkippedFiles, p.EstimatedDuration.Milliseconds()})
}

// CreateAnalysisPlan checks each file for existence and regularity without
// invoking any FileProcessor. An inaccessible file is recorded as skipped,
// never an error; CreateAnalysisPlan does not fail.
func CreateAnalysisPlan(files []string) *AnalysisPlan {
	plan := &AnalysisPlan{SkippedFiles: []string{}}
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || !info.Mode().IsRegular() {
			plan.SkippedFiles = append(plan.SkippedFiles, f)
			continue
		}
		plan.TotalFiles++
	}
	plan.EstimatedDuration = time.Duration(plan.TotalFiles) * PlannedFileDuration
	return plan
}
