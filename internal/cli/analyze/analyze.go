// Package analyze provides the built-in review capability: a lightweight
// heuristic pass over a source file producing a grade, findings, and a
// documentation-coverage metric. External analyzers can replace it by
// implementing reviewer.FileProcessor.
package analyze

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/revpilot/revpilot/pkg/reviewer"
)

const (
	maxLineLength = 120
	// Files above this size are graded on structure only, not read fully.
	maxReadBytes = 8 << 20
)

// Analyzer is the default heuristic review engine.
type Analyzer struct {
	logger *slog.Logger
}

// New creates an Analyzer logging through the given handler.
func New(loggerHandler slog.Handler) *Analyzer {
	if loggerHandler == nil {
		loggerHandler = slog.DiscardHandler
	}
	return &Analyzer{
		logger: slog.New(loggerHandler).With(slog.String("component", "analyzer")),
	}
}

// ProcessFile implements reviewer.FileProcessor.
func (a *Analyzer) ProcessFile(ctx context.Context, path string) (*reviewer.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	if info.Size() > maxReadBytes {
		return nil, fmt.Errorf("file %q exceeds analysis size limit (%d bytes)", path, info.Size())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	if enry.IsBinary(content) {
		return nil, fmt.Errorf("file %q is binary, nothing to review", path)
	}

	language := enry.GetLanguage(filepath.Base(path), content)
	issues, coverage, err := a.scan(content, language)
	if err != nil {
		return nil, fmt.Errorf("scanning %q: %w", path, err)
	}

	outcome := &reviewer.Outcome{
		Grade:   gradeFor(len(issues)),
		Issues:  issues,
		Metrics: &reviewer.Metrics{Coverage: coverage},
	}
	if outcome.Grade == "A" || outcome.Grade == "B" {
		outcome.State = "approved"
	} else {
		outcome.State = "changes-requested"
	}

	a.logger.Debug("File analyzed",
		slog.String("path", path),
		slog.String("language", language),
		slog.String("grade", outcome.Grade),
		slog.Int("issues", len(issues)))
	return outcome, nil
}

// scan walks the file line by line, recording findings and counting comment
// lines for the coverage metric. A scan that cannot finish (a line past the
// buffer cap) is an error rather than a grade on truncated content.
func (a *Analyzer) scan(content []byte, language string) ([]reviewer.Issue, float64, error) {
	var issues []reviewer.Issue
	commentLines := 0
	totalLines := 0
	markers := commentMarkers(language)

	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		totalLines++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		for _, marker := range markers {
			if strings.HasPrefix(trimmed, marker) {
				commentLines++
				break
			}
		}

		if len(line) > maxLineLength {
			issues = append(issues, reviewer.Issue{
				Severity: "warning",
				Message:  fmt.Sprintf("line exceeds %d characters", maxLineLength),
				Line:     lineNo,
			})
		}
		if strings.Contains(trimmed, "FIXME") {
			issues = append(issues, reviewer.Issue{
				Severity: "warning",
				Message:  "unresolved FIXME marker",
				Line:     lineNo,
			})
		}
		if trimmed != "" && line != strings.TrimRight(line, " \t") {
			issues = append(issues, reviewer.Issue{
				Severity: "info",
				Message:  "trailing whitespace",
				Line:     lineNo,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}

	coverage := 0.0
	if totalLines > 0 {
		coverage = float64(commentLines) / float64(totalLines)
	}
	return issues, coverage, nil
}

// gradeFor maps a finding count onto a letter grade.
func gradeFor(issueCount int) string {
	switch {
	case issueCount == 0:
		return "A"
	case issueCount <= 2:
		return "B"
	case issueCount <= 5:
		return "C"
	case issueCount <= 10:
		return "D"
	default:
		return "F"
	}
}

// commentMarkers returns the single-line comment prefixes for a language,
// falling back to the common ones when the language is unknown.
func commentMarkers(language string) []string {
	switch language {
	case "Python", "Ruby", "Shell", "Makefile", "YAML", "TOML":
		return []string{"#"}
	case "Lua", "SQL":
		return []string{"--"}
	default:
		return []string{"//", "#"}
	}
}

var _ reviewer.FileProcessor = (*Analyzer)(nil)
