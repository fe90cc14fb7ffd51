package analyze

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revpilot/revpilot/internal/testutil"
	"github.com/revpilot/revpilot/pkg/reviewer"
)

func analyzeFile(t *testing.T, name, content string) (*reviewer.Outcome, error) {
	t.Helper()
	root := testutil.WriteTree(t, map[string]string{name: content})
	return New(nil).ProcessFile(context.Background(), root+"/"+name)
}

func TestProcessFileCleanSource(t *testing.T) {
	outcome, err := analyzeFile(t, "clean.go",
		"// Package clean does nothing.\npackage clean\n\n// Noop is a no-op.\nfunc Noop() {}\n")
	require.NoError(t, err)

	assert.Equal(t, "A", outcome.Grade)
	assert.Equal(t, "approved", outcome.State)
	assert.Empty(t, outcome.Issues)
	require.NotNil(t, outcome.Metrics)
	assert.Greater(t, outcome.Metrics.Coverage, 0.0)
}

func TestProcessFileFindsIssues(t *testing.T) {
	content := "package messy\n\n" +
		"// FIXME: rewrite this\n" +
		"var x = 1 \n" + // trailing whitespace
		"var y = \"" + strings.Repeat("a", 130) + "\"\n"
	outcome, err := analyzeFile(t, "messy.go", content)
	require.NoError(t, err)

	assert.NotEmpty(t, outcome.Issues)
	messages := make([]string, 0, len(outcome.Issues))
	for _, issue := range outcome.Issues {
		messages = append(messages, issue.Message)
	}
	assert.Contains(t, messages, "unresolved FIXME marker")
	assert.Contains(t, messages, "trailing whitespace")
	assert.Contains(t, messages, "line exceeds 120 characters")
}

func TestProcessFileErrorsOnOverlongLine(t *testing.T) {
	// A single line past the scanner's buffer cap must fail the review,
	// not grade whatever prefix the scanner managed to read.
	content := "package wide\n\nvar blob = \"" + strings.Repeat("a", (1<<20)+16) + "\"\n"
	outcome, err := analyzeFile(t, "wide.go", content)

	require.Error(t, err)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.Nil(t, outcome)
}

func TestProcessFileGradeDegradesWithIssues(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("package bad\n")
	for range 12 {
		sb.WriteString("// FIXME: one more\n")
	}
	outcome, err := analyzeFile(t, "bad.go", sb.String())
	require.NoError(t, err)

	assert.Equal(t, "F", outcome.Grade)
	assert.Equal(t, "changes-requested", outcome.State)
}

func TestProcessFilePythonComments(t *testing.T) {
	outcome, err := analyzeFile(t, "script.py", "# module doc\nx = 1\n")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, outcome.Metrics.Coverage, 1e-9)
}

func TestProcessFileMissing(t *testing.T) {
	_, err := New(nil).ProcessFile(context.Background(), "/nonexistent/file.go")
	assert.Error(t, err)
}

func TestProcessFileBinary(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"blob.bin": "\x00\x01\x02\x03"})
	_, err := New(nil).ProcessFile(context.Background(), root+"/blob.bin")
	assert.ErrorContains(t, err, "binary")
}

func TestProcessFileCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).ProcessFile(ctx, "irrelevant.go")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGradeFor(t *testing.T) {
	assert.Equal(t, "A", gradeFor(0))
	assert.Equal(t, "B", gradeFor(2))
	assert.Equal(t, "C", gradeFor(5))
	assert.Equal(t, "D", gradeFor(10))
	assert.Equal(t, "F", gradeFor(11))
}
