package reviewer_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revpilot/revpilot/internal/testutil"
	"github.com/revpilot/revpilot/pkg/reviewer"
)

func TestOrderFilesAlphabetical(t *testing.T) {
	files := []string{"zeta.go", "alpha.go", "mid.go"}
	out, err := reviewer.OrderFiles(files, reviewer.OrderAlphabetical)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha.go", "mid.go", "zeta.go"}, out)
	assert.Equal(t, []string{"zeta.go", "alpha.go", "mid.go"}, files, "input is not mutated")
}

func TestOrderFilesNatural(t *testing.T) {
	out, err := reviewer.OrderFiles([]string{"file10.go", "file2.go", "file1.go"}, reviewer.OrderNatural)
	require.NoError(t, err)
	assert.Equal(t, []string{"file1.go", "file2.go", "file10.go"}, out,
		"numeric runs compare by value, not lexically")
}

func TestOrderFilesBySize(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"big.go":    "package big\n\nfunc Big() {}\n",
		"small.go":  "x",
		"medium.go": "package m\n",
	})
	files := []string{
		filepath.Join(root, "big.go"),
		filepath.Join(root, "small.go"),
		filepath.Join(root, "medium.go"),
	}
	out, err := reviewer.OrderFiles(files, reviewer.OrderSize)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "small.go"),
		filepath.Join(root, "medium.go"),
		filepath.Join(root, "big.go"),
	}, out)
}

func TestOrderFilesByModified(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"old.go": "package a",
		"new.go": "package b",
	})
	oldPath := filepath.Join(root, "old.go")
	newPath := filepath.Join(root, "new.go")
	base := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(oldPath, base, base))
	require.NoError(t, os.Chtimes(newPath, base.Add(time.Minute), base.Add(time.Minute)))

	out, err := reviewer.OrderFiles([]string{newPath, oldPath}, reviewer.OrderModified)
	require.NoError(t, err)
	assert.Equal(t, []string{oldPath, newPath}, out)
}

func TestOrderFilesUnknownOrdering(t *testing.T) {
	_, err := reviewer.OrderFiles([]string{"a.go"}, reviewer.FileOrdering("random"))
	assert.ErrorIs(t, err, reviewer.ErrUnknownOrdering)
}

func TestOrderFilesStatFailureSortsFirst(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"real.go": "package r"})
	missing := filepath.Join(root, "missing.go")
	real := filepath.Join(root, "real.go")

	out, err := reviewer.OrderFiles([]string{real, missing}, reviewer.OrderSize)
	require.NoError(t, err)
	assert.Equal(t, []string{missing, real}, out)
}
