package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// executeCommand runs the command with the given args and captures output.
func executeCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	root.SetOut(outBuf)
	root.SetErr(errBuf)
	root.SetArgs(args)

	// Flag values persist on the shared command across Execute calls, and
	// cobra checks the help flag before the version flag; reset both so an
	// earlier test's --help/--version does not leak into this run.
	for _, name := range []string{"help", "version"} {
		if f := root.Flags().Lookup(name); f != nil {
			_ = f.Value.Set("false")
			f.Changed = false
		}
	}

	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestRootCmdHelp(t *testing.T) {
	stdout, _, err := executeCommand(rootCmd, "--help")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "revpilot")
	for _, sub := range []string{"files", "dir", "changes", "pr", "init"} {
		assert.Contains(t, stdout, sub, "help should list the %s subcommand", sub)
	}
}

func TestRootCmdHelp_AllPersistentFlagsPresent(t *testing.T) {
	stdout, _, err := executeCommand(rootCmd, "--help")
	require.NoError(t, err)

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		assert.Contains(t, stdout, "--"+f.Name, "flag --%s missing from help output", f.Name)
		if f.Shorthand != "" {
			assert.Contains(t, stdout, "-"+f.Shorthand, "shorthand -%s missing from help output", f.Shorthand)
		}
	})
}

func TestRootCmdVersion(t *testing.T) {
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")
	stdout, _, err := executeCommand(rootCmd, "--version")

	require.NoError(t, err)
	assert.Contains(t, stdout, "revpilot version")
	assert.Contains(t, stdout, version)
}

func TestFilesCmdRequiresArgs(t *testing.T) {
	_, _, err := executeCommand(rootCmd, "files")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestWriteScaffold(t *testing.T) {
	t.Run("Creates Configuration File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "revpilot.yaml")

		err := writeScaffold(path, false)

		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var cfg scaffoldConfig
		require.NoError(t, yaml.Unmarshal(data, &cfg))
		assert.True(t, cfg.ShowProgress)
		assert.True(t, cfg.ContinueOnError)
		assert.Equal(t, "console", cfg.OutputFormat)
		assert.Equal(t, "alphabetical", cfg.FileOrdering)
		assert.Contains(t, cfg.ExcludeDirs, "vendor")
		assert.Contains(t, string(data), "# revpilot configuration")
	})

	t.Run("Refuses To Overwrite Without Force", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "revpilot.yaml")
		require.NoError(t, os.WriteFile(path, []byte("maxErrors: 3\n"), 0o644))

		err := writeScaffold(path, false)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("Force Overwrites Existing File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "revpilot.yaml")
		require.NoError(t, os.WriteFile(path, []byte("maxErrors: 3\n"), 0o644))

		err := writeScaffold(path, true)

		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "maxErrors: 3")
	})
}
