package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/revpilot/revpilot/internal/cli/config"
	"github.com/revpilot/revpilot/pkg/reviewer"
)

// scaffoldConfig mirrors the keys config.LoadAndValidate reads, with the
// defaults spelled out so the generated file documents itself.
type scaffoldConfig struct {
	ShowProgress    bool `yaml:"showProgress"`
	ContinueOnError bool `yaml:"continueOnError"`
	MaxErrors       int  `yaml:"maxErrors"`

	OutputFormat string `yaml:"outputFormat"`
	JSONReport   string `yaml:"jsonReport,omitempty"`

	GroupBy           string   `yaml:"groupBy,omitempty"`
	ShowDirectoryTree bool     `yaml:"showDirectoryTree"`
	ExcludeDirs       []string `yaml:"excludeDirs"`

	FileOrdering string   `yaml:"fileOrdering"`
	Ignore       []string `yaml:"ignore"`
}

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter revpilot.yaml in the current directory.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeScaffold(config.DefaultConfigName+".yaml", initForce)
	},
}

func writeScaffold(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	scaffold := scaffoldConfig{
		ShowProgress:    reviewer.DefaultShowProgress,
		ContinueOnError: true,
		MaxErrors:       reviewer.DefaultMaxErrors,
		OutputFormat:    string(config.OutputConsole),
		ExcludeDirs:     []string{"vendor", "node_modules"},
		FileOrdering:    string(reviewer.DefaultFileOrdering),
		Ignore:          []string{".git/", "*.min.js"},
	}
	data, err := yaml.Marshal(scaffold)
	if err != nil {
		return fmt.Errorf("marshal starter configuration: %w", err)
	}
	header := []byte("# revpilot configuration. Flags and REVPILOT_* environment\n# variables override these values.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	return nil
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}
