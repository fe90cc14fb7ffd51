// Package config loads and validates the CLI configuration from defaults,
// an optional config file, environment variables, and command-line flags,
// in ascending precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/revpilot/revpilot/pkg/reviewer"
)

const (
	EnvPrefix         = "REVPILOT"
	DefaultConfigName = "revpilot"
)

// OutputFormat selects where run results are rendered.
type OutputFormat string

const (
	OutputConsole OutputFormat = "console"
	OutputJSON    OutputFormat = "json"
	OutputBoth    OutputFormat = "both"
)

// Config is the fully merged and validated CLI configuration.
type Config struct {
	AppVersion     string `mapstructure:"-"`
	ConfigFilePath string `mapstructure:"-"`

	Verbose    bool `mapstructure:"verbose"`
	TUIEnabled bool `mapstructure:"tuiEnabled"`

	ShowProgress    bool `mapstructure:"showProgress"`
	ShowETA         bool `mapstructure:"showEta"`
	ShowThroughput  bool `mapstructure:"showThroughput"`
	ContinueOnError bool `mapstructure:"continueOnError"`
	MaxErrors       int  `mapstructure:"maxErrors"`

	OutputFormat OutputFormat `mapstructure:"outputFormat"`
	JSONReport   string       `mapstructure:"jsonReport"`
	DryRun       bool         `mapstructure:"dryRun"`

	Sequential          bool `mapstructure:"sequential"`
	Parallel            bool `mapstructure:"parallel"`
	SequentialThreshold int  `mapstructure:"sequentialThreshold"`

	GroupByDirectory  bool     `mapstructure:"groupByDirectory"`
	GroupBy           string   `mapstructure:"groupBy"`
	ShowDirectoryTree bool     `mapstructure:"showDirectoryTree"`
	ExcludeDirs       []string `mapstructure:"excludeDirs"`
	IncludeDirs       []string `mapstructure:"includeDirs"`

	FileOrdering string   `mapstructure:"fileOrdering"`
	Ignore       []string `mapstructure:"ignore"`
}

// Grouped reports whether any grouping flag or key asked for grouped
// processing.
func (c *Config) Grouped() bool {
	return c.GroupByDirectory || c.GroupBy != ""
}

// EngineOptions translates the CLI configuration into engine options. The
// renderer and observer callbacks are wired by the caller.
func (c *Config) EngineOptions(handler slog.Handler) reviewer.Options {
	opts := reviewer.DefaultOptions()
	opts.ShowProgress = c.ShowProgress
	opts.MaxErrors = c.MaxErrors
	opts.Logger = handler
	if c.ContinueOnError {
		opts.OnErrorMode = reviewer.OnErrorContinue
	} else {
		opts.OnErrorMode = reviewer.OnErrorStop
	}
	return opts
}

// ModeOptions translates the force flags and threshold into mode-selection
// options.
func (c *Config) ModeOptions() reviewer.ModeOptions {
	return reviewer.ModeOptions{
		ForceSequential:     c.Sequential,
		ForceParallel:       c.Parallel,
		SequentialThreshold: c.SequentialThreshold,
	}
}

// GroupingOptions translates the grouping keys into grouped-run options.
func (c *Config) GroupingOptions() reviewer.GroupingOptions {
	groupBy := reviewer.GroupBy(c.GroupBy)
	if groupBy == "" {
		groupBy = reviewer.DefaultGroupBy
	}
	return reviewer.GroupingOptions{
		GroupBy:                groupBy,
		ExcludeDirectories:     c.ExcludeDirs,
		IncludeOnlyDirectories: c.IncludeDirs,
		ShowDirectoryTree:      c.ShowDirectoryTree,
	}
}

// LoadAndValidate loads configuration from all sources, validates the
// merged result, and returns the populated Config together with the final
// logger. Recoverable problems are normalized with a warning; contradictory
// requests fail with reviewer.ErrConfigValidation.
func LoadAndValidate(cfgFile, appVersion string, flags *pflag.FlagSet) (Config, *slog.Logger, error) {
	var cfg Config
	v := viper.New()

	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
			v.AddConfigPath(filepath.Join(home, "."+DefaultConfigName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags")
		} else {
			used := cfgFile
			if used == "" {
				used = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			return cfg, tempLogger, fmt.Errorf("error reading config file '%s': %w", used, err)
		}
	} else {
		cfg.ConfigFilePath = v.ConfigFileUsed()
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		flagKeys := []string{
			"verbose", "no-tui", "show-progress", "show-eta",
			"show-throughput", "continue-on-error",
			"max-errors", "output-format", "json-report", "dry-run",
			"sequential", "parallel", "sequential-threshold",
			"group-by-directory", "group-by", "show-directory-tree",
			"exclude-dir", "include-dir", "file-ordering", "ignore",
		}
		for _, key := range flagKeys {
			flag := flags.Lookup(key)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(configKeyForFlag(key), flag); err != nil {
				return cfg, tempLogger, fmt.Errorf("error binding flag '--%s': %w", key, err)
			}
		}
	}

	cfg.AppVersion = appVersion
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, tempLogger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// The --no-tui flag is inverted relative to the tuiEnabled key.
	if flags != nil && flags.Changed("no-tui") {
		if noTUI, _ := flags.GetBool("no-tui"); noTUI {
			cfg.TUIEnabled = false
		}
	}

	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)

	if err := validateAndDerive(&cfg, logger); err != nil {
		return cfg, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", cfg.ConfigFilePath),
		slog.Bool("verbose", cfg.Verbose),
		slog.String("outputFormat", string(cfg.OutputFormat)),
	)
	return cfg, logger, nil
}

// configKeyForFlag maps a kebab-case flag name onto its camel-case viper key.
func configKeyForFlag(flag string) string {
	switch flag {
	case "no-tui":
		return "noTui"
	case "show-progress":
		return "showProgress"
	case "show-eta":
		return "showEta"
	case "show-throughput":
		return "showThroughput"
	case "continue-on-error":
		return "continueOnError"
	case "max-errors":
		return "maxErrors"
	case "output-format":
		return "outputFormat"
	case "json-report":
		return "jsonReport"
	case "dry-run":
		return "dryRun"
	case "sequential-threshold":
		return "sequentialThreshold"
	case "group-by-directory":
		return "groupByDirectory"
	case "group-by":
		return "groupBy"
	case "show-directory-tree":
		return "showDirectoryTree"
	case "exclude-dir":
		return "excludeDirs"
	case "include-dir":
		return "includeDirs"
	case "file-ordering":
		return "fileOrdering"
	default:
		return flag
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("verbose", false)
	v.SetDefault("tuiEnabled", true)
	v.SetDefault("showProgress", reviewer.DefaultShowProgress)
	v.SetDefault("showEta", true)
	v.SetDefault("showThroughput", false)
	v.SetDefault("continueOnError", true)
	v.SetDefault("maxErrors", reviewer.DefaultMaxErrors)
	v.SetDefault("outputFormat", string(OutputConsole))
	v.SetDefault("jsonReport", "")
	v.SetDefault("dryRun", false)
	v.SetDefault("sequential", false)
	v.SetDefault("parallel", false)
	v.SetDefault("sequentialThreshold", reviewer.DefaultSequentialThreshold)
	v.SetDefault("groupByDirectory", false)
	v.SetDefault("groupBy", "")
	v.SetDefault("showDirectoryTree", false)
	v.SetDefault("excludeDirs", []string{})
	v.SetDefault("includeDirs", []string{})
	v.SetDefault("fileOrdering", string(reviewer.DefaultFileOrdering))
	v.SetDefault("ignore", []string{})
}

func isValidEnumValue[T ~string](value T, allowed []T) bool {
	return slices.Contains(allowed, value)
}

// validateAndDerive checks the merged configuration. Unknown enum values
// and out-of-range numbers are normalized to their defaults with a warning;
// only contradictory requests are fatal.
func validateAndDerive(cfg *Config, logger *slog.Logger) error {
	if cfg.Sequential && cfg.Parallel {
		err := fmt.Errorf("%w: --sequential and --parallel are mutually exclusive", reviewer.ErrConfigValidation)
		logger.Error(err.Error())
		return err
	}

	allowedFormats := []OutputFormat{OutputConsole, OutputJSON, OutputBoth}
	if !isValidEnumValue(cfg.OutputFormat, allowedFormats) {
		logger.Warn("Unknown output format, falling back to console",
			slog.String("key", "outputFormat"), slog.String("value", string(cfg.OutputFormat)))
		cfg.OutputFormat = OutputConsole
	}

	if cfg.MaxErrors < 0 {
		logger.Warn("Negative max-errors treated as unbounded",
			slog.String("key", "maxErrors"), slog.Int("value", cfg.MaxErrors))
		cfg.MaxErrors = 0
	}
	if cfg.SequentialThreshold < 0 {
		logger.Warn("Negative sequential threshold treated as unset",
			slog.String("key", "sequentialThreshold"), slog.Int("value", cfg.SequentialThreshold))
		cfg.SequentialThreshold = 0
	}

	allowedOrderings := []reviewer.FileOrdering{
		reviewer.OrderAlphabetical, reviewer.OrderNatural, reviewer.OrderSize, reviewer.OrderModified,
	}
	if !isValidEnumValue(reviewer.FileOrdering(cfg.FileOrdering), allowedOrderings) {
		logger.Warn("Unknown file ordering, falling back to alphabetical",
			slog.String("key", "fileOrdering"), slog.String("value", cfg.FileOrdering))
		cfg.FileOrdering = string(reviewer.DefaultFileOrdering)
	}

	if cfg.GroupBy != "" {
		allowedGroupBy := []reviewer.GroupBy{reviewer.GroupByDirectory, reviewer.GroupByFileType}
		if !isValidEnumValue(reviewer.GroupBy(cfg.GroupBy), allowedGroupBy) {
			logger.Warn("Unknown group-by key, falling back to directory",
				slog.String("key", "groupBy"), slog.String("value", cfg.GroupBy))
			cfg.GroupBy = string(reviewer.GroupByDirectory)
		}
	}
	if cfg.GroupByDirectory && cfg.GroupBy == "" {
		cfg.GroupBy = string(reviewer.GroupByDirectory)
	}

	// A JSON artifact path implies the report is wanted even in console mode.
	if cfg.JSONReport != "" {
		abs, err := filepath.Abs(cfg.JSONReport)
		if err != nil {
			err = fmt.Errorf("%w: cannot resolve report path '%s': %w", reviewer.ErrConfigValidation, cfg.JSONReport, err)
			logger.Error(err.Error())
			return err
		}
		cfg.JSONReport = abs
	}

	// Verbose output and the TUI fight over the terminal.
	if cfg.Verbose && cfg.TUIEnabled {
		logger.Debug("Verbose mode enabled, TUI disabled")
		cfg.TUIEnabled = false
	}

	return nil
}
