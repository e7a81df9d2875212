// Package config loads gitmerge.yaml and maps its merge section onto
// git.MergeOptions.
package config

import "github.com/schmitthub/gitmerge/internal/logger"

// Config is the root of gitmerge.yaml.
type Config struct {
	Merge   MergeConfig   `yaml:"merge" mapstructure:"merge"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// MergeConfig holds merge option overrides. Nil pointers and empty strings
// leave the native library's defaults untouched.
type MergeConfig struct {
	RenameThreshold *uint `yaml:"rename_threshold,omitempty" mapstructure:"rename_threshold"`
	TargetLimit     *uint `yaml:"target_limit,omitempty" mapstructure:"target_limit"`
	RecursionLimit  *uint `yaml:"recursion_limit,omitempty" mapstructure:"recursion_limit"`

	FindRenames    *bool `yaml:"find_renames,omitempty" mapstructure:"find_renames"`
	FailOnConflict *bool `yaml:"fail_on_conflict,omitempty" mapstructure:"fail_on_conflict"`
	SkipREUC       *bool `yaml:"skip_reuc,omitempty" mapstructure:"skip_reuc"`
	NoRecursive    *bool `yaml:"no_recursive,omitempty" mapstructure:"no_recursive"`

	// FileFavor is one of normal, ours, theirs or union.
	FileFavor string `yaml:"file_favor,omitempty" mapstructure:"file_favor"`
	// ConflictStyle is one of merge, diff3 or zdiff3.
	ConflictStyle string `yaml:"conflict_style,omitempty" mapstructure:"conflict_style"`
	// Whitespace is one of ignore-all, ignore-change or ignore-eol.
	Whitespace string `yaml:"whitespace,omitempty" mapstructure:"whitespace"`
	// DiffAlgorithm is one of myers, patience or minimal.
	DiffAlgorithm string `yaml:"diff_algorithm,omitempty" mapstructure:"diff_algorithm"`

	SimplifyAlnum   *bool `yaml:"simplify_alnum,omitempty" mapstructure:"simplify_alnum"`
	AcceptConflicts *bool `yaml:"accept_conflicts,omitempty" mapstructure:"accept_conflicts"`
}

// LoggingConfig configures file logging.
type LoggingConfig struct {
	FileEnabled *bool `yaml:"file_enabled,omitempty" mapstructure:"file_enabled"`
	MaxSizeMB   int   `yaml:"max_size_mb,omitempty" mapstructure:"max_size_mb"`
	MaxAgeDays  int   `yaml:"max_age_days,omitempty" mapstructure:"max_age_days"`
	MaxBackups  int   `yaml:"max_backups,omitempty" mapstructure:"max_backups"`
}

// Logger converts the section into the logger package's configuration.
func (c LoggingConfig) Logger() *logger.LoggingConfig {
	return &logger.LoggingConfig{
		FileEnabled: c.FileEnabled,
		MaxSizeMB:   c.MaxSizeMB,
		MaxAgeDays:  c.MaxAgeDays,
		MaxBackups:  c.MaxBackups,
	}
}
