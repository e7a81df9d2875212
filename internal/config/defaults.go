package config

import "github.com/spf13/viper"

// Default logging values, matching the logger package fallbacks.
const (
	DefaultMaxSizeMB  = 50
	DefaultMaxAgeDays = 7
	DefaultMaxBackups = 3
)

// DefaultConfig returns the configuration used when no file exists.
// The merge section is empty so the native library's defaults apply.
func DefaultConfig() *Config {
	enabled := true
	return &Config{
		Logging: LoggingConfig{
			FileEnabled: &enabled,
			MaxSizeMB:   DefaultMaxSizeMB,
			MaxAgeDays:  DefaultMaxAgeDays,
			MaxBackups:  DefaultMaxBackups,
		},
	}
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.file_enabled", true)
	v.SetDefault("logging.max_size_mb", DefaultMaxSizeMB)
	v.SetDefault("logging.max_age_days", DefaultMaxAgeDays)
	v.SetDefault("logging.max_backups", DefaultMaxBackups)
}

// DefaultConfigYAML is the commented template written by WriteDefault.
const DefaultConfigYAML = `# gitmerge configuration
#
# Every merge key is optional. Unset keys keep the defaults of the native
# merge library (rename_threshold 50, target_limit 200, find_renames on).
merge:
  # rename_threshold: 50
  # target_limit: 200
  # recursion_limit: 0
  # find_renames: true
  # fail_on_conflict: false
  # skip_reuc: false
  # no_recursive: false
  # file_favor: normal        # normal | ours | theirs | union
  # conflict_style: merge     # merge | diff3 | zdiff3
  # whitespace: ignore-eol    # ignore-all | ignore-change | ignore-eol
  # diff_algorithm: myers     # myers | patience | minimal
  # simplify_alnum: false
  # accept_conflicts: false

logging:
  file_enabled: true
  max_size_mb: 50
  max_age_days: 7
  max_backups: 3
`
