package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default configuration file name
	ConfigFileName = "gitmerge.yaml"
	// EnvPrefix prefixes every environment override, e.g. GITMERGE_MERGE_RENAME_THRESHOLD
	EnvPrefix = "GITMERGE"
)

// Loader handles loading and parsing of gitmerge configuration
type Loader struct {
	workDir string
	viper   *viper.Viper
}

// NewLoader creates a new configuration loader for the given working directory
func NewLoader(workDir string) *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v, reflect.TypeOf(Config{}))
	SetDefaults(v)
	return &Loader{
		workDir: workDir,
		viper:   v,
	}
}

// bindEnvKeys binds every leaf mapstructure path of typ to its GITMERGE_*
// variable so environment overrides work without a config file.
func bindEnvKeys(v *viper.Viper, typ reflect.Type) {
	replacer := strings.NewReplacer(".", "_")
	for _, key := range collectLeafPaths(typ, "") {
		envVar := EnvPrefix + "_" + strings.ToUpper(replacer.Replace(key))
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("config: BindEnv(%q, %q) failed: %v", key, envVar, err))
		}
	}
}

// collectLeafPaths returns the dotted mapstructure paths of all leaf fields
// of a struct type.
func collectLeafPaths(t reflect.Type, prefix string) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var paths []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		fullPath := tag
		if prefix != "" {
			fullPath = prefix + "." + tag
		}

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			paths = append(paths, collectLeafPaths(ft, fullPath)...)
		} else {
			paths = append(paths, fullPath)
		}
	}
	return paths
}

// Load reads and parses gitmerge.yaml. A missing file returns
// *ConfigNotFoundError.
func (l *Loader) Load() (*Config, error) {
	configPath := l.ConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, &ConfigNotFoundError{Path: configPath}
	}

	l.viper.SetConfigFile(configPath)
	l.viper.SetConfigType("yaml")
	if err := l.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return l.decode()
}

// LoadOrDefault is Load, falling back to defaults and environment overrides
// when no config file exists.
func (l *Loader) LoadOrDefault() (*Config, error) {
	cfg, err := l.Load()
	var notFound *ConfigNotFoundError
	if errors.As(err, &notFound) {
		return l.decode()
	}
	return cfg, err
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.viper.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Merge.Validate(); err != nil {
		return nil, fmt.Errorf("invalid merge section in %s: %w", l.ConfigPath(), err)
	}
	return &cfg, nil
}

// ConfigPath returns the full path to the config file
func (l *Loader) ConfigPath() string {
	return filepath.Join(l.workDir, ConfigFileName)
}

// Exists checks if the configuration file exists
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.ConfigPath())
	return err == nil
}

// ConfigNotFoundError is returned when the config file doesn't exist
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("configuration file not found: %s", e.Path)
}

// IsConfigNotFound returns true if the error is a ConfigNotFoundError
func IsConfigNotFound(err error) bool {
	var notFound *ConfigNotFoundError
	return errors.As(err, &notFound)
}
