package config

import (
	"os"
	"path/filepath"
)

const (
	// GitmergeHomeEnv is the environment variable for the gitmerge home directory
	GitmergeHomeEnv = "GITMERGE_HOME"
	// DefaultGitmergeDir is the default directory name under user home
	DefaultGitmergeDir = ".gitmerge"
	// LogsSubdir is the subdirectory for rotated log files
	LogsSubdir = "logs"
)

// GitmergeHome returns the gitmerge home directory.
// It checks GITMERGE_HOME first, then defaults to ~/.gitmerge
func GitmergeHome() (string, error) {
	if home := os.Getenv(GitmergeHomeEnv); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultGitmergeDir), nil
}

// LogsDir returns the log directory (~/.gitmerge/logs)
func LogsDir() (string, error) {
	home, err := GitmergeHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, LogsSubdir), nil
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
