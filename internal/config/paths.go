// Package config handles settings, keyword rules, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the per-user attend directory.
	GlobalDirName = ".attend"

	// ActivitiesDirName is the subdirectory holding one JSON file per
	// activity inside a data directory.
	ActivitiesDirName = "activities"

	// BackupDirName holds the previous data directory contents,
	// replaced wholesale on each save.
	BackupDirName = ".bak"
)

// File names inside the global directory.
const (
	SettingsFileName = "settings.yaml"
	KeywordsFileName = "keywords.yaml"
)

// GlobalDir returns the path to the per-user attend directory
// (~/.attend).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// SettingsFile returns the path to settings.yaml.
func SettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// DefaultDataDir returns the default activity storage directory
// (~/.attend/data).
func DefaultDataDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// EnsureGlobalDir creates the global directory if missing.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
