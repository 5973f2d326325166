package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "lessonboard"

// DataDir returns the platform-specific data directory for the application,
// creating it if needed.
// - macOS: ~/Library/Application Support/lessonboard/
// - Linux: $XDG_DATA_HOME/lessonboard/ or ~/.local/share/lessonboard/
// - Windows: %APPDATA%/lessonboard/
func DataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(baseDir, appName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// dataSubdir returns a directory or file path below DataDir.
func dataSubdir(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}

// DatabaseDir returns the configured archive directory, or the default one
// under DataDir.
func (c Config) DatabaseDir() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	dir, err := dataSubdir("db")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// HistoryPath returns the readline history file, defaulting to one under
// DataDir.
func (c Config) HistoryPath() (string, error) {
	if c.HistoryFile != "" {
		return c.HistoryFile, nil
	}
	return dataSubdir("history")
}
