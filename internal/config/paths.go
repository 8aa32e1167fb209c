package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the path to the ragctl data directory.
// - Windows: %APPDATA%\ragctl
// - Other OS: ~/.ragctl
func DataDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "ragctl")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".ragctl"
	}
	return filepath.Join(home, ".ragctl")
}

// DBPath returns the path to the SQLite secret database.
func DBPath() string {
	return filepath.Join(DataDir(), "ragctl.db")
}

// BackupDir returns the path where backups are written.
func BackupDir() string {
	return filepath.Join(DataDir(), "backups")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0700)
}
