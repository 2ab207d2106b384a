// Package storage provides persistent storage for the learner's checkpoint
// bookkeeping and the on-disk locations of the evaluation weight files.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "shogicore"

// GetDataDir returns the platform-specific data directory for the engine.
// - macOS: ~/Library/Application Support/shogicore/
// - Linux: ~/.local/share/shogicore/
// - Windows: %APPDATA%/shogicore/
func GetDataDir() (string, error) {
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

// GetWeightsDir returns the directory holding pp.bin and its pp_NNN.bin
// training snapshots.
func GetWeightsDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	weightsDir := filepath.Join(dataDir, "weights")
	if err := os.MkdirAll(weightsDir, 0755); err != nil {
		return "", err
	}
	return weightsDir, nil
}

// GetDatabaseDir returns the directory for storing the BadgerDB checkpoint
// database.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	return dbDir, nil
}
