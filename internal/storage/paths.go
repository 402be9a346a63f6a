package storage

import (
	"os"
	"path/filepath"
)

// PathManager handles path resolution for local Lingomate storage.
type PathManager struct {
	homeDir      string
	lingomateDir string
}

// NewPathManager creates a new path manager with platform-aware defaults
func NewPathManager() *PathManager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir is not available
		homeDir = "."
	}

	return &PathManager{
		homeDir:      homeDir,
		lingomateDir: filepath.Join(homeDir, ".lingomate"),
	}
}

// NewPathManagerAt creates a path manager rooted at an explicit directory.
func NewPathManagerAt(dir string) *PathManager {
	return &PathManager{homeDir: filepath.Dir(dir), lingomateDir: dir}
}

// GetLingomateDir returns the main Lingomate data directory, creating it if
// it doesn't exist.
func (pm *PathManager) GetLingomateDir() (string, error) {
	if err := os.MkdirAll(pm.lingomateDir, 0755); err != nil {
		return "", err
	}
	return pm.lingomateDir, nil
}

// GetTranscriptDatabasePath returns the path for the local transcript archive.
func (pm *PathManager) GetTranscriptDatabasePath() (string, error) {
	dir, err := pm.GetLingomateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "transcripts.db"), nil
}

// GetReviewHistoryPath returns the path for the persisted review history.
func (pm *PathManager) GetReviewHistoryPath() (string, error) {
	dir, err := pm.GetLingomateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "review_history_v1.json"), nil
}

// GetTokenPath returns the path for the stored OAuth tokens.
func (pm *PathManager) GetTokenPath() (string, error) {
	dir, err := pm.GetLingomateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.json"), nil
}

// GetLocalStatsPath returns the path for locally tracked study statistics.
func (pm *PathManager) GetLocalStatsPath() (string, error) {
	dir, err := pm.GetLingomateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "local_stats.json"), nil
}

// GetLogsDir returns the directory for log files
func (pm *PathManager) GetLogsDir() (string, error) {
	dir, err := pm.GetLingomateDir()
	if err != nil {
		return "", err
	}
	logsDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", err
	}
	return logsDir, nil
}

// GetHomeDir returns the user's home directory
func (pm *PathManager) GetHomeDir() string {
	return pm.homeDir
}

// DefaultPathManager is a global instance for convenience
var DefaultPathManager = NewPathManager()
