package config

import (
	"os"
	"path/filepath"
)

// GetHomePath returns the application home directory (~/.asr-nano)
func GetHomePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".asr-nano"
	}
	return filepath.Join(homeDir, ".asr-nano")
}

// GetDBPath returns the default path of the session database
func GetDBPath() string {
	return filepath.Join(GetHomePath(), "sessions.db")
}

// GetCaptureLockPath returns the path of the microphone lock file
func GetCaptureLockPath() string {
	return filepath.Join(GetHomePath(), "capture.lock")
}

// ExpandPath expands ~ to the home directory in paths
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path // Return as-is if we can't get home dir
		}
		if len(path) == 1 {
			return homeDir
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
