package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "droneq"

// GetAppDir returns the directory holding settings.json.
func GetAppDir() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(appData, appName)
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, _ := os.UserHomeDir()
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, appName)
	}
}

// GetStateDir returns the directory for the queue database. On Linux this
// follows XDG_STATE_HOME, elsewhere it is the app dir.
func GetStateDir() string {
	if runtime.GOOS != "linux" {
		return GetAppDir()
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, _ := os.UserHomeDir()
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, appName)
}

// GetLogsDir returns the directory for debug logs
func GetLogsDir() string {
	return filepath.Join(GetStateDir(), "logs")
}

// GetRuntimeDir returns the directory for the lock, port and token files.
func GetRuntimeDir() string {
	if runtime.GOOS == "linux" {
		if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
			return filepath.Join(dir, appName)
		}
	}
	return GetStateDir()
}

// GetDBPath returns the queue database path
func GetDBPath() string {
	return filepath.Join(GetStateDir(), appName+".db")
}

// EnsureDirs creates all required directories
func EnsureDirs() error {
	dirs := []string{GetAppDir(), GetStateDir(), GetLogsDir(), GetRuntimeDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
