package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/droneq/droneq/internal/queue"
)

// Settings holds all user-configurable application settings organized by category.
type Settings struct {
	General GeneralSettings `json:"general"`
	Queue   QueueSettings   `json:"queue"`
	Server  ServerSettings  `json:"server"`
}

// GeneralSettings contains application behavior settings.
type GeneralSettings struct {
	LogRetentionCount int    `json:"log_retention_count"`
	ServiceName       string `json:"service_name"`
}

// QueueSettings controls the queue view and its refresh cadence.
type QueueSettings struct {
	PageSize        int           `json:"page_size"`
	RefreshInterval time.Duration `json:"refresh_interval"`
	// PendingStatus is the status an item must have to be grabbed.
	PendingStatus queue.Status `json:"pending_status"`
}

// ServerSettings contains HTTP API parameters.
type ServerSettings struct {
	Port int `json:"port"` // 0 picks the first free port from DefaultPort
}

const (
	DefaultPort        = 1770
	DefaultServiceName = "droneq"
)

// UnmarshalJSON accepts refresh_interval either as nanoseconds or as a
// duration string such as "5s".
func (q *QueueSettings) UnmarshalJSON(data []byte) error {
	type Alias QueueSettings
	aux := struct {
		*Alias
		RefreshInterval json.RawMessage `json:"refresh_interval"`
	}{Alias: (*Alias)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.RefreshInterval) == 0 {
		return nil
	}

	var asString string
	if err := json.Unmarshal(aux.RefreshInterval, &asString); err == nil {
		d, err := time.ParseDuration(asString)
		if err != nil {
			return fmt.Errorf("invalid refresh_interval %q: %w", asString, err)
		}
		q.RefreshInterval = d
		return nil
	}

	var asInt int64
	if err := json.Unmarshal(aux.RefreshInterval, &asInt); err != nil {
		return fmt.Errorf("invalid refresh_interval: %w", err)
	}
	q.RefreshInterval = time.Duration(asInt)
	return nil
}

// DefaultSettings returns a new Settings instance with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		General: GeneralSettings{
			LogRetentionCount: 5,
			ServiceName:       DefaultServiceName,
		},
		Queue: QueueSettings{
			PageSize:        20,
			RefreshInterval: 5 * time.Second,
			PendingStatus:   queue.StatusDelay,
		},
		Server: ServerSettings{
			Port: 0,
		},
	}
}

// Validate clamps values that would break the queue view.
func (s *Settings) Validate() {
	def := DefaultSettings()
	if s.Queue.PageSize <= 0 {
		s.Queue.PageSize = def.Queue.PageSize
	}
	if s.Queue.RefreshInterval < time.Second {
		s.Queue.RefreshInterval = def.Queue.RefreshInterval
	}
	if !s.Queue.PendingStatus.Valid() {
		s.Queue.PendingStatus = def.Queue.PendingStatus
	}
	if s.General.ServiceName == "" {
		s.General.ServiceName = def.General.ServiceName
	}
	if s.General.LogRetentionCount < 0 {
		s.General.LogRetentionCount = def.General.LogRetentionCount
	}
}

// GetSettingsPath returns the path to the settings JSON file.
func GetSettingsPath() string {
	return filepath.Join(GetAppDir(), "settings.json")
}

// LoadSettings loads settings from disk. Returns defaults if file doesn't exist.
func LoadSettings() (*Settings, error) {
	data, err := os.ReadFile(GetSettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings() // Start with defaults to fill any missing fields
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	settings.Validate()
	return settings, nil
}

// LoadSettingsOrDefault is LoadSettings for callers that cannot act on an
// unreadable settings file.
func LoadSettingsOrDefault() *Settings {
	settings, err := LoadSettings()
	if err != nil {
		return DefaultSettings()
	}
	return settings
}

// SaveSettings saves settings to disk atomically.
func SaveSettings(s *Settings) error {
	path := GetSettingsPath()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}
