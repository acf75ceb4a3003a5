package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server  ServerSettings  `json:"server"`
	Backend BackendSettings `json:"backend"`
	Catalog CatalogSettings `json:"catalog"`
	Storage StorageSettings `json:"storage"`
	Log     LogSettings     `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// BackendSettings points at the remote watchlist API.
type BackendSettings struct {
	BaseURL        string `json:"baseUrl"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// CatalogSettings configures the TMDB catalog client.
type CatalogSettings struct {
	TMDBAPIKey string `json:"tmdbApiKey"`
	Language   string `json:"language"`
}

// StorageSettings locates the directory holding the session token file.
type StorageSettings struct {
	Directory string `json:"directory"`
}

type LogSettings struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"` // megabytes
	MaxBackups int    `json:"maxBackups"`
	MaxAge     int    `json:"maxAge"` // days
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns the configuration used when no file exists yet.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host: "0.0.0.0",
			Port: 8084,
		},
		Backend: BackendSettings{
			BaseURL:        "http://localhost:5000/api",
			TimeoutSeconds: 30,
		},
		Catalog: CatalogSettings{
			Language: "en-US",
		},
		Storage: StorageSettings{
			Directory: "cache",
		},
		Log: LogSettings{
			Level:      "info",
			File:       "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		},
	}
}

// Manager loads and saves the settings file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures the parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads the settings file or creates it with defaults when missing.
// Environment variables (SHOWLOG_*) override what the file provides.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}

	settings := DefaultSettings()

	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		if err := m.Save(settings); err != nil {
			return Settings{}, err
		}
	} else {
		f, err := os.Open(m.path)
		if err != nil {
			return Settings{}, err
		}
		defer f.Close()

		if err := json.NewDecoder(f).Decode(&settings); err != nil {
			return Settings{}, err
		}
	}

	applyEnvOverrides(&settings)
	return settings, nil
}

// Save writes the settings atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, m.path)
}

func applyEnvOverrides(s *Settings) {
	if v := strings.TrimSpace(os.Getenv("SHOWLOG_BACKEND_URL")); v != "" {
		s.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOWLOG_TMDB_API_KEY")); v != "" {
		s.Catalog.TMDBAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOWLOG_STORAGE_DIR")); v != "" {
		s.Storage.Directory = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOWLOG_LOG_LEVEL")); v != "" {
		s.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOWLOG_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			s.Server.Port = port
		}
	}
}
