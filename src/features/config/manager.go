package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a new ConfigManager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update updates the configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"library_path_changed", oldConfig.LibraryPath != config.LibraryPath,
			"data_service_mode_changed", oldConfig.DataService.Mode != config.DataService.Mode,
			"telegram_enabled_changed", oldConfig.Telegram.Enabled != config.Telegram.Enabled,
			"media_session_enabled_changed", oldConfig.MediaSession.Enabled != config.MediaSession.Enabled,
		)
	}
}

// Save writes the current configuration to the specified file path.
func (m *Manager) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, err := os.Create(path)
	if err != nil {
		slog.Error("failed to create config file", "path", path, "error", err)
		return err
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(m.config); err != nil {
		slog.Error("failed to encode config", "path", path, "error", err)
		return err
	}

	slog.Info("Configuration saved successfully", "path", path)
	return nil
}

// EnsureDirectories creates the library, database and session state
// directories if they don't exist.
func (m *Manager) EnsureDirectories() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if err := os.MkdirAll(cfg.LibraryPath, 0755); err != nil {
		return fmt.Errorf("failed to create library directory %s: %w", cfg.LibraryPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory for %s: %w", cfg.Database.Path, err)
	}
	if cfg.Session.StatePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Session.StatePath), 0755); err != nil {
			return fmt.Errorf("failed to create session state directory for %s: %w", cfg.Session.StatePath, err)
		}
	}

	slog.Info("Required directories created/verified", "library", cfg.LibraryPath, "database", cfg.Database.Path)
	return nil
}

// redactedCfg gets a redacted copy of the Config. Callers must hold mu.
func (m *Manager) redactedCfg() Config {
	var cfgCpy = *m.config
	cfgCpy.Telegram.Token = "<redacted>"
	cfgCpy.DataService.APIKey = "<redacted>"
	return cfgCpy
}

// GetJSON returns the current configuration as a JSON string. HTML escaping
// is disabled so the <redacted> secret markers survive verbatim.
func (m *Manager) GetJSON() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(m.redactedCfg()); err != nil {
		slog.Error("failed to marshal config to JSON", "error", err)
		return err.Error()
	}
	return strings.TrimRight(buf.String(), "\n")
}
