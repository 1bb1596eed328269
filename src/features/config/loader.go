package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file from the given path and returns a new ConfigManager.
// If the file doesn't exist, creates a default configuration.
func Load(path string) (*Manager, error) {
	// Check if config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		defaultCfg := createDefaultConfig()

		// Save default config to file
		if err := saveDefaultConfig(path, defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		slog.Info("Default configuration created successfully", "path", path)
		manager := NewManager(defaultCfg)
		if err := manager.EnsureDirectories(); err != nil {
			return nil, err
		}
		return manager, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Override with environment variables if set
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if key := os.Getenv("DATA_SERVICE_KEY"); key != "" {
		cfg.DataService.APIKey = key
	}

	manager := NewManager(&cfg)
	if err := manager.EnsureDirectories(); err != nil {
		return nil, err
	}

	return manager, nil
}

// applyDefaults fills in values a hand-edited config commonly omits.
func applyDefaults(cfg *Config) {
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "text"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3636
	}
	if cfg.DataService.Mode == "" {
		cfg.DataService.Mode = "sqlite"
	}
	if cfg.DataService.UserID == "" {
		cfg.DataService.UserID = "local"
	}
	if cfg.Session.StatePath == "" {
		cfg.Session.StatePath = "./session.json"
	}
	if cfg.Audio.BufferMillis == 0 {
		cfg.Audio.BufferMillis = 100
	}
	if cfg.Audio.Volume == 0 {
		cfg.Audio.Volume = 1.0
	}
	if cfg.Audio.ProbeIntervalMS == 0 {
		cfg.Audio.ProbeIntervalMS = 2000
	}
	if cfg.MediaSession.Name == "" {
		cfg.MediaSession.Name = "resona"
	}
	if cfg.Theming.CacheSize == 0 {
		cfg.Theming.CacheSize = 128
	}
}

// saveDefaultConfig saves the default configuration to the specified file path
func saveDefaultConfig(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	slog.Info("Default configuration saved", "path", path)
	return nil
}
