package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_CreatesDefaultConfigWhenMissing(t *testing.T) {
	dir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatalf("failed to restore working directory: %v", err)
		}
	})

	manager, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cfg := manager.Get()
	if cfg.Server.Port != 3636 {
		t.Errorf("expected default port 3636, got %d", cfg.Server.Port)
	}
	if cfg.DataService.Mode != "sqlite" {
		t.Errorf("expected default mode sqlite, got %s", cfg.DataService.Mode)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("expected default config file written: %v", err)
	}
}

func TestLoad_AppliesDefaultsToSparseConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "libraryPath: "+filepath.Join(dir, "music")+"\ndatabase:\n  path: "+filepath.Join(dir, "resona.db")+"\n")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cfg := manager.Get()
	if cfg.Logger.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logger.Level)
	}
	if cfg.Audio.BufferMillis != 100 || cfg.Audio.Volume != 1.0 {
		t.Errorf("expected default audio settings, got %+v", cfg.Audio)
	}
	if cfg.DataService.UserID != "local" {
		t.Errorf("expected default user id local, got %s", cfg.DataService.UserID)
	}
	if cfg.MediaSession.Name != "resona" {
		t.Errorf("expected default media session name, got %s", cfg.MediaSession.Name)
	}
}

func TestLoad_RejectsInvalidDataServiceMode(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "libraryPath: "+filepath.Join(dir, "music")+"\ndatabase:\n  path: "+filepath.Join(dir, "resona.db")+"\ndataService:\n  mode: carrier-pigeon\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "libraryPath: "+filepath.Join(dir, "music")+"\ndatabase:\n  path: "+filepath.Join(dir, "resona.db")+"\ndataService:\n  mode: rest\n  url: https://data.example\n  api_key: from-file\n")
	t.Setenv("DATA_SERVICE_KEY", "from-env")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := manager.Get().DataService.APIKey; got != "from-env" {
		t.Errorf("expected env override, got %s", got)
	}
}

func TestGetJSON_RedactsSecrets(t *testing.T) {
	manager := NewManager(&Config{
		LibraryPath: "./music",
		Database:    Database{Path: "./resona.db"},
		DataService: DataService{Mode: "rest", APIKey: "super-secret"},
		Telegram:    Telegram{Token: "bot-token"},
	})

	out := manager.GetJSON()
	if strings.Contains(out, "super-secret") || strings.Contains(out, "bot-token") {
		t.Errorf("secrets leaked into JSON output: %s", out)
	}
	if !strings.Contains(out, "<redacted>") {
		t.Errorf("expected redaction marker, got %s", out)
	}
	if strings.Contains(out, `<`) {
		t.Errorf("redaction marker must not be HTML-escaped: %s", out)
	}
}

func TestManagerUpdate_ReplacesConfig(t *testing.T) {
	manager := NewManager(createDefaultConfig())

	updated := createDefaultConfig()
	updated.Theming.CacheSize = 64
	manager.Update(updated)

	if got := manager.Get().Theming.CacheSize; got != 64 {
		t.Errorf("expected cache size 64, got %d", got)
	}
}
