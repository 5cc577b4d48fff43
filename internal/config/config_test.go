package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8000" {
		t.Fatalf("expected default port 8000, got %q", cfg.Port)
	}
	if cfg.CORSOrigin != "http://localhost:5173" {
		t.Fatalf("expected default CORS origin, got %q", cfg.CORSOrigin)
	}
	if cfg.AIAdapter != "openai" {
		t.Fatalf("expected default AI adapter openai, got %q", cfg.AIAdapter)
	}
	if cfg.SearchDeadlineSeconds != 300 {
		t.Fatalf("expected default search deadline 300, got %d", cfg.SearchDeadlineSeconds)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AI_ADAPTER", "ollama")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("expected overridden port 9090, got %q", cfg.Port)
	}
	if cfg.AIAdapter != "ollama" {
		t.Fatalf("expected overridden adapter ollama, got %q", cfg.AIAdapter)
	}
}

func TestLoadSettings_MissingFileIsNotAnError(t *testing.T) {
	settings, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error for a missing settings file, got %v", err)
	}
	if settings.Models.ChatModel != "" {
		t.Fatalf("expected zero-value settings, got %+v", settings)
	}
}

func TestLoadSettings_ParsesKnownAndRawFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "models:\n  chat_model: gpt-4o-mini\nextra:\n  nested: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write settings fixture: %v", err)
	}

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Models.ChatModel != "gpt-4o-mini" {
		t.Fatalf("expected chat_model gpt-4o-mini, got %q", settings.Models.ChatModel)
	}
	if settings.Raw["extra"] == nil {
		t.Fatalf("expected raw passthrough of unmodeled fields, got %+v", settings.Raw)
	}
}
