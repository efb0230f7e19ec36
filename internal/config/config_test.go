package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OllamaHost != "http://localhost:11434" {
		t.Errorf("unexpected default host: %q", cfg.OllamaHost)
	}
	if cfg.SummaryMaxWords != 50 {
		t.Errorf("unexpected default word budget: %d", cfg.SummaryMaxWords)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `{"ollama_model": "llama3:8b", "ollama_host": "http://box:11434", "summary_max_words": 30, "temperature": 0.7}`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OllamaModel != "llama3:8b" {
		t.Errorf("model = %q", cfg.OllamaModel)
	}
	if cfg.OllamaHost != "http://box:11434" {
		t.Errorf("host = %q", cfg.OllamaHost)
	}
	if cfg.SummaryMaxWords != 30 {
		t.Errorf("max words = %d", cfg.SummaryMaxWords)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("temperature = %v", cfg.Temperature)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{"ollama_model": "mistral"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OllamaModel != "mistral" {
		t.Errorf("model = %q", cfg.OllamaModel)
	}
	if cfg.SummaryMaxWords != 50 {
		t.Errorf("expected default word budget to survive, got %d", cfg.SummaryMaxWords)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DMS_OLLAMA_MODEL", "qwen2:7b")
	t.Setenv("DMS_SUMMARY_MAX_WORDS", "25")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OllamaModel != "qwen2:7b" {
		t.Errorf("model = %q", cfg.OllamaModel)
	}
	if cfg.SummaryMaxWords != 25 {
		t.Errorf("max words = %d", cfg.SummaryMaxWords)
	}
}

func TestValidate_RejectsEmptyHost(t *testing.T) {
	cfg, _ := Load(t.TempDir())
	cfg.OllamaHost = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty host")
	}
}
