package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
checklist:
  path: "/data/checklist.json"
storage:
  database_path: "/data/checklist.db"
embedding:
  provider: "mock"
  dimensions: 128
matcher:
  top_k: 5
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedding.Provider != "mock" || cfg.Embedding.Dimensions != 128 {
		t.Errorf("unexpected embedding config: %+v", cfg.Embedding)
	}
	if cfg.Matcher.TopK != 5 {
		t.Errorf("top_k = %d, want 5", cfg.Matcher.TopK)
	}
	if cfg.Embedding.BatchSize != 32 || cfg.Embedding.CacheSize != 10000 {
		t.Errorf("batch/cache defaults not applied: %+v", cfg.Embedding)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
checklist:
  path: "/data/checklist.json"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
checklist:
  path: "./checklist.json"
storage:
  database_path: "./data/db/checklist.db"
embedding:
  model_path: "./models/all-MiniLM-L6-v2.onnx"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "checklist.json"); cfg.Checklist.Path != want {
		t.Errorf("checklist path = %s, want %s", cfg.Checklist.Path, want)
	}
	if want := filepath.Join(dir, "data", "db", "checklist.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if want := filepath.Join(dir, "models", "all-MiniLM-L6-v2.onnx"); cfg.Embedding.ModelPath != want {
		t.Errorf("model_path = %s, want %s", cfg.Embedding.ModelPath, want)
	}
}

func TestLoad_rejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown_provider", "embedding:\n  provider: azure\n"},
		{"negative_dimensions", "embedding:\n  dimensions: -5\n"},
		{"min_score_out_of_range", "matcher:\n  min_score: 2.0\n"},
		{"negative_top_k", "matcher:\n  top_k: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Load accepted %q", tt.content)
			}
		})
	}
}

func TestLoad_missingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
	if !strings.Contains(err.Error(), "failed to read config") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Embedding.Provider != "onnx" {
		t.Errorf("default provider: got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.MaxTokens != 256 {
		t.Errorf("default max_tokens: got %d", cfg.Embedding.MaxTokens)
	}
	if cfg.Embedding.BatchSize != 32 {
		t.Errorf("default batch_size: got %d", cfg.Embedding.BatchSize)
	}
	if cfg.Embedding.CacheSize != 10000 {
		t.Errorf("default cache_size: got %d", cfg.Embedding.CacheSize)
	}
	if cfg.Embedding.RequestTimeoutSeconds != 30 {
		t.Errorf("default request_timeout_seconds: got %d", cfg.Embedding.RequestTimeoutSeconds)
	}
	if cfg.Matcher.TopK != 10 {
		t.Errorf("default top_k: got %d", cfg.Matcher.TopK)
	}
	if cfg.Matcher.MinScore != 0 {
		t.Errorf("default min_score: got %f", cfg.Matcher.MinScore)
	}
	if cfg.Checklist.Path == "" || cfg.Storage.DatabasePath == "" || cfg.Embedding.ModelPath == "" {
		t.Errorf("default paths not set: %+v", cfg)
	}
}

func TestLoadSecrets(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "")
	s, err := LoadSecrets()
	if err != nil {
		t.Fatal(err)
	}
	if s.OpenAIAPIKey != "sk-test" {
		t.Errorf("OpenAIAPIKey = %q", s.OpenAIAPIKey)
	}
	if got := s.KeyFor("openai"); got != "sk-test" {
		t.Errorf("KeyFor(openai) = %q", got)
	}
	if got := s.KeyFor("gemini"); got != "" {
		t.Errorf("KeyFor(gemini) = %q", got)
	}
	if got := s.KeyFor("onnx"); got != "" {
		t.Errorf("KeyFor(onnx) = %q, want empty", got)
	}
}
