// Package config provides configuration loading and structs for the checklist matcher.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Checklist ChecklistConfig `yaml:"checklist"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Matcher   MatcherConfig   `yaml:"matcher"`
}

// ChecklistConfig locates the checklist document.
type ChecklistConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// StorageConfig holds the database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" validate:"required"`
}

// EmbeddingConfig holds embedding provider settings. ModelPath and MaxTokens
// apply to the onnx provider; Model and RequestTimeoutSeconds to the remote ones.
type EmbeddingConfig struct {
	Provider              string `yaml:"provider" validate:"oneof=onnx openai gemini mock"`
	ModelPath             string `yaml:"model_path"`
	Model                 string `yaml:"model"`
	Dimensions            int    `yaml:"dimensions" validate:"gt=0"`
	MaxTokens             int    `yaml:"max_tokens" validate:"gt=0"`
	BatchSize             int    `yaml:"batch_size" validate:"gt=0"`
	CacheSize             int    `yaml:"cache_size" validate:"gt=0"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" validate:"gt=0"`
}

// MatcherConfig holds match settings.
type MatcherConfig struct {
	TopK     int     `yaml:"top_k" validate:"gt=0"`
	MinScore float64 `yaml:"min_score" validate:"gte=-1,lte=1"`
}

// Load reads and parses the config file at path, applies defaults, expands
// paths, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Checklist.Path = expandPath(cfg.Checklist.Path, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Secrets holds provider credentials read from the environment rather than
// the config file.
type Secrets struct {
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
}

// LoadSecrets reads provider credentials from the process environment.
func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &s, nil
}

// KeyFor returns the credential for the given embedding provider, or "" when
// the provider needs none.
func (s *Secrets) KeyFor(provider string) string {
	switch provider {
	case "openai":
		return s.OpenAIAPIKey
	case "gemini":
		return s.GeminiAPIKey
	}
	return ""
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
