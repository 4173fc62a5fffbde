package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Checklist.Path == "" {
		cfg.Checklist.Path = "/usr/local/var/checklist-matcher/data/checklist.json"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/checklist-matcher/data/db/checklist.db"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/checklist-matcher/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.RequestTimeoutSeconds == 0 {
		cfg.Embedding.RequestTimeoutSeconds = 30
	}
	if cfg.Matcher.TopK == 0 {
		cfg.Matcher.TopK = 10
	}
	// MinScore defaults to 0, which keeps every ranked match.
}
