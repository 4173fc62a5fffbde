// Package main is the checklist matcher CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/checklist"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/cli"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/config"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/embedding"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/matcher"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/ranking"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/storage"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/watcher"
	"github.com/hans-cyfrin/solodit-checklist-matcher/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/checklist-matcher/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "checklist-matcher sync" from the project dir uses the project's config.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Provider credentials may live in a local .env during development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "sync":
		runSync()
	case "match":
		runMatch()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "demo":
		runDemo()
	case "version", "--version", "-v":
		fmt.Printf("checklist-matcher version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runSync() {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	filePath := fs.String("file", "", "checklist file path (overrides config)")
	force := fs.Bool("force", false, "re-embed every item even when its text is unchanged")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer closeComponents(components, logger)

	path := cfg.Checklist.Path
	if *filePath != "" {
		path = *filePath
	}

	start := time.Now()
	stats, err := components.Matcher.SyncFile(context.Background(), path, *force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Synced %s in %dms: %s\n", path, time.Since(start).Milliseconds(), stats)
}

// printMatchUsage prints match subcommand usage and scoring hints.
func printMatchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: checklist-matcher match [flags] <text>\n\n")
	fmt.Fprintf(fs.Output(), "Text is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Matches are ranked by cosine similarity against the embedded checklist.
  • Use --top-k to control how many items are returned.
  • Use --min-score to hide weak matches; scores range from -1 to 1.
  • Use --output json for parseable output consumable by other apps.

Examples:
  checklist-matcher match missing reentrancy guard on withdraw
  checklist-matcher match "missing reentrancy guard on withdraw"   # same as above
  checklist-matcher match --top-k 3 unchecked return value
  checklist-matcher match --output json oracle price manipulation
`)
}

// buildMatchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildMatchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// matchConfigPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func matchConfigPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return defaultPath
}

// matchDefaultsFromConfig loads config at path and returns the default top-k
// and min-score for match flags. On load failure, returns 10 and 0.
func matchDefaultsFromConfig(path string) (topK int, minScore float64) {
	topK, minScore = matcher.DefaultTopK, 0
	cfg, _, err := loadConfig(path)
	if err != nil || cfg == nil {
		return topK, minScore
	}
	return cfg.Matcher.TopK, cfg.Matcher.MinScore
}

// matchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "checklist-matcher match \"query\" -top-k 3"
// would otherwise leave -top-k unparsed.
func matchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runMatch() {
	matchArgs := matchArgsReorder(os.Args[2:])
	configPath := matchConfigPathFromArgs(matchArgs, defaultConfigPath)
	defaultTopK, defaultMinScore := matchDefaultsFromConfig(configPath)

	fs := flag.NewFlagSet("match", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	topK := fs.Int("top-k", defaultTopK, "number of checklist items to return")
	minScore := fs.Float64("min-score", defaultMinScore, "drop matches scoring below this cosine similarity")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one match per line), or json (parseable)")
	fs.Usage = func() { printMatchUsage(fs) }
	_ = fs.Parse(matchArgs)

	if fs.NArg() < 1 {
		printMatchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildMatchQuery(fs.Args())
	if queryStr == "" {
		printMatchUsage(fs)
		os.Exit(1)
	}

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Matcher.MinScore = *minScore
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer closeComponents(components, logger)

	ctx := context.Background()
	m := components.Matcher
	n, err := m.LoadFromStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load checklist from storage: %v\n", err)
		os.Exit(1)
	}
	if n == 0 {
		// First run: populate storage from the checklist document.
		logger.Info("storage empty, syncing checklist before matching",
			zap.String("path", cfg.Checklist.Path))
		if _, err := m.SyncFile(ctx, cfg.Checklist.Path, false); err != nil {
			fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
			os.Exit(1)
		}
	}

	start := time.Now()
	matches := m.Match(ctx, queryStr, *topK)
	response := &cli.MatchResponse{
		Query:      queryStr,
		QueryTime:  time.Since(start).Milliseconds(),
		TotalItems: m.Size(),
		Matches:    matches,
	}
	if err := cli.WriteMatches(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	force := fs.Bool("force", false, "re-embed every item on the initial sync")
	debug := fs.Bool("debug", false, "enable debug logging (file events, debounced reloads)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer closeComponents(components, logger)

	m := components.Matcher
	stats, err := m.SyncFile(context.Background(), cfg.Checklist.Path, *force)
	if err != nil {
		logger.Fatal("Initial sync failed", zap.Error(err))
	}
	logger.Info("initial sync complete", zap.String("stats", stats.String()))

	watchOpts := []watcher.WatcherOption{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.NewWatcher(cfg.Checklist.Path, func(path string) {
		stats, err := m.SyncFile(context.Background(), path, false)
		if err != nil {
			logger.Warn("checklist re-sync failed", zap.String("path", path), zap.Error(err))
			return
		}
		logger.Info("checklist re-synced", zap.String("path", path), zap.String("stats", stats.String()))
	}, watchOpts...)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer watchSvc.Stop()
	logger.Info("watching checklist",
		zap.String("path", watchSvc.Path()),
		zap.Int("items", m.Size()),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down...")
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	Provider            string  `json:"provider"`
	Model               string  `json:"model,omitempty"`
	ModelPath           string  `json:"model_path,omitempty"`
	EmbeddingDimensions int     `json:"embedding_dimensions,omitempty"`
	CacheCapacity       int     `json:"cache_capacity,omitempty"`
	TopK                int     `json:"top_k,omitempty"`
	MinScore            float64 `json:"min_score,omitempty"`
	ChecklistPath       string  `json:"checklist_path,omitempty"`
	DatabasePath        string  `json:"database_path,omitempty"`
}

// statusResponse is the shape of status output.
type statusResponse struct {
	Items             int64                 `json:"items"`
	DatabaseSizeBytes *int64                `json:"database_size_bytes,omitempty"`
	ProviderReady     *bool                 `json:"provider_ready,omitempty"`
	ProviderError     string                `json:"provider_error,omitempty"`
	Config            *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	probe := fs.Bool("probe", false, "initialize the embedding backend to verify it works")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer closeComponents(components, logger)

	count, err := components.Store.CountItems(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count items failed: %v\n", err)
		os.Exit(1)
	}

	cfgResp := &statusConfigResponse{
		Provider:            cfg.Embedding.Provider,
		EmbeddingDimensions: components.Embedder.Dimensions(),
		CacheCapacity:       components.Cache.Capacity(),
		TopK:                cfg.Matcher.TopK,
		MinScore:            cfg.Matcher.MinScore,
		ChecklistPath:       cfg.Checklist.Path,
		DatabasePath:        cfg.Storage.DatabasePath,
	}
	if cfg.Embedding.Provider == "onnx" {
		cfgResp.ModelPath = cfg.Embedding.ModelPath
	} else {
		cfgResp.Model = cfg.Embedding.Model
	}
	status := statusResponse{
		Items:  count,
		Config: cfgResp,
	}
	if size, sizeErr := storage.DatabaseSizeBytes(cfg.Storage.DatabasePath); sizeErr == nil {
		status.DatabaseSizeBytes = &size
	}
	if *probe {
		ready := true
		if probeErr := components.Vectorizer.Ready(); probeErr != nil {
			ready = false
			status.ProviderError = probeErr.Error()
		}
		status.ProviderReady = &ready
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("items:                %d   # checklist items in storage\n", status.Items)
		if status.DatabaseSizeBytes != nil {
			fmt.Printf("database_size_bytes:  %d   # sqlite database on disk\n", *status.DatabaseSizeBytes)
		}
		if status.ProviderReady != nil {
			fmt.Printf("provider_ready:       %t\n", *status.ProviderReady)
			if status.ProviderError != "" {
				fmt.Printf("provider_error:       %s\n", status.ProviderError)
			}
		}
		fmt.Println()
		fmt.Println("# configuration")
		fmt.Printf("provider:             %s\n", status.Config.Provider)
		if status.Config.Model != "" {
			fmt.Printf("model:                %s\n", status.Config.Model)
		}
		if status.Config.ModelPath != "" {
			fmt.Printf("model_path:           %s\n", status.Config.ModelPath)
		}
		fmt.Printf("embedding_dims:       %d\n", status.Config.EmbeddingDimensions)
		fmt.Printf("cache_capacity:       %d\n", status.Config.CacheCapacity)
		fmt.Printf("top_k:                %d\n", status.Config.TopK)
		fmt.Printf("min_score:            %.2f\n", status.Config.MinScore)
		fmt.Printf("checklist_path:       %s\n", status.Config.ChecklistPath)
		fmt.Printf("database_path:        %s\n", status.Config.DatabasePath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func runDemo() {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	provider := fs.String("provider", "mock", "embedding provider to demo: mock, onnx, openai, or gemini")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	// The demo needs no config file; defaults cover everything.
	cfg := &config.Config{}
	if loaded, _, err := loadConfig(*configPath); err == nil {
		cfg = loaded
	} else {
		config.ApplyDefaults(cfg)
	}

	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	popts := embedding.ProviderOptions{
		ModelPath:  cfg.Embedding.ModelPath,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		MaxTokens:  cfg.Embedding.MaxTokens,
		Timeout:    time.Duration(cfg.Embedding.RequestTimeoutSeconds) * time.Second,
	}
	if secrets, secErr := config.LoadSecrets(); secErr == nil {
		popts.APIKey = secrets.KeyFor(*provider)
	}

	ctx := context.Background()
	vec, err := embedding.NewVectorizer(ctx, embedding.Provider(*provider), popts)
	if err != nil {
		fmt.Printf("Provider %s unavailable (%v); using mock embeddings\n\n", *provider, err)
		vec = embedding.NewMockVectorizer(cfg.Embedding.Dimensions)
	}
	defer vec.Close()

	cache := embedding.NewCache(cfg.Embedding.CacheSize)
	embedder := embedding.NewEmbedder(vec, cache,
		embedding.WithBatchSize(cfg.Embedding.BatchSize),
		embedding.WithLogger(logger),
	)

	fmt.Printf("== Embedding demo (provider: %s, dimensions: %d) ==\n\n", *provider, embedder.Dimensions())

	single := "Reentrancy allows an attacker to re-enter withdraw before the balance update."
	start := time.Now()
	v := embedder.Embed(ctx, single)
	cold := time.Since(start)
	start = time.Now()
	_ = embedder.Embed(ctx, single)
	warm := time.Since(start)
	fmt.Printf("Embedded one text: %d dimensions, norm %.4f\n", len(v), embedding.Norm(v))
	fmt.Printf("  cold: %v, cached: %v\n\n", cold, warm)

	items := demoItems()
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.EmbeddingText()
	}
	start = time.Now()
	vectors := embedder.EmbedBatch(ctx, texts)
	fmt.Printf("Embedded %d checklist items in %v\n\n", len(vectors), time.Since(start))

	corpus := make([]ranking.Entry, len(items))
	for i := range items {
		corpus[i] = ranking.Entry{ID: items[i].ID, Vector: vectors[i]}
	}

	query := "Our withdraw function sends ETH to the caller before updating the balance mapping."
	fmt.Printf("Query: %s\n\n", query)
	qv := embedder.Embed(ctx, embedding.NormalizeFields(query))
	for _, match := range ranking.Rank(qv, corpus, 3) {
		item := items[match.Index]
		fmt.Printf("  %.4f  %-12s %s\n", match.Score, item.ID, item.Question)
	}

	stats := embedder.CacheStats()
	fmt.Printf("\nCache: %d/%d entries, %d hits, %d misses (hit ratio %.2f)\n",
		stats.Size, stats.Capacity, stats.Hits, stats.Misses, stats.HitRatio())
}

// demoItems is a small built-in checklist so the demo runs without any files.
func demoItems() []checklist.Item {
	return []checklist.Item{
		{
			ID:          "SOL-SEC-01",
			Category:    "Reentrancy",
			Question:    "Are state changes made before external calls?",
			Description: "External calls can re-enter the contract and observe stale balances.",
			Remediation: "Apply the checks-effects-interactions pattern or a reentrancy guard.",
		},
		{
			ID:          "SOL-SEC-02",
			Category:    "Access Control",
			Question:    "Are privileged functions protected by access control?",
			Description: "Functions that mint, pause, or upgrade must be restricted to authorized roles.",
			Remediation: "Gate privileged entry points with role checks.",
		},
		{
			ID:          "SOL-SEC-03",
			Category:    "Arithmetic",
			Question:    "Is arithmetic safe from overflow and underflow?",
			Description: "Unchecked blocks and casts can wrap silently.",
			Remediation: "Use checked arithmetic and validate casts.",
		},
		{
			ID:          "SOL-SEC-04",
			Category:    "Oracle",
			Question:    "Can the price oracle be manipulated within one transaction?",
			Description: "Spot prices from a single pool can be moved with a flash loan.",
			Remediation: "Use time-weighted or multi-source prices.",
		},
		{
			ID:          "SOL-SEC-05",
			Category:    "Denial of Service",
			Question:    "Can an unbounded loop block withdrawals?",
			Description: "Iterating over growable arrays can exceed the block gas limit.",
			Remediation: "Prefer pull payments over loops that push to every account.",
		},
	}
}

// Components holds initialized services.
type Components struct {
	Store      storage.Store
	Vectorizer *embedding.LazyVectorizer
	Cache      *embedding.Cache
	Embedder   *embedding.Embedder
	Matcher    *matcher.Matcher
}

// Close releases every component. Errors are collected rather than
// short-circuiting so one failing component cannot leak the others.
func (c *Components) Close() error {
	var errs error
	if c.Vectorizer != nil {
		errs = multierr.Append(errs, c.Vectorizer.Close())
	}
	if c.Store != nil {
		errs = multierr.Append(errs, c.Store.Close())
	}
	return errs
}

func closeComponents(c *Components, logger *zap.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("component shutdown", zap.Error(err))
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	secrets, err := config.LoadSecrets()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to read secrets: %w", err)
	}

	provider := embedding.Provider(cfg.Embedding.Provider)
	popts := embedding.ProviderOptions{
		ModelPath:  cfg.Embedding.ModelPath,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		MaxTokens:  cfg.Embedding.MaxTokens,
		APIKey:     secrets.KeyFor(cfg.Embedding.Provider),
		Timeout:    time.Duration(cfg.Embedding.RequestTimeoutSeconds) * time.Second,
	}
	vectorizer := embedding.NewLazyVectorizer(cfg.Embedding.Dimensions, func() (embedding.Vectorizer, error) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		v, vErr := embedding.NewVectorizer(ctx, provider, popts)
		if vErr != nil {
			if provider != embedding.ProviderONNX {
				return nil, vErr
			}
			// Local model missing or onnxruntime not installed; mock
			// embeddings keep the pipeline usable for development.
			logger.Warn("onnx vectorizer unavailable, falling back to mock embeddings", zap.Error(vErr))
			return embedding.NewVectorizer(ctx, embedding.ProviderMock, popts)
		}
		return v, nil
	})

	registry := prometheus.NewRegistry()
	cache := embedding.NewCache(cfg.Embedding.CacheSize,
		embedding.WithMetrics(registry, cfg.Embedding.Provider))
	embedder := embedding.NewEmbedder(vectorizer, cache,
		embedding.WithBatchSize(cfg.Embedding.BatchSize),
		embedding.WithLogger(logger),
	)
	m := matcher.New(embedder, store,
		matcher.WithLogger(logger),
		matcher.WithMinScore(cfg.Matcher.MinScore),
	)

	return &Components{
		Store:      store,
		Vectorizer: vectorizer,
		Cache:      cache,
		Embedder:   embedder,
		Matcher:    m,
	}, nil
}

func printUsage() {
	fmt.Println(`checklist-matcher - Semantic matching against the Solodit security checklist

Usage:
  checklist-matcher sync [flags]           Load the checklist file, embed changed items, persist them
  checklist-matcher match [flags] <text>   Rank checklist items against a finding description
  checklist-matcher watch [flags]          Sync, then re-sync whenever the checklist file changes
  checklist-matcher status [flags]         Show storage and embedding backend status
  checklist-matcher demo [flags]           Run the embedding pipeline on built-in sample data
  checklist-matcher version                Show version
  checklist-matcher help                   Show this help

Sync Flags:
  --config string    Config file path (default: /usr/local/etc/checklist-matcher/config.yaml)
  --file string      Checklist file path (overrides config)
  --force            Re-embed every item even when its text is unchanged
  --debug            Enable debug logging

Match Flags:
  --config string    Config file path (also supplies default top-k and min-score)
  --top-k int        Number of checklist items to return (default from config, or 10)
  --min-score float  Drop matches scoring below this cosine similarity (default from config, or 0)
  --output string    Output format: text, compact, or json (default: text)

Watch Flags:
  --config string    Config file path
  --force            Re-embed every item on the initial sync
  --debug            Enable debug logging (file events, debounced reloads)

Status Flags:
  --config string    Config file path
  --probe            Initialize the embedding backend to verify it works
  --output string    Output format: text or json (default: text)

Demo Flags:
  --provider string  Embedding provider to demo (default: mock)

Examples:
  checklist-matcher sync
  checklist-matcher sync --force
  checklist-matcher match missing reentrancy guard on withdraw
  checklist-matcher match --output json --top-k 3 "oracle price manipulation"
  checklist-matcher watch --debug
  checklist-matcher status --probe
  checklist-matcher demo`)
}
