package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-enhancer/internal/config"
	"github.com/jonathan/prompt-enhancer/internal/db"
	"github.com/jonathan/prompt-enhancer/internal/docsource"
	"github.com/jonathan/prompt-enhancer/internal/enhance"
	"github.com/jonathan/prompt-enhancer/internal/heuristics"
	"github.com/jonathan/prompt-enhancer/internal/llm"
)

// loadSettings merges the config file over the environment over the defaults, then validates.
func loadSettings(path string) (config.Config, error) {
	env, err := config.FromEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	cfg = cfg.MergeWithDefaults(env)
	cfg = cfg.MergeWithDefaults(config.Default())
	if verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// app is a wired service plus the resources it must release.
type app struct {
	service *enhance.Service
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// appOptions are per-command additions to the wiring.
type appOptions struct {
	// persistent selects the Postgres cache when a database URL is configured
	persistent bool
	onProgress enhance.ProgressCallback
}

// newApp wires the enhance service from cfg. Missing keys degrade features rather than fail:
// no Context7 key uses fallback docs, no Gemini key keeps the heuristic classifier.
func newApp(ctx context.Context, cfg config.Config, log *zap.Logger, opts appOptions) (*app, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &app{}

	tables := heuristics.Default()
	if cfg.TablesPath != "" {
		loaded, err := heuristics.Load(cfg.TablesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load tables: %w", err)
		}
		tables = loaded
	}

	var source docsource.Source
	if cfg.Context7APIKey != "" {
		source = docsource.NewContext7(docsource.Context7Options{
			BaseURL: cfg.DocsBaseURL,
			APIKey:  cfg.Context7APIKey,
			Logger:  log.Named("context7"),
		})
	} else {
		log.Debug("no documentation service key, using fallback docs")
	}

	var client llm.Client
	if cfg.ModelAssisted || cfg.AIAssembly {
		if cfg.GeminiAPIKey == "" {
			log.Warn("model features requested without GEMINI_API_KEY; using heuristics only")
		} else {
			llmCfg := llm.DefaultConfig()
			llmCfg.Timeout = cfg.ModelTimeoutDuration()
			c, err := llm.NewClient(ctx, llmCfg, cfg.GeminiAPIKey)
			if err != nil {
				return nil, err
			}
			client = c
			a.closers = append(a.closers, func() { _ = c.Close() })
		}
	}

	var cache enhance.Cache = enhance.NewMemoryCache()
	if opts.persistent && cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, database.Close)
		if err := database.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		cache = db.NewEnhancementCache(database, cfg.CacheTTLDuration(), tables.Version)
		log.Debug("using postgres result cache", zap.Duration("ttl", cfg.CacheTTLDuration()))
	}

	a.service = enhance.NewService(enhance.Options{
		Tables:       tables,
		Source:       source,
		LLM:          client,
		AIAssembly:   cfg.AIAssembly,
		ModelTimeout: cfg.ModelTimeoutDuration(),
		FetchTimeout: cfg.FetchTimeoutDuration(),
		Concurrency:  cfg.MaxConcurrentFetches,
		FetchTokens:  cfg.FetchTokens,
		Cache:        cache,
		Logger:       log,
		OnProgress:   opts.onProgress,
	})
	return a, nil
}
