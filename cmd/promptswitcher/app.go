package main

import (
	"fmt"

	"go.uber.org/zap"

	"promptswitcher/internal/cache"
	"promptswitcher/internal/config"
	"promptswitcher/internal/generator"
	"promptswitcher/internal/llm"
	"promptswitcher/pkg/logging/logging"
)

// app holds the wired components shared by serve and generate.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *cache.MemoryCache
	provider llm.Provider
	service  *generator.Service
}

func newApp(envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger(logging.Options{Env: cfg.Env, Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logging.SetDefault(logger)

	provider, err := llm.NewProvider(llm.Config{
		Backend:         cfg.LLMBackend,
		BaseURL:         cfg.OpenAIBaseURL,
		APIKey:          cfg.OpenAIAPIKey,
		UpstreamTimeout: cfg.LLMTimeout,
		MaxRetries:      cfg.LLMMaxRetries,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}

	store := cache.NewMemoryCache(cache.WithSweepInterval(cfg.CacheSweepInterval))

	service := generator.NewService(generator.Config{
		Model:           cfg.OpenAIModel,
		ReasoningEffort: cfg.OpenAIReasoningEffort,
		MaxOutputTokens: cfg.OpenAIMaxOutputTokens,
		CacheTTL:        cfg.CacheTTL,
		VersionID:       cfg.CacheVersion,
		DedupeInFlight:  cfg.DedupeInFlight,
		StrictResult:    cfg.StrictResult,
	}, cache.NewLoggingCache(store), provider)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		provider: provider,
		service:  service,
	}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
	if closer, ok := a.provider.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	_ = a.logger.Sync()
}
