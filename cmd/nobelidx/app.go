package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nobelidx/internal/config"
	dbRedis "github.com/kailas-cloud/nobelidx/internal/db/redis"
	"github.com/kailas-cloud/nobelidx/internal/domain"
	"github.com/kailas-cloud/nobelidx/internal/domain/layout"
	"github.com/kailas-cloud/nobelidx/internal/domain/vector"
	logpkg "github.com/kailas-cloud/nobelidx/internal/logger"
	"github.com/kailas-cloud/nobelidx/internal/metrics"
	"github.com/kailas-cloud/nobelidx/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/nobelidx/internal/transport/openai"
)

// app holds what every command needs: config, logger, store and embedder.
type app struct {
	env      string
	cfg      config.Config
	logger   *zap.Logger
	store    *dbRedis.Store
	ns       layout.Namespace
	embedder *domain.DimensionGuard
}

// newApp loads config, builds the logger, and connects to the store.
// mutate, if non-nil, applies flag overrides before validation.
func newApp(ctx context.Context, g *globalFlags, mutate func(*config.Config)) (*app, error) {
	env := g.env
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if mutate != nil {
		mutate(&cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
		DB:         cfg.Database.DB,
		ClientName: "nobelidx",
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		_ = logger.Sync()
		return nil, fmt.Errorf("store not ready: %w", err)
	}
	if err := store.RequireModules(ctx, dbRedis.ModuleSearch, dbRedis.ModuleJSON); err != nil {
		store.Close()
		_ = logger.Sync()
		return nil, fmt.Errorf("store capabilities: %w", err)
	}
	logger.Info("Connected to store", zap.Strings("addrs", cfg.Database.Addrs))

	metrics.Register()

	ns := layout.NewNamespace(cfg.Storage.KeyPrefix)
	return &app{
		env:      env,
		cfg:      cfg,
		logger:   logger,
		store:    store,
		ns:       ns,
		embedder: domain.NewDimensionGuard(buildEmbedder(cfg.Embedding, store, ns, logger), vector.Dim),
	}, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

// buildEmbedder selects the name embedder. Both produce vector.Dim values.
// Remote embeddings are cached in the store when cfg.Cache is set.
func buildEmbedder(
	cfg config.EmbeddingConfig, store *dbRedis.Store, ns layout.Namespace, logger *zap.Logger,
) domain.Embedder {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		logger.Info("Using OpenAI-compatible embedder",
			zap.String("model", cfg.Model), zap.Bool("cache", cfg.Cache))
		var emb domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: config.ProviderOpenAI,
			Timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
			Logger:   logger,
		})
		if cfg.Cache {
			emb = embcache.New(emb, store, ns.Root()+"emb:", cfg.Model, metrics.EmbeddingCacheTotal, logger)
		}
		return emb
	default:
		return vector.CharCodeEmbedder{}
	}
}
