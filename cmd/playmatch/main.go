package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/playmatch/internal/config"
	dbRedis "github.com/kailas-cloud/playmatch/internal/db/redis"
	"github.com/kailas-cloud/playmatch/internal/domain"
	logpkg "github.com/kailas-cloud/playmatch/internal/logger"
	"github.com/kailas-cloud/playmatch/internal/metrics"
	budgetrepo "github.com/kailas-cloud/playmatch/internal/repository/budget"
	"github.com/kailas-cloud/playmatch/internal/repository/embcache"
	"github.com/kailas-cloud/playmatch/internal/repository/matchstore"
	"github.com/kailas-cloud/playmatch/internal/repository/sqlitestore"
	chiTransport "github.com/kailas-cloud/playmatch/internal/transport/chi"
	natsTransport "github.com/kailas-cloud/playmatch/internal/transport/nats"
	openaiEmb "github.com/kailas-cloud/playmatch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/playmatch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/playmatch/internal/usecase/health"
	"github.com/kailas-cloud/playmatch/internal/usecase/matchcache"
	"github.com/kailas-cloud/playmatch/internal/usecase/matching"
	"github.com/kailas-cloud/playmatch/internal/usecase/semantic"
	usageuc "github.com/kailas-cloud/playmatch/internal/usecase/usage"
	"github.com/kailas-cloud/playmatch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting playmatch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMatchMetrics()
	metrics.RegisterHTTPMetrics()

	ctx := context.Background()
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	// Redis backs the Redis match store, the embedding cache and the budget counters.
	// With the sqlite driver it is optional.
	var kv *dbRedis.Store
	if len(cfg.Database.Addrs) > 0 {
		kv, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer kv.Close()

		if err := kv.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis")
	}

	var (
		store  matchcache.Store
		pinger healthuc.DBPinger
	)
	switch cfg.Database.Driver {
	case config.DriverRedis:
		store = matchstore.New(kv)
		pinger = kv
	case config.DriverSQLite:
		openCtx, cancel := context.WithTimeout(ctx, readiness)
		sq, err := sqlitestore.Open(openCtx, cfg.Database.SQLitePath)
		cancel()
		if err != nil {
			logger.Fatal("Failed to open sqlite store", zap.Error(err))
		}
		defer func() { _ = sq.Close() }()
		store = sq
		pinger = sq
		logger.Info("Opened sqlite store", zap.String("path", cfg.Database.SQLitePath))
	}

	// Single BudgetTracker shared by the embedder chain and the usage service.
	budget := buildBudget(ctx, cfg.Embedding, kv, logger)

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var (
		budgetChecker embeddinguc.BudgetChecker
		budgetReader  usageuc.BudgetReader
	)
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	model := cfg.ModelConfig()
	var (
		embedder  domain.Embedder
		resilient *embeddinguc.ResilientEmbedder
	)
	if cfg.EmbeddingEnabled() {
		resilient = buildEmbedder(cfg.Embedding, model, kv, budgetChecker, logger)
		embedder = resilient
		if model.Instruction != "" {
			embedder = domain.NewInstructionEmbedder(resilient, model.Instruction)
		}
		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", model.Model),
			zap.Int("dimensions", model.Dimensions),
		)
	} else {
		logger.Warn("Embedding provider not configured; semantic matching uses exact and substring matches only")
	}

	// Progress sink: NATS when configured, log otherwise.
	var progress matching.ProgressSink = matching.NewLogProgressSink(logger)
	healthSvc := healthuc.New(pinger)
	if resilient != nil {
		healthSvc = healthSvc.WithEmbedding(resilient)
	}
	if cfg.Progress.NATSURL != "" {
		nc, err := natsTransport.Connect(natsTransport.Options{
			URL:           cfg.Progress.NATSURL,
			Name:          "playmatch",
			MaxReconnects: -1,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer nc.Close()

		pub := natsTransport.NewProgressPublisher(nc, cfg.Progress.SubjectPrefix, logger)
		progress = matching.MultiSink{progress, pub}
		healthSvc = healthSvc.WithCheck("nats", natsTransport.HealthCheck(nc))
		logger.Info("Publishing progress to NATS", zap.String("subject_prefix", cfg.Progress.SubjectPrefix))
	}

	// Use cases
	engine := matching.New(cfg.Matching, logger).WithProgressSink(progress)
	cache := matchcache.New(engine, store, matchcache.StaticModelVersion(model.Version()), logger).
		WithMemoryLimits(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	semanticSvc := semantic.New(embedder, logger).
		WithCacheLimits(cfg.Semantic.TTL, cfg.Semantic.MaxEntries).
		WithThreshold(cfg.Semantic.Threshold)
	usageSvc := usageuc.New(budgetReader)

	server := chiTransport.NewServer(cache, semanticSvc, usageSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildBudget returns nil when no limit is configured.
func buildBudget(
	ctx context.Context, cfg config.EmbeddingConfig, kv *dbRedis.Store, logger *zap.Logger,
) *embeddinguc.BudgetTracker {
	b := cfg.Budget
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		return nil
	}
	action := embeddinguc.BudgetActionWarn
	if b.Action == "reject" {
		action = embeddinguc.BudgetActionReject
	}
	budget := embeddinguc.NewBudgetTracker(cfg.Provider, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger)
	if kv != nil {
		// Loads the current counters from Redis.
		budget.WithStore(ctx, budgetrepo.New(kv))
	}
	return budget
}

// buildEmbedder assembles the decorator chain: OpenAI -> Redis cache -> budget/rate limit/breaker.
func buildEmbedder(
	cfg config.EmbeddingConfig,
	model domain.ModelConfig,
	kv *dbRedis.Store,
	budget embeddinguc.BudgetChecker,
	logger *zap.Logger,
) *embeddinguc.ResilientEmbedder {
	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      model.Model,
		Dimensions: model.Dimensions,
		Provider:   cfg.Provider,
		Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if kv != nil {
		embedder = embcache.New(base, kv, model.Version(), cfg.CacheTTL, metrics.EmbeddingCacheTotal, logger)
	}

	opts := embeddinguc.DefaultOptions()
	opts.RPS = cfg.RateLimit.RPS
	opts.Burst = cfg.RateLimit.Burst
	opts.FailureThreshold = cfg.Breaker.FailureThreshold
	opts.OpenTimeout = cfg.Breaker.OpenTimeout

	return embeddinguc.NewResilientEmbedder(embedder, cfg.Provider, model.Model, opts, budget, logger)
}
