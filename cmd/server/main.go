package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"newsapp-summarizer/internal/benchmark"
	"newsapp-summarizer/internal/cache"
	"newsapp-summarizer/internal/config"
	"newsapp-summarizer/internal/database"
	"newsapp-summarizer/internal/handlers"
	"newsapp-summarizer/internal/logging"
	"newsapp-summarizer/internal/middleware"
	"newsapp-summarizer/internal/repository"
	"newsapp-summarizer/internal/router"
	"newsapp-summarizer/internal/scheduler"
	"newsapp-summarizer/internal/summarizer"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		logging.GetLogger().Fatalf("✗ Invalid configuration: %v", err)
	}
	logging.InitLogger(logging.ParseLevel(cfg.LogLevel))
	log := logging.GetLogger()
	log.Info("🚀 Starting summarizer backend...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Load Models ────
	registry, err := summarizer.LoadRegistry(ctx, summarizer.LoadOptions{
		ModelsDir:    cfg.ModelsDir,
		BARTPath:     cfg.BARTModelPath,
		T5Path:       cfg.T5ModelPath,
		BARTRepo:     cfg.BARTModelRepo,
		T5Repo:       cfg.T5ModelRepo,
		AutoDownload: cfg.ModelAutoDownload,
		Sampling:     cfg.SummarizerSampling,
		Concurrency:  cfg.SummarizerConcurrency,
	})
	if err != nil {
		log.Fatalf("✗ Model loading failed: %v", err)
	}
	defer func() {
		if err := registry.Close(); err != nil {
			log.WithError(err).Error("Failed to destroy inference session")
		}
	}()
	log.Info("✓ BART and T5 models loaded")

	// ──── Step 3: Optional Redis Summary Cache ────
	var summaryCache *cache.SummaryCache
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClient.Close()
		summaryCache = cache.NewSummaryCache(redisClient, cfg.SummaryCacheTTL)
		log.WithField("ttl", cfg.SummaryCacheTTL).Info("✓ Redis summary cache enabled")
	} else {
		log.Warn("REDIS_URL is missing so summaries will not be cached")
	}

	// ──── Step 4: Optional PostgreSQL Category History ────
	var historyHandler *handlers.HistoryHandler
	if cfg.DatabaseURL != "" {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}

		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		log.Info("✓ PostgreSQL connected")

		userSummaryRepo := repository.NewUserSummaryRepo(pool)
		historyHandler = handlers.NewHistoryHandler(userSummaryRepo)

		if cfg.HistoryRetentionDays > 0 {
			historyScheduler := scheduler.New(ctx, userSummaryRepo, cfg.HistoryRetentionDays)
			if err := historyScheduler.Start(); err != nil {
				log.Fatalf("✗ Scheduler start failed: %v", err)
			}
			defer historyScheduler.Stop()
			log.WithField("retention_days", cfg.HistoryRetentionDays).Info("✓ History pruning scheduled")
		}
	} else {
		log.Warn("DATABASE_URL is missing so category history routes are disabled")
	}

	// ──── Step 5: Start HTTP Server ────
	compareLimiter := middleware.NewRateLimiter(cfg.CompareRateLimit, time.Minute)
	defer compareLimiter.Stop()

	r := router.New(router.Handlers{
		Summarize: handlers.NewSummarizeHandler(registry, summaryCache),
		Compare:   handlers.NewCompareHandler(benchmark.NewComparer(registry, cfg.CompareIterations)),
		Models:    handlers.NewModelsHandler(registry),
		History:   historyHandler,
	}, compareLimiter, router.Options{
		CORSOrigin: cfg.CORSOrigin,
		TrustProxy: cfg.TrustProxyHeaders,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.WithFields(logrus.Fields{
		"port":       cfg.Port,
		"iterations": cfg.CompareIterations,
	}).Infof("✓ Summarizer backend ready on http://localhost:%s", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
