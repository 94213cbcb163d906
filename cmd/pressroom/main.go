// Package main is the entry point for the pressroom API server.
// It loads configuration, connects to services, migrates and seeds the
// database, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pressroom/internal/cache"
	"pressroom/internal/config"
	"pressroom/internal/database"
	"pressroom/internal/handlers"
	"pressroom/internal/middleware"
	"pressroom/internal/router"
	"pressroom/internal/seed"
	"pressroom/internal/storage"
	"pressroom/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStart()

	db, err := database.Connect(startCtx, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	categoryStore := store.NewCategoryStore(db)
	articleStore := store.NewArticleStore(db)

	// Idempotent on every start; edited rows are left alone.
	if err := seed.Run(startCtx, categoryStore, articleStore); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Valkey is optional; without it article reads go straight to the database.
	var articleCache *cache.ArticleCache
	if cfg.ValkeyHost != "" {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		articleCache = cache.NewArticleCache(valkeyClient, cfg.ArticleCacheTTL)
	} else {
		slog.Warn("valkey not configured, article cache disabled")
	}

	// S3 is optional; without it presign answers 503 and blobs are not cleaned up.
	var objects handlers.ObjectStore
	storageClient, err := storage.New(storage.Options{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		objects = storageClient
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, uploads disabled")
	}

	api := handlers.New(handlers.Options{
		Articles:         articleStore,
		Categories:       categoryStore,
		Objects:          objects,
		Cache:            articleCache,
		DB:               db,
		UploadURLTTL:     cfg.UploadURLTTL,
		DefaultPageLimit: cfg.DefaultPageLimit,
		MaxPageLimit:     cfg.MaxPageLimit,
	})

	var limiter *middleware.RateLimiter
	if cfg.WriteRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.WriteRateLimit, time.Minute)
		defer limiter.Stop()
	}

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, every write request will be rejected")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(api, cfg.JWTSecret, limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
