package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/slrhq/hireops/api"
	dbfs "github.com/slrhq/hireops/db"
	"github.com/slrhq/hireops/internal/config"
	"github.com/slrhq/hireops/internal/db"
	"github.com/slrhq/hireops/internal/jobs"
	"github.com/slrhq/hireops/internal/notify"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting hireops server", slog.String("version", version), slog.String("build_time", buildTime))

	ctx := context.Background()

	database, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, database, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	// Outbound signal queue: mutations enqueue, this pool delivers.
	queueRepo := jobs.NewRepository(database)
	var sender notify.Sender
	if cfg.NotifierURL != "" {
		sender = notify.NewHTTPSender(cfg.NotifierURL)
	} else {
		sender = notify.NewLogSender(logger)
	}
	pool := jobs.NewWorkerPool(queueRepo, notify.Handlers(sender), logger, cfg.WorkerCount)
	pool.Start(ctx)

	handler, err := api.SetupRoutes(ctx, cfg, version, buildTime, database, pool, logger)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	pool.Stop()

	if err := database.Close(); err != nil {
		logger.Error("close db", slog.Any("err", err))
	}

	logger.Info("server exited")
}
