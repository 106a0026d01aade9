// Command cookbook-api runs the reference recipe API the cookbook client
// talks to.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cookbook/internal/bootstrap"
	"cookbook/internal/config"
	"cookbook/internal/database"
	"cookbook/internal/observability"
	"cookbook/internal/server"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "Run database migrations and exit")
	seedDemo := flag.Bool("seed", false, "Fill an empty development database with demo data")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	format := cfg.LogFormat
	if cfg.IsProduction() {
		format = "json"
	}
	observability.SetLogger(observability.NewLogger(observability.LogConfig{Level: cfg.LogLevel, Format: format}))

	if *migrateOnly {
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		observability.Logger.Info("migrations applied")
		return
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "cookbook-api",
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SeedDemo: *seedDemo})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	srv := server.NewServerWithDeps(cfg, db, rdb)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			observability.Logger.Error("server stopped", slog.String("error", err.Error()))
		}
	case <-ctx.Done():
		observability.Logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := errors.Join(srv.Shutdown(shutdownCtx), shutdownTracing(shutdownCtx)); err != nil {
		observability.Logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
