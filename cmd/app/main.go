// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realscan/internal/config"
	"realscan/internal/domain/ports"
	"realscan/internal/domain/ports/repository"
	pg "realscan/internal/infra/db/postgres"
	"realscan/internal/infra/logging"
	"realscan/internal/infra/metrics"
	red "realscan/internal/infra/redis"
	"realscan/internal/infra/sched"
	"realscan/internal/infra/store"
	"realscan/internal/infra/web"
	"realscan/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Code store ----
	var codeStore repository.CodeStore
	switch cfg.Store.Backend {
	case "file":
		fileStore, err := store.NewFileStore(cfg.Store.Path, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("file store")
		}
		codeStore = fileStore
	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg.Store.Postgres.URL, 10)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		if err := pg.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("postgres schema")
		}
		codeStore = pg.NewCodeStore(pool)
	case "redis":
		client, err := red.NewClient(ctx, cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer client.Close()
		codeStore = red.NewCodeStore(client, cfg.Store.Redis.Key, logger)
	}
	logger.Info().Str("backend", cfg.Store.Backend).Msg("code store ready")

	// ---- Use case + HTTP ----
	clock := ports.NewRealClock()
	codeUC := usecase.NewCodeUseCase(codeStore, clock, logger)
	srv := web.NewServer(codeUC, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: srv.Router()}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		logger.Info().Msgf("admin panel: http://127.0.0.1:%d/admin.html", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Expiry sweep ----
	worker := sched.NewExpiryWorker(cfg.Sweep.Interval, codeUC, clock, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
