// Seed issues a batch of access codes against the configured store and prints
// them, for preparing a session ahead of time without the admin page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"realscan/internal/config"
	"realscan/internal/domain/ports"
	"realscan/internal/domain/ports/repository"
	pg "realscan/internal/infra/db/postgres"
	"realscan/internal/infra/logging"
	red "realscan/internal/infra/redis"
	"realscan/internal/infra/store"
	"realscan/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	count := flag.Int("n", 1, "number of codes to issue")
	duration := flag.Float64("duration", 60, "validity duration")
	unit := flag.String("unit", "minutes", "duration unit: minutes or hours")
	note := flag.String("note", "", "note attached to every issued code")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var codeStore repository.CodeStore
	switch cfg.Store.Backend {
	case "file":
		fileStore, err := store.NewFileStore(cfg.Store.Path, logger)
		if err != nil {
			log.Fatalf("file store: %v", err)
		}
		codeStore = fileStore
	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg.Store.Postgres.URL, 4)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		if err := pg.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("postgres schema: %v", err)
		}
		codeStore = pg.NewCodeStore(pool)
	case "redis":
		client, err := red.NewClient(ctx, cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer client.Close()
		codeStore = red.NewCodeStore(client, cfg.Store.Redis.Key, logger)
	}

	codeUC := usecase.NewCodeUseCase(codeStore, ports.NewRealClock(), logger)
	for i := 0; i < *count; i++ {
		res, err := codeUC.Generate(ctx, *duration, *unit, *note)
		if err != nil {
			log.Fatalf("generate code: %v", err)
		}
		fmt.Printf("issued: %s (expires %s) link=%s\n", res.Code, res.ExpiresAt.Format(time.RFC3339), res.Link)
	}
}
