package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mchow01/marketnews/db"
	"github.com/mchow01/marketnews/internal/config"
	"github.com/mchow01/marketnews/internal/logging"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	logger := logging.Init(cfg.Log.Format, cfg.Log.Level)

	if err := cfg.ValidateDatabase(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer conn.Close()

	if err := db.CreateTables(ctx, conn); err != nil {
		log.Fatalf("error creating tables: %v", err)
	}

	tables, err := db.VerifyTables(ctx, conn)
	if err != nil {
		log.Fatalf("error verifying tables: %v", err)
	}

	logger.Info("database setup complete", "tables", tables)
}
