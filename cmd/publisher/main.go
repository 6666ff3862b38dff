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
	"github.com/mchow01/marketnews/internal/publish"
	"github.com/mchow01/marketnews/internal/repository"
	"github.com/mchow01/marketnews/pkg/wordpress"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	logger := logging.Init(cfg.Log.Format, cfg.Log.Level)

	if err := cfg.ValidatePublisher(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue, err := db.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer queue.Close()

	conn, err := db.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer conn.Close()

	articleRepo := repository.NewArticleRepository(conn, cfg.Database.Timeout)

	wpOpts := []wordpress.Option{wordpress.WithTimeout(cfg.WordPress.Timeout)}
	if cfg.WordPress.InsecureTLS {
		wpOpts = append(wpOpts, wordpress.WithInsecureTLS())
	}
	wp := wordpress.NewClient(cfg.WordPress.URL, cfg.WordPress.User, cfg.WordPress.Password, wpOpts...)

	publisher := publish.NewPublisher(queue, articleRepo, wp, logger)

	res, err := publisher.Drain(ctx)
	if err != nil {
		logger.Error("publishing stopped early", "error", err)
	}

	logger.Info("publish complete",
		"published", res.Published,
		"failed", res.Failed,
		"missing", res.Missing,
		"invalid", res.InvalidItems,
	)
}
