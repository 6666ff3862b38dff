package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mchow01/marketnews/db"
	"github.com/mchow01/marketnews/internal/config"
	"github.com/mchow01/marketnews/internal/ingest"
	"github.com/mchow01/marketnews/internal/logging"
	"github.com/mchow01/marketnews/internal/metrics"
	"github.com/mchow01/marketnews/internal/repository"
	"github.com/mchow01/marketnews/pkg/news"
)

const metricsJob = "marketnews_fetcher"

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	logger := logging.Init(cfg.Log.Format, cfg.Log.Level)

	if err := cfg.ValidateFetcher(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer conn.Close()

	repo := repository.NewArticleRepository(conn, cfg.Database.Timeout)

	var client news.FeedClient = news.NewAlphaVantageClient(cfg.AlphaVantage.APIKey,
		news.WithBaseURL(cfg.AlphaVantage.BaseURL),
		news.WithTopic(cfg.AlphaVantage.Topic),
		news.WithTimeout(cfg.AlphaVantage.RequestTimeout),
		news.WithLogger(logger),
	)

	opts := []ingest.Option{ingest.WithBannedSources(cfg.AlphaVantage.BannedSources)}

	if cfg.RedisURL != "" {
		queue, err := db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("error connecting to Redis: %v", err)
		}
		defer queue.Close()
		opts = append(opts, ingest.WithQueue(queue))
	}

	pipeline := ingest.NewPipeline(client, repo, logger, opts...)

	start := time.Now()
	summary := pipeline.Run(ctx)
	elapsed := time.Since(start)

	logger.Info("run complete",
		"source", client.Name(),
		"fetched", summary.Fetched,
		"filtered", summary.Filtered,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"sentiments", summary.SentimentsStored,
		"duration", elapsed.String(),
	)

	if cfg.Pushgateway != "" {
		m := metrics.NewRunMetrics()
		m.Record(summary, elapsed, time.Now())
		if err := m.Push(context.Background(), cfg.Pushgateway, metricsJob); err != nil {
			logger.Error("error pushing metrics", "error", err, "url", cfg.Pushgateway)
		}
	}
}
