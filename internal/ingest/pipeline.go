// Package ingest turns the news feed into stored articles: fetch, filter out
// banned sources, normalize, then persist each article and its ticker
// sentiments.
package ingest

import (
	"context"
	"log/slog"

	"github.com/mchow01/marketnews/internal/model"
	"github.com/mchow01/marketnews/pkg/news"
)

const logTitleLen = 50

type Fetcher interface {
	Fetch(ctx context.Context) ([]news.FeedItem, error)
}

type ArticleStore interface {
	SaveArticle(ctx context.Context, article *model.Article) error
	SaveSentiments(ctx context.Context, articleID int64, sentiments []model.TickerSentiment) (int, error)
}

// Enqueuer receives the id of every stored article. Optional.
type Enqueuer interface {
	EnqueueArticle(ctx context.Context, articleID int64) error
}

type Pipeline struct {
	fetcher       Fetcher
	store         ArticleStore
	queue         Enqueuer
	bannedSources []string
	logger        *slog.Logger
}

type Option func(*Pipeline)

func WithQueue(q Enqueuer) Option {
	return func(p *Pipeline) {
		p.queue = q
	}
}

func WithBannedSources(sources []string) Option {
	return func(p *Pipeline) {
		p.bannedSources = sources
	}
}

func NewPipeline(fetcher Fetcher, store ArticleStore, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs one ingestion pass. A failed fetch is logged and handled the
// same way as an empty feed. Failures of a single article never stop the run.
func (p *Pipeline) Run(ctx context.Context) model.RunSummary {
	var summary model.RunSummary

	p.logger.Info("starting market news ingestion")

	items, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.logger.Error("error fetching news feed", "error", err)
		items = nil
	}

	if len(items) == 0 {
		p.logger.Warn("no articles to process")
		return summary
	}

	summary.Fetched = len(items)
	p.logger.Info("fetched news articles", "count", len(items))

	kept, removed := FilterSources(items, p.bannedSources)
	summary.Filtered = len(removed)
	for _, item := range removed {
		p.logger.Info("filtered out article from banned source", "source", item.Source)
	}
	p.logger.Info("filtered articles from banned sources", "removed", len(removed), "kept", len(kept))

	for i, item := range kept {
		if ctx.Err() != nil {
			p.logger.Warn("run cancelled", "error", ctx.Err(), "remaining", len(kept)-i)
			break
		}
		p.processItem(ctx, i+1, len(kept), item, &summary)
	}

	p.logger.Info("completed processing",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"sentiments_stored", summary.SentimentsStored,
		"sentiment_failures", summary.SentimentFailures,
	)

	return summary
}

func (p *Pipeline) processItem(ctx context.Context, n, total int, item news.FeedItem, summary *model.RunSummary) {
	article := NormalizeArticle(item)
	sentiments, errs := NormalizeSentiments(item)

	log := p.logger.With("title", truncate(article.Title, logTitleLen))
	log.Info("processing article", "n", n, "total", total)

	for _, err := range errs {
		log.Warn("skipping malformed ticker sentiment", "error", err)
	}

	if err := p.store.SaveArticle(ctx, &article); err != nil {
		log.Error("error saving article", "error", err)
		summary.Failed++
		return
	}
	summary.Succeeded++
	log = log.With("article_id", article.ID)

	stored := 0
	if len(sentiments) > 0 {
		n, err := p.store.SaveSentiments(ctx, article.ID, sentiments)
		if err != nil {
			log.Error("error saving ticker sentiments", "error", err, "count", len(sentiments))
			summary.SentimentFailures++
		} else {
			stored = n
			summary.SentimentsStored += n
		}
	}

	if p.queue != nil {
		if err := p.queue.EnqueueArticle(ctx, article.ID); err != nil {
			log.Error("error queueing article for publishing", "error", err)
		} else {
			summary.Enqueued++
		}
	}

	log.Info("article stored", "sentiments", stored)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
