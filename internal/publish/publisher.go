// Package publish drains the publish queue into WordPress.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mchow01/marketnews/db"
	"github.com/mchow01/marketnews/internal/model"
	"github.com/mchow01/marketnews/pkg/wordpress"
)

const defaultPopTimeout = 2 * time.Second

type Queue interface {
	Pop(ctx context.Context, queueKey string, timeout time.Duration) (int64, error)
	Push(ctx context.Context, queueKey string, articleID int64) error
}

type ArticleLoader interface {
	GetArticle(ctx context.Context, id int64) (*model.ArticleDetail, error)
}

type Poster interface {
	CreatePost(ctx context.Context, post wordpress.Post) (*wordpress.PostResult, error)
}

type Result struct {
	Published    int
	Failed       int
	Missing      int
	InvalidItems int
}

type Publisher struct {
	queue      Queue
	store      ArticleLoader
	poster     Poster
	logger     *slog.Logger
	popTimeout time.Duration
}

func NewPublisher(queue Queue, store ArticleLoader, poster Poster, logger *slog.Logger) *Publisher {
	return &Publisher{
		queue:      queue,
		store:      store,
		poster:     poster,
		logger:     logger,
		popTimeout: defaultPopTimeout,
	}
}

// Drain publishes queued articles until the queue is empty. Articles that
// fail to publish are moved to the dead letter list. The returned error is
// set only when the queue itself is unusable or ctx is done.
func (p *Publisher) Drain(ctx context.Context) (Result, error) {
	var res Result

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		id, err := p.queue.Pop(ctx, db.PublishQueueKey, p.popTimeout)
		if errors.Is(err, db.ErrQueueEmpty) {
			return res, nil
		}
		if errors.Is(err, db.ErrInvalidID) {
			p.logger.Warn("skipping queue item", "error", err)
			res.InvalidItems++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("pop publish queue: %w", err)
		}

		switch err := p.publish(ctx, id); {
		case err == nil:
			res.Published++
		case errors.Is(err, errNotFound):
			p.logger.Warn("article not found in DB", "article_id", id)
			res.Missing++
		default:
			p.logger.Error("error publishing article", "error", err, "article_id", id)
			res.Failed++
			if err := p.queue.Push(ctx, db.DeadLetterKey, id); err != nil {
				p.logger.Error("error pushing to dead letter queue", "error", err, "article_id", id)
			}
		}
	}
}

var errNotFound = errors.New("article not found")

func (p *Publisher) publish(ctx context.Context, id int64) error {
	article, err := p.store.GetArticle(ctx, id)
	if err != nil {
		return fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return errNotFound
	}

	result, err := p.poster.CreatePost(ctx, wordpress.NewPost(article))
	if err != nil {
		return err
	}

	p.logger.Info("created WordPress post", "article_id", id, "post_id", result.ID, "link", result.Link)
	return nil
}
