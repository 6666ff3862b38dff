package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	PublishQueueKey = "marketnews:queue:publish"
	DeadLetterKey   = "marketnews:queue:failed"
)

// ErrQueueEmpty is returned by Pop when nothing arrived before the timeout.
var ErrQueueEmpty = errors.New("queue is empty")

var ErrInvalidID = errors.New("invalid article id in queue")

// Queue is a Redis list used to hand stored article ids to the publisher.
type Queue struct {
	client *redis.Client
}

func ConnectRedis(ctx context.Context, redisURL string) (*Queue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &Queue{client: client}, nil
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) EnqueueArticle(ctx context.Context, articleID int64) error {
	return q.Push(ctx, PublishQueueKey, articleID)
}

func (q *Queue) Push(ctx context.Context, queueKey string, articleID int64) error {
	return q.client.LPush(ctx, queueKey, strconv.FormatInt(articleID, 10)).Err()
}

// Pop blocks up to timeout for the oldest article id on the queue.
func (q *Queue) Pop(ctx context.Context, queueKey string, timeout time.Duration) (int64, error) {
	result, err := q.client.BRPop(ctx, timeout, queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrQueueEmpty
	}
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(result[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidID, result[1], err)
	}
	return id, nil
}

func (q *Queue) Len(ctx context.Context, queueKey string) (int64, error) {
	return q.client.LLen(ctx, queueKey).Result()
}
