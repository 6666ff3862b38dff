package news

import "context"

// FeedClient is a news source the fetcher can run against.
type FeedClient interface {
	Fetch(ctx context.Context) ([]FeedItem, error)
	Name() string
}
