package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultTitle   = "Technology Market News"
	DefaultSummary = "No summary available."
	UnknownSource  = "Unknown"
	UnknownTicker  = "Unknown"
	NeutralLabel   = "Neutral"
)

type Article struct {
	ID            int64
	Title         string
	Summary       string
	URL           string
	Source        string
	PublishedTime string
	CreatedAt     time.Time
}

type TickerSentiment struct {
	ID        int64
	ArticleID int64
	Ticker    string
	Label     string
	Score     decimal.Decimal
	Relevance decimal.Decimal
}

// ArticleDetail is an article with its sentiments ordered by relevance, highest first.
type ArticleDetail struct {
	Article
	Sentiments []TickerSentiment
}

type ArticleListItem struct {
	Article
	Tickers []string
}

type RunSummary struct {
	Fetched           int
	Filtered          int
	Succeeded         int
	Failed            int
	SentimentsStored  int
	SentimentFailures int
	Enqueued          int
}
