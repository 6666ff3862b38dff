package handler

import "github.com/shopspring/decimal"

type ArticleResponse struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	URL           string   `json:"url"`
	Source        string   `json:"source"`
	PublishedTime string   `json:"published_time"`
	PublishedAgo  string   `json:"published_ago"`
	CreatedAt     string   `json:"created_at"`
	Tickers       []string `json:"tickers"`
}

type ArticleListResponse struct {
	Articles []ArticleResponse `json:"articles"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PerPage  int               `json:"per_page"`
	Query    string            `json:"query,omitempty"`
}

type SentimentResponse struct {
	Ticker    string          `json:"ticker"`
	Label     string          `json:"label"`
	Score     decimal.Decimal `json:"score"`
	Relevance decimal.Decimal `json:"relevance"`
}

type ArticleDetailResponse struct {
	ArticleResponse
	Sentiments []SentimentResponse `json:"sentiments"`
}
