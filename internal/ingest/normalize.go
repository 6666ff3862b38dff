package ingest

import (
	"fmt"

	"github.com/mchow01/marketnews/internal/model"
	"github.com/mchow01/marketnews/pkg/news"
	"github.com/shopspring/decimal"
)

func NormalizeArticle(item news.FeedItem) model.Article {
	return model.Article{
		Title:         withDefault(item.Title, model.DefaultTitle),
		Summary:       withDefault(item.Summary, model.DefaultSummary),
		URL:           item.URL,
		Source:        withDefault(item.Source, model.UnknownSource),
		PublishedTime: item.TimePublished,
	}
}

// NormalizeSentiments converts the ticker_sentiment list of an item. An entry
// with a malformed score is skipped and reported in the returned errors; the
// remaining entries are still converted.
func NormalizeSentiments(item news.FeedItem) ([]model.TickerSentiment, []error) {
	sentiments := make([]model.TickerSentiment, 0, len(item.TickerSentiment))
	var errs []error

	for i, ts := range item.TickerSentiment {
		ticker := withDefault(ts.Ticker, model.UnknownTicker)

		score, err := parseScore(ts.SentimentScore)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): ticker_sentiment_score: %w", i, ticker, err))
			continue
		}

		relevance, err := parseScore(ts.RelevanceScore)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): relevance_score: %w", i, ticker, err))
			continue
		}

		sentiments = append(sentiments, model.TickerSentiment{
			Ticker:    ticker,
			Label:     withDefault(ts.Label, model.NeutralLabel),
			Score:     score,
			Relevance: relevance,
		})
	}

	return sentiments, errs
}

func parseScore(v news.FlexString) (decimal.Decimal, error) {
	if !v.Valid {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(v.Value)
}

func withDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
