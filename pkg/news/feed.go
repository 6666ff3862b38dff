package news

import (
	"bytes"
	"encoding/json"
)

// FeedItem is one record of the NEWS_SENTIMENT feed as the provider sends it.
// Defaults are applied later by the normalizers, not here.
type FeedItem struct {
	Title           string            `json:"title"`
	Summary         string            `json:"summary"`
	URL             string            `json:"url"`
	Source          string            `json:"source"`
	TimePublished   string            `json:"time_published"`
	Topics          []Topic           `json:"topics"`
	TickerSentiment []TickerSentiment `json:"ticker_sentiment"`
}

type Topic struct {
	Topic          string     `json:"topic"`
	RelevanceScore FlexString `json:"relevance_score"`
}

type TickerSentiment struct {
	Ticker         string     `json:"ticker"`
	Label          string     `json:"ticker_sentiment_label"`
	SentimentScore FlexString `json:"ticker_sentiment_score"`
	RelevanceScore FlexString `json:"relevance_score"`
}

// FlexString holds a scalar that the provider may send either as a JSON
// string ("0.512") or as a bare number. Valid is false when the key was
// absent or null. Any other JSON value is kept verbatim so that the
// consumer, not the decoder, rejects it.
type FlexString struct {
	Value string
	Valid bool
}

func NewFlexString(s string) FlexString {
	return FlexString{Value: s, Valid: true}
}

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexString{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*f = FlexString{Value: s, Valid: true}
			return nil
		}
	}

	*f = FlexString{Value: string(data), Valid: true}
	return nil
}
