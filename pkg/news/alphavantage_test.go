package news

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *AlphaVantageClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAlphaVantageClient("test-key", WithBaseURL(srv.URL))
}

func TestFetch(t *testing.T) {
	payload := map[string]interface{}{
		"items": "1",
		"feed": []map[string]interface{}{
			{
				"title":          "Chipmakers Rally On AI Demand",
				"summary":        "Semiconductor shares rose.",
				"url":            "https://example.com/chips",
				"source":         "Reuters",
				"time_published": "20260226T120000",
				"topics": []map[string]interface{}{
					{"topic": "Technology", "relevance_score": "1.0"},
				},
				"ticker_sentiment": []map[string]interface{}{
					{"ticker": "NVDA", "ticker_sentiment_label": "Bullish", "ticker_sentiment_score": "0.412", "relevance_score": "0.9"},
					{"ticker": "AMD", "ticker_sentiment_label": "Neutral", "ticker_sentiment_score": 0.05, "relevance_score": 0.3},
				},
			},
		},
	}

	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	})

	items, err := client.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"NEWS_SENTIMENT"}, gotQuery["function"])
	assert.Equal(t, []string{"technology"}, gotQuery["topics"])
	assert.Equal(t, []string{"test-key"}, gotQuery["apikey"])
	assert.Equal(t, 1, len(items))

	item := items[0]
	assert.Equal(t, "Chipmakers Rally On AI Demand", item.Title)
	assert.Equal(t, "Reuters", item.Source)
	assert.Equal(t, "20260226T120000", item.TimePublished)
	assert.Equal(t, 1, len(item.Topics))
	assert.Equal(t, 2, len(item.TickerSentiment))
	assert.Equal(t, NewFlexString("0.412"), item.TickerSentiment[0].SentimentScore)
	assert.Equal(t, NewFlexString("0.05"), item.TickerSentiment[1].SentimentScore)
	assert.Equal(t, NewFlexString("0.3"), item.TickerSentiment[1].RelevanceScore)
}

func TestFetchCustomTopic(t *testing.T) {
	var topic string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		topic = r.URL.Query().Get("topics")
		w.Write([]byte(`{"feed": []}`))
	}))
	defer srv.Close()

	client := NewAlphaVantageClient("k", WithBaseURL(srv.URL+"/"), WithTopic("earnings"))
	items, err := client.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, "earnings", topic)
	assert.Equal(t, 0, len(items))
}

func TestFetchMissingFeed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Information": "rate limit reached"}`))
	})

	items, err := client.Fetch(context.Background())

	assert.Equal(t, true, errors.Is(err, ErrNoFeed))
	assert.Equal(t, "alphavantage: response has no feed: rate limit reached", err.Error())
	assert.Equal(t, 0, len(items))
}

func TestFetchBadStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	items, err := client.Fetch(context.Background())

	assert.NotEqual(t, nil, err)
	assert.Equal(t, "alphavantage fetch: unexpected status 502: upstream down", err.Error())
	assert.Equal(t, 0, len(items))
}

func TestFetchInvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"feed": [`))
	})

	_, err := client.Fetch(context.Background())

	assert.NotEqual(t, nil, err)
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewAlphaVantageClient("k", WithBaseURL(url))
	_, err := client.Fetch(context.Background())

	assert.NotEqual(t, nil, err)
}

func TestFlexStringUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FlexString
	}{
		{name: "quoted number", input: `"0.5"`, want: NewFlexString("0.5")},
		{name: "bare number", input: `-0.25`, want: NewFlexString("-0.25")},
		{name: "null", input: `null`, want: FlexString{}},
		{name: "malformed string kept", input: `"abc"`, want: NewFlexString("abc")},
		{name: "object kept verbatim", input: `{"v": 1}`, want: NewFlexString(`{"v": 1}`)},
		{name: "array kept verbatim", input: ` [1, 2] `, want: NewFlexString(`[1, 2]`)},
		{name: "bool kept verbatim", input: `true`, want: NewFlexString("true")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexString
			err := json.Unmarshal([]byte(tt.input), &got)
			assert.Equal(t, nil, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchSkipsUndecodableRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"feed": [
			{"title": "Apple beats estimates", "source": "Reuters",
			 "ticker_sentiment": [{"ticker": "AAPL", "ticker_sentiment_score": "0.41", "relevance_score": "0.95"}]},
			{"title": "Odd scores", "source": "Benzinga",
			 "ticker_sentiment": [{"ticker": "MSFT", "ticker_sentiment_score": {"v": 1}, "relevance_score": [0.2]}]},
			{"title": 123, "source": "Reuters"},
			{"title": "Bad tickers", "ticker_sentiment": "AAPL"},
			null,
			"not an article",
			{"title": "Chip stocks rally", "source": ["Zacks"]},
			{"title": "Last one", "source": "CNBC"}
		]}`))
	})

	items, err := client.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(items))
	assert.Equal(t, "Apple beats estimates", items[0].Title)
	assert.Equal(t, "Odd scores", items[1].Title)
	assert.Equal(t, NewFlexString(`{"v": 1}`), items[1].TickerSentiment[0].SentimentScore)
	assert.Equal(t, NewFlexString(`[0.2]`), items[1].TickerSentiment[0].RelevanceScore)
	assert.Equal(t, "Last one", items[2].Title)
}

func TestFlexStringAbsentKey(t *testing.T) {
	var ts TickerSentiment
	err := json.Unmarshal([]byte(`{"ticker": "AAPL"}`), &ts)

	assert.Equal(t, nil, err)
	assert.Equal(t, false, ts.SentimentScore.Valid)
	assert.Equal(t, false, ts.RelevanceScore.Valid)
}
