package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mchow01/marketnews/internal/model"
)

func TestRecord(t *testing.T) {
	m := NewRunMetrics()
	finished := time.Unix(1760000000, 0)

	m.Record(model.RunSummary{
		Fetched:           50,
		Filtered:          3,
		Succeeded:         45,
		Failed:            2,
		SentimentsStored:  120,
		SentimentFailures: 1,
	}, 1500*time.Millisecond, finished)

	assert.Equal(t, float64(50), testutil.ToFloat64(m.Articles.WithLabelValues("fetched")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.Articles.WithLabelValues("filtered")))
	assert.Equal(t, float64(45), testutil.ToFloat64(m.Articles.WithLabelValues("succeeded")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Articles.WithLabelValues("failed")))
	assert.Equal(t, float64(120), testutil.ToFloat64(m.Sentiments.WithLabelValues("stored")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Sentiments.WithLabelValues("failed_batches")))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.Duration))
	assert.Equal(t, float64(1760000000), testutil.ToFloat64(m.LastSuccess))
}

func TestPush(t *testing.T) {
	var path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewRunMetrics()
	m.Record(model.RunSummary{Succeeded: 1}, time.Second, time.Now())

	err := m.Push(context.Background(), srv.URL, "marketnews_fetcher")

	assert.Equal(t, nil, err)
	assert.Equal(t, "/metrics/job/marketnews_fetcher", path)
	assert.Equal(t, true, strings.Contains(body, "marketnews_run_articles"))
}
