// Package metrics exposes the outcome of an ingestion run to Prometheus.
// The fetcher is a short-lived batch job, so values are pushed to a
// Pushgateway instead of being scraped.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/mchow01/marketnews/internal/model"
)

const namespace = "marketnews"

type RunMetrics struct {
	registry *prometheus.Registry

	Articles    *prometheus.GaugeVec
	Sentiments  *prometheus.GaugeVec
	Duration    prometheus.Gauge
	LastSuccess prometheus.Gauge
}

func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		Articles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_articles",
			Help:      "Articles handled by the last ingestion run, by outcome.",
		}, []string{"outcome"}),
		Sentiments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_sentiments",
			Help:      "Ticker sentiment batches and rows handled by the last run.",
		}, []string{"outcome"}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last ingestion run.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_last_completion_timestamp_seconds",
			Help:      "Unix time the last ingestion run finished.",
		}),
	}

	m.registry.MustRegister(m.Articles, m.Sentiments, m.Duration, m.LastSuccess)
	return m
}

func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *RunMetrics) Record(summary model.RunSummary, elapsed time.Duration, finished time.Time) {
	m.Articles.WithLabelValues("fetched").Set(float64(summary.Fetched))
	m.Articles.WithLabelValues("filtered").Set(float64(summary.Filtered))
	m.Articles.WithLabelValues("succeeded").Set(float64(summary.Succeeded))
	m.Articles.WithLabelValues("failed").Set(float64(summary.Failed))
	m.Articles.WithLabelValues("enqueued").Set(float64(summary.Enqueued))
	m.Sentiments.WithLabelValues("stored").Set(float64(summary.SentimentsStored))
	m.Sentiments.WithLabelValues("failed_batches").Set(float64(summary.SentimentFailures))
	m.Duration.Set(elapsed.Seconds())
	m.LastSuccess.Set(float64(finished.Unix()))
}

// Push sends the registry to the Pushgateway at url under the given job name.
func (m *RunMetrics) Push(ctx context.Context, url, job string) error {
	return push.New(url, job).Gatherer(m.registry).PushContext(ctx)
}
