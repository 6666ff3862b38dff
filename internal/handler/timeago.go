package handler

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Alpha Vantage publishes times as 20260113T142500.
const providerTimeLayout = "20060102T150405"

func timeAgo(published string, now time.Time) string {
	if published == "" {
		return "unknown time"
	}

	t, err := parsePublished(published)
	if err != nil {
		return published
	}

	return humanize.RelTime(t, now, "ago", "from now")
}

func parsePublished(s string) (time.Time, error) {
	if len(s) >= len(providerTimeLayout) {
		if t, err := time.Parse(providerTimeLayout, s[:len(providerTimeLayout)]); err == nil {
			return t, nil
		}
	}
	return time.Parse(time.RFC3339, s)
}
