package ingest

import "github.com/mchow01/marketnews/pkg/news"

// FilterSources splits items into those to keep and those whose source
// exactly matches an entry of banned. Order is preserved in both.
func FilterSources(items []news.FeedItem, banned []string) (kept, removed []news.FeedItem) {
	deny := make(map[string]struct{}, len(banned))
	for _, s := range banned {
		deny[s] = struct{}{}
	}

	kept = make([]news.FeedItem, 0, len(items))
	for _, item := range items {
		if _, ok := deny[item.Source]; ok {
			removed = append(removed, item)
			continue
		}
		kept = append(kept, item)
	}

	return kept, removed
}
