package migrate

import (
	"context"

	"github.com/fieldlift/fieldlift/internal/store"
)

// Collector accumulates every page from a PageFetcher into one in-memory
// result set. The whole matching set is held in memory; acceptable for the
// target collection sizes, but there is no upper bound beyond that.
type Collector struct {
	fetcher PageFetcher
}

// NewCollector creates a collector over the given fetcher.
func NewCollector(fetcher PageFetcher) *Collector {
	return &Collector{fetcher: fetcher}
}

// CollectAll walks from the sentinel cursor until the store signals
// end-of-results: an empty page, or a cursor that did not advance. Both
// conditions are checked because stores differ in which signal they emit
// first. On a fetch error the records accumulated so far are returned
// together with the error; the caller decides whether to proceed.
func (c *Collector) CollectAll(ctx context.Context) ([]Record, error) {
	var all []Record
	cursor := store.SentinelCursor
	for {
		page, err := c.fetcher.FetchPage(ctx, cursor)
		if err != nil {
			return all, err
		}
		all = append(all, page.Records...)

		// Termination checks use this page's own record count.
		if len(page.Records) == 0 {
			break
		}
		if page.NextCursor == "" || page.NextCursor == cursor {
			break
		}
		cursor = page.NextCursor
	}
	return all, nil
}
