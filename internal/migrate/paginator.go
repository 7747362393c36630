package migrate

import (
	"context"

	"github.com/fieldlift/fieldlift/internal/store"
)

// PageFetcher yields one bounded page of records per call. The cursor must
// be either the sentinel or a cursor previously returned in a Page.
type PageFetcher interface {
	FetchPage(ctx context.Context, cursor string) (*Page, error)
}

// Ensure interface compliance
var _ PageFetcher = (*Paginator)(nil)

// Paginator walks the full matching record set through the store's opaque,
// monotonically advancing cursor marks.
type Paginator struct {
	store *store.Store
}

// NewPaginator creates a paginator over the given store.
func NewPaginator(s *store.Store) *Paginator {
	return &Paginator{store: s}
}

// FetchPage fetches the page at cursor. Store and transport errors surface
// as a FetchError carrying the attempted cursor; there is no retry.
func (p *Paginator) FetchPage(ctx context.Context, cursor string) (*Page, error) {
	selected, err := p.store.Select(ctx, cursor)
	if err != nil {
		return nil, &FetchError{Cursor: cursor, Err: err}
	}

	records := make([]Record, 0, len(selected.Docs))
	for _, doc := range selected.Docs {
		records = append(records, Record{ID: doc.ID, Source: doc.Source})
	}
	return &Page{Records: records, NextCursor: selected.NextCursor}, nil
}
