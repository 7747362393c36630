package migrate

import (
	"context"

	"github.com/fieldlift/fieldlift/internal/store"
)

// Committer issues the single durability commit that finalizes a run. It is
// invoked exactly once, after every chunk has been attempted, regardless of
// individual chunk outcomes.
type Committer struct {
	store *store.Store
}

// NewCommitter creates a committer over the given store.
func NewCommitter(s *store.Store) *Committer {
	return &Committer{store: s}
}

// Commit makes prior updates durable and visible. A failure here is the
// run's top-level outcome, distinct from chunk-level failures.
func (c *Committer) Commit(ctx context.Context) error {
	if err := c.store.Commit(ctx); err != nil {
		return &CommitError{Err: err}
	}
	return nil
}
