package migrate

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fieldlift/fieldlift/internal/store"
	"github.com/fieldlift/fieldlift/pkg/archive"
)

// Runner wires the pipeline stages into one linear, single-threaded run:
// collect everything, transform, write in chunks, commit once. There is no
// cancellation mid-run beyond the context passed to each blocking call.
type Runner struct {
	store     *store.Store
	chunkSize int
	archive   *archive.Archive
	logger    *log.Logger
}

// NewRunner creates a runner. archive may be nil to disable postmortem
// archiving; logger may be nil to use the default logger.
func NewRunner(s *store.Store, chunkSize int, arch *archive.Archive, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{store: s, chunkSize: chunkSize, archive: arch, logger: logger}
}

// Run executes one full migration and returns its aggregate result. A fetch
// error halts pagination but the records already collected are still
// transformed, written and committed. Commit is issued exactly once, after
// every chunk has been attempted.
func (r *Runner) Run(ctx context.Context) *RunResult {
	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	r.logger.Printf("run %s: migrating %s -> %s (page %d, chunk %d)",
		result.RunID, r.store.SourceField(), r.store.TargetField(), r.store.PageSize(), r.chunkSize)

	collector := NewCollector(NewPaginator(r.store))
	records, fetchErr := collector.CollectAll(ctx)
	result.Fetched = len(records)
	if fetchErr != nil {
		result.FetchError = fetchErr.Error()
		r.logger.Printf("run %s: pagination halted after %d records: %v", result.RunID, len(records), fetchErr)
	}

	instructions := TransformAll(records)
	result.Eligible = len(instructions)
	r.logger.Printf("run %s: fetched %d records, %d eligible", result.RunID, result.Fetched, result.Eligible)

	writer := NewChunkedWriter(r.store, r.chunkSize)
	written, failures := writer.WriteAll(ctx, instructions)
	result.Written = written
	result.Failures = failures
	for _, f := range failures {
		r.logger.Printf("run %s: chunk %d (%d docs) failed: %s", result.RunID, f.Chunk, f.Size, f.Error)
	}
	r.archiveFailures(ctx, result)

	if err := NewCommitter(r.store).Commit(ctx); err != nil {
		result.CommitError = err.Error()
		r.logger.Printf("run %s: %v", result.RunID, err)
	} else {
		result.Committed = true
	}
	result.CompletedAt = time.Now().UTC()
	r.archiveReport(ctx, result)

	r.logger.Printf("run %s: fetched=%d eligible=%d written=%d failures=%d committed=%v",
		result.RunID, result.Fetched, result.Eligible, result.Written, len(result.Failures), result.Committed)
	return result
}

// archiveFailures stores each failed chunk payload for postmortem.
// Best-effort: archive errors are logged, never propagated.
func (r *Runner) archiveFailures(ctx context.Context, result *RunResult) {
	if r.archive == nil {
		return
	}
	for _, f := range result.Failures {
		if len(f.Payload) == 0 {
			continue
		}
		ref, err := r.archive.SaveChunkPayload(ctx, result.RunID, f.Chunk, f.Payload)
		if err != nil {
			r.logger.Printf("run %s: archive chunk %d payload: %v", result.RunID, f.Chunk, err)
			continue
		}
		r.logger.Printf("run %s: chunk %d payload archived at %s", result.RunID, f.Chunk, ref)
	}
}

// archiveReport stores the final run report snapshot.
func (r *Runner) archiveReport(ctx context.Context, result *RunResult) {
	if r.archive == nil {
		return
	}
	snapshot, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		r.logger.Printf("run %s: marshal report: %v", result.RunID, err)
		return
	}
	if _, err := r.archive.SaveReport(ctx, result.RunID, snapshot); err != nil {
		r.logger.Printf("run %s: archive report: %v", result.RunID, err)
	}
}
