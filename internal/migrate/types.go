// Package migrate implements the bulk field-migration pipeline: cursor
// pagination over the full record set, collection, transformation into
// set-update instructions, chunked write submission with per-chunk failure
// isolation, and a final durability commit.
package migrate

import (
	"encoding/json"
	"time"
)

// Record is one fetched document projected to the migration's two fields.
// Records are read-only snapshots; Source is "" when the field is absent.
type Record struct {
	ID     string
	Source string
}

// Page is one ordered batch of records plus the cursor for the next batch.
type Page struct {
	Records    []Record
	NextCursor string
}

// WriteInstruction replaces the target field of one document with a
// single-element sequence. Instructions are only created when a non-blank
// source value exists, so Values is never empty.
type WriteInstruction struct {
	ID     string
	Values []string
}

// ChunkFailure records one failed chunk submission for postmortem. The
// serialized payload is retained verbatim so a failed chunk can be
// inspected and replayed manually.
type ChunkFailure struct {
	Chunk   int             `json:"chunk"`
	Size    int             `json:"size"`
	Status  int             `json:"status,omitempty"`
	Body    string          `json:"body,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error"`
}

// RunResult aggregates the outcome of one migration run.
type RunResult struct {
	RunID       string         `json:"runId"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt time.Time      `json:"completedAt"`
	Fetched     int            `json:"fetched"`
	Eligible    int            `json:"eligible"`
	Written     int            `json:"written"`
	Failures    []ChunkFailure `json:"failures,omitempty"`
	FetchError  string         `json:"fetchError,omitempty"`
	CommitError string         `json:"commitError,omitempty"`
	Committed   bool           `json:"committed"`
}

// Clean reports whether the run completed with every eligible record
// written and committed.
func (r *RunResult) Clean() bool {
	return r.Committed && r.FetchError == "" && len(r.Failures) == 0 && r.Written == r.Eligible
}
