package migrate

import (
	"context"
	"errors"

	"github.com/fieldlift/fieldlift/internal/store"
)

// DefaultChunkSize is the default number of instructions per update chunk.
// Deliberately smaller than the fetch page size: writes carry more risk per
// request than reads, so they are batched more conservatively.
const DefaultChunkSize = 10

// ChunkedWriter partitions write instructions into consecutive bounded
// chunks and submits each as one update request. Chunks are independent: a
// failed chunk is recorded and the run continues with the next one. Chunks
// are submitted strictly in sequence, preserving fetch order.
type ChunkedWriter struct {
	store     *store.Store
	chunkSize int
}

// NewChunkedWriter creates a writer submitting at most chunkSize
// instructions per request.
func NewChunkedWriter(s *store.Store, chunkSize int) *ChunkedWriter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkedWriter{store: s, chunkSize: chunkSize}
}

// WriteAll submits every instruction and returns the total written plus one
// failure entry per failed chunk. No chunk is retried; manual re-runs are
// safe because set-updates are idempotent.
func (w *ChunkedWriter) WriteAll(ctx context.Context, instructions []WriteInstruction) (int, []ChunkFailure) {
	written := 0
	var failures []ChunkFailure

	for start := 0; start < len(instructions); start += w.chunkSize {
		end := min(start+w.chunkSize, len(instructions))
		chunk := instructions[start:end]
		chunkNo := start/w.chunkSize + 1

		docs := make([]store.UpdateDoc, 0, len(chunk))
		for _, instr := range chunk {
			docs = append(docs, store.UpdateDoc{ID: instr.ID, Set: instr.Values})
		}

		payload, err := w.store.EncodeUpdate(docs)
		if err != nil {
			failures = append(failures, ChunkFailure{
				Chunk: chunkNo,
				Size:  len(chunk),
				Error: err.Error(),
			})
			continue
		}

		if err := w.store.Update(ctx, payload); err != nil {
			failure := ChunkFailure{
				Chunk:   chunkNo,
				Size:    len(chunk),
				Payload: payload,
				Error:   err.Error(),
			}
			var httpErr *store.HTTPError
			if errors.As(err, &httpErr) {
				failure.Status = httpErr.StatusCode
				failure.Body = httpErr.Message
			}
			failures = append(failures, failure)
			continue
		}

		written += len(chunk)
	}

	return written, failures
}
