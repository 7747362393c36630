package migrate_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fieldlift/fieldlift/internal/migrate"
)

func makeInstructions(n int) []migrate.WriteInstruction {
	instructions := make([]migrate.WriteInstruction, 0, n)
	for i := 0; i < n; i++ {
		instructions = append(instructions, migrate.WriteInstruction{
			ID:     fmt.Sprintf("rec-%03d", i),
			Values: []string{"v"},
		})
	}
	return instructions
}

func TestChunkedWriter_PartitionsSequentially(t *testing.T) {
	fake := newFakeSolr(t)
	for i := 0; i < 25; i++ {
		fake.addDoc(fmt.Sprintf("rec-%03d", i), "v")
	}
	s := newTestStore(t, fake, 20)

	writer := migrate.NewChunkedWriter(s, 10)
	written, failures := writer.WriteAll(context.Background(), makeInstructions(25))

	if written != 25 {
		t.Errorf("written = %d, want 25", written)
	}
	if len(failures) != 0 {
		t.Errorf("unexpected failures: %v", failures)
	}
	if fake.updateCalls != 3 {
		t.Errorf("update calls = %d, want 3", fake.updateCalls)
	}
	wantSizes := []int{10, 10, 5}
	for i, want := range wantSizes {
		if i >= len(fake.updateSizes) || fake.updateSizes[i] != want {
			t.Errorf("chunk sizes = %v, want %v", fake.updateSizes, wantSizes)
			break
		}
	}
}

func TestChunkedWriter_FailedChunkIsIsolated(t *testing.T) {
	fake := newFakeSolr(t)
	for i := 0; i < 25; i++ {
		fake.addDoc(fmt.Sprintf("rec-%03d", i), "v")
	}
	fake.failUpdateCall = 2
	s := newTestStore(t, fake, 20)

	writer := migrate.NewChunkedWriter(s, 10)
	written, failures := writer.WriteAll(context.Background(), makeInstructions(25))

	// Chunks 1 and 3 still count; chunk 2 is recorded, not fatal.
	if written != 15 {
		t.Errorf("written = %d, want 15", written)
	}
	if fake.updateCalls != 3 {
		t.Errorf("update calls = %d, want 3 (all chunks attempted)", fake.updateCalls)
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}

	f := failures[0]
	if f.Chunk != 2 {
		t.Errorf("failure chunk = %d, want 2", f.Chunk)
	}
	if f.Size != 10 {
		t.Errorf("failure size = %d, want 10", f.Size)
	}
	if f.Status != http.StatusBadRequest {
		t.Errorf("failure status = %d, want 400", f.Status)
	}
	if f.Body == "" {
		t.Error("failure body not captured")
	}

	// The serialized payload is retained for postmortem replay.
	var payload []map[string]any
	if err := json.Unmarshal(f.Payload, &payload); err != nil {
		t.Fatalf("failure payload is not valid JSON: %v", err)
	}
	if len(payload) != 10 {
		t.Errorf("failure payload has %d entries, want 10", len(payload))
	}
}

func TestChunkedWriter_DefaultChunkSize(t *testing.T) {
	fake := newFakeSolr(t)
	for i := 0; i < 12; i++ {
		fake.addDoc(fmt.Sprintf("rec-%03d", i), "v")
	}
	s := newTestStore(t, fake, 20)

	writer := migrate.NewChunkedWriter(s, 0)
	written, failures := writer.WriteAll(context.Background(), makeInstructions(12))

	if written != 12 || len(failures) != 0 {
		t.Fatalf("written = %d failures = %v", written, failures)
	}
	if fake.updateCalls != 2 {
		t.Errorf("update calls = %d, want 2 with default chunk size", fake.updateCalls)
	}
}

func TestCommitter_WrapsFailure(t *testing.T) {
	fake := newFakeSolr(t)
	fake.failCommit = true
	s := newTestStore(t, fake, 20)

	err := migrate.NewCommitter(s).Commit(context.Background())
	if err == nil {
		t.Fatal("expected commit error")
	}
	var commitErr *migrate.CommitError
	if !errors.As(err, &commitErr) {
		t.Fatalf("expected *CommitError, got %T", err)
	}
}
