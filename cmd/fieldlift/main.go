// Package main implements the fieldlift CLI: a single-shot bulk migration
// that copies a legacy single-valued document field into a new multi-valued
// field across an entire collection.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fieldlift/fieldlift/internal/config"
	"github.com/fieldlift/fieldlift/internal/migrate"
	"github.com/fieldlift/fieldlift/internal/store"
	"github.com/fieldlift/fieldlift/pkg/archive"
)

func main() {
	cfg := config.Load()

	storeURL := flag.String("store-url", cfg.StoreURL, "document store collection URL")
	pageSize := flag.Int("page-size", cfg.PageSize, "documents requested per select page")
	chunkSize := flag.Int("chunk-size", cfg.ChunkSize, "update instructions submitted per chunk")
	flag.Parse()

	cfg.StoreURL = *storeURL
	cfg.PageSize = *pageSize
	cfg.ChunkSize = *chunkSize
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	clientConfig := store.DefaultClientConfig()
	clientConfig.Timeout = time.Duration(cfg.HTTPTimeoutSecs) * time.Second
	clientConfig.RateLimit = cfg.RateLimit

	st, err := store.New(&store.Config{
		BaseURL:     cfg.StoreURL,
		SourceField: cfg.SourceField,
		TargetField: cfg.TargetField,
		PageSize:    cfg.PageSize,
		Client:      clientConfig,
	})
	if err != nil {
		log.Fatalf("store configuration: %v", err)
	}

	ctx := context.Background()
	if err := st.Ping(ctx); err != nil {
		log.Printf("store unreachable at %s: %v", cfg.StoreURL, err)
		os.Exit(2)
	}

	var arch *archive.Archive
	if cfg.ArchiveEnabled {
		arch, err = archive.NewFromEnv(cfg.ArchiveBucket)
		if err != nil {
			log.Printf("archive unavailable, continuing without it: %v", err)
			arch = nil
		}
	}

	runner := migrate.NewRunner(st, cfg.ChunkSize, arch, nil)
	result := runner.Run(ctx)
	printReport(result)

	switch {
	case result.CommitError != "":
		os.Exit(1)
	case result.FetchError != "" && result.Fetched == 0:
		os.Exit(2)
	}
}

// printReport writes the final user-visible run report. The discrepancy
// between eligible and written is always explained by enumerated failures.
func printReport(result *migrate.RunResult) {
	fmt.Printf("run %s finished in %s\n", result.RunID, result.CompletedAt.Sub(result.StartedAt).Round(time.Millisecond))
	fmt.Printf("  fetched:  %d\n", result.Fetched)
	fmt.Printf("  eligible: %d\n", result.Eligible)
	fmt.Printf("  written:  %d\n", result.Written)
	if result.FetchError != "" {
		fmt.Printf("  fetch halted early: %s\n", result.FetchError)
	}
	for _, f := range result.Failures {
		if f.Status != 0 {
			fmt.Printf("  chunk %d failed (%d docs, HTTP %d): %s\n", f.Chunk, f.Size, f.Status, f.Body)
		} else {
			fmt.Printf("  chunk %d failed (%d docs): %s\n", f.Chunk, f.Size, f.Error)
		}
	}
	if result.Committed {
		fmt.Println("  committed: yes")
	} else {
		fmt.Printf("  committed: NO (%s) - written chunks are not guaranteed durable, re-run after fixing\n", result.CommitError)
	}
}
