// Package batch runs extractions over many token documents with a worker
// pool and formats the results.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/MeKo-Tech/credex/internal/extract"
)

// ErrNoFiles is returned when discovery finds nothing to process.
var ErrNoFiles = errors.New("no token files found")

type job struct {
	index int
	path  string
}

type jobResult struct {
	index int
	item  Item
}

// ProcessBatch discovers token documents under paths and extracts each one.
// Items keep discovery order regardless of completion order. Unless
// ContinueOnError is set, the first failing file stops the run and its error
// is returned alongside the partial result.
func ProcessBatch(ctx context.Context, paths []string, config *Config) (*Result, error) {
	files, err := discoverFiles(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover token files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(files))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ex := extract.New(config.Extract)
	jobs := make(chan job)
	results := make(chan jobResult, len(files))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- jobResult{index: j.index, item: processFile(ctx, ex, j.path, config)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, path := range files {
			select {
			case jobs <- job{index: i, path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	start := time.Now()
	items := make([]Item, len(files))
	done := make([]bool, len(files))
	var firstErr error
	completed := 0
	for r := range results {
		items[r.index] = r.item
		done[r.index] = true
		completed++
		if config.Progress != nil {
			config.Progress(completed, len(files))
		}
		if r.item.Err != nil && !config.ContinueOnError && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", r.item.File, r.item.Err)
			cancel()
		}
	}

	result := &Result{Duration: time.Since(start), WorkerCount: workers}
	for i := range items {
		if done[i] {
			result.Items = append(result.Items, items[i])
		}
	}

	if firstErr != nil {
		return result, firstErr
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
