// Package fileproc provides concurrent file parsing for cleanup runs.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/dkarlsen/scythe/internal/cleanup"
	"github.com/dkarlsen/scythe/pkg/parser"
)

// ProcessingError is an error attributed to one file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects per-file errors across workers.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is applied to NumCPU for the worker count.
// 2x works well for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// Workers resolves the configured worker count, defaulting to 2x NumCPU.
func Workers(configured int) int {
	if configured > 0 {
		return configured
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// MapFilesWithContext processes files in parallel, calling fn with a
// dedicated parser per task. Results keep the input order; a failed
// file leaves its slot at the zero value and is recorded in the
// returned errors. Cancellation stops scheduling of remaining files.
func MapFilesWithContext[T any](ctx context.Context, files []string, workers int, fn func(*parser.Parser, string) (T, error), onProgress ProgressFunc) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	results := make([]T, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(Workers(workers)).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				errs.Add(path, ctx.Err())
				return ctx.Err()
			default:
			}

			psr := parser.New()
			defer psr.Close()

			result, err := fn(psr, path)

			if onProgress != nil {
				onProgress()
			}
			if err != nil {
				errs.Add(path, err)
				return nil // one bad file must not stop the pool
			}

			results[i] = result
			return nil
		})
	}
	_ = p.Wait() // context errors are already captured in errs

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

// ParseBatch parses files into cleanup contexts, preserving input
// order. Files that fail to parse keep a nil tree so the cleanup pass
// can report and skip them instead of aborting the batch.
func ParseBatch(ctx context.Context, files []string, workers int, onProgress ProgressFunc) ([]cleanup.FileContext, *ProcessingErrors) {
	contexts, errs := MapFilesWithContext(ctx, files, workers, func(p *parser.Parser, path string) (cleanup.FileContext, error) {
		result, err := p.ParseFile(path)
		if err != nil {
			return cleanup.FileContext{Path: path}, err
		}
		return cleanup.FileContext{Path: path, Tree: result}, nil
	}, onProgress)

	// failed slots still need their path for reporting
	for i := range contexts {
		if contexts[i].Path == "" {
			contexts[i].Path = files[i]
		}
	}
	return contexts, errs
}
