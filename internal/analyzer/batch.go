package analyzer

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrency is the default bound on simultaneously-analyzed
// files (spec §5).
const DefaultMaxConcurrency = 4

// FileOutcome pairs a file path with its analysis result.
type FileOutcome struct {
	SourcePath  string
	Diagnostics []Diagnostic
	Err         error
}

// BatchRunner fans a Framework's AnalyzeFile out across many files with
// bounded concurrency.
//
// Grounded on the teacher's orchestrator.FanOut, but deliberately departs
// from its fail-fast behavior: FanOut cancels its shared context on the
// first agent error because a failed remote stage poisons the pipeline's
// downstream stages. Here, files are independent analysis units (spec §5:
// "across files ... parallel, no data dependency"), so one file's
// ParseFailure or AnalyzerTimeout must not abort analysis of the rest of
// the project — every file's outcome, success or failure, is collected.
type BatchRunner struct {
	framework      *Framework
	maxConcurrency int
	onProgress     func(ProgressEvent)
}

// NewBatchRunner creates a BatchRunner with DefaultMaxConcurrency.
func NewBatchRunner(f *Framework) *BatchRunner {
	return &BatchRunner{framework: f, maxConcurrency: DefaultMaxConcurrency}
}

// WithMaxConcurrency overrides the concurrency bound. Values <= 0 are
// treated as DefaultMaxConcurrency.
func (b *BatchRunner) WithMaxConcurrency(n int) *BatchRunner {
	if n <= 0 {
		n = DefaultMaxConcurrency
	}
	b.maxConcurrency = n
	return b
}

// WithProgress registers a callback invoked for each file's lifecycle
// events. It is called concurrently from multiple goroutines and must be
// safe for that.
func (b *BatchRunner) WithProgress(fn func(ProgressEvent)) *BatchRunner {
	b.onProgress = fn
	return b
}

// Run analyzes every given file, bounded by maxConcurrency, and returns one
// FileOutcome per file in the same order as contexts. The returned error is
// always nil — per-file errors live in each FileOutcome — since a single
// file's failure is not a run-level failure (see type doc).
func (b *BatchRunner) Run(ctx context.Context, contexts []AnalysisContext) ([]FileOutcome, error) {
	outcomes := make([]FileOutcome, len(contexts))
	sem := make(chan struct{}, b.maxConcurrency)
	var wg sync.WaitGroup

	g, gctx := errgroup.WithContext(ctx)
	for i, ac := range contexts {
		i, ac := i, ac
		select {
		case <-ctx.Done():
			outcomes[i] = FileOutcome{SourcePath: ac.SourcePath, Err: ctx.Err()}
			continue
		default:
		}

		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			b.emit(ProgressEvent{Section: ac.SourcePath, Status: ProgressWorking})
			diags, err := b.framework.AnalyzeFile(gctx, ac)
			outcomes[i] = FileOutcome{SourcePath: ac.SourcePath, Diagnostics: diags, Err: err}
			if err != nil {
				b.emit(ProgressEvent{Section: ac.SourcePath, Status: ProgressFailed, Message: err.Error()})
			} else {
				b.emit(ProgressEvent{Section: ac.SourcePath, Status: ProgressComplete})
			}
			return nil // never propagate: see type doc on fail-fast departure
		})
	}

	wg.Wait()
	_ = g.Wait()
	return outcomes, nil
}

func (b *BatchRunner) emit(ev ProgressEvent) {
	if b.onProgress != nil {
		b.onProgress(ev)
	}
}
