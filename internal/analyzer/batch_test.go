package analyzer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/dusk-indust/codegraph/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRunner_CollectsAllOutcomesOnPartialFailure(t *testing.T) {
	f := NewFramework(store.NewMemoryStore())
	require.NoError(t, f.Register(&stubAnalyzer{
		name: "maybe-fail",
		fn: func(ac AnalysisContext) (AnalyzerResult, error) {
			if ac.SourcePath == "bad.go" {
				return AnalyzerResult{}, errors.New("parse failure")
			}
			return AnalyzerResult{}, nil
		},
	}))

	runner := NewBatchRunner(f).WithMaxConcurrency(2)
	outcomes, err := runner.Run(context.Background(), []AnalysisContext{
		{SourcePath: "good1.go", Language: store.LangGo},
		{SourcePath: "bad.go", Language: store.LangGo},
		{SourcePath: "good2.go", Language: store.LangGo},
	})
	require.NoError(t, err, "a single file's failure must not fail the batch")
	require.Len(t, outcomes, 3)

	var failed, succeeded int
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			assert.Equal(t, "bad.go", o.SourcePath)
		} else {
			succeeded++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, succeeded)
}

func TestBatchRunner_RespectsMaxConcurrency(t *testing.T) {
	f := NewFramework(store.NewMemoryStore())
	var inFlight, maxObserved int64
	require.NoError(t, f.Register(&stubAnalyzer{
		name: "track",
		fn: func(ac AnalysisContext) (AnalyzerResult, error) {
			n := atomic.AddInt64(&inFlight, 1)
			for {
				cur := atomic.LoadInt64(&maxObserved)
				if n <= cur || atomic.CompareAndSwapInt64(&maxObserved, cur, n) {
					break
				}
			}
			atomic.AddInt64(&inFlight, -1)
			return AnalyzerResult{}, nil
		},
	}))

	runner := NewBatchRunner(f).WithMaxConcurrency(2)
	contexts := make([]AnalysisContext, 20)
	for i := range contexts {
		contexts[i] = AnalysisContext{SourcePath: "f.go", Language: store.LangGo}
	}

	_, err := runner.Run(context.Background(), contexts)
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt64(&maxObserved), int64(2))
}

func TestBatchRunner_EmitsProgress(t *testing.T) {
	f := NewFramework(store.NewMemoryStore())
	require.NoError(t, f.Register(&stubAnalyzer{name: "noop"}))

	var events []ProgressEvent
	runner := NewBatchRunner(f).WithProgress(func(e ProgressEvent) {
		events = append(events, e)
	})

	_, err := runner.Run(context.Background(), []AnalysisContext{
		{SourcePath: "a.go", Language: store.LangGo},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ProgressWorking, events[0].Status)
	assert.Equal(t, ProgressComplete, events[1].Status)
}
