// Package session tracks per-file analysis outcomes within one batch run
// and aggregates them into session-level statistics (spec §9 glossary's
// "Analysis session": "a logical batch run tied to a project; session
// statistics are aggregated once all files complete").
//
// Grounded on the teacher's internal/a2a.TaskStore: a mutex-protected map
// keyed by ID with a parallel insertion-order slice for deterministic
// pagination, repurposed here from "agent task tracking" to "per-file
// analysis outcome tracking", keyed by source path instead of a generated
// task ID since a file path is already a unique, caller-meaningful key.
package session

import (
	"fmt"
	"sync"

	"github.com/dusk-indust/codegraph/internal/analyzer"
)

// Status is a file's position in the analysis lifecycle within a session.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Record is one file's tracked outcome.
type Record struct {
	SourcePath  string
	Status      Status
	Diagnostics []analyzer.Diagnostic
	Err         error
}

// Tracker is a concurrency-safe in-memory store of Records for one
// analysis session (one batch run over one project).
type Tracker struct {
	mu       sync.RWMutex
	records  map[string]*Record
	orderIDs []string
}

// NewTracker returns an empty Tracker ready for use.
func NewTracker() *Tracker {
	return &Tracker{records: make(map[string]*Record)}
}

// Start registers a file as running. Re-starting an already-tracked file
// resets its status without losing its place in insertion order.
func (t *Tracker) Start(sourcePath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.records[sourcePath]; !exists {
		t.orderIDs = append(t.orderIDs, sourcePath)
	}
	t.records[sourcePath] = &Record{SourcePath: sourcePath, Status: StatusRunning}
}

// Complete marks sourcePath as finished successfully with the given
// diagnostics (which may be non-empty even on success — e.g. missing-link
// warnings).
func (t *Tracker) Complete(sourcePath string, diagnostics []analyzer.Diagnostic) {
	t.setResult(sourcePath, StatusComplete, diagnostics, nil)
}

// Fail marks sourcePath as finished with an error.
func (t *Tracker) Fail(sourcePath string, err error) {
	t.setResult(sourcePath, StatusFailed, nil, err)
}

func (t *Tracker) setResult(sourcePath string, status Status, diagnostics []analyzer.Diagnostic, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.records[sourcePath]; !exists {
		t.orderIDs = append(t.orderIDs, sourcePath)
	}
	t.records[sourcePath] = &Record{SourcePath: sourcePath, Status: status, Diagnostics: diagnostics, Err: err}
}

// IngestOutcomes bulk-populates the tracker from a completed
// analyzer.BatchRunner.Run call, the path the CLI uses after a batch
// finishes rather than tracking each file's lifecycle live.
func (t *Tracker) IngestOutcomes(outcomes []analyzer.FileOutcome) {
	for _, o := range outcomes {
		if o.Err != nil {
			t.Fail(o.SourcePath, o.Err)
			continue
		}
		t.Complete(o.SourcePath, o.Diagnostics)
	}
}

// Get returns a copy of the record for sourcePath.
func (t *Tracker) Get(sourcePath string) (*Record, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.records[sourcePath]
	if !ok {
		return nil, fmt.Errorf("session: no record for %q", sourcePath)
	}
	cp := *r
	cp.Diagnostics = append([]analyzer.Diagnostic(nil), r.Diagnostics...)
	return &cp, nil
}

// ListFilter selects and paginates List results, mirroring the teacher's
// ListTasksRequest shape.
type ListFilter struct {
	Status    Status
	PageToken string
	PageSize  int
}

// ListResult is one page of List results.
type ListResult struct {
	Records       []Record
	TotalSize     int
	NextPageToken string
}

// List returns records matching filter, paginated in insertion order.
func (t *Tracker) List(filter ListFilter) (*ListResult, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	startIdx := 0
	if filter.PageToken != "" {
		found := false
		for i, id := range t.orderIDs {
			if id == filter.PageToken {
				startIdx = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("session: invalid page token %q", filter.PageToken)
		}
	}

	matches := func(r *Record) bool {
		return filter.Status == "" || r.Status == filter.Status
	}

	var matched []Record
	for i := startIdx; i < len(t.orderIDs); i++ {
		r := t.records[t.orderIDs[i]]
		if matches(r) {
			matched = append(matched, *r)
		}
	}
	totalBefore := 0
	for i := 0; i < startIdx; i++ {
		if matches(t.records[t.orderIDs[i]]) {
			totalBefore++
		}
	}

	var nextPageToken string
	if filter.PageSize > 0 && len(matched) > filter.PageSize {
		nextPageToken = matched[filter.PageSize-1].SourcePath
		matched = matched[:filter.PageSize]
	}
	if matched == nil {
		matched = []Record{}
	}

	return &ListResult{Records: matched, TotalSize: totalBefore + len(matched), NextPageToken: nextPageToken}, nil
}

// Summary aggregates session-level statistics (spec §9 glossary: "session
// statistics are aggregated once all files complete").
type Summary struct {
	Total           int
	Succeeded       int
	Failed          int
	DiagnosticCount int
}

// Summary computes aggregate statistics across every tracked file.
func (t *Tracker) Summary() Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var s Summary
	for _, id := range t.orderIDs {
		r := t.records[id]
		s.Total++
		switch r.Status {
		case StatusComplete:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		}
		s.DiagnosticCount += len(r.Diagnostics)
	}
	return s
}
