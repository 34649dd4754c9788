package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dusk-indust/codegraph/internal/errs"
	"github.com/dusk-indust/codegraph/internal/store"
)

// Framework holds a registry of analyzers and runs them, in dependency
// order, against one file at a time (spec §4.3).
//
// Grounded on the teacher's orchestrator.Router: RegisterExecutor/Route
// become Register/AnalyzeFile, and the teacher's explicit per-stage
// prerequisite table becomes a generic Kahn's-algorithm topological sort
// over each analyzer's Extends() list, since the spec's analyzer set is
// open-ended rather than the teacher's fixed five pipeline stages.
type Framework struct {
	store       store.GraphStore
	analyzers   map[string]Analyzer
	fileTimeout time.Duration
}

// NewFramework creates a Framework backed by the given store, using
// DefaultFileTimeout for each file's analysis budget.
func NewFramework(s store.GraphStore) *Framework {
	return &Framework{
		store:       s,
		analyzers:   make(map[string]Analyzer),
		fileTimeout: DefaultFileTimeout,
	}
}

// WithFileTimeout overrides the per-file analysis timeout.
func (f *Framework) WithFileTimeout(d time.Duration) *Framework {
	f.fileTimeout = d
	return f
}

// Register adds an analyzer to the framework. Registering two analyzers
// with the same Name is an error — names are the registry key that
// Extends lists and ordering resolve against.
func (f *Framework) Register(a Analyzer) error {
	if _, exists := f.analyzers[a.Name()]; exists {
		return fmt.Errorf("analyzer: duplicate analyzer name %q", a.Name())
	}
	f.analyzers[a.Name()] = a
	return nil
}

// order returns analyzers in an extends-respecting topological order,
// breaking ties by name for determinism. Returns an error if Extends
// references an unregistered analyzer or forms a cycle.
func (f *Framework) order() ([]Analyzer, error) {
	names := make([]string, 0, len(f.analyzers))
	for name := range f.analyzers {
		names = append(names, name)
	}
	sort.Strings(names)

	indegree := make(map[string]int, len(names))
	dependents := make(map[string][]string)
	for _, name := range names {
		indegree[name] = 0
	}
	for _, name := range names {
		a := f.analyzers[name]
		for _, dep := range a.Extends() {
			if _, ok := f.analyzers[dep]; !ok {
				return nil, fmt.Errorf("analyzer %q extends unregistered analyzer %q", name, dep)
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for _, name := range names {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var out []Analyzer
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		out = append(out, f.analyzers[next])

		children := append([]string(nil), dependents[next]...)
		sort.Strings(children)
		for _, child := range children {
			indegree[child]--
			if indegree[child] == 0 {
				ready = append(ready, child)
				sort.Strings(ready)
			}
		}
	}

	if len(out) != len(names) {
		return nil, fmt.Errorf("analyzer: extends graph contains a cycle")
	}
	return out, nil
}

// AnalyzeFile runs every registered, language-matching analyzer against
// one file in extends-order, cleaning up each analyzer's previously-owned
// edges before re-running it, and committing each analyzer's output via
// WriteBatch before moving to the next (spec §3.5, §4.3).
//
// A per-file timeout bounds the whole sequence; cancellation is checked
// between analyzer phases, not mid-analyzer (spec §5).
func (f *Framework) AnalyzeFile(ctx context.Context, ac AnalysisContext) ([]Diagnostic, error) {
	ordered, err := f.order()
	if err != nil {
		return nil, err
	}

	fileCtx, cancel := context.WithTimeout(ctx, f.fileTimeout)
	defer cancel()
	ac.Context = fileCtx
	ac.Store = f.store
	ac.TypeCollection = f.typeCollection()

	results := make(map[string]AnalyzerResult, len(ordered))
	ac.PreviousResults = results
	if ac.SharedData == nil {
		ac.SharedData = make(map[string]any)
	}

	var diagnostics []Diagnostic
	for _, a := range ordered {
		select {
		case <-fileCtx.Done():
			return diagnostics, errs.Wrap(errs.ErrAnalyzerTimeout, "AnalyzeFile", fileCtx.Err())
		default:
		}

		if !a.SupportsLanguage(ac.Language) {
			continue
		}

		if len(a.OwnedEdgeTypes()) > 0 {
			if _, err := f.store.DeleteEdgesWhere(fileCtx, store.EdgeFilter{
				SourceFile: ac.SourcePath,
				Types:      a.OwnedEdgeTypes(),
			}); err != nil {
				return diagnostics, errs.Wrap(errs.ErrStoreError, "AnalyzeFile.cleanup", err)
			}
		}

		result, err := a.Analyze(ac)
		if err != nil {
			return diagnostics, errs.Wrap(errs.ErrParseFailure, "AnalyzeFile."+a.Name(), err)
		}
		results[a.Name()] = result

		if err := f.store.WriteBatch(fileCtx, result.Nodes, result.Edges); err != nil {
			return diagnostics, errs.Wrap(errs.ErrStoreError, "AnalyzeFile.commit", err)
		}
		diagnostics = append(diagnostics, result.Diagnostics...)
	}

	return diagnostics, nil
}

// typeCollection unions every registered analyzer's advertised NodeKinds,
// OwnedEdgeTypes, and SemanticTags into one project-wide TypeCollection
// (spec §4.3, §6.3), deduplicated and sorted for deterministic output.
func (f *Framework) typeCollection() TypeCollection {
	nodeKinds := make(map[string]bool)
	edgeTypes := make(map[string]bool)
	semanticTags := make(map[string]bool)

	for _, a := range f.analyzers {
		for _, k := range a.NodeKinds() {
			nodeKinds[k] = true
		}
		for _, t := range a.OwnedEdgeTypes() {
			edgeTypes[t] = true
		}
		for _, t := range a.SemanticTags() {
			semanticTags[t] = true
		}
	}

	tc := TypeCollection{
		NodeKinds:    make([]string, 0, len(nodeKinds)),
		EdgeTypes:    make([]string, 0, len(edgeTypes)),
		SemanticTags: make([]string, 0, len(semanticTags)),
	}
	for k := range nodeKinds {
		tc.NodeKinds = append(tc.NodeKinds, k)
	}
	for t := range edgeTypes {
		tc.EdgeTypes = append(tc.EdgeTypes, t)
	}
	for t := range semanticTags {
		tc.SemanticTags = append(tc.SemanticTags, t)
	}
	sort.Strings(tc.NodeKinds)
	sort.Strings(tc.EdgeTypes)
	sort.Strings(tc.SemanticTags)
	return tc
}
