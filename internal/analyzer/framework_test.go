package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/dusk-indust/codegraph/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAnalyzer is a minimal Analyzer for exercising Framework ordering and
// cleanup behavior without a real parser.
type stubAnalyzer struct {
	name    string
	extends []string
	owned   []string
	kinds   []string
	tags    []string
	fn      func(ctx AnalysisContext) (AnalyzerResult, error)
	calls   *[]string
}

func (s *stubAnalyzer) Name() string                           { return s.name }
func (s *stubAnalyzer) Extends() []string                      { return s.extends }
func (s *stubAnalyzer) OwnedEdgeTypes() []string                { return s.owned }
func (s *stubAnalyzer) NodeKinds() []string                     { return s.kinds }
func (s *stubAnalyzer) SemanticTags() []string                  { return s.tags }
func (s *stubAnalyzer) SupportsLanguage(_ store.Language) bool   { return true }
func (s *stubAnalyzer) Analyze(ctx AnalysisContext) (AnalyzerResult, error) {
	if s.calls != nil {
		*s.calls = append(*s.calls, s.name)
	}
	if s.fn != nil {
		return s.fn(ctx)
	}
	return AnalyzerResult{}, nil
}

func TestFramework_OrdersByExtends(t *testing.T) {
	var calls []string
	s := store.NewMemoryStore()
	f := NewFramework(s)

	require.NoError(t, f.Register(&stubAnalyzer{name: "symbols", calls: &calls}))
	require.NoError(t, f.Register(&stubAnalyzer{name: "methods", extends: []string{"symbols"}, calls: &calls}))
	require.NoError(t, f.Register(&stubAnalyzer{name: "inference", extends: []string{"methods"}, calls: &calls}))

	_, err := f.AnalyzeFile(context.Background(), AnalysisContext{
		SourcePath: "a.go", Language: store.LangGo,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"symbols", "methods", "inference"}, calls)
}

func TestFramework_RejectsDuplicateName(t *testing.T) {
	f := NewFramework(store.NewMemoryStore())
	require.NoError(t, f.Register(&stubAnalyzer{name: "symbols"}))
	err := f.Register(&stubAnalyzer{name: "symbols"})
	assert.Error(t, err)
}

func TestFramework_RejectsUnknownExtends(t *testing.T) {
	f := NewFramework(store.NewMemoryStore())
	require.NoError(t, f.Register(&stubAnalyzer{name: "methods", extends: []string{"symbols"}}))
	_, err := f.AnalyzeFile(context.Background(), AnalysisContext{SourcePath: "a.go", Language: store.LangGo})
	assert.Error(t, err)
}

func TestFramework_SkipsUnsupportedLanguage(t *testing.T) {
	called := false
	gated := &langGatedAnalyzer{lang: store.LangPython, called: &called}
	f := NewFramework(store.NewMemoryStore())
	require.NoError(t, f.Register(gated))

	_, err := f.AnalyzeFile(context.Background(), AnalysisContext{SourcePath: "a.go", Language: store.LangGo})
	require.NoError(t, err)
	assert.False(t, called)
}

type langGatedAnalyzer struct {
	lang   store.Language
	called *bool
}

func (g *langGatedAnalyzer) Name() string                           { return "gated" }
func (g *langGatedAnalyzer) Extends() []string                      { return nil }
func (g *langGatedAnalyzer) OwnedEdgeTypes() []string               { return nil }
func (g *langGatedAnalyzer) NodeKinds() []string                    { return nil }
func (g *langGatedAnalyzer) SemanticTags() []string                 { return nil }
func (g *langGatedAnalyzer) SupportsLanguage(l store.Language) bool  { return l == g.lang }
func (g *langGatedAnalyzer) Analyze(ctx AnalysisContext) (AnalyzerResult, error) {
	*g.called = true
	return AnalyzerResult{}, nil
}

func TestFramework_CleansUpOwnedEdgesBeforeRerun(t *testing.T) {
	// Seed scenario 6: re-analysis deletes only this analyzer's prior
	// edges for the file before writing new ones.
	ctx := context.Background()
	s := store.NewMemoryStore()
	_, _ = s.UpsertEdge(ctx, store.Edge{From: "a.go", To: "old.go", Type: "imports_file", SourceFile: "a.go"})
	_, _ = s.UpsertEdge(ctx, store.Edge{From: "a.go#Method:A.m", To: "a.go#Method:A.n", Type: "calls-method", SourceFile: "a.go"})

	f := NewFramework(s)
	importer := &stubAnalyzer{
		name:  "imports",
		owned: []string{"imports_file"},
		fn: func(ac AnalysisContext) (AnalyzerResult, error) {
			return AnalyzerResult{Edges: []store.Edge{
				{From: "a.go", To: "new.go", Type: "imports_file", SourceFile: "a.go"},
			}}, nil
		},
	}
	require.NoError(t, f.Register(importer))

	_, err := f.AnalyzeFile(ctx, AnalysisContext{SourcePath: "a.go", Language: store.LangGo})
	require.NoError(t, err)

	edges, err := s.FindEdges(ctx, store.EdgeFilter{SourceFile: "a.go"})
	require.NoError(t, err)
	require.Len(t, edges, 2)

	var sawNew, sawMethod bool
	for _, e := range edges {
		if e.Type == "imports_file" && e.To == "new.go" {
			sawNew = true
		}
		if e.Type == "calls-method" {
			sawMethod = true
		}
	}
	assert.True(t, sawNew, "stale imports_file edge should be replaced")
	assert.True(t, sawMethod, "unrelated analyzer's edges must survive cleanup")
}

func TestFramework_PropagatesAnalyzeError(t *testing.T) {
	f := NewFramework(store.NewMemoryStore())
	boom := errors.New("boom")
	require.NoError(t, f.Register(&stubAnalyzer{name: "bad", fn: func(ac AnalysisContext) (AnalyzerResult, error) {
		return AnalyzerResult{}, boom
	}}))

	_, err := f.AnalyzeFile(context.Background(), AnalysisContext{SourcePath: "a.go", Language: store.LangGo})
	assert.Error(t, err)
}
