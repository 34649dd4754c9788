package inference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codegraph/internal/ident"
	"github.com/dusk-indust/codegraph/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, store.GraphStore) {
	t.Helper()
	s := store.NewMemoryStore()
	registry := ident.NewDefaultTypeRegistry()
	return NewEngine(s, registry), s
}

func upsertEdge(t *testing.T, ctx context.Context, s store.GraphStore, from, to, typ string) {
	t.Helper()
	_, err := s.UpsertEdge(ctx, store.Edge{From: from, To: to, Type: typ, SourceFile: "seed"})
	require.NoError(t, err)
}

// TestHierarchical is seed scenario 4: "Hierarchical query" — querying the
// parent type "imports" must return both imports_file and imports_library
// edges, relabeled to the parent type.
func TestEngine_Hierarchical(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	upsertEdge(t, ctx, s, "proj/a.go", "proj/b.go", ident.EdgeImportsFile)
	upsertEdge(t, ctx, s, "proj/a.go", "library#fmt", ident.EdgeImportsLibrary)

	edges, err := e.Hierarchical(ctx, store.EdgeFilter{From: "proj/a.go"}, ident.EdgeImports)
	require.NoError(t, err)
	require.Len(t, edges, 2)
	for _, edge := range edges {
		assert.Equal(t, ident.EdgeImports, edge.Type)
		assert.Contains(t, []string{ident.EdgeImportsFile, ident.EdgeImportsLibrary}, edge.Label)
	}
}

func TestEngine_Hierarchical_UnknownType(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Hierarchical(context.Background(), store.EdgeFilter{}, "not-a-real-type")
	assert.Error(t, err)
}

func TestEngine_Transitive_ClosureBeyondDirectEdges(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	upsertEdge(t, ctx, s, "a", "b", ident.EdgeDependsOn)
	upsertEdge(t, ctx, s, "b", "c", ident.EdgeDependsOn)
	upsertEdge(t, ctx, s, "c", "d", ident.EdgeDependsOn)

	rows, err := e.Transitive(ctx, "a", ident.EdgeDependsOn)
	require.NoError(t, err)

	// depth-1 (a->b) is a direct edge, not derived output.
	var tos []string
	for _, r := range rows {
		tos = append(tos, r.To)
		assert.Greater(t, r.Depth, 1)
		assert.Equal(t, ident.EdgeDependsOn, r.Type)
	}
	assert.ElementsMatch(t, []string{"c", "d"}, tos)

	entry, ok := e.Cache.Get("a", "d", ident.EdgeDependsOn)
	require.True(t, ok)
	assert.Equal(t, 3, entry.Depth)
}

func TestEngine_Transitive_RejectsNonTransitiveType(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Transitive(context.Background(), "a", ident.EdgeCallsMethod)
	assert.Error(t, err)
}

func TestEngine_Inheritable_PropagatesThroughContainsChain(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	// file "contains" a class, which "defines" a method.
	upsertEdge(t, ctx, s, "proj/a.go", "proj/a.go#Class:Foo", ident.EdgeContainsMethod)
	upsertEdge(t, ctx, s, "proj/a.go#Class:Foo", "proj/a.go#Method:Foo.bar", ident.EdgeDefines)

	derived, err := e.Inheritable(ctx, "proj/a.go", ident.EdgeContains, ident.EdgeDefines)
	require.NoError(t, err)
	require.Len(t, derived, 1)
	assert.Equal(t, "proj/a.go", derived[0].From)
	assert.Equal(t, "proj/a.go#Method:Foo.bar", derived[0].To)
	assert.Equal(t, ident.EdgeDefines, derived[0].Type)
	assert.True(t, derived[0].Derived)
}

func TestEngine_Inheritable_RejectsNonInheritableType(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Inheritable(context.Background(), "a", ident.EdgeContains, ident.EdgeCallsMethod)
	assert.Error(t, err)
}

func TestEngine_Validate_ReportsHealthyCache(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	upsertEdge(t, ctx, s, "a", "b", ident.EdgeDependsOn)
	upsertEdge(t, ctx, s, "b", "c", ident.EdgeDependsOn)
	_, err := e.Transitive(ctx, "a", ident.EdgeDependsOn)
	require.NoError(t, err)

	result, err := e.Validate(ctx)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.ValidatedCount)
	assert.Empty(t, result.Warnings)
}

func TestEngine_Validate_WarnsOnStaleEntryAfterDeletion(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	upsertEdge(t, ctx, s, "a", "b", ident.EdgeDependsOn)
	upsertEdge(t, ctx, s, "b", "c", ident.EdgeDependsOn)
	_, err := e.Transitive(ctx, "a", ident.EdgeDependsOn)
	require.NoError(t, err)

	_, err = s.DeleteEdgesWhere(ctx, store.EdgeFilter{SourceFile: "seed", Types: []string{ident.EdgeDependsOn}, From: "b", To: "c"})
	require.NoError(t, err)

	result, err := e.Validate(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warnings)
}

func TestDerivationCache_InvalidateDropsDescendantTypeEntries(t *testing.T) {
	registry := ident.NewDefaultTypeRegistry()
	c := NewDerivationCache(PolicyManual)
	c.put(cacheKey{From: "a", To: "b", Type: ident.EdgeDependsOnFile}, CacheEntry{From: "a", To: "b", Type: ident.EdgeDependsOnFile, Depth: 2, EdgePath: []string{"a", "b"}})

	removed := c.Invalidate(registry, ident.EdgeDependsOn)
	assert.Equal(t, 1, removed)
	_, ok := c.Get("a", "b", ident.EdgeDependsOnFile)
	assert.False(t, ok)
}

func TestResolveConflict_PriorityBasedPicksHigherPriority(t *testing.T) {
	existing := ResolutionEdge{From: "a", To: "b", Type: "x", Priority: 1}
	candidate := ResolutionEdge{From: "a", To: "b", Type: "x", Priority: 5}
	got := ResolveConflict(ident.ConflictPriorityBased, existing, candidate)
	assert.Equal(t, 5, got.Priority)
}

func TestResolveConflict_MergeAttributesUnionsKeys(t *testing.T) {
	existing := ResolutionEdge{Attributes: map[string]any{"a": 1}}
	candidate := ResolutionEdge{Attributes: map[string]any{"b": 2}}
	got := ResolveConflict(ident.ConflictMergeAttributes, existing, candidate)
	assert.Equal(t, 1, got.Attributes["a"])
	assert.Equal(t, 2, got.Attributes["b"])
}

func TestResolveConflict_KeepExistingAndReplaceNew(t *testing.T) {
	existing := ResolutionEdge{From: "existing"}
	candidate := ResolutionEdge{From: "candidate"}
	assert.Equal(t, "existing", ResolveConflict(ident.ConflictKeepExisting, existing, candidate).From)
	assert.Equal(t, "candidate", ResolveConflict(ident.ConflictReplaceNew, existing, candidate).From)
}
