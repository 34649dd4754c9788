package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_UpsertNodeMergesAttributes(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.UpsertNode(ctx, Node{ID: "p/a.go", Kind: KindFile, Attributes: map[string]any{"loc": 10}})
	require.NoError(t, err)

	_, err = m.UpsertNode(ctx, Node{ID: "p/a.go", Kind: KindFile, Attributes: map[string]any{"hash": "abc"}})
	require.NoError(t, err)

	nodes, err := m.FindNodes(ctx, NodeFilter{Kind: KindFile})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 10, nodes[0].Attributes["loc"])
	assert.Equal(t, "abc", nodes[0].Attributes["hash"])
}

func TestMemoryStore_DeleteNodeCascadesEdges(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_, _ = m.UpsertNode(ctx, Node{ID: "a", Kind: KindFile})
	_, _ = m.UpsertNode(ctx, Node{ID: "b", Kind: KindFile})
	_, _ = m.UpsertEdge(ctx, Edge{From: "a", To: "b", Type: "imports_file", SourceFile: "a"})

	require.NoError(t, m.DeleteNode(ctx, "a"))

	edges, err := m.FindEdges(ctx, EdgeFilter{})
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestMemoryStore_CleanupIsolation(t *testing.T) {
	// Seed scenario 6: re-running analyzer X's cleanup must not touch
	// analyzer Y's edges on the same file.
	ctx := context.Background()
	m := NewMemoryStore()
	_, _ = m.UpsertEdge(ctx, Edge{From: "f.ts", To: "util.ts", Type: "imports_file", SourceFile: "f.ts"})
	_, _ = m.UpsertEdge(ctx, Edge{From: "f.ts#Method:A.m", To: "f.ts#Method:A.n", Type: "calls-method", SourceFile: "f.ts"})

	count, err := m.DeleteEdgesWhere(ctx, EdgeFilter{SourceFile: "f.ts", Types: []string{"imports_file"}})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	edges, err := m.FindEdges(ctx, EdgeFilter{SourceFile: "f.ts"})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "calls-method", edges[0].Type)
}

func TestMemoryStore_DeleteEdgesWhere_EmptyTypesIsNoop(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_, _ = m.UpsertEdge(ctx, Edge{From: "a", To: "b", Type: "imports_file", SourceFile: "a"})

	count, err := m.DeleteEdgesWhere(ctx, EdgeFilter{SourceFile: "a", Types: nil})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryStore_RunRecursive_TransitiveClosure(t *testing.T) {
	// Seed scenario 5: A->B->C->D, maxDepth=2 from A reaches C at depth 2
	// but not D, which is at depth 3.
	ctx := context.Background()
	m := NewMemoryStore()
	for _, e := range []Edge{
		{From: "A", To: "B", Type: "depends_on", SourceFile: "A"},
		{From: "B", To: "C", Type: "depends_on", SourceFile: "B"},
		{From: "C", To: "D", Type: "depends_on", SourceFile: "C"},
	} {
		_, err := m.UpsertEdge(ctx, e)
		require.NoError(t, err)
	}

	rows, err := m.RunRecursive(ctx, RecursiveQuery{
		StartNode: "A",
		EdgeTypes: []string{"depends_on"},
		MaxDepth:  2,
	})
	require.NoError(t, err)

	var toC, toD bool
	for _, r := range rows {
		if r.To == "C" {
			assert.Equal(t, 2, r.Depth)
			toC = true
		}
		if r.To == "D" {
			toD = true
		}
	}
	assert.True(t, toC, "expected A reaches C at depth 2")
	assert.False(t, toD, "A should not reach D within maxDepth=2")
}

func TestMemoryStore_ShortestPath(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_, _ = m.UpsertEdge(ctx, Edge{From: "a", To: "b", Type: "imports_file", SourceFile: "a"})
	_, _ = m.UpsertEdge(ctx, Edge{From: "b", To: "c", Type: "imports_file", SourceFile: "b"})

	path, err := m.ShortestPath(ctx, "a", "c", 5)
	require.NoError(t, err)
	require.NotNil(t, path)
	assert.Equal(t, []string{"a", "b", "c"}, path.Nodes)

	path, err = m.ShortestPath(ctx, "a", "z", 5)
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestMemoryStore_FindCycles(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_, _ = m.UpsertEdge(ctx, Edge{From: "a", To: "b", Type: "calls-function", SourceFile: "a"})
	_, _ = m.UpsertEdge(ctx, Edge{From: "b", To: "a", Type: "calls-function", SourceFile: "b"})

	cycles, err := m.FindCycles(ctx, []string{"calls-function"}, 10)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, cycles[0])
}

func TestMemoryStore_Neighbors(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_, _ = m.UpsertNode(ctx, Node{ID: "a", Kind: KindFile})
	_, _ = m.UpsertNode(ctx, Node{ID: "b", Kind: KindFile})
	_, _ = m.UpsertEdge(ctx, Edge{From: "a", To: "b", Type: "imports_file", SourceFile: "a"})

	out, err := m.Neighbors(ctx, "a", DirectionOut, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)

	in, err := m.Neighbors(ctx, "b", DirectionIn, nil)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, "a", in[0].ID)
}
