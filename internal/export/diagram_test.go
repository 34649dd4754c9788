package export

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codegraph/internal/store"
)

func TestGenerateMermaid_GroupsByDirectoryAndDrawsImports(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.WriteBatch(ctx, []store.Node{
		{ID: "proj/pkg/a.go", Kind: store.KindFile, Name: "pkg/a.go"},
		{ID: "proj/pkg/b.go", Kind: store.KindFile, Name: "pkg/b.go"},
	}, nil))
	require.NoError(t, s.WriteBatch(ctx, nil, []store.Edge{
		{From: "proj/pkg/a.go", To: "proj/pkg/b.go", Type: "imports_file", SourceFile: "pkg/a.go"},
	}))

	diagram, err := GenerateMermaid(ctx, s, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(diagram, "graph TD\n"))
	assert.Contains(t, diagram, "subgraph")
	assert.Contains(t, diagram, "pkg/a.go")
	assert.Contains(t, diagram, "pkg/b.go")
	assert.Contains(t, diagram, "-->")
}

func TestGenerateMermaid_UngroupedEdgeTargetGetsItsOwnBox(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.WriteBatch(ctx, []store.Node{
		{ID: "proj/pkg/a.go", Kind: store.KindFile, Name: "pkg/a.go"},
	}, nil))
	require.NoError(t, s.WriteBatch(ctx, nil, []store.Edge{
		{From: "proj/pkg/a.go", To: "library#fmt", Type: "imports-library", SourceFile: "pkg/a.go"},
	}))

	diagram, err := GenerateMermaid(ctx, s, []string{"imports-library"})
	require.NoError(t, err)

	assert.Contains(t, diagram, "library#fmt")
}
