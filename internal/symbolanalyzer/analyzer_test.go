package symbolanalyzer

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codegraph/internal/analyzer"
	"github.com/dusk-indust/codegraph/internal/ident"
	"github.com/dusk-indust/codegraph/internal/store"
)

func mustReadFixture(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}

func findEdge(t *testing.T, edges []store.Edge, edgeType, to string) (store.Edge, bool) {
	t.Helper()
	for _, e := range edges {
		if e.Type == edgeType && e.To == to {
			return e, true
		}
	}
	return store.Edge{}, false
}

func findNode(nodes []store.Node, id string) (store.Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return store.Node{}, false
}

func TestSymbolAnalyzer_Go_ServiceFile(t *testing.T) {
	source := mustReadFixture(t, "../../testdata/fixtures/go_project/service.go")

	files := NewStaticFileSet([]string{"service.go", "model.go"})
	a := NewSymbolAnalyzer(files, nil)

	ac := analyzer.AnalysisContext{
		ProjectName: "proj",
		SourcePath:  "service.go",
		Source:      source,
		Language:    store.LangGo,
	}

	result, err := a.Analyze(ac)
	require.NoError(t, err)

	fileID := "proj/service.go"

	// "fmt" is not in the spec's literal builtin specifier list, so it is
	// classified as a library import: weight = 1 + 0.1*0 + 0.5 (library) = 1.5.
	libEdge, ok := findEdge(t, result.Edges, ident.EdgeImportsLibrary, "library#fmt")
	require.True(t, ok, "expected imports_library edge to library#fmt, got edges: %+v", result.Edges)
	assert.Equal(t, fileID, libEdge.From)
	assert.InDelta(t, 1.5, libEdge.Weight, 0.0001)

	// UserService struct is defined in this file.
	classID := "proj/service.go#Class:UserService"
	classNode, ok := findNode(result.Nodes, classID)
	require.True(t, ok, "expected class node %s, got nodes: %+v", classID, result.Nodes)
	assert.Equal(t, store.KindClass, classNode.Kind)

	_, ok = findEdge(t, result.Edges, ident.EdgeDefines, classID)
	assert.True(t, ok, "expected defines edge to %s", classID)

	// NewUserService is a package-level function, not a receiver method.
	fnID := "proj/service.go#Function:NewUserService"
	_, ok = findNode(result.Nodes, fnID)
	assert.True(t, ok, "expected function node %s", fnID)

	// GetUser and CreateUser are receiver methods on UserService.
	getUserID := "proj/service.go#Method:UserService.GetUser"
	getUserNode, ok := findNode(result.Nodes, getUserID)
	require.True(t, ok, "expected method node %s, got nodes: %+v", getUserID, result.Nodes)
	assert.Equal(t, store.KindMethod, getUserNode.Kind)
	assert.Equal(t, 2, getUserNode.Attributes["cyclomaticComplexity"])

	createUserID := "proj/service.go#Method:UserService.CreateUser"
	createUserNode, ok := findNode(result.Nodes, createUserID)
	require.True(t, ok, "expected method node %s", createUserID)
	assert.Equal(t, 2, createUserNode.Attributes["cyclomaticComplexity"])

	_, ok = findEdge(t, result.Edges, ident.EdgeContainsMethod, getUserID)
	assert.True(t, ok, "expected contains-method edge to %s", getUserID)

	// repo is a declared field on UserService.
	repoFieldID := "proj/service.go#Field:UserService.repo"
	_, ok = findNode(result.Nodes, repoFieldID)
	assert.True(t, ok, "expected field node %s, got nodes: %+v", repoFieldID, result.Nodes)
	_, ok = findEdge(t, result.Edges, ident.EdgeContainsField, repoFieldID)
	assert.True(t, ok, "expected contains-field edge to %s", repoFieldID)
}

func TestSymbolAnalyzer_Go_ModelFile(t *testing.T) {
	source := mustReadFixture(t, "../../testdata/fixtures/go_project/model.go")

	files := NewStaticFileSet([]string{"service.go", "model.go"})
	a := NewSymbolAnalyzer(files, nil)

	ac := analyzer.AnalysisContext{
		ProjectName: "proj",
		SourcePath:  "model.go",
		Source:      source,
		Language:    store.LangGo,
	}

	result, err := a.Analyze(ac)
	require.NoError(t, err)

	userClassID := "proj/model.go#Class:User"
	_, ok := findNode(result.Nodes, userClassID)
	assert.True(t, ok, "expected class node %s", userClassID)

	repoInterfaceID := "proj/model.go#Interface:Repository"
	repoNode, ok := findNode(result.Nodes, repoInterfaceID)
	require.True(t, ok, "expected interface node %s, got nodes: %+v", repoInterfaceID, result.Nodes)
	assert.Equal(t, store.KindInterface, repoNode.Kind)

	// newUser is an unexported package-level constructor function.
	newUserID := "proj/model.go#Function:newUser"
	_, ok = findNode(result.Nodes, newUserID)
	require.True(t, ok, "expected function node %s", newUserID)
	_, ok = findEdge(t, result.Edges, ident.EdgeDefines, newUserID)
	assert.True(t, ok, "expected defines edge to %s", newUserID)
}

func TestSymbolAnalyzer_SupportsLanguage(t *testing.T) {
	a := NewSymbolAnalyzer(NewStaticFileSet(nil), nil)
	assert.True(t, a.SupportsLanguage(store.LangGo))
	assert.True(t, a.SupportsLanguage(store.LangTypeScript))
	assert.True(t, a.SupportsLanguage(store.LangPython))
	assert.True(t, a.SupportsLanguage(store.LangRust))
	assert.False(t, a.SupportsLanguage(store.LangMarkdown))
}

func TestSymbolAnalyzer_Rust_ShapesFile(t *testing.T) {
	source := mustReadFixture(t, "../../testdata/fixtures/rust_project/shapes.rs")

	a := NewSymbolAnalyzer(NewStaticFileSet([]string{"shapes.rs"}), nil)
	ac := analyzer.AnalysisContext{
		ProjectName: "proj",
		SourcePath:  "shapes.rs",
		Source:      source,
		Language:    store.LangRust,
	}

	result, err := a.Analyze(ac)
	require.NoError(t, err)

	_, ok := findNode(result.Nodes, "proj/shapes.rs#Class:Circle")
	assert.True(t, ok, "expected a struct_item symbol for Circle, got nodes: %+v", result.Nodes)

	_, ok = findNode(result.Nodes, "proj/shapes.rs#Interface:Shape")
	assert.True(t, ok, "expected a trait_item symbol for Shape, got nodes: %+v", result.Nodes)

	_, ok = findNode(result.Nodes, "proj/shapes.rs#Function:describe")
	assert.True(t, ok, "expected a function_item symbol for describe, got nodes: %+v", result.Nodes)

	_, ok = findEdge(t, result.Edges, ident.EdgeImportsLibrary, "library#std.collections.HashMap")
	assert.True(t, ok, "expected an imports-library edge for the use declaration, got edges: %+v", result.Edges)
}

func TestSymbolAnalyzer_OwnedEdgeTypesIncludeImportsAndCalls(t *testing.T) {
	a := NewSymbolAnalyzer(NewStaticFileSet(nil), nil)
	owned := a.OwnedEdgeTypes()
	assert.Contains(t, owned, ident.EdgeImportsLibrary)
	assert.Contains(t, owned, ident.EdgeCallsMethod)
	assert.Contains(t, owned, ident.EdgeContainsMethod)
}
