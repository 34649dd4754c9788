package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Hierarchy(t *testing.T) {
	r := NewDefaultTypeRegistry()

	assert.ElementsMatch(t, []string{EdgeImportsFile, EdgeImportsLibrary}, r.Children(EdgeImports))
	assert.Contains(t, r.Descendants(EdgeContains), EdgeDefines)
	assert.Equal(t, []string{EdgeImports}, r.Ancestors(EdgeImportsFile))
	assert.Equal(t, []string{EdgeImports, EdgeImportsFile}, r.HierarchyPath(EdgeImportsFile))

	result := r.ValidateHierarchy()
	assert.True(t, result.OK, "errors: %v", result.Errors)
}

func TestRegister_DuplicateRejected(t *testing.T) {
	r := NewDefaultTypeRegistry()
	err := r.Register(EdgeTypeDef{Name: EdgeImports})
	assert.ErrorContains(t, err, "already registered")
}

func TestRegister_UnknownParentRejected(t *testing.T) {
	r := NewTypeRegistry()
	err := r.Register(EdgeTypeDef{Name: "child", ParentType: "ghost"})
	assert.ErrorContains(t, err, "unknown")
}

func TestRegister_CycleRejected(t *testing.T) {
	r := NewTypeRegistry()
	require.NoError(t, r.Register(EdgeTypeDef{Name: "a"}))
	require.NoError(t, r.Register(EdgeTypeDef{Name: "b", ParentType: "a"}))

	// "a" already exists, so re-registering it under "b" should be rejected
	// both as a duplicate and, if that check were skipped, as a cycle.
	err := r.Register(EdgeTypeDef{Name: "a", ParentType: "b"})
	assert.Error(t, err)
}

func TestQueryTypes_UnionsDescendants(t *testing.T) {
	r := NewDefaultTypeRegistry()
	types := r.QueryTypes(EdgeImports)
	assert.ElementsMatch(t, []string{EdgeImports, EdgeImportsFile, EdgeImportsLibrary}, types)
}

func TestDescendants_NoChildren(t *testing.T) {
	r := NewDefaultTypeRegistry()
	assert.Empty(t, r.Descendants(EdgeAliasOf))
}
