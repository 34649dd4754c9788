package symbolanalyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyImport(t *testing.T) {
	cases := []struct {
		specifier string
		want      ImportKind
	}{
		{"./util", ImportRelative},
		{"../shared/util", ImportRelative},
		{"@/components/button", ImportAbsoluteProject},
		{"~/lib/db", ImportAbsoluteProject},
		{"fs", ImportBuiltin},
		{"path", ImportBuiltin},
		{"node:fs", ImportBuiltin},
		{"react", ImportLibrary},
		{"@scope/pkg", ImportLibrary},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyImport(c.specifier), c.specifier)
	}
}

func TestImportWeight(t *testing.T) {
	// Seed scenario 1: import resolution weight formula, recomputed
	// directly rather than copying the spec's own inconsistent worked
	// example (spec §4.4.1 step 4 caveat).
	cases := []struct {
		name           string
		kind           ImportKind
		importedItems  int
		hasDefault     bool
		want           float64
	}{
		{"relative, two named imports", ImportRelative, 2, false, 3.2},
		{"relative with default", ImportRelative, 1, true, 3.6},
		{"library default import", ImportLibrary, 1, true, 2.1},
		{"builtin namespace import", ImportBuiltin, 1, false, 1.2},
		{"absolute project, no items", ImportAbsoluteProject, 0, false, 2.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ImportWeight(c.kind, c.importedItems, c.hasDefault)
			assert.InDelta(t, c.want, got, 0.0001)
		})
	}
}

func TestResolveImportPath_RelativeWithExtensionProbing(t *testing.T) {
	files := NewStaticFileSet([]string{"src/service.ts", "src/util.ts", "src/lib/index.ts"})

	resolved, attempted, ok := ResolveImportPath(files, "src/service.ts", "./util", "typescript")
	require := assert.New(t)
	require.True(ok)
	require.Equal("src/util.ts", resolved)
	require.NotEmpty(attempted)
}

func TestResolveImportPath_FallsBackToIndex(t *testing.T) {
	files := NewStaticFileSet([]string{"src/service.ts", "src/lib/index.ts"})

	resolved, _, ok := ResolveImportPath(files, "src/service.ts", "./lib", "typescript")
	assert.True(t, ok)
	assert.Equal(t, "src/lib/index.ts", resolved)
}

func TestResolveImportPath_MissingProducesAttemptedList(t *testing.T) {
	// Seed scenario 2: missing import.
	files := NewStaticFileSet([]string{"src/service.ts"})

	resolved, attempted, ok := ResolveImportPath(files, "src/service.ts", "./missing", "typescript")
	assert.False(t, ok)
	assert.Empty(t, resolved)
	assert.Contains(t, attempted, "src/missing.ts")
	assert.Contains(t, attempted, "src/missing.tsx")
	assert.Contains(t, attempted, "src/missing/index.ts")
}

func TestResolveImportPath_LibraryNeverResolved(t *testing.T) {
	files := NewStaticFileSet([]string{"src/service.ts"})
	_, _, ok := ResolveImportPath(files, "src/service.ts", "react", "typescript")
	assert.False(t, ok)
}

func TestNewMissingLink_IncludesExpectedExtensionsAndSuggestion(t *testing.T) {
	link := newMissingLink("src/service.ts", "./missing", "typescript", []string{"src/missing.ts"})
	assert.Equal(t, "src/service.ts", link.SourceFile)
	assert.Equal(t, []string{".ts", ".tsx", ".d.ts"}, link.ExpectedExtensions)
	assert.NotEmpty(t, link.Suggestion)
}
