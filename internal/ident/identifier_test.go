package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFile(t *testing.T) {
	id, err := BuildFile(Context{ProjectName: "myproj", RelativePath: "src/util.ts"})
	require.NoError(t, err)
	assert.Equal(t, "myproj/src/util.ts", id)
}

func TestBuildFile_NormalizesBackslashes(t *testing.T) {
	id, err := BuildFile(Context{ProjectName: "myproj", RelativePath: `src\util.ts`})
	require.NoError(t, err)
	assert.Equal(t, "myproj/src/util.ts", id)
}

func TestBuild_Symbol(t *testing.T) {
	id, err := Build(KindMethod, "Class.method", Context{ProjectName: "myproj", RelativePath: "src/a.ts"})
	require.NoError(t, err)
	assert.Equal(t, "myproj/src/a.ts#Method:Class.method", id)
}

func TestBuildLibrary(t *testing.T) {
	id, err := BuildLibrary("lodash", "4.17.21")
	require.NoError(t, err)
	assert.Equal(t, "library#lodash@4.17.21", id)

	id, err = BuildLibrary("lodash", "")
	require.NoError(t, err)
	assert.Equal(t, "library#lodash", id)
}

func TestParse_RoundTrip(t *testing.T) {
	cases := []struct {
		name string
		kind Kind
		sym  string
		ctx  Context
	}{
		{"file only", "", "", Context{ProjectName: "p", RelativePath: "a/b.go"}},
		{"method", KindMethod, "Foo.Bar", Context{ProjectName: "p", RelativePath: "a/b.go"}},
		{"qualified local", KindMethod, "Foo.Bar.local", Context{ProjectName: "p", RelativePath: "a/b.go"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var id string
			var err error
			if tc.kind == "" {
				id, err = BuildFile(tc.ctx)
			} else {
				id, err = Build(tc.kind, tc.sym, tc.ctx)
			}
			require.NoError(t, err)

			parsed, ok := Parse(id)
			require.True(t, ok)
			assert.Equal(t, tc.ctx.ProjectName, parsed.ProjectName)
			assert.Equal(t, tc.ctx.RelativePath, parsed.RelativePath)
			if tc.kind != "" {
				assert.Equal(t, tc.kind, parsed.SymbolKind)
				assert.Equal(t, tc.sym, parsed.SymbolName)
			}
		})
	}
}

func TestParse_Library(t *testing.T) {
	parsed, ok := Parse("library#react@18.2.0")
	require.True(t, ok)
	assert.Equal(t, FormLibrary, parsed.Form)
	assert.Equal(t, "react", parsed.LibraryName)
	assert.Equal(t, "18.2.0", parsed.LibraryVersion)

	parsed, ok = Parse("library#react")
	require.True(t, ok)
	assert.Equal(t, "react", parsed.LibraryName)
	assert.Equal(t, "", parsed.LibraryVersion)
}

func TestParse_Malformed(t *testing.T) {
	cases := []string{
		"",
		"noslash",
		"p/",
		"/a/b",
		"p/a#Method",          // missing ":"
		"p/a#Method:",         // empty symbol name
		"p/a#:Foo",            // empty kind
		"p/a/b#Method:Foo.",   // trailing dot
		"library#",
		"library#a@",
	}
	for _, c := range cases {
		_, ok := Parse(c)
		assert.Falsef(t, ok, "expected %q to be malformed", c)
	}
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate("myproj/a/b.go"))
	assert.False(t, Validate("bad id with spaces"))
}

func TestAreCoLocated(t *testing.T) {
	a, _ := BuildFile(Context{ProjectName: "p", RelativePath: "a/b.go"})
	m, _ := Build(KindMethod, "Foo.Bar", Context{ProjectName: "p", RelativePath: "a/b.go"})
	other, _ := BuildFile(Context{ProjectName: "p", RelativePath: "a/c.go"})

	assert.True(t, AreCoLocated(a, m))
	assert.False(t, AreCoLocated(a, other))
	assert.False(t, AreCoLocated(a, "library#react"))
}

func TestForbiddenCharacters(t *testing.T) {
	_, err := Build(KindMethod, "Foo:Bar", Context{ProjectName: "p", RelativePath: "a.go"})
	assert.Error(t, err)

	_, err = BuildFile(Context{ProjectName: "p", RelativePath: "a b.go"})
	assert.Error(t, err)
}
