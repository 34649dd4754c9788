package synquery

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeSitterParser_ParseGoFixture(t *testing.T) {
	source, err := os.ReadFile("../../testdata/fixtures/go_project/service.go")
	require.NoError(t, err)

	p := NewTreeSitterParser()
	defer p.Close()

	tree, err := p.Parse(source, LangGo)
	require.NoError(t, err)
	defer tree.Close()

	var kinds []string
	Walk(tree.RootNode(), func(n Node) {
		kinds = append(kinds, n.Kind())
	})
	assert.Contains(t, kinds, "function_declaration")
	assert.Contains(t, kinds, "method_declaration")
	assert.Contains(t, kinds, "import_declaration")
}

func TestTreeSitterParser_FieldChildAndText(t *testing.T) {
	source, err := os.ReadFile("../../testdata/fixtures/go_project/service.go")
	require.NoError(t, err)

	p := NewTreeSitterParser()
	defer p.Close()
	tree, err := p.Parse(source, LangGo)
	require.NoError(t, err)
	defer tree.Close()

	var funcNames []string
	Walk(tree.RootNode(), func(n Node) {
		if n.Kind() != "function_declaration" {
			return
		}
		name := n.FieldChild("name")
		require.NotNil(t, name)
		funcNames = append(funcNames, name.Text(source))
	})
	assert.Contains(t, funcNames, "NewUserService")
}

func TestTreeSitterParser_UnsupportedLanguage(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()
	_, err := p.Parse([]byte("x"), Language("cobol"))
	assert.Error(t, err)
}

func TestTreeSitterParser_SupportedLanguages(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()
	langs := p.SupportedLanguages()
	assert.Contains(t, langs, LangGo)
	assert.Contains(t, langs, LangTypeScript)
	assert.Contains(t, langs, LangPython)
	assert.Contains(t, langs, LangRust)
}
