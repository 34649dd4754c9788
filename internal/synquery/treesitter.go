package synquery

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// TreeSitterParser implements Parser using tree-sitter grammars. A new
// tree-sitter parser is created per Parse call, matching the teacher's
// internal/graph.TreeSitterParser: safe for sequential use, but individual
// Parse calls are not thread-safe against each other.
type TreeSitterParser struct {
	languages map[Language]*tree_sitter.Language
}

// NewTreeSitterParser creates a TreeSitterParser with Go, TypeScript, TSX,
// Python, and Rust grammars registered.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{
		languages: map[Language]*tree_sitter.Language{
			LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			LangTSX:        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
			LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
	}
}

func (p *TreeSitterParser) Parse(source []byte, lang Language) (Tree, error) {
	tsLang, ok := p.languages[lang]
	if !ok {
		return nil, fmt.Errorf("synquery: unsupported language %q", lang)
	}

	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(tsLang); err != nil {
		parser.Close()
		return nil, fmt.Errorf("synquery: set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		parser.Close()
		return nil, fmt.Errorf("synquery: tree-sitter returned nil tree")
	}

	return &tsTree{parser: parser, tree: tree}, nil
}

func (p *TreeSitterParser) SupportedLanguages() []Language {
	out := make([]Language, 0, len(p.languages))
	for l := range p.languages {
		out = append(out, l)
	}
	return out
}

// Close is a no-op because parsers are created per Parse call.
func (p *TreeSitterParser) Close() error { return nil }

// tsTree wraps a *tree_sitter.Tree, keeping the owning *tree_sitter.Parser
// alive until Close so the underlying C buffers stay valid.
type tsTree struct {
	parser *tree_sitter.Parser
	tree   *tree_sitter.Tree
}

func (t *tsTree) RootNode() Node {
	root := t.tree.RootNode()
	return &tsNode{node: root}
}

func (t *tsTree) Close() {
	t.tree.Close()
	t.parser.Close()
}

// tsNode adapts *tree_sitter.Node to the synquery.Node interface.
type tsNode struct {
	node *tree_sitter.Node
}

func (n *tsNode) Kind() string { return n.node.Kind() }

func (n *tsNode) StartPoint() Point {
	p := n.node.StartPosition()
	return Point{Row: int(p.Row), Column: int(p.Column)}
}

func (n *tsNode) EndPoint() Point {
	p := n.node.EndPosition()
	return Point{Row: int(p.Row), Column: int(p.Column)}
}

func (n *tsNode) Text(source []byte) string { return n.node.Utf8Text(source) }

func (n *tsNode) ChildCount() int { return int(n.node.ChildCount()) }

func (n *tsNode) Child(i int) Node {
	c := n.node.Child(uint(i))
	if c == nil {
		return nil
	}
	return &tsNode{node: c}
}

func (n *tsNode) FieldChild(field string) Node {
	c := n.node.ChildByFieldName(field)
	if c == nil {
		return nil
	}
	return &tsNode{node: c}
}

func (n *tsNode) Walk() Cursor {
	return &tsCursor{cursor: n.node.Walk()}
}

// tsCursor adapts *tree_sitter.TreeCursor to the synquery.Cursor interface.
type tsCursor struct {
	cursor *tree_sitter.TreeCursor
}

func (c *tsCursor) Node() Node {
	n := c.cursor.Node()
	if n == nil {
		return nil
	}
	return &tsNode{node: n}
}

func (c *tsCursor) GotoFirstChild() bool  { return c.cursor.GotoFirstChild() }
func (c *tsCursor) GotoNextSibling() bool { return c.cursor.GotoNextSibling() }
func (c *tsCursor) GotoParent() bool      { return c.cursor.GotoParent() }
