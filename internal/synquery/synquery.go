// Package synquery defines a generic syntax-tree facade (Parser, Tree,
// Node, Cursor) so that internal/symbolanalyzer depends only on an
// interface, never on a concrete parsing library directly (spec §1's
// framing that the analysis engine "uses a parser but does not implement
// one").
//
// Grounded on the teacher's internal/graph.Parser/TreeSitterParser, but
// generalized: the teacher's extractor interface returned its own
// SymbolNode/Edge types directly from a concrete *tree_sitter.Node,
// coupling parsing and symbol extraction into one package. Here Tree/Node
// are an open facade any backend can implement; the tree-sitter-backed
// treesitter.go is one such backend, kept as the reference implementation.
package synquery

// Point is a zero-based line/column source location, matching
// tree-sitter's convention. store.Position lines are one-based, so
// symbolanalyzer adds 1 to Row when it fills them.
type Point struct {
	Row    int
	Column int
}

// Node is a single syntax-tree node, named by its grammar's node-kind
// string (e.g. "function_declaration", "method_definition") so that
// per-language dispatch tables can switch on Kind() without needing the
// concrete parser type.
type Node interface {
	Kind() string
	StartPoint() Point
	EndPoint() Point
	Text(source []byte) string

	ChildCount() int
	Child(i int) Node

	// FieldChild returns the node assigned to a named grammar field (e.g.
	// tree-sitter's "name", "body", "parameters" fields), or nil if absent.
	FieldChild(field string) Node

	// Walk returns a Cursor positioned at this node, for depth-first
	// traversal without recursion-depth concerns on large files.
	Walk() Cursor
}

// Cursor performs an iterative depth-first walk of a Node's subtree,
// mirroring tree-sitter's TreeCursor without exposing its type.
type Cursor interface {
	Node() Node
	GotoFirstChild() bool
	GotoNextSibling() bool
	GotoParent() bool
}

// Tree is a parsed syntax tree for one source file.
type Tree interface {
	RootNode() Node
	Close()
}

// Language identifies a grammar understood by a Parser. Distinct from
// store.Language so synquery has no dependency on the store package;
// callers map between the two.
type Language string

// Parser parses source bytes into a Tree for one language.
type Parser interface {
	Parse(source []byte, lang Language) (Tree, error)
	SupportedLanguages() []Language
	Close() error
}

// Walk performs a full depth-first traversal of root, calling visit for
// every node including root itself, using Cursor rather than recursion so
// deeply nested trees (e.g. minified or generated sources) don't risk Go
// stack growth pathologies the teacher's recursive extractors would hit.
func Walk(root Node, visit func(Node)) {
	cursor := root.Walk()
	visit(cursor.Node())

	for {
		if cursor.GotoFirstChild() {
			visit(cursor.Node())
			continue
		}
		for !cursor.GotoNextSibling() {
			if !cursor.GotoParent() {
				return
			}
		}
		visit(cursor.Node())
	}
}
