// Package store defines the typed node/edge model and the GraphStore
// contract (spec §3.1, §4.2) that every persistence backend implements.
//
// Grounded on the teacher's internal/graph/schema.go, generalized from the
// teacher's fixed File/Symbol/Cluster node kinds and File/Symbol-only edge
// model to the spec's open node-kind enumeration and typed edge-attribute
// model keyed by the RDF-style identifiers in internal/ident.
package store

// Kind classifies a Node (spec §3.1). The set is extensible — analyzers may
// introduce new kinds by simply using them; nothing in this package closes
// the enumeration.
type Kind string

const (
	KindFile      Kind = "file"
	KindLibrary   Kind = "library"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindMethod    Kind = "method"
	KindFunction  Kind = "function"
	KindField     Kind = "field"
	KindHeading   Kind = "heading"
	KindUnknown   Kind = "unknown"
)

// Language identifies the source language of a Node or analysis run
// (spec §6.4).
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
	LangJSX        Language = "jsx"
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangMarkdown   Language = "markdown"
	LangExternal   Language = "external"
	LangUnknown    Language = "unknown"
)

// Position is a Node's optional source location (spec §3.1).
type Position struct {
	Path       string
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
}

// Node represents a code artifact (spec §3.1).
type Node struct {
	ID         string
	Kind       Kind
	Name       string
	Location   *Position
	Language   Language
	Attributes map[string]any
}

// Edge is a typed, directed relation between two nodes (spec §3.1).
type Edge struct {
	ID         string
	From       string
	To         string
	Type       string
	Label      string
	Weight     float64
	SourceFile string // required: the file whose analysis produced this edge
	Attributes map[string]any
	Derived    bool
}

// NodeFilter selects nodes for FindNodes.
type NodeFilter struct {
	Kind       Kind
	SourceFile string
	Language   Language
	Limit      int
	Offset     int
}

// EdgeFilter selects edges for FindEdges and DeleteEdgesWhere. A zero-value
// Types means "all types"; DeleteEdgesWhere treats an empty Types slice as
// "delete nothing" to avoid accidental full-file wipes (see store.go).
// DeleteEdgesWhere matches on SourceFile and Types only; From and To are
// ignored there.
type EdgeFilter struct {
	SourceFile string
	Types      []string
	From       string
	To         string
}

// Direction controls traversal direction for Neighbors and recursive
// queries (spec §4.2).
type Direction string

const (
	DirectionOut Direction = "out"
	DirectionIn  Direction = "in"
)

// GraphStats summarizes the size of a graph (used by CLI/query reporting).
type GraphStats struct {
	NodeCount int
	EdgeCount int
	ByKind    map[Kind]int
	ByType    map[string]int
}

// Path is the sequence of node IDs returned by ShortestPath. Neither
// backend's ShortestPath fills Edges.
type Path struct {
	Nodes []string
	Edges []string
}

// RecursiveQuery parameterizes RunRecursive (spec §4.2, §4.5.2): a
// traversal starting at StartNode, following edges whose type is in
// EdgeTypes (or any type if empty), bounded by MaxDepth, optionally
// cutting cycles via a visited-node-id set.
type RecursiveQuery struct {
	StartNode    string
	EdgeTypes    []string
	Direction    Direction
	MaxDepth     int
	DetectCycles bool
}

// RecursiveRow is one result row of a recursive traversal: a derived
// from/to pair, the type of the last edge traversed to reach To, the
// depth at which it was found,
// and the node-id path used to reach it (spec §4.5.2's edge_path /
// visited_nodes state, made explicit here as a slice rather than a
// comma-joined string).
type RecursiveRow struct {
	From  string
	To    string
	Type  string
	Depth int
	Path  []string
}
