// Package analyzer implements the pluggable analysis framework (spec §4.3):
// ownership-scoped edge cleanup, extends-based execution ordering, the
// per-file context/result contract every concrete analyzer implements
// against, and the §6.3 registration interface (NodeKinds/EdgeTypes/
// SemanticTags advertisement) that lets a run assemble a project-wide
// TypeCollection.
//
// Grounded on the teacher's internal/orchestrator package: Framework plays
// the role the teacher's Router played (resolve-then-execute against a
// registry), and BatchRunner generalizes FanOut's errgroup-driven parallel
// dispatch. The teacher's buffered, drop-when-full ProgressReporter
// channel was not ported — BatchRunner's progress callback is invoked
// synchronously instead, see batch.go.
package analyzer

import (
	"context"
	"time"

	"github.com/dusk-indust/codegraph/internal/store"
)

// Diagnostic is a non-fatal finding surfaced by an analyzer — e.g. the
// MissingLink diagnostic the symbol analyzer emits for an unresolved
// import (spec §4.4.1, §7 FileNotFound downgrade).
type Diagnostic struct {
	Analyzer string
	Severity string // "info", "warning", "error"
	Message  string
	Location *store.Position
}

const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// AnalysisContext carries everything an analyzer needs to process one file
// (spec §4.3). SourcePath and Source are the file under analysis; Language
// has already been detected by the caller; Store gives read access to nodes
// and edges produced by earlier analyzers in the same run (e.g. the symbol
// analyzer's nodes, consumed by a hypothetical later analyzer).
//
// ParseResult, SharedData, PreviousResults, and TypeCollection are the
// §4.3 composition surface: a second analyzer can read a first analyzer's
// parsed tree, its free-form scratch data, or its full AnalyzerResult,
// instead of re-parsing or duplicating work. Framework populates
// SharedData, PreviousResults and TypeCollection once per file before
// running that file's analyzers in extends order; it does not set
// ParseResult, which stays as the caller passed it.
type AnalysisContext struct {
	Context     context.Context
	ProjectName string
	SourcePath  string
	Source      []byte
	Language    store.Language
	Store       store.GraphStore

	// ParseResult is the parsed syntax tree for Source, if the running
	// analyzer (or an earlier one in the same file's run) produced one.
	// Concretely a synquery.Tree; left untyped here so this package does
	// not need to import synquery for a value most analyzers never touch.
	ParseResult any

	// SharedData is free-form scratch space analyzers can use to pass
	// data to later analyzers in the same file's run without going
	// through the graph store (spec §4.3's "sharedData: KV").
	SharedData map[string]any

	// PreviousResults holds, keyed by Analyzer.Name, the AnalyzerResult of
	// every analyzer that has already run for this file in this run (spec
	// §4.3's motivating example: "the method analyzer reads symbol
	// declarations from the symbol analyzer").
	PreviousResults map[string]AnalyzerResult

	// TypeCollection is the union of every registered analyzer's
	// advertised NodeKinds/OwnedEdgeTypes/SemanticTags for the current
	// run (spec §6.3), computed once by Framework before any file runs.
	TypeCollection TypeCollection
}

// TypeCollection is the project-wide advertisement of every node kind,
// edge type, and semantic tag any registered analyzer can produce (spec
// §4.3 "typeCollection", §6.3 registration interface).
type TypeCollection struct {
	NodeKinds    []string
	EdgeTypes    []string
	SemanticTags []string
}

// AnalyzerResult is what an analyzer hands back to the framework for a
// single file: the nodes and edges to upsert, plus any diagnostics. The
// framework is responsible for committing these via WriteBatch and for
// deleting the analyzer's previously-owned edges first (spec §3.5, §4.3).
type AnalyzerResult struct {
	Nodes       []store.Node
	Edges       []store.Edge
	Diagnostics []Diagnostic
}

// Analyzer is the extension point concrete analyzers implement (spec
// §4.3). Name must be stable across runs — it is the registry key, the
// key of PreviousResults, and the name other analyzers list in Extends.
// Cleanup of an analyzer's prior output is scoped by the file and its
// OwnedEdgeTypes, not by Name.
type Analyzer interface {
	// Name uniquely identifies this analyzer in the framework's registry.
	Name() string

	// Extends names analyzers that must run, for the same file, before
	// this one. Used to compute a topological execution order (spec
	// §4.3's "ownership of specific edge types" plus ordering note).
	Extends() []string

	// OwnedEdgeTypes lists the edge types this analyzer exclusively
	// produces. On re-analysis the framework deletes exactly these types
	// for the file before invoking Analyze (spec §3.5, §4.3 cleanup
	// isolation, seed scenario 6).
	OwnedEdgeTypes() []string

	// NodeKinds lists the store.Kind values this analyzer can produce,
	// advertised for TypeCollection assembly (spec §6.3).
	NodeKinds() []string

	// SemanticTags lists the soft-label strings this analyzer can attach
	// to a node's Tags (spec §6.3, §4.4.3's tag set).
	SemanticTags() []string

	// SupportsLanguage reports whether this analyzer runs for lang (spec
	// §4.3 language gating). Analyzers that apply to every language
	// should return true unconditionally.
	SupportsLanguage(lang store.Language) bool

	// Analyze runs the analyzer against a single file.
	Analyze(ctx AnalysisContext) (AnalyzerResult, error)
}

// DefaultFileTimeout is the per-file analysis timeout applied by Framework
// unless overridden (spec §4.3, §5).
const DefaultFileTimeout = 30 * time.Second
