// Package symbolanalyzer implements the core syntactic analyzer (spec
// §4.4): import extraction and resolution, symbol extraction, and
// method/field analysis with cyclomatic complexity and semantic tagging.
//
// Grounded on the teacher's internal/graph package (TreeSitterParser,
// Resolver, per-language extractors), restructured around
// internal/synquery's generic parser facade and internal/ident's
// identifier grammar instead of the teacher's single flat "filePath:name"
// symbol key.
package symbolanalyzer

import (
	"fmt"
	"sort"

	"github.com/dusk-indust/codegraph/internal/analyzer"
	"github.com/dusk-indust/codegraph/internal/ident"
	"github.com/dusk-indust/codegraph/internal/store"
	"github.com/dusk-indust/codegraph/internal/synquery"
)

// ownedEdgeTypes lists every edge type this analyzer exclusively produces
// (spec §4.4's opening paragraph).
var ownedEdgeTypes = []string{
	ident.EdgeImportsLibrary, ident.EdgeImportsFile, ident.EdgeUses, ident.EdgeAliasOf,
	ident.EdgeDefines, ident.EdgeContainsMethod, ident.EdgeContainsField,
	ident.EdgeCallsMethod, ident.EdgeAccessesField, ident.EdgeOverridesMethod,
	ident.EdgeUsesType, ident.EdgeThrows,
}

// SymbolAnalyzer is the analyzer.Analyzer implementation for import,
// symbol, and method/field extraction.
type SymbolAnalyzer struct {
	Parser   synquery.Parser
	Files    FileSet
	Packages PackageResolver
}

// NewSymbolAnalyzer creates a SymbolAnalyzer backed by a tree-sitter
// parser. files should contain every repo-relative path in the project
// being analyzed, for import resolution.
func NewSymbolAnalyzer(files FileSet, packages PackageResolver) *SymbolAnalyzer {
	if packages == nil {
		packages = NoopPackageResolver{}
	}
	return &SymbolAnalyzer{
		Parser:   synquery.NewTreeSitterParser(),
		Files:    files,
		Packages: packages,
	}
}

// ownedNodeKinds lists every store.Kind this analyzer can emit, advertised
// for TypeCollection assembly (spec §6.3).
var ownedNodeKinds = []string{
	string(store.KindFile), string(store.KindClass), string(store.KindInterface),
	string(store.KindFunction), string(store.KindMethod), string(store.KindField),
	string(store.KindLibrary), string(store.KindUnknown),
}

// ownedSemanticTags lists every soft-label semanticTags (methods.go) can
// attach to a method node (spec §4.4.3, §6.3).
var ownedSemanticTags = []string{
	"constructor", "static-method", "async-method", "accessor",
	"high-complexity", "recursive", "pure-function", "heuristic:true",
}

func (a *SymbolAnalyzer) Name() string            { return "symbolanalyzer" }
func (a *SymbolAnalyzer) Extends() []string        { return nil }
func (a *SymbolAnalyzer) OwnedEdgeTypes() []string { return ownedEdgeTypes }
func (a *SymbolAnalyzer) NodeKinds() []string      { return ownedNodeKinds }
func (a *SymbolAnalyzer) SemanticTags() []string   { return ownedSemanticTags }

func (a *SymbolAnalyzer) SupportsLanguage(lang store.Language) bool {
	_, ok := profileFor(lang)
	return ok
}

func (a *SymbolAnalyzer) Analyze(ac analyzer.AnalysisContext) (analyzer.AnalyzerResult, error) {
	profile, ok := profileFor(ac.Language)
	if !ok {
		return analyzer.AnalyzerResult{}, fmt.Errorf("symbolanalyzer: unsupported language %q", ac.Language)
	}
	sqLang, ok := synqueryLanguage(ac.Language)
	if !ok {
		return analyzer.AnalyzerResult{}, fmt.Errorf("symbolanalyzer: no parser grammar for %q", ac.Language)
	}

	// A tree the caller supplied in ac.ParseResult is used as is (spec
	// §4.3's parseResult); otherwise the source is parsed here and that
	// tree is closed when Analyze returns.
	tree, ok := ac.ParseResult.(synquery.Tree)
	if !ok {
		parsed, err := a.Parser.Parse(ac.Source, sqLang)
		if err != nil {
			return analyzer.AnalyzerResult{}, fmt.Errorf("symbolanalyzer: parse %s: %w", ac.SourcePath, err)
		}
		defer parsed.Close()
		tree = parsed
	}
	root := tree.RootNode()

	idCtx := ident.Context{ProjectName: ac.ProjectName, RelativePath: ac.SourcePath}
	fileID, err := ident.BuildFile(idCtx)
	if err != nil {
		return analyzer.AnalyzerResult{}, fmt.Errorf("symbolanalyzer: %w", err)
	}

	b := newResultBuilder(fileID, ac.SourcePath, ac.Language)

	a.analyzeImports(b, root, profile, ac, idCtx, fileID)

	symbols := ExtractSymbols(root, profile, ac.Source, ac.SourcePath)
	symbolIDs := a.analyzeSymbols(b, symbols, idCtx, fileID)

	methods := ExtractMethods(root, profile, ac.Source, symbols)
	a.analyzeMethodsAndFields(b, symbols, methods, profile, ac.Source, idCtx, fileID, symbolIDs)

	return b.result(), nil
}

// synqueryLanguage maps store.Language onto the grammar identifiers
// synquery.TreeSitterParser registers.
func synqueryLanguage(lang store.Language) (synquery.Language, bool) {
	switch lang {
	case store.LangGo:
		return synquery.LangGo, true
	case store.LangTypeScript:
		return synquery.LangTypeScript, true
	case store.LangTSX:
		return synquery.LangTSX, true
	case store.LangPython:
		return synquery.LangPython, true
	case store.LangRust:
		return synquery.LangRust, true
	default:
		return "", false
	}
}

// resultBuilder accumulates nodes/edges/diagnostics and deduplicates them
// by identifier before handing back an analyzer.AnalyzerResult (spec
// §4.4.4: dedup, deterministic sort by identifier then edge type).
type resultBuilder struct {
	fileID     string
	sourcePath string
	lang       store.Language

	nodes      map[string]store.Node
	edges      map[string]store.Edge
	diagnostics []analyzer.Diagnostic
}

func newResultBuilder(fileID, sourcePath string, lang store.Language) *resultBuilder {
	b := &resultBuilder{
		fileID:     fileID,
		sourcePath: sourcePath,
		lang:       lang,
		nodes:      make(map[string]store.Node),
		edges:      make(map[string]store.Edge),
	}
	b.nodes[fileID] = store.Node{ID: fileID, Kind: store.KindFile, Name: sourcePath, Language: lang,
		Location: &store.Position{Path: sourcePath}}
	return b
}

func (b *resultBuilder) addNode(n store.Node) { b.nodes[n.ID] = n }

func (b *resultBuilder) addEdge(e store.Edge) {
	e.SourceFile = b.sourcePath
	key := e.From + "->" + e.To + ":" + e.Type
	if e.ID == "" {
		e.ID = key
	}
	b.edges[key] = e
}

func (b *resultBuilder) addDiagnostic(d analyzer.Diagnostic) {
	b.diagnostics = append(b.diagnostics, d)
}

func (b *resultBuilder) result() analyzer.AnalyzerResult {
	nodeIDs := make([]string, 0, len(b.nodes))
	for id := range b.nodes {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)
	nodes := make([]store.Node, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		nodes = append(nodes, b.nodes[id])
	}

	edgeKeys := make([]string, 0, len(b.edges))
	for k := range b.edges {
		edgeKeys = append(edgeKeys, k)
	}
	sort.Slice(edgeKeys, func(i, j int) bool {
		ei, ej := b.edges[edgeKeys[i]], b.edges[edgeKeys[j]]
		if ei.From != ej.From {
			return ei.From < ej.From
		}
		if ei.To != ej.To {
			return ei.To < ej.To
		}
		return ei.Type < ej.Type
	})
	edges := make([]store.Edge, 0, len(edgeKeys))
	for _, k := range edgeKeys {
		edges = append(edges, b.edges[k])
	}

	return analyzer.AnalyzerResult{Nodes: nodes, Edges: edges, Diagnostics: b.diagnostics}
}

// identKindToStoreKind maps the identifier grammar's capitalized Kind
// segment onto the graph store's lowercase Kind enumeration.
func identKindToStoreKind(k ident.Kind) store.Kind {
	switch k {
	case ident.KindClass:
		return store.KindClass
	case ident.KindInterface:
		return store.KindInterface
	case ident.KindFunction:
		return store.KindFunction
	case ident.KindMethod:
		return store.KindMethod
	case ident.KindField:
		return store.KindField
	case ident.KindHeading:
		return store.KindHeading
	default:
		return store.KindUnknown
	}
}
