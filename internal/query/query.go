// Package query exposes the graph's read-side operations as typed
// request/response pairs: dependency traversal, impact assessment,
// hierarchical edge-type queries, and symbol search.
//
// Grounded on the teacher's internal/mcptools (codeintel.go's
// BuildGraphInput/Output, GetDependenciesInput/Output,
// AssessImpactInput/Output, QuerySymbolsInput/Output families and
// handlers.go's method bodies). The teacher wraps this shape in an MCP
// tool server (modelcontextprotocol/go-sdk); that transport is dropped
// here since serving these operations over a network is out of scope —
// only the typed input/output shape and the Service method bodies that
// satisfy it survive, callable directly by cmd/codegraph.
package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/codegraph/internal/errs"
	"github.com/dusk-indust/codegraph/internal/ident"
	"github.com/dusk-indust/codegraph/internal/inference"
	"github.com/dusk-indust/codegraph/internal/store"
)

// Service holds the store and inference engine behind every query
// operation, the way the teacher's CodeIntelService holds a graph.Store
// and graph.Parser.
type Service struct {
	Store  store.GraphStore
	Engine *inference.Engine
}

// NewService builds a Service over an already-populated store and its
// paired inference engine.
func NewService(s store.GraphStore, engine *inference.Engine) *Service {
	return &Service{Store: s, Engine: engine}
}

// Direction selects which way a dependency traversal walks the graph,
// mirroring the teacher's graph.DirectionUpstream/DirectionDownstream.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what depends on nodeID (follows edges in)
	DirectionDownstream Direction = "downstream" // what nodeID depends on (follows edges out)
)

// DependenciesInput is the input to Dependencies.
type DependenciesInput struct {
	NodeID    string
	EdgeType  string // the hierarchical edge type to traverse, e.g. ident.EdgeDependsOn
	Direction Direction
	MaxDepth  int
}

// DependenciesOutput is the result of Dependencies.
type DependenciesOutput struct {
	Rows []store.RecursiveRow
}

const defaultMaxDepth = 5

// Dependencies traverses the dependency graph from a node, downstream
// (what it depends on) or upstream (what depends on it), bounded by
// maxDepth. For a transitive edge type walked downstream the rows come
// from Engine.Transitive instead: only rows deeper than 1 are returned,
// and the bound is the engine's MaxPathLength rather than maxDepth.
// Grounded on the teacher's CodeIntelService.GetDependencies.
func (s *Service) Dependencies(ctx context.Context, in DependenciesInput) (DependenciesOutput, error) {
	if in.NodeID == "" {
		return DependenciesOutput{}, fmt.Errorf("query.Dependencies: nodeID is required")
	}
	edgeType := in.EdgeType
	if edgeType == "" {
		edgeType = ident.EdgeDependsOn
	}
	maxDepth := in.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	dir := store.DirectionOut
	if in.Direction == DirectionUpstream {
		dir = store.DirectionIn
	}

	def, ok := s.Engine.Registry.Get(edgeType)
	if !ok {
		return DependenciesOutput{}, errs.New(errs.ErrEdgeTypeUnknown, "query.Dependencies", edgeType)
	}

	var rows []store.RecursiveRow
	var err error
	if def.IsTransitive && dir == store.DirectionOut {
		// Reuse the derivation engine so results are cached the same way
		// inference.Transitive produces them elsewhere.
		rows, err = s.Engine.Transitive(ctx, in.NodeID, edgeType)
	} else {
		rows, err = s.Store.RunRecursive(ctx, store.RecursiveQuery{
			StartNode:    in.NodeID,
			EdgeTypes:    s.Engine.Registry.QueryTypes(edgeType),
			Direction:    dir,
			MaxDepth:     maxDepth,
			DetectCycles: true,
		})
	}
	if err != nil {
		return DependenciesOutput{}, fmt.Errorf("query.Dependencies: %w", err)
	}
	return DependenciesOutput{Rows: rows}, nil
}

// ImpactInput is the input to AssessImpact.
type ImpactInput struct {
	ChangedFiles []string
	MaxDepth     int
}

// ImpactResult is the blast radius of modifying ChangedFiles: every node
// reachable by walking depends_on edges backward (in) from each changed
// file, i.e. everything that depends on a changed file, directly or
// transitively.
type ImpactResult struct {
	AffectedNodes []string
	ByChangedFile map[string][]string
}

// ImpactOutput is the result of AssessImpact.
type ImpactOutput struct {
	Impact ImpactResult
}

// AssessImpact computes the blast radius of modifying a set of files,
// grounded on the teacher's CodeIntelService.AssessImpact /
// graph.ImpactResult.
func (s *Service) AssessImpact(ctx context.Context, in ImpactInput) (ImpactOutput, error) {
	if len(in.ChangedFiles) == 0 {
		return ImpactOutput{}, fmt.Errorf("query.AssessImpact: changedFiles is required")
	}
	maxDepth := in.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	seen := make(map[string]bool)
	byFile := make(map[string][]string, len(in.ChangedFiles))
	for _, changed := range in.ChangedFiles {
		rows, err := s.Store.RunRecursive(ctx, store.RecursiveQuery{
			StartNode:    changed,
			EdgeTypes:    s.Engine.Registry.QueryTypes(ident.EdgeDependsOn),
			Direction:    store.DirectionIn,
			MaxDepth:     maxDepth,
			DetectCycles: true,
		})
		if err != nil {
			return ImpactOutput{}, fmt.Errorf("query.AssessImpact: %w", err)
		}
		var affected []string
		for _, r := range rows {
			if !seen[r.To] {
				seen[r.To] = true
			}
			affected = append(affected, r.To)
		}
		byFile[changed] = affected
	}

	all := make([]string, 0, len(seen))
	for n := range seen {
		all = append(all, n)
	}
	sort.Strings(all)

	return ImpactOutput{Impact: ImpactResult{AffectedNodes: all, ByChangedFile: byFile}}, nil
}

// HierarchicalInput is the input to Hierarchical.
type HierarchicalInput struct {
	From     string
	To       string
	EdgeType string
}

// HierarchicalOutput is the result of Hierarchical.
type HierarchicalOutput struct {
	Edges []store.Edge
}

// Hierarchical queries edges by parent type, returning the union of
// every registered descendant edge relabeled to the queried type
// (spec §4.5.1), delegated straight to inference.Engine.Hierarchical.
func (s *Service) Hierarchical(ctx context.Context, in HierarchicalInput) (HierarchicalOutput, error) {
	edges, err := s.Engine.Hierarchical(ctx, store.EdgeFilter{From: in.From, To: in.To}, in.EdgeType)
	if err != nil {
		return HierarchicalOutput{}, fmt.Errorf("query.Hierarchical: %w", err)
	}
	return HierarchicalOutput{Edges: edges}, nil
}

// SymbolSearchInput is the input to SymbolSearch.
type SymbolSearchInput struct {
	Query string // substring match against node name
	Kind  string // optional store.Kind filter
	Limit int
}

// SymbolSearchOutput is the result of SymbolSearch.
type SymbolSearchOutput struct {
	Nodes []store.Node
	Total int
}

const defaultSearchLimit = 20

// SymbolSearch searches for nodes by name substring, optionally filtered
// by kind, grounded on the teacher's CodeIntelService.QuerySymbols.
func (s *Service) SymbolSearch(ctx context.Context, in SymbolSearchInput) (SymbolSearchOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	filter := store.NodeFilter{Limit: 0} // the store has no name filter; filter in-process like the teacher's substring scan
	if in.Kind != "" {
		filter.Kind = store.Kind(strings.ToLower(in.Kind))
	}
	nodes, err := s.Store.FindNodes(ctx, filter)
	if err != nil {
		return SymbolSearchOutput{}, fmt.Errorf("query.SymbolSearch: %w", err)
	}

	var matched []store.Node
	for _, n := range nodes {
		if in.Query != "" && !strings.Contains(strings.ToLower(n.Name), strings.ToLower(in.Query)) {
			continue
		}
		matched = append(matched, n)
		if len(matched) >= limit {
			break
		}
	}
	return SymbolSearchOutput{Nodes: matched, Total: len(matched)}, nil
}
