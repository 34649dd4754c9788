// Package inference implements the derivation layer that sits on top of a
// store.GraphStore: hierarchical query expansion, transitive closure,
// inheritable propagation, the derivation cache, and conflict resolution
// (spec §4.5).
//
// There is no teacher analog for this package — the example repos query
// their graphs directly with no derivation layer. It is built in the style
// established by internal/store and internal/ident: sentinel errors from
// internal/errs, context-first methods, and the same table-driven registry
// pattern internal/ident.TypeRegistry already uses for the edge-type
// forest this package walks.
package inference

import (
	"context"
	"fmt"
	"sort"

	"github.com/dusk-indust/codegraph/internal/errs"
	"github.com/dusk-indust/codegraph/internal/ident"
	"github.com/dusk-indust/codegraph/internal/store"
)

// Engine derives edges implied by existing edges and edge-type flags
// (spec §4.5's opening paragraph).
type Engine struct {
	Store    store.GraphStore
	Registry *ident.TypeRegistry
	Cache    *DerivationCache

	// MaxPathLength bounds transitive closure depth (spec §4.5.2, default 10).
	MaxPathLength int
	// MaxInheritanceDepth bounds inheritable-relation parent-chain walks
	// (spec §4.5.3).
	MaxInheritanceDepth int
}

const (
	DefaultMaxPathLength       = 10
	DefaultMaxInheritanceDepth = 10
)

// NewEngine builds an Engine with the spec's default depth bounds and an
// eager derivation cache.
func NewEngine(s store.GraphStore, registry *ident.TypeRegistry) *Engine {
	return &Engine{
		Store:               s,
		Registry:            registry,
		Cache:               NewDerivationCache(PolicyEager),
		MaxPathLength:       DefaultMaxPathLength,
		MaxInheritanceDepth: DefaultMaxInheritanceDepth,
	}
}

// Hierarchical implements spec §4.5.1: queries are expanded to the union of
// queryType and every registered descendant, and results are relabeled to
// queryType so callers see one logical edge type regardless of which
// concrete subtype produced each row.
func (e *Engine) Hierarchical(ctx context.Context, filter store.EdgeFilter, queryType string) ([]store.Edge, error) {
	if _, ok := e.Registry.Get(queryType); !ok {
		return nil, errs.New(errs.ErrEdgeTypeUnknown, "Engine.Hierarchical", queryType)
	}
	filter.Types = e.Registry.QueryTypes(queryType)
	edges, err := e.Store.FindEdges(ctx, filter)
	if err != nil {
		return nil, errs.Wrap(errs.ErrStoreError, "Engine.Hierarchical", err)
	}
	out := make([]store.Edge, len(edges))
	for i, edge := range edges {
		edge.Label = edge.Type
		edge.Type = queryType
		out[i] = edge
	}
	return out, nil
}

// edgeTypeDef is a small helper wrapping registry lookups with a consistent
// "unknown type" error, shared by transitive.go and inheritable.go.
func (e *Engine) edgeTypeDef(op, name string) (ident.EdgeTypeDef, error) {
	def, ok := e.Registry.Get(name)
	if !ok {
		return ident.EdgeTypeDef{}, errs.New(errs.ErrEdgeTypeUnknown, op, name)
	}
	return def, nil
}

// sortedEdges gives deterministic output ordering for any slice this
// package hands back (spec §4.4.4's determinism requirement applies
// equally to derived results).
func sortedEdges(edges []store.Edge) []store.Edge {
	out := append([]store.Edge(nil), edges...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].Type < out[j].Type
	})
	return out
}

func fmtDepthExceeded(op string, depth, max int) error {
	return errs.New(errs.ErrInferenceDepthExceeded, op, fmt.Sprintf("depth %d exceeds bound %d", depth, max))
}
