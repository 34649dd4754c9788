package inference

import (
	"context"

	"github.com/dusk-indust/codegraph/internal/errs"
	"github.com/dusk-indust/codegraph/internal/store"
)

// Inheritable implements spec §4.5.3: given a parent relation (e.g.
// "contains") and an inheritable relation (e.g. "defines"), if
// `parent P child` (at any depth up to e.MaxInheritanceDepth) and
// `child R target`, derive `parent R target`.
func (e *Engine) Inheritable(ctx context.Context, startNode, parentType, inheritableType string) ([]store.Edge, error) {
	rDef, err := e.edgeTypeDef("Engine.Inheritable", inheritableType)
	if err != nil {
		return nil, err
	}
	if !rDef.IsInheritable {
		return nil, errs.New(errs.ErrEdgeTypeUnknown, "Engine.Inheritable", inheritableType+" is not flagged isInheritable")
	}
	if _, err := e.edgeTypeDef("Engine.Inheritable", parentType); err != nil {
		return nil, err
	}

	chain, err := e.Store.RunRecursive(ctx, store.RecursiveQuery{
		StartNode:    startNode,
		EdgeTypes:    e.Registry.QueryTypes(parentType),
		Direction:    store.DirectionOut,
		MaxDepth:     e.MaxInheritanceDepth,
		DetectCycles: true,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrStoreError, "Engine.Inheritable", err)
	}

	// Every node in the parent chain, startNode included, can directly own
	// an inheritable relation that propagates back up to startNode.
	descendants := []store.RecursiveRow{{From: startNode, To: startNode, Depth: 0, Path: []string{startNode}}}
	descendants = append(descendants, chain...)

	var derived []store.Edge
	rTypes := e.Registry.QueryTypes(inheritableType)
	for _, d := range descendants {
		if d.Depth > e.MaxInheritanceDepth {
			return nil, fmtDepthExceeded("Engine.Inheritable", d.Depth, e.MaxInheritanceDepth)
		}
		direct, err := e.Store.FindEdges(ctx, store.EdgeFilter{From: d.To, Types: rTypes})
		if err != nil {
			return nil, errs.Wrap(errs.ErrStoreError, "Engine.Inheritable", err)
		}
		for _, edge := range direct {
			if d.Depth == 0 && edge.From == startNode {
				continue // already a direct edge, not a derived one
			}
			path := append(append([]string(nil), d.Path...), edge.ID)
			derivedEdge := store.Edge{
				From: startNode, To: edge.To, Type: inheritableType,
				Label: edge.Type, Weight: edge.Weight, Derived: true,
				Attributes: map[string]any{"via": d.To, "depth": d.Depth + 1},
			}
			derived = append(derived, derivedEdge)
			if e.Cache != nil {
				e.Cache.put(cacheKey{From: startNode, To: edge.To, Type: inheritableType}, CacheEntry{
					From: startNode, To: edge.To, Type: inheritableType,
					Depth: d.Depth + 1, EdgePath: path,
				})
			}
		}
	}
	return sortedEdges(derived), nil
}
