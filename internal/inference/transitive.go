package inference

import (
	"context"

	"github.com/dusk-indust/codegraph/internal/errs"
	"github.com/dusk-indust/codegraph/internal/store"
)

// Transitive implements spec §4.5.2: the reachability closure from
// startNode along edgeType (and its registered descendants, since a
// transitive parent type's rows are transitive too), bounded by
// e.MaxPathLength. Only rows with depth > 1 are derived — depth-1 rows are
// the direct edges already present in the store, not inference output.
//
// Derived edges are never written back to the store as direct edges; they
// are recorded only in the derivation cache (spec §4.5.2 last line).
func (e *Engine) Transitive(ctx context.Context, startNode, edgeType string) ([]store.RecursiveRow, error) {
	def, err := e.edgeTypeDef("Engine.Transitive", edgeType)
	if err != nil {
		return nil, err
	}
	if !def.IsTransitive {
		return nil, errs.New(errs.ErrEdgeTypeUnknown, "Engine.Transitive", edgeType+" is not flagged isTransitive")
	}

	types := e.Registry.QueryTypes(edgeType)
	rows, err := e.Store.RunRecursive(ctx, store.RecursiveQuery{
		StartNode:    startNode,
		EdgeTypes:    types,
		Direction:    store.DirectionOut,
		MaxDepth:     e.MaxPathLength,
		DetectCycles: true,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrStoreError, "Engine.Transitive", err)
	}

	var derived []store.RecursiveRow
	for _, row := range rows {
		if row.Depth <= 1 {
			continue
		}
		if row.Depth > e.MaxPathLength {
			return nil, fmtDepthExceeded("Engine.Transitive", row.Depth, e.MaxPathLength)
		}
		row.Type = edgeType
		derived = append(derived, row)
		if e.Cache != nil {
			e.Cache.put(cacheKey{From: startNode, To: row.To, Type: edgeType}, CacheEntry{
				From: startNode, To: row.To, Type: edgeType,
				Depth: row.Depth, EdgePath: row.Path,
			})
		}
	}
	return derived, nil
}
