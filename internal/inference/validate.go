package inference

import (
	"context"
	"fmt"
)

// ValidationResult mirrors spec §4.5.6's validate() contract.
type ValidationResult struct {
	Valid          bool
	Errors         []string
	Warnings       []string
	ValidatedCount int
}

// Validate implements spec §4.5.6: the edge-type hierarchy is a forest,
// cached derivations deeper than both depth bounds are warned about, every
// cached entry has a non-empty edgePath, and every cached entry of a
// transitive type is re-derived against the live store and warned about if
// it no longer appears. Entries of non-transitive types are not re-checked
// against the store.
func (e *Engine) Validate(ctx context.Context) (ValidationResult, error) {
	result := ValidationResult{Valid: true}

	hierarchy := e.Registry.ValidateHierarchy()
	if !hierarchy.OK {
		result.Valid = false
		result.Errors = append(result.Errors, hierarchy.Errors...)
	}

	entries := e.Cache.All()
	for _, entry := range entries {
		result.ValidatedCount++
		if entry.Depth > e.MaxPathLength && entry.Depth > e.MaxInheritanceDepth {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"cached derivation %s->%s (%s) exceeds both configured depth bounds at depth %d",
				entry.From, entry.To, entry.Type, entry.Depth))
		}
		if len(entry.EdgePath) == 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf(
				"cached derivation %s->%s (%s) has an empty edgePath", entry.From, entry.To, entry.Type))
			continue
		}
		if ok, err := e.resolvesToLiveEdges(ctx, entry); err != nil {
			return result, err
		} else if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"cached derivation %s->%s (%s) no longer resolves to extant direct edges; stale",
				entry.From, entry.To, entry.Type))
		}
	}

	return result, nil
}

// resolvesToLiveEdges re-derives entry's (From, To) pair fresh against the
// current store state and checks the cached result still appears,
// catching the case where an underlying edge was deleted without an
// explicit cache invalidation (manual policy).
func (e *Engine) resolvesToLiveEdges(ctx context.Context, entry CacheEntry) (bool, error) {
	def, ok := e.Registry.Get(entry.Type)
	if !ok {
		return false, nil
	}
	if def.IsTransitive {
		rows, err := e.Transitive(ctx, entry.From, entry.Type)
		if err != nil {
			return false, err
		}
		for _, r := range rows {
			if r.To == entry.To {
				return true, nil
			}
		}
		return false, nil
	}
	return true, nil // entries of non-transitive types are accepted without a store check
}
