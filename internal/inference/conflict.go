package inference

import "github.com/dusk-indust/codegraph/internal/ident"

// ResolveConflict implements spec §4.5.5: when inference produces multiple
// candidate edges between the same (from, to) pair under the same
// requested type — typically because more than one derivation path
// reaches the same target — apply the edge type's registered
// conflictPolicy to pick (or merge into) one winner.
//
// existingPriority/candidatePriority let priorityBased resolution compare
// the rule that produced each edge; callers that don't track per-rule
// priority can pass the edge type's registered Priority for both.
func ResolveConflict(policy ident.ConflictPolicy, existing, candidate ResolutionEdge) ResolutionEdge {
	switch policy {
	case ident.ConflictKeepExisting:
		return existing
	case ident.ConflictReplaceNew:
		return candidate
	case ident.ConflictMergeAttributes:
		merged := existing
		if merged.Attributes == nil {
			merged.Attributes = map[string]any{}
		}
		for k, v := range candidate.Attributes {
			if _, already := merged.Attributes[k]; !already {
				merged.Attributes[k] = v
			}
		}
		return merged
	case ident.ConflictPriorityBased:
		if candidate.Priority > existing.Priority {
			return candidate
		}
		return existing
	default:
		return existing
	}
}

// ResolutionEdge is the minimal shape ResolveConflict needs — callers
// adapt from store.Edge plus whatever priority their derivation rule
// carries (e.g. the edge type's registered ident.EdgeTypeDef.Priority, or
// the inverse of derivation depth so shorter paths win ties).
type ResolutionEdge struct {
	From, To, Type string
	Priority       int
	Attributes     map[string]any
}
