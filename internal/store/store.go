package store

import (
	"context"
	"io"
)

// GraphStore is the interface every persistence backend implements
// (spec §4.2). Implementations: MemoryStore (reference/testing), KuzuStore
// (graph-database backed, build-tagged cgo).
//
// Grounded on the teacher's internal/graph.Store interface, generalized
// from the teacher's fixed AddFile/AddSymbol/AddCluster write methods and
// File/Symbol-only reads to the spec's open Node/Edge model plus the
// recursive-traversal primitive the inference engine needs (spec §4.5.2).
type GraphStore interface {
	io.Closer

	// InitSchema performs any one-time backend setup (table/index
	// creation). A no-op for in-memory backends.
	InitSchema(ctx context.Context) error

	// UpsertNode inserts or merges a node keyed on its identifier
	// (spec §3.5: re-analysis upserts, never orphans).
	UpsertNode(ctx context.Context, node Node) (string, error)

	// UpsertEdge inserts or merges an edge keyed on (from, to, type).
	UpsertEdge(ctx context.Context, edge Edge) (string, error)

	// WriteBatch upserts a set of nodes and edges produced by one
	// analyzer run as a single unit, so that a mid-batch failure leaves
	// no partial writes for the file under analysis (spec §7: StoreError
	// aborts the current file's commit).
	WriteBatch(ctx context.Context, nodes []Node, edges []Edge) error

	FindNodes(ctx context.Context, filter NodeFilter) ([]Node, error)
	FindEdges(ctx context.Context, filter EdgeFilter) ([]Edge, error)

	// Neighbors returns nodes reachable in one hop from nodeID in the
	// given direction, optionally restricted to the given edge types.
	Neighbors(ctx context.Context, nodeID string, direction Direction, types []string) ([]Node, error)

	// DeleteNode removes a node and, atomically, every incident edge
	// (spec §3.4 invariant 2).
	DeleteNode(ctx context.Context, id string) error

	// DeleteEdgesWhere is the only path by which direct edges are
	// removed (spec §4.2, §4.3 cleanup isolation). It must match exactly
	// the rows a prior analyzer run inserted for the same
	// (sourceFile, types) pair. An empty types slice deletes nothing.
	DeleteEdgesWhere(ctx context.Context, filter EdgeFilter) (int, error)

	// ShortestPath runs a BFS over the edge graph from "from" to "to",
	// bounded by maxDepth hops. Returns nil, nil if no path is found
	// within the bound.
	ShortestPath(ctx context.Context, from, to string, maxDepth int) (*Path, error)

	// FindCycles enumerates cycles among edges of the given types (or any
	// type if empty), bounded by maxDepth.
	FindCycles(ctx context.Context, types []string, maxDepth int) ([][]string, error)

	// RunRecursive performs a cycle-aware recursive traversal
	// (spec §4.2, §4.5.2) — the primitive the inference engine builds
	// transitive/inheritable derivation on top of.
	RunRecursive(ctx context.Context, q RecursiveQuery) ([]RecursiveRow, error)

	Stats(ctx context.Context) (*GraphStats, error)
}
