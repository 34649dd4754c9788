package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dusk-indust/codegraph/internal/errs"
)

// Compile-time assertion: *MemoryStore satisfies GraphStore.
var _ GraphStore = (*MemoryStore)(nil)

// MemoryStore implements GraphStore with Go maps, guarded by a single
// RWMutex. It is the reference backend used by tests and by the CLI when
// no graph-database backend is configured.
//
// Grounded on the teacher's internal/graph.MemStore, generalized from
// file/symbol/cluster-specific maps to a single Node/Edge model keyed by
// the canonical identifiers in internal/ident, and extended with the
// cycle-aware recursive traversal the inference engine requires.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[string]Node
	edges map[string]Edge // keyed by edgeKey(from, to, type)
}

// NewMemoryStore returns an initialized MemoryStore ready for use.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[string]Node),
		edges: make(map[string]Edge),
	}
}

func edgeKey(from, to, typ string) string {
	return from + "\x00" + to + "\x00" + typ
}

// InitSchema is a no-op for the in-memory store.
func (m *MemoryStore) InitSchema(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

// UpsertNode stores or merges a node keyed by its identifier.
func (m *MemoryStore) UpsertNode(_ context.Context, node Node) (string, error) {
	if node.ID == "" {
		return "", errs.New(errs.ErrIdentifierInvalid, "MemoryStore.UpsertNode", "empty node id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.nodes[node.ID]; ok {
		node = mergeNode(existing, node)
	}
	m.nodes[node.ID] = node
	return node.ID, nil
}

// mergeNode merges incoming attributes/location over the existing node,
// implementing the upsert-on-reanalysis rule of spec §3.5.
func mergeNode(existing, incoming Node) Node {
	merged := incoming
	if merged.Attributes == nil {
		merged.Attributes = existing.Attributes
	} else {
		out := make(map[string]any, len(existing.Attributes)+len(merged.Attributes))
		for k, v := range existing.Attributes {
			out[k] = v
		}
		for k, v := range incoming.Attributes {
			out[k] = v
		}
		merged.Attributes = out
	}
	return merged
}

// UpsertEdge stores or merges an edge keyed by (from, to, type).
func (m *MemoryStore) UpsertEdge(_ context.Context, edge Edge) (string, error) {
	if edge.From == "" || edge.To == "" || edge.Type == "" {
		return "", errs.New(errs.ErrIdentifierInvalid, "MemoryStore.UpsertEdge", "edge missing from/to/type")
	}
	key := edgeKey(edge.From, edge.To, edge.Type)
	if edge.ID == "" {
		edge.ID = key
	}
	if edge.Weight == 0 {
		edge.Weight = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[key] = edge
	return edge.ID, nil
}

// WriteBatch upserts every node then every edge under a single lock
// acquisition, so a batch from one analyzer run is applied atomically with
// respect to concurrent readers. Every node and edge is checked before any
// is written, so an invalid entry leaves the store unchanged.
func (m *MemoryStore) WriteBatch(_ context.Context, nodes []Node, edges []Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range nodes {
		if n.ID == "" {
			return errs.New(errs.ErrIdentifierInvalid, "MemoryStore.WriteBatch", "empty node id")
		}
	}
	for _, e := range edges {
		if e.From == "" || e.To == "" || e.Type == "" {
			return errs.New(errs.ErrIdentifierInvalid, "MemoryStore.WriteBatch", "edge missing from/to/type")
		}
	}
	for _, n := range nodes {
		if existing, ok := m.nodes[n.ID]; ok {
			n = mergeNode(existing, n)
		}
		m.nodes[n.ID] = n
	}
	for _, e := range edges {
		key := edgeKey(e.From, e.To, e.Type)
		if e.ID == "" {
			e.ID = key
		}
		if e.Weight == 0 {
			e.Weight = 1
		}
		m.edges[key] = e
	}
	return nil
}

// FindNodes returns nodes matching filter, sorted by ID for determinism.
func (m *MemoryStore) FindNodes(_ context.Context, filter NodeFilter) ([]Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Node
	for _, n := range m.nodes {
		if filter.Kind != "" && n.Kind != filter.Kind {
			continue
		}
		if filter.Language != "" && n.Language != filter.Language {
			continue
		}
		if filter.SourceFile != "" && (n.Location == nil || n.Location.Path != filter.SourceFile) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// FindEdges returns edges matching filter, sorted by (type, from, to).
func (m *MemoryStore) FindEdges(_ context.Context, filter EdgeFilter) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	typeSet := toSet(filter.Types)
	var out []Edge
	for _, e := range m.edges {
		if filter.SourceFile != "" && e.SourceFile != filter.SourceFile {
			continue
		}
		if len(typeSet) > 0 && !typeSet[e.Type] {
			continue
		}
		if filter.From != "" && e.From != filter.From {
			continue
		}
		if filter.To != "" && e.To != filter.To {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out, nil
}

// Neighbors returns the nodes reachable from nodeID in one hop.
func (m *MemoryStore) Neighbors(_ context.Context, nodeID string, direction Direction, types []string) ([]Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	typeSet := toSet(types)
	seen := make(map[string]bool)
	var out []Node
	for _, e := range m.edges {
		if len(typeSet) > 0 && !typeSet[e.Type] {
			continue
		}
		var otherID string
		switch direction {
		case DirectionOut:
			if e.From != nodeID {
				continue
			}
			otherID = e.To
		case DirectionIn:
			if e.To != nodeID {
				continue
			}
			otherID = e.From
		default:
			return nil, fmt.Errorf("MemoryStore.Neighbors: unknown direction %q", direction)
		}
		if seen[otherID] {
			continue
		}
		seen[otherID] = true
		if n, ok := m.nodes[otherID]; ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteNode removes a node and every incident edge (spec §3.4 invariant 2).
func (m *MemoryStore) DeleteNode(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, id)
	for k, e := range m.edges {
		if e.From == id || e.To == id {
			delete(m.edges, k)
		}
	}
	return nil
}

// DeleteEdgesWhere removes every edge matching (sourceFile, types) and
// returns the count removed. An empty types slice is a no-op, preventing
// an analyzer with an empty OwnedEdgeTypes set from wiping a file's edges.
func (m *MemoryStore) DeleteEdgesWhere(_ context.Context, filter EdgeFilter) (int, error) {
	if len(filter.Types) == 0 {
		return 0, nil
	}
	typeSet := toSet(filter.Types)

	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for k, e := range m.edges {
		if e.SourceFile == filter.SourceFile && typeSet[e.Type] {
			delete(m.edges, k)
			count++
		}
	}
	return count, nil
}

// ShortestPath performs a BFS over the edge graph from "from" to "to".
func (m *MemoryStore) ShortestPath(_ context.Context, from, to string, maxDepth int) (*Path, error) {
	if from == to {
		return &Path{Nodes: []string{from}}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	adj := m.outAdjacencyLocked()

	type queueEntry struct {
		node string
		path []string
	}
	visited := map[string]bool{from: true}
	queue := []queueEntry{{node: from, path: []string{from}}}

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []queueEntry
		for _, entry := range queue {
			for _, nb := range adj[entry.node] {
				if visited[nb] {
					continue
				}
				newPath := append(append([]string(nil), entry.path...), nb)
				if nb == to {
					return &Path{Nodes: newPath}, nil
				}
				visited[nb] = true
				next = append(next, queueEntry{node: nb, path: newPath})
			}
		}
		queue = next
	}
	return nil, nil
}

func (m *MemoryStore) outAdjacencyLocked() map[string][]string {
	adj := make(map[string][]string)
	for _, e := range m.edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	return adj
}

// FindCycles enumerates simple cycles among edges of the given types,
// bounded by maxDepth, via DFS with an in-progress-path visited set.
func (m *MemoryStore) FindCycles(_ context.Context, types []string, maxDepth int) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	typeSet := toSet(types)
	adj := make(map[string][]string)
	for _, e := range m.edges {
		if len(typeSet) > 0 && !typeSet[e.Type] {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
	}

	var cycles [][]string
	seenCycle := make(map[string]bool)

	var starts []string
	for n := range m.nodes {
		starts = append(starts, n)
	}
	for n := range adj {
		if _, ok := m.nodes[n]; !ok {
			starts = append(starts, n)
		}
	}
	sort.Strings(starts)

	for _, start := range starts {
		path := []string{start}
		onPath := map[string]int{start: 0}
		var dfs func(node string)
		dfs = func(node string) {
			if len(path) > maxDepth {
				return
			}
			for _, nb := range adj[node] {
				if idx, ok := onPath[nb]; ok {
					cycle := append([]string(nil), path[idx:]...)
					key := cycleKey(cycle)
					if !seenCycle[key] {
						seenCycle[key] = true
						cycles = append(cycles, cycle)
					}
					continue
				}
				path = append(path, nb)
				onPath[nb] = len(path) - 1
				dfs(nb)
				path = path[:len(path)-1]
				delete(onPath, nb)
			}
		}
		dfs(start)
	}
	return cycles, nil
}

// cycleKey returns a rotation-invariant key for a cycle's node sequence, so
// the same cycle discovered from different start nodes is reported once.
func cycleKey(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	minIdx := 0
	for i, n := range cycle {
		if n < cycle[minIdx] {
			minIdx = i
		}
	}
	rotated := append(append([]string(nil), cycle[minIdx:]...), cycle[:minIdx]...)
	key := ""
	for _, n := range rotated {
		key += n + "\x00"
	}
	return key
}

// RunRecursive performs a cycle-aware recursive traversal from q.StartNode,
// following edges whose type is in q.EdgeTypes (or any type if empty), up
// to q.MaxDepth hops (spec §4.5.2).
func (m *MemoryStore) RunRecursive(_ context.Context, q RecursiveQuery) ([]RecursiveRow, error) {
	if q.StartNode == "" {
		return nil, fmt.Errorf("MemoryStore.RunRecursive: empty start node")
	}
	maxDepth := q.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 10
	}
	direction := q.Direction
	if direction == "" {
		direction = DirectionOut
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	typeSet := toSet(q.EdgeTypes)
	byType := make(map[string][]Edge)
	for _, e := range m.edges {
		if len(typeSet) > 0 && !typeSet[e.Type] {
			continue
		}
		byType[e.Type] = append(byType[e.Type], e)
	}

	type frame struct {
		node  string
		depth int
		path  []string
	}
	visited := map[string]bool{q.StartNode: true}
	queue := []frame{{node: q.StartNode, depth: 0, path: []string{q.StartNode}}}
	var rows []RecursiveRow

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		for typ, edgesOfType := range byType {
			for _, e := range edgesOfType {
				var from, to string
				switch direction {
				case DirectionIn:
					from, to = e.To, e.From
				default:
					from, to = e.From, e.To
				}
				if from != cur.node {
					continue
				}
				if q.DetectCycles && visited[to] {
					continue
				}
				newPath := append(append([]string(nil), cur.path...), to)
				rows = append(rows, RecursiveRow{
					From:  q.StartNode,
					To:    to,
					Type:  typ,
					Depth: cur.depth + 1,
					Path:  newPath,
				})
				if q.DetectCycles {
					visited[to] = true
				}
				queue = append(queue, frame{node: to, depth: cur.depth + 1, path: newPath})
			}
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Depth != rows[j].Depth {
			return rows[i].Depth < rows[j].Depth
		}
		if rows[i].To != rows[j].To {
			return rows[i].To < rows[j].To
		}
		return rows[i].Type < rows[j].Type
	})
	return rows, nil
}

// Stats returns counts of all node and edge kinds/types in the graph.
func (m *MemoryStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &GraphStats{
		NodeCount: len(m.nodes),
		EdgeCount: len(m.edges),
		ByKind:    make(map[Kind]int),
		ByType:    make(map[string]int),
	}
	for _, n := range m.nodes {
		stats.ByKind[n.Kind]++
	}
	for _, e := range m.edges {
		stats.ByType[e.Type]++
	}
	return stats, nil
}

func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}
