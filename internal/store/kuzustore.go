//go:build cgo

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements GraphStore using KuzuDB as the graph backend. It
// requires CGO because the go-kuzu driver wraps KuzuDB's C library.
//
// Grounded on the teacher's internal/graph.KuzuStore, generalized from the
// teacher's fixed File/Symbol/Cluster node tables and six hardcoded
// relationship tables to the spec's open node/edge-type model: a single
// Node table and a single Edge table, with Attributes stored as a JSON
// string column (Kuzu's typed schema has no convenient arbitrary-map type
// across versions, so this follows the spec §9 "reflection / dynamic
// attribute maps" note — a typed core plus an opaque pass-through blob).
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

var _ GraphStore = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path, so the code graph survives across process runs.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open file database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema. Node tables
// must precede relationship tables; Edge references CodeNode on both ends.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS CodeNode(
		id STRING,
		kind STRING,
		name STRING,
		language STRING,
		source_path STRING,
		start_line INT64,
		start_col INT64,
		end_line INT64,
		end_col INT64,
		attributes STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS CodeEdge(
		FROM CodeNode TO CodeNode,
		id STRING,
		type STRING,
		label STRING,
		weight DOUBLE,
		source_file STRING,
		attributes STRING,
		derived BOOLEAN
	)`,
	`CREATE NODE TABLE IF NOT EXISTS InferenceCache(
		cache_key STRING,
		from_id STRING,
		to_id STRING,
		type STRING,
		depth INT64,
		edge_path STRING,
		computed_at STRING,
		PRIMARY KEY(cache_key)
	)`,
}

func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

func (s *KuzuStore) UpsertNode(_ context.Context, node Node) (string, error) {
	attrs, err := json.Marshal(node.Attributes)
	if err != nil {
		return "", fmt.Errorf("kuzu: marshal attributes: %w", err)
	}
	loc := node.Location
	if loc == nil {
		loc = &Position{}
	}
	err = s.exec(
		`MERGE (n:CodeNode {id: $id})
		 SET n.kind = $kind, n.name = $name, n.language = $lang,
		     n.source_path = $path, n.start_line = $sl, n.start_col = $sc,
		     n.end_line = $el, n.end_col = $ec, n.attributes = $attrs`,
		map[string]any{
			"id": node.ID, "kind": string(node.Kind), "name": node.Name,
			"lang": string(node.Language), "path": loc.Path,
			"sl": int64(loc.StartLine), "sc": int64(loc.StartCol),
			"el": int64(loc.EndLine), "ec": int64(loc.EndCol),
			"attrs": string(attrs),
		},
	)
	if err != nil {
		return "", err
	}
	return node.ID, nil
}

func (s *KuzuStore) UpsertEdge(_ context.Context, edge Edge) (string, error) {
	attrs, err := json.Marshal(edge.Attributes)
	if err != nil {
		return "", fmt.Errorf("kuzu: marshal attributes: %w", err)
	}
	if edge.Weight == 0 {
		edge.Weight = 1
	}
	if edge.ID == "" {
		edge.ID = edge.From + "->" + edge.To + ":" + edge.Type
	}
	err = s.exec(
		`MATCH (a:CodeNode {id: $from}), (b:CodeNode {id: $to})
		 MERGE (a)-[e:CodeEdge {type: $type, id: $id}]->(b)
		 SET e.label = $label, e.weight = $weight, e.source_file = $sf,
		     e.attributes = $attrs, e.derived = $derived`,
		map[string]any{
			"from": edge.From, "to": edge.To, "type": edge.Type, "id": edge.ID,
			"label": edge.Label, "weight": edge.Weight, "sf": edge.SourceFile,
			"attrs": string(attrs), "derived": edge.Derived,
		},
	)
	if err != nil {
		return "", err
	}
	return edge.ID, nil
}

// WriteBatch applies every node then every edge. KuzuDB's Go driver does
// not expose multi-statement transactions through this package's query
// surface, so "atomic" here means "ordered and fail-fast": a failure
// partway through still leaves earlier upserts of this call committed,
// which callers must treat the same as any other StoreError (spec §7).
func (s *KuzuStore) WriteBatch(ctx context.Context, nodes []Node, edges []Edge) error {
	for _, n := range nodes {
		if _, err := s.UpsertNode(ctx, n); err != nil {
			return err
		}
	}
	for _, e := range edges {
		if _, err := s.UpsertEdge(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// ---------- Read operations ----------

func (s *KuzuStore) FindNodes(_ context.Context, filter NodeFilter) ([]Node, error) {
	cypher := "MATCH (n:CodeNode) WHERE 1=1"
	params := map[string]any{}
	if filter.Kind != "" {
		cypher += " AND n.kind = $kind"
		params["kind"] = string(filter.Kind)
	}
	if filter.Language != "" {
		cypher += " AND n.language = $lang"
		params["lang"] = string(filter.Language)
	}
	if filter.SourceFile != "" {
		cypher += " AND n.source_path = $path"
		params["path"] = filter.SourceFile
	}
	cypher += ` RETURN n.id, n.kind, n.name, n.language, n.source_path,
	                   n.start_line, n.start_col, n.end_line, n.end_col, n.attributes
	            ORDER BY n.id`
	if filter.Limit > 0 {
		cypher += fmt.Sprintf(" SKIP %d LIMIT %d", filter.Offset, filter.Limit)
	}

	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToNode(r))
	}
	return out, nil
}

func (s *KuzuStore) FindEdges(_ context.Context, filter EdgeFilter) ([]Edge, error) {
	cypher := "MATCH (a:CodeNode)-[e:CodeEdge]->(b:CodeNode) WHERE 1=1"
	params := map[string]any{}
	if filter.SourceFile != "" {
		cypher += " AND e.source_file = $sf"
		params["sf"] = filter.SourceFile
	}
	if filter.From != "" {
		cypher += " AND a.id = $from"
		params["from"] = filter.From
	}
	if filter.To != "" {
		cypher += " AND b.id = $to"
		params["to"] = filter.To
	}
	if len(filter.Types) > 0 {
		cypher += " AND e.type IN $types"
		params["types"] = filter.Types
	}
	cypher += ` RETURN a.id, b.id, e.id, e.type, e.label, e.weight, e.source_file, e.attributes, e.derived
	            ORDER BY e.type, a.id, b.id`

	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]Edge, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToEdge(r))
	}
	return out, nil
}

func (s *KuzuStore) Neighbors(_ context.Context, nodeID string, direction Direction, types []string) ([]Node, error) {
	var cypher string
	switch direction {
	case DirectionIn:
		cypher = "MATCH (a:CodeNode)-[e:CodeEdge]->(b:CodeNode {id: $id})"
	default:
		cypher = "MATCH (a:CodeNode {id: $id})-[e:CodeEdge]->(b:CodeNode)"
	}
	params := map[string]any{"id": nodeID}
	if len(types) > 0 {
		cypher += " WHERE e.type IN $types"
		params["types"] = types
	}
	if direction == DirectionIn {
		cypher += ` RETURN DISTINCT a.id, a.kind, a.name, a.language, a.source_path,
		                            a.start_line, a.start_col, a.end_line, a.end_col, a.attributes`
	} else {
		cypher += ` RETURN DISTINCT b.id, b.kind, b.name, b.language, b.source_path,
		                            b.start_line, b.start_col, b.end_line, b.end_col, b.attributes`
	}

	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToNode(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *KuzuStore) DeleteNode(_ context.Context, id string) error {
	return s.exec("MATCH (n:CodeNode {id: $id}) DETACH DELETE n", map[string]any{"id": id})
}

func (s *KuzuStore) DeleteEdgesWhere(_ context.Context, filter EdgeFilter) (int, error) {
	if len(filter.Types) == 0 {
		return 0, nil
	}
	rows, err := s.query(
		`MATCH ()-[e:CodeEdge]->() WHERE e.source_file = $sf AND e.type IN $types RETURN count(e)`,
		map[string]any{"sf": filter.SourceFile, "types": filter.Types},
	)
	if err != nil {
		return 0, err
	}
	count := 0
	if len(rows) > 0 && len(rows[0]) > 0 {
		count = toInt(rows[0][0])
	}
	if err := s.exec(
		`MATCH ()-[e:CodeEdge]->() WHERE e.source_file = $sf AND e.type IN $types DELETE e`,
		map[string]any{"sf": filter.SourceFile, "types": filter.Types},
	); err != nil {
		return 0, err
	}
	return count, nil
}

// ---------- Graph traversal ----------

// ShortestPath performs a BFS one hop at a time via fileNeighbors-style
// queries, the way the teacher's GetDependencies walked IMPORTS edges.
func (s *KuzuStore) ShortestPath(ctx context.Context, from, to string, maxDepth int) (*Path, error) {
	if from == to {
		return &Path{Nodes: []string{from}}, nil
	}
	visited := map[string]bool{from: true}
	type entry struct{ path []string }
	queue := []entry{{path: []string{from}}}

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []entry
		for _, e := range queue {
			tip := e.path[len(e.path)-1]
			neighbors, err := s.idNeighbors(tip, DirectionOut, nil)
			if err != nil {
				return nil, err
			}
			for _, nb := range neighbors {
				if visited[nb] {
					continue
				}
				newPath := append(append([]string(nil), e.path...), nb)
				if nb == to {
					return &Path{Nodes: newPath}, nil
				}
				visited[nb] = true
				next = append(next, entry{path: newPath})
			}
		}
		queue = next
	}
	return nil, nil
}

func (s *KuzuStore) idNeighbors(id string, direction Direction, types []string) ([]string, error) {
	nodes, err := s.Neighbors(context.Background(), id, direction, types)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids, nil
}

// FindCycles enumerates simple cycles the same way MemoryStore does:
// DFS with an in-progress-path visited set, driven by one-hop Cypher
// lookups rather than an in-process adjacency map.
func (s *KuzuStore) FindCycles(ctx context.Context, types []string, maxDepth int) ([][]string, error) {
	rows, err := s.FindNodes(ctx, NodeFilter{})
	if err != nil {
		return nil, err
	}
	adj := make(map[string][]string)
	for _, n := range rows {
		nbs, err := s.idNeighbors(n.ID, DirectionOut, types)
		if err != nil {
			return nil, err
		}
		adj[n.ID] = nbs
	}

	var cycles [][]string
	seenCycle := make(map[string]bool)
	for _, n := range rows {
		path := []string{n.ID}
		onPath := map[string]int{n.ID: 0}
		var dfs func(node string)
		dfs = func(node string) {
			if len(path) > maxDepth {
				return
			}
			for _, nb := range adj[node] {
				if idx, ok := onPath[nb]; ok {
					cycle := append([]string(nil), path[idx:]...)
					key := fmt.Sprintf("%v", cycle)
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
		dfs(n.ID)
	}
	return cycles, nil
}

// RunRecursive drives the same BFS shape as MemoryStore.RunRecursive, but
// fetches each frontier's neighbors via Cypher rather than an in-process
// adjacency map — the "SQL/Cypher-capable backend may provide an optimized
// traversal path" alternative noted in spec §9, minus a bespoke recursive
// CTE (KuzuDB's variable-length MATCH could replace this loop one day).
func (s *KuzuStore) RunRecursive(ctx context.Context, q RecursiveQuery) ([]RecursiveRow, error) {
	maxDepth := q.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 10
	}
	direction := q.Direction
	if direction == "" {
		direction = DirectionOut
	}

	type frame struct {
		node  string
		depth int
		path  []string
	}
	visited := map[string]bool{q.StartNode: true}
	queue := []frame{{node: q.StartNode, depth: 0, path: []string{q.StartNode}}}
	var out []RecursiveRow

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}

		var edges []Edge
		var err error
		if direction == DirectionIn {
			edges, err = s.FindEdges(ctx, EdgeFilter{To: cur.node, Types: q.EdgeTypes})
		} else {
			edges, err = s.FindEdges(ctx, EdgeFilter{From: cur.node, Types: q.EdgeTypes})
		}
		if err != nil {
			return nil, err
		}

		for _, e := range edges {
			to := e.To
			if direction == DirectionIn {
				to = e.From
			}
			if q.DetectCycles && visited[to] {
				continue
			}
			newPath := append(append([]string(nil), cur.path...), to)
			out = append(out, RecursiveRow{From: q.StartNode, To: to, Type: e.Type, Depth: cur.depth + 1, Path: newPath})
			if q.DetectCycles {
				visited[to] = true
			}
			queue = append(queue, frame{node: to, depth: cur.depth + 1, path: newPath})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// ---------- Stats ----------

func (s *KuzuStore) Stats(ctx context.Context) (*GraphStats, error) {
	nodes, err := s.FindNodes(ctx, NodeFilter{})
	if err != nil {
		return nil, err
	}
	stats := &GraphStats{NodeCount: len(nodes), ByKind: map[Kind]int{}, ByType: map[string]int{}}
	for _, n := range nodes {
		stats.ByKind[n.Kind]++
	}
	edges, err := s.FindEdges(ctx, EdgeFilter{})
	if err != nil {
		return nil, err
	}
	stats.EdgeCount = len(edges)
	for _, e := range edges {
		stats.ByType[e.Type]++
	}
	return stats, nil
}

// ---------- Internal helpers ----------

func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()
	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error
	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

func rowToNode(r []any) Node {
	var attrs map[string]any
	_ = json.Unmarshal([]byte(toString(r[9])), &attrs)
	return Node{
		ID:       toString(r[0]),
		Kind:     Kind(toString(r[1])),
		Name:     toString(r[2]),
		Language: Language(toString(r[3])),
		Location: &Position{
			Path:      toString(r[4]),
			StartLine: toInt(r[5]),
			StartCol:  toInt(r[6]),
			EndLine:   toInt(r[7]),
			EndCol:    toInt(r[8]),
		},
		Attributes: attrs,
	}
}

func rowToEdge(r []any) Edge {
	var attrs map[string]any
	_ = json.Unmarshal([]byte(toString(r[7])), &attrs)
	return Edge{
		From:       toString(r[0]),
		To:         toString(r[1]),
		ID:         toString(r[2]),
		Type:       toString(r[3]),
		Label:      toString(r[4]),
		Weight:     toFloat64(r[5]),
		SourceFile: toString(r[6]),
		Attributes: attrs,
		Derived:    toBool(r[8]),
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	b, _ := v.(bool)
	return b
}
