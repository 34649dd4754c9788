// Package export renders the analysis graph for external consumption —
// currently a Mermaid flowchart, surfaced through `codegraph query diagram`.
//
// Grounded on the teacher's internal/export package: GenerateMermaid keeps
// the teacher's graph-TD-with-subgraphs shape (incremental alphanumeric
// node IDs, grouped subgraphs, one arrow per edge), adapted from the
// teacher's fixed Cluster-node/IMPORTS-edge pair to this module's open
// node-kind/edge-type model — callers choose which edge types to draw, and
// File nodes group by directory instead of the teacher's explicit Cluster
// node kind, a concept none of this module's analyzers produce.
package export

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/codegraph/internal/store"
)

// DefaultDiagramEdgeTypes is drawn when GenerateMermaid is given no
// explicit edge-type filter: the file-level import graph, the closest
// analog to the teacher's fixed IMPORTS-only diagram.
var DefaultDiagramEdgeTypes = []string{"imports_file"}

// GenerateMermaid renders a `graph TD` Mermaid flowchart from s: File
// nodes grouped into directory subgraphs, plus one arrow per edge of the
// given types. Any node referenced by a drawn edge that isn't a grouped
// file (a library, a class, a method) still gets its own box.
func GenerateMermaid(ctx context.Context, s store.GraphStore, edgeTypes []string) (string, error) {
	if len(edgeTypes) == 0 {
		edgeTypes = DefaultDiagramEdgeTypes
	}

	files, err := s.FindNodes(ctx, store.NodeFilter{Kind: store.KindFile})
	if err != nil {
		return "", fmt.Errorf("export: find file nodes: %w", err)
	}

	var edges []store.Edge
	for _, t := range edgeTypes {
		found, err := s.FindEdges(ctx, store.EdgeFilter{Types: []string{t}})
		if err != nil {
			return "", fmt.Errorf("export: find %s edges: %w", t, err)
		}
		edges = append(edges, found...)
	}

	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if mid, ok := nodeIDs[key]; ok {
			return mid
		}
		mid := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = mid
		return mid
	}

	byDir := make(map[string][]store.Node)
	for _, f := range files {
		dir := path.Dir(f.Name)
		byDir[dir] = append(byDir[dir], f)
	}
	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	grouped := make(map[string]bool)
	for _, dir := range dirs {
		members := byDir[dir]
		sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", getID(dir+"\x00dir"), dir))
		for _, f := range members {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(f.ID), shortLabel(f.ID)))
			grouped[f.ID] = true
		}
		sb.WriteString("  end\n")
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, e := range edges {
		if !grouped[e.From] {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(e.From), shortLabel(e.From)))
			grouped[e.From] = true
		}
		if !grouped[e.To] {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(e.To), shortLabel(e.To)))
			grouped[e.To] = true
		}
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", getID(e.From), getID(e.To)))
	}

	return sb.String(), nil
}

// shortLabel returns the last two "/"-separated segments of a node
// identifier for readability, matching the teacher's shortPath.
func shortLabel(id string) string {
	parts := strings.Split(id, "/")
	if len(parts) <= 2 {
		return id
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
