package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dusk-indust/codegraph/internal/config"
	"github.com/dusk-indust/codegraph/internal/export"
	"github.com/dusk-indust/codegraph/internal/ident"
	"github.com/dusk-indust/codegraph/internal/inference"
	"github.com/dusk-indust/codegraph/internal/query"
	"github.com/dusk-indust/codegraph/internal/store"
)

func runQuery(projectRoot string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("query: missing subcommand (deps, impact, hierarchical, search, diagram)")
	}

	cfg, err := config.Load(projectRoot)
	if err != nil {
		return fmt.Errorf("query: load config: %w", err)
	}
	if cfg.StoreKind != config.StoreKindKuzu {
		fmt.Fprintln(os.Stderr, "warning: storeKind is \"memory\"; query reads an empty, unpersisted graph unless storeKind: kuzu is set and `analyze` has already run")
	}

	s, err := openStore(cfg.StoreKind, projectRoot)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer s.Close()

	registry := ident.NewDefaultTypeRegistry()
	engine := inference.NewEngine(s, registry)
	svc := query.NewService(s, engine)
	ctx := context.Background()

	switch args[0] {
	case "deps":
		return runQueryDeps(ctx, svc, args[1:])
	case "impact":
		return runQueryImpact(ctx, svc, args[1:])
	case "hierarchical":
		return runQueryHierarchical(ctx, svc, args[1:])
	case "search":
		return runQuerySearch(ctx, svc, args[1:])
	case "diagram":
		return runQueryDiagram(ctx, s, args[1:])
	default:
		return fmt.Errorf("query: unknown subcommand %q", args[0])
	}
}

func runQueryDeps(ctx context.Context, svc *query.Service, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("query deps: missing nodeId")
	}
	in := query.DependenciesInput{NodeID: args[0], Direction: query.DirectionDownstream}
	if len(args) > 1 {
		if d, err := strconv.Atoi(args[1]); err == nil {
			in.MaxDepth = d
		} else {
			in.Direction = query.Direction(args[1])
		}
	}
	out, err := svc.Dependencies(ctx, in)
	if err != nil {
		return err
	}
	for _, r := range out.Rows {
		fmt.Printf("%s -> %s (depth %d, via %s)\n", r.From, r.To, r.Depth, r.Type)
	}
	return nil
}

func runQueryImpact(ctx context.Context, svc *query.Service, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("query impact: at least one changed file is required")
	}
	out, err := svc.AssessImpact(ctx, query.ImpactInput{ChangedFiles: args})
	if err != nil {
		return err
	}
	fmt.Printf("Affected nodes: %d\n", len(out.Impact.AffectedNodes))
	for _, n := range out.Impact.AffectedNodes {
		fmt.Println("  " + n)
	}
	return nil
}

func runQueryHierarchical(ctx context.Context, svc *query.Service, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("query hierarchical: requires <from> <edgeType>")
	}
	out, err := svc.Hierarchical(ctx, query.HierarchicalInput{From: args[0], EdgeType: args[1]})
	if err != nil {
		return err
	}
	for _, e := range out.Edges {
		fmt.Printf("%s -[%s/%s]-> %s\n", e.From, e.Type, e.Label, e.To)
	}
	return nil
}

func runQuerySearch(ctx context.Context, svc *query.Service, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("query search: missing query string")
	}
	out, err := svc.SymbolSearch(ctx, query.SymbolSearchInput{Query: args[0]})
	if err != nil {
		return err
	}
	for _, n := range out.Nodes {
		fmt.Printf("%s  %s  %s\n", n.ID, n.Kind, n.Name)
	}
	fmt.Printf("(%d results)\n", out.Total)
	return nil
}

// runQueryDiagram renders a Mermaid flowchart of the graph to stdout.
// args, if given, name the edge types to draw; it defaults to the
// file-level import graph.
func runQueryDiagram(ctx context.Context, s store.GraphStore, args []string) error {
	diagram, err := export.GenerateMermaid(ctx, s, args)
	if err != nil {
		return err
	}
	fmt.Print(diagram)
	return nil
}
