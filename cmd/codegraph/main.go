// Command codegraph builds and queries a multi-language code-intelligence
// graph over a project tree.
//
// Adapted from the teacher's cmd/decompose: a flag-based CLI (no cobra, the
// teacher's own style) with subcommands dispatched from the positional
// argument list rather than a command framework, the same way
// cmd/decompose/main.go routes "init"/"status"/"export"/"diagram".
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// version is set by the release process at build time.
var version = "dev"

// cliFlags are the flags shared across subcommands.
type cliFlags struct {
	ProjectRoot string
	Version     bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("codegraph", flag.ContinueOnError)
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "path to the target project")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	projectRoot := flags.ProjectRoot
	if !filepath.IsAbs(projectRoot) {
		abs, err := filepath.Abs(projectRoot)
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}
		projectRoot = abs
	}

	positional := fs.Args()
	if len(positional) == 0 {
		printUsage(fs)
		return fmt.Errorf("missing command")
	}

	switch positional[0] {
	case "analyze":
		return runAnalyze(projectRoot, positional[1:])
	case "query":
		return runQuery(projectRoot, positional[1:])
	default:
		printUsage(fs)
		return fmt.Errorf("unknown command %q", positional[0])
	}
}

func printUsage(fs *flag.FlagSet) {
	w := os.Stderr
	fmt.Fprintf(w, "codegraph v%s — multi-language code-intelligence graph\n\n", version)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  codegraph [flags] analyze [dir]                    Build the graph over a directory tree")
	fmt.Fprintln(w, "  codegraph [flags] query deps <nodeId>               Dependency traversal")
	fmt.Fprintln(w, "  codegraph [flags] query impact <file> [file...]     Assess change impact")
	fmt.Fprintln(w, "  codegraph [flags] query hierarchical <from> <type>  Hierarchical edge query")
	fmt.Fprintln(w, "  codegraph [flags] query search <substring>          Symbol search")
	fmt.Fprintln(w, "  codegraph [flags] query diagram [edgeType...]       Mermaid graph TD diagram")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
}
