package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/dusk-indust/codegraph/internal/analyzer"
	"github.com/dusk-indust/codegraph/internal/config"
	"github.com/dusk-indust/codegraph/internal/ident"
	"github.com/dusk-indust/codegraph/internal/inference"
	"github.com/dusk-indust/codegraph/internal/session"
	"github.com/dusk-indust/codegraph/internal/store"
	"github.com/dusk-indust/codegraph/internal/symbolanalyzer"
)

// extToLanguage maps file extensions to store.Language, grounded on the
// teacher's mcptools.extToLanguage.
var extToLanguage = map[string]store.Language{
	".go":   store.LangGo,
	".ts":   store.LangTypeScript,
	".tsx":  store.LangTSX,
	".py":   store.LangPython,
	".js":   store.LangJavaScript,
	".jsx":  store.LangJSX,
	".rs":   store.LangRust,
	".java": store.LangJava,
	".md":   store.LangMarkdown,
}

func runAnalyze(projectRoot string, args []string) error {
	fs2 := flag.NewFlagSet("analyze", flag.ContinueOnError)
	concurrency := fs2.Int("concurrency", 0, "max concurrent files analyzed (default from config)")
	showProgress := fs2.Bool("progress", false, "show a progress bar while analyzing")
	if err := fs2.Parse(args); err != nil {
		return err
	}

	dir := projectRoot
	if fs2.NArg() > 0 {
		dir = fs2.Arg(0)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(projectRoot, dir)
		}
	}

	cfg, err := config.Load(projectRoot)
	if err != nil {
		return fmt.Errorf("analyze: load config: %w", err)
	}
	if *concurrency > 0 {
		cfg.MaxConcurrency = *concurrency
	}

	allowedLangs := make(map[store.Language]bool, len(cfg.Languages))
	for _, l := range cfg.Languages {
		allowedLangs[store.Language(strings.ToLower(l))] = true
	}
	excludeSet := make(map[string]bool, len(cfg.ExcludeDirs))
	for _, d := range cfg.ExcludeDirs {
		excludeSet[d] = true
	}

	projectName := filepath.Base(dir)

	var relPaths []string
	type fileSource struct {
		relPath string
		lang    store.Language
		source  []byte
	}
	var files []fileSource

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if excludeSet[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		lang, ok := extToLanguage[filepath.Ext(path)]
		if !ok || !allowedLangs[lang] {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		relPaths = append(relPaths, rel)
		files = append(files, fileSource{relPath: rel, lang: lang, source: data})
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("analyze: walk %s: %w", dir, walkErr)
	}

	s, err := openStore(cfg.StoreKind, projectRoot)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.InitSchema(ctx); err != nil {
		return fmt.Errorf("analyze: init schema: %w", err)
	}

	fileSet := symbolanalyzer.NewStaticFileSet(relPaths)
	framework := analyzer.NewFramework(s)
	if err := framework.Register(symbolanalyzer.NewSymbolAnalyzer(fileSet, nil)); err != nil {
		return fmt.Errorf("analyze: register symbolanalyzer: %w", err)
	}

	contexts := make([]analyzer.AnalysisContext, len(files))
	for i, f := range files {
		contexts[i] = analyzer.AnalysisContext{
			ProjectName: projectName,
			SourcePath:  f.relPath,
			Source:      f.source,
			Language:    f.lang,
		}
	}

	runner := analyzer.NewBatchRunner(framework).WithMaxConcurrency(cfg.MaxConcurrency)

	var bar *progressbar.ProgressBar
	if *showProgress {
		bar = progressbar.Default(int64(len(contexts)), "analyzing")
		runner = runner.WithProgress(func(ev analyzer.ProgressEvent) {
			if ev.Status == analyzer.ProgressComplete || ev.Status == analyzer.ProgressFailed {
				_ = bar.Add(1)
			}
		})
	}

	outcomes, _ := runner.Run(ctx, contexts)
	if bar != nil {
		_ = bar.Finish()
	}

	tracker := session.NewTracker()
	tracker.IngestOutcomes(outcomes)

	engine := inference.NewEngine(s, ident.NewDefaultTypeRegistry())
	if _, err := engine.Validate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: post-analysis cache validation failed: %v\n", err)
	}

	printBatchSummary(tracker.Summary(), outcomes)
	return nil
}

// graphDir is where a persistent store lives so "query" can reconnect to
// a graph built by a prior "analyze" run, mirroring the teacher's
// handlers.go persistGraph path under .decompose/graph.
func graphDir(projectRoot string) string {
	return filepath.Join(projectRoot, ".codegraph", "graph")
}

func openStore(kind, projectRoot string) (store.GraphStore, error) {
	switch kind {
	case config.StoreKindKuzu:
		ks, err := store.NewKuzuFileStore(graphDir(projectRoot))
		if err != nil {
			return nil, err
		}
		return ks, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

func printBatchSummary(summary session.Summary, outcomes []analyzer.FileOutcome) {
	fmt.Println()
	fmt.Printf("Files analyzed: %d\n", summary.Total)
	fmt.Print(colorize(green, "Succeeded: %d\n", summary.Succeeded))
	if summary.Failed > 0 {
		fmt.Print(colorize(red, "Failed: %d\n", summary.Failed))
	} else {
		fmt.Printf("Failed: %d\n", summary.Failed)
	}
	if summary.DiagnosticCount > 0 {
		fmt.Print(colorize(yellow, "Diagnostics: %d\n", summary.DiagnosticCount))
	}

	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Print(colorize(red, "  ✗ %s: %v\n", o.SourcePath, o.Err))
			continue
		}
		for _, d := range o.Diagnostics {
			fmt.Print(colorize(dim, "  · %s: %s\n", o.SourcePath, d.Message))
		}
	}
}
