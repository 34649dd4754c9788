package symbolanalyzer

import (
	"math"
	"path"
	"strings"
)

// ImportKind classifies a raw import specifier (spec §4.4.1 step 1).
type ImportKind string

const (
	ImportRelative        ImportKind = "relative"
	ImportAbsoluteProject ImportKind = "absolute-project"
	ImportBuiltin         ImportKind = "builtin"
	ImportLibrary         ImportKind = "library"
)

// builtinSpecifiers are the literal module names the spec calls out as
// always-builtin, independent of source language.
var builtinSpecifiers = map[string]bool{
	"fs": true, "path": true, "os": true, "crypto": true,
}

// ClassifyImport implements spec §4.4.1 step 1.
func ClassifyImport(specifier string) ImportKind {
	switch {
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		return ImportRelative
	case strings.HasPrefix(specifier, "@/") || strings.HasPrefix(specifier, "~/"):
		return ImportAbsoluteProject
	case strings.HasPrefix(specifier, "node:") || builtinSpecifiers[specifier]:
		return ImportBuiltin
	default:
		return ImportLibrary
	}
}

// extensionsFor returns, in probe order, the file extensions the spec
// names for each language (§4.4.1 step 2).
func extensionsFor(lang string) []string {
	switch lang {
	case "typescript", "tsx":
		return []string{".ts", ".tsx", ".d.ts"}
	case "javascript", "jsx":
		return []string{".js", ".mjs", ".jsx", ".cjs"}
	case "python":
		return []string{".py"}
	case "go":
		return []string{".go"}
	case "rust":
		return []string{".rs"}
	case "java":
		return []string{".java"}
	default:
		return nil
	}
}

// FileSet answers existence queries against the set of files known to the
// current analysis run, matching the teacher's Resolver.fileSet lookups but
// exposed as an interface so callers can back it with the graph store or a
// plain in-memory set.
type FileSet interface {
	HasFile(path string) bool
}

// StaticFileSet is a FileSet backed by a fixed slice of known repo-relative
// paths, as produced by a directory walk before analysis starts.
type StaticFileSet map[string]bool

func NewStaticFileSet(paths []string) StaticFileSet {
	s := make(StaticFileSet, len(paths))
	for _, p := range paths {
		s[p] = true
	}
	return s
}

func (s StaticFileSet) HasFile(p string) bool { return s[p] }

// MissingLink is the diagnostic emitted when a relative or absolute-project
// import cannot be resolved to a known file (spec §4.4.1 step 2, §7's
// FileNotFound-downgraded-to-diagnostic rule).
type MissingLink struct {
	SourceFile         string
	Specifier          string
	Attempted          []string
	ExpectedExtensions []string
	Suggestion         string
}

// ResolveImportPath implements spec §4.4.1 step 2 for relative and
// absolute-project imports. Absolute-project specifiers (`@/...`, `~/...`)
// are resolved from the project root, not from sourceFile's directory.
//
// Grounded on the teacher's Resolver.resolveTS/resolveGo/resolvePython:
// candidate-then-probe-extensions-then-index, generalized across languages
// via extensionsFor instead of one bespoke method per language.
func ResolveImportPath(files FileSet, sourceFile, specifier, lang string) (resolved string, attempted []string, ok bool) {
	var base string
	switch ClassifyImport(specifier) {
	case ImportRelative:
		base = path.Clean(path.Join(path.Dir(sourceFile), specifier))
	case ImportAbsoluteProject:
		trimmed := strings.TrimPrefix(strings.TrimPrefix(specifier, "@/"), "~/")
		base = path.Clean(trimmed)
	default:
		return "", nil, false
	}

	if hasKnownExtension(base, lang) {
		attempted = append(attempted, base)
		if files.HasFile(base) {
			return base, attempted, true
		}
		return "", attempted, false
	}

	exts := extensionsFor(lang)
	for _, ext := range exts {
		candidate := base + ext
		attempted = append(attempted, candidate)
		if files.HasFile(candidate) {
			return candidate, attempted, true
		}
	}
	for _, ext := range exts {
		candidate := path.Join(base, "index"+ext)
		attempted = append(attempted, candidate)
		if files.HasFile(candidate) {
			return candidate, attempted, true
		}
	}
	return "", attempted, false
}

func hasKnownExtension(p, lang string) bool {
	for _, ext := range extensionsFor(lang) {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

func newMissingLink(sourceFile, specifier, lang string, attempted []string) MissingLink {
	return MissingLink{
		SourceFile:         sourceFile,
		Specifier:          specifier,
		Attempted:          attempted,
		ExpectedExtensions: extensionsFor(lang),
		Suggestion:         "verify the import path or add the missing file at one of the attempted locations",
	}
}

// PackageResolver looks up version/metadata for an external library
// (spec §4.4.1 step 3's "external package resolver (collaborator)"). The
// symbol analyzer depends only on this interface; a concrete resolver
// (reading package.json/go.mod/requirements.txt) is a caller concern.
type PackageResolver interface {
	Resolve(name string) (version string, ok bool)
}

// NoopPackageResolver never finds version metadata; used when the caller
// has no manifest information available.
type NoopPackageResolver struct{}

func (NoopPackageResolver) Resolve(string) (string, bool) { return "", false }

// importBonus implements spec §4.4.1 step 4's per-kind weight bonus.
var importBonus = map[ImportKind]float64{
	ImportRelative:        2,
	ImportAbsoluteProject: 1.5,
	ImportLibrary:         0.5,
	ImportBuiltin:         0.1,
}

// ImportWeight implements spec §4.4.1 step 4's weight formula:
// 1 + 0.1*#importedItems + bonus(type) + defaultBonus, rounded to one
// decimal place.
func ImportWeight(kind ImportKind, importedItems int, hasDefault bool) float64 {
	w := 1 + 0.1*float64(importedItems) + importBonus[kind]
	if hasDefault {
		w += 0.5
	}
	return math.Round(w*10) / 10
}
