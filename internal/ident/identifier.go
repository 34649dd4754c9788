// Package ident implements the canonical RDF-style identifier grammar
// (spec §3.2, §6.1) and the edge-type hierarchy registry (spec §3.3, §4.1).
//
// Grounded on the teacher's symbolID/symbolKey helpers in
// internal/graph/kuzustore.go and schema.go, generalized from a single
// "filePath:name" composite key into the full
// project/path#Kind:Symbol.qualified.name grammar the spec requires.
package ident

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the capitalized symbol-kind segment of a symbol identifier
// (spec §6.1 grammar: "File" | "Class" | "Interface" | "Method" | ...).
type Kind string

const (
	KindFile      Kind = "File"
	KindClass     Kind = "Class"
	KindInterface Kind = "Interface"
	KindMethod    Kind = "Method"
	KindFunction  Kind = "Function"
	KindField     Kind = "Field"
	KindHeading   Kind = "Heading"
	KindUnknown   Kind = "Unknown"
)

var projectNamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// forbidden reports whether s contains a character the grammar disallows in
// a bare name segment: '#', ':', '/', or any whitespace.
func forbidden(s string) bool {
	return strings.ContainsAny(s, "#:/ \t\n\r")
}

// Context supplies the ambient information needed to build an identifier:
// the owning project and the symbol's file path relative to the project
// root.
type Context struct {
	ProjectName  string
	RelativePath string
}

// Kind of identifier a Parsed value represents.
type IdentifierForm int

const (
	FormFile IdentifierForm = iota
	FormSymbol
	FormLibrary
)

// Parsed is the decomposed form of a canonical identifier, as returned by
// Parse. Only the fields relevant to Form are populated.
type Parsed struct {
	Form           IdentifierForm
	ProjectName    string
	RelativePath   string
	SymbolKind     Kind
	SymbolName     string
	LibraryName    string
	LibraryVersion string
}

// BuildFile constructs the canonical identifier for a file node:
// "<projectName>/<relativeFilePath>".
func BuildFile(ctx Context) (string, error) {
	rel := normalizeSlashes(ctx.RelativePath)
	if err := validateProjectName(ctx.ProjectName); err != nil {
		return "", err
	}
	if err := validateRelPath(rel); err != nil {
		return "", err
	}
	return ctx.ProjectName + "/" + rel, nil
}

// Build constructs the canonical identifier for a symbol node:
// "<projectName>/<relativeFilePath>#<Kind>:<SymbolName>".
func Build(kind Kind, symbolName string, ctx Context) (string, error) {
	fileID, err := BuildFile(ctx)
	if err != nil {
		return "", err
	}
	if kind == "" {
		return "", fmt.Errorf("ident.Build: empty kind")
	}
	if err := validateSymbolName(symbolName); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s#%s:%s", fileID, kind, symbolName), nil
}

// BuildLibrary constructs the canonical identifier for an external library
// node: "library#<packageName>[@<version>]".
func BuildLibrary(name, version string) (string, error) {
	if name == "" || forbidden(name) || strings.Contains(name, "@") {
		return "", fmt.Errorf("ident.BuildLibrary: invalid library name %q", name)
	}
	if version == "" {
		return "library#" + name, nil
	}
	if forbidden(version) {
		return "", fmt.Errorf("ident.BuildLibrary: invalid version %q", version)
	}
	return "library#" + name + "@" + version, nil
}

// Parse decomposes a canonical identifier into its constituent parts.
// It returns ok=false for any malformed input rather than an error, matching
// the spec's "parse → {...} | None" contract.
func Parse(id string) (Parsed, bool) {
	if id == "" {
		return Parsed{}, false
	}

	if rest, ok := strings.CutPrefix(id, "library#"); ok {
		return parseLibrary(rest)
	}

	if hashIdx := strings.Index(id, "#"); hashIdx >= 0 {
		fileID := id[:hashIdx]
		tail := id[hashIdx+1:]
		projectName, relPath, ok := splitFileID(fileID)
		if !ok {
			return Parsed{}, false
		}
		colonIdx := strings.Index(tail, ":")
		if colonIdx <= 0 || colonIdx == len(tail)-1 {
			return Parsed{}, false
		}
		kind := Kind(tail[:colonIdx])
		symbolName := tail[colonIdx+1:]
		if err := validateSymbolName(symbolName); err != nil {
			return Parsed{}, false
		}
		return Parsed{
			Form:         FormSymbol,
			ProjectName:  projectName,
			RelativePath: relPath,
			SymbolKind:   kind,
			SymbolName:   symbolName,
		}, true
	}

	projectName, relPath, ok := splitFileID(id)
	if !ok {
		return Parsed{}, false
	}
	return Parsed{
		Form:         FormFile,
		ProjectName:  projectName,
		RelativePath: relPath,
	}, true
}

func parseLibrary(rest string) (Parsed, bool) {
	if rest == "" {
		return Parsed{}, false
	}
	name, version := rest, ""
	if at := strings.Index(rest, "@"); at >= 0 {
		name = rest[:at]
		version = rest[at+1:]
		if version == "" || forbidden(version) {
			return Parsed{}, false
		}
	}
	if name == "" || forbidden(name) {
		return Parsed{}, false
	}
	return Parsed{
		Form:           FormLibrary,
		LibraryName:    name,
		LibraryVersion: version,
	}, true
}

// splitFileID splits "<projectName>/<relPath>" and validates both halves.
func splitFileID(fileID string) (projectName, relPath string, ok bool) {
	slash := strings.Index(fileID, "/")
	if slash <= 0 || slash == len(fileID)-1 {
		return "", "", false
	}
	projectName = fileID[:slash]
	relPath = fileID[slash+1:]
	if validateProjectName(projectName) != nil {
		return "", "", false
	}
	if validateRelPath(relPath) != nil {
		return "", "", false
	}
	return projectName, relPath, true
}

// Validate reports whether id is a well-formed canonical identifier.
func Validate(id string) bool {
	_, ok := Parse(id)
	return ok
}

// AreCoLocated reports whether two identifiers share the same
// "<projectName>/<relativeFilePath>" prefix (i.e. live in the same file).
func AreCoLocated(a, b string) bool {
	pa, okA := Parse(a)
	pb, okB := Parse(b)
	if !okA || !okB || pa.Form == FormLibrary || pb.Form == FormLibrary {
		return false
	}
	return pa.ProjectName == pb.ProjectName && pa.RelativePath == pb.RelativePath
}

func validateProjectName(name string) error {
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("ident: invalid project name %q", name)
	}
	return nil
}

func validateRelPath(relPath string) error {
	if relPath == "" || strings.HasPrefix(relPath, "/") {
		return fmt.Errorf("ident: relative path must be non-empty and not start with '/': %q", relPath)
	}
	for _, seg := range strings.Split(relPath, "/") {
		if seg == "" {
			return fmt.Errorf("ident: empty path segment in %q", relPath)
		}
		if strings.ContainsAny(seg, "#: \t\n\r") {
			return fmt.Errorf("ident: forbidden character in path segment %q", seg)
		}
	}
	return nil
}

func validateSymbolName(name string) error {
	if name == "" {
		return fmt.Errorf("ident: empty symbol name")
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" || forbidden(part) {
			return fmt.Errorf("ident: invalid symbol name segment in %q", name)
		}
	}
	return nil
}

// normalizeSlashes rewrites backslashes to forward slashes, per the
// case/slash-sensitivity invariant of spec §3.2.
func normalizeSlashes(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}
