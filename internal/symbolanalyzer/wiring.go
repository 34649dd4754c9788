package symbolanalyzer

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/codegraph/internal/analyzer"
	"github.com/dusk-indust/codegraph/internal/ident"
	"github.com/dusk-indust/codegraph/internal/store"
	"github.com/dusk-indust/codegraph/internal/synquery"
)

// importItem is one name imported from a module, as found in an
// import/import-from statement's clause.
type importItem struct {
	Name        string
	Alias       string
	IsDefault   bool
	IsNamespace bool
}

// rawImport is one import statement as found in the source, before
// classification/resolution.
type rawImport struct {
	Specifier string
	Items     []importItem
}

// analyzeImports implements spec §4.4.1 end to end for every import
// statement found in root.
func (a *SymbolAnalyzer) analyzeImports(b *resultBuilder, root synquery.Node, profile languageProfile, ac analyzer.AnalysisContext, idCtx ident.Context, fileID string) {
	for _, raw := range extractRawImports(root, profile, ac.Source) {
		a.analyzeOneImport(b, raw, profile, ac, idCtx, fileID)
	}
}

func extractRawImports(root synquery.Node, profile languageProfile, source []byte) []rawImport {
	var out []rawImport
	synquery.Walk(root, func(n synquery.Node) {
		if n.Kind() != profile.ImportStmt {
			return
		}
		raw, ok := parseImportStmt(n, profile, source)
		if ok {
			out = append(out, raw)
		}
	})
	return out
}

func parseImportStmt(n synquery.Node, profile languageProfile, source []byte) (rawImport, bool) {
	var specifier string
	if profile.ImportSource != "" {
		if src := n.FieldChild(profile.ImportSource); src != nil {
			specifier = unquote(src.Text(source))
		}
	}
	if specifier == "" {
		// Fallback: scan children for a string literal, matching the
		// teacher's extractImport fallback for grammars that don't
		// expose a named source field on every import shape.
		for i := 0; i < n.ChildCount(); i++ {
			c := n.Child(i)
			if c == nil {
				continue
			}
			switch c.Kind() {
			case "interpreted_string_literal", "string", "string_literal":
				specifier = unquote(c.Text(source))
			}
		}
	}
	if specifier == "" && profile.ImportPositional {
		// Rust's use_declaration has no string-literal specifier: the
		// path itself (std::collections::HashMap) is the specifier,
		// found by skipping the "use" keyword and trailing ";". "::" is
		// normalized to "." since identifier.go's grammar forbids ':' in
		// a bare name segment, matching the "." separator already used
		// for qualified method names elsewhere (e.g. "Dog.speak").
		for i := 0; i < n.ChildCount(); i++ {
			c := n.Child(i)
			if c == nil || c.Kind() == "use" || c.Kind() == ";" {
				continue
			}
			specifier = strings.ReplaceAll(c.Text(source), "::", ".")
			break
		}
	}
	if specifier == "" {
		return rawImport{}, false
	}

	items := extractImportItems(n, profile, source)
	return rawImport{Specifier: specifier, Items: items}, true
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// extractImportItems finds named/default/namespace imports on a
// TypeScript-style import_statement's import_clause. Go's import_spec has
// no per-symbol item list, so this returns nil for Go.
func extractImportItems(n synquery.Node, profile languageProfile, source []byte) []importItem {
	clause := n.FieldChild("clause")
	if clause == nil {
		// Some grammars expose the clause as the statement's first child
		// rather than a named field.
		for i := 0; i < n.ChildCount(); i++ {
			c := n.Child(i)
			if c != nil && c.Kind() == "import_clause" {
				clause = c
				break
			}
		}
	}
	if clause == nil {
		return nil
	}

	var items []importItem
	synquery.Walk(clause, func(c synquery.Node) {
		switch c.Kind() {
		case "namespace_import":
			items = append(items, importItem{IsNamespace: true})
		case "import_specifier":
			name := c.FieldChild("name")
			alias := c.FieldChild("alias")
			item := importItem{}
			if name != nil {
				item.Name = name.Text(source)
			}
			if alias != nil {
				item.Alias = alias.Text(source)
			}
			items = append(items, item)
		}
	})
	if defaultName := clause.FieldChild("default"); defaultName != nil {
		items = append(items, importItem{Name: defaultName.Text(source), IsDefault: true})
	}
	return items
}

func (a *SymbolAnalyzer) analyzeOneImport(b *resultBuilder, raw rawImport, profile languageProfile, ac analyzer.AnalysisContext, idCtx ident.Context, fileID string) {
	kind := ClassifyImport(raw.Specifier)
	langName := string(ac.Language)

	var targetID string
	var targetIsFile bool
	hasDefault := false
	for _, it := range raw.Items {
		if it.IsDefault {
			hasDefault = true
		}
	}

	switch kind {
	case ImportRelative, ImportAbsoluteProject:
		resolved, attempted, ok := ResolveImportPath(a.Files, ac.SourcePath, raw.Specifier, langName)
		if !ok {
			link := newMissingLink(ac.SourcePath, raw.Specifier, langName, attempted)
			b.addDiagnostic(analyzer.Diagnostic{
				Analyzer: a.Name(),
				Severity: analyzer.SeverityWarning,
				Message:  fmt.Sprintf("unresolved import %q: tried %v; %s", link.Specifier, link.Attempted, link.Suggestion),
				Location: &store.Position{Path: ac.SourcePath},
			})
			return
		}
		targetCtx := ident.Context{ProjectName: idCtx.ProjectName, RelativePath: resolved}
		id, err := ident.BuildFile(targetCtx)
		if err != nil {
			return
		}
		targetID = id
		targetIsFile = true
		b.addNode(store.Node{ID: id, Kind: store.KindFile, Name: resolved, Language: ac.Language,
			Location: &store.Position{Path: resolved}})

	case ImportBuiltin, ImportLibrary:
		version, _ := a.Packages.Resolve(raw.Specifier)
		id, err := ident.BuildLibrary(raw.Specifier, version)
		if err != nil {
			return
		}
		targetID = id
		targetIsFile = false
		attrs := map[string]any{"builtin": kind == ImportBuiltin}
		if version != "" {
			attrs["version"] = version
		}
		b.addNode(store.Node{ID: id, Kind: store.KindLibrary, Name: raw.Specifier, Language: store.LangExternal, Attributes: attrs})
	}

	weight := ImportWeight(kind, len(raw.Items), hasDefault)
	edgeType := ident.EdgeImportsLibrary
	if targetIsFile {
		edgeType = ident.EdgeImportsFile
	}
	b.addEdge(store.Edge{From: fileID, To: targetID, Type: edgeType, Weight: weight,
		Attributes: map[string]any{"importedItems": len(raw.Items), "specifier": raw.Specifier}})

	for _, item := range raw.Items {
		if item.IsNamespace {
			continue // namespace imports reference the file itself (spec §4.4.1 step 5)
		}
		a.emitImportedSymbol(b, item, targetID, idCtx, fileID)
	}
}

func (a *SymbolAnalyzer) emitImportedSymbol(b *resultBuilder, item importItem, targetID string, idCtx ident.Context, fileID string) {
	if item.Name == "" {
		return
	}
	if item.Alias == "" {
		unknownID := unknownNodeID(targetID, item.Name)
		b.addNode(store.Node{ID: unknownID, Kind: store.KindUnknown, Name: item.Name})
		b.addEdge(store.Edge{From: fileID, To: unknownID, Type: ident.EdgeUses})
		return
	}

	originalID := unknownNodeID(targetID, item.Name)
	aliasID, err := ident.Build(ident.KindUnknown, item.Alias, idCtx)
	if err != nil {
		return
	}
	b.addNode(store.Node{ID: originalID, Kind: store.KindUnknown, Name: item.Name})
	b.addNode(store.Node{ID: aliasID, Kind: store.KindUnknown, Name: item.Alias})
	b.addEdge(store.Edge{From: aliasID, To: originalID, Type: ident.EdgeAliasOf})
	b.addEdge(store.Edge{From: fileID, To: aliasID, Type: ident.EdgeUses,
		Attributes: map[string]any{"importedAs": item.Alias}})
}

// unknownNodeID builds "<targetID>#Unknown:<name>" whether targetID is a
// file identifier or a library identifier (spec §4.4.1 step 5).
func unknownNodeID(targetID, name string) string {
	return targetID + "#Unknown:" + name
}

// analyzeSymbols implements spec §4.4.2: emits class/interface/function/
// type-alias nodes and their defines edges, returning a name→identifier
// map so analyzeMethodsAndFields can resolve owners.
func (a *SymbolAnalyzer) analyzeSymbols(b *resultBuilder, symbols []extractedSymbol, idCtx ident.Context, fileID string) map[string]string {
	ids := make(map[string]string, len(symbols))
	for _, sym := range symbols {
		id, err := ident.Build(sym.Kind, sym.Name, idCtx)
		if err != nil {
			continue
		}
		ids[sym.Name] = id
		loc := sym.Position
		b.addNode(store.Node{ID: id, Kind: identKindToStoreKind(sym.Kind), Name: sym.Name,
			Location: &loc, Language: b.lang})
		b.addEdge(store.Edge{From: fileID, To: id, Type: ident.EdgeDefines})
	}
	return ids
}

// analyzeMethodsAndFields implements spec §4.4.3: method/field nodes,
// contains-method/contains-field, calls-method, accesses-field, and
// overrides-method edges.
func (a *SymbolAnalyzer) analyzeMethodsAndFields(b *resultBuilder, symbols []extractedSymbol, methods []extractedMethod, profile languageProfile, source []byte, idCtx ident.Context, fileID string, symbolIDs map[string]string) {
	methodIDs := make(map[string]string, len(methods))
	methodsByQualified := make(map[string]extractedMethod, len(methods))
	for _, m := range methods {
		methodsByQualified[m.OwnerName+"."+m.Name] = m
	}

	for _, m := range methods {
		qualified := m.OwnerName + "." + m.Name
		id, err := ident.Build(ident.KindMethod, qualified, idCtx)
		if err != nil {
			continue
		}
		methodIDs[qualified] = id
		ownerID, hasOwner := symbolIDs[m.OwnerName]

		attrs := map[string]any{
			"isStatic": m.IsStatic, "isAsync": m.IsAsync, "visibility": string(m.Visibility),
			"cyclomaticComplexity": m.Complexity, "returnType": m.ReturnType, "tags": m.Tags,
		}
		if len(m.Params) > 0 {
			params := make([]map[string]string, 0, len(m.Params))
			for _, p := range m.Params {
				params = append(params, map[string]string{"name": p.Name, "type": p.Type})
			}
			attrs["parameters"] = params
		}

		loc := m.Position
		loc.Path = b.sourcePath
		b.addNode(store.Node{ID: id, Kind: store.KindMethod, Name: qualified, Language: b.lang,
			Location: &loc, Attributes: attrs})
		b.addEdge(store.Edge{From: fileID, To: id, Type: ident.EdgeDefines})
		if hasOwner {
			b.addEdge(store.Edge{From: ownerID, To: id, Type: ident.EdgeContainsMethod})
		}

		for _, call := range m.Calls {
			calleeID := a.resolveCallee(call.Callee, methodIDs, idCtx)
			b.addEdge(store.Edge{From: id, To: calleeID, Type: ident.EdgeCallsMethod,
				Attributes: map[string]any{"callType": string(call.Type)}})
		}
		for _, fu := range m.FieldUses {
			fieldID, err := ident.Build(ident.KindField, m.OwnerName+"."+fu.Field, idCtx)
			if err != nil {
				continue
			}
			b.addEdge(store.Edge{From: id, To: fieldID, Type: ident.EdgeAccessesField,
				Attributes: map[string]any{"accessType": string(fu.AccessType), "isWrite": fu.IsWrite}})
		}
	}

	for _, sym := range symbols {
		ownerID, ok := symbolIDs[sym.Name]
		if !ok {
			continue
		}
		for _, f := range ExtractFields(profile, source, sym) {
			fieldID, err := ident.Build(ident.KindField, sym.Name+"."+f.Name, idCtx)
			if err != nil {
				continue
			}
			loc := f.Position
			loc.Path = b.sourcePath
			b.addNode(store.Node{ID: fieldID, Kind: store.KindField, Name: f.Name, Language: b.lang,
				Location: &loc, Attributes: map[string]any{
					"visibility": string(f.Visibility), "hasInitializer": f.HasInitializer, "type": f.Type,
				}})
			b.addEdge(store.Edge{From: fileID, To: fieldID, Type: ident.EdgeDefines})
			b.addEdge(store.Edge{From: ownerID, To: fieldID, Type: ident.EdgeContainsField})
		}
	}

	a.emitOverrides(b, symbols, methodsByQualified, methodIDs)
}

// emitOverrides wires spec §4.4.3's inheritance paragraph: for each class
// symbol with a declared superclass, match its methods against the
// superclass's methods of the same name/arity (OverridesMethod) and emit
// an overrides-method edge from the child method to the parent method.
// Resolution is intra-file only — a superclass defined in another file is
// not resolvable from a single file's AnalyzerResult.
func (a *SymbolAnalyzer) emitOverrides(b *resultBuilder, symbols []extractedSymbol, methodsByQualified map[string]extractedMethod, methodIDs map[string]string) {
	for _, sym := range symbols {
		if len(sym.Superclasses) == 0 {
			continue
		}
		for qualified, child := range methodsByQualified {
			if child.OwnerName != sym.Name {
				continue
			}
			for _, super := range sym.Superclasses {
				parent, ok := methodsByQualified[super+"."+child.Name]
				if !ok || !OverridesMethod(child, parent) {
					continue
				}
				childID := methodIDs[qualified]
				parentID := methodIDs[super+"."+child.Name]
				if childID == "" || parentID == "" {
					continue
				}
				b.addEdge(store.Edge{From: childID, To: parentID, Type: ident.EdgeOverridesMethod})
			}
		}
	}
}

// resolveCallee resolves a call's callee intra-file first (spec §4.4.3);
// unresolved callees produce edges to unknown nodes.
func (a *SymbolAnalyzer) resolveCallee(callee string, methodIDs map[string]string, idCtx ident.Context) string {
	for qualified, id := range methodIDs {
		if qualified == callee {
			return id
		}
		// Match "this.method"/"self.method" style callees against the
		// bare method name component of "Owner.method".
		if dot := lastDot(qualified); dot >= 0 && qualified[dot+1:] == trimReceiver(callee) {
			return id
		}
	}
	id, err := ident.Build(ident.KindUnknown, sanitizeCalleeName(callee), idCtx)
	if err != nil {
		return ""
	}
	return id
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func trimReceiver(callee string) string {
	if dot := lastDot(callee); dot >= 0 {
		return callee[dot+1:]
	}
	return callee
}

func sanitizeCalleeName(callee string) string {
	out := make([]rune, 0, len(callee))
	for _, r := range callee {
		switch r {
		case '#', ':', '/':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
