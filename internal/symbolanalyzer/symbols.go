package symbolanalyzer

import (
	"github.com/dusk-indust/codegraph/internal/ident"
	"github.com/dusk-indust/codegraph/internal/store"
	"github.com/dusk-indust/codegraph/internal/synquery"
)

// extractedSymbol is one class/interface/function/type-alias definition
// found at (or near) the top level of a file, plus enough of its AST
// handle to let methods.go descend into its body afterward.
type extractedSymbol struct {
	Kind     ident.Kind
	Name     string
	Node     synquery.Node // the class/interface body owner, for method/field extraction
	Position store.Position

	// Superclasses names the direct base classes this symbol extends
	// (spec §4.4.3's inheritance paragraph), read off the class's
	// heritage clause. Always empty for non-class kinds and for Go,
	// which has no class-inheritance construct.
	Superclasses []string
}

// ExtractSymbols walks root and returns every class/interface/function/
// type-alias definition in the file (spec §4.4.2). Grounded on the
// teacher's goExtractor/tsExtractor switch-on-node-kind walks, generalized
// through languageProfile instead of one hardcoded switch per language.
func ExtractSymbols(root synquery.Node, profile languageProfile, source []byte, filePath string) []extractedSymbol {
	var out []extractedSymbol
	synquery.Walk(root, func(n synquery.Node) {
		switch {
		case n.Kind() == profile.FunctionDecl:
			if sym, ok := namedSymbol(n, source, filePath, ident.KindFunction, profile); ok {
				out = append(out, sym)
			}
		case profile.TypeDeclWrapsSpec && n.Kind() == profile.ClassDecl:
			out = append(out, extractGoTypeDecl(n, profile, source, filePath)...)
		case !profile.TypeDeclWrapsSpec && n.Kind() == profile.ClassDecl:
			if sym, ok := namedSymbol(n, source, filePath, ident.KindClass, profile); ok {
				out = append(out, sym)
			}
		case !profile.TypeDeclWrapsSpec && profile.InterfaceDecl != "" && n.Kind() == profile.InterfaceDecl && profile.InterfaceDecl != profile.ClassDecl:
			if sym, ok := namedSymbol(n, source, filePath, ident.KindInterface, profile); ok {
				out = append(out, sym)
			}
		case !profile.TypeDeclWrapsSpec && profile.TypeAliasDecl != "" && n.Kind() == profile.TypeAliasDecl:
			if sym, ok := namedSymbol(n, source, filePath, ident.KindClass, profile); ok {
				out = append(out, sym)
			}
		}
	})
	return out
}

func namedSymbol(n synquery.Node, source []byte, filePath string, kind ident.Kind, profile languageProfile) (extractedSymbol, bool) {
	name := n.FieldChild("name")
	if name == nil {
		return extractedSymbol{}, false
	}
	sym := extractedSymbol{
		Kind: kind,
		Name: name.Text(source),
		Node: n,
		Position: store.Position{
			Path:      filePath,
			StartLine: n.StartPoint().Row + 1,
			EndLine:   n.EndPoint().Row + 1,
		},
	}
	if kind == ident.KindClass {
		sym.Superclasses = extractSuperclasses(n, profile, source)
	}
	return sym, true
}

// extractSuperclasses reads a class declaration's heritage clause (spec
// §4.4.3's "class D extends B"). Python exposes base classes directly as
// a named field on the class node (HeritageField); TypeScript nests them
// under an intermediate class_heritage/extends_clause pair scanned among
// the class node's direct children (HeritageContainerKind/
// HeritageExtendsKind). Go sets neither and always returns nil.
func extractSuperclasses(n synquery.Node, profile languageProfile, source []byte) []string {
	collect := func(container synquery.Node) []string {
		var names []string
		for i := 0; i < container.ChildCount(); i++ {
			c := container.Child(i)
			if c == nil {
				continue
			}
			switch c.Kind() {
			case "identifier", "type_identifier":
				names = append(names, c.Text(source))
			}
		}
		return names
	}

	if profile.HeritageField != "" {
		if container := n.FieldChild(profile.HeritageField); container != nil {
			return collect(container)
		}
		return nil
	}
	if profile.HeritageContainerKind == "" {
		return nil
	}

	var names []string
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil || c.Kind() != profile.HeritageContainerKind {
			continue
		}
		for j := 0; j < c.ChildCount(); j++ {
			inner := c.Child(j)
			if inner == nil || inner.Kind() != profile.HeritageExtendsKind {
				continue
			}
			names = append(names, collect(inner)...)
		}
	}
	return names
}

// extractGoTypeDecl handles Go's "type_declaration wraps one or more
// type_spec" shape (teacher's extractTypeDeclaration/extractTypeSpec).
func extractGoTypeDecl(node synquery.Node, profile languageProfile, source []byte, filePath string) []extractedSymbol {
	var out []extractedSymbol
	for i := 0; i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != profile.TypeSpecKind {
			continue
		}
		name := child.FieldChild("name")
		if name == nil {
			continue
		}
		kind := ident.KindClass
		body := child
		if typeNode := child.FieldChild("type"); typeNode != nil {
			switch typeNode.Kind() {
			case profile.InterfaceTypeKind:
				kind = ident.KindInterface
				body = typeNode
			case profile.StructTypeKind:
				kind = ident.KindClass
				body = typeNode
			default:
				kind = ident.KindClass
				body = typeNode
			}
		}
		out = append(out, extractedSymbol{
			Kind: kind,
			Name: name.Text(source),
			Node: body,
			Position: store.Position{
				Path:      filePath,
				StartLine: child.StartPoint().Row + 1,
				EndLine:   child.EndPoint().Row + 1,
			},
		})
	}
	return out
}
