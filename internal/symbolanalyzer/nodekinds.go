package symbolanalyzer

import "github.com/dusk-indust/codegraph/internal/store"

// languageProfile maps a language's tree-sitter grammar node-kind strings
// onto the generic constructs the analyzer looks for, so symbols.go and
// methods.go walk every language with the same code instead of duplicating
// the teacher's per-language extractor methods (goExtractor, tsExtractor,
// ...) four times over.
type languageProfile struct {
	ImportStmt   string // e.g. "import_spec" (Go), "import_statement" (TS)
	ImportSource string // field name holding the import path/spec, "" if positional
	// ImportPositional is true for grammars (Rust's use_declaration) whose
	// import specifier is a bare path expression rather than a string
	// literal or named field — see parseImportStmt's positional fallback.
	ImportPositional bool

	FunctionDecl string
	ClassDecl    string
	InterfaceDecl string
	MethodDecl   string // "" disables method extraction (ExtractMethods returns nil)
	TypeAliasDecl string
	FieldDecl    string

	// Branching node kinds counted toward cyclomatic complexity (spec
	// §4.4.3): if/else-if, for, while, do-while, case, catch, &&, ||,
	// ternary.
	BranchKinds map[string]bool

	CallExpr      string
	CallFunctionField string // field name on CallExpr holding the callee expression

	MemberExpr string // selector/member access node kind, used for accesses-field detection
	ThisIdent  string // literal text identifying "this"/"self" receiver access

	// TypeDeclWrapsSpec is true for languages (Go) where ClassDecl,
	// InterfaceDecl, and TypeAliasDecl all share one wrapper node kind
	// containing one or more TypeSpecKind children, each classified by
	// inspecting its "type" field (StructTypeKind → class,
	// InterfaceTypeKind → interface, anything else → type alias).
	TypeDeclWrapsSpec bool
	TypeSpecKind      string
	StructTypeKind    string
	InterfaceTypeKind string

	// MethodsNestedInClass is true when methods/fields are found as
	// children of the class/interface body (TypeScript's class_body).
	// When false (Go), methods are separate top-level declarations
	// matched to their owning type via a receiver parameter, and fields
	// are read directly from the symbol's already-resolved body node.
	MethodsNestedInClass bool
	// BodyField is the field name holding a class/interface's member
	// list, used only when MethodsNestedInClass is true.
	BodyField string
	// ReceiverField is the field name on MethodDecl holding a Go-style
	// receiver parameter list, used only when MethodsNestedInClass is
	// false.
	ReceiverField string

	// HeritageField is the field name on ClassDecl holding base-class
	// references directly (Python's "superclasses" argument_list). "" for
	// languages that nest the heritage clause under an intermediate node
	// kind instead (see HeritageContainerKind), or that have no class
	// inheritance construct at all (Go).
	HeritageField string
	// HeritageContainerKind is the node kind of an intermediate heritage
	// wrapper found among ClassDecl's direct children when HeritageField
	// is "" (TypeScript's "class_heritage"). HeritageExtendsKind is the
	// node kind within that wrapper holding the actual base-class
	// identifiers (TypeScript's "extends_clause", as opposed to its
	// sibling "implements_clause").
	HeritageContainerKind string
	HeritageExtendsKind   string

	// AssignmentExprKinds lists node kinds representing a write (plain
	// and compound assignment), used to detect isWrite on a field access
	// (spec §4.4.3). AssignmentTargetField is the field name on any of
	// those node kinds holding the write target.
	AssignmentExprKinds  []string
	AssignmentTargetField string
}

var goProfile = languageProfile{
	ImportStmt:    "import_spec",
	ImportSource:  "path",
	FunctionDecl:  "function_declaration",
	ClassDecl:     "type_declaration", // struct types stand in for "class" in Go
	InterfaceDecl: "type_declaration",
	MethodDecl:    "method_declaration",
	TypeAliasDecl: "type_declaration",
	FieldDecl:     "field_declaration",
	TypeDeclWrapsSpec:    true,
	TypeSpecKind:         "type_spec",
	StructTypeKind:       "struct_type",
	InterfaceTypeKind:    "interface_type",
	MethodsNestedInClass: false,
	ReceiverField:        "receiver",
	BranchKinds: map[string]bool{
		"if_statement": true, "for_statement": true, "expression_case": true,
		"type_case": true, "communication_case": true, "default_case": true,
	},
	CallExpr:          "call_expression",
	CallFunctionField: "function",
	MemberExpr:        "selector_expression",
	ThisIdent:         "", // Go has no implicit receiver identifier
}

var tsProfile = languageProfile{
	ImportStmt:    "import_statement",
	ImportSource:  "source",
	FunctionDecl:  "function_declaration",
	ClassDecl:     "class_declaration",
	InterfaceDecl: "interface_declaration",
	MethodDecl:    "method_definition",
	TypeAliasDecl: "type_alias_declaration",
	FieldDecl:     "public_field_definition",
	BranchKinds: map[string]bool{
		"if_statement": true, "for_statement": true, "for_in_statement": true,
		"while_statement": true, "do_statement": true, "switch_case": true,
		"catch_clause": true, "ternary_expression": true,
	},
	CallExpr:          "call_expression",
	CallFunctionField: "function",
	MemberExpr:        "member_expression",
	ThisIdent:         "this",

	MethodsNestedInClass: true,
	BodyField:            "body",

	HeritageContainerKind: "class_heritage",
	HeritageExtendsKind:   "extends_clause",

	AssignmentExprKinds:   []string{"assignment_expression", "augmented_assignment_expression"},
	AssignmentTargetField: "left",
}

var pythonProfile = languageProfile{
	ImportStmt:    "import_from_statement",
	ImportSource:  "module_name",
	FunctionDecl:  "function_definition",
	ClassDecl:     "class_definition",
	InterfaceDecl: "class_definition",
	MethodDecl:    "", // Python methods are function_definition nodes nested in a class body
	TypeAliasDecl: "",
	FieldDecl:     "",
	BranchKinds: map[string]bool{
		"if_statement": true, "elif_clause": true, "for_statement": true, "while_statement": true,
		"case_clause": true, "except_clause": true, "conditional_expression": true,
		"boolean_operator": true,
	},
	CallExpr:          "call",
	CallFunctionField: "function",
	MemberExpr:        "attribute",
	ThisIdent:         "self",

	HeritageField: "superclasses",

	AssignmentExprKinds:   []string{"assignment", "augmented_assignment"},
	AssignmentTargetField: "left",
}

// rustProfile maps tree-sitter-rust's grammar onto the generic constructs.
// Rust has no class-inheritance construct (traits provide default methods
// but no extends relation), so the Heritage* fields are left at their zero
// value like Go's.
var rustProfile = languageProfile{
	ImportStmt:       "use_declaration",
	ImportPositional: true,

	FunctionDecl:  "function_item",
	ClassDecl:     "struct_item",
	InterfaceDecl: "trait_item",
	// MethodDecl is "" like pythonProfile's: Rust methods are function_item
	// nodes nested in a separate impl_item block rather than directly in
	// struct_item's body, the same "nested in an unrelated container"
	// shape that already leaves Python's class methods unextracted here.
	MethodDecl:    "",
	TypeAliasDecl: "type_item",
	FieldDecl:     "field_declaration",

	BranchKinds: map[string]bool{
		"if_expression": true, "for_expression": true, "while_expression": true,
		"loop_expression": true, "match_arm": true,
	},

	CallExpr:          "call_expression",
	CallFunctionField: "function",
	MemberExpr:        "field_expression",
	ThisIdent:         "self",

	AssignmentExprKinds:   []string{"assignment_expression", "compound_assignment_expr"},
	AssignmentTargetField: "left",
}

func profileFor(lang store.Language) (languageProfile, bool) {
	switch lang {
	case store.LangGo:
		return goProfile, true
	case store.LangTypeScript, store.LangTSX, store.LangJavaScript, store.LangJSX:
		return tsProfile, true
	case store.LangPython:
		return pythonProfile, true
	case store.LangRust:
		return rustProfile, true
	default:
		return languageProfile{}, false
	}
}
