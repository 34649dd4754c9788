package symbolanalyzer

import (
	"strings"

	"github.com/dusk-indust/codegraph/internal/store"
	"github.com/dusk-indust/codegraph/internal/synquery"
)

// Visibility mirrors spec §4.4.3's visibility enumeration.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// extractedMethod is one method found on a class/interface symbol, fully
// analyzed (spec §4.4.3) but not yet converted into store.Node/store.Edge
// values — that conversion happens in wiring.go's analyzeMethodsAndFields,
// which has the project/identifier context.
type extractedMethod struct {
	OwnerName  string
	Name       string
	Position   store.Position
	Params     []Param
	ReturnType string
	IsStatic   bool
	IsAsync    bool
	Visibility Visibility
	Complexity int
	Tags       []string
	Calls      []MethodCall
	FieldUses  []FieldAccess
	Body       synquery.Node
}

type Param struct {
	Name string
	Type string
}

// CallType mirrors spec §4.4.3's callType enumeration for calls-method
// edges.
type CallType string

const (
	CallThis   CallType = "this"
	CallSuper  CallType = "super"
	CallDirect CallType = "direct"
	CallStatic CallType = "static"
)

type MethodCall struct {
	Callee string
	Type   CallType
}

type FieldAccess struct {
	Field      string
	AccessType CallType
	IsWrite    bool
}

// extractedField is a declared class field (spec §4.4.3, last paragraph).
type extractedField struct {
	Name           string
	Position       store.Position
	Visibility     Visibility
	HasInitializer bool
	Type           string
}

// ExtractMethods finds every method belonging to the given symbols (spec
// §4.4.3). Grounded on the teacher's per-language extractor walks; the
// Go/TypeScript structural difference (receiver-matched top-level funcs vs
// nested class members) is handled by languageProfile.MethodsNestedInClass.
func ExtractMethods(root synquery.Node, profile languageProfile, source []byte, symbols []extractedSymbol) []extractedMethod {
	if profile.MethodDecl == "" {
		return nil
	}
	if profile.MethodsNestedInClass {
		return extractNestedMethods(profile, source, symbols)
	}
	return extractReceiverMethods(root, profile, source, symbols)
}

func extractNestedMethods(profile languageProfile, source []byte, symbols []extractedSymbol) []extractedMethod {
	var out []extractedMethod
	for _, sym := range symbols {
		body := sym.Node.FieldChild(profile.BodyField)
		if body == nil {
			continue
		}
		for i := 0; i < body.ChildCount(); i++ {
			child := body.Child(i)
			if child == nil || child.Kind() != profile.MethodDecl {
				continue
			}
			out = append(out, buildMethod(child, profile, source, sym.Name))
		}
	}
	return out
}

func extractReceiverMethods(root synquery.Node, profile languageProfile, source []byte, symbols []extractedSymbol) []extractedMethod {
	byName := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		byName[s.Name] = true
	}

	var out []extractedMethod
	synquery.Walk(root, func(n synquery.Node) {
		if n.Kind() != profile.MethodDecl {
			return
		}
		recv := n.FieldChild(profile.ReceiverField)
		if recv == nil {
			return
		}
		owner := receiverTypeName(recv, source)
		if owner == "" || !byName[owner] {
			return
		}
		out = append(out, buildMethod(n, profile, source, owner))
	})
	return out
}

// receiverTypeName extracts the type name from a Go receiver parameter
// list, stripping a leading pointer_type wrapper (e.g. "(s *Service)" → "Service").
func receiverTypeName(recv synquery.Node, source []byte) string {
	for i := 0; i < recv.ChildCount(); i++ {
		param := recv.Child(i)
		if param == nil || param.Kind() != "parameter_declaration" {
			continue
		}
		typ := param.FieldChild("type")
		if typ == nil {
			continue
		}
		if typ.Kind() == "pointer_type" {
			inner := typ.Child(typ.ChildCount() - 1)
			if inner != nil {
				return inner.Text(source)
			}
			continue
		}
		return typ.Text(source)
	}
	return ""
}

func buildMethod(n synquery.Node, profile languageProfile, source []byte, owner string) extractedMethod {
	name := ""
	if nameNode := n.FieldChild("name"); nameNode != nil {
		name = nameNode.Text(source)
	}
	body := n.FieldChild("body")
	params := extractParams(n, source)
	m := extractedMethod{
		OwnerName: owner,
		Name:      name,
		Position: store.Position{
			StartLine: n.StartPoint().Row + 1,
			EndLine:   n.EndPoint().Row + 1,
		},
		Params:     params,
		IsStatic:   hasModifier(n, source, "static"),
		IsAsync:    hasModifier(n, source, "async"),
		Visibility: resolveVisibility(n, source),
		Complexity: CyclomaticComplexity(body, profile),
		Body:       body,
	}
	if rt := n.FieldChild("return_type"); rt != nil {
		m.ReturnType = rt.Text(source)
	} else if rt := n.FieldChild("result"); rt != nil {
		m.ReturnType = rt.Text(source)
	}

	m.Calls = extractCalls(body, profile, source, m)
	m.FieldUses = extractFieldAccesses(body, profile, source, owner)
	m.Tags = semanticTags(m, profile, source)
	return m
}

func extractParams(n synquery.Node, source []byte) []Param {
	list := n.FieldChild("parameters")
	if list == nil {
		return nil
	}
	var params []Param
	for i := 0; i < list.ChildCount(); i++ {
		child := list.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "parameter_declaration", "required_parameter", "optional_parameter":
			name := child.FieldChild("name")
			typ := child.FieldChild("type")
			p := Param{}
			if name != nil {
				p.Name = name.Text(source)
			}
			if typ != nil {
				p.Type = typ.Text(source)
			}
			if p.Name != "" {
				params = append(params, p)
			}
		}
	}
	return params
}

func hasModifier(n synquery.Node, source []byte, modifier string) bool {
	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && strings.Contains(child.Text(source), modifier) && strings.Contains(child.Kind(), "modifier") {
			return true
		}
	}
	return false
}

func resolveVisibility(n synquery.Node, source []byte) Visibility {
	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || !strings.Contains(child.Kind(), "modifier") {
			continue
		}
		switch child.Text(source) {
		case "private":
			return VisibilityPrivate
		case "protected":
			return VisibilityProtected
		}
	}
	return VisibilityPublic
}

func extractCalls(body synquery.Node, profile languageProfile, source []byte, m extractedMethod) []MethodCall {
	if body == nil {
		return nil
	}
	var out []MethodCall
	synquery.Walk(body, func(n synquery.Node) {
		if n.Kind() != profile.CallExpr {
			return
		}
		fn := n.FieldChild(profile.CallFunctionField)
		if fn == nil {
			return
		}
		callee := fn.Text(source)
		callType := CallDirect
		switch {
		case profile.ThisIdent != "" && strings.HasPrefix(callee, "super."):
			callType = CallSuper
		case profile.ThisIdent != "" && strings.HasPrefix(callee, profile.ThisIdent+"."):
			callType = CallThis
		case callee == m.Name:
			callType = CallDirect
		}
		out = append(out, MethodCall{Callee: callee, Type: callType})
	})
	return out
}

// extractFieldAccesses finds this/super/static field accesses within body
// (spec §4.4.3: accessType ∈ {this, super, static}, isWrite: bool). It
// walks with assignment-target context carried explicitly rather than via
// synquery.Walk's plain visitor, since isWrite requires knowing whether
// the current node sits in a write position (an assignment's target
// field) rather than just its node kind.
func extractFieldAccesses(body synquery.Node, profile languageProfile, source []byte, ownerName string) []FieldAccess {
	if body == nil || profile.ThisIdent == "" {
		return nil
	}
	var out []FieldAccess
	var walk func(n synquery.Node, isWrite bool)
	walk = func(n synquery.Node, isWrite bool) {
		if n == nil {
			return
		}
		if n.Kind() == profile.MemberExpr {
			if accessType, field, ok := classifyFieldAccess(n.Text(source), profile, ownerName); ok {
				out = append(out, FieldAccess{Field: field, AccessType: accessType, IsWrite: isWrite})
			}
			return // a member expression's object/property children aren't independent accesses
		}
		if isAssignmentKind(n.Kind(), profile) {
			target := n.FieldChild(profile.AssignmentTargetField)
			for i := 0; i < n.ChildCount(); i++ {
				child := n.Child(i)
				walk(child, sameNode(child, target))
			}
			return
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i), false)
		}
	}
	walk(body, false)
	return out
}

// classifyFieldAccess matches a member-expression's text against
// this/super/static access patterns, returning the bare field name.
func classifyFieldAccess(text string, profile languageProfile, ownerName string) (CallType, string, bool) {
	bareField := func(prefix string) (string, bool) {
		field := strings.TrimPrefix(text, prefix)
		if field == text || strings.ContainsAny(field, ".()") {
			return "", false
		}
		return field, true
	}
	if field, ok := bareField("super."); ok {
		return CallSuper, field, true
	}
	if profile.ThisIdent != "" {
		if field, ok := bareField(profile.ThisIdent + "."); ok {
			return CallThis, field, true
		}
	}
	if ownerName != "" {
		if field, ok := bareField(ownerName + "."); ok {
			return CallStatic, field, true
		}
	}
	return "", "", false
}

func isAssignmentKind(kind string, profile languageProfile) bool {
	for _, k := range profile.AssignmentExprKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// sameNode compares nodes by source span rather than interface identity,
// since distinct Node values (e.g. from FieldChild vs. Child) may wrap the
// same underlying position without being == comparable.
func sameNode(a, b synquery.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartPoint() == b.StartPoint() && a.EndPoint() == b.EndPoint()
}

// semanticTags implements spec §4.4.3's soft-label set.
func semanticTags(m extractedMethod, profile languageProfile, source []byte) []string {
	var tags []string
	if m.Name == "constructor" || m.Name == "__init__" || m.Name == "New"+m.OwnerName {
		tags = append(tags, "constructor")
	}
	if m.IsStatic {
		tags = append(tags, "static-method")
	}
	if m.IsAsync {
		tags = append(tags, "async-method")
	}
	if isAccessor(m) {
		tags = append(tags, "accessor")
	}
	if m.Complexity > 10 {
		tags = append(tags, "high-complexity")
	}
	if ContainsSelfCall(m.Body, profile, source, m.Name) {
		tags = append(tags, "recursive")
	}
	if !ContainsImpureConstructs(m.Body, profile, source, defaultIOBuiltins) {
		tags = append(tags, "pure-function", "heuristic:true")
	}
	return tags
}

func isAccessor(m extractedMethod) bool {
	switch {
	case strings.HasPrefix(m.Name, "get") && len(m.Params) == 0:
		return true
	case strings.HasPrefix(m.Name, "set") && len(m.Params) == 1:
		return true
	default:
		return false
	}
}

// ExtractFields finds declared fields on a class/interface symbol (spec
// §4.4.3 last paragraph).
func ExtractFields(profile languageProfile, source []byte, sym extractedSymbol) []extractedField {
	var container synquery.Node
	if profile.MethodsNestedInClass {
		container = sym.Node.FieldChild(profile.BodyField)
	} else {
		container = sym.Node
	}
	if container == nil || profile.FieldDecl == "" {
		return nil
	}

	var out []extractedField
	synquery.Walk(container, func(n synquery.Node) {
		if n.Kind() != profile.FieldDecl {
			return
		}
		name := n.FieldChild("name")
		if name == nil {
			// Go field_declaration may declare multiple names without a
			// single "name" field; fall back to scanning field_identifier children.
			for i := 0; i < n.ChildCount(); i++ {
				c := n.Child(i)
				if c != nil && c.Kind() == "field_identifier" {
					out = append(out, extractedField{
						Name: c.Text(source),
						Position: store.Position{
							StartLine: n.StartPoint().Row + 1,
							EndLine:   n.EndPoint().Row + 1,
						},
						Visibility: VisibilityPublic,
					})
				}
			}
			return
		}
		field := extractedField{
			Name: name.Text(source),
			Position: store.Position{
				StartLine: n.StartPoint().Row + 1,
				EndLine:   n.EndPoint().Row + 1,
			},
			Visibility:     resolveVisibility(n, source),
			HasInitializer: n.FieldChild("value") != nil,
		}
		if typ := n.FieldChild("type"); typ != nil {
			field.Type = typ.Text(source)
		}
		out = append(out, field)
	})
	return out
}

// OverridesMethod reports whether child overrides parent by name/arity
// identity (spec §4.4.3's inheritance paragraph).
func OverridesMethod(child, parent extractedMethod) bool {
	return child.Name == parent.Name && len(child.Params) == len(parent.Params)
}
