package symbolanalyzer

import "github.com/dusk-indust/codegraph/internal/synquery"

// logicalOperatorTokens are the literal && / || tokens tree-sitter grammars
// expose as anonymous leaf nodes whose Kind() is the operator text itself.
var logicalOperatorTokens = map[string]bool{
	"&&": true, "||": true,
}

// CyclomaticComplexity implements spec §4.4.3: 1 plus the count of
// branching constructs inside body — if/else-if, for, while, do-while,
// case, catch, && , ||, ternary ?: — counting nested constructs.
func CyclomaticComplexity(body synquery.Node, profile languageProfile) int {
	if body == nil {
		return 1
	}
	count := 0
	synquery.Walk(body, func(n synquery.Node) {
		kind := n.Kind()
		if profile.BranchKinds[kind] || logicalOperatorTokens[kind] {
			count++
		}
	})
	return 1 + count
}

// ContainsSelfCall reports whether body contains a direct call to a
// function/method named selfName — the "recursive" semantic tag (spec
// §4.4.3).
func ContainsSelfCall(body synquery.Node, profile languageProfile, source []byte, selfName string) bool {
	if body == nil || selfName == "" {
		return false
	}
	found := false
	synquery.Walk(body, func(n synquery.Node) {
		if found || n.Kind() != profile.CallExpr {
			return
		}
		fn := n.FieldChild(profile.CallFunctionField)
		if fn == nil {
			return
		}
		text := fn.Text(source)
		if text == selfName || text == profile.ThisIdent+"."+selfName {
			found = true
		}
	})
	return found
}

// ContainsImpureConstructs is a best-effort, heuristic implementation of
// the "pure-function" semantic tag's negative conditions (spec §4.4.3):
// an assignment through a member-expression receiver (this.*/self.*), or
// a call to one of the given I/O builtin names.
func ContainsImpureConstructs(body synquery.Node, profile languageProfile, source []byte, ioBuiltins map[string]bool) bool {
	if body == nil {
		return false
	}
	impure := false
	synquery.Walk(body, func(n synquery.Node) {
		if impure {
			return
		}
		switch n.Kind() {
		case "assignment_expression", "assignment_statement", "augmented_assignment",
			"augmented_assignment_expression", "assignment", "compound_assignment_expr":
			target := n.FieldChild("left")
			if target == nil {
				target = n.FieldChild("target")
			}
			if target != nil && target.Kind() == profile.MemberExpr {
				text := target.Text(source)
				if profile.ThisIdent != "" && (text == profile.ThisIdent || hasReceiverPrefix(text, profile.ThisIdent)) {
					impure = true
				}
			}
		case profile.CallExpr:
			fn := n.FieldChild(profile.CallFunctionField)
			if fn != nil && ioBuiltins[fn.Text(source)] {
				impure = true
			}
		}
	})
	return impure
}

func hasReceiverPrefix(text, receiver string) bool {
	if len(text) <= len(receiver) {
		return false
	}
	return text[:len(receiver)] == receiver && text[len(receiver)] == '.'
}

// defaultIOBuiltins are common I/O entry points across the analyzer's
// supported languages, used by the pure-function heuristic.
var defaultIOBuiltins = map[string]bool{
	"fmt.Println": true, "fmt.Printf": true, "fmt.Print": true,
	"console.log": true, "console.error": true, "console.warn": true,
	"print": true, "open": true, "fetch": true,
}
