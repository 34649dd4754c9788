package ident

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dusk-indust/codegraph/internal/errs"
)

// ConflictPolicy selects how the inference engine resolves multiple derived
// edges between the same node pair (spec §3.1, §4.5.5).
type ConflictPolicy string

const (
	ConflictPriorityBased    ConflictPolicy = "priorityBased"
	ConflictMergeAttributes  ConflictPolicy = "mergeAttributes"
	ConflictKeepExisting     ConflictPolicy = "keepExisting"
	ConflictReplaceNew       ConflictPolicy = "replaceNew"
)

// EdgeTypeDef is the registered metadata for one edge type (spec §3.1).
type EdgeTypeDef struct {
	Name           string
	ParentType     string // empty means root of its own tree
	IsTransitive   bool
	IsInheritable  bool
	IsDirected     bool // always true in this core
	Priority       int
	ConflictPolicy ConflictPolicy
}

// TypeRegistry holds the forest of edge-type definitions (spec §4.1).
// Safe for concurrent use; Register must be externally treated as a rare,
// startup-time operation per spec §5's shared-resource policy.
type TypeRegistry struct {
	mu       sync.RWMutex
	defs     map[string]EdgeTypeDef
	children map[string][]string
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		defs:     make(map[string]EdgeTypeDef),
		children: make(map[string][]string),
	}
}

// Register adds def to the registry. It fails with ErrEdgeTypeDuplicate if
// the name is already registered, ErrEdgeTypeUnknown if def.ParentType
// names a type that is not registered, or ErrEdgeTypeCycle if
// def.ParentType would close a cycle.
func (r *TypeRegistry) Register(def EdgeTypeDef) error {
	if def.Name == "" {
		return errs.New(errs.ErrIdentifierInvalid, "TypeRegistry.Register", "empty edge type name")
	}
	def.IsDirected = true // always true in this core, per spec §3.1

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return errs.New(errs.ErrEdgeTypeDuplicate, "TypeRegistry.Register", def.Name)
	}
	if def.ParentType != "" {
		if _, exists := r.defs[def.ParentType]; !exists {
			return errs.New(errs.ErrEdgeTypeUnknown, "TypeRegistry.Register", def.ParentType)
		}
		if r.wouldCycleLocked(def.Name, def.ParentType) {
			return errs.New(errs.ErrEdgeTypeCycle, "TypeRegistry.Register", def.Name)
		}
	}

	r.defs[def.Name] = def
	if def.ParentType != "" {
		r.children[def.ParentType] = append(r.children[def.ParentType], def.Name)
	}
	return nil
}

// wouldCycleLocked reports whether registering name under parent would
// create a cycle. Since name is new, a cycle can only occur if parent (or
// one of its ancestors) is already equal to name — which is impossible for
// a never-before-seen name — so this also guards the case where a caller
// re-registers a type that is an ancestor of its own claimed parent.
func (r *TypeRegistry) wouldCycleLocked(name, parent string) bool {
	seen := map[string]bool{name: true}
	cur := parent
	for cur != "" {
		if seen[cur] {
			return true
		}
		seen[cur] = true
		def, ok := r.defs[cur]
		if !ok {
			return false
		}
		cur = def.ParentType
	}
	return false
}

// Get returns the definition for an edge type.
func (r *TypeRegistry) Get(name string) (EdgeTypeDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Children returns the direct child types of name, sorted.
func (r *TypeRegistry) Children(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]string(nil), r.children[name]...)
	sort.Strings(out)
	return out
}

// Descendants returns the transitive closure of child types of name
// (not including name itself), sorted.
func (r *TypeRegistry) Descendants(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	queue := append([]string(nil), r.children[name]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		queue = append(queue, r.children[cur]...)
	}
	sort.Strings(out)
	return out
}

// Ancestors returns the chain of parent types from name's immediate parent
// up to the forest root, nearest first.
func (r *TypeRegistry) Ancestors(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	cur := name
	for {
		def, ok := r.defs[cur]
		if !ok || def.ParentType == "" {
			break
		}
		out = append(out, def.ParentType)
		cur = def.ParentType
	}
	return out
}

// HierarchyPath returns the path from the forest root to name, inclusive.
func (r *TypeRegistry) HierarchyPath(name string) []string {
	ancestors := r.Ancestors(name)
	path := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		path = append(path, ancestors[i])
	}
	path = append(path, name)
	return path
}

// QueryTypes returns name and every descendant of name — the set of
// concrete edge types a hierarchical query over name should union
// (spec §4.5.1).
func (r *TypeRegistry) QueryTypes(name string) []string {
	out := append([]string{name}, r.Descendants(name)...)
	sort.Strings(out)
	return out
}

// ValidationResult is returned by ValidateHierarchy.
type ValidationResult struct {
	OK     bool
	Errors []string
}

// ValidateHierarchy asserts the forest-shape and referential integrity of
// parentType across every registered definition (spec §4.1, invariant 4).
func (r *TypeRegistry) ValidateHierarchy() ValidationResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errors []string
	for name, def := range r.defs {
		if def.ParentType == "" {
			continue
		}
		if _, ok := r.defs[def.ParentType]; !ok {
			errors = append(errors, fmt.Sprintf("%s: parentType %q is not registered", name, def.ParentType))
			continue
		}
		if r.wouldCycleLocked(name, def.ParentType) {
			errors = append(errors, fmt.Sprintf("%s: parentType chain forms a cycle through %q", name, def.ParentType))
		}
	}
	sort.Strings(errors)
	return ValidationResult{OK: len(errors) == 0, Errors: errors}
}

// Builtin edge type names forming the initial hierarchy of spec §3.3.
const (
	EdgeImports         = "imports"
	EdgeImportsFile      = "imports_file"
	EdgeImportsLibrary   = "imports_library"
	EdgeContains         = "contains"
	EdgeContainsMethod   = "contains-method"
	EdgeContainsField    = "contains-field"
	EdgeDefines          = "defines"
	EdgeDependsOn        = "depends_on"
	EdgeDependsOnFile    = "depends_on_file"
	EdgeCalls            = "calls"
	EdgeCallsMethod      = "calls-method"
	EdgeCallsFunction    = "calls-function"
	EdgeAliasOf          = "aliasOf"
	EdgeAccessesField    = "accesses-field"
	EdgeUses             = "uses"
	EdgeUsesType         = "uses-type"
	EdgeOverridesMethod  = "overrides-method"
	EdgeThrows           = "throws"
	EdgeEquivalence      = "equivalence"
)

// NewDefaultTypeRegistry returns a TypeRegistry pre-populated with the
// initial edge-type hierarchy of spec §3.3, open to further runtime
// registration as new analyzers need.
func NewDefaultTypeRegistry() *TypeRegistry {
	r := NewTypeRegistry()
	defs := []EdgeTypeDef{
		{Name: EdgeImports, Priority: 0, ConflictPolicy: ConflictPriorityBased},
		{Name: EdgeImportsFile, ParentType: EdgeImports, ConflictPolicy: ConflictPriorityBased},
		{Name: EdgeImportsLibrary, ParentType: EdgeImports, ConflictPolicy: ConflictPriorityBased},

		{Name: EdgeContains, IsInheritable: true, ConflictPolicy: ConflictMergeAttributes},
		{Name: EdgeContainsMethod, ParentType: EdgeContains, IsInheritable: true, ConflictPolicy: ConflictMergeAttributes},
		{Name: EdgeContainsField, ParentType: EdgeContains, IsInheritable: true, ConflictPolicy: ConflictMergeAttributes},
		{Name: EdgeDefines, ParentType: EdgeContains, IsInheritable: true, ConflictPolicy: ConflictMergeAttributes},

		{Name: EdgeDependsOn, IsTransitive: true, IsInheritable: true, Priority: 5, ConflictPolicy: ConflictPriorityBased},
		{Name: EdgeDependsOnFile, ParentType: EdgeDependsOn, IsTransitive: true, IsInheritable: true, Priority: 5, ConflictPolicy: ConflictPriorityBased},

		{Name: EdgeCalls, ConflictPolicy: ConflictKeepExisting},
		{Name: EdgeCallsMethod, ParentType: EdgeCalls, ConflictPolicy: ConflictKeepExisting},
		{Name: EdgeCallsFunction, ParentType: EdgeCalls, ConflictPolicy: ConflictKeepExisting},

		{Name: EdgeAliasOf, ConflictPolicy: ConflictKeepExisting},
		{Name: EdgeAccessesField, ConflictPolicy: ConflictKeepExisting},
		{Name: EdgeUses, ConflictPolicy: ConflictKeepExisting},
		{Name: EdgeUsesType, ConflictPolicy: ConflictKeepExisting},
		{Name: EdgeOverridesMethod, ConflictPolicy: ConflictKeepExisting},
		{Name: EdgeThrows, ConflictPolicy: ConflictKeepExisting},
		{Name: EdgeEquivalence, ConflictPolicy: ConflictMergeAttributes},
	}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			// The builtin set is constructed by this package and is known
			// consistent; a failure here is a programming error.
			panic(fmt.Sprintf("ident: builtin edge type registration failed: %v", err))
		}
	}
	return r
}
