// Package scope implements ScopeInfo (spec §3): an immutable description of
// the innermost namespace/class/function enclosing a run of tokens, shared
// by reference from every token inside it.
package scope

// Kind is the kind of construct a scope corresponds to.
type Kind int8

const (
	Global Kind = iota + 1
	Namespace
	Record
	MemberFunction
	Other
)

func (k Kind) String() string {
	switch k {
	case Global:
		return "Global"
	case Namespace:
		return "Namespace"
	case Record:
		return "Record"
	case MemberFunction:
		return "MemberFunction"
	case Other:
		return "Other"
	default:
		return "Unknown"
	}
}

// Info is a ScopeInfo node (spec §3). Building a child scope allocates a
// new Info pointing at its Parent. Info is not immutable: New returns it
// with empty sets, and internal/driver's assignScopes adds to
// UsingNamespaces, RecordTypes and BaseTypes while it builds the tree.
type Info struct {
	FullName  string
	Kind      Kind
	BodyStart int // as passed to New; internal/driver always passes 0.
	BodyEnd   int // as passed to New; internal/driver passes 0, or -1 for the global scope.

	// UsingNamespaces is the set of namespace names imported via
	// `using namespace` directives visible in this scope (spec open
	// question #2: this includes function-body-local using-directives,
	// not just file-scope ones).
	UsingNamespaces map[string]bool
	// RecordTypes is the set of nested record (class/struct/union) type
	// names declared directly in this scope.
	RecordTypes map[string]bool
	// BaseTypes is the set of base-class names, populated only when Kind
	// == Record.
	BaseTypes map[string]bool

	Parent *Info
}

// New constructs a child Info under parent. fullName is the scope's fully
// qualified name (e.g. "A::B::Foo"); bodyStart/bodyEnd are token indices
// of the enclosing braces.
func New(parent *Info, fullName string, kind Kind, bodyStart, bodyEnd int) *Info {
	return &Info{
		FullName:        fullName,
		Kind:            kind,
		BodyStart:       bodyStart,
		BodyEnd:         bodyEnd,
		UsingNamespaces: map[string]bool{},
		RecordTypes:     map[string]bool{},
		BaseTypes:       map[string]bool{},
		Parent:          parent,
	}
}

// Path returns the chain of scopes from the global scope down to this one,
// inclusive.
func (i *Info) Path() []*Info {
	if i == nil {
		return nil
	}
	var path []*Info
	for s := i; s != nil; s = s.Parent {
		path = append([]*Info{s}, path...)
	}
	return path
}

// IsInside reports whether i is other, or nested within other.
func (i *Info) IsInside(other *Info) bool {
	for s := i; s != nil; s = s.Parent {
		if s == other {
			return true
		}
	}
	return false
}

// InheritsFrom reports whether this record scope's (possibly-qualified)
// base type set contains name, directly or via a registered base-of-base
// lookup function. Used by the variable-id assigner's pass 2 (spec §4.6)
// to resolve member lookups through inheritance.
func (i *Info) InheritsFrom(name string, resolve func(baseName string) *Info) bool {
	if i == nil || i.Kind != Record {
		return false
	}
	seen := map[string]bool{}
	var walk func(*Info) bool
	walk = func(s *Info) bool {
		if s == nil || s.Kind != Record {
			return false
		}
		for base := range s.BaseTypes {
			if base == name {
				return true
			}
			if seen[base] {
				continue
			}
			seen[base] = true
			if resolve != nil {
				if baseScope := resolve(base); baseScope != nil && walk(baseScope) {
					return true
				}
			}
		}
		return false
	}
	return walk(i)
}
