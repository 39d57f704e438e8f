// Package varid implements the two-pass variable-id assigner of spec
// §4.6: pass 1 assigns ids to locals and parameters via a single forward
// traversal, pass 2 propagates ids to qualified member uses within class
// and namespace bodies.
package varid

import (
	"github.com/cxxtok/cxxtok/internal/rangemap"
	"github.com/cxxtok/cxxtok/internal/scope"
	"github.com/cxxtok/cxxtok/internal/token"
)

// scopeFrame mirrors VarIdScopeInfo (spec §4.6): a stack entry pushed at
// `{` and popped at its matching `}`.
type scopeFrame struct {
	isExecutable bool
	isStructInit bool
	isEnum       bool
	startVarID   int
	undoFrom     int // index into the assigner's undo log at scope entry.
}

// undoEntry records a VariableMap mutation so it can be rolled back when
// its scope closes, instead of layering a persistent map (spec §4.6:
// "an explicit undo log ... instead of a garbage-collected persistent
// map", matching the arena-handle style's preference for flat mutable
// state).
type undoEntry struct {
	name     string
	previous int // 0 if the name had no prior binding in this map.
	hadPrior bool
}

// Assigner runs the variable-id pass over one TokenList.
type Assigner struct {
	list    *token.TokenList
	nextID  int
	current map[string]int
	undo    []undoEntry
	scopes  []scopeFrame
}

// New builds an Assigner for list, continuing id allocation from
// startID+1 (so multiple translation units sharing an id space can be
// offset by the driver if ever required; single-unit callers pass 0).
func New(list *token.TokenList, startID int) *Assigner {
	return &Assigner{list: list, nextID: startID, current: map[string]int{}}
}

func (a *Assigner) bind(name string, id int) {
	prev, had := a.current[name]
	a.undo = append(a.undo, undoEntry{name: name, previous: prev, hadPrior: had})
	a.current[name] = id
}

func (a *Assigner) pushScope() {
	a.scopes = append(a.scopes, scopeFrame{undoFrom: len(a.undo)})
}

func (a *Assigner) popScope() {
	if len(a.scopes) == 0 {
		return
	}
	top := a.scopes[len(a.scopes)-1]
	a.scopes = a.scopes[:len(a.scopes)-1]
	for i := len(a.undo) - 1; i >= top.undoFrom; i-- {
		e := a.undo[i]
		if e.hadPrior {
			a.current[e.name] = e.previous
		} else {
			delete(a.current, e.name)
		}
	}
	a.undo = a.undo[:top.undoFrom]
}

var typeKeywords = map[string]bool{
	"int": true, "char": true, "short": true, "long": true, "float": true,
	"double": true, "bool": true, "void": true, "auto": true,
	"unsigned": true, "signed": true, "wchar_t": true,
}

var tagKeywords = map[string]bool{"struct": true, "enum": true, "union": true, "class": true}

// Pass1 assigns ids to locals and parameters (spec §4.6 pass 1). Returns
// the id counter value after the pass, so callers can seed a later
// translation unit (Pass2 assigns no new ids).
func (a *Assigner) Pass1() int {
	for t := a.list.Head(); !t.Nil(); t = t.Next() {
		switch t.Lexeme() {
		case "{":
			a.pushScope()
		case "}":
			a.popScope()
		}

		if isDeclarationStart(t) {
			t = a.parseDeclaration(t)
			continue
		}

		if t.Kind() == token.Name && !isMemberAccessName(t) {
			if id, ok := a.current[t.Lexeme()]; ok {
				t.SetVarID(id)
			}
		}
	}
	return a.nextID
}

// isDeclarationStart is a conservative gate: only consider a position a
// candidate declaration if it starts with a type keyword, a tag keyword
// ahead of a name, or `auto` (including the structured-binding form).
func isDeclarationStart(t token.Token) bool {
	return typeKeywords[t.Lexeme()] || tagKeywords[t.Lexeme()]
}

// parseDeclaration consumes type tokens (with pointer/reference
// qualifiers) starting at t and assigns an id to the following name if
// it is a plausible declarator, per the exclusions enumerated in spec
// §4.6. Returns the last token it consumed.
func (a *Assigner) parseDeclaration(t token.Token) token.Token {
	cur := t
	if tagKeywords[cur.Lexeme()] {
		// `struct Foo x;` -- Foo is a tag name, not a variable; skip over
		// it without binding, per spec §4.6's "names after
		// struct/enum/union/class keywords do not receive an id", then
		// keep parsing the declarator that follows (`x`).
		tagName := cur.Next()
		if tagName.Kind() == token.Name {
			cur = tagName.Next()
		} else {
			cur = tagName
		}
		if cur.Nil() {
			return t
		}
	}

	for typeKeywords[cur.Lexeme()] || cur.Lexeme() == "*" || cur.Lexeme() == "&" || cur.Lexeme() == "&&" || cur.Lexeme() == "const" {
		cur = cur.Next()
		if cur.Nil() {
			return t
		}
	}

	if cur.Lexeme() == "[" {
		// Structured binding: `auto [a, b] = ...;`
		return a.bindStructuredBinding(cur)
	}

	if cur.Kind() != token.Name {
		return t
	}
	if isMemberAccessName(cur) {
		return cur
	}
	if isInsideSizeof(cur) {
		return cur
	}

	// Range-based for: `for (auto x : xs)` -- x is visible only inside
	// the loop body; it still gets an id here, and its enclosing `{`
	// will pop it along with the rest of the for-header scope.
	a.assign(cur)
	return cur
}

func (a *Assigner) bindStructuredBinding(lbracket token.Token) token.Token {
	if lbracket.Link().Nil() {
		return lbracket
	}
	end := lbracket.Link()
	for n := lbracket.Next(); !n.Equal(end); n = n.Next() {
		if n.Kind() == token.Name {
			a.assign(n)
		}
	}
	return end
}

func (a *Assigner) assign(name token.Token) {
	a.nextID++
	a.bind(name.Lexeme(), a.nextID)
	name.SetVarID(a.nextID)
}

func isMemberAccessName(t token.Token) bool {
	prev := t.Prev()
	if prev.Nil() {
		return false
	}
	switch prev.Lexeme() {
	case "::":
		return true
	case ".", "->":
		// `(*this).name` is still a member of the current object, not a
		// qualified external access, but it is also not a fresh
		// declaration -- either way it must not be bound here.
		return true
	}
	return false
}

func isInsideSizeof(t token.Token) bool {
	depth := 0
	for p := t.Prev(); !p.Nil(); p = p.Prev() {
		switch p.Lexeme() {
		case ")":
			depth++
		case "(":
			if depth == 0 {
				return p.Prev().Lexeme() == "sizeof"
			}
			depth--
		case ";", "{", "}":
			return false
		}
	}
	return false
}

// classBody records one class/struct/namespace body found during Pass2's
// first walk: its brace range and the member ids declared directly
// inside it (before inheritance is folded in).
type classBody struct {
	open, close token.Token
	members     map[string]int
}

// Pass2 walks each class/struct/namespace body (spec §4.6 pass 2),
// collecting member names declared directly in the body, extends each
// class's member set with its base classes' members (spec §4.6:
// "base-class members are included by following baseTypes", resolved
// transitively via resolveBase/scope.Info.BaseTypes), and then assigns
// ids to qualified uses (`X::name`, and `obj.name`/`obj->name` where the
// token before `.`/`->` has an enclosing scope whose FullName is X; obj's
// declared type is not looked up) and unqualified uses lexically inside
// X's body.
// resolveBase looks up a named class's scope, for walking inheritance
// chains; it may be nil if no base-class tracking is available.
func (a *Assigner) Pass2(resolveBase func(name string) *scope.Info) {
	seq := sequenceIndex(a.list)
	bodies := map[string]classBody{}

	for t := a.list.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() != "class" && t.Lexeme() != "struct" && t.Lexeme() != "namespace" {
			continue
		}
		name := t.Next()
		if name.Kind() != token.Name {
			continue
		}
		brace := name
		for !brace.Nil() && brace.Lexeme() != "{" && brace.Lexeme() != ";" {
			brace = brace.Next()
		}
		if brace.Nil() || brace.Lexeme() != "{" || brace.Link().Nil() {
			continue
		}

		bodies[name.Lexeme()] = classBody{
			open:    brace,
			close:   brace.Link(),
			members: a.collectMembers(brace, brace.Link()),
		}
	}

	if resolveBase == nil {
		resolveBase = func(string) *scope.Info { return nil }
	}
	for className, body := range bodies {
		members := a.inheritedMembers(className, body.members, bodies, resolveBase, map[string]bool{})
		a.propagateMembers(className, members, body.open, body.close, seq)
	}
}

// inheritedMembers extends a class's own member map with every member
// declared on a base class reachable (directly or transitively) via
// resolveBase and scope.Info.BaseTypes, preferring the most-derived
// declaration when a name is redeclared along the chain. seen guards
// against a cyclic (malformed) base-class graph.
func (a *Assigner) inheritedMembers(className string, own map[string]int, bodies map[string]classBody, resolveBase func(string) *scope.Info, seen map[string]bool) map[string]int {
	if seen[className] {
		return own
	}
	seen[className] = true

	info := resolveBase(className)
	if info == nil || len(info.BaseTypes) == 0 {
		return own
	}

	merged := own
	copied := false
	for base := range info.BaseTypes {
		baseBody, ok := bodies[base]
		if !ok {
			continue
		}
		for name, id := range a.inheritedMembers(base, baseBody.members, bodies, resolveBase, seen) {
			if _, exists := merged[name]; exists {
				continue
			}
			if !copied {
				// Copy-on-write: own is also bodies[className].members,
				// shared with other callers, so it must not be mutated
				// in place.
				merged = copyMembers(own)
				copied = true
			}
			merged[name] = id
		}
	}
	return merged
}

func copyMembers(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// sequenceIndex numbers every token in list by forward position, once,
// so membership in a [open, close] body range can be answered in O(log n)
// via a [rangemap.Map] instead of re-walking the body for every candidate
// name token.
func sequenceIndex(list *token.TokenList) map[token.Token]int {
	idx := make(map[token.Token]int, list.Len())
	n := 0
	for t := list.Head(); !t.Nil(); t = t.Next() {
		idx[t] = n
		n++
	}
	return idx
}

// collectMembers scans a class/struct/namespace body's direct statements
// (ignoring nested function bodies) for member-variable declarations,
// returning name -> id.
func (a *Assigner) collectMembers(open, close token.Token) map[string]int {
	members := map[string]int{}
	depth := 0
	for t := open.Next(); !t.Equal(close); t = t.Next() {
		switch t.Lexeme() {
		case "{":
			depth++
			continue
		case "}":
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		if isDeclarationStart(t) {
			if id := t.Next().VarID(); t.Next().Kind() == token.Name && id != 0 {
				members[t.Next().Lexeme()] = id
			}
		}
	}
	return members
}

// propagateMembers assigns the recorded member ids (own plus, via the
// caller's inheritedMembers call, every reachable base class's) to every
// qualified use of className found anywhere in the list, and to
// unqualified uses found lexically inside [open, close] (the class's own
// member function bodies).
func (a *Assigner) propagateMembers(className string, members map[string]int, open, close token.Token, seq map[token.Token]int) {
	if len(members) == 0 {
		return
	}

	var body rangemap.Map[int, struct{}]
	body.Insert(seq[open], seq[close], struct{}{})

	for t := a.list.Head(); !t.Nil(); t = t.Next() {
		if t.Kind() != token.Name {
			continue
		}
		if t.Lexeme() == className && t.Next().Lexeme() == "::" {
			member := t.Next().Next()
			if id, ok := members[member.Lexeme()]; ok {
				member.SetVarID(id)
			}
			continue
		}
		if id, ok := members[t.Lexeme()]; ok && t.VarID() == 0 {
			if body.Contains(seq[t]) || precededByDotArrowOfType(t, className) {
				t.SetVarID(id)
			}
		}
	}
}

func precededByDotArrowOfType(t token.Token, typeName string) bool {
	prev := t.Prev()
	if prev.Nil() || (prev.Lexeme() != "." && prev.Lexeme() != "->") {
		return false
	}
	obj := prev.Prev()
	return !obj.Nil() && obj.Scope() != nil && obj.Scope().FullName == typeName
}
