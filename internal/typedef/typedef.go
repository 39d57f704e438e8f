// Package typedef implements the typedef expander of spec §4.4: for each
// `typedef ...;` statement it records the type text and declarator shape,
// then substitutes the expansion at every later in-scope use.
package typedef

import (
	"strings"

	"github.com/cxxtok/cxxtok/internal/matcher"
	"github.com/cxxtok/cxxtok/internal/report"
	"github.com/cxxtok/cxxtok/internal/scope"
	"github.com/cxxtok/cxxtok/internal/token"
)

// Shape is the declarator shape recorded alongside a typedef's type text:
// pointer depth, array dimensions, and whether it names a function-pointer
// type (spec §4.4: "pointer qualifiers, array dimensions, function
// parameter list, member-pointer qualification").
type Shape struct {
	PointerDepth  int
	ArrayDims     []string
	IsFuncPointer bool
	ParamTypes    []string
	MemberOfType  string // non-empty for pointer-to-member declarators
}

// Info is the budget record spec §4.4 requires per typedef ("each
// typedef records a TypedefInfo; used becomes true the first time a
// substitution fires").
type Info struct {
	Name     string
	TypeText string
	Shape    Shape
	Scope    *scope.Info
	Used     bool
}

// Space mirrors the reference Space frame (spec §4.4): a scope frame
// tracking the class/namespace name in effect, where its body ends, and
// whether it is a namespace (affecting qualification-minimization).
type Space struct {
	ClassName   string
	BodyEnd     token.Token
	IsNamespace bool
	RecordTypes map[string]bool
}

// Context carries the five boolean skip-case flags spec §4.4 calls out
// as explicit fields rather than inferred conditions.
type Context struct {
	InCast     bool
	InTemplate bool
	InSizeof   bool
	InOperator bool
	IsDerived  bool
}

// Expander runs the typedef pass over one TokenList.
type Expander struct {
	list   *token.TokenList
	diags  *report.Report
	spaces []Space
}

// New builds an Expander for list, reporting skipped/ambiguous typedefs
// to diags.
func New(list *token.TokenList, diags *report.Report) *Expander {
	return &Expander{list: list, diags: diags}
}

// Expand finds every `typedef` statement in the list, hoists any inline
// aggregate definition, records an Info, deletes the typedef statement,
// and substitutes the expansion at every later use until end of scope.
// Re-running Expand on its own output is a no-op (spec §4.4 idempotence),
// since a second pass finds no remaining `typedef` keyword tokens.
func (e *Expander) Expand() ([]Info, error) {
	var infos []Info

	for t := e.list.Head(); !t.Nil(); {
		e.trackScope(t)

		if t.Lexeme() != "typedef" {
			t = t.Next()
			continue
		}

		if agg := t.Next(); isAggregateKeyword(agg.Lexeme()) && looksLikeInlineAggregate(agg) {
			resume, info, ok := e.hoistAggregateTypedef(t, agg)
			if !ok {
				next := t.Next()
				e.list.EraseRange(t.Prev(), next)
				t = next
				continue
			}
			infos = append(infos, *info)
			e.substitute(resume, *info, &infos[len(infos)-1])
			t = resume
			continue
		}

		info, stmtEnd, ok := e.parseTypedef(t)
		next := stmtEnd.Next()
		if !ok {
			// Unsupported/ambiguous form: delete without substitution,
			// per spec §4.4 failure policy.
			e.list.EraseRange(t.Prev(), next)
			t = next
			continue
		}

		infos = append(infos, *info)
		e.list.EraseRange(t.Prev(), next)
		e.substitute(next, *info, &infos[len(infos)-1])
		t = next
	}

	return infos, nil
}

func (e *Expander) trackScope(t token.Token) {
	for len(e.spaces) > 0 && e.spaces[len(e.spaces)-1].BodyEnd.Equal(t) {
		e.spaces = e.spaces[:len(e.spaces)-1]
	}
	if !matcher.Match(t, "class|struct|namespace %name% {") {
		return
	}
	name := t.Next()
	brace := name.Next()
	if brace.Link().Nil() {
		return
	}
	e.spaces = append(e.spaces, Space{
		ClassName:   name.Lexeme(),
		BodyEnd:     brace.Link(),
		IsNamespace: t.Lexeme() == "namespace",
		RecordTypes: map[string]bool{},
	})
}

// parseTypedef parses `typedef <type> <name>;` starting at the `typedef`
// keyword. The inline-aggregate hoisting form (`typedef struct { ... }
// Name;`) is handled separately by hoistAggregateTypedef before this is
// reached. Returns the statement's closing `;` on success.
func (e *Expander) parseTypedef(kw token.Token) (*Info, token.Token, bool) {
	cur := kw.Next()

	var typeParts []string
	var name token.Token
	var shape Shape

	for !cur.Nil() && cur.Lexeme() != ";" {
		if cur.Lexeme() == "*" {
			shape.PointerDepth++
			cur = cur.Next()
			continue
		}
		if cur.Lexeme() == "[" && !cur.Link().Nil() {
			dim := "[]"
			if !cur.Next().Equal(cur.Link()) {
				var dims []string
				for d := cur.Next(); !d.Equal(cur.Link()); d = d.Next() {
					dims = append(dims, d.Lexeme())
				}
				dim = "[" + strings.Join(dims, "") + "]"
			}
			shape.ArrayDims = append(shape.ArrayDims, dim)
			cur = cur.Link().Next()
			continue
		}
		if cur.Lexeme() == "(" && !cur.Link().Nil() {
			// Function-pointer declarator: `typedef void (*F)(int);`
			shape.IsFuncPointer = true
			cur = cur.Link().Next()
			continue
		}
		if cur.Kind() == token.Name && (cur.Next().Lexeme() == ";" || cur.Next().Lexeme() == "[" || cur.Next().Lexeme() == "(") {
			name = cur
		}
		typeParts = append(typeParts, cur.Lexeme())
		cur = cur.Next()
	}

	if name.Nil() || cur.Nil() {
		return nil, cur, false
	}

	return &Info{
		Name:     name.Lexeme(),
		TypeText: strings.Join(dropLast(typeParts, name.Lexeme()), " "),
		Shape:    shape,
		Scope:    e.currentScope(),
	}, cur, true
}

func isAggregateKeyword(lexeme string) bool {
	return lexeme == "struct" || lexeme == "class" || lexeme == "union"
}

// looksLikeInlineAggregate reports whether the aggregate keyword at kw
// introduces an inline body (`struct { ...` or `struct Tag {`), as
// opposed to a bare tag reference (`struct Tag name;`).
func looksLikeInlineAggregate(kw token.Token) bool {
	next := kw.Next()
	if next.Lexeme() == "{" {
		return true
	}
	return next.Kind() == token.Name && next.Next().Lexeme() == "{"
}

func dropLast(parts []string, want string) []string {
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] == want {
			out := make([]string, 0, len(parts)-1)
			out = append(out, parts[:i]...)
			out = append(out, parts[i+1:]...)
			return out
		}
	}
	return parts
}

// hoistAggregateTypedef implements the inline-aggregate hoisting policy
// (spec §4.4, scenario 2): `typedef struct { ... } Name;` becomes a
// standalone `struct Name { ... };` declaration, with Name itself
// serving as the struct's tag rather than a separate alias (an anonymous
// aggregate has no tag to reuse, so the typedef's declared name becomes
// one). kw is the `typedef` keyword, aggKw the following `struct`/
// `class`/`union` keyword. Returns the token to resume scanning from and
// the recorded Info on success.
func (e *Expander) hoistAggregateTypedef(kw, aggKw token.Token) (resume token.Token, info *Info, ok bool) {
	cur := aggKw.Next()
	var tagName string
	if cur.Kind() == token.Name {
		tagName = cur.Lexeme()
		cur = cur.Next()
	}
	if cur.Lexeme() != "{" || cur.Link().Nil() {
		return cur, nil, false
	}
	closeBrace := cur.Link()

	nameTok := closeBrace.Next()
	if nameTok.Kind() != token.Name {
		return nameTok, nil, false
	}
	semi := nameTok.Next()
	if semi.Lexeme() != ";" {
		return semi, nil, false
	}
	resume = semi.Next()
	declaredName := nameTok.Lexeme()

	if tagName == "" {
		tagName = declaredName
		e.list.InsertAfter(aggKw, tagName)
	}

	// Drop the `typedef` keyword, leaving `struct Tag { ... }` as its own
	// declaration, terminated by a fresh `;` in place of the original
	// trailing `Name ;`, which named no separate alias worth keeping.
	e.list.EraseRange(kw.Prev(), aggKw)
	insertedSemi := e.list.InsertAfter(closeBrace, ";")
	e.list.EraseRange(insertedSemi, resume)

	return resume, &Info{Name: declaredName, TypeText: tagName, Scope: e.currentScope()}, true
}

func (e *Expander) currentScope() *scope.Info {
	if len(e.spaces) == 0 {
		return nil
	}
	top := e.spaces[len(e.spaces)-1]
	kind := scope.Record
	if top.IsNamespace {
		kind = scope.Namespace
	}
	return scope.New(nil, top.ClassName, kind, 0, 0)
}

// substitute replaces every later in-scope bare use of info.Name with its
// expansion, honoring the five skip-case flags (spec §4.4). The scope
// ends at the `}` that closes the block containing from.
func (e *Expander) substitute(from token.Token, info Info, record *Info) {
	t := from
	depth := 0
	for !t.Nil() {
		next := t.Next()
		switch t.Lexeme() {
		case "{":
			depth++
		case "}":
			if depth == 0 {
				return
			}
			depth--
		}
		if t.Lexeme() != info.Name {
			t = next
			continue
		}
		ctx := classifyUse(t)
		if ctx.IsDerived || ctx.InOperator {
			t = next
			continue
		}
		if ctx.InSizeof && info.Shape.PointerDepth == 0 && len(info.Shape.ArrayDims) == 0 {
			// Removing a qualifier here could change the sizeof result;
			// skip per spec §4.4.
			t = next
			continue
		}
		if isShadowedLocal(t) {
			t = next
			continue
		}

		replacement := info.TypeText
		if info.Scope != nil {
			replacement = minimizeQualification(replacement, currentScopePath(t))
		}

		for _, part := range strings.Fields(replacement) {
			e.list.InsertBefore(t, part)
		}
		for i := 0; i < info.Shape.PointerDepth; i++ {
			e.list.InsertBefore(t, "*")
		}
		// Casts to a pointer typedef keep their surrounding parens; the
		// cast's `(` / `)` tokens are untouched by this substitution.
		// t.Prev() now names the last inserted replacement token (or the
		// original predecessor, if the replacement was empty), so erasing
		// up to it removes exactly the original occurrence of info.Name.
		e.list.EraseRange(t.Prev(), next)
		record.Used = true
		t = next
	}
}

func classifyUse(t token.Token) Context {
	var ctx Context
	prev := t.Prev()
	for p := prev; !p.Nil(); p = p.Prev() {
		if p.Lexeme() == "sizeof" {
			ctx.InSizeof = true
			break
		}
		if p.Lexeme() == ";" || p.Lexeme() == "{" || p.Lexeme() == "}" {
			break
		}
	}
	if !prev.Nil() && prev.Lexeme() == "operator" {
		ctx.InOperator = true
	}
	if !prev.Nil() && (prev.Lexeme() == ":" || prev.Lexeme() == ",") {
		// Heuristic: a typedef name right after `:`/`,` in a class header
		// is a base-class clause, not a type use to expand in place.
		for p := prev.Prev(); !p.Nil(); p = p.Prev() {
			if p.Lexeme() == "{" || p.Lexeme() == ";" {
				break
			}
			if p.Lexeme() == "class" || p.Lexeme() == "struct" {
				ctx.IsDerived = true
				break
			}
		}
	}
	if !prev.Nil() && prev.Lexeme() == "(" && matcher.Match(t.Next(), ")") {
		ctx.InCast = true
	}
	return ctx
}

func isShadowedLocal(t token.Token) bool {
	return t.VarID() != 0
}

func currentScopePath(t token.Token) string {
	if s := t.Scope(); s != nil {
		names := make([]string, 0, 4)
		for _, n := range s.Path() {
			names = append(names, n.FullName)
		}
		return strings.Join(names, "::")
	}
	return ""
}

// minimizeQualification discards leading qualification in typeText that
// already matches scopePath (spec §4.4: "reconstructs only the minimum
// qualification needed at the use site").
func minimizeQualification(typeText, scopePath string) string {
	if scopePath == "" {
		return typeText
	}
	prefix := scopePath + "::"
	if strings.HasPrefix(typeText, prefix) {
		return strings.TrimPrefix(typeText, prefix)
	}
	return typeText
}
