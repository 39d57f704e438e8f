// Package token implements the Token and TokenList types of spec §3/§4.1:
// the doubly-linked, arena-backed sequence of lexemes that every later
// pipeline phase mutates in place.
//
// Tokens are non-owning handles (see internal/arena's doc comment): a
// Token is meaningless once detached from the TokenList that minted it,
// and two Tokens from different TokenLists never compare equal even if
// they happen to carry the same arena index.
package token

import (
	"fmt"
	"iter"

	"github.com/cxxtok/cxxtok/internal/arena"
	"github.com/cxxtok/cxxtok/internal/fileset"
	"github.com/cxxtok/cxxtok/internal/scope"
	"github.com/cxxtok/cxxtok/internal/settings"
	"github.com/cxxtok/cxxtok/internal/srcpos"
)

// tokenRec is the arena-resident payload for one Token. Every field here
// corresponds directly to an attribute named in spec §3.
type tokenRec struct {
	lexeme       string
	originalName string
	kind         Kind
	pos          srcpos.Position
	progress     int8

	prev, next arena.Pointer[tokenRec]
	link       arena.Pointer[tokenRec]
	varID      int
	scope      *scope.Info
	attrs      Attrs

	astParent, astOperand1, astOperand2 arena.Pointer[tokenRec]

	values []ValueRecord
}

// Token is a handle to one lexeme within a [TokenList] (spec §3).
//
// The zero Token is the nil token, used to denote the absence of a token
// (e.g. a not-yet-computed link or AST operand).
type Token struct {
	list *TokenList
	id   arena.Pointer[tokenRec]
}

// Nil is the zero Token.
var Nil Token

// Nil reports whether t is the nil token.
func (t Token) Nil() bool {
	return t.list == nil || t.id.Nil()
}

// List returns the TokenList that owns t, or nil if t is nil.
func (t Token) List() *TokenList {
	return t.list
}

// Equal reports whether t and other refer to the same token in the same
// list.
func (t Token) Equal(other Token) bool {
	return t.list == other.list && t.id == other.id
}

func (t Token) rec() *tokenRec {
	return t.id.In(&t.list.arena)
}

func (t Token) wrap(p arena.Pointer[tokenRec]) Token {
	if p.Nil() {
		return Nil
	}
	return Token{list: t.list, id: p}
}

// Lexeme returns this token's source text.
func (t Token) Lexeme() string {
	if t.Nil() {
		return ""
	}
	return t.rec().lexeme
}

// SetLexeme rewrites this token's text without touching OriginalName,
// recomputing Kind from the new text (spec §3 invariant 5: canonical
// lexemes for rewritten keywords/operators, e.g. `->` becomes `.`).
func (t Token) SetLexeme(lexeme string) {
	r := t.rec()
	r.lexeme = lexeme
	r.kind = classify(lexeme)
}

// OriginalName returns the lexeme this token had before rewrites, or ""
// if it was never rewritten (spec §3, Token "original name").
func (t Token) OriginalName() string {
	if t.Nil() {
		return ""
	}
	return t.rec().originalName
}

// Canonicalize rewrites the lexeme to newLexeme and records the previous
// text as OriginalName, unless OriginalName is already set (so repeated
// canonicalization passes stay idempotent and remember the true original).
func (t Token) Canonicalize(newLexeme string) {
	r := t.rec()
	if r.originalName == "" && r.lexeme != newLexeme {
		r.originalName = r.lexeme
	}
	t.SetLexeme(newLexeme)
}

// Kind returns this token's cached kind classification.
func (t Token) Kind() Kind {
	if t.Nil() {
		return Other
	}
	return t.rec().kind
}

// Pos returns this token's source position.
func (t Token) Pos() srcpos.Position {
	if t.Nil() {
		return srcpos.Position{}
	}
	return t.rec().pos
}

// Progress returns the 0-100 pacing hint associated with this token (spec
// §3, "progress value").
func (t Token) Progress() int {
	if t.Nil() {
		return 0
	}
	return int(t.rec().progress)
}

// SetProgress sets the progress hint, clamped to [0, 100].
func (t Token) SetProgress(v int) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	t.rec().progress = int8(v)
}

// Prev returns the preceding token, or Nil if t is the first token.
func (t Token) Prev() Token {
	if t.Nil() {
		return Nil
	}
	return t.wrap(t.rec().prev)
}

// Next returns the following token, or Nil if t is the last token.
func (t Token) Next() Token {
	if t.Nil() {
		return Nil
	}
	return t.wrap(t.rec().next)
}

// Link returns this token's bracket link, or Nil if unset (spec §3, Token
// "link").
func (t Token) Link() Token {
	if t.Nil() {
		return Nil
	}
	return t.wrap(t.rec().link)
}

// SetLink sets a symmetric bracket link between t and other: t.Link() ==
// other and other.Link() == t. Passing Nil clears t's link without
// touching the token it used to point at.
func (t Token) SetLink(other Token) {
	if other.Nil() {
		t.rec().link = arena.Pointer[tokenRec]{}
		return
	}
	if t.list != other.list {
		panic("token: SetLink across different TokenLists")
	}
	t.rec().link = other.id
	other.rec().link = t.id
}

// VarID returns this token's variable id, or 0 if it has none (spec §3).
func (t Token) VarID() int {
	if t.Nil() {
		return 0
	}
	return t.rec().varID
}

// SetVarID sets this token's variable id.
func (t Token) SetVarID(id int) {
	t.rec().varID = id
}

// Scope returns the ScopeInfo enclosing this token.
func (t Token) Scope() *scope.Info {
	if t.Nil() {
		return nil
	}
	return t.rec().scope
}

// SetScope sets the ScopeInfo enclosing this token.
func (t Token) SetScope(s *scope.Info) {
	t.rec().scope = s
}

// Attrs returns a pointer to this token's attribute flags, usable to read
// or mutate individual booleans in place.
func (t Token) Attrs() *Attrs {
	return &t.rec().attrs
}

// AstParent returns this token's AST parent, if the AST has been built.
func (t Token) AstParent() Token { return t.wrap(t.rec().astParent) }

// AstOperand1 returns this token's first AST operand.
func (t Token) AstOperand1() Token { return t.wrap(t.rec().astOperand1) }

// AstOperand2 returns this token's second AST operand.
func (t Token) AstOperand2() Token { return t.wrap(t.rec().astOperand2) }

// SetAstOperand1 sets operand1 and, if operand is non-nil, operand's
// AstParent to t (spec §3 invariant 3: every non-root has exactly one
// astParent).
func (t Token) SetAstOperand1(operand Token) {
	t.rec().astOperand1 = operand.id
	if !operand.Nil() {
		operand.rec().astParent = t.id
	}
}

// SetAstOperand2 sets operand2 and operand's AstParent, as SetAstOperand1.
func (t Token) SetAstOperand2(operand Token) {
	t.rec().astOperand2 = operand.id
	if !operand.Nil() {
		operand.rec().astParent = t.id
	}
}

// Values returns this token's ordered known-value records (spec §3,
// "value set"). The returned slice must not be mutated by the caller.
func (t Token) Values() []ValueRecord {
	if t.Nil() {
		return nil
	}
	return t.rec().values
}

// AddValue appends a known-value record to this token's value set.
func (t Token) AddValue(v ValueRecord) {
	r := t.rec()
	r.values = append(r.values, v)
}

// ClearValues empties this token's value set.
func (t Token) ClearValues() {
	t.rec().values = nil
}

// String implements fmt.Stringer for debug output.
func (t Token) String() string {
	if t.Nil() {
		return "<nil-token>"
	}
	r := t.rec()
	return fmt.Sprintf("%q@%d:%d:%d", r.lexeme, r.pos.File, r.pos.Line, r.pos.Column)
}

// Context is the immutable environment a TokenList was built against:
// the file table and settings profile. It's split out from TokenList
// itself so the typedef/using expanders and driver can pass "just the
// read-only bits" around without exposing mutation methods.
type Context struct {
	Files    *fileset.Table
	Settings *settings.Profile
}

// TokenList owns every token of one translation unit (spec §3).
type TokenList struct {
	arena arena.Arena[tokenRec]
	head  arena.Pointer[tokenRec]
	tail  arena.Pointer[tokenRec]

	ctx           Context
	configuration string
}

// New creates an empty TokenList bound to the given file table and
// settings profile.
func New(files *fileset.Table, prof *settings.Profile, configuration string) *TokenList {
	return &TokenList{
		ctx:           Context{Files: files, Settings: prof},
		configuration: configuration,
	}
}

// Context returns the list's immutable file table + settings.
func (l *TokenList) Context() Context { return l.ctx }

// Configuration returns the active preprocessor define-set identifier
// used in diagnostics (spec §3).
func (l *TokenList) Configuration() string { return l.configuration }

// Head returns the first token, or Nil if the list is empty.
func (l *TokenList) Head() Token { return Token{list: l, id: l.head} }

// Tail returns the last token, or Nil if the list is empty.
func (l *TokenList) Tail() Token { return Token{list: l, id: l.tail} }

// Len returns the number of tokens currently in the list (O(n): walks the
// list, since erase/splice do not maintain a running count).
func (l *TokenList) Len() int {
	n := 0
	for t := l.Head(); !t.Nil(); t = t.Next() {
		n++
	}
	return n
}

// All returns an iterator over every token in the list, head to tail.
func (l *TokenList) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for t := l.Head(); !t.Nil(); t = t.Next() {
			if !yield(t) {
				return
			}
		}
	}
}

// Append creates a new token at the end of the list (spec §4.1).
func (l *TokenList) Append(lexeme string, pos srcpos.Position) Token {
	p := l.arena.New(tokenRec{
		lexeme: lexeme,
		kind:   classify(lexeme),
		pos:    pos,
		prev:   l.tail,
	})
	if !l.tail.Nil() {
		l.tail.In(&l.arena).next = p
	}
	l.tail = p
	if l.head.Nil() {
		l.head = p
	}
	return Token{list: l, id: p}
}

// InsertBefore inserts a new token with the given lexeme immediately
// before t, preserving t's neighbors' links (spec §4.1). The new token
// inherits t's source position.
//
// Panics if t is nil.
func (l *TokenList) InsertBefore(t Token, lexeme string) Token {
	if t.Nil() {
		panic("token: InsertBefore called with a nil anchor")
	}
	prev := t.Prev()
	p := l.arena.New(tokenRec{
		lexeme: lexeme,
		kind:   classify(lexeme),
		pos:    t.Pos(),
	})
	newRec := p.In(&l.arena)
	newRec.next = t.id
	newRec.prev = prev.id
	t.rec().prev = p
	if prev.Nil() {
		l.head = p
	} else {
		prev.rec().next = p
	}
	return Token{list: l, id: p}
}

// InsertAfter inserts a new token with the given lexeme immediately after
// t, preserving t's neighbors' links.
//
// Panics if t is nil.
func (l *TokenList) InsertAfter(t Token, lexeme string) Token {
	if t.Nil() {
		panic("token: InsertAfter called with a nil anchor")
	}
	next := t.Next()
	p := l.arena.New(tokenRec{
		lexeme: lexeme,
		kind:   classify(lexeme),
		pos:    t.Pos(),
	})
	newRec := p.In(&l.arena)
	newRec.prev = t.id
	newRec.next = next.id
	t.rec().next = p
	if next.Nil() {
		l.tail = p
	} else {
		next.rec().prev = p
	}
	return Token{list: l, id: p}
}

// EraseRange removes every token strictly between fromExclusive and
// toExclusive (spec §4.1). Either bound may be Nil to mean "the start/end
// of the list"; passing both Nil empties the list. If the two anchors are
// equal or adjacent, there is nothing between them and EraseRange is a
// no-op.
func (l *TokenList) EraseRange(fromExclusive, toExclusive Token) {
	var left, right arena.Pointer[tokenRec]
	if !fromExclusive.Nil() {
		if fromExclusive.list != l {
			panic("token: EraseRange anchor from a different TokenList")
		}
		left = fromExclusive.id
	}
	if !toExclusive.Nil() {
		if toExclusive.list != l {
			panic("token: EraseRange anchor from a different TokenList")
		}
		right = toExclusive.id
	}

	if !left.Nil() {
		if right.Nil() {
			l.tail = left
		} else {
			left.In(&l.arena).next = right
		}
	} else {
		l.head = right
	}
	if !right.Nil() {
		if left.Nil() {
			l.head = right
		}
		right.In(&l.arena).prev = left
	} else {
		l.tail = left
	}
}

// MoveRange splices the inclusive range [rangeStart, rangeEnd] out of its
// current position and reinserts it immediately after destAfter, all
// within this same TokenList, in O(1) (spec §4.1, replaceRange:
// "moves a range in O(1) by splicing; forbidden across TokenList
// instances").
//
// destAfter may be Nil to mean "move to the front of the list". Panics if
// any token belongs to a different TokenList, or if destAfter falls
// inside [rangeStart, rangeEnd].
func (l *TokenList) MoveRange(destAfter, rangeStart, rangeEnd Token) {
	if rangeStart.list != l || rangeEnd.list != l {
		panic("token: MoveRange range from a different TokenList")
	}
	if !destAfter.Nil() && destAfter.list != l {
		panic("token: MoveRange destination from a different TokenList")
	}
	for c := rangeStart; !c.Nil(); c = c.Next() {
		if c.Equal(destAfter) {
			panic("token: MoveRange destination lies inside the moved range")
		}
		if c.Equal(rangeEnd) {
			break
		}
	}

	before := rangeStart.Prev()
	after := rangeEnd.Next()

	// Unlink [rangeStart, rangeEnd].
	if before.Nil() {
		l.head = after.id
	} else {
		before.rec().next = after.id
	}
	if after.Nil() {
		l.tail = before.id
	} else {
		after.rec().prev = before.id
	}

	// Relink at the destination.
	var destNext Token
	if destAfter.Nil() {
		destNext = l.Head()
	} else {
		destNext = destAfter.Next()
	}

	rangeStart.rec().prev = destAfter.id
	rangeEnd.rec().next = destNext.id
	if destAfter.Nil() {
		l.head = rangeStart.id
	} else {
		destAfter.rec().next = rangeStart.id
	}
	if destNext.Nil() {
		l.tail = rangeEnd.id
	} else {
		destNext.rec().prev = rangeEnd.id
	}
}

// CopyRange duplicates the inclusive range [srcBegin, srcEnd] and inserts
// the copy immediately after destAfter, within this same TokenList (spec
// §4.1: new identities, same lexemes/flags, Link pointers inside the
// range re-paired, VarID preserved). destAfter may be Nil to copy to the
// front.
//
// Returns the first and last token of the newly-created copy.
func (l *TokenList) CopyRange(destAfter, srcBegin, srcEnd Token) (Token, Token) {
	if srcBegin.list != l || srcEnd.list != l {
		panic("token: CopyRange range from a different TokenList")
	}

	remap := map[arena.Pointer[tokenRec]]arena.Pointer[tokenRec]{}
	anchor := destAfter
	var first Token
	for c := srcBegin; ; c = c.Next() {
		src := c.rec()
		var n Token
		if anchor.Nil() {
			// Inserting at the very front: use InsertBefore the current
			// head if the list is non-empty, else Append.
			if l.Head().Nil() {
				n = l.Append(src.lexeme, src.pos)
			} else {
				n = l.InsertBefore(l.Head(), src.lexeme)
			}
		} else {
			n = l.InsertAfter(anchor, src.lexeme)
		}
		nr := n.rec()
		nr.kind = src.kind
		nr.originalName = src.originalName
		nr.attrs = src.attrs
		nr.varID = src.varID
		nr.scope = src.scope
		nr.values = append([]ValueRecord(nil), src.values...)

		remap[c.id] = n.id
		if first.Nil() {
			first = n
		}
		anchor = n
		if c.Equal(srcEnd) {
			break
		}
	}

	// Re-pair Link pointers that point within the copied range.
	for old, newID := range remap {
		oldTok := Token{list: l, id: old}
		if link := oldTok.Link(); !link.Nil() {
			if mapped, ok := remap[link.id]; ok {
				Token{list: l, id: newID}.rec().link = mapped
			}
		}
	}

	return first, anchor
}
