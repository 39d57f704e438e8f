package driver

import (
	"github.com/cxxtok/cxxtok/internal/scope"
	"github.com/cxxtok/cxxtok/internal/token"
)

// assignScopes walks list once, pushing a child [scope.Info] at every
// class/struct/union/namespace/function/block body and popping it at the
// matching close brace, stamping every token with the innermost scope
// enclosing it (spec §3, Token "scope info"). It returns a registry of
// every named (record or namespace) scope built, keyed by both its fully
// qualified and bare name, which internal/typedef's qualification
// minimizer and internal/varid's pass 2 member-propagation consult.
//
// This does not build a full symbol database -- overload resolution,
// template instantiation, and cross-translation-unit linkage are a
// downstream collaborator's job (spec §1 non-goals) -- it builds exactly
// the lexical scope tree spec §3/§4.4/§4.6 need.
func assignScopes(list *token.TokenList) map[string]*scope.Info {
	global := scope.New(nil, "", scope.Global, 0, -1)
	registry := map[string]*scope.Info{"": global}
	stack := []*scope.Info{global}

	// pending maps the specific "{" token that opens a class/struct/
	// union/namespace body to the scope it should push, so the body's
	// single "{" token pushes exactly once (matchAggregateOrNamespaceOpen
	// looks ahead across the name and base-clause to find that brace,
	// but must not push before reaching it).
	pending := map[token.Token]*scope.Info{}

	for t := list.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() == "}" && len(stack) > 1 {
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1]
		t.SetScope(top)

		if t.Lexeme() == "using" && t.Next().Lexeme() == "namespace" {
			if name := t.Next().Next(); name.Kind() == token.Name {
				top.UsingNamespaces[name.Lexeme()] = true
			}
			continue
		}

		if kind, name, bases, brace, ok := matchAggregateOrNamespaceOpen(t); ok {
			full := name
			if top.FullName != "" {
				full = top.FullName + "::" + name
			}
			child := scope.New(top, full, kind, 0, 0)
			for _, base := range bases {
				child.BaseTypes[base] = true
			}
			top.RecordTypes[name] = true
			registry[full] = child
			if _, exists := registry[name]; !exists {
				registry[name] = child
			}
			pending[brace] = child
			continue
		}

		if t.Lexeme() == "{" {
			if child, ok := pending[t]; ok {
				delete(pending, t)
				stack = append(stack, child)
				continue
			}
			kind := scope.Other
			if looksLikeFunctionOpen(t) {
				kind = scope.MemberFunction
			}
			stack = append(stack, scope.New(top, top.FullName, kind, 0, 0))
		}
	}

	return registry
}

// matchAggregateOrNamespaceOpen reports whether t opens a
// class/struct/union/namespace body, returning its kind, name, the
// base-class names named after a `:` clause (for a class/struct), and
// the specific "{" token the body starts at -- the caller pushes a
// scope for that brace, not for t, since t is the keyword and the
// brace may be many tokens further on past a base-clause.
func matchAggregateOrNamespaceOpen(t token.Token) (kind scope.Kind, name string, bases []string, brace token.Token, ok bool) {
	switch t.Lexeme() {
	case "class", "struct", "union":
		kind = scope.Record
	case "namespace":
		kind = scope.Namespace
	default:
		return 0, "", nil, token.Nil, false
	}

	nameTok := t.Next()
	if nameTok.Kind() != token.Name {
		return 0, "", nil, token.Nil, false
	}

	cur := nameTok.Next()
	if cur.Lexeme() == ":" {
		for cur = cur.Next(); !cur.Nil() && cur.Lexeme() != "{"; cur = cur.Next() {
			if cur.Kind() == token.Name && !isAccessSpecifier(cur.Lexeme()) {
				bases = append(bases, cur.Lexeme())
			}
		}
	}
	if cur.Lexeme() != "{" {
		return 0, "", nil, token.Nil, false
	}
	return kind, nameTok.Lexeme(), bases, cur, true
}

func isAccessSpecifier(s string) bool {
	return s == "public" || s == "private" || s == "protected" || s == "virtual"
}

// looksLikeFunctionOpen reports whether the `{` at t opens a function
// body (preceded by a parameter list's closing `)`, or a
// try/else/do/constructor-initializer-list body), as opposed to an
// aggregate-initializer or lambda-capture body.
func looksLikeFunctionOpen(brace token.Token) bool {
	prev := brace.Prev()
	switch prev.Lexeme() {
	case ")", "try", "else", "do", "const", "noexcept":
		return true
	}
	return false
}
