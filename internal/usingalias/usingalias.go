// Package usingalias implements the C++11 `using Name = Type;` and
// `using a::b;` expander of spec §4.5. Both forms are normalized to a
// typedef-shaped record and handed to internal/typedef's substitution
// core, so the hoisting rule (an anonymous aggregate takes the declared
// name as its tag) is shared verbatim.
package usingalias

import (
	"github.com/cxxtok/cxxtok/internal/report"
	"github.com/cxxtok/cxxtok/internal/token"
	"github.com/cxxtok/cxxtok/internal/typedef"
)

// Pass runs one restartable substitution pass over list (spec §4.5): it
// normalizes the first `using` statement it finds into a typedef form,
// substitutes its uses via internal/typedef, and reports whether it did
// anything. internal/driver loops calling Pass until it returns false.
func Pass(list *token.TokenList, diags *report.Report) (bool, error) {
	for t := list.Head(); !t.Nil(); t = t.Next() {
		if t.Lexeme() != "using" {
			continue
		}
		if t.Next().Lexeme() == "namespace" {
			continue // handled by scope tracking, not alias substitution.
		}

		if ok := normalize(list, t); !ok {
			continue
		}

		infos, err := typedef.New(list, diags).Expand()
		if err != nil {
			return false, err
		}
		return len(infos) > 0, nil
	}
	return false, nil
}

// normalize rewrites the `using` statement starting at kw into a
// `typedef`-shaped statement in place, so the shared substitution core
// in internal/typedef can process it unmodified.
//
//	using Name = Type;      -> typedef Type Name;
//	using a::b;             -> typedef a::b b;
func normalize(list *token.TokenList, kw token.Token) bool {
	name := kw.Next()
	if name.Kind() != token.Name {
		return false
	}

	op := name.Next()
	switch op.Lexeme() {
	case "=":
		// `using Name = Type;` -> `typedef Type Name;`
		nameLexeme := name.Lexeme()
		semi := op.Next()
		for semi.Lexeme() != ";" {
			if semi.Nil() {
				return false
			}
			semi = semi.Next()
		}
		kw.Canonicalize("typedef")
		list.EraseRange(kw, op.Next()) // drop "Name ="
		list.InsertBefore(semi, nameLexeme)
		return true

	case "::":
		// `using a::b;` -> `typedef a::b b;`
		last := name
		for last.Next().Lexeme() == "::" {
			last = last.Next().Next()
			if last.Nil() {
				return false
			}
		}
		semi := last.Next()
		if semi.Lexeme() != ";" {
			return false
		}
		kw.Canonicalize("typedef")
		list.InsertBefore(semi, last.Lexeme())
		return true
	}

	return false
}
