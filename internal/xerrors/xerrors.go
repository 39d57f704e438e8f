// Package xerrors implements the three error kinds of spec §7: Syntax,
// UnknownMacro (a subclass of Syntax), and Internal (an invariant the
// tokenizer expected to hold did not).
//
// All three are carried as ordinary Go errors returned from phase
// boundaries, per spec §7's "errors propagate as sum-type return values or
// as exceptions (implementation's choice)" — Go's error values are the
// natural choice here, reserving panic/recover for genuinely-unreachable
// invariant violations caught at the phase boundary (see
// internal/driver.recoverToInternal).
package xerrors

import (
	"fmt"

	"github.com/cxxtok/cxxtok/internal/srcpos"
)

// Kind is one of the three error kinds of spec §7.
type Kind int8

const (
	// Syntax means the input cannot form a valid token stream under the
	// chosen language/standard.
	Syntax Kind = iota + 1
	// UnknownMacro is a Syntax error identifying a name likely to be an
	// unconfigured macro.
	UnknownMacro
	// Internal means an invariant the tokenizer expected to hold failed;
	// surfaced to callers as "cppcheckError".
	Internal
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntaxError"
	case UnknownMacro:
		return "unknownMacro"
	case Internal:
		return "cppcheckError"
	default:
		return "unknownError"
	}
}

// Error is the error type returned from tokenize/simplify phase
// boundaries.
type Error struct {
	Kind Kind
	At   srcpos.Position
	Msg  string
}

// New constructs an Error of the given kind.
func New(kind Kind, at srcpos.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, At: at, Msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (line %d, column %d)", e.Kind, e.Msg, e.At.Line, e.At.Column)
}

// IsSyntax reports whether err is a Syntax or UnknownMacro error.
func IsSyntax(err error) bool {
	var e *Error
	if !asError(err, &e) {
		return false
	}
	return e.Kind == Syntax || e.Kind == UnknownMacro
}

// IsInternal reports whether err is an Internal error.
func IsInternal(err error) bool {
	var e *Error
	if !asError(err, &e) {
		return false
	}
	return e.Kind == Internal
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
