// Package report implements the diagnostics surface described in spec §6
// and §7: Diagnostic records with a stable id, a severity, a call stack of
// source locations, and a certainty, collected into a Report that the
// driver hands to the caller's error-logger collaborator.
//
// The functional-option shape (Message/At/Inconclusive) mirrors how diagnostics
// are assembled incrementally across a phase before being finalized; it
// exists so that a syntax error discovered three stack frames deep in the
// typedef expander can be built up without plumbing a half-constructed
// struct through every intermediate call.
package report

import (
	"fmt"

	"github.com/cxxtok/cxxtok/internal/srcpos"
)

// Diagnostic is a single error, warning, or informational message produced
// by the tokenizer.
type Diagnostic struct {
	id       string
	severity Severity
	message  string
	stack    []srcpos.Position
	certain  Certainty
}

// Option configures a [Diagnostic] via [New].
//
// Nil options are ignored, so call sites can pass a conditionally-nil
// option without an extra branch (e.g. an Inconclusive marker that only
// applies some of the time).
type Option func(*Diagnostic)

// New constructs a Diagnostic with the given stable id and severity.
func New(id string, severity Severity, opts ...Option) Diagnostic {
	d := Diagnostic{id: id, severity: severity}
	for _, opt := range opts {
		if opt != nil {
			opt(&d)
		}
	}
	return d
}

// Message sets the diagnostic's human-readable message.
func Message(format string, args ...any) Option {
	return func(d *Diagnostic) { d.message = fmt.Sprintf(format, args...) }
}

// At appends a source location to the diagnostic's call stack. The first
// call establishes the primary location.
func At(pos srcpos.Position) Option {
	return func(d *Diagnostic) { d.stack = append(d.stack, pos) }
}

// Inconclusive marks the diagnostic as produced under an ambiguous
// heuristic (spec §6 certainty).
func Inconclusive() Option {
	return func(d *Diagnostic) { d.certain = Certainty(1) }
}

// ID returns the diagnostic's stable short identifier (e.g. "syntaxError").
func (d Diagnostic) ID() string { return d.id }

// Severity returns the diagnostic's severity.
func (d Diagnostic) Severity() Severity { return d.severity }

// Message returns the diagnostic's human-readable message.
func (d Diagnostic) Message() string { return d.message }

// Certainty returns the diagnostic's certainty.
func (d Diagnostic) Certainty() Certainty { return d.certain }

// CallStack returns the diagnostic's source locations, primary first.
func (d Diagnostic) CallStack() []srcpos.Position { return d.stack }

// Primary returns the diagnostic's primary source location, or the zero
// Position if it has none.
func (d Diagnostic) Primary() srcpos.Position {
	if len(d.stack) == 0 {
		return srcpos.Position{}
	}
	return d.stack[0]
}

// String implements [fmt.Stringer], primarily for debug dumps.
func (d Diagnostic) String() string {
	pos := d.Primary()
	return fmt.Sprintf("[%d:%d]: (%s) %s [%s]", pos.Line, pos.Column, d.severity, d.message, d.id)
}
