// Package diag defines the diagnostic values the front-end hands to its
// callers. A Diagnostic is the only error currency between the lexer, the
// parser and the CLI; nothing in the front-end terminates the process.
package diag

import "fmt"

// Kind is a stable identifier for a diagnostic.
//
type Kind string

// Lexical error kinds.
//
const (
	UnterminatedText    Kind = "UnterminatedText"
	UnterminatedCommand Kind = "UnterminatedCommand"
	InvalidEscape       Kind = "InvalidEscape"
	InvalidCharacter    Kind = "InvalidCharacter"
	NestingTooDeep      Kind = "NestingTooDeep"
)

// Syntax error kinds.
//
const (
	UnexpectedToken              Kind = "UnexpectedToken"
	UnexpectedEndOfInput         Kind = "UnexpectedEndOfInput"
	InvalidInternalIdentifierUse Kind = "InvalidInternalIdentifierUse"
	AmbiguousConstruct           Kind = "AmbiguousConstruct"
)

// ResourceLimitExceeded covers caller-imposed limits (source size, depth).
//
const ResourceLimitExceeded Kind = "ResourceLimitExceeded"

// Pos is a 1-based line/column source position.
//
type Pos struct {
	Line   int
	Column int
}

// Span marks the source region a token or node covers.
// End is exclusive.
//
type Span struct {
	Start Pos
	End   Pos
}

// Merge returns the span from the start of s to the end of o.
//
func (s Span) Merge(o Span) Span {
	return Span{Start: s.Start, End: o.End}
}

// Diagnostic is one reported problem, positioned at Span.Start.
//
type Diagnostic struct {
	Kind Kind
	Span Span
	Msg  string
}

// New creates a diagnostic.
//
func New(kind Kind, span Span, msg string) *Diagnostic {
	return &Diagnostic{Kind: kind, Span: span, Msg: msg}
}

// Newf creates a diagnostic with a formatted message.
//
func Newf(kind Kind, span Span, format string, args ...interface{}) *Diagnostic {
	return New(kind, span, fmt.Sprintf(format, args...))
}

// Error implements error, rendering as "line.column: message".
//
func (d *Diagnostic) Error() string {
	if d.Span.Start.Line == 0 {
		return fmt.Sprintf("<eof>: %s", d.Msg)
	}
	return fmt.Sprintf("%d.%d: %s", d.Span.Start.Line, d.Span.Start.Column, d.Msg)
}
