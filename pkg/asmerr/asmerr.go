// Package asmerr defines the fatal error taxonomy shared by every stage of
// the assembler pipeline. There is no recovery: any *Error aborts the run
// after cmd/asm prints it.
package asmerr

import (
	"fmt"

	"github.com/oisee/rvasm/pkg/token"
)

// Kind is one of the five fatal error categories from the error design.
type Kind uint8

const (
	Lexical Kind = iota
	Syntax
	Semantic
	Encoding
	IO
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	case Semantic:
		return "semantic error"
	case Encoding:
		return "encoding error"
	case IO:
		return "I/O error"
	default:
		return "error"
	}
}

// Error is the single error type produced anywhere in the pipeline.
type Error struct {
	Kind Kind
	Pos  token.Position
	Msg  string
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 && e.Pos.Col == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a positioned fatal error.
func New(kind Kind, pos token.Position, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind/Pos to an underlying error, preserving it via Unwrap.
func Wrap(kind Kind, pos token.Position, err error) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: err.Error(), Err: err}
}

// NoPos builds a fatal error with no source position (e.g. I/O errors).
func NoPos(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
