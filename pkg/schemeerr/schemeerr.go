// Package schemeerr defines the error taxonomy the evaluator and its
// collaborators surface. Errors are ordinary values: they unwind the
// current top-level expression but never tear down the process, except
// the two kinds marked Fatal below.
package schemeerr

import "fmt"

// Category distinguishes the broad class of failure.
type Category int

const (
	// Read is a failure surfaced by the reader: unbalanced parens/strings,
	// an extra close paren, a misplaced dot, an invalid symbol, or numeric
	// overflow during parsing.
	Read Category = iota
	// Syntax is a malformed special form, a non-list in function position,
	// a non-identifier where one was required, or a bad cond/do clause.
	Syntax
	// Unbound is a lookup against a name with no binding in scope.
	Unbound
	// InvalidApplication is an application whose head did not resolve to
	// a procedure.
	InvalidApplication
	// Arity is an argument count mismatch against a procedure's declared
	// shape.
	Arity
	// Type is a built-in receiving the wrong kind of value.
	Type
	// Arithmetic covers zero division and similar numeric failures.
	Arithmetic
	// Load is a file open/read failure from the `load` special form.
	Load
	// Fatal marks out-of-memory-after-GC and heap corruption. Callers
	// must not treat a Fatal error as recoverable REPL-iteration state.
	Fatal
)

func (c Category) String() string {
	switch c {
	case Read:
		return "read error"
	case Syntax:
		return "syntax error"
	case Unbound:
		return "unbound variable"
	case InvalidApplication:
		return "invalid application"
	case Arity:
		return "arity error"
	case Type:
		return "type error"
	case Arithmetic:
		return "arithmetic error"
	case Load:
		return "load error"
	case Fatal:
		return "fatal error"
	default:
		return "error"
	}
}

// Error is a categorized evaluator error. It wraps an optional underlying
// cause so callers can still use errors.Is/errors.As against it.
type Error struct {
	Category Category
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a categorized error from a format string, mirroring the
// original interpreter's anyhow!("unbound variable: {}", id) pattern.
func New(cat Category, format string, args ...any) *Error {
	return &Error{Category: cat, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a categorized error around an existing cause.
func Wrap(cat Category, cause error, format string, args ...any) *Error {
	return &Error{Category: cat, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsFatal reports whether err (or something it wraps) is a Fatal-category
// error. The REPL and `load` must treat this differently from ordinary
// errors: it aborts rather than continuing the interaction loop.
func IsFatal(err error) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			if e.Category == Fatal {
				return true
			}
			err = ae.Cause
			continue
		}
		break
	}
	return false
}
