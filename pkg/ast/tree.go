// Package ast defines the expression tree the evaluator consumes. It
// deliberately holds no heap references: trees are plain, parser-owned
// data; the evaluator converts them into heap values as it walks them.
package ast

import "fmt"

// Kind discriminates the variants an Expr can hold.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	Str
	Ident
	Quote
	Pair
	Empty
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Str:
		return "string"
	case Ident:
		return "identifier"
	case Quote:
		return "quote"
	case Pair:
		return "pair"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// Expr is one node of a parsed expression tree: an integer or float
// literal, a boolean or string literal, an identifier, a quoted
// sub-expression, a pair (car/cdr), or the empty list.
type Expr struct {
	kind Kind

	ival int64
	fval float64
	bval bool
	sval string // Str text or Ident name

	quoted *Expr // Quote payload

	car *Expr // Pair
	cdr *Expr // Pair
}

var emptyExpr = &Expr{kind: Empty}

// NewInt builds an integer literal node.
func NewInt(v int64) *Expr { return &Expr{kind: Int, ival: v} }

// NewFloat builds a float literal node.
func NewFloat(v float64) *Expr { return &Expr{kind: Float, fval: v} }

// NewBool builds a boolean literal node.
func NewBool(v bool) *Expr { return &Expr{kind: Bool, bval: v} }

// NewStr builds a string literal node.
func NewStr(v string) *Expr { return &Expr{kind: Str, sval: v} }

// NewIdent builds an identifier node.
func NewIdent(name string) *Expr { return &Expr{kind: Ident, sval: name} }

// NewQuote wraps a datum in a quote node, as produced by the reader's `'x`
// shorthand or an explicit (quote x) form.
func NewQuote(datum *Expr) *Expr { return &Expr{kind: Quote, quoted: datum} }

// NewPair builds a cons node.
func NewPair(car, cdr *Expr) *Expr { return &Expr{kind: Pair, car: car, cdr: cdr} }

// EmptyExpr returns the unique, shared empty-list node.
func EmptyExpr() *Expr { return emptyExpr }

func (e *Expr) Kind() Kind { return e.kind }

func (e *Expr) IntValue() int64    { return e.ival }
func (e *Expr) FloatValue() float64 { return e.fval }
func (e *Expr) BoolValue() bool     { return e.bval }
func (e *Expr) StrValue() string    { return e.sval }
func (e *Expr) IdentName() string   { return e.sval }
func (e *Expr) Quoted() *Expr        { return e.quoted }

// Head returns the car of a pair. It panics if e is not a pair; callers
// must check Kind() first, mirroring the parser/evaluator contract that
// Head/Tail are only meaningful on pairs.
func (e *Expr) Head() *Expr {
	if e.kind != Pair {
		panic("ast: Head of non-pair")
	}
	return e.car
}

// Cdr returns the raw cdr of a pair, whatever kind it is — unlike Tail,
// it does not require the result to be a pair or empty. Quote conversion
// needs this to walk an improper list's final, non-pair cdr.
func (e *Expr) Cdr() *Expr {
	if e.kind != Pair {
		panic("ast: Cdr of non-pair")
	}
	return e.cdr
}

// Tail returns the cdr of a pair, or the empty node if e is itself empty.
func (e *Expr) Tail() *Expr {
	switch e.kind {
	case Pair:
		return e.cdr
	case Empty:
		return e
	default:
		panic("ast: Tail of non-pair, non-empty node")
	}
}

// IsEmpty reports whether e is the empty-list node.
func (e *Expr) IsEmpty() bool { return e.kind == Empty }

// IsPair reports whether e is a pair node.
func (e *Expr) IsPair() bool { return e.kind == Pair }

// IsProperList runs Floyd's two-pointer walk along the cdr chain, the
// same cycle-safe check the heap value's list? predicate uses, so that a
// cyclic expression tree (which the reader never produces, but a
// hand-built one could) cannot hang the evaluator.
func (e *Expr) IsProperList() bool {
	slow, fast := e, e
	for {
		if fast.kind == Empty {
			return true
		}
		if fast.kind != Pair {
			return false
		}
		fast = fast.cdr
		if fast.kind == Empty {
			return true
		}
		if fast.kind != Pair {
			return false
		}
		fast = fast.cdr
		slow = slow.cdr
		if fast == slow {
			return false
		}
	}
}

// Nth returns the i-th element (0-indexed) of a proper list, or false if
// the list is too short or improper.
func (e *Expr) Nth(i int) (*Expr, bool) {
	cur := e
	for ; i > 0; i-- {
		if cur.kind != Pair {
			return nil, false
		}
		cur = cur.cdr
	}
	if cur.kind != Pair {
		return nil, false
	}
	return cur.car, true
}

// Each iterates a proper list in order, calling fn on each element until
// fn returns false or the list is exhausted. It returns false if the walk
// ends at a tail that is neither a pair nor empty; when fn stops the walk
// early it returns true without looking at the rest of the list.
func (e *Expr) Each(fn func(*Expr) bool) bool {
	cur := e
	for cur.kind == Pair {
		if !fn(cur.car) {
			return true
		}
		cur = cur.cdr
	}
	return cur.kind == Empty
}

// Len returns the element count of a proper list, or false for an
// improper or cyclic one.
func (e *Expr) Len() (int, bool) {
	if !e.IsProperList() {
		return 0, false
	}
	n := 0
	cur := e
	for cur.kind == Pair {
		n++
		cur = cur.cdr
	}
	return n, true
}

// String renders the tree the way the reader would have read it back,
// useful for error messages and debug logging.
func (e *Expr) String() string {
	switch e.kind {
	case Int:
		return fmt.Sprintf("%d", e.ival)
	case Float:
		return fmt.Sprintf("%g", e.fval)
	case Bool:
		if e.bval {
			return "#t"
		}
		return "#f"
	case Str:
		return fmt.Sprintf("%q", e.sval)
	case Ident:
		return e.sval
	case Quote:
		return "'" + e.quoted.String()
	case Empty:
		return "()"
	case Pair:
		s := "("
		cur := e
		first := true
		for cur.kind == Pair {
			if !first {
				s += " "
			}
			first = false
			s += cur.car.String()
			cur = cur.cdr
		}
		if cur.kind != Empty {
			s += " . " + cur.String()
		}
		return s + ")"
	default:
		return "#<unknown>"
	}
}
