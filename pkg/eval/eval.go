// Package eval implements the tree-walking evaluator: special-form
// dispatch, application, and the tail-call trampoline. It depends on
// pkg/ast, pkg/env, pkg/heap and pkg/schemeerr, plus pkg/reader, which
// LoadFile uses to parse the files `load` reads; the builtins are
// assembled by callers (cmd/scheme).
package eval

import (
	"github.com/gitrdm/schemecore/pkg/ast"
	"github.com/gitrdm/schemecore/pkg/env"
	"github.com/gitrdm/schemecore/pkg/heap"
	"github.com/gitrdm/schemecore/pkg/schemeerr"

	hclog "github.com/hashicorp/go-hclog"
)

// Evaluator walks expression trees against a heap and an environment
// chain rooted at Global.
type Evaluator struct {
	h      *heap.Heap
	Global *env.Environment
	log    hclog.Logger
}

// New builds an Evaluator. logger may be nil, in which case trace events
// are discarded.
func New(h *heap.Heap, global *env.Environment, logger hclog.Logger) *Evaluator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Evaluator{h: h, Global: global, log: logger}
}

// formResult is what a special-form handler or an application produces:
// either a final value, or the next (expr, env) pair to re-enter the
// dispatch loop with — a tail jump into the trampoline.
type formResult struct {
	done     bool
	value    heap.Handle
	tailExpr *ast.Expr
	tailEnv  *env.Environment
}

func doneResult(v heap.Handle) formResult { return formResult{done: true, value: v} }

func tailResult(expr *ast.Expr, e *env.Environment) formResult {
	return formResult{tailExpr: expr, tailEnv: e}
}

// EvalTop classifies a top-level form: define binds and returns the
// defined name as a symbol, load evaluates a file's forms in sequence
// and returns true, anything else is evaluated as an ordinary
// expression.
func (ev *Evaluator) EvalTop(expr *ast.Expr, e *env.Environment) (heap.Handle, error) {
	if expr.Kind() == ast.Pair && expr.Head().Kind() == ast.Ident {
		name := expr.Head().IdentName()
		if shadowed, ok := e.Lookup(name); ok {
			shadowed.Release()
		} else {
			switch name {
			case "define":
				defName, err := ev.evalDefine(expr.Tail(), e)
				if err != nil {
					return heap.Handle{}, err
				}
				return ev.h.AllocateSymbol(defName)
			case "load":
				return ev.evalLoad(expr.Tail(), e)
			}
		}
	}
	return ev.Eval(expr, e)
}

// Eval is the evaluator's main dispatch loop. It grows no deeper for a
// tail call: a tail-positioned closure application replaces (expr, e)
// and loops instead of recursing, so depth-1,000,000 tail recursion runs
// in constant Go stack.
func (ev *Evaluator) Eval(expr *ast.Expr, e *env.Environment) (heap.Handle, error) {
	owned := false
	defer func() {
		if owned {
			e.Handle.Release()
		}
	}()

	for {
		switch expr.Kind() {
		case ast.Int:
			return ev.h.AllocateInt(expr.IntValue())
		case ast.Float:
			return ev.h.AllocateFloat(expr.FloatValue())
		case ast.Bool:
			return ev.h.AllocateBool(expr.BoolValue())
		case ast.Str:
			return ev.h.AllocateString(expr.StrValue())
		case ast.Empty:
			return ev.h.EmptyHandle(), nil
		case ast.Ident:
			v, ok := e.Lookup(expr.IdentName())
			if !ok {
				return heap.Handle{}, schemeerr.New(schemeerr.Unbound, "unbound variable: %s", expr.IdentName())
			}
			return v, nil
		case ast.Quote:
			return ev.quoteToValue(expr.Quoted())
		case ast.Pair:
			res, err := ev.evalPair(expr, e)
			if err != nil {
				return heap.Handle{}, err
			}
			if res.done {
				return res.value, nil
			}
			if owned && !res.tailEnv.Handle.SameRecord(e.Handle) {
				e.Handle.Release()
			}
			owned = owned || !res.tailEnv.Handle.SameRecord(e.Handle)
			expr, e = res.tailExpr, res.tailEnv
			continue
		default:
			return heap.Handle{}, schemeerr.New(schemeerr.Fatal, "eval: unhandled expression kind %s", expr.Kind())
		}
	}
}

// evalPair resolves a pair expression to either a special form (unless
// shadowed by a user binding of the same name) or an application.
func (ev *Evaluator) evalPair(expr *ast.Expr, e *env.Environment) (formResult, error) {
	head := expr.Head()
	if head.Kind() == ast.Ident {
		name := head.IdentName()
		if shadowed, ok := e.Lookup(name); ok {
			shadowed.Release()
		} else if sf, ok := specialForms[name]; ok {
			ev.log.Trace("special form", "name", name)
			return sf(ev, expr.Tail(), e)
		}
	}
	return ev.apply(expr, e)
}

// apply evaluates a function-application form: the operator, then each
// operand left-to-right, then dispatches on the operator's kind.
func (ev *Evaluator) apply(expr *ast.Expr, e *env.Environment) (formResult, error) {
	proc, err := ev.Eval(expr.Head(), e)
	if err != nil {
		return formResult{}, err
	}
	defer proc.Release()

	var args []heap.Handle
	releaseArgs := func() {
		for _, a := range args {
			a.Release()
		}
	}
	cur := expr.Tail()
	for cur.Kind() == ast.Pair {
		v, err := ev.Eval(cur.Head(), e)
		if err != nil {
			releaseArgs()
			return formResult{}, err
		}
		args = append(args, v)
		cur = cur.Cdr()
	}

	if !ev.h.IsProcedure(proc) {
		releaseArgs()
		return formResult{}, schemeerr.New(schemeerr.InvalidApplication, "cannot apply non-procedure value %s", ev.h.Print(proc))
	}

	switch proc.Kind() {
	case heap.KindSubroutine:
		fn, variadic, required, name, _ := ev.h.SubroutineInfo(proc)
		defer releaseArgs()
		if err := checkArity(name, variadic, required, len(args)); err != nil {
			return formResult{}, err
		}
		v, err := fn(ev.h, args)
		if err != nil {
			return formResult{}, err
		}
		return doneResult(v), nil
	case heap.KindClosure:
		capturedEnv, params, variadic, required, body, _ := ev.h.ClosureInfo(proc)
		defer capturedEnv.Release()
		defer releaseArgs()
		if err := checkArity("#<closure>", variadic, required, len(args)); err != nil {
			return formResult{}, err
		}
		childEnv, err := env.NewChild(ev.h, env.Wrap(ev.h, capturedEnv))
		if err != nil {
			return formResult{}, err
		}
		if err := bindParams(childEnv, params, variadic, required, args); err != nil {
			return formResult{}, err
		}
		return ev.evalBody(body, childEnv)
	default:
		releaseArgs()
		return formResult{}, schemeerr.New(schemeerr.InvalidApplication, "cannot apply non-procedure value %s", ev.h.Print(proc))
	}
}

func bindParams(e *env.Environment, params []string, variadic bool, required int, args []heap.Handle) error {
	for i := 0; i < required; i++ {
		e.Insert(params[i], args[i])
	}
	if !variadic {
		return nil
	}
	rest, err := buildList(e.HeapFor(), args[required:])
	if err != nil {
		return err
	}
	e.Insert(params[required], rest)
	rest.Release()
	return nil
}

func buildList(h *heap.Heap, items []heap.Handle) (heap.Handle, error) {
	tail := h.EmptyHandle()
	for i := len(items) - 1; i >= 0; i-- {
		pair, err := h.AllocatePair(items[i], tail)
		tail.Release()
		if err != nil {
			return heap.Handle{}, err
		}
		tail = pair
	}
	return tail, nil
}

func checkArity(name string, variadic bool, required, got int) error {
	if variadic {
		if got < required {
			return schemeerr.New(schemeerr.Arity, "%s: expected at least %d arguments, got %d", name, required, got)
		}
		return nil
	}
	if got != required {
		return schemeerr.New(schemeerr.Arity, "%s: expected %d arguments, got %d", name, required, got)
	}
	return nil
}

// quoteToValue converts a quoted expression tree into heap values,
// recursively: atoms become themselves, identifiers become symbols,
// pairs become pair values.
func (ev *Evaluator) quoteToValue(datum *ast.Expr) (heap.Handle, error) {
	switch datum.Kind() {
	case ast.Int:
		return ev.h.AllocateInt(datum.IntValue())
	case ast.Float:
		return ev.h.AllocateFloat(datum.FloatValue())
	case ast.Bool:
		return ev.h.AllocateBool(datum.BoolValue())
	case ast.Str:
		return ev.h.AllocateString(datum.StrValue())
	case ast.Ident:
		return ev.h.AllocateSymbol(datum.IdentName())
	case ast.Empty:
		return ev.h.EmptyHandle(), nil
	case ast.Quote:
		return ev.quoteQuoted(datum)
	case ast.Pair:
		car, err := ev.quoteToValue(datum.Head())
		if err != nil {
			return heap.Handle{}, err
		}
		cdr, err := ev.quoteToValue(datum.Cdr())
		if err != nil {
			car.Release()
			return heap.Handle{}, err
		}
		pair, err := ev.h.AllocatePair(car, cdr)
		car.Release()
		cdr.Release()
		return pair, err
	default:
		return heap.Handle{}, schemeerr.New(schemeerr.Fatal, "quote: unhandled datum kind %s", datum.Kind())
	}
}

// quoteQuoted converts a quoted quote, '(quote x) nested inside another
// quote, into the two-element list (quote x) as plain data.
func (ev *Evaluator) quoteQuoted(datum *ast.Expr) (heap.Handle, error) {
	sym, err := ev.h.AllocateSymbol("quote")
	if err != nil {
		return heap.Handle{}, err
	}
	inner, err := ev.quoteToValue(datum.Quoted())
	if err != nil {
		sym.Release()
		return heap.Handle{}, err
	}
	empty := ev.h.EmptyHandle()
	innerList, err := ev.h.AllocatePair(inner, empty)
	inner.Release()
	empty.Release()
	if err != nil {
		sym.Release()
		return heap.Handle{}, err
	}
	result, err := ev.h.AllocatePair(sym, innerList)
	sym.Release()
	innerList.Release()
	return result, err
}
