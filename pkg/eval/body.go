package eval

import (
	"os"

	"github.com/gitrdm/schemecore/pkg/ast"
	"github.com/gitrdm/schemecore/pkg/env"
	"github.com/gitrdm/schemecore/pkg/heap"
	"github.com/gitrdm/schemecore/pkg/reader"
	"github.com/gitrdm/schemecore/pkg/schemeerr"
)

// evalBody runs a procedure/let body: zero or more leading (define …)
// forms evaluated for effect, installing bindings in e, followed by one
// or more expressions evaluated in order — all but the last discarded,
// the last handed back as a tail jump.
func (ev *Evaluator) evalBody(body *ast.Expr, e *env.Environment) (formResult, error) {
	cur := body
	for cur.Kind() == ast.Pair && isKeywordHead(cur.Head(), "define", e) {
		if _, err := ev.evalDefine(cur.Head().Tail(), e); err != nil {
			return formResult{}, err
		}
		cur = cur.Cdr()
	}
	if cur.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "procedure body must contain at least one expression")
	}
	return evalSequenceTail(ev, cur, e)
}

// evalSequenceTail evaluates a nonempty proper list of forms in order,
// discarding every value but the last, which it returns as a tail jump.
// list must already be known to be a pair.
func evalSequenceTail(ev *Evaluator, list *ast.Expr, e *env.Environment) (formResult, error) {
	cur := list
	for {
		form := cur.Head()
		rest := cur.Cdr()
		if rest.Kind() != ast.Pair {
			return tailResult(form, e), nil
		}
		v, err := ev.Eval(form, e)
		if err != nil {
			return formResult{}, err
		}
		v.Release()
		cur = rest
	}
}

// isKeywordHead reports whether form is "(name …)" with name unshadowed
// in e — the same shadow-check evalPair applies, used here to decide
// whether a leading body form is an internal define.
func isKeywordHead(form *ast.Expr, name string, e *env.Environment) bool {
	if form.Kind() != ast.Pair || form.Head().Kind() != ast.Ident || form.Head().IdentName() != name {
		return false
	}
	if v, ok := e.Lookup(name); ok {
		v.Release()
		return false
	}
	return true
}

// evalDefine implements both (define id expr) and the
// (define (id . params) body…) procedure sugar, returning the bound
// name.
func (ev *Evaluator) evalDefine(args *ast.Expr, e *env.Environment) (string, error) {
	if args.Kind() != ast.Pair {
		return "", schemeerr.New(schemeerr.Syntax, "define: missing target")
	}
	target := args.Head()
	rest := args.Cdr()

	switch target.Kind() {
	case ast.Ident:
		name := target.IdentName()
		var val heap.Handle
		var err error
		if rest.Kind() == ast.Pair {
			val, err = ev.Eval(rest.Head(), e)
		} else {
			val, err = ev.h.AllocateUndefined()
		}
		if err != nil {
			return "", err
		}
		e.Insert(name, val)
		val.Release()
		return name, nil
	case ast.Pair:
		nameExpr := target.Head()
		if nameExpr.Kind() != ast.Ident {
			return "", schemeerr.New(schemeerr.Syntax, "define: procedure name must be an identifier")
		}
		params, variadic, required, err := parseParams(target.Cdr())
		if err != nil {
			return "", err
		}
		closure, err := ev.h.AllocateClosure(e.Handle, params, variadic, required, rest)
		if err != nil {
			return "", err
		}
		e.Insert(nameExpr.IdentName(), closure)
		closure.Release()
		return nameExpr.IdentName(), nil
	default:
		return "", schemeerr.New(schemeerr.Syntax, "define: malformed target")
	}
}

// evalLoad implements the top-level (load filename-expr) form: the
// filename expression is evaluated to a string, then every top-level
// form the file contains is parsed and evaluated in e in turn.
func (ev *Evaluator) evalLoad(args *ast.Expr, e *env.Environment) (heap.Handle, error) {
	if args.Kind() != ast.Pair {
		return heap.Handle{}, schemeerr.New(schemeerr.Syntax, "load: missing filename")
	}
	pathVal, err := ev.Eval(args.Head(), e)
	if err != nil {
		return heap.Handle{}, err
	}
	path, err := ev.h.StringValue(pathVal)
	pathVal.Release()
	if err != nil {
		return heap.Handle{}, schemeerr.New(schemeerr.Syntax, "load: filename must be a string")
	}
	if err := ev.LoadFile(path, e); err != nil {
		return heap.Handle{}, err
	}
	return ev.h.AllocateBool(true)
}

// LoadFile reads, parses, and evaluates every top-level form in path
// against e, stopping at the first error: a load error does not undo
// bindings already established by prior forms in the file.
func (ev *Evaluator) LoadFile(path string, e *env.Environment) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return schemeerr.Wrap(schemeerr.Load, err, "load: cannot read %s", path)
	}
	forms, err := reader.ParseAll(string(data))
	if err != nil {
		return schemeerr.Wrap(schemeerr.Read, err, "load: cannot parse %s", path)
	}
	for _, form := range forms {
		v, err := ev.EvalTop(form, e)
		if err != nil {
			return err
		}
		v.Release()
	}
	return nil
}

// parseParams interprets a lambda/define-sugar parameter spec: a proper
// identifier list (fixed arity), a single identifier (pure variadic), or
// a dotted list (fixed names followed by a rest name). When variadic is
// true, required is the fixed count and the rest name sits at
// params[required].
func parseParams(p *ast.Expr) ([]string, bool, int, error) {
	switch p.Kind() {
	case ast.Ident:
		return []string{p.IdentName()}, true, 0, nil
	case ast.Empty:
		return nil, false, 0, nil
	case ast.Pair:
		var names []string
		cur := p
		for cur.Kind() == ast.Pair {
			head := cur.Head()
			if head.Kind() != ast.Ident {
				return nil, false, 0, schemeerr.New(schemeerr.Syntax, "lambda: parameter must be an identifier")
			}
			names = append(names, head.IdentName())
			cur = cur.Cdr()
		}
		switch cur.Kind() {
		case ast.Empty:
			return names, false, len(names), nil
		case ast.Ident:
			names = append(names, cur.IdentName())
			return names, true, len(names) - 1, nil
		default:
			return nil, false, 0, schemeerr.New(schemeerr.Syntax, "lambda: malformed parameter list")
		}
	default:
		return nil, false, 0, schemeerr.New(schemeerr.Syntax, "lambda: malformed parameter list")
	}
}
