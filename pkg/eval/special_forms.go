package eval

import (
	"github.com/gitrdm/schemecore/pkg/ast"
	"github.com/gitrdm/schemecore/pkg/env"
	"github.com/gitrdm/schemecore/pkg/heap"
	"github.com/gitrdm/schemecore/pkg/schemeerr"
)

// specialFormFn implements one special form. args is the cdr of the
// whole form (everything after the keyword).
type specialFormFn func(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error)

var specialForms = map[string]specialFormFn{
	"define": sfDefine,
	"lambda": sfLambda,
	"quote":  sfQuote,
	"set!":   sfSet,
	"if":     sfIf,
	"cond":   sfCond,
	"and":    sfAnd,
	"or":     sfOr,
	"begin":  sfBegin,
	"let":    sfLet,
	"let*":   sfLetStar,
	"letrec": sfLetrec,
	"do":     sfDo,
}

func sfDefine(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	if _, err := ev.evalDefine(args, e); err != nil {
		return formResult{}, err
	}
	u, err := ev.h.AllocateUndefined()
	if err != nil {
		return formResult{}, err
	}
	return doneResult(u), nil
}

func sfLambda(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	if args.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "lambda: missing parameter list")
	}
	params, variadic, required, err := parseParams(args.Head())
	if err != nil {
		return formResult{}, err
	}
	body := args.Cdr()
	if body.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "lambda: empty body")
	}
	closure, err := ev.h.AllocateClosure(e.Handle, params, variadic, required, body)
	if err != nil {
		return formResult{}, err
	}
	return doneResult(closure), nil
}

func sfQuote(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	if args.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "quote: missing datum")
	}
	v, err := ev.quoteToValue(args.Head())
	if err != nil {
		return formResult{}, err
	}
	return doneResult(v), nil
}

func sfSet(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	if args.Kind() != ast.Pair || args.Head().Kind() != ast.Ident {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "set!: malformed form")
	}
	name := args.Head().IdentName()
	rest := args.Cdr()
	if rest.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "set!: missing value expression")
	}
	v, err := ev.Eval(rest.Head(), e)
	if err != nil {
		return formResult{}, err
	}
	err = e.Set(name, v)
	v.Release()
	if err != nil {
		return formResult{}, err
	}
	u, err := ev.h.AllocateUndefined()
	if err != nil {
		return formResult{}, err
	}
	return doneResult(u), nil
}

func sfIf(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	if args.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "if: missing test")
	}
	rest := args.Cdr()
	if rest.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "if: missing consequent")
	}
	testVal, err := ev.Eval(args.Head(), e)
	if err != nil {
		return formResult{}, err
	}
	falsy := ev.h.IsFalsy(testVal)
	testVal.Release()

	if !falsy {
		return tailResult(rest.Head(), e), nil
	}
	alt := rest.Cdr()
	if alt.Kind() == ast.Pair {
		return tailResult(alt.Head(), e), nil
	}
	u, err := ev.h.AllocateUndefined()
	if err != nil {
		return formResult{}, err
	}
	return doneResult(u), nil
}

func sfCond(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	cur := args
	for cur.Kind() == ast.Pair {
		clause := cur.Head()
		if clause.Kind() != ast.Pair {
			return formResult{}, schemeerr.New(schemeerr.Syntax, "cond: malformed clause")
		}
		test := clause.Head()
		body := clause.Cdr()
		isElse := test.Kind() == ast.Ident && test.IdentName() == "else"
		if !isElse {
			testVal, err := ev.Eval(test, e)
			if err != nil {
				return formResult{}, err
			}
			falsy := ev.h.IsFalsy(testVal)
			testVal.Release()
			if falsy {
				cur = cur.Cdr()
				continue
			}
		}
		if body.Kind() != ast.Pair {
			u, err := ev.h.AllocateUndefined()
			if err != nil {
				return formResult{}, err
			}
			return doneResult(u), nil
		}
		return evalSequenceTail(ev, body, e)
	}
	u, err := ev.h.AllocateUndefined()
	if err != nil {
		return formResult{}, err
	}
	return doneResult(u), nil
}

func sfAnd(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	if args.Kind() != ast.Pair {
		t, err := ev.h.AllocateBool(true)
		if err != nil {
			return formResult{}, err
		}
		return doneResult(t), nil
	}
	cur := args
	for {
		rest := cur.Cdr()
		if rest.Kind() != ast.Pair {
			return tailResult(cur.Head(), e), nil
		}
		v, err := ev.Eval(cur.Head(), e)
		if err != nil {
			return formResult{}, err
		}
		if ev.h.IsFalsy(v) {
			return doneResult(v), nil
		}
		v.Release()
		cur = rest
	}
}

func sfOr(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	if args.Kind() != ast.Pair {
		f, err := ev.h.AllocateBool(false)
		if err != nil {
			return formResult{}, err
		}
		return doneResult(f), nil
	}
	cur := args
	for {
		rest := cur.Cdr()
		if rest.Kind() != ast.Pair {
			return tailResult(cur.Head(), e), nil
		}
		v, err := ev.Eval(cur.Head(), e)
		if err != nil {
			return formResult{}, err
		}
		if !ev.h.IsFalsy(v) {
			return doneResult(v), nil
		}
		v.Release()
		cur = rest
	}
}

func sfBegin(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	if args.Kind() != ast.Pair {
		u, err := ev.h.AllocateUndefined()
		if err != nil {
			return formResult{}, err
		}
		return doneResult(u), nil
	}
	return evalSequenceTail(ev, args, e)
}

type bindingSpec struct {
	name string
	init *ast.Expr
}

func parseBindings(list *ast.Expr) ([]bindingSpec, error) {
	var out []bindingSpec
	cur := list
	for cur.Kind() == ast.Pair {
		b := cur.Head()
		if b.Kind() != ast.Pair || b.Head().Kind() != ast.Ident {
			return nil, schemeerr.New(schemeerr.Syntax, "malformed binding")
		}
		rest := b.Cdr()
		if rest.Kind() != ast.Pair {
			return nil, schemeerr.New(schemeerr.Syntax, "binding missing init expression")
		}
		out = append(out, bindingSpec{name: b.Head().IdentName(), init: rest.Head()})
		cur = cur.Cdr()
	}
	if cur.Kind() != ast.Empty {
		return nil, schemeerr.New(schemeerr.Syntax, "malformed binding list")
	}
	return out, nil
}

func releaseAll(vs []heap.Handle) {
	for _, v := range vs {
		v.Release()
	}
}

func sfLet(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	if args.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "let: malformed form")
	}
	if args.Head().Kind() == ast.Ident {
		return sfNamedLet(ev, args, e)
	}
	bindings, err := parseBindings(args.Head())
	if err != nil {
		return formResult{}, err
	}
	body := args.Cdr()
	if body.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "let: empty body")
	}

	values := make([]heap.Handle, len(bindings))
	for i, b := range bindings {
		v, err := ev.Eval(b.init, e)
		if err != nil {
			releaseAll(values[:i])
			return formResult{}, err
		}
		values[i] = v
	}
	child, err := env.NewChild(ev.h, e)
	if err != nil {
		releaseAll(values)
		return formResult{}, err
	}
	for i, b := range bindings {
		child.Insert(b.name, values[i])
	}
	releaseAll(values)
	return ev.evalBody(body, child)
}

// sfNamedLet implements named let by literally constructing the closure
// the construct describes ("bind name to a closure whose params are the
// binding names... apply it to the inits") and binding its parameters
// directly, rather than routing through a synthetic application — same
// observable behavior, one fewer heap round-trip.
func sfNamedLet(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	name := args.Head().IdentName()
	rest := args.Cdr()
	if rest.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "let: malformed named let")
	}
	bindings, err := parseBindings(rest.Head())
	if err != nil {
		return formResult{}, err
	}
	body := rest.Cdr()
	if body.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "let: empty body")
	}

	values := make([]heap.Handle, len(bindings))
	for i, b := range bindings {
		v, err := ev.Eval(b.init, e)
		if err != nil {
			releaseAll(values[:i])
			return formResult{}, err
		}
		values[i] = v
	}

	loopEnv, err := env.NewChild(ev.h, e)
	if err != nil {
		releaseAll(values)
		return formResult{}, err
	}
	params := make([]string, len(bindings))
	for i, b := range bindings {
		params[i] = b.name
	}
	closure, err := ev.h.AllocateClosure(loopEnv.Handle, params, false, len(params), body)
	if err != nil {
		releaseAll(values)
		loopEnv.Handle.Release()
		return formResult{}, err
	}
	loopEnv.Insert(name, closure)
	closure.Release()

	childEnv, err := env.NewChild(ev.h, loopEnv)
	loopEnv.Handle.Release()
	if err != nil {
		releaseAll(values)
		return formResult{}, err
	}
	for i, b := range bindings {
		childEnv.Insert(b.name, values[i])
	}
	releaseAll(values)
	return ev.evalBody(body, childEnv)
}

func sfLetStar(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	if args.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "let*: malformed form")
	}
	bindings, err := parseBindings(args.Head())
	if err != nil {
		return formResult{}, err
	}
	body := args.Cdr()
	if body.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "let*: empty body")
	}

	cur := e
	owned := false
	for _, b := range bindings {
		v, err := ev.Eval(b.init, cur)
		if err != nil {
			return formResult{}, err
		}
		next, err := env.NewChild(ev.h, cur)
		if err != nil {
			v.Release()
			return formResult{}, err
		}
		next.Insert(b.name, v)
		v.Release()
		if owned {
			cur.Handle.Release()
		}
		cur = next
		owned = true
	}
	if !owned {
		child, err := env.NewChild(ev.h, e)
		if err != nil {
			return formResult{}, err
		}
		cur = child
	}
	return ev.evalBody(body, cur)
}

func sfLetrec(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	if args.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "letrec: malformed form")
	}
	bindings, err := parseBindings(args.Head())
	if err != nil {
		return formResult{}, err
	}
	body := args.Cdr()
	if body.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "letrec: empty body")
	}

	child, err := env.NewChild(ev.h, e)
	if err != nil {
		return formResult{}, err
	}
	for _, b := range bindings {
		u, err := ev.h.AllocateUndefined()
		if err != nil {
			return formResult{}, err
		}
		child.Insert(b.name, u)
		u.Release()
	}
	for _, b := range bindings {
		v, err := ev.Eval(b.init, child)
		if err != nil {
			return formResult{}, err
		}
		child.Insert(b.name, v)
		v.Release()
	}
	return ev.evalBody(body, child)
}

type doBinding struct {
	name string
	init *ast.Expr
	step *ast.Expr // nil => unchanged each iteration
}

func parseDoBindings(list *ast.Expr) ([]doBinding, error) {
	var out []doBinding
	cur := list
	for cur.Kind() == ast.Pair {
		b := cur.Head()
		if b.Kind() != ast.Pair || b.Head().Kind() != ast.Ident {
			return nil, schemeerr.New(schemeerr.Syntax, "do: malformed binding")
		}
		rest := b.Cdr()
		if rest.Kind() != ast.Pair {
			return nil, schemeerr.New(schemeerr.Syntax, "do: binding missing init")
		}
		init := rest.Head()
		var step *ast.Expr
		stepRest := rest.Cdr()
		if stepRest.Kind() == ast.Pair {
			step = stepRest.Head()
		}
		out = append(out, doBinding{name: b.Head().IdentName(), init: init, step: step})
		cur = cur.Cdr()
	}
	if cur.Kind() != ast.Empty {
		return nil, schemeerr.New(schemeerr.Syntax, "do: malformed binding list")
	}
	return out, nil
}

func sfDo(ev *Evaluator, args *ast.Expr, e *env.Environment) (formResult, error) {
	if args.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "do: malformed form")
	}
	bindings, err := parseDoBindings(args.Head())
	if err != nil {
		return formResult{}, err
	}
	rest := args.Cdr()
	if rest.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "do: missing test clause")
	}
	testClause := rest.Head()
	if testClause.Kind() != ast.Pair {
		return formResult{}, schemeerr.New(schemeerr.Syntax, "do: malformed test clause")
	}
	test := testClause.Head()
	results := testClause.Cdr()
	cmds := rest.Cdr()

	loopEnv, err := env.NewChild(ev.h, e)
	if err != nil {
		return formResult{}, err
	}
	for _, b := range bindings {
		v, err := ev.Eval(b.init, e)
		if err != nil {
			return formResult{}, err
		}
		loopEnv.Insert(b.name, v)
		v.Release()
	}

	for {
		testVal, err := ev.Eval(test, loopEnv)
		if err != nil {
			return formResult{}, err
		}
		done := !ev.h.IsFalsy(testVal)
		testVal.Release()
		if done {
			if results.Kind() != ast.Pair {
				loopEnv.Handle.Release()
				u, err := ev.h.AllocateUndefined()
				if err != nil {
					return formResult{}, err
				}
				return doneResult(u), nil
			}
			return evalSequenceTail(ev, results, loopEnv)
		}

		cur := cmds
		for cur.Kind() == ast.Pair {
			v, err := ev.Eval(cur.Head(), loopEnv)
			if err != nil {
				return formResult{}, err
			}
			v.Release()
			cur = cur.Cdr()
		}

		// Step forms are all evaluated against the pre-step loop env,
		// then installed together — parallel assignment, not sequential.
		stepped := make([]heap.Handle, len(bindings))
		for i, b := range bindings {
			if b.step == nil {
				v, ok := loopEnv.Lookup(b.name)
				if !ok {
					return formResult{}, schemeerr.New(schemeerr.Fatal, "do: loop variable %q vanished", b.name)
				}
				stepped[i] = v
				continue
			}
			v, err := ev.Eval(b.step, loopEnv)
			if err != nil {
				releaseAll(stepped[:i])
				return formResult{}, err
			}
			stepped[i] = v
		}
		for i, b := range bindings {
			loopEnv.Insert(b.name, stepped[i])
		}
		releaseAll(stepped)
	}
}
