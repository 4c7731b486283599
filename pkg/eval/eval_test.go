package eval_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/schemecore/pkg/builtins"
	"github.com/gitrdm/schemecore/pkg/env"
	"github.com/gitrdm/schemecore/pkg/eval"
	"github.com/gitrdm/schemecore/pkg/heap"
	"github.com/gitrdm/schemecore/pkg/reader"
)

// newInterp builds a fresh heap + global environment + evaluator, the
// same trio cmd/scheme assembles, so these tests exercise the real
// collaboration rather than the evaluator in isolation.
func newInterp(t *testing.T) (*heap.Heap, *eval.Evaluator) {
	t.Helper()
	h := heap.New(heap.Options{ValueCapacity: 1 << 14, EnvCapacity: 1 << 12})
	g, err := env.NewGlobal(h, builtins.Specs())
	require.NoError(t, err)
	return h, eval.New(h, g, nil)
}

// runAll evaluates every top-level form in src against a fresh
// interpreter and returns the printed representation of the last form's
// value.
func runAll(t *testing.T, src string) string {
	t.Helper()
	h, ev := newInterp(t)
	forms, err := reader.ParseAll(src)
	require.NoError(t, err)
	require.NotEmpty(t, forms)

	var last string
	for _, f := range forms {
		v, err := ev.EvalTop(f, ev.Global)
		require.NoError(t, err)
		last = h.Print(v)
		v.Release()
	}
	return last
}

func TestArithmeticAndComparison(t *testing.T) {
	require.Equal(t, "6", runAll(t, "(+ 1 2 3)"))
	require.Equal(t, "-4", runAll(t, "(- 4 8)"))
	require.Equal(t, "2", runAll(t, "(/ 10 5)"))
	require.Equal(t, "2.5", runAll(t, "(/ 5 2)"))
	require.Equal(t, "#t", runAll(t, "(< 1 2 3)"))
	require.Equal(t, "#f", runAll(t, "(< 1 3 2)"))
}

func TestDefineAndLookup(t *testing.T) {
	require.Equal(t, "5", runAll(t, "(define x 5) x"))
}

func TestLambdaAndApplication(t *testing.T) {
	require.Equal(t, "7", runAll(t, "(define (add a b) (+ a b)) (add 3 4)"))
	require.Equal(t, "10", runAll(t, "((lambda (n) (* n 2)) 5)"))
}

func TestClosureCapture(t *testing.T) {
	src := `
		(define (make-adder n) (lambda (x) (+ x n)))
		(define add5 (make-adder 5))
		(add5 10)
	`
	require.Equal(t, "15", runAll(t, src))
}

func TestSpecialFormShadowing(t *testing.T) {
	// A user binding named "if" shadows the keyword: applying it as a
	// procedure, not dispatching the special form.
	src := `
		(define (if a b) (+ a b))
		(if 1 2)
	`
	require.Equal(t, "3", runAll(t, src))
}

func TestNamedLetLoop(t *testing.T) {
	src := `
		(let loop ((i 0) (acc 0))
		  (if (= i 5)
		      acc
		      (loop (+ i 1) (+ acc i))))
	`
	require.Equal(t, "10", runAll(t, src))
}

func TestDoParallelStep(t *testing.T) {
	// Both step expressions reference each other's pre-step value, so a
	// sequential implementation would produce a different answer than a
	// parallel one.
	src := `
		(do ((a 0 b) (b 1 (+ a b)) (i 0 (+ i 1)))
		    ((= i 5) a))
	`
	require.Equal(t, "5", runAll(t, src))
}

func TestTailCallDoesNotOverflowStack(t *testing.T) {
	src := `
		(define (count n acc)
		  (if (= n 0) acc (count (- n 1) (+ acc 1))))
		(count 200000 0)
	`
	require.Equal(t, "200000", runAll(t, src))
}

func TestLetrecMutualRecursion(t *testing.T) {
	src := `
		(letrec ((even? (lambda (n) (if (= n 0) #t (odd? (- n 1)))))
		         (odd?  (lambda (n) (if (= n 0) #f (even? (- n 1))))))
		  (even? 10))
	`
	require.Equal(t, "#t", runAll(t, src))
}

func TestQuoteAndListOps(t *testing.T) {
	require.Equal(t, "(1 2 3)", runAll(t, "(list 1 2 3)"))
	require.Equal(t, "(1 . 2)", runAll(t, "(cons 1 2)"))
	require.Equal(t, "3", runAll(t, "(length '(a b c))"))
	require.Equal(t, "(1 2 3 4)", runAll(t, "(append '(1 2) '(3 4))"))
}

func TestUnboundVariableIsAnError(t *testing.T) {
	h, ev := newInterp(t)
	forms, err := reader.ParseAll("totally-unbound-name")
	require.NoError(t, err)
	_, err = ev.EvalTop(forms[0], ev.Global)
	require.Error(t, err)
	_ = h
}
