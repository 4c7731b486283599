package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/schemecore/pkg/ast"
)

func list(items ...*ast.Expr) *ast.Expr {
	tail := ast.EmptyExpr()
	for i := len(items) - 1; i >= 0; i-- {
		tail = ast.NewPair(items[i], tail)
	}
	return tail
}

func TestKindString(t *testing.T) {
	require.Equal(t, "int", ast.Int.String())
	require.Equal(t, "pair", ast.Pair.String())
	require.Equal(t, "unknown", ast.Kind(99).String())
}

func TestHeadAndTail(t *testing.T) {
	l := list(ast.NewInt(1), ast.NewInt(2), ast.NewInt(3))
	require.Equal(t, int64(1), l.Head().IntValue())
	require.Equal(t, int64(2), l.Tail().Head().IntValue())
}

func TestTailOfEmptyIsEmpty(t *testing.T) {
	e := ast.EmptyExpr()
	require.True(t, e.Tail().IsEmpty())
}

func TestCdrOfImproperList(t *testing.T) {
	dotted := ast.NewPair(ast.NewInt(1), ast.NewInt(2))
	require.True(t, dotted.IsPair())
	require.Equal(t, int64(2), dotted.Cdr().IntValue())
}

func TestIsProperListRejectsImproperTail(t *testing.T) {
	p := ast.NewPair(ast.NewInt(1), ast.EmptyExpr())
	// Build a self-referential cdr by hand: there's no public mutator, so
	// this exercises the improper-tail case instead, which IsProperList
	// must also reject.
	improper := ast.NewPair(ast.NewInt(1), ast.NewInt(2))
	require.False(t, improper.IsProperList())
	require.True(t, list(ast.NewInt(1)).IsProperList())
	require.True(t, p.IsProperList())
}

func TestNth(t *testing.T) {
	l := list(ast.NewInt(10), ast.NewInt(20), ast.NewInt(30))
	v, ok := l.Nth(1)
	require.True(t, ok)
	require.Equal(t, int64(20), v.IntValue())

	_, ok = l.Nth(5)
	require.False(t, ok)
}

func TestEachStopsEarly(t *testing.T) {
	l := list(ast.NewInt(1), ast.NewInt(2), ast.NewInt(3))
	var seen []int64
	l.Each(func(e *ast.Expr) bool {
		seen = append(seen, e.IntValue())
		return e.IntValue() != 2
	})
	require.Equal(t, []int64{1, 2}, seen)
}

func TestLen(t *testing.T) {
	n, ok := list(ast.NewInt(1), ast.NewInt(2)).Len()
	require.True(t, ok)
	require.Equal(t, 2, n)

	improper := ast.NewPair(ast.NewInt(1), ast.NewInt(2))
	_, ok = improper.Len()
	require.False(t, ok)
}

func TestString(t *testing.T) {
	require.Equal(t, "5", ast.NewInt(5).String())
	require.Equal(t, "#t", ast.NewBool(true).String())
	require.Equal(t, "#f", ast.NewBool(false).String())
	require.Equal(t, `"hi"`, ast.NewStr("hi").String())
	require.Equal(t, "x", ast.NewIdent("x").String())
	require.Equal(t, "()", ast.EmptyExpr().String())
	require.Equal(t, "(1 2)", list(ast.NewInt(1), ast.NewInt(2)).String())
	require.Equal(t, "(1 . 2)", ast.NewPair(ast.NewInt(1), ast.NewInt(2)).String())
	require.Equal(t, "'x", ast.NewQuote(ast.NewIdent("x")).String())
}

func TestHeadPanicsOnNonPair(t *testing.T) {
	require.Panics(t, func() { ast.NewInt(1).Head() })
}
