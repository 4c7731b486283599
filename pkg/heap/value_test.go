package heap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/schemecore/pkg/ast"
)

func TestPrintDottedAndProperLists(t *testing.T) {
	h := newTestHeap(t)

	a, _ := h.AllocateInt(1)
	b, _ := h.AllocateInt(2)
	dotted, err := h.AllocatePair(a, b)
	require.NoError(t, err)
	a.Release()
	b.Release()
	require.Equal(t, "(1 . 2)", h.Print(dotted))
	dotted.Release()

	c, _ := h.AllocateInt(1)
	empty := h.EmptyHandle()
	proper, err := h.AllocatePair(c, empty)
	require.NoError(t, err)
	c.Release()
	empty.Release()
	require.Equal(t, "(1)", h.Print(proper))
	proper.Release()
	h.Collect()
}

func TestFormatSchemeFloat(t *testing.T) {
	require.Equal(t, "1.5", formatSchemeFloat(1.5))
	require.Equal(t, "3.", formatSchemeFloat(3.0), "a whole-valued float still prints with a trailing dot")
}

func TestPrintAtomKinds(t *testing.T) {
	h := newTestHeap(t)

	s, _ := h.AllocateString("hi")
	require.Equal(t, `"hi"`, h.Print(s))
	s.Release()

	sym, _ := h.AllocateSymbol("x")
	require.Equal(t, "x", h.Print(sym))
	sym.Release()

	u, _ := h.AllocateUndefined()
	require.Equal(t, "#<undefined>", h.Print(u))
	u.Release()

	h.Collect()
}

func TestClosureInfoRoundTrip(t *testing.T) {
	h := newTestHeap(t)

	global, err := h.NewEnv(Handle{}, false)
	require.NoError(t, err)

	body := ast.NewInt(42)
	closure, err := h.AllocateClosure(global, []string{"x", "y"}, true, 1, body)
	require.NoError(t, err)
	global.Release()

	capturedEnv, params, variadic, required, gotBody, err := h.ClosureInfo(closure)
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, params)
	require.True(t, variadic)
	require.Equal(t, 1, required)
	require.Same(t, body, gotBody)
	capturedEnv.Release()
	closure.Release()
	h.Collect()
}

func TestSubroutineInfoRoundTrip(t *testing.T) {
	h := newTestHeap(t)

	fn := func(h *Heap, args []Handle) (Handle, error) { return h.AllocateBool(true) }
	sub, err := h.AllocateSubroutine("probe", fn, false, 2)
	require.NoError(t, err)

	gotFn, variadic, required, name, err := h.SubroutineInfo(sub)
	require.NoError(t, err)
	require.False(t, variadic)
	require.Equal(t, 2, required)
	require.Equal(t, "probe", name)
	require.NotNil(t, gotFn)

	sub.Release()
	h.Collect()
}

func TestIsProcedure(t *testing.T) {
	h := newTestHeap(t)
	i, _ := h.AllocateInt(1)
	require.False(t, h.IsProcedure(i))
	i.Release()

	sub, _ := h.AllocateSubroutine("p", func(h *Heap, args []Handle) (Handle, error) { return h.AllocateBool(true) }, false, 0)
	require.True(t, h.IsProcedure(sub))
	sub.Release()
	h.Collect()
}
