package env_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/schemecore/pkg/env"
	"github.com/gitrdm/schemecore/pkg/heap"
)

func TestLookupWalksParentChain(t *testing.T) {
	h := heap.New(heap.Options{ValueCapacity: 64, EnvCapacity: 16})
	global, err := env.NewGlobal(h, nil)
	require.NoError(t, err)

	v, _ := h.AllocateInt(1)
	global.Insert("x", v)
	v.Release()

	child, err := env.NewChild(h, global)
	require.NoError(t, err)

	got, ok := child.Lookup("x")
	require.True(t, ok, "a binding in an outer scope is visible from an inner one")
	iv, _ := h.IntValue(got)
	require.Equal(t, int64(1), iv)
	got.Release()

	_, ok = child.Lookup("nope")
	require.False(t, ok)
}

func TestInsertShadowsOuterBinding(t *testing.T) {
	h := heap.New(heap.Options{ValueCapacity: 64, EnvCapacity: 16})
	global, err := env.NewGlobal(h, nil)
	require.NoError(t, err)

	outer, _ := h.AllocateInt(1)
	global.Insert("x", outer)
	outer.Release()

	child, err := env.NewChild(h, global)
	require.NoError(t, err)
	inner, _ := h.AllocateInt(2)
	child.Insert("x", inner)
	inner.Release()

	got, ok := child.Lookup("x")
	require.True(t, ok)
	iv, _ := h.IntValue(got)
	require.Equal(t, int64(2), iv, "the inner binding shadows the outer one")
	got.Release()

	outerGot, ok := global.Lookup("x")
	require.True(t, ok)
	ov, _ := h.IntValue(outerGot)
	require.Equal(t, int64(1), ov, "the outer scope's own binding is unaffected")
	outerGot.Release()
}

func TestSetRebindsDefiningScope(t *testing.T) {
	h := heap.New(heap.Options{ValueCapacity: 64, EnvCapacity: 16})
	global, err := env.NewGlobal(h, nil)
	require.NoError(t, err)

	v, _ := h.AllocateInt(1)
	global.Insert("x", v)
	v.Release()

	child, err := env.NewChild(h, global)
	require.NoError(t, err)

	updated, _ := h.AllocateInt(99)
	require.NoError(t, child.Set("x", updated))
	updated.Release()

	got, ok := global.Lookup("x")
	require.True(t, ok)
	iv, _ := h.IntValue(got)
	require.Equal(t, int64(99), iv, "set! rebinds in the scope that defines the name, not a new frame")
	got.Release()

	fresh, _ := h.AllocateInt(1)
	err = child.Set("never-defined", fresh)
	fresh.Release()
	require.Error(t, err, "set! on an unbound name is an error")
}
