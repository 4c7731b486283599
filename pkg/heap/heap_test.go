package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestHeap(t *testing.T) *Heap {
	t.Helper()
	return New(Options{ValueCapacity: 256, EnvCapacity: 64})
}

func TestGCReclaimsUnrooted(t *testing.T) {
	h := newTestHeap(t)
	before := h.Stats().LiveValues

	v, err := h.AllocateInt(42)
	require.NoError(t, err)
	require.Equal(t, before+1, h.Stats().LiveValues)

	v.Release()
	h.Collect()
	require.Equal(t, before, h.Stats().LiveValues, "unrooted record must be swept")
}

func TestGCKeepsRootedAndReachable(t *testing.T) {
	h := newTestHeap(t)

	a, err := h.AllocateInt(1)
	require.NoError(t, err)
	b, err := h.AllocateInt(2)
	require.NoError(t, err)
	pair, err := h.AllocatePair(a, b)
	require.NoError(t, err)
	a.Release()
	b.Release()

	before := h.Stats().LiveValues
	h.Collect()
	require.Equal(t, before, h.Stats().LiveValues, "pair and its car/cdr survive via the pair's root")

	car, err := h.Car(pair)
	require.NoError(t, err)
	cdr, err := h.Cdr(pair)
	require.NoError(t, err)
	iv, _ := h.IntValue(car)
	require.Equal(t, int64(1), iv)
	jv, _ := h.IntValue(cdr)
	require.Equal(t, int64(2), jv)
	car.Release()
	cdr.Release()
	pair.Release()
}

func TestGCCyclicEnvironmentsDoNotLeak(t *testing.T) {
	h := newTestHeap(t)

	global, err := h.NewEnv(Handle{}, false)
	require.NoError(t, err)
	child, err := h.NewEnv(global, true)
	require.NoError(t, err)

	closure, err := h.AllocateClosure(child, nil, false, 0, nil)
	require.NoError(t, err)
	h.EnvLocalSet(child, "self", closure)
	closure.Release()

	global.Release()
	child.Release()

	before := h.Stats()
	h.Collect()
	after := h.Stats()
	require.Equal(t, before.LiveEnvs-2, after.LiveEnvs, "both envs unreachable once unrooted, despite the cycle")
	require.Equal(t, before.LiveValues-1, after.LiveValues)
}

func TestEmptySentinelIsPinned(t *testing.T) {
	h := newTestHeap(t)
	empty := h.EmptyHandle()
	empty.Release()
	h.Collect()
	h.Collect()
	empty2 := h.EmptyHandle()
	require.True(t, empty.SameRecord(empty2), "the sentinel is never reclaimed or reallocated")
	empty2.Release()
}

func TestEqVsEqual(t *testing.T) {
	h := newTestHeap(t)
	defer h.Collect()

	s1, _ := h.AllocateString("abc")
	s2, _ := h.AllocateString("abc")
	defer s1.Release()
	defer s2.Release()

	require.False(t, h.Eq(s1, s2), "distinct string records are not eq?")
	require.True(t, h.Equal(s1, s2), "but they are equal? by value")

	i1, _ := h.AllocateInt(7)
	i2, _ := h.AllocateInt(7)
	defer i1.Release()
	defer i2.Release()
	require.True(t, h.Eq(i1, i2), "integers compare eq? by value")
}

func TestPrintHandlesSelfCycle(t *testing.T) {
	h := newTestHeap(t)

	a, _ := h.AllocateInt(1)
	empty := h.EmptyHandle()
	pair, err := h.AllocatePair(a, empty)
	require.NoError(t, err)
	a.Release()
	empty.Release()

	require.NoError(t, h.SetCdr(pair, pair))

	out := h.Print(pair)
	require.Contains(t, out, "#0=")
	require.Contains(t, out, "#0#")
	pair.Release()
	h.Collect()
}

func TestLengthRejectsImproperList(t *testing.T) {
	h := newTestHeap(t)
	a, _ := h.AllocateInt(1)
	pair, err := h.AllocatePair(a, a)
	require.NoError(t, err)
	a.Release()

	_, err = h.Length(pair)
	require.Error(t, err)
	pair.Release()
	h.Collect()
}
