package builtins_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/schemecore/pkg/builtins"
	"github.com/gitrdm/schemecore/pkg/heap"
)

func newHeap(t *testing.T) *heap.Heap {
	t.Helper()
	return heap.New(heap.Options{ValueCapacity: 512, EnvCapacity: 32})
}

func findFn(t *testing.T, name string) heap.BuiltinFunc {
	t.Helper()
	for _, s := range builtins.Specs() {
		if s.Name == name {
			return s.Fn
		}
	}
	t.Fatalf("no builtin registered for %q", name)
	return nil
}

func TestMemqUsesIdentityNotValue(t *testing.T) {
	h := newHeap(t)
	fn := findFn(t, "memq")

	s1, _ := h.AllocateString("x")
	s2, _ := h.AllocateString("x")
	empty := h.EmptyHandle()
	list, err := h.AllocatePair(s2, empty)
	require.NoError(t, err)
	empty.Release()

	result, err := fn(h, []heap.Handle{s1, list})
	require.NoError(t, err)
	require.Equal(t, "#f", h.Print(result), "distinct string records are not eq?, so memq must miss")
	result.Release()
	s1.Release()
	s2.Release()
	list.Release()
}

func TestStringToNumberReturnsFalseOnFailure(t *testing.T) {
	h := newHeap(t)
	fn := findFn(t, "string->number")

	bad, _ := h.AllocateString("not-a-number")
	result, err := fn(h, []heap.Handle{bad})
	require.NoError(t, err, "a parse failure must not be a Go error")
	require.Equal(t, heap.KindBool, result.Kind())
	require.Equal(t, "#f", h.Print(result))
	bad.Release()
	result.Release()

	good, _ := h.AllocateString("42")
	result2, err := fn(h, []heap.Handle{good})
	require.NoError(t, err)
	require.Equal(t, "42", h.Print(result2))
	good.Release()
	result2.Release()
}

func TestAppendLastArgumentUsedAsIs(t *testing.T) {
	h := newHeap(t)
	fn := findFn(t, "append")

	one, _ := h.AllocateInt(1)
	empty := h.EmptyHandle()
	firstList, err := h.AllocatePair(one, empty)
	require.NoError(t, err)
	one.Release()
	empty.Release()

	two, _ := h.AllocateInt(2)
	result, err := fn(h, []heap.Handle{firstList, two})
	require.NoError(t, err)
	require.Equal(t, "(1 . 2)", h.Print(result))
	firstList.Release()
	two.Release()
	result.Release()
}

func TestDivisionByZeroIsArithmeticError(t *testing.T) {
	h := newHeap(t)
	fn := findFn(t, "/")

	a, _ := h.AllocateInt(1)
	z, _ := h.AllocateInt(0)
	_, err := fn(h, []heap.Handle{a, z})
	require.Error(t, err)
	a.Release()
	z.Release()
}

func TestAppendProducesExpectedElementOrder(t *testing.T) {
	h := newHeap(t)
	fn := findFn(t, "append")

	mkList := func(vals ...int64) heap.Handle {
		items := make([]heap.Handle, len(vals))
		for i, v := range vals {
			items[i], _ = h.AllocateInt(v)
		}
		tail := h.EmptyHandle()
		for i := len(items) - 1; i >= 0; i-- {
			pair, err := h.AllocatePair(items[i], tail)
			require.NoError(t, err)
			tail.Release()
			tail = pair
		}
		for _, it := range items {
			it.Release()
		}
		return tail
	}

	a := mkList(1, 2)
	b := mkList(3, 4)
	result, err := fn(h, []heap.Handle{a, b})
	require.NoError(t, err)

	var got []string
	cur := result
	for cur.Kind() == heap.KindPair {
		car, err := h.Car(cur)
		require.NoError(t, err)
		got = append(got, h.Print(car))
		car.Release()
		next, err := h.Cdr(cur)
		require.NoError(t, err)
		if !cur.SameRecord(result) {
			cur.Release()
		}
		cur = next
	}
	cur.Release()

	if diff := cmp.Diff([]string{"1", "2", "3", "4"}, got); diff != "" {
		t.Errorf("append element order mismatch (-want +got):\n%s", diff)
	}

	a.Release()
	b.Release()
	result.Release()
}

func TestLastOnNonPairErrors(t *testing.T) {
	h := newHeap(t)
	fn := findFn(t, "last")

	a, _ := h.AllocateInt(1)
	_, err := fn(h, []heap.Handle{a})
	require.Error(t, err)
	a.Release()
}
