package builtins

import "github.com/gitrdm/schemecore/pkg/heap"

func builtinCar(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.Car(args[0])
}

func builtinCdr(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.Cdr(args[0])
}

func builtinCons(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.AllocatePair(args[0], args[1])
}

func consFromSlice(h *heap.Heap, items []heap.Handle, tail heap.Handle) (heap.Handle, error) {
	result := tail.Clone()
	for i := len(items) - 1; i >= 0; i-- {
		pair, err := h.AllocatePair(items[i], result)
		result.Release()
		if err != nil {
			return heap.Handle{}, err
		}
		result = pair
	}
	return result, nil
}

func builtinList(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	empty := h.EmptyHandle()
	defer empty.Release()
	return consFromSlice(h, args, empty)
}

func builtinLength(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	n, err := h.Length(args[0])
	if err != nil {
		return heap.Handle{}, err
	}
	return h.AllocateInt(int64(n))
}

// builtinMemq uses eq?, not equal? to compare against each list element.
func builtinMemq(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	obj, list := args[0], args[1]
	cur := list
	owned := false
	for cur.Kind() == heap.KindPair {
		head, err := h.Car(cur)
		if err != nil {
			if owned {
				cur.Release()
			}
			return heap.Handle{}, err
		}
		found := h.Eq(obj, head)
		head.Release()
		if found {
			result := cur.Clone()
			if owned {
				cur.Release()
			}
			return result, nil
		}
		next, err := h.Cdr(cur)
		if err != nil {
			if owned {
				cur.Release()
			}
			return heap.Handle{}, err
		}
		if owned {
			cur.Release()
		}
		cur = next
		owned = true
	}
	if owned {
		cur.Release()
	}
	return h.AllocateBool(false)
}

func builtinLast(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	cur := args[0]
	owned := false
	for {
		if cur.Kind() != heap.KindPair {
			return heap.Handle{}, typeErrNotPair("last")
		}
		next, err := h.Cdr(cur)
		if err != nil {
			return heap.Handle{}, err
		}
		if next.Kind() != heap.KindPair {
			next.Release()
			result, err := h.Car(cur)
			if owned {
				cur.Release()
			}
			return result, err
		}
		if owned {
			cur.Release()
		}
		cur = next
		owned = true
	}
}

// builtinAppend concatenates zero or more lists non-destructively: every
// argument but the last must be a proper list (its spine is copied),
// while the final argument is used as-is for the result's tail, so
// (append '(1) 2) yields the improper list (1 . 2).
func builtinAppend(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	if len(args) == 0 {
		return h.EmptyHandle(), nil
	}
	tail := args[len(args)-1].Clone()
	for i := len(args) - 2; i >= 0; i-- {
		var items []heap.Handle
		cur := args[i]
		owned := false
		for cur.Kind() == heap.KindPair {
			item, err := h.Car(cur)
			if err != nil {
				if owned {
					cur.Release()
				}
				tail.Release()
				return heap.Handle{}, err
			}
			items = append(items, item)
			next, err := h.Cdr(cur)
			if err != nil {
				if owned {
					cur.Release()
				}
				tail.Release()
				return heap.Handle{}, err
			}
			if owned {
				cur.Release()
			}
			cur = next
			owned = true
		}
		if cur.Kind() != heap.KindEmpty {
			if owned {
				cur.Release()
			}
			for _, it := range items {
				it.Release()
			}
			tail.Release()
			return heap.Handle{}, typeErrNotProperList("append")
		}
		if owned {
			cur.Release()
		}
		next, err := consFromSlice(h, items, tail)
		for _, it := range items {
			it.Release()
		}
		tail.Release()
		if err != nil {
			return heap.Handle{}, err
		}
		tail = next
	}
	return tail, nil
}

func builtinSetCar(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	if err := h.SetCar(args[0], args[1]); err != nil {
		return heap.Handle{}, err
	}
	return h.AllocateUndefined()
}

func builtinSetCdr(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	if err := h.SetCdr(args[0], args[1]); err != nil {
		return heap.Handle{}, err
	}
	return h.AllocateUndefined()
}
