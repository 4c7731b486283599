package builtins

import (
	"github.com/gitrdm/schemecore/pkg/heap"
	"github.com/gitrdm/schemecore/pkg/schemeerr"
)

// number holds one argument's numeric payload: integers and floats are
// distinct sub-variants, with no promotion at storage. An operation is
// carried out in floats when any operand is a float; the one exception
// is /, which also returns a float when its integer operands do not
// divide evenly, and always for the one-argument reciprocal.
type number struct {
	isFloat bool
	i       int64
	f       float64
}

func (n number) asFloat() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func toNumber(h *heap.Heap, v heap.Handle) (number, error) {
	switch v.Kind() {
	case heap.KindInt:
		i, _ := h.IntValue(v)
		return number{i: i}, nil
	case heap.KindFloat:
		f, _ := h.FloatValue(v)
		return number{isFloat: true, f: f}, nil
	default:
		return number{}, schemeerr.New(schemeerr.Type, "expected number, got %s", v.Kind())
	}
}

func toNumbers(h *heap.Heap, args []heap.Handle) ([]number, error) {
	out := make([]number, len(args))
	for i, a := range args {
		n, err := toNumber(h, a)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func builtinAdd(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	nums, err := toNumbers(h, args)
	if err != nil {
		return heap.Handle{}, err
	}
	anyFloat := false
	var fsum float64
	var isum int64
	for _, n := range nums {
		if n.isFloat {
			anyFloat = true
		}
	}
	if anyFloat {
		for _, n := range nums {
			fsum += n.asFloat()
		}
		return h.AllocateFloat(fsum)
	}
	for _, n := range nums {
		isum += n.i
	}
	return h.AllocateInt(isum)
}

func builtinSub(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	nums, err := toNumbers(h, args)
	if err != nil {
		return heap.Handle{}, err
	}
	anyFloat := false
	for _, n := range nums {
		if n.isFloat {
			anyFloat = true
		}
	}
	if len(nums) == 1 {
		if anyFloat {
			return h.AllocateFloat(-nums[0].asFloat())
		}
		return h.AllocateInt(-nums[0].i)
	}
	if anyFloat {
		acc := nums[0].asFloat()
		for _, n := range nums[1:] {
			acc -= n.asFloat()
		}
		return h.AllocateFloat(acc)
	}
	acc := nums[0].i
	for _, n := range nums[1:] {
		acc -= n.i
	}
	return h.AllocateInt(acc)
}

func builtinMul(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	nums, err := toNumbers(h, args)
	if err != nil {
		return heap.Handle{}, err
	}
	anyFloat := false
	for _, n := range nums {
		if n.isFloat {
			anyFloat = true
		}
	}
	if anyFloat {
		acc := 1.0
		for _, n := range nums {
			acc *= n.asFloat()
		}
		return h.AllocateFloat(acc)
	}
	acc := int64(1)
	for _, n := range nums {
		acc *= n.i
	}
	return h.AllocateInt(acc)
}

func builtinDiv(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	nums, err := toNumbers(h, args)
	if err != nil {
		return heap.Handle{}, err
	}
	anyFloat := false
	for _, n := range nums {
		if n.isFloat {
			anyFloat = true
		}
	}
	if len(nums) == 1 {
		if !anyFloat && nums[0].i == 0 {
			return heap.Handle{}, schemeerr.New(schemeerr.Arithmetic, "/: division by zero")
		}
		return h.AllocateFloat(1.0 / nums[0].asFloat())
	}
	if !anyFloat {
		acc := nums[0].i
		for _, n := range nums[1:] {
			if n.i == 0 {
				return heap.Handle{}, schemeerr.New(schemeerr.Arithmetic, "/: division by zero")
			}
			if acc%n.i == 0 {
				acc /= n.i
				continue
			}
			anyFloat = true
			break
		}
		if !anyFloat {
			return h.AllocateInt(acc)
		}
	}
	acc := nums[0].asFloat()
	for _, n := range nums[1:] {
		if n.asFloat() == 0 {
			return heap.Handle{}, schemeerr.New(schemeerr.Arithmetic, "/: division by zero")
		}
		acc /= n.asFloat()
	}
	return h.AllocateFloat(acc)
}

func compareChain(h *heap.Heap, args []heap.Handle, ok func(a, b float64) bool) (heap.Handle, error) {
	nums, err := toNumbers(h, args)
	if err != nil {
		return heap.Handle{}, err
	}
	result := true
	for i := 1; i < len(nums); i++ {
		if !ok(nums[i-1].asFloat(), nums[i].asFloat()) {
			result = false
			break
		}
	}
	return h.AllocateBool(result)
}

func builtinNumEq(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return compareChain(h, args, func(a, b float64) bool { return a == b })
}

func builtinLt(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return compareChain(h, args, func(a, b float64) bool { return a < b })
}

func builtinLe(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return compareChain(h, args, func(a, b float64) bool { return a <= b })
}

func builtinGt(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return compareChain(h, args, func(a, b float64) bool { return a > b })
}

func builtinGe(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return compareChain(h, args, func(a, b float64) bool { return a >= b })
}

func builtinNumberP(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	k := args[0].Kind()
	return h.AllocateBool(k == heap.KindInt || k == heap.KindFloat)
}
