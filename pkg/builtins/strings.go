package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gitrdm/schemecore/pkg/heap"
)

func builtinStringAppend(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	var b strings.Builder
	for _, a := range args {
		s, err := h.StringValue(a)
		if err != nil {
			return heap.Handle{}, err
		}
		b.WriteString(s)
	}
	return h.AllocateString(b.String())
}

func builtinSymbolToString(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	s, err := h.SymbolText(args[0])
	if err != nil {
		return heap.Handle{}, err
	}
	return h.AllocateString(s)
}

func builtinStringToSymbol(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	s, err := h.StringValue(args[0])
	if err != nil {
		return heap.Handle{}, err
	}
	return h.AllocateSymbol(s)
}

// builtinStringToNumber returns #f on a parse failure rather than
// raising an error, matching the source's forgiving convention.
func builtinStringToNumber(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	s, err := h.StringValue(args[0])
	if err != nil {
		return heap.Handle{}, err
	}
	if iv, perr := strconv.ParseInt(s, 10, 64); perr == nil {
		return h.AllocateInt(iv)
	}
	if fv, perr := strconv.ParseFloat(s, 64); perr == nil {
		return h.AllocateFloat(fv)
	}
	return h.AllocateBool(false)
}

func builtinNumberToString(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	switch args[0].Kind() {
	case heap.KindInt:
		iv, _ := h.IntValue(args[0])
		return h.AllocateString(strconv.FormatInt(iv, 10))
	case heap.KindFloat:
		return h.AllocateString(h.Print(args[0]))
	default:
		return heap.Handle{}, typeErrNotNumber("number->string")
	}
}

func builtinDisplay(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	if args[0].Kind() == heap.KindString {
		s, _ := h.StringValue(args[0])
		fmt.Print(s)
	} else {
		fmt.Print(h.Print(args[0]))
	}
	return h.AllocateUndefined()
}
