package builtins

import "github.com/gitrdm/schemecore/pkg/heap"

func builtinBooleanP(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.AllocateBool(args[0].Kind() == heap.KindBool)
}

func builtinNot(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.AllocateBool(h.IsFalsy(args[0]))
}

func builtinNullP(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.AllocateBool(args[0].Kind() == heap.KindEmpty)
}

func builtinPairP(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.AllocateBool(args[0].Kind() == heap.KindPair)
}

func builtinListP(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.AllocateBool(h.IsList(args[0]))
}

func builtinSymbolP(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.AllocateBool(args[0].Kind() == heap.KindSymbol)
}

func builtinProcedureP(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.AllocateBool(h.IsProcedure(args[0]))
}

func builtinStringP(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.AllocateBool(args[0].Kind() == heap.KindString)
}

func builtinEq(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.AllocateBool(h.Eq(args[0], args[1]))
}

func builtinNeq(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.AllocateBool(!h.Eq(args[0], args[1]))
}

func builtinEqual(h *heap.Heap, args []heap.Handle) (heap.Handle, error) {
	return h.AllocateBool(h.Equal(args[0], args[1]))
}
