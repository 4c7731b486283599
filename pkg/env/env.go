// Package env implements lexical scoping on top of the managed heap's
// environment slab. An Environment is a thin, stateless view over a
// heap.Handle: all the actual storage (bindings, parent chain) lives in
// heap-managed records so closures can capture scopes by reference and
// the collector can trace them like any other value.
package env

import (
	"github.com/gitrdm/schemecore/pkg/heap"
	"github.com/gitrdm/schemecore/pkg/schemeerr"
)

// BuiltinSpec names one entry of the global environment's initial
// bindings: a subroutine and the arity it is registered under.
type BuiltinSpec struct {
	Name     string
	Fn       heap.BuiltinFunc
	Variadic bool
	Required int
}

// Environment wraps a heap.Handle to an environment record, giving the
// evaluator a typed API instead of raw heap calls.
type Environment struct {
	h      *heap.Heap
	Handle heap.Handle
}

// NewGlobal builds the root scope and installs every builtin in specs.
func NewGlobal(h *heap.Heap, specs []BuiltinSpec) (*Environment, error) {
	handle, err := h.NewEnv(heap.Handle{}, false)
	if err != nil {
		return nil, err
	}
	e := &Environment{h: h, Handle: handle}
	for _, spec := range specs {
		sub, err := h.AllocateSubroutine(spec.Name, spec.Fn, spec.Variadic, spec.Required)
		if err != nil {
			return nil, err
		}
		h.EnvLocalSet(handle, spec.Name, sub)
		sub.Release()
	}
	return e, nil
}

// Wrap adapts a raw environment handle (as stored in a closure's captured
// environment) into an *Environment.
func Wrap(h *heap.Heap, handle heap.Handle) *Environment {
	return &Environment{h: h, Handle: handle}
}

// HeapFor returns the heap e is backed by, for callers that only hold an
// *Environment but need to allocate values to bind into it.
func (e *Environment) HeapFor() *heap.Heap { return e.h }

// NewChild allocates a new frame whose parent is parent: every non-global
// scope has exactly one parent.
func NewChild(h *heap.Heap, parent *Environment) (*Environment, error) {
	handle, err := h.NewEnv(parent.Handle, true)
	if err != nil {
		return nil, err
	}
	return &Environment{h: h, Handle: handle}, nil
}

// Lookup walks the parent chain starting at e, returning the first
// binding found for name. This precedes special-form dispatch in the
// evaluator: a user binding named e.g. "if" shadows the keyword, since
// names are resolved before any keyword match is attempted.
func (e *Environment) Lookup(name string) (heap.Handle, bool) {
	cur := e.Handle
	owned := false
	for {
		if v, ok := e.h.EnvLocalGet(cur, name); ok {
			if owned {
				cur.Release()
			}
			return v, true
		}
		parent, ok := e.h.EnvParent(cur)
		if owned {
			cur.Release()
		}
		if !ok {
			return heap.Handle{}, false
		}
		cur = parent
		owned = true
	}
}

// DefiningScope returns the frame in e's parent chain that binds name,
// for set!'s "rebind in the scope that defines the name, not a new one"
// contract. When the defining frame is not e itself, the returned
// Environment holds its own root on that frame, which the caller releases.
func (e *Environment) DefiningScope(name string) (*Environment, bool) {
	cur := e.Handle
	owned := false
	for {
		if v, ok := e.h.EnvLocalGet(cur, name); ok {
			v.Release()
			return &Environment{h: e.h, Handle: cur}, true
		}
		parent, ok := e.h.EnvParent(cur)
		if owned {
			cur.Release()
		}
		if !ok {
			return nil, false
		}
		cur = parent
		owned = true
	}
}

// Names returns the names bound in e's own frame, for callers (shell
// completion) that want the global scope's vocabulary without walking
// heap internals directly.
func (e *Environment) Names() []string {
	return e.h.EnvLocalNames(e.Handle)
}

// Insert binds name to v in e's own frame, shadowing any outer binding
// of the same name (used by define and parameter binding).
func (e *Environment) Insert(name string, v heap.Handle) {
	e.h.EnvLocalSet(e.Handle, name, v)
}

// Set rebinds name in the frame that defines it, per set!'s semantics.
// It fails with an Unbound error if no enclosing frame defines name.
func (e *Environment) Set(name string, v heap.Handle) error {
	scope, ok := e.DefiningScope(name)
	if !ok {
		return schemeerr.New(schemeerr.Unbound, "set!: unbound variable %q", name)
	}
	scope.Insert(name, v)
	if !scope.Handle.SameRecord(e.Handle) {
		scope.Handle.Release()
	}
	return nil
}
