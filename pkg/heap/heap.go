// Package heap implements the managed heap behind every Scheme value and
// environment: a pair of capacity-bounded slabs (one for values, one for
// environments), reference-counted roots at the boundary with the rest of
// the process, and a mark-sweep collector that traces the records
// reachable from those roots. See DESIGN.md for how the split slab
// layout and allocation idiom here were derived.
package heap

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gitrdm/schemecore/pkg/ast"
	"github.com/gitrdm/schemecore/pkg/schemeerr"

	hclog "github.com/hashicorp/go-hclog"
)

// color is the three-color mark used by the collector.
type color uint8

const (
	white color = iota
	gray
	black
)

const (
	defaultValueCapacity = 1 << 16
	defaultEnvCapacity   = 1 << 14
	defaultSymbolCache   = 512
)

// BuiltinFunc is the host-function signature a Subroutine value wraps.
// It receives the heap so it can allocate results and read argument
// payloads.
type BuiltinFunc func(h *Heap, args []Handle) (Handle, error)

// valueRecord is one slot of the value slab.
type valueRecord struct {
	live    bool
	pinned  bool // never swept, regardless of root count (the empty sentinel)
	mutable bool
	kind    Kind
	mark    color
	root    int32

	ival int64
	fval float64
	bval bool
	sval string // String or Symbol text

	car, cdr ref // Pair

	params      []string  // Closure
	variadic    bool      // Closure
	required    int       // Closure
	body        *ast.Expr // Closure
	capturedEnv ref        // Closure

	subName     string      // Subroutine
	subFn       BuiltinFunc // Subroutine
	subVariadic bool        // Subroutine
	subRequired int         // Subroutine
}

// envRecord is one slot of the environment slab.
type envRecord struct {
	live   bool
	mark   color
	root   int32
	vars   map[string]ref
	parent ref
}

// Options configures a new Heap. Zero values fall back to sane defaults.
type Options struct {
	ValueCapacity   int
	EnvCapacity     int
	SymbolCacheSize int
	Logger          hclog.Logger
}

// Heap owns every value and environment record in a running interpreter.
type Heap struct {
	logger hclog.Logger

	values    []valueRecord
	valueFree []int32
	valueCap  int

	envs    []envRecord
	envFree []int32
	envCap  int

	symCache *lru.Cache[string, ref]

	collections int64
}

// New allocates a Heap with the given capacities and creates the single
// canonical empty-list sentinel at slot 0 of the value slab, pinned so it
// is never reclaimed.
func New(opts Options) *Heap {
	if opts.ValueCapacity <= 0 {
		opts.ValueCapacity = defaultValueCapacity
	}
	if opts.EnvCapacity <= 0 {
		opts.EnvCapacity = defaultEnvCapacity
	}
	if opts.SymbolCacheSize <= 0 {
		opts.SymbolCacheSize = defaultSymbolCache
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	h := &Heap{
		logger:   logger,
		valueCap: opts.ValueCapacity,
		envCap:   opts.EnvCapacity,
	}

	cache, _ := lru.NewWithEvict[string, ref](opts.SymbolCacheSize, func(_ string, r ref) {
		// The cache no longer pins this symbol text; it can now be
		// collected like any other unreferenced value.
		h.unrootRef(r)
	})
	h.symCache = cache

	h.values = append(h.values, valueRecord{live: true, pinned: true, kind: KindEmpty, root: 1})

	return h
}

// Stats summarizes slab occupancy, mostly for tests.
type Stats struct {
	LiveValues, ValueCapacity int
	LiveEnvs, EnvCapacity     int
	Collections               int64
}

func (h *Heap) Stats() Stats {
	return Stats{
		LiveValues:    len(h.values) - len(h.valueFree),
		ValueCapacity: h.valueCap,
		LiveEnvs:      len(h.envs) - len(h.envFree),
		EnvCapacity:   h.envCap,
		Collections:   h.collections,
	}
}

func (h *Heap) logTrace(msg string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Trace(msg, args...)
	}
}

// allocValueSlot returns a free value-slab index, collecting and growing
// as needed.
func (h *Heap) allocValueSlot() (int32, error) {
	if n := len(h.valueFree); n > 0 {
		idx := h.valueFree[n-1]
		h.valueFree = h.valueFree[:n-1]
		return idx, nil
	}
	if len(h.values) >= h.valueCap {
		h.Collect()
		if n := len(h.valueFree); n > 0 {
			idx := h.valueFree[n-1]
			h.valueFree = h.valueFree[:n-1]
			return idx, nil
		}
		return 0, schemeerr.New(schemeerr.Fatal, "value heap exhausted after collection (capacity %d)", h.valueCap)
	}
	h.values = append(h.values, valueRecord{})
	return int32(len(h.values) - 1), nil
}

func (h *Heap) allocEnvSlot() (int32, error) {
	if n := len(h.envFree); n > 0 {
		idx := h.envFree[n-1]
		h.envFree = h.envFree[:n-1]
		return idx, nil
	}
	if len(h.envs) >= h.envCap {
		h.Collect()
		if n := len(h.envFree); n > 0 {
			idx := h.envFree[n-1]
			h.envFree = h.envFree[:n-1]
			return idx, nil
		}
		return 0, schemeerr.New(schemeerr.Fatal, "environment heap exhausted after collection (capacity %d)", h.envCap)
	}
	h.envs = append(h.envs, envRecord{})
	return int32(len(h.envs) - 1), nil
}

func (h *Heap) rootRef(r ref) {
	if r.sp == valueSpace {
		h.values[r.idx].root++
		return
	}
	h.envs[r.idx].root++
}

func (h *Heap) unrootRef(r ref) {
	if r.sp == valueSpace {
		rec := &h.values[r.idx]
		if rec.root == 0 {
			panic(fmt.Sprintf("heap: release of already-unrooted value slot %d (double release)", r.idx))
		}
		rec.root--
		return
	}
	rec := &h.envs[r.idx]
	if rec.root == 0 {
		panic(fmt.Sprintf("heap: release of already-unrooted environment slot %d (double release)", r.idx))
	}
	rec.root--
}

// promote turns a traced, unrooted ref into a caller-owned Handle,
// rooting it in the process. This is the only path by which a reference
// stored inside the heap (a pair's car, an environment's binding) becomes
// visible outside it.
func (h *Heap) promote(r ref) Handle {
	h.rootRef(r)
	return Handle{h: h, r: r}
}

// EmptyHandle returns a rooted handle to the shared empty-list sentinel.
func (h *Heap) EmptyHandle() Handle {
	return h.promote(ref{valueSpace, 0})
}

// AllocateInt stores a fresh integer value and returns a rooted handle.
func (h *Heap) AllocateInt(v int64) (Handle, error) {
	idx, err := h.allocValueSlot()
	if err != nil {
		return Handle{}, err
	}
	h.values[idx] = valueRecord{live: true, kind: KindInt, ival: v, root: 1}
	return Handle{h: h, r: ref{valueSpace, idx}}, nil
}

// AllocateFloat stores a fresh float value.
func (h *Heap) AllocateFloat(v float64) (Handle, error) {
	idx, err := h.allocValueSlot()
	if err != nil {
		return Handle{}, err
	}
	h.values[idx] = valueRecord{live: true, kind: KindFloat, fval: v, root: 1}
	return Handle{h: h, r: ref{valueSpace, idx}}, nil
}

// AllocateBool stores a fresh boolean value.
func (h *Heap) AllocateBool(v bool) (Handle, error) {
	idx, err := h.allocValueSlot()
	if err != nil {
		return Handle{}, err
	}
	h.values[idx] = valueRecord{live: true, kind: KindBool, bval: v, root: 1}
	return Handle{h: h, r: ref{valueSpace, idx}}, nil
}

// AllocateString stores a fresh, mutable-by-identity string value. Two
// calls with the same text produce two distinct records: equal? compares
// strings by value, but eq? still compares them by identity.
func (h *Heap) AllocateString(v string) (Handle, error) {
	idx, err := h.allocValueSlot()
	if err != nil {
		return Handle{}, err
	}
	h.values[idx] = valueRecord{live: true, kind: KindString, sval: v, root: 1}
	return Handle{h: h, r: ref{valueSpace, idx}}, nil
}

// AllocateUndefined stores the result of a side-effecting form.
func (h *Heap) AllocateUndefined() (Handle, error) {
	idx, err := h.allocValueSlot()
	if err != nil {
		return Handle{}, err
	}
	h.values[idx] = valueRecord{live: true, kind: KindUndefined, root: 1}
	return Handle{h: h, r: ref{valueSpace, idx}}, nil
}

// AllocateSymbol interns symbol text through a bounded LRU cache
// (golang-lru) so that repeated occurrences of the same identifier in a
// large program do not each cost a fresh heap slot. The cache pins its
// entry with an extra root that is released by its eviction callback, so
// an evicted-but-still-referenced symbol is unaffected: its callers' own
// roots keep it alive.
func (h *Heap) AllocateSymbol(text string) (Handle, error) {
	if r, ok := h.symCache.Get(text); ok {
		return h.promote(r), nil
	}
	idx, err := h.allocValueSlot()
	if err != nil {
		return Handle{}, err
	}
	h.values[idx] = valueRecord{live: true, kind: KindSymbol, sval: text, root: 1}
	r := ref{valueSpace, idx}
	h.rootRef(r) // cache's pin, released on eviction
	h.symCache.Add(text, r)
	return Handle{h: h, r: r}, nil
}

// AllocatePair conses car and cdr. Storing their refs does not change
// car's or cdr's root count; the caller still owns and must release the
// handles it passed in.
func (h *Heap) AllocatePair(car, cdr Handle) (Handle, error) {
	idx, err := h.allocValueSlot()
	if err != nil {
		return Handle{}, err
	}
	h.values[idx] = valueRecord{live: true, mutable: true, kind: KindPair, car: car.r, cdr: cdr.r, root: 1}
	return Handle{h: h, r: ref{valueSpace, idx}}, nil
}

// AllocateClosure captures env by reference (traced, not rooted): a
// closure does not hold a root on the environment it was defined in.
func (h *Heap) AllocateClosure(capturedEnv Handle, params []string, variadic bool, required int, body *ast.Expr) (Handle, error) {
	if !capturedEnv.isEnv() {
		panic("heap: AllocateClosure requires an environment handle")
	}
	idx, err := h.allocValueSlot()
	if err != nil {
		return Handle{}, err
	}
	h.values[idx] = valueRecord{
		live: true, kind: KindClosure,
		params: params, variadic: variadic, required: required, body: body,
		capturedEnv: capturedEnv.r, root: 1,
	}
	return Handle{h: h, r: ref{valueSpace, idx}}, nil
}

// AllocateSubroutine wraps a host function as a procedure value.
func (h *Heap) AllocateSubroutine(name string, fn BuiltinFunc, variadic bool, required int) (Handle, error) {
	idx, err := h.allocValueSlot()
	if err != nil {
		return Handle{}, err
	}
	h.values[idx] = valueRecord{
		live: true, kind: KindSubroutine,
		subName: name, subFn: fn, subVariadic: variadic, subRequired: required, root: 1,
	}
	return Handle{h: h, r: ref{valueSpace, idx}}, nil
}

// NewEnv allocates an environment record. When hasParent is false the
// record is a root scope (the global environment); otherwise parent must
// be a handle previously returned by NewEnv.
func (h *Heap) NewEnv(parent Handle, hasParent bool) (Handle, error) {
	idx, err := h.allocEnvSlot()
	if err != nil {
		return Handle{}, err
	}
	p := noRef
	if hasParent {
		if !parent.isEnv() {
			panic("heap: NewEnv parent must be an environment handle")
		}
		p = parent.r
	}
	h.envs[idx] = envRecord{live: true, vars: make(map[string]ref), parent: p, root: 1}
	return Handle{h: h, r: ref{envSpace, idx}}, nil
}
