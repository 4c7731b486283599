package heap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gitrdm/schemecore/pkg/ast"
	"github.com/gitrdm/schemecore/pkg/schemeerr"
)

func typeErr(want string, got Kind) error {
	return schemeerr.New(schemeerr.Type, "expected %s, got %s", want, got)
}

func (h *Heap) kindOfRef(r ref) Kind {
	if !r.valid() {
		return KindUndefined
	}
	return h.values[r.idx].kind
}

// Car returns the car of a pair as a fresh rooted handle.
func (h *Heap) Car(v Handle) (Handle, error) {
	if v.Kind() != KindPair {
		return Handle{}, typeErr("pair", v.Kind())
	}
	return h.promote(h.values[v.r.idx].car), nil
}

// Cdr returns the cdr of a pair as a fresh rooted handle.
func (h *Heap) Cdr(v Handle) (Handle, error) {
	if v.Kind() != KindPair {
		return Handle{}, typeErr("pair", v.Kind())
	}
	return h.promote(h.values[v.r.idx].cdr), nil
}

// SetCar replaces a pair's car in place. It does not change the root
// count of either the pair or v.
func (h *Heap) SetCar(pair, v Handle) error {
	if pair.Kind() != KindPair {
		return typeErr("pair", pair.Kind())
	}
	h.values[pair.r.idx].car = v.r
	return nil
}

// SetCdr replaces a pair's cdr in place.
func (h *Heap) SetCdr(pair, v Handle) error {
	if pair.Kind() != KindPair {
		return typeErr("pair", pair.Kind())
	}
	h.values[pair.r.idx].cdr = v.r
	return nil
}

// IntValue returns the payload of an integer value.
func (h *Heap) IntValue(v Handle) (int64, error) {
	if v.Kind() != KindInt {
		return 0, typeErr("integer", v.Kind())
	}
	return h.values[v.r.idx].ival, nil
}

// FloatValue returns the payload of a float value.
func (h *Heap) FloatValue(v Handle) (float64, error) {
	if v.Kind() != KindFloat {
		return 0, typeErr("float", v.Kind())
	}
	return h.values[v.r.idx].fval, nil
}

// BoolValue returns the payload of a boolean value.
func (h *Heap) BoolValue(v Handle) (bool, error) {
	if v.Kind() != KindBool {
		return false, typeErr("boolean", v.Kind())
	}
	return h.values[v.r.idx].bval, nil
}

// StringValue returns the payload of a string value.
func (h *Heap) StringValue(v Handle) (string, error) {
	if v.Kind() != KindString {
		return "", typeErr("string", v.Kind())
	}
	return h.values[v.r.idx].sval, nil
}

// SymbolText returns the textual name of a symbol value.
func (h *Heap) SymbolText(v Handle) (string, error) {
	if v.Kind() != KindSymbol {
		return "", typeErr("symbol", v.Kind())
	}
	return h.values[v.r.idx].sval, nil
}

// ClosureInfo exposes a closure's captured environment, parameter
// shape, and unevaluated body to the evaluator.
func (h *Heap) ClosureInfo(v Handle) (capturedEnv Handle, params []string, variadic bool, required int, body *ast.Expr, err error) {
	if v.Kind() != KindClosure {
		return Handle{}, nil, false, 0, nil, typeErr("procedure", v.Kind())
	}
	rec := &h.values[v.r.idx]
	return h.promote(rec.capturedEnv), rec.params, rec.variadic, rec.required, rec.body, nil
}

// SubroutineInfo exposes a subroutine's host function and declared arity.
func (h *Heap) SubroutineInfo(v Handle) (fn BuiltinFunc, variadic bool, required int, name string, err error) {
	if v.Kind() != KindSubroutine {
		return nil, false, 0, "", typeErr("procedure", v.Kind())
	}
	rec := &h.values[v.r.idx]
	return rec.subFn, rec.subVariadic, rec.subRequired, rec.subName, nil
}

// IsProcedure reports whether v is a closure or a subroutine.
func (h *Heap) IsProcedure(v Handle) bool {
	return v.Kind() == KindClosure || v.Kind() == KindSubroutine
}

// IsFalsy reports whether v counts as false in a conditional context:
// only the boolean #f is falsy, every other value is truthy.
func (h *Heap) IsFalsy(v Handle) bool {
	return v.Kind() == KindBool && !h.values[v.r.idx].bval
}

// IsList runs Floyd's cycle-safe two-pointer walk along the cdr chain.
func (h *Heap) IsList(v Handle) bool {
	slow, fast := v.r, v.r
	for {
		if h.kindOfRef(fast) == KindEmpty {
			return true
		}
		if h.kindOfRef(fast) != KindPair {
			return false
		}
		fast = h.values[fast.idx].cdr
		if h.kindOfRef(fast) == KindEmpty {
			return true
		}
		if h.kindOfRef(fast) != KindPair {
			return false
		}
		fast = h.values[fast.idx].cdr
		slow = h.values[slow.idx].cdr
		if fast == slow {
			return false
		}
	}
}

// Length counts a proper list's elements, failing on improper or cyclic
// input.
func (h *Heap) Length(v Handle) (int, error) {
	if !h.IsList(v) {
		return 0, schemeerr.New(schemeerr.Type, "length: not a proper list")
	}
	n := 0
	cur := v.r
	for h.kindOfRef(cur) == KindPair {
		n++
		cur = h.values[cur.idx].cdr
	}
	return n, nil
}

// Eq compares a and b the way eq? does: numeric/boolean/symbol/empty
// equality by value within the same subkind, everything else by heap
// identity.
func (h *Heap) Eq(a, b Handle) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	ra, rb := &h.values[a.r.idx], &h.values[b.r.idx]
	switch ra.kind {
	case KindInt:
		return ra.ival == rb.ival
	case KindFloat:
		return ra.fval == rb.fval
	case KindBool:
		return ra.bval == rb.bval
	case KindSymbol:
		return ra.sval == rb.sval
	case KindEmpty:
		return true
	default:
		return a.SameRecord(b)
	}
}

// Equal compares a and b the way equal? does: Eq for atoms, extended to
// strings by value and recursing structurally through pairs. Behavior on
// cyclic input is undefined.
func (h *Heap) Equal(a, b Handle) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	if a.Kind() == KindString {
		ra, rb := &h.values[a.r.idx], &h.values[b.r.idx]
		return ra.sval == rb.sval
	}
	if a.Kind() != KindPair {
		return h.Eq(a, b)
	}
	ra, rb := &h.values[a.r.idx], &h.values[b.r.idx]
	return h.equalRef(ra.car, rb.car) && h.equalRef(ra.cdr, rb.cdr)
}

func (h *Heap) equalRef(a, b ref) bool {
	return h.Equal(Handle{h: h, r: a}, Handle{h: h, r: b})
}

// Print renders v as a human-readable textual form, tagging shared or
// cyclic pair substructure with #N=/#N# labels so the result is always
// finite even when the underlying structure is not.
func (h *Heap) Print(v Handle) string {
	shared := h.sharedPairs(v.r)
	tagged := map[ref]int{}
	nextID := 0

	var printAtom func(r ref) string
	var printPair func(r ref) string

	printAtom = func(r ref) string {
		if h.kindOfRef(r) == KindPair {
			return printPair(r)
		}
		rec := &h.values[r.idx]
		switch rec.kind {
		case KindInt:
			return strconv.FormatInt(rec.ival, 10)
		case KindFloat:
			return formatSchemeFloat(rec.fval)
		case KindBool:
			if rec.bval {
				return "#t"
			}
			return "#f"
		case KindString:
			return strconv.Quote(rec.sval)
		case KindSymbol:
			return rec.sval
		case KindEmpty:
			return "()"
		case KindUndefined:
			return "#<undefined>"
		case KindClosure:
			return "#<closure>"
		case KindSubroutine:
			return fmt.Sprintf("#<procedure:%s>", rec.subName)
		default:
			return "#<unknown>"
		}
	}

	printPair = func(r ref) string {
		if shared[r] {
			if id, ok := tagged[r]; ok {
				return fmt.Sprintf("#%d#", id)
			}
			id := nextID
			tagged[r] = id
			nextID++
			return fmt.Sprintf("#%d=%s", id, h.buildListBody(r, shared, tagged, &nextID, printAtom))
		}
		return h.buildListBody(r, shared, tagged, &nextID, printAtom)
	}

	return printAtom(v.r)
}

// buildListBody prints "(a b c)" or "(a b . c)" starting at pair start,
// stopping to emit a dotted reference whenever the chain reaches a pair
// that is independently tagged — this is what keeps a cyclic cdr chain
// (e.g. (set-cdr! p p)) from looping forever.
func (h *Heap) buildListBody(start ref, shared map[ref]bool, tagged map[ref]int, nextID *int, printAtom func(ref) string) string {
	var sb strings.Builder
	sb.WriteByte('(')
	cur := start
	first := true
	for {
		if !first {
			if shared[cur] {
				sb.WriteString(" . ")
				sb.WriteString(printAtom(cur))
				sb.WriteByte(')')
				return sb.String()
			}
			sb.WriteByte(' ')
		}
		first = false
		rec := &h.values[cur.idx]
		sb.WriteString(printAtom(rec.car))
		switch h.kindOfRef(rec.cdr) {
		case KindEmpty:
			sb.WriteByte(')')
			return sb.String()
		case KindPair:
			cur = rec.cdr
		default:
			sb.WriteString(" . ")
			sb.WriteString(printAtom(rec.cdr))
			sb.WriteByte(')')
			return sb.String()
		}
	}
}

// sharedPairs walks the reachable pair graph from root and reports which
// pairs are reached more than once — either through a genuine cycle or
// through ordinary DAG-style sharing (e.g. the same sublist consed into
// two positions). Traversal uses an explicit stack with a three-state
// marker (unvisited/on-path/done) rather than host recursion, the same
// discipline the collector uses.
func (h *Heap) sharedPairs(root ref) map[ref]bool {
	const (
		unvisited int8 = iota
		onPath
		done
	)
	state := map[ref]int8{}
	shared := map[ref]bool{}

	type frame struct {
		r    ref
		step int
	}
	var stack []frame

	visit := func(r ref) {
		if h.kindOfRef(r) != KindPair {
			return
		}
		switch state[r] {
		case onPath, done:
			shared[r] = true
		default:
			state[r] = onPath
			stack = append(stack, frame{r: r})
		}
	}

	visit(root)
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		rec := &h.values[f.r.idx]
		switch f.step {
		case 0:
			f.step++
			visit(rec.car)
		case 1:
			f.step++
			visit(rec.cdr)
		default:
			state[f.r] = done
			stack = stack[:len(stack)-1]
		}
	}
	return shared
}

func formatSchemeFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += "."
	}
	return s
}
