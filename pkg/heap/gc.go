package heap

import (
	"fmt"

	set "github.com/hashicorp/go-set/v3"
)

// Collect runs a full stop-the-world mark-sweep over both slabs. The
// three-color scheme is implemented with an explicit work-list rather
// than host recursion, so the trace itself cannot overflow the Go stack
// on a long cons chain: a record is colored black the moment it is
// discovered (pushed but not yet scanned), and popped from the stack
// when its own outgoing references have been discovered in turn. The
// go-set Set tracks which refs have already been pushed, so a record
// reachable by many paths is traced exactly once.
func (h *Heap) Collect() {
	h.collections++

	seen := set.New[ref](64)
	stack := make([]ref, 0, 64)

	seed := func(r ref, rooted bool) {
		if rooted {
			seen.Insert(r)
			stack = append(stack, r)
		}
	}

	for i := range h.values {
		rec := &h.values[i]
		if !rec.live {
			continue
		}
		if rec.pinned || rec.root > 0 {
			rec.mark = black
			seed(ref{valueSpace, int32(i)}, true)
		} else {
			rec.mark = white
		}
	}
	for i := range h.envs {
		rec := &h.envs[i]
		if !rec.live {
			continue
		}
		if rec.root > 0 {
			rec.mark = black
			seed(ref{envSpace, int32(i)}, true)
		} else {
			rec.mark = white
		}
	}

	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, out := range h.outgoing(r) {
			if !out.valid() {
				continue
			}
			if seen.Insert(out) {
				h.markBlack(out)
				stack = append(stack, out)
			}
		}
	}

	freedValues, freedEnvs := h.sweep()
	h.logTrace("gc complete", "freed_values", freedValues, "freed_envs", freedEnvs,
		"live_values", len(h.values)-len(h.valueFree), "live_envs", len(h.envs)-len(h.envFree))
}

// outgoing lists the refs a record points to: a pair's car/cdr, a
// closure's captured environment, or an environment's bound values and
// parent.
func (h *Heap) outgoing(r ref) []ref {
	if r.sp == valueSpace {
		rec := &h.values[r.idx]
		switch rec.kind {
		case KindPair:
			return []ref{rec.car, rec.cdr}
		case KindClosure:
			return []ref{rec.capturedEnv}
		default:
			return nil
		}
	}
	rec := &h.envs[r.idx]
	out := make([]ref, 0, len(rec.vars)+1)
	for _, v := range rec.vars {
		out = append(out, v)
	}
	out = append(out, rec.parent)
	return out
}

// markBlack colors a traced reference black. Finding a dead slot here
// means some record held a stale reference into a freed slot — a heap
// corruption bug, not a recoverable condition.
func (h *Heap) markBlack(r ref) {
	if r.sp == valueSpace {
		rec := &h.values[r.idx]
		if !rec.live {
			panic(fmt.Sprintf("heap: dangling value reference discovered during gc trace (slot %d)", r.idx))
		}
		rec.mark = black
		return
	}
	rec := &h.envs[r.idx]
	if !rec.live {
		panic(fmt.Sprintf("heap: dangling environment reference discovered during gc trace (slot %d)", r.idx))
	}
	rec.mark = black
}

// sweep frees every non-pinned record that did not turn black during the
// trace, returning the number of value/environment slots reclaimed.
func (h *Heap) sweep() (freedValues, freedEnvs int) {
	for i := range h.values {
		rec := &h.values[i]
		if !rec.live || rec.pinned {
			continue
		}
		if rec.mark != black {
			*rec = valueRecord{}
			h.valueFree = append(h.valueFree, int32(i))
			freedValues++
		}
	}
	for i := range h.envs {
		rec := &h.envs[i]
		if !rec.live {
			continue
		}
		if rec.mark != black {
			*rec = envRecord{}
			h.envFree = append(h.envFree, int32(i))
			freedEnvs++
		}
	}
	return freedValues, freedEnvs
}
