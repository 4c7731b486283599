package heap

import "github.com/kr/pretty"

// debugRecord is the %#v-ish shape DebugDump renders a live record as;
// it exists because valueRecord itself carries unexported fields pretty
// can't see from outside the package.
type debugRecord struct {
	Slot  int32
	Kind  string
	Root  int32
	Mark  string
	Value any
}

// DebugDump renders every live value-slab record as a kr/pretty recursive
// dump, for cmd/scheme's --debug-heap flag. It never touches the
// collector's own mark state.
func (h *Heap) DebugDump() string {
	var records []debugRecord
	for i := range h.values {
		rec := &h.values[i]
		if !rec.live {
			continue
		}
		records = append(records, debugRecord{
			Slot:  int32(i),
			Kind:  rec.kind.String(),
			Root:  rec.root,
			Mark:  rec.mark.String(),
			Value: h.debugPayload(rec),
		})
	}
	return pretty.Sprint(records)
}

func (h *Heap) debugPayload(rec *valueRecord) any {
	switch rec.kind {
	case KindInt:
		return rec.ival
	case KindFloat:
		return rec.fval
	case KindBool:
		return rec.bval
	case KindString, KindSymbol:
		return rec.sval
	case KindPair:
		return [2]ref{rec.car, rec.cdr}
	case KindClosure:
		return rec.params
	case KindSubroutine:
		return rec.subName
	default:
		return nil
	}
}

func (c color) String() string {
	switch c {
	case white:
		return "white"
	case gray:
		return "gray"
	case black:
		return "black"
	default:
		return "?"
	}
}
