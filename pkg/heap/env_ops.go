package heap

// EnvLocalGet looks up name in exactly the frame env refers to, without
// consulting its parent. The second return is false if name is unbound
// in this frame.
func (h *Heap) EnvLocalGet(env Handle, name string) (Handle, bool) {
	rec := &h.envs[env.r.idx]
	r, ok := rec.vars[name]
	if !ok {
		return Handle{}, false
	}
	return h.promote(r), true
}

// EnvLocalSet binds or rebinds name to v in exactly the frame env refers
// to. Storing v.r does not change v's root count; the environment frame
// now merely shares ownership the way a pair's car does.
func (h *Heap) EnvLocalSet(env Handle, name string, v Handle) {
	rec := &h.envs[env.r.idx]
	rec.vars[name] = v.r
}

// EnvParent returns env's parent frame. The second return is false for a
// root scope (the global environment).
func (h *Heap) EnvParent(env Handle) (Handle, bool) {
	rec := &h.envs[env.r.idx]
	if !rec.parent.valid() {
		return Handle{}, false
	}
	return h.promote(rec.parent), true
}

// EnvLocalNames returns the names bound in exactly env's own frame, in no
// particular order. Used by cmd/scheme's shell-completion predictor over
// the global scope.
func (h *Heap) EnvLocalNames(env Handle) []string {
	rec := &h.envs[env.r.idx]
	names := make([]string, 0, len(rec.vars))
	for name := range rec.vars {
		names = append(names, name)
	}
	return names
}
