package ir

// ResolveTypes assigns a concrete TypeID to every PHI the register
// resolver introduced (§4.F). Every other kind's type is already fixed
// at construction time (IMM carries the literal's declared width, GEP
// is always a pointer, LD/GETCHAR carry the configured cell type, and
// so on) — ADD and SUB are included here too only because their
// operands can themselves be phis still converging.
//
// PHIs are resolved by a small fixpoint, not a single recursive walk:
// a loop-carried phi's inputs can include another phi (or itself, for
// a one-block loop), so a naive depth-first resolution that caches the
// first answer it computes for a cycle member risks freezing it at a
// narrower type than its sibling phis eventually settle on. Type join
// is monotonic over a finite lattice (I8 < I16 < I32 < I64), so
// repeating "recompute every derived type from its current inputs"
// until nothing changes is guaranteed to terminate at the true
// fixpoint regardless of cycle shape.
func ResolveTypes(g *Graph) {
	for {
		changed := false
		for _, blk := range g.Blocks {
			for _, in := range blk.Instructions() {
				if t := derivedType(in); t != in.Type {
					in.Type = t
					changed = true
				}
			}
		}
		if !changed {
			return
		}
	}
}

// derivedType recomputes the type of in from its current inputs for
// the kinds whose type actually depends on them; every other kind
// returns its own (already final) type unchanged.
func derivedType(in *Instruction) TypeID {
	switch in.Kind {
	case KindPHI:
		t := TypeInvalid
		for _, inp := range in.Inputs {
			t = joinTypes(t, inp.Type)
		}
		return t
	case KindADD, KindSUB:
		return joinTypes(in.Inputs[0].Type, in.Inputs[1].Type)
	default:
		return in.Type
	}
}
