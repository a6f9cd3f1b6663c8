package ir

// ResolveRegs converts a graph containing REG/SETREG instructions into
// pure dataflow form with phis (§4.D). After it returns, no SETREG
// instruction remains, and REG only appears at entry-reachable
// positions with no dominating definition (§3 invariant 8, §8).
//
// Each block gets a state map from RegKind to the instruction that
// last defines it, visible at that block's exit. The algorithm is one
// pass over blocks in id order, followed by a worklist that inserts
// phis for registers still unresolved at join points:
//
//  1. SETREG(r, x) sets state[r] = x and is destroyed.
//  2. REG(r): local state hit rewrites the use directly. Otherwise the
//     search climbs the chain of strictly-single-predecessor ancestors
//     (a block with exactly one predecessor is a trivial dominator)
//     looking for a state hit; a hit rewrites the use. A total miss
//     moves the REG instruction itself up to the topmost ancestor the
//     chain reached, records it as that ancestor's state, and queues
//     it as unresolved.
//  3. The worklist visits each unresolved REG whose block has two or
//     more predecessors, replaces it with a fresh phi, and for each
//     predecessor performs the same chain search starting at that
//     predecessor; a miss there pushes a fresh REG directly at the
//     predecessor (not at a further ancestor) and queues it too.
//
// Termination (§4.D): each worklist entry either resolves to zero new
// entries (it reached the entry block, which has no predecessors) or
// introduces at most one new REG per predecessor, and the cycle that a
// loop back-edge would otherwise create is broken by creating the phi
// before its predecessors are searched.
func ResolveRegs(g *Graph) {
	state := NewPassData[map[RegKind]*Instruction]()
	owners := make(map[*Instruction][]ownerKey)

	setState := func(b *Block, r RegKind, v *Instruction) {
		m := state[b.id]
		if m == nil {
			m = make(map[RegKind]*Instruction)
			state[b.id] = m
		}
		m[r] = v
		owners[v] = append(owners[v], ownerKey{b.id, r})
	}

	var unresolved []*Instruction

	for _, blk := range g.Blocks {
		if state[blk.id] == nil {
			state[blk.id] = make(map[RegKind]*Instruction)
		}
		local := state[blk.id]
		for _, in := range blk.Instructions() {
			switch in.Kind {
			case KindSETREG:
				v := in.Inputs[0]
				local[in.ImmReg] = v
				owners[v] = append(owners[v], ownerKey{blk.id, in.ImmReg})
				in.Destroy() // unwires its input properly; SETREG has no uses of its own
			case KindREG:
				r := in.ImmReg
				if v, ok := local[r]; ok {
					in.RewriteWith(v)
					continue
				}
				if v, _ := lookupReg(blk, r, state); v != nil {
					in.RewriteWith(v)
					continue
				}
				_, topmost := lookupReg(blk, r, state)
				in.Detach()
				topmost.insertFirst(in)
				setState(topmost, r, in)
				unresolved = append(unresolved, in)
			}
		}
	}

	builder := &Builder{G: g}
	for i := 0; i < len(unresolved); i++ {
		reg := unresolved[i]
		blk := reg.Block
		if blk == nil || len(blk.Preds) < 2 {
			continue // stays as-is: reached the entry block, or already resolved
		}
		r := reg.ImmReg

		phi := builder.NewPhi(blk)
		reg.RewriteWith(phi)
		for _, ok := range owners[reg] {
			state[ok.block][ok.reg] = phi
		}
		delete(owners, reg)

		for _, pred := range blk.Preds {
			if v, _ := lookupReg(pred, r, state); v != nil {
				AppendPhiInput(phi, v)
				continue
			}
			fresh := g.newInstr(KindREG)
			fresh.Type = regType(r)
			fresh.ImmReg = r
			pred.insertFirst(fresh)
			setState(pred, r, fresh)
			unresolved = append(unresolved, fresh)
			AppendPhiInput(phi, fresh)
		}
	}
}

type ownerKey struct {
	block int
	reg   RegKind
}

// lookupReg checks start's own recorded state for r, then climbs the
// chain of ancestors reachable by repeatedly stepping to the sole
// predecessor of a single-predecessor block, stopping at the first hit
// or at the first block that doesn't have exactly one predecessor.
// That stopping block is returned as topmost regardless of whether a
// hit was found, so callers can use it to place a new definition.
func lookupReg(start *Block, r RegKind, state PassData[map[RegKind]*Instruction]) (*Instruction, *Block) {
	cur := start
	for {
		if m, ok := state[cur.id]; ok {
			if v, ok := m[r]; ok {
				return v, cur
			}
		}
		if len(cur.Preds) != 1 {
			return nil, cur
		}
		cur = cur.Preds[0]
	}
}
