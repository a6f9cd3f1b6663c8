package ir

// Fold runs the peephole rewrite pass (§4.E) to a local fixpoint: a
// keyed rule table matched on (kind, input0.kind, input1.kind) with
// wildcard fallback, plus a same-block dead-store elimination sweep
// that the table shape doesn't fit (it spans two instructions, not
// one instruction's own inputs).
//
// Each table rule may still decline by returning nil once it inspects
// operands the key alone can't discriminate (e.g. a nested GEP whose
// own offset isn't itself an immediate) — a matched key is a candidate,
// not a guarantee.
func Fold(g *Graph) {
	changed := true
	for changed {
		changed = false
		for _, blk := range g.Blocks {
			for _, in := range blk.Instructions() {
				if in.Block == nil {
					continue // already folded away earlier this sweep
				}
				if rule, ok := lookupFold(in); ok {
					if repl := rule(g, in); repl != nil {
						if repl.Block == nil {
							// a freshly folded constant or merged GEP isn't
							// mounted anywhere yet; give it in's old slot
							blk.insertBefore(in, repl)
						}
						in.RewriteWith(repl)
						changed = true
					}
				}
			}
		}
		if deadStoreElim(g) {
			changed = true
		}
	}
}

const kindAny Kind = -1

type foldKey struct{ kind, in0, in1 Kind }

// foldRules holds one entry per (kind, input0 kind, input1 kind)
// combination with a registered rule; lookupFold tries progressively
// less specific keys so a two-input wildcard always catches anything
// the exact match misses.
var foldRules = map[foldKey]func(g *Graph, in *Instruction) *Instruction{
	{KindADD, KindIMM, KindIMM}: foldAddImm,
	{KindSUB, KindIMM, KindIMM}: foldSubImm,
	{KindADD, kindAny, KindIMM}: foldAddZero,
	{KindSUB, kindAny, KindIMM}: foldSubZero,
	{KindGEP, KindGEP, KindIMM}: foldGepChain,
	{KindGEP, kindAny, KindIMM}: foldGepZero,
}

func lookupFold(in *Instruction) (func(*Graph, *Instruction) *Instruction, bool) {
	k0, k1 := kindAny, kindAny
	if len(in.Inputs) > 0 {
		k0 = in.Inputs[0].Kind
	}
	if len(in.Inputs) > 1 {
		k1 = in.Inputs[1].Kind
	}
	for _, key := range [...]foldKey{
		{in.Kind, k0, k1},
		{in.Kind, k0, kindAny},
		{in.Kind, kindAny, k1},
		{in.Kind, kindAny, kindAny},
	} {
		if rule, ok := foldRules[key]; ok {
			return rule, true
		}
	}
	return nil, false
}

func foldAddImm(g *Graph, in *Instruction) *Instruction {
	x, y := in.Inputs[0], in.Inputs[1]
	repl := g.newInstr(KindIMM)
	repl.Type = in.Type
	repl.ImmInt = x.ImmInt + y.ImmInt
	return repl
}

func foldSubImm(g *Graph, in *Instruction) *Instruction {
	x, y := in.Inputs[0], in.Inputs[1]
	repl := g.newInstr(KindIMM)
	repl.Type = in.Type
	repl.ImmInt = x.ImmInt - y.ImmInt
	return repl
}

// foldAddZero drops an addition of a literal zero: x + 0 -> x. It
// declines when the left operand is itself the IMM being matched
// against (foldAddImm already owns that exact-key case).
func foldAddZero(g *Graph, in *Instruction) *Instruction {
	x, y := in.Inputs[0], in.Inputs[1]
	if x.Kind == KindIMM || y.ImmInt != 0 {
		return nil
	}
	return x
}

func foldSubZero(g *Graph, in *Instruction) *Instruction {
	x, y := in.Inputs[0], in.Inputs[1]
	if x.Kind == KindIMM || y.ImmInt != 0 {
		return nil
	}
	return x
}

// foldGepChain merges GEP(GEP(ptr, c1), c2) into GEP(ptr, c1 + c2) when
// the inner GEP's own offset is also an immediate; declines otherwise
// (the key alone can't see the inner GEP's second input's kind).
func foldGepChain(g *Graph, in *Instruction) *Instruction {
	inner := in.Inputs[0]
	outerOff := in.Inputs[1]
	if len(inner.Inputs) != 2 || inner.Inputs[1].Kind != KindIMM {
		return nil
	}
	ptr := inner.Inputs[0]
	innerOff := inner.Inputs[1]
	sum := g.newInstr(KindIMM)
	sum.Type = TypeSize
	sum.ImmInt = innerOff.ImmInt + outerOff.ImmInt
	in.Block.insertBefore(in, sum) // repl references it; must be mounted before repl itself
	repl := g.newInstr(KindGEP)
	repl.Type = TypePtr
	setInputs(repl, []*Instruction{ptr, sum})
	return repl
}

// foldGepZero drops a zero-offset GEP: GEP(ptr, 0) -> ptr.
func foldGepZero(g *Graph, in *Instruction) *Instruction {
	if in.Inputs[1].ImmInt != 0 {
		return nil
	}
	return in.Inputs[0]
}

// debugChecks gates the stricter contract equal enforces; a release
// build would flip this off and accept the conservative false instead
// of panicking on misuse.
const debugChecks = true

// equal reports whether two pure, value-producing instructions are
// provably the same value. Defined only for pure kinds: calling it on
// an impure instruction (a STR, a PUTCHAR, anything with a side
// effect) is a caller bug, reported loudly in a debug build and
// conservatively as "not equal" otherwise. Two different instructions
// are never considered equal except matching IMM literals of the same
// type; this is deliberately conservative rather than a full
// value-numbering pass.
func equal(a, b *Instruction) bool {
	if !a.Kind.Pure() || !b.Kind.Pure() {
		if debugChecks {
			panic("ir: equal called on an impure instruction")
		}
		return false
	}
	if a == b {
		return true
	}
	if a.Kind != b.Kind || a.Type != b.Type {
		return false
	}
	if a.Kind == KindIMM {
		return a.ImmInt == b.ImmInt
	}
	return false
}

// deadStoreElim removes a STR that is unconditionally overwritten by a
// later STR to the identical address value before anything in between
// could observe it, per block. Two STRs share an address only when
// they share the same address instruction (the same SSA value) —
// this is conservative by construction, not a full alias analysis.
// Reports whether it removed anything.
func deadStoreElim(g *Graph) bool {
	removed := false
	for _, blk := range g.Blocks {
		last := map[*Instruction]*Instruction{}
		for _, in := range blk.Instructions() {
			switch in.Kind {
			case KindSTR:
				addr := in.Inputs[0]
				if prev, ok := last[addr]; ok {
					prev.ForceRemove()
					removed = true
				}
				last[addr] = in
			case KindLD:
				delete(last, in.Inputs[0])
			}
		}
	}
	return removed
}
