package ir

import "testing"

func TestResolveRegsSameBlockRewrite(t *testing.T) {
	g := NewGraph(8, 0)
	b := NewBuilder(g)
	blk := b.OpenBlock()

	def := b.Imm(7, TypePtr)
	b.SetReg(RegPTR, def)
	use := b.Reg(RegPTR)
	b.Ret(use)

	ResolveRegs(g)

	ret := blk.Last()
	if ret.Kind != KindRET {
		t.Fatalf("expected RET as last instruction, got %s", ret.Kind)
	}
	if ret.Inputs[0] != def {
		t.Fatalf("RET should read the SETREG's value directly, got %v", ret.Inputs[0])
	}
	for _, in := range blk.Instructions() {
		if in.Kind == KindSETREG {
			t.Fatal("SETREG should have been destroyed")
		}
	}
}

func TestResolveRegsClimbsSinglePredecessorChain(t *testing.T) {
	g := NewGraph(8, 0)
	b := NewBuilder(g)
	entry := b.OpenBlock()
	mid := g.newBlock()
	tail := g.newBlock()

	b.SetBlock(entry)
	def := b.Imm(3, TypePtr)
	b.SetReg(RegPTR, def)
	b.Goto(mid)

	b.SetBlock(mid)
	b.Goto(tail)

	b.SetBlock(tail)
	use := b.Reg(RegPTR)
	b.Ret(use)

	ResolveRegs(g)

	ret := tail.Last()
	if ret.Inputs[0] != def {
		t.Fatalf("REG in tail should resolve through mid to entry's SETREG value, got %v", ret.Inputs[0])
	}
}

func TestResolveRegsInsertsPhiAtJoin(t *testing.T) {
	g := NewGraph(8, 0)
	b := NewBuilder(g)
	entry := b.OpenBlock()
	left := g.newBlock()
	right := g.newBlock()
	join := g.newBlock()

	b.SetBlock(entry)
	b.If(b.Imm(1, TypeI8), left, right)

	// Redefine PTR differently on each arm so the join can't resolve to
	// a single shared definition and must insert a phi.
	b.SetBlock(left)
	leftDef := b.Imm(10, TypePtr)
	b.SetReg(RegPTR, leftDef)
	b.Goto(join)

	b.SetBlock(right)
	rightDef := b.Imm(20, TypePtr)
	b.SetReg(RegPTR, rightDef)
	b.Goto(join)

	b.SetBlock(join)
	use := b.Reg(RegPTR)
	b.Ret(use)

	ResolveRegs(g)

	var phi *Instruction
	for _, in := range join.Instructions() {
		if in.Kind == KindPHI {
			phi = in
		}
	}
	if phi == nil {
		t.Fatal("expected a phi to be inserted at the join block")
	}
	if len(phi.Inputs) != 2 {
		t.Fatalf("phi should have one input per predecessor, got %d", len(phi.Inputs))
	}
	if phi.Inputs[0] != leftDef || phi.Inputs[1] != rightDef {
		t.Fatalf("phi inputs should be ordered by predecessor: got %v, %v", phi.Inputs[0], phi.Inputs[1])
	}
}
