package ir

import "testing"

func TestResolveTypesJoinsPhiInputs(t *testing.T) {
	g := NewGraph(8, 0)
	b := NewBuilder(g)
	entry := b.OpenBlock()
	left := g.newBlock()
	right := g.newBlock()
	join := g.newBlock()

	b.SetBlock(entry)
	b.If(b.Imm(1, TypeI8), left, right)

	b.SetBlock(left)
	small := b.Imm(1, TypeI8)
	b.Goto(join)

	b.SetBlock(right)
	wide := b.Imm(1, TypeI32)
	b.Goto(join)

	b.SetBlock(join)
	phi := b.NewPhi(join)
	AppendPhiInput(phi, small)
	AppendPhiInput(phi, wide)
	b.Ret(phi)

	ResolveTypes(g)

	if phi.Type != TypeI32 {
		t.Fatalf("phi type = %s, want the wider operand type i32", phi.Type)
	}
}

func TestResolveTypesConvergesOnLoopCarriedPhi(t *testing.T) {
	g := NewGraph(8, 0)
	b := NewBuilder(g)
	entry := b.OpenBlock()
	cond := g.newBlock()
	body := g.newBlock()
	exit := g.newBlock()

	b.SetBlock(entry)
	seed := b.Imm(1, TypeI8)
	b.Goto(cond)

	b.SetBlock(cond)
	phi := b.NewPhi(cond)
	AppendPhiInput(phi, seed)
	b.If(b.Imm(1, TypeI8), body, exit)

	b.SetBlock(body)
	wide := b.Imm(1, TypeI64)
	sum := b.Add(phi, wide)
	AppendPhiInput(phi, sum)
	b.Goto(cond)

	b.SetBlock(exit)
	b.Ret(phi)

	ResolveTypes(g)

	if phi.Type != TypeI64 {
		t.Fatalf("loop-carried phi type = %s, want i64 once the fixpoint converges", phi.Type)
	}
	if sum.Type != TypeI64 {
		t.Fatalf("sum type = %s, want i64", sum.Type)
	}
}
