package ir

import (
	"strings"
	"testing"
)

func TestPrintInlinesImmAndSingleUsePure(t *testing.T) {
	g := NewGraph(8, 0)
	b := NewBuilder(g)
	b.OpenBlock()

	ptr := b.Reg(RegPTR)
	v := b.Ld(ptr)
	sum := b.Add(v, b.Imm(3, TypeI8))
	b.Ret(sum)

	out := Print(g)

	if !strings.Contains(out, "return [reg(PTR)] + 3") {
		t.Fatalf("expected the whole REG/LD/ADD/IMM chain to inline into the return, got:\n%s", out)
	}
	if strings.Contains(out, "%") {
		t.Fatalf("every instruction here is pure and single-use; none should get its own named line:\n%s", out)
	}
}

func TestPrintGivesMultiUseValuesANamedLine(t *testing.T) {
	g := NewGraph(8, 0)
	b := NewBuilder(g)
	b.OpenBlock()

	ptr := b.Reg(RegPTR)
	v := b.Ld(ptr)
	b.Add(v, b.Imm(1, TypeI8))
	b.Sub(v, b.Imm(1, TypeI8))
	b.Ret(b.Reg(RegPTR))

	out := Print(g)
	if !strings.Contains(out, "= i8 [reg(PTR)]") {
		t.Fatalf("a load used twice should get its own named line, got:\n%s", out)
	}
}

func TestPrintDoesNotInlineAcrossBlocks(t *testing.T) {
	g := NewGraph(8, 0)
	b := NewBuilder(g)
	entry := b.OpenBlock()
	join := g.newBlock()

	b.SetBlock(entry)
	gep := b.Gep(b.Reg(RegPTR), b.Imm(1, TypeSize))
	b.Goto(join)

	b.SetBlock(join)
	phi := b.NewPhi(join)
	AppendPhiInput(phi, gep)
	phi.Type = TypePtr
	b.Ret(phi)

	out := Print(g)
	if !strings.Contains(out, "= ptr [reg(PTR) + 1]") {
		t.Fatalf("a pure value used once from a different block must get its own named line, got:\n%s", out)
	}
}

func TestPrintDoesNotInlineAcrossInterveningImpureInstruction(t *testing.T) {
	g := NewGraph(8, 0)
	b := NewBuilder(g)
	b.OpenBlock()

	ptr := b.Reg(RegPTR)
	v := b.Ld(ptr)
	b.Str(b.Reg(RegPTR), b.Imm(0, TypeI8))
	b.Ret(v)

	out := Print(g)
	if !strings.Contains(out, "= i8 [reg(PTR)]") {
		t.Fatalf("a load separated from its only use by an intervening store must get its own named line, got:\n%s", out)
	}
	if strings.Contains(out, "return [reg(PTR)]") {
		t.Fatalf("the load must not be inlined into return across the intervening store, got:\n%s", out)
	}
}

func TestPrintBlockLabelsAndGoto(t *testing.T) {
	g := NewGraph(8, 0)
	b := NewBuilder(g)
	entry := b.OpenBlock()
	next := g.newBlock()

	b.SetBlock(entry)
	b.Goto(next)

	b.SetBlock(next)
	b.Ret(b.Imm(0, TypeI8))

	out := Print(g)
	for _, want := range []string{".l0:", ".l1:", "goto .l1", "return 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPrintIfAndPhi(t *testing.T) {
	g := NewGraph(8, 0)
	b := NewBuilder(g)
	entry := b.OpenBlock()
	left := g.newBlock()
	right := g.newBlock()
	join := g.newBlock()

	b.SetBlock(entry)
	b.If(b.Imm(1, TypeI8), left, right)

	b.SetBlock(left)
	a := b.Imm(10, TypeI8)
	b.Goto(join)

	b.SetBlock(right)
	c := b.Imm(20, TypeI8)
	b.Goto(join)

	b.SetBlock(join)
	phi := b.NewPhi(join)
	AppendPhiInput(phi, a)
	AppendPhiInput(phi, c)
	phi.Type = TypeI8
	b.Ret(phi)

	out := Print(g)
	if !strings.Contains(out, "if 1 then .l1 else .l2") {
		t.Errorf("expected a printed if statement, got:\n%s", out)
	}
	if !strings.Contains(out, ".l1: 10, .l2: 20") {
		t.Errorf("expected phi inputs keyed by predecessor label, got:\n%s", out)
	}
}
