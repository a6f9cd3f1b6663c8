package ir

import "bfjit/bf"

// Lower walks a parsed program and emits it into g as an open graph
// with a single entry block, per §4.C. The returned block is that
// entry block.
//
// The entry block's terminator is RET REG(PTR) once the whole program
// has been lowered — in general this RET lands on whatever block
// lowering's cursor is sitting on when it runs out of top-level
// instructions, not necessarily g's first block, since a top-level
// loop or seek closes the entry block early and continues into blocks
// opened for it. This is the natural generalization of §4.C's "entry
// block terminator is RET REG(PTR)" line to programs containing
// control flow.
func Lower(prog *bf.Program, g *Graph) *Block {
	b := NewBuilder(g)
	entry := b.OpenBlock()
	pos := 0
	lowerBody(b, prog, &pos)
	ptr := b.Reg(RegPTR)
	b.Ret(ptr)
	return entry
}

// lowerBody lowers instructions starting at *pos until it consumes a
// matching OpEnd (returning from nested lowering, §4.C "END: returns
// from nested lowering") or runs out of instructions (top level).
//
// Every OpLoop the parser emits has a matching OpEnd: an unclosed
// trailing loop is tolerated by inserting that OpEnd implicitly at end
// of input (§4.A), so lowering never has to special-case a loop body
// that runs off the end of the instruction stream — the loop's closing
// GOTO is always well-formed and the graph it produces always
// validates with RET reachable (§8 "unclosed trailing [").
func lowerBody(b *Builder, prog *bf.Program, pos *int) {
	for *pos < len(prog.Block) {
		in := prog.Block[*pos]
		switch in.Op {
		case bf.OpEnd:
			*pos++
			return
		case bf.OpAdd:
			*pos++
			lowerAdd(b, int64(in.Arg))
		case bf.OpSub:
			*pos++
			lowerSub(b, int64(in.Arg))
		case bf.OpSeek:
			*pos++
			buildSeek(b, prog.Seeks[in.Arg])
		case bf.OpPutChar:
			*pos++
			lowerPutChar(b)
		case bf.OpGetChar:
			*pos++
			lowerGetChar(b)
		case bf.OpLoop:
			*pos++
			lowerLoop(b, prog, pos)
		}
	}
}

func lowerAdd(b *Builder, n int64) {
	v := b.Ld(b.Reg(RegPTR))
	sum := b.Add(v, b.Imm(n, b.G.CellType()))
	b.Str(b.Reg(RegPTR), sum)
}

func lowerSub(b *Builder, n int64) {
	v := b.Ld(b.Reg(RegPTR))
	diff := b.Sub(v, b.Imm(n, b.G.CellType()))
	b.Str(b.Reg(RegPTR), diff)
}

func lowerPutChar(b *Builder) {
	v := b.Ld(b.Reg(RegPTR))
	b.PutChar(v)
}

func lowerGetChar(b *Builder) {
	b.Str(b.Reg(RegPTR), b.GetChar())
}

// lowerLoop lowers an impure LOOP/END pair: three fresh blocks (cond,
// loop, next), a GOTO from the current block into cond, the test in
// cond, the body in loop (closed by a GOTO back to cond), and a
// zero-store in next recording that the loop only exits when the
// current cell reads zero.
func lowerLoop(b *Builder, prog *bf.Program, pos *int) {
	pre := b.Block()
	cond := b.G.newBlock()
	loop := b.G.newBlock()
	next := b.G.newBlock()

	b.SetBlock(pre)
	b.Goto(cond)

	b.SetBlock(cond)
	v := b.Ld(b.Reg(RegPTR))
	b.If(v, loop, next)

	b.SetBlock(loop)
	lowerBody(b, prog, pos)
	b.Goto(cond)

	b.SetBlock(next)
	b.Str(b.Reg(RegPTR), b.Imm(0, b.G.CellType()))
}

// buildSeek emits a Seek tree: a pointer-offset update, then for each
// nested seek-loop the same three-block loop skeleton (with the nested
// seek as its body) followed by that loop's own post-loop offset
// update (§4.C).
func buildSeek(b *Builder, s *bf.Seek) {
	applySeekOffset(b, s.Offset)
	for _, loop := range s.Loops {
		buildSeekLoop(b, loop)
	}
}

func applySeekOffset(b *Builder, offset int) {
	gep := b.Gep(b.Reg(RegPTR), b.Imm(int64(offset), TypeSize))
	b.SetReg(RegPTR, gep)
}

func buildSeekLoop(b *Builder, loop bf.SeekLoop) {
	pre := b.Block()
	cond := b.G.newBlock()
	body := b.G.newBlock()
	next := b.G.newBlock()

	b.SetBlock(pre)
	b.Goto(cond)

	b.SetBlock(cond)
	v := b.Ld(b.Reg(RegPTR))
	b.If(v, body, next)

	b.SetBlock(body)
	buildSeek(b, loop.Seek)
	b.Goto(cond)

	b.SetBlock(next)
	applySeekOffset(b, loop.Offset)
}
