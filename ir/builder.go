package ir

// Builder is a cursor keyed by (current block, current instruction):
// it tracks where lowering appends next and offers one emission method
// per instruction kind. Lowering threads a Builder value down through
// its own recursion rather than mutating a shared field (§9 "Builder
// cursor state").
type Builder struct {
	G     *Graph
	block *Block
}

// NewBuilder creates a cursor with no current block; call OpenBlock
// before emitting.
func NewBuilder(g *Graph) *Builder { return &Builder{G: g} }

// OpenBlock attaches a fresh block to the graph and positions the
// cursor at its (empty) start.
func (b *Builder) OpenBlock() *Block {
	blk := b.G.newBlock()
	b.block = blk
	return blk
}

// SetBlock repositions the cursor onto an already-open block without
// creating a new one — used when lowering finishes emitting into one
// block and continues into a sibling block opened earlier.
func (b *Builder) SetBlock(blk *Block) { b.block = blk }

// Block is the block the cursor currently appends into.
func (b *Builder) Block() *Block { return b.block }

func (b *Builder) emit(kind Kind, typ TypeID, inputs ...*Instruction) *Instruction {
	in := b.G.newInstr(kind)
	in.Type = typ
	setInputs(in, inputs)
	b.block.appendList(in)
	return in
}

// Imm emits an integer literal of type t.
func (b *Builder) Imm(v int64, t TypeID) *Instruction {
	in := b.emit(KindIMM, t)
	in.ImmInt = v
	return in
}

// Add emits x + y; its type is the wider of x's and y's.
func (b *Builder) Add(x, y *Instruction) *Instruction {
	return b.emit(KindADD, joinTypes(x.Type, y.Type), x, y)
}

// Sub emits x - y; its type is the wider of x's and y's.
func (b *Builder) Sub(x, y *Instruction) *Instruction {
	return b.emit(KindSUB, joinTypes(x.Type, y.Type), x, y)
}

// Gep emits ptr + offset, a byte-index pointer displacement.
func (b *Builder) Gep(ptr, offset *Instruction) *Instruction {
	return b.emit(KindGEP, TypePtr, ptr, offset)
}

// Ld emits a load of one cell from addr.
func (b *Builder) Ld(addr *Instruction) *Instruction {
	return b.emit(KindLD, b.G.CellType(), addr)
}

// Str emits a store of val to addr.
func (b *Builder) Str(addr, val *Instruction) *Instruction {
	return b.emit(KindSTR, TypeNone, addr, val)
}

// regType is the type REG carries for a given register kind. Only PTR
// is assigned a fixed type by the spec (§4.F); DEF's type, if ever
// used, is left to be resolved from context and starts invalid.
func regType(kind RegKind) TypeID {
	if kind == RegPTR {
		return TypePtr
	}
	return TypeInvalid
}

// Reg emits a read of virtual register kind.
func (b *Builder) Reg(kind RegKind) *Instruction {
	in := b.emit(KindREG, regType(kind))
	in.ImmReg = kind
	return in
}

// SetReg emits a definition of virtual register kind to val.
func (b *Builder) SetReg(kind RegKind, val *Instruction) *Instruction {
	in := b.emit(KindSETREG, TypeNone, val)
	in.ImmReg = kind
	return in
}

// GetChar emits a read from the input stream.
func (b *Builder) GetChar() *Instruction {
	return b.emit(KindGETCHAR, b.G.CellType())
}

// PutChar emits a write of val to the output stream.
func (b *Builder) PutChar(val *Instruction) *Instruction {
	return b.emit(KindPUTCHAR, TypeNone, val)
}

// Nop emits a no-op.
func (b *Builder) Nop() *Instruction {
	return b.emit(KindNOP, TypeNone)
}

// NewPhi creates a phi with no inputs yet, mounted at the very top of
// blk (ahead of anything register resolution has already moved there).
// Inputs are appended one per predecessor with AppendPhiInput.
func (b *Builder) NewPhi(blk *Block) *Instruction {
	in := b.G.newInstr(KindPHI)
	in.Type = TypeInvalid
	blk.insertFirst(in)
	return in
}

// AppendPhiInput appends one more input to a phi under construction,
// wiring the use-def dual. Callers append exactly once per predecessor,
// in predecessor order (§3 invariant 5).
func AppendPhiInput(phi, val *Instruction) {
	phi.Inputs = append(phi.Inputs, val)
	connect(phi, val)
}

// Goto closes the current block with an unconditional jump to target.
func (b *Builder) Goto(target *Block) {
	b.emit(KindGOTO, TypeNone)
	connectBlocks(b.block, target)
	b.block.open = false
}

// If closes the current block, branching to thenBlk when cond is
// nonzero and to elseBlk otherwise. Successor order is significant:
// thenBlk becomes successor 0 and elseBlk successor 1 of the current
// block, the order the printer and the backend read the targets in.
func (b *Builder) If(cond *Instruction, thenBlk, elseBlk *Block) {
	b.emit(KindIF, TypeNone, cond)
	connectBlocks(b.block, thenBlk)
	connectBlocks(b.block, elseBlk)
	b.block.open = false
}

// Ret closes the current block, returning val.
func (b *Builder) Ret(val *Instruction) {
	b.emit(KindRET, TypeNone, val)
	b.block.open = false
}
