package ir

// Graph owns a set of Blocks and the monotonically increasing id
// counters for blocks and instructions (§3 "Graph"). It also carries
// the configuration that propagates into type choices: the cell width
// in bits and the EOF value reported by GETCHAR at the backend.
type Graph struct {
	Blocks []*Block

	CellWidth int // 8, 16, 32, or 64
	EOFValue  int64

	nextBlockID int
	nextInstrID int
}

// NewGraph creates an empty graph with the given cell width (bits) and
// EOF value. cellWidth must be one of 8/16/32/64; callers validate this
// upstream (jitconfig.Config.Validate) since the core assumes a
// validated config (§7 class 2).
func NewGraph(cellWidth int, eofValue int64) *Graph {
	return &Graph{CellWidth: cellWidth, EOFValue: eofValue}
}

// CellType is the integer type of one tape cell under this graph's
// configured width.
func (g *Graph) CellType() TypeID { return CellType(g.CellWidth) }

// newBlock allocates and attaches a fresh, open, disconnected block.
func (g *Graph) newBlock() *Block {
	b := &Block{id: g.nextBlockID, graph: g, open: true}
	g.nextBlockID++
	g.Blocks = append(g.Blocks, b)
	return b
}

// newInstr allocates an instruction not yet mounted in any block.
func (g *Graph) newInstr(kind Kind) *Instruction {
	in := &Instruction{id: g.nextInstrID, Kind: kind, Type: TypeInvalid}
	g.nextInstrID++
	return in
}

// Destroy orphans every block, unwires every instruction, and releases
// the graph's storage. The graph must not be used afterward.
func (g *Graph) Destroy() {
	for _, b := range g.Blocks {
		for in := b.first; in != nil; {
			next := in.Next
			in.Inputs = nil
			in.Outputs = nil
			in.Block = nil
			in.Prev, in.Next = nil, nil
			in = next
		}
		b.first, b.last = nil, nil
		b.Preds, b.Succs = nil, nil
		b.graph = nil
	}
	g.Blocks = nil
}

// connectBlocks wires a forward edge pred -> succ, appending to both
// sides' ordered neighbor lists. Phi input i corresponds to
// predecessor i, so callers must wire successors in the exact order
// the terminator names them (§3 invariant 5).
func connectBlocks(pred, succ *Block) {
	pred.Succs = append(pred.Succs, succ)
	succ.Preds = append(succ.Preds, pred)
}

// Block is identified by a unique id and holds an intrusively linked
// list of Instructions, ordered predecessor/successor lists, an open
// flag (true until terminated), and an immediate-dominator pointer
// (§3 "Block").
type Block struct {
	id    int
	graph *Graph

	first, last *Instruction

	Preds, Succs []*Block

	open bool
	Idom *Block
}

// ID is this block's unique identifier within its graph. Block ids
// increase along every forward edge; buildDominators relies on this
// (§4.B).
func (b *Block) ID() int { return b.id }

// Open reports whether the block still awaits a terminator.
func (b *Block) Open() bool { return b.open }

// First is the block's first instruction, or nil if empty.
func (b *Block) First() *Instruction { return b.first }

// Last is the block's last instruction (typically its terminator once
// closed), or nil if empty.
func (b *Block) Last() *Instruction { return b.last }

// Instructions returns a snapshot slice of the block's instructions in
// list order. Safe to call mid-edit; later edits don't retroactively
// affect an already-taken snapshot.
func (b *Block) Instructions() []*Instruction {
	var out []*Instruction
	for in := b.first; in != nil; in = in.Next {
		out = append(out, in)
	}
	return out
}

// appendList links in at the end of b's instruction list. List-only:
// does not touch use-def edges.
func (b *Block) appendList(in *Instruction) {
	in.Block = b
	in.Prev = b.last
	in.Next = nil
	if b.last != nil {
		b.last.Next = in
	} else {
		b.first = in
	}
	b.last = in
}

// insertFirst links in at the start of b's instruction list.
func (b *Block) insertFirst(in *Instruction) {
	in.Block = b
	in.Prev = nil
	in.Next = b.first
	if b.first != nil {
		b.first.Prev = in
	} else {
		b.last = in
	}
	b.first = in
}

// insertAfter links in immediately after ref, which must already be in
// b's list.
func (b *Block) insertAfter(ref, in *Instruction) {
	in.Block = b
	in.Prev = ref
	in.Next = ref.Next
	if ref.Next != nil {
		ref.Next.Prev = in
	} else {
		b.last = in
	}
	ref.Next = in
}

// insertBefore links in immediately before ref, which must already be
// in b's list.
func (b *Block) insertBefore(ref, in *Instruction) {
	in.Block = b
	in.Next = ref
	in.Prev = ref.Prev
	if ref.Prev != nil {
		ref.Prev.Next = in
	} else {
		b.first = in
	}
	ref.Prev = in
}

// detachList unlinks in from b's instruction list. List-only.
func (b *Block) detachList(in *Instruction) {
	if in.Prev != nil {
		in.Prev.Next = in.Next
	} else {
		b.first = in.Next
	}
	if in.Next != nil {
		in.Next.Prev = in.Prev
	} else {
		b.last = in.Prev
	}
	in.Prev, in.Next = nil, nil
}

// Instruction is one node of the graph (§3 "Instruction"): a kind, an
// ordered input list, a multiset of using instructions maintained as
// its dual, a resolved type, an immediate payload, and intrusive
// prev/next pointers within its block.
type Instruction struct {
	id   int
	Kind Kind

	Inputs  []*Instruction
	Outputs []*Instruction

	Type TypeID

	// ImmInt carries IMM's integer literal; ImmReg carries REG/SETREG's
	// register kind. Unused for every other kind.
	ImmInt int64
	ImmReg RegKind

	Block *Block
	Prev  *Instruction
	Next  *Instruction
}

// ID is this instruction's unique identifier within its graph.
func (in *Instruction) ID() int { return in.id }

// connect records that user reads input as one of its operands,
// wiring the use-def dual (§3 invariant 2). It does not touch
// user.Inputs; callers set that slice directly since input order
// matters (e.g. phi input i <-> predecessor i).
func connect(user, input *Instruction) {
	input.Outputs = append(input.Outputs, user)
}

// disconnectOne removes exactly one occurrence of user from
// input.Outputs, undoing one connect call.
func disconnectOne(input, user *Instruction) {
	for i, o := range input.Outputs {
		if o == user {
			input.Outputs = append(input.Outputs[:i:i], input.Outputs[i+1:]...)
			return
		}
	}
}

// setInputs replaces in.Inputs wholesale, wiring the dual for each new
// input. Callers must ensure in currently has no inputs (fresh
// instruction, or already cleared) to avoid double-wiring.
func setInputs(in *Instruction, inputs []*Instruction) {
	in.Inputs = inputs
	for _, input := range inputs {
		connect(in, input)
	}
}

// Detach removes the instruction from its block's list only; use-def
// edges are left intact. Used when an instruction is being relocated
// (MoveAfter/MoveBefore) rather than discarded.
func (in *Instruction) Detach() {
	if in.Block == nil {
		return
	}
	in.Block.detachList(in)
	in.Block = nil
}

// Remove detaches in and unwires its inputs. in must have no remaining
// uses (in.Outputs empty); use ForceRemove to discard an instruction
// together with its users.
func (in *Instruction) Remove() {
	if len(in.Outputs) != 0 {
		panic("ir: Remove of instruction with live uses")
	}
	in.Detach()
	for _, input := range in.Inputs {
		disconnectOne(input, in)
	}
	in.Inputs = nil
}

// ForceRemove detaches in and unwires both its inputs and its outputs,
// without patching the using instructions' Inputs slices. Callers use
// this only when discarding the whole affected subgraph together (the
// users are being destroyed too, not kept alive with a dangling
// operand slot).
func (in *Instruction) ForceRemove() {
	in.Detach()
	for _, input := range in.Inputs {
		disconnectOne(input, in)
	}
	in.Inputs = nil
	in.Outputs = nil
}

// Destroy frees the instruction. Equivalent to ForceRemove; the
// distinct name matches the §4.B primitive list and documents intent
// at call sites.
func (in *Instruction) Destroy() {
	in.ForceRemove()
}

// ReplaceWith destroys in and inserts repl in the same list slot.
// repl must not already be mounted in a block.
func (in *Instruction) ReplaceWith(repl *Instruction) {
	blk := in.Block
	prev := in.Prev
	in.Destroy()
	if prev != nil {
		blk.insertAfter(prev, repl)
	} else {
		blk.insertFirst(repl)
	}
}

// RewriteWith redirects every use of in to repl, then destroys in. Use
// this (rather than ReplaceWith) when repl already exists elsewhere in
// the graph and only in's uses need retargeting, not in's list slot.
func (in *Instruction) RewriteWith(repl *Instruction) {
	users := in.Outputs
	in.Outputs = nil
	for _, user := range users {
		for i, x := range user.Inputs {
			if x == in {
				user.Inputs[i] = repl
				connect(user, repl)
			}
		}
	}
	in.Remove()
}

// MoveAfter detaches in and reinserts it immediately after ref.
func (in *Instruction) MoveAfter(ref *Instruction) {
	in.Detach()
	ref.Block.insertAfter(ref, in)
}

// MoveBefore detaches in and reinserts it immediately before ref.
func (in *Instruction) MoveBefore(ref *Instruction) {
	in.Detach()
	ref.Block.insertBefore(ref, in)
}
