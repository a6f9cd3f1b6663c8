package ir

import "fmt"

// Validate checks every invariant §3 lists against g and aborts with a
// combined report if any are violated (§4.G). It is meant to run after
// each pass during development and in test builds, not on a hot path —
// grounded on the teacher's "collect every violation, then fail loud"
// assertion idiom, narrowed here to an abort rather than a returned
// report: there is no caller in this pipeline that would know how to
// proceed past a broken graph.
func Validate(g *Graph) {
	var violations []string
	report := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	for _, blk := range g.Blocks {
		validateBlock(blk, report)
	}
	validateUseDef(g, report)
	validateRegisters(g, report)
	validateTermination(g, report)
	validateGEPTypes(g, report)
	validateEdgeOrder(g, report)
	validateInputDominance(g, report)
	validateIdomReaches(g, report)

	if len(violations) > 0 {
		msg := "ir: graph failed validation:\n"
		for _, v := range violations {
			msg += "  - " + v + "\n"
		}
		panic(msg)
	}
}

func validateBlock(blk *Block, report func(string, ...any)) {
	instrs := blk.Instructions()
	if len(instrs) == 0 {
		report("block %d: empty (every block needs at least a terminator)", blk.id)
		return
	}

	for _, in := range instrs[:len(instrs)-1] {
		if isTerm, _ := in.Kind.Terminator(); isTerm {
			report("block %d: %s terminator %d appears before the end of the block", blk.id, in.Kind, in.id)
		}
	}

	last := instrs[len(instrs)-1]
	isTerm, wantSuccs := last.Kind.Terminator()
	if !isTerm {
		report("block %d: last instruction %d (%s) is not a terminator", blk.id, last.id, last.Kind)
		return
	}
	if len(blk.Succs) != wantSuccs {
		report("block %d: terminator %s wants %d successors, block has %d", blk.id, last.Kind, wantSuccs, len(blk.Succs))
	}

	for _, in := range instrs {
		n, fixed := in.Kind.Arity()
		switch {
		case in.Kind == KindPHI:
			if len(in.Inputs) != len(blk.Preds) {
				report("block %d: phi %d has %d inputs, block has %d predecessors", blk.id, in.id, len(in.Inputs), len(blk.Preds))
			}
		case fixed && len(in.Inputs) != n:
			report("block %d: %s %d has %d inputs, want %d", blk.id, in.Kind, in.id, len(in.Inputs), n)
		}
	}
}

// validateUseDef confirms every Inputs/Outputs edge is mirrored on the
// other side (§3 invariant 2: the dual is always kept in sync).
func validateUseDef(g *Graph, report func(string, ...any)) {
	for _, blk := range g.Blocks {
		for _, in := range blk.Instructions() {
			for _, input := range in.Inputs {
				if input.Block == nil {
					report("instruction %d: input %d is not mounted in any block", in.id, input.id)
					continue
				}
				if !containsInstr(input.Outputs, in) {
					report("instruction %d: reads %d but is missing from its Outputs", in.id, input.id)
				}
			}
			for _, user := range in.Outputs {
				if !containsInstr(user.Inputs, in) {
					report("instruction %d: output %d no longer has it as an input", in.id, user.id)
				}
			}
		}
	}
}

func containsInstr(list []*Instruction, target *Instruction) bool {
	for _, x := range list {
		if x == target {
			return true
		}
	}
	return false
}

// validateRegisters checks §3 invariant 8: any REG instruction surviving
// register resolution must sit in a block with no predecessors (an
// unreachable-by-definition entry read) — anything register resolution
// reached with two or more predecessors should have become a phi.
func validateRegisters(g *Graph, report func(string, ...any)) {
	for _, blk := range g.Blocks {
		for _, in := range blk.Instructions() {
			if in.Kind == KindREG && len(blk.Preds) != 0 {
				report("block %d: REG(%s) %d survived resolution with %d predecessors, should be a phi", blk.id, in.ImmReg, in.id, len(blk.Preds))
			}
			if in.Kind == KindSETREG {
				report("block %d: SETREG %d survived register resolution", blk.id, in.id)
			}
		}
	}
}

// validateGEPTypes checks §4.G: a GEP's pointer operand must type to
// PTR and its offset operand to SIZE.
func validateGEPTypes(g *Graph, report func(string, ...any)) {
	for _, blk := range g.Blocks {
		for _, in := range blk.Instructions() {
			if in.Kind != KindGEP || len(in.Inputs) != 2 {
				continue // malformed arity already reported by validateBlock
			}
			if in.Inputs[0].Type != TypePtr {
				report("block %d: GEP %d's pointer operand %d has type %s, want ptr", blk.id, in.id, in.Inputs[0].id, in.Inputs[0].Type)
			}
			if in.Inputs[1].Type != TypeSize {
				report("block %d: GEP %d's offset operand %d has type %s, want size", blk.id, in.id, in.Inputs[1].id, in.Inputs[1].Type)
			}
		}
	}
}

// validateEdgeOrder checks §4.G: forward-edge block ids strictly
// increase. An edge whose successor id doesn't exceed its
// predecessor's is only legitimate as a loop back-edge, which this
// confirms by reachability: the successor must actually be able to
// reach back to the predecessor, closing a loop, rather than jumping
// to some unrelated earlier block.
func validateEdgeOrder(g *Graph, report func(string, ...any)) {
	for _, blk := range g.Blocks {
		for _, succ := range blk.Succs {
			if succ.id > blk.id {
				continue
			}
			if !Reaches(succ, blk) {
				report("block %d: edge to block %d does not increase id and is not a back-edge (block %d cannot reach back to block %d)", blk.id, succ.id, succ.id, blk.id)
			}
		}
	}
}

// validateInputDominance checks §3 invariant 6: for a non-PHI
// instruction, every input's defining block must dominate the using
// block (an input in the same block is covered by list order, not
// dominance). No-ops until BuildDominators has actually run.
func validateInputDominance(g *Graph, report func(string, ...any)) {
	if len(g.Blocks) == 0 || g.Blocks[0].Idom == nil {
		return
	}
	for _, blk := range g.Blocks {
		for _, in := range blk.Instructions() {
			if in.Kind == KindPHI {
				continue
			}
			for _, input := range in.Inputs {
				if input.Block == nil || input.Block == blk {
					continue
				}
				if !Dominates(input.Block, blk) {
					report("instruction %d: input %d's defining block %d does not dominate using block %d", in.id, input.id, input.Block.id, blk.id)
				}
			}
		}
	}
}

// validateIdomReaches checks §4.G: once dominators are built, every
// block's stored Idom must reach it by forward edges (the entry
// block's Idom is itself, trivially satisfying this). BuildDominators
// only ever assigns a block's own predecessors (or their already-built
// Idom chains) as idom candidates, so a passing Idom that can't even
// reach the block it's supposed to dominate means the chain was built
// or mutated incorrectly — a stronger "every path through" check isn't
// sound here, since an ordinary branch's idom never reaches every one
// of its successors by all paths, only this one.
func validateIdomReaches(g *Graph, report func(string, ...any)) {
	if len(g.Blocks) == 0 || g.Blocks[0].Idom == nil {
		return
	}
	for _, blk := range g.Blocks {
		if blk.Idom == nil {
			continue // unreachable block, no dominator to check
		}
		if !Reaches(blk.Idom, blk) {
			report("block %d: stored dominator %d cannot reach it", blk.id, blk.Idom.id)
		}
	}
}

// validateTermination checks the graph has at least one RET and that
// the entry block can reach it — an optimized program can still loop
// forever by construction (an impure Brainfuck loop whose condition
// cell is never cleared), so this only guards against a malformed
// graph with no exit at all, not against a source program that hangs.
func validateTermination(g *Graph, report func(string, ...any)) {
	if len(g.Blocks) == 0 {
		report("graph has no blocks")
		return
	}
	entry := g.Blocks[0]
	found := false
	for _, blk := range g.Blocks {
		if last := blk.Last(); last != nil && last.Kind == KindRET {
			found = true
			if !Reaches(entry, blk) {
				report("block %d: RET is unreachable from the entry block", blk.id)
			}
		}
	}
	if !found {
		report("graph has no RET instruction")
	}
}
