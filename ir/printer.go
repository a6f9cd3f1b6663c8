package ir

import (
	"fmt"
	"io"
	"strings"
)

// Print renders g as deterministic text (§4.H, format pinned by §6):
// blocks as `.lN:` labels in id order, one line per named instruction
// in list order. A named instruction with at least one use prints as
// `%id = body`; one with none (STR, PUTCHAR, the terminators) prints
// bare `body`. Any IMM, and any other pure non-phi instruction with
// exactly one use in its own block and no impure instruction between
// the two, is inlined into that use's operand text instead of getting
// its own line. Grounded on the teacher's deterministic rewrite-to-text
// idiom: a pure function from IR to bytes, no hidden state, safe to
// diff across runs.
func Print(g *Graph) string {
	var sb strings.Builder
	Fprint(&sb, g)
	return sb.String()
}

// Fprint is Print, writing to w instead of allocating a string.
func Fprint(w io.Writer, g *Graph) {
	p := &printer{w: w, inlined: map[*Instruction]bool{}}
	for _, blk := range g.Blocks {
		p.markInlined(blk)
	}
	for _, blk := range g.Blocks {
		p.block(blk)
	}
}

type printer struct {
	w       io.Writer
	inlined map[*Instruction]bool
}

// markInlined decides, for every instruction in blk, whether it will
// be printed inline at its use rather than on its own named line: an
// IMM always is; any other pure, non-phi, single-use instruction is,
// but only when its one use sits in the same block with no impure
// instruction lying strictly between the definition and the use — an
// impure instruction in between is an ordering point this value can't
// be floated across (§4.H).
func (p *printer) markInlined(blk *Block) {
	for _, in := range blk.Instructions() {
		if in.Kind == KindIMM {
			p.inlined[in] = true
			continue
		}
		if in.Kind == KindPHI || !in.Kind.Pure() || len(in.Outputs) != 1 {
			continue
		}
		use := in.Outputs[0]
		if use.Block != in.Block || hasImpureBetween(in, use) {
			continue
		}
		p.inlined[in] = true
	}
}

// hasImpureBetween reports whether an impure instruction sits strictly
// between def and use in their shared block's list, walking forward
// from def (which always precedes its own use).
func hasImpureBetween(def, use *Instruction) bool {
	for cur := def.Next; cur != nil && cur != use; cur = cur.Next {
		if !cur.Kind.Pure() {
			return true
		}
	}
	return false
}

func (p *printer) block(blk *Block) {
	fmt.Fprintf(p.w, ".l%d:\n", blk.id)
	for _, in := range blk.Instructions() {
		if p.inlined[in] {
			continue
		}
		p.line(blk, in)
	}
}

func (p *printer) line(blk *Block, in *Instruction) {
	switch in.Kind {
	case KindGOTO:
		fmt.Fprintf(p.w, "  goto .l%d\n", blk.Succs[0].id)
	case KindIF:
		fmt.Fprintf(p.w, "  if %s then .l%d else .l%d\n", p.expr(in.Inputs[0], 0), blk.Succs[0].id, blk.Succs[1].id)
	case KindRET:
		fmt.Fprintf(p.w, "  return %s\n", p.expr(in.Inputs[0], 0))
	case KindSTR:
		fmt.Fprintf(p.w, "  %s <- %s\n", p.expr(in.Inputs[0], 0), p.expr(in.Inputs[1], 0))
	case KindPUTCHAR:
		fmt.Fprintf(p.w, "  putchar %s\n", p.expr(in.Inputs[0], 0))
	case KindSETREG:
		fmt.Fprintf(p.w, "  setreg %s, %s\n", in.ImmReg, p.expr(in.Inputs[0], 0))
	case KindPHI:
		fmt.Fprintf(p.w, "  %%%d = %s phi %s\n", in.id, in.Type, p.phiInputs(blk, in))
	default:
		if len(in.Outputs) == 0 {
			fmt.Fprintf(p.w, "  %s\n", p.atomBody(in))
		} else {
			fmt.Fprintf(p.w, "  %%%d = %s %s\n", in.id, in.Type, p.atomBody(in))
		}
	}
}

// phiInputs formats a phi's operands keyed by predecessor label, in
// predecessor order: `.lA: %v, .lB: %w`.
func (p *printer) phiInputs(blk *Block, in *Instruction) string {
	parts := make([]string, len(in.Inputs))
	for i, val := range in.Inputs {
		parts[i] = fmt.Sprintf(".l%d: %s", blk.Preds[i].id, p.expr(val, 0))
	}
	return strings.Join(parts, ", ")
}

// atomBody renders a named (non-inlined) instruction's own operator and
// operands, without the "%N =" prefix Print already added.
func (p *printer) atomBody(in *Instruction) string {
	switch in.Kind {
	case KindIMM:
		return fmt.Sprintf("imm %d", in.ImmInt)
	case KindREG:
		return fmt.Sprintf("reg %s", in.ImmReg)
	case KindGETCHAR:
		return "getchar"
	case KindNOP:
		return "nop"
	case KindADD:
		return fmt.Sprintf("%s + %s", p.expr(in.Inputs[0], 1), p.expr(in.Inputs[1], 2))
	case KindSUB:
		return fmt.Sprintf("%s - %s", p.expr(in.Inputs[0], 1), p.expr(in.Inputs[1], 2))
	case KindGEP:
		return fmt.Sprintf("[%s + %s]", p.expr(in.Inputs[0], 0), p.expr(in.Inputs[1], 0))
	case KindLD:
		return fmt.Sprintf("[%s]", p.expr(in.Inputs[0], 0))
	default:
		return in.Kind.String()
	}
}

// expr renders in as it appears nested inside another instruction's
// operand list: its name if not inlined, or its inlined body text
// otherwise. minPrec is the binding strength the caller requires of
// this position; arithmetic (+/-, precedence 1) parenthesizes itself
// when asked for something tighter, everything else is already atomic
// (precedence 2) and never needs parens.
func (p *printer) expr(in *Instruction, minPrec int) string {
	if !p.inlined[in] {
		return fmt.Sprintf("%%%d", in.id)
	}
	switch in.Kind {
	case KindADD:
		s := p.expr(in.Inputs[0], 1) + " + " + p.expr(in.Inputs[1], 2)
		if minPrec > 1 {
			return "(" + s + ")"
		}
		return s
	case KindSUB:
		s := p.expr(in.Inputs[0], 1) + " - " + p.expr(in.Inputs[1], 2)
		if minPrec > 1 {
			return "(" + s + ")"
		}
		return s
	case KindIMM:
		return fmt.Sprintf("%d", in.ImmInt)
	case KindREG:
		return fmt.Sprintf("reg(%s)", in.ImmReg)
	case KindGETCHAR:
		return "getchar()"
	case KindGEP:
		return fmt.Sprintf("[%s + %s]", p.expr(in.Inputs[0], 0), p.expr(in.Inputs[1], 0))
	case KindLD:
		return fmt.Sprintf("[%s]", p.expr(in.Inputs[0], 0))
	case KindNOP:
		return "nop()"
	default:
		return in.Kind.String()
	}
}
