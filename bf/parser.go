package bf

// Parse turns source text into a Program. It rejects nothing: every
// byte that isn't one of the eight Brainfuck command characters is
// silently discarded, and a loop left open at end of input is treated
// as implicitly closed there. Brainfuck is total over any input string
// under this design; Parse never fails.
//
// Parse runs two passes over src, each with its own position counter
// reset to zero. The first pass (scan) walks the bracket structure and
// records, for every '[', whether its loop is pure (movement only, no
// cell or I/O effects). The second pass (emit) walks again, consulting
// the cache scan built rather than re-deriving purity — the two passes
// must stay in lockstep or the cache indices (keyed by the byte offset
// of each '[') stop lining up with the second walk.
func Parse(src string) *Program {
	data := []byte(src)
	cache := scan(data)
	return emit(data, cache)
}

func isBFCommand(c byte) bool {
	switch c {
	case '+', '-', '<', '>', '.', ',', '[', ']':
		return true
	default:
		return false
	}
}

// scan walks the bracket structure top-down and returns, for every '['
// in data (keyed by byte offset), whether that loop is pure.
func scan(data []byte) map[int]LoopInfo {
	cache := make(map[int]LoopInfo)
	pos := 0
	for pos < len(data) {
		if data[pos] == ']' {
			// Stray close with no matching open: discarded, same as
			// any other non-Brainfuck character would be.
			pos++
			continue
		}
		scanBody(data, &pos, cache)
	}
	return cache
}

// scanBody scans from *pos up to (but not consuming) the next ']' or
// end of input, recording LoopInfo for every nested '[' it crosses, and
// reports whether the body it scanned is impure.
func scanBody(data []byte, pos *int, cache map[int]LoopInfo) bool {
	impure := false
	for *pos < len(data) {
		switch data[*pos] {
		case '+', '-', '.', ',':
			impure = true
			*pos++
		case '[':
			open := *pos
			*pos++
			bodyImpure := scanBody(data, pos, cache)
			cache[open] = LoopInfo{Pure: !bodyImpure}
			if bodyImpure {
				impure = true
			}
			if *pos < len(data) && data[*pos] == ']' {
				*pos++
			}
			// Unclosed: end of input closes it implicitly.
		case ']':
			return impure
		default:
			// '<', '>', or any non-Brainfuck character.
			*pos++
		}
	}
	return impure
}

// emit walks data a second time, consulting cache, and builds a Program.
func emit(data []byte, cache map[int]LoopInfo) *Program {
	prog := &Program{}
	pos := 0
	for pos < len(data) {
		if data[pos] == ']' {
			// Stray close with no matching open: discarded, as in scan.
			pos++
			continue
		}
		emitBody(data, &pos, cache, prog)
	}
	return prog
}

func emitBody(data []byte, pos *int, cache map[int]LoopInfo, prog *Program) {
	for *pos < len(data) {
		switch data[*pos] {
		case '+':
			n := countRun(data, pos, '+')
			prog.Block = append(prog.Block, Instr{Op: OpAdd, Arg: n})
		case '-':
			n := countRun(data, pos, '-')
			prog.Block = append(prog.Block, Instr{Op: OpSub, Arg: n})
		case '.':
			*pos++
			prog.Block = append(prog.Block, Instr{Op: OpPutChar})
		case ',':
			*pos++
			prog.Block = append(prog.Block, Instr{Op: OpGetChar})
		case '<', '>':
			emitSeek(data, pos, cache, prog)
		case '[':
			if cache[*pos].Pure {
				emitSeek(data, pos, cache, prog)
				continue
			}
			*pos++ // consume '['
			prog.Block = append(prog.Block, Instr{Op: OpLoop})
			emitBody(data, pos, cache, prog)
			if *pos < len(data) && data[*pos] == ']' {
				*pos++
			}
			prog.Block = append(prog.Block, Instr{Op: OpEnd})
		case ']':
			return
		default:
			*pos++
		}
	}
}

// emitSeek consumes a maximal run of pointer movement and pure loops
// starting at *pos, builds its Seek tree, and appends a single OpSeek
// instruction referencing it.
func emitSeek(data []byte, pos *int, cache map[int]LoopInfo, prog *Program) {
	s := parseSeek(data, pos, cache)
	idx := len(prog.Seeks)
	prog.Seeks = append(prog.Seeks, s)
	prog.Block = append(prog.Block, Instr{Op: OpSeek, Arg: idx})
}

// parseSeek builds one Seek tree: a net offset, followed by zero or
// more (nested pure loop, post-loop offset) pairs.
func parseSeek(data []byte, pos *int, cache map[int]LoopInfo) *Seek {
	s := &Seek{Offset: consumeOffset(data, pos)}
	for *pos < len(data) && data[*pos] == '[' && cache[*pos].Pure {
		*pos++ // consume '['
		nested := parseSeek(data, pos, cache)
		if *pos < len(data) && data[*pos] == ']' {
			*pos++
		}
		s.Loops = append(s.Loops, SeekLoop{Seek: nested, Offset: consumeOffset(data, pos)})
	}
	return s
}

// consumeOffset accumulates a run of '<'/'>' (net pointer displacement),
// treating any interleaved non-Brainfuck character as transparent.
func consumeOffset(data []byte, pos *int) int {
	offset := 0
	for *pos < len(data) {
		switch data[*pos] {
		case '>':
			offset++
			*pos++
		case '<':
			offset--
			*pos++
		default:
			if isBFCommand(data[*pos]) {
				return offset
			}
			*pos++
		}
	}
	return offset
}

// countRun accumulates a run of the command byte c, treating any
// interleaved non-Brainfuck character as transparent.
func countRun(data []byte, pos *int, c byte) int {
	n := 0
	for *pos < len(data) {
		switch {
		case data[*pos] == c:
			n++
			*pos++
		case isBFCommand(data[*pos]):
			return n
		default:
			*pos++
		}
	}
	return n
}
