package ir

// BuildDominators computes the immediate dominator of every block
// reachable from the entry block (g.Blocks[0]), using the classical
// "walk predecessors with lower id" fixpoint described in §4.B: block
// ids strictly increase along every forward edge, so a single pass in
// id order suffices — a predecessor with a smaller id has already had
// its own Idom finalized, and loop back-edges (predecessor id >= the
// block's own id) are correctly ignored by the `<` filter.
//
// The entry block's Idom is set to itself as a sentinel (it has no
// predecessors to dominate it by). Unreachable blocks are left with a
// nil Idom.
func BuildDominators(g *Graph) {
	if len(g.Blocks) == 0 {
		return
	}
	entry := g.Blocks[0]
	entry.Idom = entry
	for _, b := range g.Blocks {
		if b == entry {
			continue
		}
		var idom *Block
		for _, p := range b.Preds {
			if p.id >= b.id {
				continue // back-edge; ignored per §4.B
			}
			if p.Idom == nil && p != entry {
				continue // predecessor not yet reached by any forward edge
			}
			if idom == nil {
				idom = p
			} else {
				idom = assignCommonDominator(idom, p)
			}
		}
		b.Idom = idom
	}
}

// assignCommonDominator climbs the two Idom chains, always advancing
// whichever pointer has the higher id, until they meet.
func assignCommonDominator(a, b *Block) *Block {
	for a.id != b.id {
		for a.id > b.id {
			a = a.Idom
		}
		for b.id > a.id {
			b = b.Idom
		}
	}
	return a
}

// DominatedBy reports whether d dominates b: every path from the entry
// block to b passes through d. Requires BuildDominators to have run.
func DominatedBy(b, d *Block) bool {
	for cur := b; cur != nil; {
		if cur == d {
			return true
		}
		if cur.Idom == cur {
			return false // entry sentinel, no match found above it
		}
		cur = cur.Idom
	}
	return false
}

// Dominates reports whether d dominates b.
func Dominates(d, b *Block) bool { return DominatedBy(b, d) }

// Reaches reports whether to is reachable from from by following zero
// or more successor edges (from reaches itself trivially).
func Reaches(from, to *Block) bool {
	return bfsContains(from, to, func(b *Block) []*Block { return b.Succs })
}

// ReachedBy reports whether b is reachable from from — the same
// relation as Reaches with its arguments named from the other side.
func ReachedBy(b, from *Block) bool { return Reaches(from, b) }

func bfsContains(start, target *Block, next func(*Block) []*Block) bool {
	if start == target {
		return true
	}
	visited := map[*Block]bool{start: true}
	queue := []*Block{start}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		for _, n := range next(b) {
			if n == target {
				return true
			}
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

// AlwaysReaches reports whether every forward path out of from that
// reaches a block with no successors (a RET-terminated block) passes
// through to first — i.e. to cannot be bypassed on the way out.
// from always reaches itself.
func AlwaysReaches(from, to *Block) bool {
	if from == to {
		return true
	}
	visited := map[*Block]bool{}
	var escapes func(b *Block) bool
	escapes = func(b *Block) bool {
		if b == to {
			return false // this path is blocked here; it doesn't escape
		}
		if visited[b] {
			return false
		}
		visited[b] = true
		if len(b.Succs) == 0 {
			return true // reached a terminus without passing through to
		}
		for _, s := range b.Succs {
			if escapes(s) {
				return true
			}
		}
		return false
	}
	return !escapes(from)
}

// AlwaysReachedBy reports whether every forward path out of from
// passes through b before terminating.
func AlwaysReachedBy(b, from *Block) bool { return AlwaysReaches(from, b) }
