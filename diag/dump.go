// Package diag writes a human-readable dump of a compiled program: a
// header describing when and how large it is, followed by the
// deterministic textual IR (§4.H) and the emitted module's own textual
// form. Grounded on the teacher's internal/buildutil header layout
// (MagicNumber, Version, then body), repurposed from a binary
// container format to a text one.
package diag

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	strftime "github.com/ncruces/go-strftime"

	"bfjit/ir"
	"bfjit/pipeline"
)

// timeFormat is the strftime-style stamp the header uses instead of
// Go's reference-time layout, matching SPEC_FULL.md §2's domain-stack
// wiring for go-strftime.
const timeFormat = "%Y-%m-%d %H:%M:%S"

// Dump writes a full diagnostic report for res to w: a header naming
// the correlation ID, instruction/block counts and an approximate
// in-memory size, then the graph's printed IR, then the emitted
// module's textual form. at is the timestamp recorded in the header —
// callers pass time.Now() in production and a fixed time in tests.
func Dump(w io.Writer, res *pipeline.Result, at time.Time) error {
	blocks, instrs := countGraph(res.Graph)
	stamp := strftime.Format(timeFormat, at)

	fmt.Fprintf(w, "; bfjit dump %s\n", res.ID)
	fmt.Fprintf(w, "; generated %s\n", stamp)
	fmt.Fprintf(w, "; %d blocks, %d instructions, ~%s\n\n",
		blocks, instrs, humanize.Bytes(approxSize(instrs)))

	if _, err := fmt.Fprintln(w, ir.Print(res.Graph)); err != nil {
		return err
	}
	fmt.Fprintln(w, "; --- emitted module ---")
	_, err := fmt.Fprintln(w, res.Module.String())
	return err
}

func countGraph(g *ir.Graph) (blocks, instrs int) {
	blocks = len(g.Blocks)
	for _, b := range g.Blocks {
		instrs += len(b.Instructions())
	}
	return blocks, instrs
}

// approxSize estimates the graph's in-memory footprint as a rough
// multiple of the per-instruction bookkeeping (id, kind, type, two
// slice headers, two pointers): a dump header is a diagnostic nicety,
// not a precise accounting, so a constant-factor estimate is enough.
func approxSize(instrs int) uint64 {
	const perInstr = 96
	return uint64(instrs) * perInstr
}
