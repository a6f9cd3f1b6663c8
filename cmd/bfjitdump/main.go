// Command bfjitdump is a thin, illustrative front-end over the
// pipeline: it compiles one Brainfuck source file and writes a
// diagnostic dump to stdout. It is deliberately minimal — flag
// parsing, REPL mode, and a real CLI surface are out of scope (spec.md
// §1 names the command-line front-end as an external collaborator,
// not a specified component); this exists only so the pipeline has an
// end-to-end manual smoke test.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"bfjit/diag"
	"bfjit/jitconfig"
	"bfjit/pipeline"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <source.bf>\n", os.Args[0])
		os.Exit(2)
	}

	src, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("bfjitdump: %v", err)
	}

	p := pipeline.New()
	res, err := p.Compile(string(src), jitconfig.Config{CellWidth: 8})
	if err != nil {
		log.Fatalf("bfjitdump: %v", err)
	}

	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Println("\033[2m(bfjitdump: writing to a terminal)\033[0m")
	}

	if err := diag.Dump(os.Stdout, res, time.Now()); err != nil {
		log.Fatalf("bfjitdump: %v", err)
	}
}
