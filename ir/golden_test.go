package ir

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"golang.org/x/tools/txtar"

	"bfjit/bf"
)

// golden files are txtar archives with two sections: "source" (a
// Brainfuck program) and "ir" (the exact Print output once that
// program has gone through the full pipeline up to, but not
// including, codegen).
func TestGoldenIRDumps(t *testing.T) {
	paths, err := filepath.Glob("../testdata/golden/*.bf.ir")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no golden files found")
	}

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			arc, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatal(errors.Wrapf(err, "parsing golden file %s", path))
			}
			source, ok := section(arc, "source")
			if !ok {
				t.Fatalf("%s: missing 'source' section", path)
			}
			wantIR, ok := section(arc, "ir")
			if !ok {
				t.Fatalf("%s: missing 'ir' section", path)
			}

			g := NewGraph(8, 0)
			Lower(bf.Parse(source), g)
			BuildDominators(g)
			ResolveRegs(g)
			Fold(g)
			ResolveTypes(g)
			Validate(g)

			gotIR := strings.TrimRight(Print(g), "\n")
			wantIR = strings.TrimRight(wantIR, "\n")
			if gotIR != wantIR {
				diff := pretty.Diff(strings.Split(wantIR, "\n"), strings.Split(gotIR, "\n"))
				t.Errorf("%s: IR dump mismatch (want vs got):\n%s", path, strings.Join(diff, "\n"))
			}
		})
	}
}

func section(arc *txtar.Archive, name string) (string, bool) {
	for _, f := range arc.Files {
		if f.Name == name {
			return string(f.Data), true
		}
	}
	return "", false
}
