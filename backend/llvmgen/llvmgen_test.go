package llvmgen

import (
	"strings"
	"testing"

	"bfjit/bf"
	"bfjit/ir"
	"bfjit/jitconfig"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	g := ir.NewGraph(8, 0)
	ir.Lower(bf.Parse(src), g)
	ir.BuildDominators(g)
	ir.ResolveRegs(g)
	ir.Fold(g)
	ir.ResolveTypes(g)
	ir.Validate(g)

	m, err := NewEnv().Emit(g, jitconfig.Config{CellWidth: 8})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	return m.String()
}

func TestEmitDeclaresExternalSymbols(t *testing.T) {
	out := compile(t, "+++.")
	for _, want := range []string{"declare void @bf_putchar", "declare i32 @bf_getchar", "define i8* @bf_main"} {
		if !strings.Contains(out, want) {
			t.Errorf("module missing %q:\n%s", want, out)
		}
	}
}

func TestEmitLoopHasBackEdgeAndPhiarithmetic(t *testing.T) {
	out := compile(t, "+[>+<-]")
	if !strings.Contains(out, "phi") {
		t.Errorf("expected a phi in a module compiled from a loop:\n%s", out)
	}
	if strings.Count(out, "br ") < 2 {
		t.Errorf("expected at least a conditional and an unconditional branch:\n%s", out)
	}
}

func TestEmitRejectsInvalidConfig(t *testing.T) {
	g := ir.NewGraph(8, 0)
	ir.Lower(bf.Parse(""), g)
	ir.ResolveRegs(g)
	if _, err := NewEnv().Emit(g, jitconfig.Config{CellWidth: 3}); err == nil {
		t.Fatal("expected an error for an invalid cell width")
	}
}
