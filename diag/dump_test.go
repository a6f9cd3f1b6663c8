package diag

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"bfjit/jitconfig"
	"bfjit/pipeline"
)

func TestDumpIncludesHeaderIRAndModule(t *testing.T) {
	p := pipeline.New()
	res, err := p.Compile("++.", jitconfig.Config{CellWidth: 8})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var buf bytes.Buffer
	at := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	if err := Dump(&buf, res, at); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	out := buf.String()
	for _, want := range []string{res.ID.String(), "2026-07-30", "blocks", "instructions", "return", "--- emitted module ---", "define"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump output missing %q:\n%s", want, out)
		}
	}
}
