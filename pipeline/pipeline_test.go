package pipeline

import (
	"strings"
	"testing"

	"bfjit/backend"
	"bfjit/cache"
	"bfjit/jitconfig"
)

func TestCompileProducesAModule(t *testing.T) {
	p := New()
	res, err := p.Compile("++++[>++<-]>.", jitconfig.Config{CellWidth: 8})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Module == nil {
		t.Fatal("expected a non-nil module")
	}
	if !strings.Contains(res.Module.String(), "define") {
		t.Fatalf("module has no function definition:\n%s", res.Module.String())
	}
	if res.ID.String() == "" {
		t.Fatal("expected a non-empty correlation ID")
	}
	if res.Signature.CellWidth != backend.CellI8 {
		t.Fatalf("Signature.CellWidth = %v, want %v", res.Signature.CellWidth, backend.CellI8)
	}
}

func TestCompileRejectsInvalidConfig(t *testing.T) {
	p := New()
	if _, err := p.Compile(".", jitconfig.Config{CellWidth: 12}); err == nil {
		t.Fatal("expected an error for an invalid cell width")
	}
}

func TestCompileWithCacheReusesResult(t *testing.T) {
	c := cache.New()
	p := New(WithCache(c))
	cfg := jitconfig.Config{CellWidth: 8}

	first, err := p.Compile("+.", cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	second, err := p.Compile("+.", cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if first.ID != second.ID {
		t.Fatal("expected the cached Result to be returned unchanged on the second call")
	}
	if c.Len() != 1 {
		t.Fatalf("expected exactly one cache entry, got %d", c.Len())
	}
}

func TestCompileWithoutCacheReCompiles(t *testing.T) {
	p := New()
	cfg := jitconfig.Config{CellWidth: 8}

	first, err := p.Compile("+.", cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	second, err := p.Compile("+.", cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("without a cache each Compile call should produce a distinct correlation ID")
	}
}
