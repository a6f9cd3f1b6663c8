package cache

import (
	"sync"
	"sync/atomic"
	"testing"

	"bfjit/jitconfig"
)

func TestNewKeyStableAndSensitiveToConfig(t *testing.T) {
	cfg := jitconfig.Config{CellWidth: 8}
	a := NewKey("+++.", cfg)
	b := NewKey("+++.", cfg)
	if a != b {
		t.Fatal("same source and config must hash to the same key")
	}

	cfg16 := cfg
	cfg16.CellWidth = 16
	if a == NewKey("+++.", cfg16) {
		t.Fatal("different cell widths must not collide")
	}
	if a == NewKey("+++,", cfg) {
		t.Fatal("different source must not collide")
	}
}

func TestCompileDedupesConcurrentCallers(t *testing.T) {
	c := New()
	key := NewKey("+++.", jitconfig.Config{CellWidth: 8})

	var calls int32
	fn := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		return "result", nil
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Compile(key, fn); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Fatalf("expected fn to run once, ran %d times", calls)
	}
	if c.Len() != 1 {
		t.Fatalf("expected one cache entry, got %d", c.Len())
	}
}

func TestCompileDoesNotCacheErrors(t *testing.T) {
	c := New()
	key := NewKey("+++.", jitconfig.Config{CellWidth: 8})

	if _, err := c.Compile(key, func() (any, error) { return nil, errBoom }); err == nil {
		t.Fatal("expected the error to propagate")
	}
	if c.Len() != 0 {
		t.Fatal("a failed compile must not be cached")
	}

	if _, err := c.Compile(key, func() (any, error) { return "ok", nil }); err != nil {
		t.Fatalf("retry after a failure should succeed: %v", err)
	}
}

type boomErr struct{}

func (boomErr) Error() string { return "boom" }

var errBoom = boomErr{}
