package jitconfig

import "testing"

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	c := Config{CellWidth: 8, EOFValue: 0}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsBadCellWidth(t *testing.T) {
	c := Config{CellWidth: 12}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error for cell width 12")
	}
	if ce, ok := err.(*ConfigError); !ok || ce.Type != InvalidCellWidth {
		t.Fatalf("got %v, want InvalidCellWidth", err)
	}
}

func TestValidateRejectsNegativeEOFValue(t *testing.T) {
	c := Config{CellWidth: 8, EOFValue: -1}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error for negative EOF value")
	}
	if ce, ok := err.(*ConfigError); !ok || ce.Type != InvalidEOFValue {
		t.Fatalf("got %v, want InvalidEOFValue", err)
	}
}

func TestValidateRejectsEOFValueWiderThanCell(t *testing.T) {
	c := Config{CellWidth: 8, EOFValue: 256}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error for EOF value overflowing an 8-bit cell")
	}
	if ce, ok := err.(*ConfigError); !ok || ce.Type != InvalidEOFValue {
		t.Fatalf("got %v, want InvalidEOFValue", err)
	}
}

func TestValidateAcceptsMaxEOFValueForWidth(t *testing.T) {
	c := Config{CellWidth: 8, EOFValue: 255}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateAcceptsAnyNonNegativeEOFValueAt64Bits(t *testing.T) {
	c := Config{CellWidth: 64, EOFValue: 1 << 40}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsMalformedVersion(t *testing.T) {
	c := Config{CellWidth: 8, MinBackendVersion: "not-a-version"}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error for malformed version")
	}
	if ce, ok := err.(*ConfigError); !ok || ce.Type != InvalidVersion {
		t.Fatalf("got %v, want InvalidVersion", err)
	}
}

func TestSatisfiesBackendUnsetFloorAcceptsAnything(t *testing.T) {
	c := Config{CellWidth: 8}
	if !c.SatisfiesBackend("v0.0.1") {
		t.Fatal("unset MinBackendVersion should accept any backend version")
	}
}

func TestSatisfiesBackendComparesSemver(t *testing.T) {
	c := Config{CellWidth: 8, MinBackendVersion: "v1.2.0"}
	if c.SatisfiesBackend("v1.1.9") {
		t.Fatal("v1.1.9 should not satisfy a v1.2.0 floor")
	}
	if !c.SatisfiesBackend("v1.2.0") {
		t.Fatal("v1.2.0 should satisfy a v1.2.0 floor")
	}
}

func TestParseSizeHandlesSuffixes(t *testing.T) {
	cases := map[string]int64{
		"1024":  1024,
		"64k":   64 * 1024,
		"2M":    2 * 1024 * 1024,
		"1g":    1024 * 1024 * 1024,
		"  8k ": 8 * 1024,
	}
	for s, want := range cases {
		got, err := ParseSize(s)
		if err != nil {
			t.Fatalf("ParseSize(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseSize(%q) = %d, want %d", s, got, want)
		}
	}
}

func TestParseSizeRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "abc", "12x"} {
		if _, err := ParseSize(s); err == nil {
			t.Errorf("ParseSize(%q): expected error", s)
		}
	}
}
