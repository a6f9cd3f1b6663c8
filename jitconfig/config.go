package jitconfig

import (
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Config is the configuration surface §6 lists as consumed by the
// core: cell width and EOF behavior flow into IR type choices; the
// tape extents are external to the core (the caller owns the tape) but
// travel with the config since the backend needs them to size the
// allocation it hands back. MinBackendVersion is this module's own
// addition: the lowest `llir/llvm`-backed codegen version a compiled
// module is willing to run against.
type Config struct {
	CellWidth         int // 8, 16, 32, or 64
	EOFValue          int64
	SizeLeft          int64
	SizeRight         int64
	MinBackendVersion string // semver, e.g. "v0.3.0"; empty means unconstrained
}

// Validate enforces every constraint the core is allowed to assume
// holds once a Config reaches it (§7 class 2: these are the only
// errors this module surfaces; everything downstream trusts a
// validated Config without re-checking).
func (c Config) Validate() error {
	switch c.CellWidth {
	case 8, 16, 32, 64:
	default:
		return newConfigError(InvalidCellWidth, "cell width %d is not one of 8, 16, 32, 64", c.CellWidth)
	}
	// A 64-bit cell's representable range already exceeds what an int64
	// EOFValue can express, so only the narrower widths need the check.
	if c.EOFValue < 0 {
		return newConfigError(InvalidEOFValue, "EOF value %d is negative", c.EOFValue)
	}
	if c.CellWidth != 64 {
		if max := int64(1)<<uint(c.CellWidth) - 1; c.EOFValue > max {
			return newConfigError(InvalidEOFValue, "EOF value %d does not fit in an unsigned %d-bit cell", c.EOFValue, c.CellWidth)
		}
	}
	if c.MinBackendVersion != "" && !semver.IsValid(c.MinBackendVersion) {
		return newConfigError(InvalidVersion, "%q is not a valid semver version", c.MinBackendVersion)
	}
	return nil
}

// SatisfiesBackend reports whether a backend reporting backendVersion
// (semver) meets this config's MinBackendVersion floor. An unset floor
// is satisfied by anything.
func (c Config) SatisfiesBackend(backendVersion string) bool {
	if c.MinBackendVersion == "" {
		return true
	}
	return semver.Compare(backendVersion, c.MinBackendVersion) >= 0
}

// ParseSize parses a tape-extent size string such as "64k", "2M", or a
// bare byte count, per §6's memory.sizeLeft/sizeRight options. Suffixes
// are case-insensitive byte multiples (k=1024, m=1024k, g=1024m); this
// lives outside ir/bf precisely so the core never needs to import a
// parser (§1: the size-string parser is named as out of scope for the
// core specifically, not for config plumbing generally).
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, newConfigError(InvalidSizeSuffix, "empty size string")
	}
	mult := int64(1)
	switch last := s[len(s)-1]; last {
	case 'k', 'K':
		mult = 1024
		s = s[:len(s)-1]
	case 'm', 'M':
		mult = 1024 * 1024
		s = s[:len(s)-1]
	case 'g', 'G':
		mult = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, newConfigError(InvalidSizeSuffix, "%q is not a valid size", s)
	}
	return n * mult, nil
}
