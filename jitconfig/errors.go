// Package jitconfig holds the configuration surface the core IR
// assumes is already validated: cell width, EOF behavior, tape
// extents, and the minimum backend version a compiled module requires.
package jitconfig

import "fmt"

// ErrorType classifies a configuration error (§7 class 2 — these are
// the only errors this module ever returns; Brainfuck source itself
// never fails to parse, and internal invariant violations panic rather
// than return an error).
type ErrorType string

const (
	InvalidCellWidth  ErrorType = "InvalidCellWidth"
	InvalidSizeSuffix ErrorType = "InvalidSizeSuffix"
	InvalidEOFValue   ErrorType = "InvalidEOFValue"
	InvalidVersion    ErrorType = "InvalidVersion"
)

// ConfigError reports a bad configuration value. Grounded on the
// teacher's SentraError shape, narrowed to a type and a message —
// configuration errors have no source location to point at.
type ConfigError struct {
	Type    ErrorType
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newConfigError(t ErrorType, format string, args ...any) *ConfigError {
	return &ConfigError{Type: t, Message: fmt.Sprintf(format, args...)}
}
