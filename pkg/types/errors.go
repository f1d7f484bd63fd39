package types

import (
	"errors"
	"fmt"
)

// ErrNoGenerator is matched by every NoGeneratorError.
var ErrNoGenerator = errors.New("type cannot generate values")

// ErrUnboundSelf is returned when the Self placeholder is tested or
// generated before a class binding replaced it.
var ErrUnboundSelf = errors.New("invalid use of the Self type (was the class contract bound?)")

// Violation reports that a value does not conform to a type. It is
// the only error Test returns for an ordinary non-conforming value.
type Violation struct {
	// Type is the string form of the violated type.
	Type string

	// Value is the offending value.
	Value any

	// Reason describes which constraint failed.
	Reason string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %v is not a valid %s", v.Reason, v.Value, v.Type)
}

func violation(t Type, v any, format string, args ...any) *Violation {
	return &Violation{Type: t.String(), Value: v, Reason: fmt.Sprintf(format, args...)}
}

// IsViolation reports whether err is (or wraps) a Violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}

// NoGeneratorError reports that a type cannot produce sample values.
// This is a capability gap, not a value error.
type NoGeneratorError struct {
	Type   string
	Reason string
}

func (e *NoGeneratorError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s has no generator", e.Type)
	}
	return fmt.Sprintf("%s has no generator: %s", e.Type, e.Reason)
}

// Is lets errors.Is(err, ErrNoGenerator) match.
func (e *NoGeneratorError) Is(target error) bool {
	return target == ErrNoGenerator
}

// InvalidTypeError reports a malformed type declaration.
type InvalidTypeError struct {
	Reason string

	// Err is the underlying sentinel, if any (ErrUnboundSelf).
	Err error
}

func (e *InvalidTypeError) Error() string {
	return "invalid type: " + e.Reason
}

func (e *InvalidTypeError) Unwrap() error { return e.Err }

func invalidType(format string, args ...any) *InvalidTypeError {
	return &InvalidTypeError{Reason: fmt.Sprintf(format, args...)}
}
