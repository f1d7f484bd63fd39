// Package types defines the value predicates used by contracts. Each
// Type pairs a validity test with a generator of representative and
// boundary sample values, and types compose through And, Or, Not and
// the collection wrappers.
//
// Generated values must always pass the type's own Test. The property
// is checked for every built-in type by this package's tests.
package types

import (
	"fmt"
	"reflect"
	"strings"
)

// Type is a named predicate over values.
type Type interface {
	// Test returns nil when v conforms and a *Violation otherwise.
	// Test has no side effects.
	Test(v any) error

	// Generate returns a finite list of sample values chosen to
	// exercise boundaries. Types that cannot generate return a
	// *NoGeneratorError.
	Generate() ([]any, error)

	// String returns the declaration form of the type, e.g.
	// "Range(0, 1)".
	String() string
}

// Contains reports whether v passes t's test.
func Contains(t Type, v any) bool {
	return t.Test(v) == nil
}

// From converts a user-supplied type specification into a Type. A nil
// specification is Nothing, a Type is returned as is and a
// reflect.Type is lifted with Generic.
func From(spec any) (Type, error) {
	switch s := spec.(type) {
	case nil:
		return Nothing{}, nil
	case Type:
		return s, nil
	case reflect.Type:
		return NewGeneric(s)
	default:
		return nil, invalidType("%v (%T) is not a type", spec, spec)
	}
}

// MustFrom is like From but panics on error. It is intended for
// package-level contract declarations.
func MustFrom(spec any) Type {
	t, err := From(spec)
	if err != nil {
		panic(err)
	}
	return t
}

func allFrom(specs []any) ([]Type, error) {
	out := make([]Type, 0, len(specs))
	for _, s := range specs {
		t, err := From(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func reprList(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func reprValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

// filterValid keeps the generated values that pass every type.
func filterValid(values []any, ts ...Type) []any {
	var out []any
	for _, v := range values {
		ok := true
		for _, t := range ts {
			if t.Test(v) != nil {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, v)
		}
	}
	return out
}
