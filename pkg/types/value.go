package types

import (
	"math"
	"reflect"
)

// AsFloat returns v as a float64 when v is any Go integer or floating
// point value. Booleans are not numbers.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case nil:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// IsNumber reports whether v has a Go numeric kind.
func IsNumber(v any) bool {
	_, ok := AsFloat(v)
	return ok
}

// IsIntegerKind reports whether v is stored in a Go integer kind.
func IsIntegerKind(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// Equal compares two values the way contracts compare them: numbers
// are compared numerically regardless of their Go kind, everything
// else structurally.
func Equal(a, b any) bool {
	fa, okA := AsFloat(a)
	fb, okB := AsFloat(b)
	if okA && okB {
		return fa == fb
	}
	if okA != okB {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func sliceValues(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
