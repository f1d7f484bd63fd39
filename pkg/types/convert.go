package types

import (
	"fmt"
	"math"
	"reflect"
)

// Convert returns v as a reflect.Value of type t. Numbers convert
// between Go kinds only when no precision is lost, and slices, arrays
// and maps convert element by element. Contracts use it to pass
// generated and condition values to typed Go functions.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if f, ok := AsFloat(v); ok {
		if out, ok := convertNumber(rv, f, t); ok {
			return out, nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use %v (%T) as %s without loss", v, v, t)
	}
	switch t.Kind() {
	case reflect.Slice:
		if vs, ok := sliceValues(v); ok {
			out := reflect.MakeSlice(t, len(vs), len(vs))
			for i, e := range vs {
				ev, err := Convert(e, t.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
				}
				out.Index(i).Set(ev)
			}
			return out, nil
		}
	case reflect.Array:
		if vs, ok := sliceValues(v); ok && len(vs) == t.Len() {
			out := reflect.New(t).Elem()
			for i, e := range vs {
				ev, err := Convert(e, t.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
				}
				out.Index(i).Set(ev)
			}
			return out, nil
		}
	case reflect.Map:
		if rv.Kind() == reflect.Map {
			out := reflect.MakeMapWithSize(t, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				k, err := Convert(iter.Key().Interface(), t.Key())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("key %v: %w", iter.Key().Interface(), err)
				}
				e, err := Convert(iter.Value().Interface(), t.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("value for %v: %w", iter.Key().Interface(), err)
				}
				out.SetMapIndex(k, e)
			}
			return out, nil
		}
	case reflect.Pointer:
		if rv.Type().AssignableTo(t.Elem()) {
			p := reflect.New(t.Elem())
			p.Elem().Set(rv)
			return p, nil
		}
	}
	if rv.Kind() == t.Kind() && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %v (%T) as %s", v, v, t)
}

func convertNumber(rv reflect.Value, f float64, t reflect.Type) (reflect.Value, bool) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if IsIntegerKind(rv.Interface()) {
			if rv.CanInt() {
				out := reflect.New(t).Elem()
				if out.OverflowInt(rv.Int()) {
					return reflect.Value{}, false
				}
				out.SetInt(rv.Int())
				return out, true
			}
			u := rv.Uint()
			out := reflect.New(t).Elem()
			if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
				return reflect.Value{}, false
			}
			out.SetInt(int64(u))
			return out, true
		}
		if math.Floor(f) != f || f < math.MinInt64 || f >= math.MaxInt64 {
			return reflect.Value{}, false
		}
		out := reflect.New(t).Elem()
		if out.OverflowInt(int64(f)) {
			return reflect.Value{}, false
		}
		out.SetInt(int64(f))
		return out, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		var u uint64
		switch {
		case rv.CanUint():
			u = rv.Uint()
		case rv.CanInt():
			if rv.Int() < 0 {
				return reflect.Value{}, false
			}
			u = uint64(rv.Int())
		default:
			if math.Floor(f) != f || f < 0 || f >= math.MaxUint64 {
				return reflect.Value{}, false
			}
			u = uint64(f)
		}
		out := reflect.New(t).Elem()
		if out.OverflowUint(u) {
			return reflect.Value{}, false
		}
		out.SetUint(u)
		return out, true
	case reflect.Float32, reflect.Float64:
		out := reflect.New(t).Elem()
		out.SetFloat(f)
		return out, true
	case reflect.Interface:
		if rv.Type().Implements(t) {
			return rv, true
		}
	}
	return reflect.Value{}, false
}
