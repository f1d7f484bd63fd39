package types

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
)

func numericTypes() []Type {
	return []Type{
		Numeric{}, ExtendedReal{}, Number{}, Integer{}, Natural0{}, Natural1{},
		MustRangeOpen(-1, 1.3),
		MustRangeClosedOpen(.4, 1.7),
		MustRangeOpenClosed(-7, -2),
		MustRange(0, 1),
		MustRange(-.2, 3.1415),
		MustRangeOpen(0, 10),
		Positive0{}, Positive{},
	}
}

func stringTypes() []Type {
	return []Type{String{}, Identifier{}, Alphanumeric{}, Latin{}}
}

// builtinTypes returns one instance of every built-in type family,
// including composite types built over the scalar ones.
func builtinTypes() []Type {
	scalars := append(numericTypes(), stringTypes()...)
	ts := append([]Type{}, scalars...)
	ts = append(ts,
		Boolean{}, Nothing{},
		Constant{Value: "xyz"}, Constant{Value: 123.45}, Constant{Value: true},
		Constant{Value: []any{}}, Constant{Value: map[string]any{}},
		Unchecked{Of: Number{}},
		PositionalArguments{}, KeywordArguments{},
		MustAnd(Natural0{}, MustRange(0, 10)),
		MustOr(Boolean{}, MustRange(0, 10)),
		MustAnd(MustRange(0, 10), MustNot(MustRange(3, 5))),
		MustAnd(MustRange(0, 10), MustNot(MustRange(0, 5))),
		Set("a", "b", "c"),
		Set(1.3, "abc", -1),
		MustParametersDict(map[string]any{}, false),
		MustTuple(Number{}),
		MustTuple(Number{}, String{}, Number{}),
	)
	params := map[string]any{}
	for i, s := range scalars {
		ts = append(ts,
			MustList(s),
			MustDict(String{}, s),
			MustDict(Number{}, s),
			MustTuple(Number{}, s),
		)
		params[string(rune('a'+i))] = s
	}
	ts = append(ts, MustParametersDict(params, false), MustParametersDict(params, true))
	for _, elem := range append(numericTypes(), nil) {
		for _, d := range []int{1, 2, 3, 0} {
			ts = append(ts, MustNDArray(d, elem))
		}
	}
	return ts
}

// ---------------------------------------------------------------------------
// Generator / validator consistency
// ---------------------------------------------------------------------------

func TestGenerate_ValuesPassTest(t *testing.T) {
	for _, typ := range builtinTypes() {
		t.Run(typ.String(), func(t *testing.T) {
			vals, err := typ.Generate()
			if err != nil {
				t.Fatalf("Generate() error: %v", err)
			}
			if len(vals) == 0 {
				t.Fatalf("Generate() returned no values")
			}
			for _, v := range vals {
				if err := typ.Test(v); err != nil {
					t.Errorf("Test(%v) = %v, want nil", short(v), err)
				}
			}
		})
	}
}

func short(v any) any {
	if vs, ok := sliceValues(v); ok && len(vs) > 5 {
		return fmt.Sprintf("[... len %d]", len(vs))
	}
	if s, ok := v.(string); ok && len(s) > 20 {
		return s[:20] + "..."
	}
	return v
}

func TestRefinements_AreStrict(t *testing.T) {
	tests := []struct {
		parent, child Type
	}{
		{Numeric{}, ExtendedReal{}},
		{Numeric{}, Number{}},
		{Number{}, Integer{}},
		{Integer{}, Natural0{}},
		{Natural0{}, Natural1{}},
		{Number{}, Positive0{}},
		{Positive0{}, Positive{}},
		{MustRange(0, 1), MustRangeClosedOpen(0, 1)},
		{MustRange(0, 1), MustRangeOpenClosed(0, 1)},
		{MustRangeOpenClosed(0, 1), MustRangeOpen(0, 1)},
		{MustRangeClosedOpen(0, 1), MustRangeOpen(0, 1)},
		{MustRange(0, 1), MustRange(1, 2)},
		{String{}, Identifier{}},
		{Identifier{}, Alphanumeric{}},
		{Alphanumeric{}, Latin{}},
	}
	for _, tt := range tests {
		t.Run(tt.parent.String()+"/"+tt.child.String(), func(t *testing.T) {
			vals, err := tt.parent.Generate()
			if err != nil {
				t.Fatalf("Generate() error: %v", err)
			}
			for _, v := range vals {
				if tt.child.Test(v) != nil {
					return
				}
			}
			t.Errorf("every sample of %s passes %s", tt.parent, tt.child)
		})
	}
}

func TestRefinements_ChildSamplesPassParent(t *testing.T) {
	pairs := [][2]Type{
		{Natural0{}, Natural1{}},
		{Integer{}, Natural0{}},
		{Number{}, Integer{}},
		{Positive0{}, Positive{}},
		{String{}, Latin{}},
	}
	for _, p := range pairs {
		vals, _ := p[1].Generate()
		for _, v := range vals {
			if err := p[0].Test(v); err != nil {
				t.Errorf("%s.Test(%v) = %v, want nil", p[0], short(v), err)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Numeric edge cases
// ---------------------------------------------------------------------------

func TestNumeric_Values(t *testing.T) {
	tests := []struct {
		typ  Type
		v    any
		want bool
	}{
		{Numeric{}, math.NaN(), true},
		{Numeric{}, "3", false},
		{Numeric{}, true, false},
		{ExtendedReal{}, math.Inf(-1), true},
		{ExtendedReal{}, math.NaN(), false},
		{Number{}, math.Inf(1), false},
		{Number{}, int8(4), true},
		{Number{}, uint64(4), true},
		{Number{}, float32(0.5), true},
		{Integer{}, 2.0, true},
		{Integer{}, 2.5, false},
		{Integer{}, int32(-7), true},
		{Natural0{}, 0, true},
		{Natural0{}, -1, false},
		{Natural1{}, 0, false},
		{Natural1{}, uint(3), true},
		{Positive0{}, 0.0, true},
		{Positive{}, 0.0, false},
		{Positive{}, 1e-10, true},
	}
	for _, tt := range tests {
		got := Contains(tt.typ, tt.v)
		if got != tt.want {
			t.Errorf("Contains(%s, %v) = %v, want %v", tt.typ, tt.v, got, tt.want)
		}
	}
}

func TestRange_Endpoints(t *testing.T) {
	tests := []struct {
		typ       *Range
		low, high bool
	}{
		{MustRange(-2, 3), true, true},
		{MustRangeClosedOpen(-2, 3), true, false},
		{MustRangeOpenClosed(-2, 3), false, true},
		{MustRangeOpen(-2, 3), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if got := Contains(tt.typ, -2); got != tt.low {
				t.Errorf("Contains(low) = %v, want %v", got, tt.low)
			}
			if got := Contains(tt.typ, 3); got != tt.high {
				t.Errorf("Contains(high) = %v, want %v", got, tt.high)
			}
			if !Contains(tt.typ, 0.5) {
				t.Errorf("Contains(0.5) = false, want true")
			}
			if Contains(tt.typ, 3.5) {
				t.Errorf("Contains(3.5) = true, want false")
			}
		})
	}
}

func TestRange_InvalidBounds(t *testing.T) {
	tests := []struct {
		name      string
		low, high float64
	}{
		{"equal", 1, 1},
		{"reversed", 2, 1},
		{"both infinite", math.Inf(-1), math.Inf(1)},
		{"nan", math.NaN(), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRange(tt.low, tt.high)
			var ite *InvalidTypeError
			if !errors.As(err, &ite) {
				t.Errorf("NewRange(%v, %v) error = %v, want *InvalidTypeError", tt.low, tt.high, err)
			}
		})
	}
}

func TestRange_HalfInfinite(t *testing.T) {
	r := MustRange(0, math.Inf(1))
	vals, err := r.Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	want := []any{0.0, rangeEpsilon}
	if !reflect.DeepEqual(vals, want) {
		t.Errorf("Generate() = %v, want %v", vals, want)
	}
	if Contains(r, math.Inf(1)) {
		t.Errorf("Contains(+inf) = true, want false")
	}
}

func TestRange_Samples(t *testing.T) {
	vals, _ := MustRange(0, 1).Generate()
	one := 1.0
	want := []any{0.0, rangeEpsilon, 1.0, one - rangeEpsilon, .25, .5, .75}
	if !reflect.DeepEqual(vals, want) {
		t.Errorf("Generate() = %v, want %v", vals, want)
	}
	vals, _ = MustRangeOpen(0, 1).Generate()
	for _, v := range vals {
		if v == 0.0 || v == 1.0 {
			t.Errorf("RangeOpen sample %v is an excluded endpoint", v)
		}
	}
}

// ---------------------------------------------------------------------------
// Base types
// ---------------------------------------------------------------------------

func TestFrom(t *testing.T) {
	typ, err := From(nil)
	if err != nil || typ.String() != "Nothing" {
		t.Errorf("From(nil) = %v, %v, want Nothing", typ, err)
	}
	typ, err = From(Integer{})
	if err != nil || typ != Type(Integer{}) {
		t.Errorf("From(Integer{}) = %v, %v, want Integer", typ, err)
	}
	typ, err = From(reflect.TypeOf(0))
	if err != nil {
		t.Fatalf("From(reflect.Type) error: %v", err)
	}
	if !Contains(typ, 3) {
		t.Errorf("From(int).Test(3) failed")
	}
	if _, err := From(3); err == nil {
		t.Errorf("From(3) error = nil, want error")
	}
}

func TestFunction(t *testing.T) {
	if !Contains(Function{}, func(x int) int { return x }) {
		t.Errorf("Function rejected a func value")
	}
	if Contains(Function{}, 3) {
		t.Errorf("Function accepted 3")
	}
	if _, err := (Function{}).Generate(); !errors.Is(err, ErrNoGenerator) {
		t.Errorf("Function.Generate() error = %v, want ErrNoGenerator", err)
	}
}

func TestBoolean_RejectsNumbers(t *testing.T) {
	if Contains(Boolean{}, 123) {
		t.Errorf("Boolean accepted 123")
	}
}

func TestNothing_RejectsEverySample(t *testing.T) {
	for _, typ := range append(numericTypes(), stringTypes()...) {
		vals, _ := typ.Generate()
		for _, v := range vals {
			if Contains(Nothing{}, v) {
				t.Errorf("Nothing accepted %v from %s", short(v), typ)
			}
		}
		if Contains(typ, nil) {
			t.Errorf("%s accepted nil", typ)
		}
	}
}

func TestUnchecked(t *testing.T) {
	if !Contains(Unchecked{Of: Number{}}, "anything") {
		t.Errorf("Unchecked rejected a value")
	}
	vals, err := (Unchecked{}).Generate()
	if err != nil || len(vals) != 0 {
		t.Errorf("Unchecked{}.Generate() = %v, %v, want empty", vals, err)
	}
}

func TestSelf_Unbound(t *testing.T) {
	if err := (Self{}).Test(1); !errors.Is(err, ErrUnboundSelf) {
		t.Errorf("Self.Test() = %v, want ErrUnboundSelf", err)
	}
	if _, err := (Self{}).Generate(); !errors.Is(err, ErrUnboundSelf) {
		t.Errorf("Self.Generate() = %v, want ErrUnboundSelf", err)
	}
	var inv *InvalidTypeError
	if err := (Self{}).Test(1); !errors.As(err, &inv) {
		t.Errorf("Self.Test() = %T, want *InvalidTypeError", err)
	}
}

// ---------------------------------------------------------------------------
// Combinators and collections
// ---------------------------------------------------------------------------

func TestNot_CannotGenerate(t *testing.T) {
	n := MustNot(Integer{})
	if _, err := n.Generate(); !errors.Is(err, ErrNoGenerator) {
		t.Errorf("Not.Generate() error = %v, want ErrNoGenerator", err)
	}
	if !Contains(n, 2.5) || Contains(n, 2) {
		t.Errorf("Not(Integer) membership is wrong")
	}
	if _, err := MustAnd(MustNot(Integer{})).Generate(); !errors.Is(err, ErrNoGenerator) {
		t.Errorf("And(Not).Generate() error = %v, want ErrNoGenerator", err)
	}
}

func TestOr_GenerateIsUnfilteredUnion(t *testing.T) {
	vals, err := MustOr(Boolean{}, Natural1{}).Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	want := []any{true, false, 1, 2, 10, 100}
	if !reflect.DeepEqual(vals, want) {
		t.Errorf("Generate() = %v, want %v", vals, want)
	}
}

func TestList(t *testing.T) {
	l := MustList(Integer{})
	if !Contains(l, []int{1, 2, 3}) {
		t.Errorf("List(Integer) rejected []int")
	}
	if !Contains(l, [2]float64{1, 2}) {
		t.Errorf("List(Integer) rejected an array")
	}
	if Contains(l, []any{1, 2.5}) {
		t.Errorf("List(Integer) accepted 2.5")
	}
	if Contains(l, "123") {
		t.Errorf("List(Integer) accepted a string")
	}
	vals, _ := l.Generate()
	if got := len(vals[2].([]any)); got != longListLen {
		t.Errorf("long list has %d elements, want %d", got, longListLen)
	}
}

func TestTuple_Length(t *testing.T) {
	tp := MustTuple(Number{}, String{})
	if !Contains(tp, []any{1, "a"}) {
		t.Errorf("Tuple rejected a matching value")
	}
	if Contains(tp, []any{1}) {
		t.Errorf("Tuple accepted a short value")
	}
	if Contains(tp, []any{"a", 1}) {
		t.Errorf("Tuple accepted swapped values")
	}
}

func TestDict(t *testing.T) {
	d := MustDict(String{}, Natural0{})
	if !Contains(d, map[string]int{"a": 1}) {
		t.Errorf("Dict rejected map[string]int")
	}
	if Contains(d, map[string]int{"a": -1}) {
		t.Errorf("Dict accepted a negative value")
	}
	if Contains(d, map[int]int{1: 1}) {
		t.Errorf("Dict accepted an int key")
	}
}

func TestSet(t *testing.T) {
	s := Set(1, "a")
	if !Contains(s, 1.0) {
		t.Errorf("Set(1) rejected 1.0")
	}
	if Contains(s, "b") {
		t.Errorf("Set accepted b")
	}
}

func TestParametersDict(t *testing.T) {
	pd := MustParametersDict(map[string]any{"x": Number{}, "y": String{}}, false)
	tests := []struct {
		v    any
		want bool
	}{
		{map[string]any{}, true},
		{map[string]any{"x": 1}, true},
		{map[string]any{"x": 1, "y": "a"}, true},
		{map[string]any{"z": 1}, false},
		{map[string]any{"x": "a"}, false},
		{map[int]any{1: 1}, false},
	}
	for _, tt := range tests {
		if got := Contains(pd, tt.v); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
	strict := MustParametersDict(map[string]any{"x": Number{}, "y": String{}}, true)
	if Contains(strict, map[string]any{"x": 1}) {
		t.Errorf("all-mandatory ParametersDict accepted a missing key")
	}
	vals, _ := pd.Generate()
	if len(vals) != 4 {
		t.Errorf("Generate() returned %d values, want 4", len(vals))
	}
}

func TestNDArray(t *testing.T) {
	a := MustNDArray(2, Positive{})
	if !Contains(a, NewArray([]int{2, 2}, 1)) {
		t.Errorf("NDArray rejected a positive 2x2 array")
	}
	if Contains(a, NewArray([]int{4}, 1)) {
		t.Errorf("NDArray(d=2) accepted a 1-d array")
	}
	if Contains(a, NewArray([]int{2, 2}, 0)) {
		t.Errorf("NDArray(Positive) accepted zeros")
	}
	if Contains(a, Array{Shape: []int{3}, Data: []float64{1}}) {
		t.Errorf("NDArray accepted an inconsistent shape")
	}
	ptr := NewArray([]int{1, 1}, 2)
	if !Contains(a, &ptr) {
		t.Errorf("NDArray rejected *Array")
	}
	set := MustNDArray(1, Set(1.0, 2.0))
	if !Contains(set, NewArray([]int{3}, 2)) || Contains(set, NewArray([]int{3}, 3)) {
		t.Errorf("NDArray(Set) element checks are wrong")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{1, 1.0, true},
		{int8(3), uint16(3), true},
		{1, "1", false},
		{[]any{1, "a"}, []any{1, "a"}, true},
		{map[string]any{"a": 1}, map[string]any{"a": 2}, false},
		{nil, nil, true},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
