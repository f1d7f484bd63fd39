package types

import (
	"fmt"
	"math"
)

// ArrayTester is implemented by element types that can validate a
// whole numeric array at once. NDArray uses it instead of testing
// element by element.
type ArrayTester interface {
	TestArray(data []float64) error
}

// Numeric is any integer or float, including inf, -inf and nan.
type Numeric struct{}

func (Numeric) String() string { return "Numeric" }

func (t Numeric) Test(v any) error {
	if !IsNumber(v) {
		return violation(t, v, "invalid numeric")
	}
	return nil
}

func (Numeric) TestArray([]float64) error { return nil }

func (Numeric) Generate() ([]any, error) {
	return []any{math.Inf(1), math.Inf(-1), math.NaN(), 0, 1, -1, 3.141, 1e-10, 1e10}, nil
}

// ExtendedReal is any integer or float excluding nan.
type ExtendedReal struct{}

func (ExtendedReal) String() string { return "ExtendedReal" }

func (t ExtendedReal) Test(v any) error {
	f, ok := AsFloat(v)
	if !ok {
		return violation(t, v, "invalid numeric")
	}
	if math.IsNaN(f) {
		return violation(t, v, "number cannot be nan")
	}
	return nil
}

func (t ExtendedReal) TestArray(data []float64) error {
	for _, f := range data {
		if math.IsNaN(f) {
			return violation(t, f, "number cannot be nan")
		}
	}
	return nil
}

func (ExtendedReal) Generate() ([]any, error) {
	return []any{math.Inf(1), math.Inf(-1), 0, 1, -1, 3.141, 1e-10, 1e10}, nil
}

// Number is any finite integer or float.
type Number struct{}

func (Number) String() string { return "Number" }

func (t Number) Test(v any) error {
	f, ok := AsFloat(v)
	if !ok {
		return violation(t, v, "invalid number")
	}
	if !isFinite(f) {
		return violation(t, v, "number must not be nan or inf")
	}
	return nil
}

func (t Number) TestArray(data []float64) error {
	for _, f := range data {
		if !isFinite(f) {
			return violation(t, f, "number must not be nan or inf")
		}
	}
	return nil
}

func (Number) Generate() ([]any, error) {
	return []any{0, 1, -1, 3.141, 1e-10, 1e10}, nil
}

// Integer is any finite number with no fractional part. Floats such as
// 2.0 are integers.
type Integer struct{}

func (Integer) String() string { return "Integer" }

func (t Integer) Test(v any) error {
	if err := (Number{}).Test(v); err != nil {
		return err
	}
	f, _ := AsFloat(v)
	if math.Floor(f) != f {
		return violation(t, v, "invalid integer")
	}
	return nil
}

func (t Integer) TestArray(data []float64) error {
	if err := (Number{}).TestArray(data); err != nil {
		return err
	}
	for _, f := range data {
		if math.Floor(f) != f {
			return violation(t, f, "invalid integer")
		}
	}
	return nil
}

func (Integer) Generate() ([]any, error) {
	return []any{-100, -1, 0, 1, 100}, nil
}

// Natural0 is any integer >= 0.
type Natural0 struct{}

func (Natural0) String() string { return "Natural0" }

func (t Natural0) Test(v any) error {
	if err := (Integer{}).Test(v); err != nil {
		return err
	}
	if f, _ := AsFloat(v); f < 0 {
		return violation(t, v, "must be greater than or equal to 0")
	}
	return nil
}

func (t Natural0) TestArray(data []float64) error {
	return testArrayBound(t, data, Integer{}, func(f float64) bool { return f >= 0 },
		"must be greater than or equal to 0")
}

func (Natural0) Generate() ([]any, error) {
	return []any{0, 1, 10, 100}, nil
}

// Natural1 is any integer > 0.
type Natural1 struct{}

func (Natural1) String() string { return "Natural1" }

func (t Natural1) Test(v any) error {
	if err := (Integer{}).Test(v); err != nil {
		return err
	}
	if f, _ := AsFloat(v); f <= 0 {
		return violation(t, v, "must be greater than 0")
	}
	return nil
}

func (t Natural1) TestArray(data []float64) error {
	return testArrayBound(t, data, Integer{}, func(f float64) bool { return f > 0 },
		"must be greater than 0")
}

func (Natural1) Generate() ([]any, error) {
	return []any{1, 2, 10, 100}, nil
}

// Positive0 is any finite number >= 0.
type Positive0 struct{}

func (Positive0) String() string { return "Positive0" }

func (t Positive0) Test(v any) error {
	if err := (Number{}).Test(v); err != nil {
		return err
	}
	if f, _ := AsFloat(v); f < 0 {
		return violation(t, v, "value must be non-negative")
	}
	return nil
}

func (t Positive0) TestArray(data []float64) error {
	return testArrayBound(t, data, Number{}, func(f float64) bool { return f >= 0 },
		"values must be non-negative")
}

func (Positive0) Generate() ([]any, error) {
	return []any{4.3445, 1, 10, 0}, nil
}

// Positive is any finite number > 0.
type Positive struct{}

func (Positive) String() string { return "Positive" }

func (t Positive) Test(v any) error {
	if err := (Number{}).Test(v); err != nil {
		return err
	}
	if f, _ := AsFloat(v); f <= 0 {
		return violation(t, v, "value must be positive")
	}
	return nil
}

func (t Positive) TestArray(data []float64) error {
	return testArrayBound(t, data, Number{}, func(f float64) bool { return f > 0 },
		"values must be positive")
}

func (Positive) Generate() ([]any, error) {
	return []any{4.3445, 1, 10}, nil
}

func testArrayBound(t Type, data []float64, parent ArrayTester, ok func(float64) bool, reason string) error {
	if err := parent.TestArray(data); err != nil {
		return err
	}
	for _, f := range data {
		if !ok(f) {
			return violation(t, f, "%s", reason)
		}
	}
	return nil
}

// Interval selects which endpoints of a Range are included.
type Interval int

const (
	// Closed includes both endpoints.
	Closed Interval = iota
	// ClosedOpen includes low and excludes high.
	ClosedOpen
	// OpenClosed excludes low and includes high.
	OpenClosed
	// Open excludes both endpoints.
	Open
)

// rangeEpsilon is the offset of the near-boundary sample values.
const rangeEpsilon = 1e-5

// Range is any finite number between Low and High. Endpoint inclusion
// depends on the Interval. No correction for floating point roundoff
// is applied.
type Range struct {
	low, high float64
	interval  Interval
}

// NewRange returns the closed interval [low, high].
func NewRange(low, high float64) (*Range, error) {
	return newRange(low, high, Closed)
}

// NewRangeClosedOpen returns the half-open interval [low, high).
func NewRangeClosedOpen(low, high float64) (*Range, error) {
	return newRange(low, high, ClosedOpen)
}

// NewRangeOpenClosed returns the half-open interval (low, high].
func NewRangeOpenClosed(low, high float64) (*Range, error) {
	return newRange(low, high, OpenClosed)
}

// NewRangeOpen returns the open interval (low, high).
func NewRangeOpen(low, high float64) (*Range, error) {
	return newRange(low, high, Open)
}

// MustRange is like NewRange but panics on invalid bounds.
func MustRange(low, high float64) *Range { return must(NewRange(low, high)) }

// MustRangeClosedOpen is like NewRangeClosedOpen but panics on invalid bounds.
func MustRangeClosedOpen(low, high float64) *Range { return must(NewRangeClosedOpen(low, high)) }

// MustRangeOpenClosed is like NewRangeOpenClosed but panics on invalid bounds.
func MustRangeOpenClosed(low, high float64) *Range { return must(NewRangeOpenClosed(low, high)) }

// MustRangeOpen is like NewRangeOpen but panics on invalid bounds.
func MustRangeOpen(low, high float64) *Range { return must(NewRangeOpen(low, high)) }

func must(r *Range, err error) *Range {
	if err != nil {
		panic(err)
	}
	return r
}

func newRange(low, high float64, interval Interval) (*Range, error) {
	if math.IsNaN(low) || math.IsNaN(high) {
		return nil, invalidType("range bounds cannot be nan")
	}
	if !(low < high) {
		return nil, invalidType("low %v must be strictly less than high %v", low, high)
	}
	if math.IsInf(low, 0) && math.IsInf(high, 0) {
		return nil, invalidType("both range bounds cannot be infinite")
	}
	return &Range{low: low, high: high, interval: interval}, nil
}

// Low returns the lower bound.
func (r *Range) Low() float64 { return r.low }

// High returns the upper bound.
func (r *Range) High() float64 { return r.high }

// Interval returns which endpoints are included.
func (r *Range) Interval() Interval { return r.interval }

func (r *Range) includesLow() bool  { return r.interval == Closed || r.interval == ClosedOpen }
func (r *Range) includesHigh() bool { return r.interval == Closed || r.interval == OpenClosed }

func (r *Range) String() string {
	name := "Range"
	switch r.interval {
	case ClosedOpen:
		name = "RangeClosedOpen"
	case OpenClosed:
		name = "RangeOpenClosed"
	case Open:
		name = "RangeOpen"
	}
	return fmt.Sprintf("%s(%v, %v)", name, r.low, r.high)
}

func (r *Range) Test(v any) error {
	if err := (Number{}).Test(v); err != nil {
		return err
	}
	f, _ := AsFloat(v)
	return r.check(f)
}

func (r *Range) check(f float64) error {
	if f < r.low || f > r.high {
		return violation(r, f, "value must be between %v and %v", r.low, r.high)
	}
	if !r.includesLow() && f == r.low {
		return violation(r, f, "value must be strictly greater than %v", r.low)
	}
	if !r.includesHigh() && f == r.high {
		return violation(r, f, "value must be strictly less than %v", r.high)
	}
	return nil
}

func (r *Range) TestArray(data []float64) error {
	if err := (Number{}).TestArray(data); err != nil {
		return err
	}
	for _, f := range data {
		if err := r.check(f); err != nil {
			return err
		}
	}
	return nil
}

func (r *Range) Generate() ([]any, error) {
	var out []any
	lowInf, highInf := math.IsInf(r.low, 0), math.IsInf(r.high, 0)
	if !lowInf {
		out = append(out, r.low, r.low+rangeEpsilon)
	}
	if !highInf {
		out = append(out, r.high, r.high-rangeEpsilon)
	}
	if !lowInf && !highInf {
		span := r.high - r.low
		out = append(out, r.low+span*.25, r.low+span*.5, r.low+span*.75)
	}
	return filterValid(out, r), nil
}
