package types

import (
	"fmt"
	"math"
)

// Array is a dense n-dimensional float64 array stored in row-major
// order. Shape must multiply out to len(Data).
type Array struct {
	Shape []int
	Data  []float64
}

// NewArray returns an array of the given shape filled with fill.
func NewArray(shape []int, fill float64) Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = fill
	}
	return Array{Shape: append([]int{}, shape...), Data: data}
}

// Dims returns the number of dimensions.
func (a Array) Dims() int { return len(a.Shape) }

func (a Array) valid() bool {
	n := 1
	for _, d := range a.Shape {
		if d < 0 {
			return false
		}
		n *= d
	}
	return n == len(a.Data)
}

type ndarray struct {
	dims int
	elem Type
}

// NDArray accepts an Array (or *Array) with dims dimensions whose
// elements pass elem. A dims of 0 accepts any number of dimensions and
// a nil elem accepts any element. Element types implementing
// ArrayTester validate the whole array in one pass.
func NDArray(dims int, elem any) (Type, error) {
	if dims < 0 {
		return nil, invalidType("invalid dimension %d", dims)
	}
	var t Type
	if elem != nil {
		var err error
		if t, err = From(elem); err != nil {
			return nil, err
		}
	}
	return ndarray{dims: dims, elem: t}, nil
}

// MustNDArray is like NDArray but panics on error.
func MustNDArray(dims int, elem any) Type { return mustType(NDArray(dims, elem)) }

func (n ndarray) String() string {
	elem := "None"
	if n.elem != nil {
		elem = n.elem.String()
	}
	return fmt.Sprintf("NDArray(d=%d, t=%s)", n.dims, elem)
}

func (n ndarray) Test(v any) error {
	var a Array
	switch x := v.(type) {
	case Array:
		a = x
	case *Array:
		if x == nil {
			return violation(n, v, "value is not an Array, it is a nil *Array")
		}
		a = *x
	default:
		return violation(n, v, "value is not an Array, it is a %T", v)
	}
	if !a.valid() {
		return violation(n, v, "shape %v does not match %d elements", a.Shape, len(a.Data))
	}
	if n.dims != 0 && a.Dims() != n.dims {
		return violation(n, v, "array has %d dimensions, want %d", a.Dims(), n.dims)
	}
	if n.elem == nil {
		return nil
	}
	if at, ok := n.elem.(ArrayTester); ok {
		return at.TestArray(a.Data)
	}
	for _, f := range a.Data {
		if err := n.elem.Test(f); err != nil {
			return err
		}
	}
	return nil
}

func (n ndarray) Generate() ([]any, error) {
	vals := []any{3.0, 4.0, 5.0, 6.0, 7.0, 8.0, 9.0, 10.0}
	if n.elem != nil {
		generated, err := n.elem.Generate()
		if err != nil {
			return nil, err
		}
		vals = vals[:0]
		for _, g := range generated {
			if f, ok := AsFloat(g); ok {
				vals = append(vals, f)
			}
		}
		if len(vals) == 0 {
			return nil, &NoGeneratorError{Type: n.String(), Reason: "element type generated no numbers"}
		}
	}
	shapes := [][]int{{20}, {5, 5}, {3, 3, 3}, {200}}
	if n.dims != 0 {
		shape := make([]int, n.dims)
		for i := range shape {
			shape[i] = 5
		}
		shapes = [][]int{shape}
	}
	var out []any
	for _, fill := range []float64{0, 1, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if n.elem == nil || n.elem.Test(fill) == nil {
			out = append(out, NewArray(shapes[0], fill))
		}
	}
	for _, shape := range shapes {
		first, _ := AsFloat(vals[0])
		out = append(out, NewArray(shape, first))
	}
	mixed := NewArray(shapes[0], 0)
	for i := range mixed.Data {
		mixed.Data[i], _ = AsFloat(vals[i%len(vals)])
	}
	return append(out, mixed), nil
}
