package types

import (
	"errors"
	"reflect"
	"testing"
)

type shape interface{ Area() float64 }

type square struct{ Side float64 }

func (s square) Area() float64 { return s.Side * s.Side }

type base struct{ Val any }

type derived struct{ base }

type leaf struct{ derived }

func TestGeneric_Interface(t *testing.T) {
	g, err := NewGeneric(reflect.TypeOf((*shape)(nil)).Elem())
	if err != nil {
		t.Fatalf("NewGeneric() error: %v", err)
	}
	if !Contains(g, square{Side: 2}) {
		t.Errorf("Generic(shape) rejected square")
	}
	if Contains(g, 3) {
		t.Errorf("Generic(shape) accepted 3")
	}
	if _, err := g.Generate(); !errors.Is(err, ErrNoGenerator) {
		t.Errorf("Generate() error = %v, want ErrNoGenerator", err)
	}
}

func TestGeneric_HooksRunBaseFirst(t *testing.T) {
	var order []string
	baseT := reflect.TypeOf(base{})
	derivedT := reflect.TypeOf(derived{})
	leafT := reflect.TypeOf(leaf{})

	RegisterClass(baseT,
		TestHook(func(v any) error {
			order = append(order, "base")
			return nil
		}),
		GenerateHook(func() ([]any, error) {
			return []any{leaf{derived{base{Val: 1}}}}, nil
		}),
	)
	RegisterClass(derivedT, Extends(baseT),
		TestHook(func(v any) error {
			order = append(order, "derived")
			return nil
		}),
	)
	RegisterClass(leafT, Extends(derivedT, baseT),
		TestHook(func(v any) error {
			order = append(order, "leaf")
			l, ok := v.(leaf)
			if !ok {
				return nil
			}
			return Integer{}.Test(l.Val)
		}),
	)

	g := GenericOf[leaf]()
	if err := g.Test(leaf{derived{base{Val: 3}}}); err != nil {
		t.Fatalf("Test() error: %v", err)
	}
	want := []string{"base", "derived", "leaf"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("hook order = %v, want %v", order, want)
	}
	if Contains(g, leaf{derived{base{Val: "x"}}}) {
		t.Errorf("leaf hook did not reject a string value")
	}

	// A registered descendant is a member of its ancestor.
	if !Contains(GenericOf[base](), leaf{}) {
		t.Errorf("Generic(base) rejected a registered descendant")
	}
	if Contains(GenericOf[leaf](), base{}) {
		t.Errorf("Generic(leaf) accepted its ancestor")
	}

	// The nearest generate hook is inherited.
	vals, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	for _, v := range vals {
		if err := g.Test(v); err != nil {
			t.Errorf("Test(%v) = %v, want nil", v, err)
		}
	}
}

func TestNewGeneric_Nil(t *testing.T) {
	if _, err := NewGeneric(nil); err == nil {
		t.Errorf("NewGeneric(nil) error = nil, want error")
	}
}
