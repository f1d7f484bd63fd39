package types

import (
	"errors"
)

type and struct{ types []Type }

// And returns the conjunction of the given types. Its samples are the
// samples of each child that pass every child's test. Children that
// cannot generate contribute no samples, which is what makes
// And(Number{}, Not(Integer{})) useful.
func And(specs ...any) (Type, error) {
	ts, err := allFrom(specs)
	if err != nil {
		return nil, err
	}
	if len(ts) == 0 {
		return nil, invalidType("And needs at least one type")
	}
	return and{types: ts}, nil
}

// MustAnd is like And but panics on error.
func MustAnd(specs ...any) Type { return mustType(And(specs...)) }

func (a and) String() string { return "And(" + reprList(a.types) + ")" }

func (a and) Test(v any) error {
	for _, t := range a.types {
		if err := t.Test(v); err != nil {
			return err
		}
	}
	return nil
}

func (a and) Generate() ([]any, error) {
	all, err := unionGenerate(a, a.types)
	if err != nil {
		return nil, err
	}
	return filterValid(all, a.types...), nil
}

type or struct{ types []Type }

// Or returns the disjunction of the given types. Its samples are the
// unfiltered union of the children's samples.
func Or(specs ...any) (Type, error) {
	ts, err := allFrom(specs)
	if err != nil {
		return nil, err
	}
	if len(ts) == 0 {
		return nil, invalidType("Or needs at least one type")
	}
	return or{types: ts}, nil
}

// MustOr is like Or but panics on error.
func MustOr(specs ...any) Type { return mustType(Or(specs...)) }

func (o or) String() string { return "Or(" + reprList(o.types) + ")" }

func (o or) Test(v any) error {
	for _, t := range o.types {
		if t.Test(v) == nil {
			return nil
		}
	}
	return violation(o, v, "neither type in Or holds")
}

func (o or) Generate() ([]any, error) {
	return unionGenerate(o, o.types)
}

type not struct{ typ Type }

// Not accepts exactly the values its argument rejects. It cannot
// generate, so it is only useful inside And.
func Not(spec any) (Type, error) {
	t, err := From(spec)
	if err != nil {
		return nil, err
	}
	return not{typ: t}, nil
}

// MustNot is like Not but panics on error.
func MustNot(spec any) Type { return mustType(Not(spec)) }

func (n not) String() string { return "Not(" + n.typ.String() + ")" }

func (n not) Test(v any) error {
	if n.typ.Test(v) == nil {
		return violation(n, v, "Not clause does not hold")
	}
	return nil
}

func (n not) Generate() ([]any, error) {
	return nil, &NoGeneratorError{Type: n.String(), Reason: "negations only generate inside And"}
}

// unionGenerate concatenates the children's samples. Children without
// a generator are skipped; if none can generate the combination
// cannot either. Other errors are returned.
func unionGenerate(parent Type, ts []Type) ([]any, error) {
	var out []any
	generated := false
	for _, t := range ts {
		vs, err := t.Generate()
		if errors.Is(err, ErrNoGenerator) {
			continue
		}
		if err != nil {
			return nil, err
		}
		generated = true
		out = append(out, vs...)
	}
	if !generated {
		return nil, &NoGeneratorError{Type: parent.String(), Reason: "no member type can generate"}
	}
	return out, nil
}

func mustType(t Type, err error) Type {
	if err != nil {
		panic(err)
	}
	return t
}
