package types

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// longListLen is the length of the repeated-element list sample.
const longListLen = 1000

type list struct{ elem Type }

// List accepts any Go slice or array whose elements all pass elem.
// It generates the empty list, the list of every elem sample and a
// long list repeating the first sample.
func List(elem any) (Type, error) {
	t, err := From(elem)
	if err != nil {
		return nil, err
	}
	return list{elem: t}, nil
}

// MustList is like List but panics on error.
func MustList(elem any) Type { return mustType(List(elem)) }

func (l list) String() string { return "List(" + l.elem.String() + ")" }

func (l list) Test(v any) error {
	vs, ok := sliceValues(v)
	if !ok {
		return violation(l, v, "non-list passed")
	}
	for _, e := range vs {
		if err := l.elem.Test(e); err != nil {
			return err
		}
	}
	return nil
}

func (l list) Generate() ([]any, error) {
	vals, err := l.elem.Generate()
	if err != nil {
		return nil, err
	}
	out := []any{[]any{}, append([]any{}, vals...)}
	if len(vals) > 0 {
		long := make([]any, longListLen)
		for i := range long {
			long[i] = vals[0]
		}
		out = append(out, long)
	}
	return out, nil
}

type tuple struct{ types []Type }

// Tuple accepts a slice or array with exactly one element per given
// type, each passing its type.
func Tuple(specs ...any) (Type, error) {
	ts, err := allFrom(specs)
	if err != nil {
		return nil, err
	}
	return tuple{types: ts}, nil
}

// MustTuple is like Tuple but panics on error.
func MustTuple(specs ...any) Type { return mustType(Tuple(specs...)) }

func (t tuple) String() string { return "Tuple(" + reprList(t.types) + ")" }

func (t tuple) Test(v any) error {
	vs, ok := sliceValues(v)
	if !ok {
		return violation(t, v, "non-tuple passed")
	}
	if len(vs) != len(t.types) {
		return violation(t, v, "tuple has %d elements, want %d", len(vs), len(t.types))
	}
	for i, e := range vs {
		if err := t.types[i].Test(e); err != nil {
			return err
		}
	}
	return nil
}

func (t tuple) Generate() ([]any, error) {
	first := make([]any, len(t.types))
	for i, et := range t.types {
		vals, err := et.Generate()
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			return nil, &NoGeneratorError{Type: t.String(), Reason: et.String() + " generated no values"}
		}
		first[i] = vals[0]
	}
	return []any{first}, nil
}

type dict struct{ key, val Type }

// Dict accepts any Go map whose keys pass k and whose values pass v.
// Generated maps are map[any]any.
func Dict(k, v any) (Type, error) {
	kt, err := From(k)
	if err != nil {
		return nil, err
	}
	vt, err := From(v)
	if err != nil {
		return nil, err
	}
	return dict{key: kt, val: vt}, nil
}

// MustDict is like Dict but panics on error.
func MustDict(k, v any) Type { return mustType(Dict(k, v)) }

func (d dict) String() string { return "Dict(" + d.key.String() + ", " + d.val.String() + ")" }

func (d dict) Test(v any) error {
	if v == nil {
		return violation(d, v, "non-dict passed")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return violation(d, v, "non-dict passed")
	}
	iter := rv.MapRange()
	for iter.Next() {
		if err := d.key.Test(iter.Key().Interface()); err != nil {
			return err
		}
		if err := d.val.Test(iter.Value().Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (d dict) Generate() ([]any, error) {
	keys, err := d.key.Generate()
	if err != nil {
		return nil, err
	}
	vals, err := d.val.Generate()
	if err != nil {
		return nil, err
	}
	zipped := make(map[any]any)
	for i := 0; i < len(keys) && i < len(vals); i++ {
		k := keys[i]
		if k == nil || !reflect.TypeOf(k).Comparable() {
			continue
		}
		if f, ok := k.(float64); ok && f != f {
			continue
		}
		zipped[k] = vals[i]
	}
	return []any{map[any]any{}, zipped}, nil
}

type set struct{ els []any }

// Set accepts only the listed values, compared with Equal.
func Set(els ...any) Type { return set{els: els} }

func (s set) String() string {
	parts := make([]string, len(s.els))
	for i, e := range s.els {
		parts[i] = reprValue(e)
	}
	return "Set([" + strings.Join(parts, ", ") + "])"
}

func (s set) Test(v any) error {
	for _, e := range s.els {
		if Equal(e, v) {
			return nil
		}
	}
	return violation(s, v, "value not in set")
}

func (s set) Generate() ([]any, error) { return append([]any{}, s.els...), nil }

type parametersDict struct {
	params       map[string]Type
	names        []string
	allMandatory bool
}

// ParametersDict accepts string-keyed maps restricted to the keys of
// params, each value passing its declared type. When allMandatory is
// set every key must be present.
func ParametersDict(params map[string]any, allMandatory bool) (Type, error) {
	pd := parametersDict{params: make(map[string]Type, len(params)), allMandatory: allMandatory}
	for name, spec := range params {
		t, err := From(spec)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		pd.params[name] = t
		pd.names = append(pd.names, name)
	}
	sort.Strings(pd.names)
	return pd, nil
}

// MustParametersDict is like ParametersDict but panics on error.
func MustParametersDict(params map[string]any, allMandatory bool) Type {
	return mustType(ParametersDict(params, allMandatory))
}

func (p parametersDict) String() string {
	parts := make([]string, len(p.names))
	for i, n := range p.names {
		parts[i] = fmt.Sprintf("%q: %s", n, p.params[n])
	}
	s := "ParametersDict({" + strings.Join(parts, ", ") + "}"
	if p.allMandatory {
		s += ", all_mandatory=True"
	}
	return s + ")"
}

func (p parametersDict) Test(v any) error {
	if v == nil {
		return violation(p, v, "non-dict passed")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String &&
		rv.Type().Key().Kind() != reflect.Interface {
		return violation(p, v, "non-dict passed")
	}
	seen := make(map[string]bool, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, ok := iter.Key().Interface().(string)
		if !ok {
			return violation(p, v, "invalid parameter key %v", iter.Key().Interface())
		}
		t, ok := p.params[k]
		if !ok {
			return violation(p, v, "invalid parameter key %q", k)
		}
		if err := t.Test(iter.Value().Interface()); err != nil {
			return err
		}
		seen[k] = true
	}
	if p.allMandatory {
		var missing []string
		for _, n := range p.names {
			if !seen[n] {
				missing = append(missing, n)
			}
		}
		if len(missing) > 0 {
			return violation(p, v, "all keys are mandatory, but missing: %s", strings.Join(missing, ", "))
		}
	}
	return nil
}

func (p parametersDict) Generate() ([]any, error) {
	firsts := make(map[string]any, len(p.names))
	for _, n := range p.names {
		vals, err := p.params[n].Generate()
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			return nil, &NoGeneratorError{Type: p.String(), Reason: fmt.Sprintf("parameter %q generated no values", n)}
		}
		firsts[n] = vals[0]
	}
	full := make(map[string]any, len(firsts))
	for k, v := range firsts {
		full[k] = v
	}
	out := []any{full}
	if !p.allMandatory {
		out = append(out, map[string]any{})
		for _, n := range p.names {
			out = append(out, map[string]any{n: firsts[n]})
		}
	}
	return out, nil
}
