// Package contract wraps Go functions with runtime-checked contracts:
// argument and return types, preconditions, postconditions that may
// compare the current call with earlier ones, and an optional
// immutability check on the arguments.
//
// A wrapped function is called through its Function value:
//
//	var subtract = contract.MustWrap(func(n, m int) int { return n - m },
//		contract.Params("n", "m"),
//		contract.Accepts(types.Integer{}, types.Integer{}),
//		contract.Requires("n >= m"),
//		contract.Ensures("return >= 0"),
//	)
//
//	v, err := subtract.Call(5, 3)
//
// Every check runs in a fixed order: argument types, preconditions,
// the call itself, return type, postconditions. When the resolved
// settings disable the engine the function is called directly.
package contract

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"sort"
	"sync"

	"github.com/unbound-force/paranoid/internal/condition"
	"github.com/unbound-force/paranoid/pkg/settings"
	"github.com/unbound-force/paranoid/pkg/types"
)

// Function is a Go function together with its contract.
type Function struct {
	fn  reflect.Value
	sig *signature

	file string
	line int

	mu        sync.RWMutex
	name      string
	argTypes  map[string]types.Type
	ret       types.Type
	requires  []*condition.Condition
	ensures   []*condition.Condition
	overlay   settings.Overlay
	store     *settings.Store
	immutable bool
	mutable   map[string]bool

	// registry is where f was recorded, nil for none.
	registry *Registry

	// cacheMu serializes the read-check-append sequence on cache.
	cacheMu sync.Mutex
	cache   []map[string]any
}

// Wrap attaches a contract to fn. Wrapping a *Function adds the
// options to its existing contract and returns it unchanged, so
// repeated wrapping never nests checks.
func Wrap(fn any, opts ...Option) (*Function, error) {
	d := &decl{}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if f, ok := fn.(*Function); ok {
		if d.params != nil || len(d.paramMods) > 0 {
			return nil, fmt.Errorf("%w: parameters of %s are already declared", ErrDeclaration, f.Name())
		}
		if err := f.apply(d); err != nil {
			return nil, err
		}
		return f, nil
	}

	rv := reflect.ValueOf(fn)
	if fn == nil || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: cannot wrap %T, need a function", ErrDeclaration, fn)
	}
	sig, err := newSignature(rv.Type(), d.params, d.paramMods)
	if err != nil {
		return nil, err
	}
	f := &Function{fn: rv, sig: sig}
	if rf := runtime.FuncForPC(rv.Pointer()); rf != nil {
		f.name = path.Base(rf.Name())
		f.file, f.line = rf.FileLine(rf.Entry())
	}
	if err := f.apply(d); err != nil {
		return nil, err
	}

	r := DefaultRegistry
	if d.registrySet {
		r = d.registry
	}
	if r != nil {
		f.registry = r
		r.Add(f)
	}
	return f, nil
}

// MustWrap is like Wrap but panics on error. It is intended for
// package-level declarations.
func MustWrap(fn any, opts ...Option) *Function {
	f, err := Wrap(fn, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// apply validates a declaration and commits it in one step, so a
// failing declaration leaves the contract untouched.
func (f *Function) apply(d *decl) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := f.name
	if d.name != "" {
		name = d.name
	}

	argTypes := f.argTypes
	if d.acceptsSet || d.acceptsNamed != nil {
		if f.argTypes != nil {
			return fmt.Errorf("%w: cannot set argument types twice in %s", ErrDeclaration, name)
		}
		var err error
		if argTypes, err = f.sig.argTypes(name, d.accepts, d.acceptsNamed); err != nil {
			return err
		}
	}

	ret := f.ret
	if d.returnsSet {
		if f.ret != nil {
			return fmt.Errorf("%w: cannot set return type twice in %s", ErrDeclaration, name)
		}
		t, err := types.From(d.returns)
		if err != nil {
			return fmt.Errorf("return type of %s: %w", name, err)
		}
		ret = t
	}

	requires := f.requires
	for _, src := range d.requires {
		c, err := condition.Compile(src, condition.Precondition)
		if err != nil {
			return fmt.Errorf("requires of %s: %w", name, err)
		}
		requires = append(requires[:len(requires):len(requires)], c)
	}
	ensures := f.ensures
	for _, src := range d.ensures {
		c, err := condition.Compile(src, condition.Postcondition)
		if err != nil {
			return fmt.Errorf("ensures of %s: %w", name, err)
		}
		ensures = append(ensures[:len(ensures):len(ensures)], c)
	}

	overlay := f.overlay
	for _, e := range d.config {
		var err error
		if overlay, err = overlay.With(e.name, e.value); err != nil {
			return fmt.Errorf("config of %s: %w", name, err)
		}
	}

	mutable := f.mutable
	if d.immutable {
		mutable = map[string]bool{}
		for k := range f.mutable {
			mutable[k] = true
		}
		for _, k := range d.mutable {
			if _, ok := f.sig.index[k]; !ok {
				return fmt.Errorf("%w: %s has no parameter %q", ErrDeclaration, name, k)
			}
			mutable[k] = true
		}
	}

	f.name = name
	f.argTypes, f.ret = argTypes, ret
	f.requires, f.ensures = requires, ensures
	f.overlay = overlay
	if d.store != nil {
		f.store = d.store
	}
	if d.immutable {
		f.immutable, f.mutable = true, mutable
	}
	return nil
}

// argTypes binds type specifications to parameters the same way call
// arguments bind.
func (s *signature) argTypes(fname string, positional []any, named map[string]any) (map[string]types.Type, error) {
	specErr := func(err error) error {
		return &ArgumentTypeError{Function: fname, Err: err}
	}
	pos := make([]any, len(positional))
	for i, spec := range positional {
		t, err := types.From(spec)
		if err != nil {
			return nil, specErr(err)
		}
		pos[i] = t
	}
	kw := make(map[string]any, len(named))
	for k, spec := range named {
		t, err := types.From(spec)
		if err != nil {
			return nil, specErr(err)
		}
		kw[k] = t
	}
	b, err := s.bind(pos, kw)
	if err != nil {
		return nil, specErr(err)
	}

	out := make(map[string]types.Type, len(b))
	for _, p := range s.params {
		switch p.Kind {
		case KindVarPositional:
			out[p.Name] = types.PositionalArguments{}
			continue
		case KindVarKeyword:
			out[p.Name] = types.KeywordArguments{}
			continue
		}
		switch v := b[p.Name].(type) {
		case types.Type:
			out[p.Name] = v
		case nil:
			out[p.Name] = types.Nothing{}
		default:
			out[p.Name] = types.Constant{Value: v}
		}
	}
	return out, nil
}

// Name returns the function's display name.
func (f *Function) Name() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.name
}

// Location returns the source position of the wrapped function, when
// the runtime knows it.
func (f *Function) Location() (file string, line int) {
	return f.file, f.line
}

// Params returns the parameter list.
func (f *Function) Params() []Param {
	return append([]Param{}, f.sig.params...)
}

// Settings resolves the settings that apply to the next call.
func (f *Function) Settings() settings.Snapshot {
	f.mu.RLock()
	store, overlay := f.store, f.overlay
	f.mu.RUnlock()
	if store == nil {
		store = settings.Global
	}
	return store.Resolve(overlay)
}

// Contract is a read-only view of a function's declaration.
type Contract struct {
	Name   string
	Params []Param

	// ArgTypes is nil when no argument types were declared.
	ArgTypes   map[string]types.Type
	ReturnType types.Type
	Requires   []string
	Ensures    []string

	// Cache holds the calls remembered for postconditions that refer
	// to other calls, oldest first. The return value is under "return".
	Cache []map[string]any

	Overrides map[string]any
	Immutable bool
	Mutable   []string
}

// Contract returns a snapshot of the declaration and call cache.
func (f *Function) Contract() Contract {
	f.mu.RLock()
	c := Contract{
		Name:       f.name,
		Params:     f.Params(),
		ReturnType: f.ret,
		Overrides:  f.overlay.Values(),
		Immutable:  f.immutable,
	}
	if f.argTypes != nil {
		c.ArgTypes = make(map[string]types.Type, len(f.argTypes))
		for k, v := range f.argTypes {
			c.ArgTypes[k] = v
		}
	}
	for _, r := range f.requires {
		c.Requires = append(c.Requires, r.Source)
	}
	for _, e := range f.ensures {
		c.Ensures = append(c.Ensures, e.Source)
	}
	for k := range f.mutable {
		c.Mutable = append(c.Mutable, k)
	}
	f.mu.RUnlock()
	sort.Strings(c.Mutable)

	f.cacheMu.Lock()
	for _, rec := range f.cache {
		c.Cache = append(c.Cache, publicParams(rec))
	}
	f.cacheMu.Unlock()
	return c
}

// ResetCache forgets every remembered call.
func (f *Function) ResetCache() {
	f.cacheMu.Lock()
	f.cache = nil
	f.cacheMu.Unlock()
}

// HasArgTypes reports whether argument types were declared.
func (f *Function) HasArgTypes() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.argTypes != nil
}

// IsVerifyError reports whether err is a contract violation.
func IsVerifyError(err error) bool {
	return errors.Is(err, ErrVerify)
}
