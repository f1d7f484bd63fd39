package contract

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"sort"

	"github.com/unbound-force/paranoid/internal/condition"
	"github.com/unbound-force/paranoid/pkg/types"
)

var (
	errorType = reflect.TypeFor[error]()

	// builtins is shared by every evaluation; scopes layered on top
	// of it never write to it.
	builtins = condition.Root()
)

// Call invokes the function with positional arguments.
func (f *Function) Call(args ...any) (any, error) {
	return f.CallKw(args, nil)
}

// CallKw invokes the function with positional and named arguments.
// Arguments bind to parameters the way a Python call would.
func (f *Function) CallKw(args []any, kwargs map[string]any) (any, error) {
	b, err := f.sig.bind(args, kwargs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return f.run(b)
}

// CallBound invokes the function with arguments already keyed by
// parameter name. Missing parameters take their defaults. The context
// is only checked before the call starts; a running Go function
// cannot be interrupted.
func (f *Function) CallBound(ctx context.Context, named Bound) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := f.sig.bindNamed(named)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return f.run(b)
}

// spec is a consistent copy of the declaration for one call.
type spec struct {
	name      string
	argTypes  map[string]types.Type
	ret       types.Type
	requires  []*condition.Condition
	ensures   []*condition.Condition
	immutable bool
	mutable   map[string]bool
}

func (f *Function) spec() spec {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return spec{
		name:      f.name,
		argTypes:  f.argTypes,
		ret:       f.ret,
		requires:  f.requires,
		ensures:   f.ensures,
		immutable: f.immutable,
		mutable:   f.mutable,
	}
}

func (f *Function) run(b Bound) (any, error) {
	snap := f.Settings()
	sp := f.spec()
	if !snap.Enabled {
		return f.invoke(sp.name, b)
	}

	if err := sp.checkAccepts(b); err != nil {
		return nil, err
	}
	global := condition.NewScope(builtins, snap.Namespace)
	if err := sp.checkRequires(global, b); err != nil {
		return nil, err
	}

	var digests map[string]uint64
	if sp.immutable {
		digests = digestArgs(b, sp.mutable)
	}
	ret, err := f.invoke(sp.name, b)
	if err != nil {
		return nil, err
	}
	if sp.immutable {
		if err := checkDigests(sp.name, b, digests); err != nil {
			return nil, err
		}
	}

	if err := sp.checkReturns(ret); err != nil {
		return nil, err
	}
	if err := f.checkEnsures(sp, global, b, ret, snap.MaxCache); err != nil {
		return nil, err
	}
	return ret, nil
}

func (sp spec) checkAccepts(b Bound) error {
	if sp.argTypes == nil {
		return nil
	}
	if len(sp.argTypes) != len(b) {
		return &ArgumentTypeError{Function: sp.name}
	}
	names := make([]string, 0, len(b))
	for k := range b {
		if _, ok := sp.argTypes[k]; !ok {
			return &ArgumentTypeError{Function: sp.name}
		}
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		t := sp.argTypes[k]
		if err := t.Test(b[k]); err != nil {
			if !types.IsViolation(err) {
				return fmt.Errorf("%s: argument %s: %w", sp.name, k, err)
			}
			return &ArgumentTypeError{Function: sp.name, Name: k, Value: b[k], Type: t.String(), Err: err}
		}
	}
	return nil
}

// checkRequires evaluates the preconditions. Any evaluation error is
// itself reported as a failed precondition.
func (sp spec) checkRequires(global *condition.Env, b Bound) error {
	if len(sp.requires) == 0 {
		return nil
	}
	env := condition.NewScope(global, b)
	for _, c := range sp.requires {
		ok, err := c.Eval(env)
		if err != nil || !ok {
			return &EntryConditionsError{Function: sp.name, Condition: c.Source, Params: maps.Clone(b), Err: err}
		}
	}
	return nil
}

func (sp spec) checkReturns(ret any) error {
	if sp.ret == nil {
		return nil
	}
	if err := sp.ret.Test(ret); err != nil {
		if !types.IsViolation(err) {
			return fmt.Errorf("%s: return value: %w", sp.name, err)
		}
		return &ReturnTypeError{Function: sp.name, Value: ret, Type: sp.ret.String(), Err: err}
	}
	return nil
}

// invoke converts the bound arguments to the Go parameter types and
// calls the function. A trailing error result is returned as the
// error; several other results come back as []any.
func (f *Function) invoke(name string, b Bound) (any, error) {
	ft := f.fn.Type()
	in := make([]reflect.Value, len(f.sig.params))
	for i, p := range f.sig.params {
		v, err := types.Convert(b[p.Name], ft.In(i))
		if err != nil {
			return nil, &ArgumentTypeError{Function: name, Name: p.Name, Value: b[p.Name], Type: ft.In(i).String(), Err: err}
		}
		in[i] = v
	}
	var out []reflect.Value
	if ft.IsVariadic() {
		out = f.fn.CallSlice(in)
	} else {
		out = f.fn.Call(in)
	}

	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if e := out[n-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}
