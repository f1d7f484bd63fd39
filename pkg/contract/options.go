package contract

import (
	"fmt"
	"maps"

	"github.com/unbound-force/paranoid/pkg/settings"
)

// Option declares one part of a contract.
type Option func(*decl) error

// decl accumulates the options of one Wrap call before they are
// applied to a Function.
type decl struct {
	name string

	params    []string
	paramMods []paramMod

	accepts      []any
	acceptsSet   bool
	acceptsNamed map[string]any

	returns    any
	returnsSet bool

	requires []string
	ensures  []string

	config []configEntry
	store  *settings.Store

	immutable bool
	mutable   []string

	registry    *Registry
	registrySet bool
}

type configEntry struct {
	name  string
	value any
}

// Name sets the name used in error messages and reports.
func Name(name string) Option {
	return func(d *decl) error {
		d.name = name
		return nil
	}
}

// Params names the function's parameters in order. Conditions refer
// to arguments by these names.
func Params(names ...string) Option {
	return func(d *decl) error {
		if d.params != nil {
			return fmt.Errorf("%w: parameters declared twice", ErrDeclaration)
		}
		d.params = append([]string{}, names...)
		return nil
	}
}

// WithParam configures the named parameter.
func WithParam(name string, opts ...ParamOption) Option {
	return func(d *decl) error {
		d.paramMods = append(d.paramMods, paramMod{name: name, opts: opts})
		return nil
	}
}

// Accepts declares argument types in parameter order, as if they were
// passed as the call's positional arguments. Each specification is
// converted with types.From. Parameters left over take a Constant of
// their default; variadic slots get PositionalArguments and
// KeywordArguments.
func Accepts(specs ...any) Option {
	return func(d *decl) error {
		if d.acceptsSet {
			return fmt.Errorf("%w: cannot set argument types twice", ErrDeclaration)
		}
		d.accepts, d.acceptsSet = specs, true
		return nil
	}
}

// AcceptsNamed declares argument types by parameter name. It may be
// combined with Accepts in the same declaration.
func AcceptsNamed(specs map[string]any) Option {
	return func(d *decl) error {
		if d.acceptsNamed != nil {
			return fmt.Errorf("%w: cannot set argument types twice", ErrDeclaration)
		}
		d.acceptsNamed = maps.Clone(specs)
		if d.acceptsNamed == nil {
			d.acceptsNamed = map[string]any{}
		}
		return nil
	}
}

// Returns declares the return type.
func Returns(spec any) Option {
	return func(d *decl) error {
		if d.returnsSet {
			return fmt.Errorf("%w: cannot set return type twice", ErrDeclaration)
		}
		d.returns, d.returnsSet = spec, true
		return nil
	}
}

// Requires adds a precondition. All preconditions must hold.
func Requires(cond string) Option {
	return func(d *decl) error {
		d.requires = append(d.requires, cond)
		return nil
	}
}

// Ensures adds a postcondition. All postconditions must hold.
func Ensures(cond string) Option {
	return func(d *decl) error {
		d.ensures = append(d.ensures, cond)
		return nil
	}
}

// Config overrides a setting for this function only.
func Config(name string, value any) Option {
	return func(d *decl) error {
		d.config = append(d.config, configEntry{name: name, value: value})
		return nil
	}
}

// WithStore resolves settings against s instead of settings.Global.
func WithStore(s *settings.Store) Option {
	return func(d *decl) error {
		d.store = s
		return nil
	}
}

// Immutable requires that arguments are structurally unchanged after
// the call, except the parameters named in mutable.
func Immutable(mutable ...string) Option {
	return func(d *decl) error {
		d.immutable = true
		d.mutable = append(d.mutable, mutable...)
		return nil
	}
}

// InRegistry records the function in r instead of DefaultRegistry.
// A nil r records it nowhere.
func InRegistry(r *Registry) Option {
	return func(d *decl) error {
		d.registry, d.registrySet = r, true
		return nil
	}
}
