package contract

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Kind classifies a parameter by how call arguments bind to it.
type Kind int

const (
	// KindPositional parameters bind by position or by name.
	KindPositional Kind = iota
	// KindVarPositional collects surplus positional arguments as []any.
	KindVarPositional
	// KindVarKeyword collects unknown named arguments as map[string]any.
	KindVarKeyword
)

func (k Kind) String() string {
	switch k {
	case KindVarPositional:
		return "variadic"
	case KindVarKeyword:
		return "variadic keyword"
	}
	return "positional"
}

// Param describes one parameter of a wrapped function.
type Param struct {
	Name       string
	Kind       Kind
	Default    any
	HasDefault bool
}

// Bound maps parameter names to argument values. A fully bound call
// has an entry for every parameter.
type Bound map[string]any

// ParamOption configures a parameter declared with WithParam.
type ParamOption func(*Param) error

// Default gives a positional parameter a default value.
func Default(v any) ParamOption {
	return func(p *Param) error {
		if p.Kind != KindPositional {
			return fmt.Errorf("%w: %s parameter %s cannot have a default", ErrDeclaration, p.Kind, p.Name)
		}
		p.Default, p.HasDefault = v, true
		return nil
	}
}

// Variadic makes the parameter collect surplus positional arguments.
// The last parameter of a variadic Go function is variadic already.
func Variadic() ParamOption {
	return func(p *Param) error {
		if p.HasDefault {
			return fmt.Errorf("%w: variadic parameter %s cannot have a default", ErrDeclaration, p.Name)
		}
		p.Kind = KindVarPositional
		return nil
	}
}

// VarKeyword makes the parameter collect unknown named arguments. Its
// Go type must be a map with string keys.
func VarKeyword() ParamOption {
	return func(p *Param) error {
		if p.HasDefault {
			return fmt.Errorf("%w: keyword parameter %s cannot have a default", ErrDeclaration, p.Name)
		}
		p.Kind = KindVarKeyword
		return nil
	}
}

// signature is the frozen parameter list of a wrapped function.
type signature struct {
	params []Param
	index  map[string]int
	varPos int
	varKw  int
}

type paramMod struct {
	name string
	opts []ParamOption
}

// newSignature builds the parameter list for a function of type ft.
// Unnamed parameters are called arg0, arg1 and so on.
func newSignature(ft reflect.Type, names []string, mods []paramMod) (*signature, error) {
	n := ft.NumIn()
	if names == nil {
		for i := 0; i < n; i++ {
			names = append(names, fmt.Sprintf("arg%d", i))
		}
	}
	if len(names) != n {
		return nil, fmt.Errorf("%w: %d parameter names for a function of %d parameters", ErrDeclaration, len(names), n)
	}
	s := &signature{index: map[string]int{}, varPos: -1, varKw: -1}
	for i, name := range names {
		if name == "" || strings.Contains(name, "`") {
			return nil, fmt.Errorf("%w: invalid parameter name %q", ErrDeclaration, name)
		}
		if _, dup := s.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate parameter name %q", ErrDeclaration, name)
		}
		s.index[name] = i
		s.params = append(s.params, Param{Name: name})
	}
	if ft.IsVariadic() {
		s.params[n-1].Kind = KindVarPositional
	}
	for _, m := range mods {
		i, ok := s.index[m.name]
		if !ok {
			return nil, fmt.Errorf("%w: no parameter named %q", ErrDeclaration, m.name)
		}
		for _, opt := range m.opts {
			if err := opt(&s.params[i]); err != nil {
				return nil, err
			}
		}
	}
	for i, p := range s.params {
		switch p.Kind {
		case KindVarPositional:
			if s.varPos >= 0 {
				return nil, fmt.Errorf("%w: more than one variadic parameter", ErrDeclaration)
			}
			if ft.In(i).Kind() != reflect.Slice {
				return nil, fmt.Errorf("%w: variadic parameter %s must be a slice, not %s", ErrDeclaration, p.Name, ft.In(i))
			}
			s.varPos = i
		case KindVarKeyword:
			if s.varKw >= 0 {
				return nil, fmt.Errorf("%w: more than one keyword parameter", ErrDeclaration)
			}
			if t := ft.In(i); t.Kind() != reflect.Map || t.Key().Kind() != reflect.String {
				return nil, fmt.Errorf("%w: keyword parameter %s must be a map with string keys, not %s", ErrDeclaration, p.Name, t)
			}
			s.varKw = i
		}
	}
	if s.varKw >= 0 && s.varKw != n-1 {
		return nil, fmt.Errorf("%w: keyword parameter %s must be last", ErrDeclaration, s.params[s.varKw].Name)
	}
	if s.varPos >= 0 && s.varPos < n-1 && !(s.varPos == n-2 && s.varKw == n-1) {
		return nil, fmt.Errorf("%w: variadic parameter %s must be last", ErrDeclaration, s.params[s.varPos].Name)
	}
	return s, nil
}

// names returns the parameter names in declaration order.
func (s *signature) names() []string {
	out := make([]string, len(s.params))
	for i, p := range s.params {
		out[i] = p.Name
	}
	return out
}

// bind maps a call's positional and named arguments onto the
// parameters. The mapping is total: every parameter ends up bound,
// from an argument, its default, or an empty collection for the
// variadic slots.
func (s *signature) bind(args []any, kwargs map[string]any) (Bound, error) {
	b := make(Bound, len(s.params))
	var extra []any
	pos := 0
	for _, a := range args {
		for pos < len(s.params) && s.params[pos].Kind != KindPositional {
			pos++
		}
		if pos < len(s.params) {
			b[s.params[pos].Name] = a
			pos++
			continue
		}
		if s.varPos < 0 {
			return nil, fmt.Errorf("%w: takes %d positional arguments but %d were given",
				ErrBind, s.positionalCount(), len(args))
		}
		extra = append(extra, a)
	}

	var kw map[string]any
	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if i, ok := s.index[k]; ok && s.params[i].Kind == KindPositional {
			if _, dup := b[k]; dup {
				return nil, fmt.Errorf("%w: got multiple values for argument %q", ErrBind, k)
			}
			b[k] = kwargs[k]
			continue
		}
		if s.varKw < 0 {
			return nil, fmt.Errorf("%w: got an unexpected keyword argument %q", ErrBind, k)
		}
		if kw == nil {
			kw = map[string]any{}
		}
		kw[k] = kwargs[k]
	}

	var missing []string
	for _, p := range s.params {
		switch p.Kind {
		case KindVarPositional:
			if extra == nil {
				extra = []any{}
			}
			b[p.Name] = extra
		case KindVarKeyword:
			if kw == nil {
				kw = map[string]any{}
			}
			b[p.Name] = kw
		default:
			if _, ok := b[p.Name]; ok {
				continue
			}
			if !p.HasDefault {
				missing = append(missing, p.Name)
				continue
			}
			b[p.Name] = p.Default
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required arguments: %s", ErrBind, strings.Join(missing, ", "))
	}
	return b, nil
}

// bindNamed completes an already named argument set. Names must be
// parameters; absent ones take their defaults.
func (s *signature) bindNamed(named Bound) (Bound, error) {
	b := make(Bound, len(s.params))
	for k, v := range named {
		if _, ok := s.index[k]; !ok {
			return nil, fmt.Errorf("%w: unknown parameter %q", ErrBind, k)
		}
		b[k] = v
	}
	var missing []string
	for _, p := range s.params {
		if _, ok := b[p.Name]; ok {
			continue
		}
		switch {
		case p.Kind == KindVarPositional:
			b[p.Name] = []any{}
		case p.Kind == KindVarKeyword:
			b[p.Name] = map[string]any{}
		case p.HasDefault:
			b[p.Name] = p.Default
		default:
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required arguments: %s", ErrBind, strings.Join(missing, ", "))
	}
	return b, nil
}

func (s *signature) positionalCount() int {
	n := 0
	for _, p := range s.params {
		if p.Kind == KindPositional {
			n++
		}
	}
	return n
}
