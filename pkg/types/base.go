package types

import (
	"fmt"
	"reflect"
)

// Boolean is true or false.
type Boolean struct{}

func (Boolean) String() string { return "Boolean" }

func (t Boolean) Test(v any) error {
	if _, ok := v.(bool); !ok {
		return violation(t, v, "not a boolean")
	}
	return nil
}

func (Boolean) Generate() ([]any, error) { return []any{true, false}, nil }

// Nothing accepts only nil.
type Nothing struct{}

func (Nothing) String() string { return "Nothing" }

func (t Nothing) Test(v any) error {
	if v != nil {
		return violation(t, v, "value is not nil")
	}
	return nil
}

func (Nothing) Generate() ([]any, error) { return []any{nil}, nil }

// Function accepts any Go func value or any value with a Call method.
// It cannot generate.
type Function struct{}

func (Function) String() string { return "Function" }

func (t Function) Test(v any) error {
	if v == nil {
		return violation(t, v, "not a function")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func && !rv.IsNil() {
		return nil
	}
	if rv.MethodByName("Call").IsValid() {
		return nil
	}
	return violation(t, v, "not a function")
}

func (t Function) Generate() ([]any, error) {
	return nil, &NoGeneratorError{Type: t.String()}
}

// Constant has exactly one valid value. Values are compared with Equal.
type Constant struct {
	// Value is the only accepted value. It must not be nil.
	Value any
}

func (c Constant) String() string { return "Constant(" + reprValue(c.Value) + ")" }

func (c Constant) Test(v any) error {
	if c.Value == nil {
		return invalidType("nil cannot be a constant")
	}
	if !Equal(c.Value, v) {
		return violation(c, v, "invalid constant")
	}
	return nil
}

func (c Constant) Generate() ([]any, error) {
	if c.Value == nil {
		return nil, invalidType("nil cannot be a constant")
	}
	return []any{c.Value}, nil
}

// Unchecked accepts every value. It generates the values of Of, or
// nothing when Of is nil.
type Unchecked struct {
	Of Type
}

func (u Unchecked) String() string {
	if u.Of == nil {
		return "Unchecked"
	}
	return "Unchecked(" + u.Of.String() + ")"
}

func (Unchecked) Test(any) error { return nil }

func (u Unchecked) Generate() ([]any, error) {
	if u.Of == nil {
		return nil, nil
	}
	return u.Of.Generate()
}

// Self is the placeholder for a method receiver inside a class
// contract. BindClass replaces it with the Generic of the bound class.
type Self struct{}

func (Self) String() string { return "Self" }

func (Self) Test(any) error { return unboundSelf() }

func (Self) Generate() ([]any, error) { return nil, unboundSelf() }

func unboundSelf() error {
	return &InvalidTypeError{Reason: ErrUnboundSelf.Error(), Err: ErrUnboundSelf}
}

// PositionalArguments is the synthesized type of a variadic
// positional slot. The bound value is always a []any.
type PositionalArguments struct{}

func (PositionalArguments) String() string { return "PositionalArguments" }

func (t PositionalArguments) Test(v any) error {
	if _, ok := v.([]any); !ok {
		return violation(t, v, "non-tuple passed")
	}
	return nil
}

func (PositionalArguments) Generate() ([]any, error) { return []any{[]any{}}, nil }

// KeywordArguments is the synthesized type of a variadic keyword
// slot. The bound value is always a map[string]any.
type KeywordArguments struct{}

func (KeywordArguments) String() string { return "KeywordArguments" }

func (t KeywordArguments) Test(v any) error {
	if _, ok := v.(map[string]any); !ok {
		return violation(t, v, "non-dict passed")
	}
	return nil
}

func (KeywordArguments) Generate() ([]any, error) { return []any{map[string]any{}}, nil }

// goString is used where a type has to be named in a message.
func goString(rt reflect.Type) string {
	if rt == nil {
		return "<nil>"
	}
	return fmt.Sprint(rt)
}
