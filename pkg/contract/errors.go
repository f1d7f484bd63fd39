package contract

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/unbound-force/paranoid/internal/condition"
)

// ErrVerify is matched by every contract violation.
var ErrVerify = errors.New("contract violation")

// ErrBind is returned when call arguments cannot be mapped onto the
// declared parameters.
var ErrBind = errors.New("cannot bind arguments")

// ErrDeclaration is returned for a malformed or conflicting contract
// declaration.
var ErrDeclaration = errors.New("invalid contract declaration")

// ArgumentTypeError reports an argument that violates its declared
// type, or an argument specification that does not cover the
// function's parameters.
type ArgumentTypeError struct {
	Function string

	// Name is empty when the specification itself is inconsistent.
	Name  string
	Value any
	Type  string
	Err   error
}

func (e *ArgumentTypeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("Invalid argument specification in %s", e.Function)
	}
	return fmt.Sprintf("Invalid argument type: %s=%s is not of type %s in %s",
		e.Name, repr(e.Value), e.Type, e.Function)
}

func (e *ArgumentTypeError) Unwrap() error { return e.Err }
func (e *ArgumentTypeError) Is(target error) bool { return target == ErrVerify }

// EntryConditionsError reports a precondition that was false or could
// not be evaluated.
type EntryConditionsError struct {
	Function  string
	Condition string
	Params    map[string]any

	// Err is the evaluation error, nil when the condition was false.
	Err error
}

func (e *EntryConditionsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Invalid function requirement '%s' in %s\nparams: %s\nerror: %v",
			e.Condition, e.Function, formatParams(e.Params), e.Err)
	}
	return fmt.Sprintf("Function requirement '%s' failed in %s\nparams: %s",
		e.Condition, e.Function, formatParams(e.Params))
}

func (e *EntryConditionsError) Unwrap() error { return e.Err }
func (e *EntryConditionsError) Is(target error) bool { return target == ErrVerify }

// ReturnTypeError reports a return value that violates the declared
// return type.
type ReturnTypeError struct {
	Function string
	Value    any
	Type     string
	Err      error
}

func (e *ReturnTypeError) Error() string {
	return fmt.Sprintf("Invalid return type of %s in %s (want %s)", repr(e.Value), e.Function, e.Type)
}

func (e *ReturnTypeError) Unwrap() error { return e.Err }
func (e *ReturnTypeError) Is(target error) bool { return target == ErrVerify }

// ExitConditionsError reports a postcondition that was false. For a
// condition that refers to other calls, Others holds the cached calls
// bound to the backticked names in the failing arrangement.
type ExitConditionsError struct {
	Function  string
	Condition string

	// Params holds the arguments of the current call plus "return".
	Params map[string]any
	Others []map[string]any
}

func (e *ExitConditionsError) Error() string {
	msg := fmt.Sprintf("Ensures statement '%s' failed in %s\nparams: %s",
		e.Condition, e.Function, formatParams(e.Params))
	for _, o := range e.Others {
		msg += "\nother call: " + formatParams(o)
	}
	return msg
}

func (e *ExitConditionsError) Is(target error) bool { return target == ErrVerify }

// ObjectModifiedError reports an argument that changed during a call
// to a function declared Immutable.
type ObjectModifiedError struct {
	Function string
	Name     string
}

func (e *ObjectModifiedError) Error() string {
	return fmt.Sprintf("Argument %s was modified by %s", e.Name, e.Function)
}

func (e *ObjectModifiedError) Is(target error) bool { return target == ErrVerify }

// InternalError reports corrupted contract bookkeeping.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string { return "internal contract error: " + e.Reason }

func (e *InternalError) Is(target error) bool { return target == ErrVerify }

// publicParams renames the reserved return slot for display.
func publicParams(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		if k == condition.ReturnName {
			k = "return"
		}
		out[k] = v
	}
	return out
}

func formatParams(params map[string]any) string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = k + ": " + repr(params[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func repr(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case nil:
		return "nil"
	}
	return fmt.Sprintf("%v", v)
}
