package condition

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/unbound-force/paranoid/pkg/types"
)

// builtin is a function callable from a condition.
type builtin func(args []any) (any, error)

func builtinValues() map[string]any {
	return map[string]any{
		"len":      builtin(builtinLen),
		"abs":      builtin(builtinAbs),
		"min":      builtin(func(args []any) (any, error) { return extreme("min", args, -1) }),
		"max":      builtin(func(args []any) (any, error) { return extreme("max", args, 1) }),
		"sum":      builtin(builtinSum),
		"all":      builtin(builtinAll),
		"any":      builtin(builtinAny),
		"int":      builtin(builtinInt),
		"float":    builtin(builtinFloat),
		"str":      builtin(builtinStr),
		"bool":     builtin(builtinBool),
		"round":    builtin(builtinRound),
		"isnan":    builtin(floatPredicate("isnan", math.IsNaN)),
		"isinf":    builtin(floatPredicate("isinf", func(f float64) bool { return math.IsInf(f, 0) })),
		"isfinite": builtin(floatPredicate("isfinite", func(f float64) bool { return !math.IsInf(f, 0) && !math.IsNaN(f) })),
		"sorted":   builtin(builtinSorted),
		"range":    builtin(builtinRange),
	}
}

func arity(name string, args []any, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("%w: %s() takes %d arguments (%d given)", ErrType, name, lo, len(args))
		}
		return fmt.Errorf("%w: %s() takes %d to %d arguments (%d given)", ErrType, name, lo, hi, len(args))
	}
	return nil
}

func builtinLen(args []any) (any, error) {
	if err := arity("len", args, 1, 1); err != nil {
		return nil, err
	}
	switch x := args[0].(type) {
	case string:
		return int64(utf8.RuneCountInString(x)), nil
	case types.Array:
		if x.Dims() == 0 {
			return nil, fmt.Errorf("%w: len() of unsized object", ErrType)
		}
		return int64(x.Shape[0]), nil
	case nil:
		return nil, fmt.Errorf("%w: object of type None has no len()", ErrType)
	}
	rv := reflect.ValueOf(args[0])
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String, reflect.Chan:
		return int64(rv.Len()), nil
	}
	return nil, fmt.Errorf("%w: object of type %T has no len()", ErrType, args[0])
}

func builtinAbs(args []any) (any, error) {
	if err := arity("abs", args, 1, 1); err != nil {
		return nil, err
	}
	n, ok := toNum(args[0])
	if !ok {
		return nil, fmt.Errorf("%w: bad operand type for abs(): %T", ErrType, args[0])
	}
	if i, ok := n.(int64); ok {
		if i < 0 {
			return -i, nil
		}
		return i, nil
	}
	return math.Abs(n.(float64)), nil
}

// extreme implements min (sign -1) and max (sign 1) over either a
// single iterable argument or the arguments themselves.
func extreme(name string, args []any, sign int) (any, error) {
	items := args
	if len(args) == 1 {
		var err error
		if items, err = iterate(args[0]); err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s() arg is an empty sequence", ErrValue, name)
	}
	best := items[0]
	for _, v := range items[1:] {
		c, err := order(v, best)
		if err != nil && err != errUnordered {
			return nil, err
		}
		if c*sign > 0 {
			best = v
		}
	}
	return best, nil
}

func builtinSum(args []any) (any, error) {
	if err := arity("sum", args, 1, 2); err != nil {
		return nil, err
	}
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	var total any = int64(0)
	if len(args) == 2 {
		total = args[1]
	}
	for _, v := range items {
		if total, err = binaryOp(PLUS, total, v); err != nil {
			return nil, err
		}
	}
	return total, nil
}

func builtinAll(args []any) (any, error) {
	if err := arity("all", args, 1, 1); err != nil {
		return nil, err
	}
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	for _, v := range items {
		if !truthy(v) {
			return false, nil
		}
	}
	return true, nil
}

func builtinAny(args []any) (any, error) {
	if err := arity("any", args, 1, 1); err != nil {
		return nil, err
	}
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	for _, v := range items {
		if truthy(v) {
			return true, nil
		}
	}
	return false, nil
}

func builtinInt(args []any) (any, error) {
	if err := arity("int", args, 1, 1); err != nil {
		return nil, err
	}
	if s, ok := args[0].(string); ok {
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid literal for int(): %q", ErrValue, s)
		}
		return i, nil
	}
	n, ok := toNum(args[0])
	if !ok {
		return nil, fmt.Errorf("%w: int() argument must be a string or a number, not %T", ErrType, args[0])
	}
	if i, ok := n.(int64); ok {
		return i, nil
	}
	f := n.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: cannot convert float %v to integer", ErrValue, f)
	}
	return int64(math.Trunc(f)), nil
}

func builtinFloat(args []any) (any, error) {
	if err := arity("float", args, 1, 1); err != nil {
		return nil, err
	}
	if s, ok := args[0].(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: could not convert string to float: %q", ErrValue, s)
		}
		return f, nil
	}
	n, ok := toNum(args[0])
	if !ok {
		return nil, fmt.Errorf("%w: float() argument must be a string or a number, not %T", ErrType, args[0])
	}
	return toFloat(n), nil
}

func builtinStr(args []any) (any, error) {
	if err := arity("str", args, 1, 1); err != nil {
		return nil, err
	}
	return format(args[0]), nil
}

// format renders a value the way conditions print it.
func format(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case string:
		return x
	case float64:
		switch {
		case math.IsInf(x, 1):
			return "inf"
		case math.IsInf(x, -1):
			return "-inf"
		case math.IsNaN(x):
			return "nan"
		case x == math.Trunc(x) && math.Abs(x) < 1e16:
			return strconv.FormatFloat(x, 'f', 1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

func builtinBool(args []any) (any, error) {
	if err := arity("bool", args, 1, 1); err != nil {
		return nil, err
	}
	return truthy(args[0]), nil
}

func builtinRound(args []any) (any, error) {
	if err := arity("round", args, 1, 2); err != nil {
		return nil, err
	}
	n, ok := toNum(args[0])
	if !ok {
		return nil, fmt.Errorf("%w: type %T doesn't define round", ErrType, args[0])
	}
	if len(args) == 1 {
		if i, ok := n.(int64); ok {
			return i, nil
		}
		f := n.(float64)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: cannot convert float %v to integer", ErrValue, f)
		}
		return int64(math.RoundToEven(f)), nil
	}
	digits, ok := toInt(args[1])
	if !ok {
		return nil, fmt.Errorf("%w: round() digits must be an integer", ErrType)
	}
	scale := math.Pow(10, float64(digits))
	return math.RoundToEven(toFloat(n)*scale) / scale, nil
}

func floatPredicate(name string, pred func(float64) bool) builtin {
	return func(args []any) (any, error) {
		if err := arity(name, args, 1, 1); err != nil {
			return nil, err
		}
		n, ok := toNum(args[0])
		if !ok {
			return nil, fmt.Errorf("%w: %s() needs a number, not %T", ErrType, name, args[0])
		}
		return pred(toFloat(n)), nil
	}
}

func builtinSorted(args []any) (any, error) {
	if err := arity("sorted", args, 1, 1); err != nil {
		return nil, err
	}
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	out := append([]any{}, items...)
	for i := 1; i < len(out); i++ {
		if _, err := order(out[i-1], out[i]); err != nil && err != errUnordered {
			return nil, err
		}
	}
	sortLoose(out)
	return out, nil
}

func builtinRange(args []any) (any, error) {
	if err := arity("range", args, 1, 3); err != nil {
		return nil, err
	}
	bounds := make([]int, len(args))
	for i, a := range args {
		n, ok := toInt(a)
		if !ok {
			return nil, fmt.Errorf("%w: range() arguments must be integers, not %T", ErrType, a)
		}
		bounds[i] = n
	}
	start, stop, step := 0, bounds[0], 1
	if len(bounds) > 1 {
		start, stop = bounds[0], bounds[1]
	}
	if len(bounds) > 2 {
		step = bounds[2]
	}
	if step == 0 {
		return nil, fmt.Errorf("%w: range() arg 3 must not be zero", ErrValue)
	}
	var out []any
	for i := start; step > 0 && i < stop || step < 0 && i > stop; i += step {
		out = append(out, int64(i))
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}
