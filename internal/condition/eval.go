package condition

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/unbound-force/paranoid/pkg/types"
)

// Evaluation errors. Every runtime error wraps one of these.
var (
	ErrName         = errors.New("name is not defined")
	ErrType         = errors.New("unsupported operand type")
	ErrZeroDivision = errors.New("division by zero")
	ErrIndex        = errors.New("index out of range")
	ErrAttribute    = errors.New("no such attribute")
	ErrValue        = errors.New("invalid value")
	ErrPanic        = errors.New("panic during evaluation")
)

func (n *Ident) eval(env *Env) (any, error) {
	v, ok := env.Lookup(n.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrName, n.Name)
	}
	return v, nil
}

func (n *Literal) eval(*Env) (any, error) { return n.Value, nil }

func (n *UnaryExpr) eval(env *Env) (any, error) {
	x, err := n.X.eval(env)
	if err != nil {
		return nil, err
	}
	if n.Op == NOT {
		return !truthy(x), nil
	}
	num, ok := toNum(x)
	if !ok {
		return nil, fmt.Errorf("%w: unary %s for %T", ErrType, n.Op, x)
	}
	if n.Op == PLUS {
		return num, nil
	}
	switch v := num.(type) {
	case int64:
		return -v, nil
	default:
		return -v.(float64), nil
	}
}

func (n *BinaryExpr) eval(env *Env) (any, error) {
	x, err := n.X.eval(env)
	if err != nil {
		return nil, err
	}
	y, err := n.Y.eval(env)
	if err != nil {
		return nil, err
	}
	return binaryOp(n.Op, x, y)
}

func (n *BoolExpr) eval(env *Env) (any, error) {
	x, err := n.X.eval(env)
	if err != nil {
		return nil, err
	}
	if n.Op == AND && !truthy(x) || n.Op == OR && truthy(x) {
		return x, nil
	}
	return n.Y.eval(env)
}

func (n *CompareExpr) eval(env *Env) (any, error) {
	left, err := n.First.eval(env)
	if err != nil {
		return nil, err
	}
	for i, op := range n.Ops {
		right, err := n.Operands[i].eval(env)
		if err != nil {
			return nil, err
		}
		ok, err := compare(op, left, right)
		if err != nil {
			return nil, err
		}
		if !ok {
			return false, nil
		}
		left = right
	}
	return true, nil
}

func (n *CondExpr) eval(env *Env) (any, error) {
	test, err := n.Test.eval(env)
	if err != nil {
		return nil, err
	}
	if truthy(test) {
		return n.Then.eval(env)
	}
	return n.Else.eval(env)
}

func (n *CallExpr) eval(env *Env) (any, error) {
	fn, err := n.Fn.eval(env)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(n.Args))
	for i, a := range n.Args {
		if args[i], err = a.eval(env); err != nil {
			return nil, err
		}
	}
	return call(fn, args)
}

func (n *IndexExpr) eval(env *Env) (any, error) {
	x, err := n.X.eval(env)
	if err != nil {
		return nil, err
	}
	i, err := n.Index.eval(env)
	if err != nil {
		return nil, err
	}
	return index(x, i)
}

func (n *AttrExpr) eval(env *Env) (any, error) {
	x, err := n.X.eval(env)
	if err != nil {
		return nil, err
	}
	return attr(x, n.Name)
}

func (n *ListLit) eval(env *Env) (any, error) { return evalAll(n.Elems, env) }

func (n *TupleLit) eval(env *Env) (any, error) { return evalAll(n.Elems, env) }

func evalAll(nodes []Node, env *Env) ([]any, error) {
	out := make([]any, len(nodes))
	for i, e := range nodes {
		v, err := e.eval(env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (n *Comprehension) eval(env *Env) (any, error) {
	iv, err := n.Iter.eval(env)
	if err != nil {
		return nil, err
	}
	items, err := iterate(iv)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(items))
items:
	for _, item := range items {
		vars := make(map[string]any, len(n.Targets))
		if len(n.Targets) == 1 {
			vars[n.Targets[0]] = item
		} else {
			parts, ok := sequence(item)
			if !ok || len(parts) != len(n.Targets) {
				return nil, fmt.Errorf("%w: cannot unpack %v into %d names", ErrValue, item, len(n.Targets))
			}
			for i, t := range n.Targets {
				vars[t] = parts[i]
			}
		}
		scope := NewScope(env, vars)
		for _, c := range n.Conds {
			cv, err := c.eval(scope)
			if err != nil {
				return nil, err
			}
			if !truthy(cv) {
				continue items
			}
		}
		v, err := n.Elem.eval(scope)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// toNum normalizes a number (or bool) to int64 or float64.
func toNum(v any) (any, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return int64(1), true
		}
		return int64(0), true
	case int64:
		return x, true
	case float64:
		return x, true
	case nil:
		return nil, false
	}
	if types.IsIntegerKind(v) {
		rv := reflect.ValueOf(v)
		if rv.CanInt() {
			return rv.Int(), true
		}
		if u := rv.Uint(); u <= math.MaxInt64 {
			return int64(u), true
		}
	}
	if f, ok := types.AsFloat(v); ok {
		return f, true
	}
	return nil, false
}

func toFloat(n any) float64 {
	if i, ok := n.(int64); ok {
		return float64(i)
	}
	return n.(float64)
}

func toInt(v any) (int, bool) {
	n, ok := toNum(v)
	if !ok {
		return 0, false
	}
	if i, ok := n.(int64); ok {
		return int(i), true
	}
	f := n.(float64)
	if math.Floor(f) != f {
		return 0, false
	}
	return int(f), true
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case types.Array:
		return len(x.Data) > 0
	}
	if n, ok := toNum(v); ok {
		return toFloat(n) != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return !rv.IsNil()
	}
	return true
}

// sequence returns the elements of a slice, array or Array.
func sequence(v any) ([]any, bool) {
	if a, ok := v.(types.Array); ok {
		out := make([]any, len(a.Data))
		for i, f := range a.Data {
			out[i] = f
		}
		return out, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func iterate(v any) ([]any, error) {
	if s, ok := v.(string); ok {
		out := make([]any, 0, utf8.RuneCountInString(s))
		for _, r := range s {
			out = append(out, string(r))
		}
		return out, nil
	}
	if seq, ok := sequence(v); ok {
		return seq, nil
	}
	if v != nil {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Map {
			keys := make([]any, 0, rv.Len())
			for _, k := range rv.MapKeys() {
				keys = append(keys, k.Interface())
			}
			sortLoose(keys)
			return keys, nil
		}
	}
	return nil, fmt.Errorf("%w: %T is not iterable", ErrType, v)
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

func binaryOp(op TokenType, x, y any) (any, error) {
	if nx, ok := toNum(x); ok {
		if ny, ok := toNum(y); ok {
			return numericOp(op, nx, ny)
		}
	}
	sx, xStr := x.(string)
	sy, yStr := y.(string)
	switch op {
	case PLUS:
		if xStr && yStr {
			return sx + sy, nil
		}
		if !xStr && !yStr {
			a, okA := sequence(x)
			b, okB := sequence(y)
			if okA && okB {
				out := make([]any, 0, len(a)+len(b))
				return append(append(out, a...), b...), nil
			}
		}
	case STAR:
		if xStr {
			if n, ok := toInt(y); ok {
				return strings.Repeat(sx, max(n, 0)), nil
			}
		}
		if yStr {
			if n, ok := toInt(x); ok {
				return strings.Repeat(sy, max(n, 0)), nil
			}
		}
		if seq, ok := sequence(x); ok {
			if n, ok := toInt(y); ok {
				out := []any{}
				for i := 0; i < n; i++ {
					out = append(out, seq...)
				}
				return out, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s for %T and %T", ErrType, op, x, y)
}

func numericOp(op TokenType, x, y any) (any, error) {
	a, aInt := x.(int64)
	b, bInt := y.(int64)
	if aInt && bInt {
		switch op {
		case PLUS:
			return a + b, nil
		case MINUS:
			return a - b, nil
		case STAR:
			return a * b, nil
		case DSLASH:
			if b == 0 {
				return nil, fmt.Errorf("%w: integer division or modulo by zero", ErrZeroDivision)
			}
			q := a / b
			if (a%b != 0) && ((a < 0) != (b < 0)) {
				q--
			}
			return q, nil
		case PERCENT:
			if b == 0 {
				return nil, fmt.Errorf("%w: integer division or modulo by zero", ErrZeroDivision)
			}
			r := a % b
			if r != 0 && (r < 0) != (b < 0) {
				r += b
			}
			return r, nil
		case DSTAR:
			if b >= 0 {
				if out, ok := intPow(a, b); ok {
					return out, nil
				}
			}
		}
	}
	f, g := toFloat(x), toFloat(y)
	switch op {
	case PLUS:
		return f + g, nil
	case MINUS:
		return f - g, nil
	case STAR:
		return f * g, nil
	case SLASH:
		if g == 0 {
			return nil, fmt.Errorf("%w: float division by zero", ErrZeroDivision)
		}
		return f / g, nil
	case DSLASH:
		if g == 0 {
			return nil, fmt.Errorf("%w: float divmod()", ErrZeroDivision)
		}
		return math.Floor(f / g), nil
	case PERCENT:
		if g == 0 {
			return nil, fmt.Errorf("%w: float modulo", ErrZeroDivision)
		}
		r := math.Mod(f, g)
		if r != 0 && (r < 0) != (g < 0) {
			r += g
		}
		return r, nil
	case DSTAR:
		if f == 0 && g < 0 {
			return nil, fmt.Errorf("%w: 0.0 cannot be raised to a negative power", ErrZeroDivision)
		}
		return math.Pow(f, g), nil
	}
	return nil, fmt.Errorf("%w: %s for numbers", ErrType, op)
}

// intPow raises base to exp by squaring. It reports false when the
// result does not fit in an int64; callers then fall back to floats.
func intPow(base, exp int64) (int64, bool) {
	out := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			r, ok := mulInt(out, base)
			if !ok {
				return 0, false
			}
			out = r
		}
		exp >>= 1
		if exp > 0 {
			sq, ok := mulInt(base, base)
			if !ok {
				return 0, false
			}
			base = sq
		}
	}
	return out, true
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}

func compare(op TokenType, x, y any) (bool, error) {
	switch op {
	case EQ:
		return equal(x, y), nil
	case NEQ:
		return !equal(x, y), nil
	case IN:
		return contains(y, x)
	case NOT_IN:
		ok, err := contains(y, x)
		return !ok, err
	case IS:
		return identical(x, y), nil
	case IS_NOT:
		return !identical(x, y), nil
	}
	c, err := order(x, y)
	if errors.Is(err, errUnordered) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch op {
	case LT:
		return c < 0, nil
	case LEQ:
		return c <= 0, nil
	case GT:
		return c > 0, nil
	case GEQ:
		return c >= 0, nil
	}
	return false, fmt.Errorf("%w: comparison %s", ErrType, op)
}

// order returns -1, 0 or 1. NaN compares unordered, which makes every
// ordering comparison false.
func order(x, y any) (int, error) {
	if nx, ok := toNum(x); ok {
		if ny, ok := toNum(y); ok {
			a, aInt := nx.(int64)
			b, bInt := ny.(int64)
			if aInt && bInt {
				return cmpInt(a, b), nil
			}
			f, g := toFloat(nx), toFloat(ny)
			switch {
			case f < g:
				return -1, nil
			case f > g:
				return 1, nil
			case f == g:
				return 0, nil
			}
			return 0, errUnordered
		}
	}
	if sx, ok := x.(string); ok {
		if sy, ok := y.(string); ok {
			return strings.Compare(sx, sy), nil
		}
	}
	a, okA := sequence(x)
	b, okB := sequence(y)
	if okA && okB {
		for i := 0; i < len(a) && i < len(b); i++ {
			if equal(a[i], b[i]) {
				continue
			}
			return order(a[i], b[i])
		}
		return cmpInt(int64(len(a)), int64(len(b))), nil
	}
	return 0, fmt.Errorf("%w: cannot order %T and %T", ErrType, x, y)
}

var errUnordered = errors.New("unordered")

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func equal(x, y any) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	if nx, ok := toNum(x); ok {
		if ny, ok := toNum(y); ok {
			return toFloat(nx) == toFloat(ny)
		}
		return false
	}
	if sx, ok := x.(string); ok {
		sy, ok := y.(string)
		return ok && sx == sy
	}
	a, okA := sequence(x)
	b, okB := sequence(y)
	if okA || okB {
		if !okA || !okB || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !equal(a[i], b[i]) {
				return false
			}
		}
		return true
	}
	return types.Equal(x, y)
}

func identical(x, y any) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	rx, ry := reflect.ValueOf(x), reflect.ValueOf(y)
	if rx.Kind() == reflect.Pointer && ry.Kind() == reflect.Pointer {
		return rx.Pointer() == ry.Pointer()
	}
	return equal(x, y)
}

func contains(container, item any) (bool, error) {
	switch c := container.(type) {
	case nil:
		return false, fmt.Errorf("%w: argument of type None is not iterable", ErrType)
	case string:
		s, ok := item.(string)
		if !ok {
			return false, fmt.Errorf("%w: 'in <string>' requires string as left operand, not %T", ErrType, item)
		}
		return strings.Contains(c, s), nil
	case types.Type:
		return types.Contains(c, item), nil
	}
	rv := reflect.ValueOf(container)
	if rv.Kind() == reflect.Map {
		k, err := types.Convert(item, rv.Type().Key())
		if err != nil {
			return false, nil
		}
		return rv.MapIndex(k).IsValid(), nil
	}
	if seq, ok := sequence(container); ok {
		for _, e := range seq {
			if equal(e, item) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: argument of type %T is not iterable", ErrType, container)
}

func index(x, i any) (any, error) {
	if s, ok := x.(string); ok {
		runes := []rune(s)
		n, err := seqIndex(i, len(runes))
		if err != nil {
			return nil, err
		}
		return string(runes[n]), nil
	}
	if a, ok := x.(types.Array); ok && a.Dims() > 1 {
		return nil, fmt.Errorf("%w: only 1-d arrays can be indexed", ErrType)
	}
	if seq, ok := sequence(x); ok {
		n, err := seqIndex(i, len(seq))
		if err != nil {
			return nil, err
		}
		return seq[n], nil
	}
	if x != nil {
		rv := reflect.ValueOf(x)
		for rv.Kind() == reflect.Pointer && !rv.IsNil() {
			rv = rv.Elem()
		}
		if rv.Kind() == reflect.Map {
			k, err := types.Convert(i, rv.Type().Key())
			if err != nil {
				return nil, fmt.Errorf("%w: key %v", ErrIndex, i)
			}
			v := rv.MapIndex(k)
			if !v.IsValid() {
				return nil, fmt.Errorf("%w: key %v", ErrIndex, i)
			}
			return v.Interface(), nil
		}
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			return index(rv.Interface(), i)
		}
	}
	return nil, fmt.Errorf("%w: %T is not subscriptable", ErrType, x)
}

func seqIndex(i any, n int) (int, error) {
	k, ok := toInt(i)
	if !ok {
		return 0, fmt.Errorf("%w: indices must be integers, not %T", ErrType, i)
	}
	if k < 0 {
		k += n
	}
	if k < 0 || k >= n {
		return 0, fmt.Errorf("%w: %v", ErrIndex, i)
	}
	return k, nil
}

// attr resolves x.name against array metadata, string-keyed maps,
// struct fields and methods. A lower-case name also matches the
// exported Go spelling.
func attr(x any, name string) (any, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: None has no attribute %q", ErrAttribute, name)
	}
	if a, ok := x.(types.Array); ok {
		switch name {
		case "shape":
			shape := make([]any, len(a.Shape))
			for i, d := range a.Shape {
				shape[i] = int64(d)
			}
			return shape, nil
		case "size":
			return int64(len(a.Data)), nil
		case "ndim":
			return int64(a.Dims()), nil
		}
	}
	names := []string{name}
	if r, size := utf8.DecodeRuneInString(name); unicode.IsLower(r) {
		names = append(names, string(unicode.ToUpper(r))+name[size:])
	}
	rv := reflect.ValueOf(x)
	for _, n := range names {
		if m := rv.MethodByName(n); m.IsValid() {
			return m.Interface(), nil
		}
	}
	elem := rv
	for elem.Kind() == reflect.Pointer || elem.Kind() == reflect.Interface {
		if elem.IsNil() {
			return nil, fmt.Errorf("%w: nil %T has no attribute %q", ErrAttribute, x, name)
		}
		elem = elem.Elem()
	}
	switch elem.Kind() {
	case reflect.Map:
		if elem.Type().Key().Kind() == reflect.String {
			v := elem.MapIndex(reflect.ValueOf(name).Convert(elem.Type().Key()))
			if v.IsValid() {
				return v.Interface(), nil
			}
		}
	case reflect.Struct:
		for _, n := range names {
			f := elem.FieldByName(n)
			if f.IsValid() && f.CanInterface() {
				return f.Interface(), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %T has no attribute %q", ErrAttribute, x, name)
}

func call(fn any, args []any) (any, error) {
	if b, ok := fn.(builtin); ok {
		return b(args)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: None is not callable", ErrType)
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %T is not callable", ErrType, fn)
	}
	ft := rv.Type()
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("%w: %d arguments, want at least %d", ErrType, len(args), fixed)
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("%w: %d arguments, want %d", ErrType, len(args), fixed)
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var t reflect.Type
		if i < fixed {
			t = ft.In(i)
		} else {
			t = ft.In(fixed).Elem()
		}
		v, err := types.Convert(a, t)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %v", ErrType, i+1, err)
		}
		in[i] = v
	}
	out := rv.Call(in)
	errType := reflect.TypeOf((*error)(nil)).Elem()
	if n := len(out); n > 0 && ft.Out(n-1) == errType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	res := make([]any, len(out))
	for i, o := range out {
		res[i] = o.Interface()
	}
	return res, nil
}

// sortLoose sorts numbers and strings in their natural order and
// anything else by its printed form.
func sortLoose(vs []any) {
	sort.SliceStable(vs, func(i, j int) bool {
		if c, err := order(vs[i], vs[j]); err == nil {
			return c < 0
		}
		return fmt.Sprint(vs[i]) < fmt.Sprint(vs[j])
	})
}
