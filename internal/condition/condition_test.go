package condition

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/unbound-force/paranoid/pkg/types"
)

func env(vars map[string]any) *Env {
	return NewScope(Root(), vars)
}

// ---------------------------------------------------------------------------
// Rewriting
// ---------------------------------------------------------------------------

func TestCompile_Rewrite(t *testing.T) {
	tests := []struct {
		src       string
		mode      Mode
		rewritten string
		depth     int
	}{
		{"x > 0", Precondition, "x > 0", 0},
		{"a --> b", Precondition, "( b) if (a ) else True", 0},
		{"a <--> b", Precondition, "(( b) if (a ) else True) and ((a ) if ( b) else True)", 0},
		{"return >= 0", Postcondition, "__RETURN__ >= 0", 0},
		{"x` <= x --> return` <= return", Postcondition,
			"( __RETURN____BACKTICK__ <= __RETURN__) if (x__BACKTICK__ <= x ) else True", 1},
		{"x < x` < x``", Postcondition,
			"x < x__BACKTICK__ < x__DOUBLEBACKTICK__", 2},
		{"returned > 0", Postcondition, "returned > 0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			c, err := Compile(tt.src, tt.mode)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.src, err)
			}
			if c.Rewritten != tt.rewritten {
				t.Errorf("Rewritten = %q, want %q", c.Rewritten, tt.rewritten)
			}
			if c.Depth != tt.depth {
				t.Errorf("Depth = %d, want %d", c.Depth, tt.depth)
			}
			if c.Source != tt.src {
				t.Errorf("Source = %q, want %q", c.Source, tt.src)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		mode Mode
	}{
		{"two implications", "a --> b --> c", Precondition},
		{"two biconditionals", "a <--> b <--> c", Postcondition},
		{"mixed implications", "a <--> b --> c", Postcondition},
		{"backtick in precondition", "x` > x", Precondition},
		{"return in precondition", "return > 0", Precondition},
		{"triple backtick", "x``` > 0", Postcondition},
		{"unbalanced paren", "(x > 0", Precondition},
		{"trailing operator", "x >", Precondition},
		{"single equals", "x = 1", Precondition},
		{"unterminated string", "x == 'abc", Precondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src, tt.mode)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Errorf("Compile(%q) error = %v, want *SyntaxError", tt.src, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Evaluation
// ---------------------------------------------------------------------------

func TestEval(t *testing.T) {
	vars := map[string]any{
		"n":      5,
		"m":      3,
		"f":      2.5,
		"s":      "hello",
		"l":      []int{1, 2, 3},
		"empty":  []float64{},
		"d":      map[string]int{"a": 1},
		"nan":    math.NaN(),
		"flag":   true,
		"nested": [][]int{{1, 2}, {3}},
	}
	tests := []struct {
		src  string
		want bool
	}{
		{"n >= m", true},
		{"n < m", false},
		{"0 < m < n", true},
		{"0 < n < m", false},
		{"n - m == 2", true},
		{"n / 2 == 2.5", true},
		{"n // 2 == 2", true},
		{"-7 // 2 == -4", true},
		{"-7 % 3 == 2", true},
		{"2 ** 10 == 1024", true},
		{"-2 ** 2 == -4", true},
		{"2 ** -1 == 0.5", true},
		{"f * 2 == n", true},
		{"n == 5.0", true},
		{"s == 'hello'", true},
		{`s + " world" == "hello world"`, true},
		{"'ell' in s", true},
		{"'z' not in s", true},
		{"2 in l", true},
		{"4 not in l", true},
		{"'a' in d", true},
		{"'b' in d", false},
		{"d['a'] == 1", true},
		{"l[-1] == 3", true},
		{"len(l) == 3 and len(s) == 5", true},
		{"len(empty) == 0", true},
		{"not empty", true},
		{"not l", false},
		{"sum(l) == 6", true},
		{"min(l) == 1 and max(l) == 3", true},
		{"max(n, m, 10) == 10", true},
		{"all(x > 0 for x in l)", true},
		{"any(x > 2 for x in l)", true},
		{"all([x > 1 for x in l])", false},
		{"[x * 2 for x in l if x > 1] == [4, 6]", true},
		{"sum(len(r) for r in nested) == 3", true},
		{"isnan(nan)", true},
		{"nan != nan", true},
		{"not (nan < 1) and not (nan > 1)", true},
		{"isinf(float('inf'))", true},
		{"isfinite(f)", true},
		{"abs(-3) == 3", true},
		{"round(2.5) == 2 and round(3.5) == 4", true},
		{"round(3.14159, 2) == 3.14", true},
		{"int('42') == 42 and int(3.9) == 3", true},
		{"str(n) == '5'", true},
		{"bool(0) == False", true},
		{"sorted([3, 1, 2]) == [1, 2, 3]", true},
		{"list_len if False else True", true},
		{"range(3) == [0, 1, 2]", true},
		{"flag is True", true},
		{"None is None", true},
		{"flag is not None", true},
		{"(n, m) == (5, 3)", true},
		{"n > 10 or m > 2", true},
		{"n > 10 and undefined_name", false},
		{"n if flag else m", true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			c, err := Compile(tt.src, Precondition)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.src, err)
			}
			got, err := c.Eval(env(vars))
			if err != nil {
				t.Fatalf("Eval(%q) error: %v", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestEval_Implication(t *testing.T) {
	c := MustCompile("x > 0 --> 1 / x > 0", Precondition)
	for _, x := range []any{-1, 0, 2} {
		got, err := c.Eval(env(map[string]any{"x": x}))
		if err != nil {
			t.Fatalf("Eval(x=%v) error: %v", x, err)
		}
		if !got {
			t.Errorf("Eval(x=%v) = false, want true", x)
		}
	}

	iff := MustCompile("x > 0 <--> y > 0", Precondition)
	tests := []struct {
		x, y int
		want bool
	}{
		{1, 1, true},
		{-1, -1, true},
		{1, -1, false},
		{-1, 1, false},
	}
	for _, tt := range tests {
		got, err := iff.Eval(env(map[string]any{"x": tt.x, "y": tt.y}))
		if err != nil {
			t.Fatalf("Eval error: %v", err)
		}
		if got != tt.want {
			t.Errorf("Eval(x=%d, y=%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestEval_Temporal(t *testing.T) {
	c := MustCompile("x` <= x --> return` <= return", Postcondition)
	vars := map[string]any{
		"x":                         2,
		ReturnName:                  4,
		"x" + BacktickSuffix:        1,
		ReturnName + BacktickSuffix: 5,
	}
	got, err := c.Eval(env(vars))
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if got {
		t.Errorf("Eval() = true, want false for a decreasing pair")
	}
}

func TestEval_RuntimeErrors(t *testing.T) {
	tests := []struct {
		src  string
		want error
	}{
		{"missing > 0", ErrName},
		{"1 / 0 > 0", ErrZeroDivision},
		{"1 // 0 > 0", ErrZeroDivision},
		{"'a' < 1", ErrType},
		{"l[10] == 0", ErrIndex},
		{"d['zzz'] == 0", ErrIndex},
		{"l.nothing", ErrAttribute},
		{"min([])", ErrValue},
		{"len(3)", ErrType},
	}
	vars := map[string]any{"l": []int{1}, "d": map[string]int{}}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			c := MustCompile(tt.src, Precondition)
			_, err := c.Eval(env(vars))
			if !errors.Is(err, tt.want) {
				t.Errorf("Eval(%q) error = %v, want %v", tt.src, err, tt.want)
			}
		})
	}
}

func TestEval_PanicBecomesError(t *testing.T) {
	vars := map[string]any{
		"first": func(xs []int) int { return xs[0] },
		"xs":    []int{},
	}
	ok, err := MustCompile("first(xs) >= 0", Precondition).Eval(env(vars))
	if !errors.Is(err, ErrPanic) {
		t.Fatalf("Eval() = %v, %v, want ErrPanic", ok, err)
	}
	if !strings.Contains(err.Error(), "first(xs) >= 0") {
		t.Errorf("error %q does not name the condition", err)
	}
}

func TestEval_Power(t *testing.T) {
	vars := map[string]any{"big": int64(1) << 40}
	tests := []string{
		"2 ** 10 == 1024",
		"(-3) ** 3 == -27",
		"2 ** 62 == 4611686018427387904",
		"2 ** 64 == 2.0 ** 64",
		"2 ** -1 == 0.5",
		"2 ** big != 3",
		"1 ** big == 1",
		"(-1) ** big == 1",
		"0 ** big == 0",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			got, err := MustCompile(src, Precondition).Eval(env(vars))
			if err != nil {
				t.Fatalf("Eval(%q) error: %v", src, err)
			}
			if !got {
				t.Errorf("Eval(%q) = false, want true", src)
			}
		})
	}
}

func TestIntPow_Overflow(t *testing.T) {
	tests := []struct {
		base, exp int64
		want      int64
		ok        bool
	}{
		{3, 0, 1, true},
		{-2, 63, math.MinInt64, true},
		{2, 63, 0, false},
		{10, 19, 0, false},
		{7, 1 << 50, 0, false},
	}
	for _, tt := range tests {
		got, ok := intPow(tt.base, tt.exp)
		if got != tt.want || ok != tt.ok {
			t.Errorf("intPow(%d, %d) = %d, %v, want %d, %v", tt.base, tt.exp, got, ok, tt.want, tt.ok)
		}
	}
}

type point struct {
	X, Y float64
}

func (p point) Norm() float64 { return math.Hypot(p.X, p.Y) }

func TestEval_HostValues(t *testing.T) {
	vars := map[string]any{
		"p":     point{X: 3, Y: 4},
		"pp":    &point{X: 1},
		"sqrt":  math.Sqrt,
		"a":     types.NewArray([]int{2, 3}, 1),
		"Num":   types.Number{},
		"value": 7,
	}
	tests := []string{
		"p.x == 3 and p.Y == 4",
		"p.norm() == 5",
		"pp.X == 1",
		"sqrt(16) == 4",
		"a.shape == [2, 3] and a.size == 6 and a.ndim == 2",
		"len(a) == 2",
		"value in Num",
		"'x' not in Num",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			got, err := MustCompile(src, Precondition).Eval(env(vars))
			if err != nil {
				t.Fatalf("Eval(%q) error: %v", src, err)
			}
			if !got {
				t.Errorf("Eval(%q) = false, want true", src)
			}
		})
	}
}

func TestEnv_Layering(t *testing.T) {
	global := NewScope(Root(), map[string]any{"k": 1, "g": "global"})
	local := NewScope(global, map[string]any{"k": 2})
	if v, _ := local.Lookup("k"); v != 2 {
		t.Errorf("Lookup(k) = %v, want 2", v)
	}
	if v, _ := local.Lookup("g"); v != "global" {
		t.Errorf("Lookup(g) = %v, want global", v)
	}
	if _, ok := local.Lookup("len"); !ok {
		t.Errorf("Lookup(len) found nothing, want the builtin")
	}
	names := strings.Join(local.Names(), ",")
	for _, want := range []string{"k", "g", "len"} {
		if !strings.Contains(names, want) {
			t.Errorf("Names() = %v, want to include %s", names, want)
		}
	}
}

func TestEval_NilEnvUsesBuiltins(t *testing.T) {
	got, err := MustCompile("len([1, 2]) == 2", Precondition).Eval(nil)
	if err != nil || !got {
		t.Errorf("Eval(nil) = %v, %v, want true", got, err)
	}
}
