// Package condition compiles and evaluates the boolean expressions
// used as preconditions and postconditions.
//
// Conditions are written in a small Python-like expression language.
// Two pieces of sugar are rewritten before parsing: "A --> B" means B
// must hold whenever A holds, and "A <--> B" means both directions. At
// most one of them may appear per condition, and only at the top
// level. Postconditions may name the return value with "return" and
// refer to other calls of the same function by suffixing a name with
// one or two backticks.
package condition

import (
	"fmt"
	"regexp"
	"strings"
)

// Reserved names bound by the contract pipeline.
const (
	// ReturnName is the name "return" is rewritten to.
	ReturnName = "__RETURN__"

	// BacktickSuffix marks a name taken from one other call.
	BacktickSuffix = "__BACKTICK__"

	// DoubleBacktickSuffix marks a name taken from a second other call.
	DoubleBacktickSuffix = "__DOUBLEBACKTICK__"
)

// Mode selects which rewrites apply.
type Mode int

const (
	// Precondition conditions see only the bound arguments.
	Precondition Mode = iota
	// Postcondition conditions also see the return value and, at
	// depth 1 or 2, other cached calls.
	Postcondition
)

func (m Mode) String() string {
	if m == Postcondition {
		return "ensures"
	}
	return "requires"
}

// Condition is a compiled condition.
type Condition struct {
	// Source is the condition as written.
	Source string

	// Rewritten is the expression after implication, return and
	// backtick rewriting.
	Rewritten string

	// Depth is the number of distinct other calls the condition
	// refers to: 0, 1 or 2.
	Depth int

	expr Node
}

var (
	returnRe = regexp.MustCompile(`\breturn\b`)
	tickRe   = regexp.MustCompile("`+")
)

// Compile rewrites and parses src.
func Compile(src string, mode Mode) (*Condition, error) {
	rewritten, depth, err := rewrite(src, mode)
	if err != nil {
		return nil, err
	}
	expr, err := parse(rewritten)
	if err != nil {
		return nil, err
	}
	return &Condition{Source: src, Rewritten: rewritten, Depth: depth, expr: expr}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string, mode Mode) *Condition {
	c, err := Compile(src, mode)
	if err != nil {
		panic(err)
	}
	return c
}

// Eval evaluates the condition and reports its truth value. Runtime
// errors such as undefined names or division by zero are returned
// unchanged. A panic in a namespace function becomes an error
// wrapping ErrPanic.
func (c *Condition) Eval(env *Env) (bool, error) {
	v, err := c.Value(env)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// Value evaluates the condition and returns the raw result.
func (c *Condition) Value(env *Env) (v any, err error) {
	if env == nil {
		env = Root()
	}
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("%w: %s: %v", ErrPanic, c.Source, r)
		}
	}()
	return c.expr.eval(env)
}

func (c *Condition) String() string { return c.Source }

func rewrite(src string, mode Mode) (string, int, error) {
	e := src
	switch mode {
	case Postcondition:
		e = returnRe.ReplaceAllString(e, ReturnName)
	case Precondition:
		if strings.Contains(e, "`") {
			return "", 0, &SyntaxError{Source: src, Pos: strings.Index(e, "`"),
				Msg: "preconditions cannot refer to other calls"}
		}
		if loc := returnRe.FindStringIndex(e); loc != nil {
			return "", 0, &SyntaxError{Source: src, Pos: loc[0],
				Msg: "preconditions cannot refer to the return value"}
		}
	}

	if strings.Contains(e, "<-->") {
		parts := strings.Split(e, "<-->")
		if len(parts) != 2 {
			return "", 0, &SyntaxError{Source: src, Msg: "only one implication per condition"}
		}
		e = fmt.Sprintf("((%s) if (%s) else True) and ((%s) if (%s) else True)",
			parts[1], parts[0], parts[0], parts[1])
		if strings.Contains(e, "-->") {
			return "", 0, &SyntaxError{Source: src, Msg: "only one implication per condition"}
		}
	} else if strings.Contains(e, "-->") {
		parts := strings.Split(e, "-->")
		if len(parts) != 2 {
			return "", 0, &SyntaxError{Source: src, Msg: "only one implication per condition"}
		}
		e = fmt.Sprintf("(%s) if (%s) else True", parts[1], parts[0])
	}

	depth := 0
	for _, loc := range tickRe.FindAllStringIndex(e, -1) {
		n := loc[1] - loc[0]
		if n > 2 {
			return "", 0, &SyntaxError{Source: src, Pos: loc[0],
				Msg: "at most two backticks may follow a name"}
		}
		depth = max(depth, n)
	}
	e = strings.ReplaceAll(e, "``", DoubleBacktickSuffix)
	e = strings.ReplaceAll(e, "`", BacktickSuffix)
	return e, depth, nil
}
