// Package autotest exercises contract-wrapped functions with values
// generated from their declared argument types.
//
// Every combination of generated values is passed to the function.
// Because the contract checks run on every call, a combination that
// completes without error is a passing test. Combinations rejected by
// a precondition are skipped rather than counted.
package autotest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"runtime/debug"
	"sort"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/unbound-force/paranoid/pkg/contract"
	"github.com/unbound-force/paranoid/pkg/types"
)

// ErrNoAnnotations is returned for functions without declared
// argument types.
var ErrNoAnnotations = errors.New("no argument annotations")

// TestCaseTimeoutError reports a generated call that ran past
// max_runtime. The call's goroutine is abandoned, not stopped.
type TestCaseTimeoutError struct {
	Function string
	After    time.Duration
}

func (e *TestCaseTimeoutError) Error() string {
	return fmt.Sprintf("%s: test case timed out after %s", e.Function, e.After)
}

// PanicError reports a panic raised by a generated call.
type PanicError struct {
	Function string
	Value    any
	Stack    []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Function, e.Value)
}

// CaseError is the first failing generated case of a function.
type CaseError struct {
	Function string
	Args     contract.Bound
	Err      error
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Function, formatArgs(e.Args), e.Err)
}

func (e *CaseError) Unwrap() error { return e.Err }

// Options configures a test run.
type Options struct {
	// Logger receives warnings and per-function debug lines. If nil,
	// charmlog.Default() is used.
	Logger *charmlog.Logger

	// Out receives the tally lines written by Run. If nil, they are
	// discarded.
	Out io.Writer

	// Target names what was tested in Run's summary line.
	Target string
}

// DefaultOptions returns options that log to the default logger and
// discard the tally.
func DefaultOptions() Options {
	return Options{Logger: charmlog.Default(), Out: io.Discard}
}

func (o Options) logger() *charmlog.Logger {
	if o.Logger == nil {
		return charmlog.Default()
	}
	return o.Logger
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}

// stats counts what happened to the generated cases of one function.
type stats struct {
	cases    int
	executed int
	skipped  int
	timedOut int
	warnings []string
}

// TestFunction calls f with every combination of values generated
// from its argument types and returns the number of calls that ran to
// completion. Calls rejected by a precondition or aborted by the
// runtime limit are not counted.
//
// A function whose types cannot generate values is reported with a
// warning and yields 0. The first contract violation, panic, or error
// result stops testing and is returned as a *CaseError alongside the
// count so far.
func TestFunction(ctx context.Context, f *contract.Function, opts Options) (int, error) {
	st, err := testFunction(ctx, f, opts)
	return st.executed, err
}

func testFunction(ctx context.Context, f *contract.Function, opts Options) (stats, error) {
	var st stats
	log := opts.logger()
	c := f.Contract()
	if c.ArgTypes == nil {
		return st, fmt.Errorf("%s: %w", c.Name, ErrNoAnnotations)
	}

	names := make([]string, 0, len(c.ArgTypes))
	for k := range c.ArgTypes {
		names = append(names, k)
	}
	sort.Strings(names)

	values := make([][]any, len(names))
	for i, k := range names {
		vs, err := c.ArgTypes[k].Generate()
		// An unbound Self belongs to a method whose class was never bound.
		if errors.Is(err, types.ErrNoGenerator) || errors.Is(err, types.ErrUnboundSelf) {
			msg := fmt.Sprintf("%s could not be tested", c.Name)
			log.Warn(msg, "arg", k, "err", err)
			st.warnings = append(st.warnings, fmt.Sprintf("%s: %v", k, err))
			return st, nil
		}
		if err != nil {
			return st, fmt.Errorf("%s: generating %s: %w", c.Name, k, err)
		}
		values[i] = vs
	}

	st.cases = productSize(values)
	if st.cases == 0 {
		log.Warn(fmt.Sprintf("%s could not be tested", c.Name), "reason", "a type generated no values")
		st.warnings = append(st.warnings, "a type generated no values")
		return st, nil
	}

	limit := f.Settings().MaxRuntime
	err := product(values, func(tc []any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		args := make(contract.Bound, len(names))
		for i, k := range names {
			args[k] = tc[i]
		}
		err := callWithTimeout(ctx, f, args, limit)
		var entry *contract.EntryConditionsError
		var timeout *TestCaseTimeoutError
		switch {
		case err == nil:
			st.executed++
		case errors.As(err, &entry):
			st.skipped++
		case errors.As(err, &timeout):
			st.timedOut++
			log.Warn("test case timed out, continuing", "function", c.Name, "after", limit)
		default:
			return &CaseError{Function: c.Name, Args: args, Err: err}
		}
		return nil
	})
	return st, err
}

// callWithTimeout runs one generated case. A limit of zero runs the
// call on the current goroutine without a deadline.
func callWithTimeout(ctx context.Context, f *contract.Function, args contract.Bound, limit time.Duration) error {
	if limit <= 0 {
		return safeCall(ctx, f, args)
	}
	done := make(chan error, 1)
	go func() { done <- safeCall(ctx, f, args) }()

	timer := time.NewTimer(limit)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return &TestCaseTimeoutError{Function: f.Name(), After: limit}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func safeCall(ctx context.Context, f *contract.Function, args contract.Bound) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Function: f.Name(), Value: r, Stack: debug.Stack()}
		}
	}()
	_, err = f.CallBound(ctx, args)
	return err
}

func productSize(values [][]any) int {
	n := 1
	for _, vs := range values {
		n *= len(vs)
	}
	return n
}

// product calls fn with every element of the Cartesian product of
// values, the last position varying fastest. It stops at the first
// error fn returns.
func product(values [][]any, fn func([]any) error) error {
	if productSize(values) == 0 {
		return nil
	}
	idx := make([]int, len(values))
	tc := make([]any, len(values))
	for {
		for i, j := range idx {
			tc[i] = values[i][j]
		}
		if err := fn(tc); err != nil {
			return err
		}
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(values[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return nil
		}
	}
}

func formatArgs(args contract.Bound) string {
	names := make([]string, 0, len(args))
	for k := range args {
		names = append(names, k)
	}
	sort.Strings(names)
	s := "{"
	for i, k := range names {
		if i > 0 {
			s += ", "
		}
		s += k + ": " + render(args[k])
	}
	return s + "}"
}

func render(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		if len(x) > 40 {
			return fmt.Sprintf("%q...(%d bytes)", x[:40], len(x))
		}
		return fmt.Sprintf("%q", x)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Func {
		return "func"
	}
	return fmt.Sprintf("%v", v)
}
