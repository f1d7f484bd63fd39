package autotest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unbound-force/paranoid/internal/taxonomy"
	"github.com/unbound-force/paranoid/pkg/contract"
)

// Result is the outcome of testing one function. It is the record the
// driver writes and the paranoid CLI reads back.
type Result = taxonomy.FunctionResult

// Run tests each function in order and returns one result per
// function. It writes a tally line per function to opts.Out, then a
// summary line and, when some functions executed no case, a warning
// naming them.
//
// A failing function does not stop the run. A function without
// argument types is reported untested.
func Run(ctx context.Context, fns []*contract.Function, opts Options) []Result {
	log := opts.logger()
	out := opts.out()
	results := make([]Result, 0, len(fns))
	for _, f := range fns {
		if ctx.Err() != nil {
			break
		}
		log.Debug("testing function", "name", f.Name())
		start := time.Now()
		st, err := testFunction(ctx, f, opts)
		r := newResult(f, st, err)
		r.DurationMS = time.Since(start).Milliseconds()
		log.Debug("tested function", "name", f.Name(), "verdict", r.Verdict, "executed", r.Executed)

		fmt.Fprintf(out, "Tested %d values for %s\n", st.executed, f.Name())
		if r.Failure != nil {
			fmt.Fprintf(out, "FAILED %s: %s\n", f.Name(), r.Failure.Message)
		}
		results = append(results, r)
	}

	target := opts.Target
	if target == "" {
		target = "registry"
	}
	s := taxonomy.Summarize(results)
	fmt.Fprintf(out, "Tested %d functions in %s.\n", s.Functions, target)
	if len(s.UntestedNames) > 0 {
		fmt.Fprintf(out, "WARNING: The following functions were untested: %s\n", strings.Join(s.UntestedNames, ", "))
	}
	return results
}

func newResult(f *contract.Function, st stats, err error) Result {
	file, line := f.Location()
	loc := ""
	if file != "" {
		loc = fmt.Sprintf("%s:%d", file, line)
	}
	r := Result{
		ID:       taxonomy.GenerateID("", f.Name(), loc),
		Target:   taxonomy.FunctionTarget{Function: f.Name(), Location: loc},
		Cases:    st.cases,
		Executed: st.executed,
		Skipped:  st.skipped,
		TimedOut: st.timedOut,
		Warnings: st.warnings,
	}
	switch {
	case errors.Is(err, ErrNoAnnotations):
		r.Verdict = taxonomy.Untested
		r.Warnings = append(r.Warnings, ErrNoAnnotations.Error())
	case err != nil:
		r.Verdict = taxonomy.Failed
		r.Failure = failureOf(err)
	case st.executed == 0:
		r.Verdict = taxonomy.Untested
	default:
		r.Verdict = taxonomy.Passed
	}
	return r
}

func failureOf(err error) *taxonomy.Failure {
	fl := &taxonomy.Failure{Kind: kindOf(err), Message: err.Error()}
	var ce *CaseError
	if errors.As(err, &ce) {
		fl.Message = ce.Err.Error()
		fl.Args = make(map[string]string, len(ce.Args))
		for k, v := range ce.Args {
			fl.Args[k] = render(v)
		}
	}
	return fl
}

func kindOf(err error) taxonomy.FailureKind {
	var (
		argErr   *contract.ArgumentTypeError
		entryErr *contract.EntryConditionsError
		retErr   *contract.ReturnTypeError
		exitErr  *contract.ExitConditionsError
		modErr   *contract.ObjectModifiedError
		intErr   *contract.InternalError
		panicErr *PanicError
	)
	switch {
	case errors.As(err, &argErr):
		return taxonomy.ArgumentType
	case errors.As(err, &entryErr):
		return taxonomy.EntryConditions
	case errors.As(err, &retErr):
		return taxonomy.ReturnType
	case errors.As(err, &exitErr):
		return taxonomy.ExitConditions
	case errors.As(err, &modErr):
		return taxonomy.ObjectModified
	case errors.As(err, &intErr):
		return taxonomy.Internal
	case errors.As(err, &panicErr):
		return taxonomy.Panic
	default:
		return taxonomy.ErrorResult
	}
}
