// Package taxonomy defines the verdicts, failure kinds, result data
// structures, and stable ID generation shared by the test driver and
// the paranoid report writers.
package taxonomy

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"
)

// Verdict is the outcome of automatically testing one function.
type Verdict string

// Verdict constants.
const (
	// Passed means at least one generated case executed and no
	// contract was violated.
	Passed Verdict = "passed"

	// Untested means no generated case executed: a type could not
	// generate, or every combination failed a precondition or timed
	// out.
	Untested Verdict = "untested"

	// Failed means a generated case violated a contract, panicked or
	// returned an error.
	Failed Verdict = "failed"
)

// FailureKind classifies why a function failed.
type FailureKind string

// Failure kinds, one per contract error plus the ways a call can
// fail outside its contract.
const (
	ArgumentType    FailureKind = "ArgumentTypeError"
	EntryConditions FailureKind = "EntryConditionsError"
	ReturnType      FailureKind = "ReturnTypeError"
	ExitConditions  FailureKind = "ExitConditionsError"
	ObjectModified  FailureKind = "ObjectModifiedError"
	Internal        FailureKind = "InternalError"
	Panic           FailureKind = "Panic"
	ErrorResult     FailureKind = "Error"
)

// Failure describes the first failing generated case of a function.
type Failure struct {
	// Kind is the failure class.
	Kind FailureKind `json:"kind"`

	// Message is the error text, including the clause and parameter
	// values for contract violations.
	Message string `json:"message"`

	// Args are the generated arguments of the failing case, rendered
	// as text.
	Args map[string]string `json:"args,omitempty"`
}

// FunctionTarget identifies the function under test.
type FunctionTarget struct {
	// Package is the import path of the package that declared the
	// contract, when known.
	Package string `json:"package,omitempty"`

	// Function is the contract's display name, e.g. "geom.Distance"
	// or "counter.Add".
	Function string `json:"function"`

	// Location is the source position of the function (file:line).
	Location string `json:"location,omitempty"`
}

// QualifiedName returns the package-qualified function name, e.g.
// "example.com/geom:geom.Distance".
func (ft FunctionTarget) QualifiedName() string {
	if ft.Package != "" {
		return fmt.Sprintf("%s:%s", ft.Package, ft.Function)
	}
	return ft.Function
}

// FunctionResult is the outcome of testing one function.
type FunctionResult struct {
	// ID is a stable identifier for diffing across runs.
	ID string `json:"id"`

	// Target identifies the tested function.
	Target FunctionTarget `json:"target"`

	// Verdict is the overall outcome.
	Verdict Verdict `json:"verdict"`

	// Cases is the number of generated argument combinations.
	Cases int `json:"cases"`

	// Executed counts combinations that ran to completion.
	Executed int `json:"executed"`

	// Skipped counts combinations rejected by a precondition.
	Skipped int `json:"skipped"`

	// TimedOut counts combinations aborted by max_runtime.
	TimedOut int `json:"timed_out"`

	// Failure is set when the verdict is Failed.
	Failure *Failure `json:"failure,omitempty"`

	// Complexity is the cyclomatic complexity of the function, when
	// its source could be located. Zero means unknown.
	Complexity int `json:"complexity,omitempty"`

	// Warnings lists non-fatal problems, such as a type without a
	// generator.
	Warnings []string `json:"warnings,omitempty"`

	// DurationMS is the wall-clock time spent testing the function.
	DurationMS int64 `json:"duration_ms"`
}

// Summary aggregates a set of results.
type Summary struct {
	Functions int `json:"functions"`
	Passed    int `json:"passed"`
	Untested  int `json:"untested"`
	Failed    int `json:"failed"`
	Executed  int `json:"executed"`

	// UntestedNames lists the untested functions in result order.
	UntestedNames []string `json:"untested_names"`
}

// Summarize counts verdicts and executed cases.
func Summarize(results []FunctionResult) Summary {
	s := Summary{Functions: len(results), UntestedNames: []string{}}
	for _, r := range results {
		s.Executed += r.Executed
		switch r.Verdict {
		case Passed:
			s.Passed++
		case Untested:
			s.Untested++
			s.UntestedNames = append(s.UntestedNames, r.Target.Function)
		case Failed:
			s.Failed++
		}
	}
	return s
}

// Metadata holds run metadata.
type Metadata struct {
	RunID           string        `json:"run_id"`
	ParanoidVersion string        `json:"paranoid_version"`
	GoVersion       string        `json:"go_version"`
	Target          string        `json:"target"`
	Timestamp       time.Time     `json:"-"`
	Duration        time.Duration `json:"-"`
	Warnings        []string      `json:"warnings"`
}

// MarshalJSON customizes JSON encoding to use duration_ms and
// ISO 8601 timestamp.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type Alias Metadata
	ts := ""
	if !m.Timestamp.IsZero() {
		ts = m.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(&struct {
		Alias
		DurationMS int64  `json:"duration_ms"`
		Timestamp  string `json:"timestamp,omitempty"`
	}{
		Alias:      Alias(m),
		DurationMS: m.Duration.Milliseconds(),
		Timestamp:  ts,
	})
}

// Report is the complete output of one verify run.
type Report struct {
	Results  []FunctionResult `json:"results"`
	Summary  Summary          `json:"summary"`
	Metadata Metadata         `json:"metadata"`
}

// GenerateID produces a stable, deterministic ID for a tested
// function. The ID is a sha256 hash truncated to 8 hex characters,
// prefixed with "fn-".
func GenerateID(pkg, function, location string) string {
	input := fmt.Sprintf("%s:%s:%s", pkg, function, location)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("fn-%x", hash[:4])
}
