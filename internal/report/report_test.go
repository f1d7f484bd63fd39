package report

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/unbound-force/paranoid/internal/taxonomy"
)

func sampleResults() []taxonomy.FunctionResult {
	return []taxonomy.FunctionResult{
		{
			ID:       taxonomy.GenerateID("", "geom.Area", "/src/geom/geom.go:12"),
			Target:   taxonomy.FunctionTarget{Function: "geom.Area", Location: "/src/geom/geom.go:12"},
			Verdict:  taxonomy.Passed,
			Cases:    25,
			Executed: 20,
			Skipped:  5,
		},
		{
			ID:       taxonomy.GenerateID("", "geom.Scale", "/src/geom/geom.go:30"),
			Target:   taxonomy.FunctionTarget{Function: "geom.Scale", Location: "/src/geom/geom.go:30"},
			Verdict:  taxonomy.Untested,
			Warnings: []string{"s: Generic(geom.Shape) has no generator"},
		},
		{
			ID:       taxonomy.GenerateID("", "geom.Distance", "/src/geom/geom.go:44"),
			Target:   taxonomy.FunctionTarget{Function: "geom.Distance", Location: "/src/geom/geom.go:44"},
			Verdict:  taxonomy.Failed,
			Cases:    36,
			Executed: 3,
			Failure: &taxonomy.Failure{
				Kind:    taxonomy.ExitConditions,
				Message: "Ensures statement 'return >= 0' failed in geom.Distance\nparams: {a: -1, b: 0, return: -1}",
				Args:    map[string]string{"a": "-1", "b": "0"},
			},
			Complexity: 4,
		},
	}
}

func sampleReport() taxonomy.Report {
	rpt := Build(sampleResults(), "./geom", "test", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	rpt.Metadata.Duration = 1200 * time.Millisecond
	return rpt
}

func compileSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	sch, err := jsonschema.UnmarshalJSON(strings.NewReader(Schema))
	if err != nil {
		t.Fatalf("failed to parse schema JSON: %v", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", sch); err != nil {
		t.Fatalf("failed to add schema resource: %v", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		t.Fatalf("failed to compile schema: %v", err)
	}
	return compiled
}

// ---------------------------------------------------------------------------
// Build
// ---------------------------------------------------------------------------

func TestBuild_SortsAndSummarizes(t *testing.T) {
	rpt := sampleReport()
	got := []string{}
	for _, r := range rpt.Results {
		got = append(got, r.Target.Function)
	}
	if strings.Join(got, ",") != "geom.Distance,geom.Scale,geom.Area" {
		t.Errorf("result order = %v, want failed, untested, passed", got)
	}
	if rpt.Summary.Functions != 3 || rpt.Summary.Failed != 1 || rpt.Summary.Executed != 23 {
		t.Errorf("Summary = %+v, want 3 functions, 1 failed, 23 executed", rpt.Summary)
	}
	if rpt.Metadata.RunID == "" || rpt.Metadata.GoVersion == "" {
		t.Errorf("Metadata = %+v, want run ID and Go version", rpt.Metadata)
	}
}

func TestBuild_DistinctRunIDs(t *testing.T) {
	a := Build(nil, "x", "dev", time.Now())
	b := Build(nil, "x", "dev", time.Now())
	if a.Metadata.RunID == b.Metadata.RunID {
		t.Errorf("two builds share run ID %q", a.Metadata.RunID)
	}
	if a.Results == nil {
		t.Error("Build(nil).Results is nil, want empty slice")
	}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func TestWriteJSON_ValidJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["version"] != SchemaVersion {
		t.Errorf("version = %v, want %s", decoded["version"], SchemaVersion)
	}
	results, ok := decoded["results"].([]any)
	if !ok || len(results) != 3 {
		t.Fatalf("results = %v, want 3 entries", decoded["results"])
	}
	meta := decoded["metadata"].(map[string]any)
	if meta["duration_ms"] != float64(1200) {
		t.Errorf("metadata.duration_ms = %v, want 1200", meta["duration_ms"])
	}
}

func TestWriteJSON_ValidAgainstSchema(t *testing.T) {
	compiled := compileSchema(t)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if err := compiled.Validate(inst); err != nil {
		t.Errorf("JSON output does not conform to schema:\n%v", err)
	}
}

func TestWriteJSON_EmptyResults_ValidAgainstSchema(t *testing.T) {
	compiled := compileSchema(t)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, taxonomy.Report{}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if err := compiled.Validate(inst); err != nil {
		t.Errorf("empty JSON output does not conform to schema:\n%v", err)
	}
}

func TestSchema_RejectsBadVerdict(t *testing.T) {
	compiled := compileSchema(t)
	doc := `{"version":"1.0.0","results":[{"id":"fn-0000abcd","target":{"function":"f"},
		"verdict":"maybe","cases":0,"executed":0,"skipped":0,"timed_out":0,"duration_ms":0}],
		"summary":{"functions":1,"passed":0,"untested":0,"failed":0,"executed":0,"untested_names":[]},
		"metadata":{"run_id":"r","paranoid_version":"v","go_version":"g","duration_ms":0}}`
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	if err := compiled.Validate(inst); err == nil {
		t.Error("schema accepted verdict \"maybe\"")
	}
}

// ---------------------------------------------------------------------------
// Text
// ---------------------------------------------------------------------------

func TestWriteText_Content(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReport(), TextOptions{ShowPassed: true}); err != nil {
		t.Fatal(err)
	}
	output := stripANSI(buf.String())

	for _, want := range []string{
		"=== ./geom ===",
		"VERDICT",
		"geom.Area",
		"FAILED",
		"Failures:",
		"geom.Distance (ExitConditionsError)",
		"Ensures statement 'return >= 0' failed in geom.Distance",
		"args: a=-1, b=0",
		"geom/geom.go:44",
		"Warnings:",
		"geom.Scale: s: Generic(geom.Shape) has no generator",
		"3 function(s) verified: 1 passed, 1 untested, 1 failed (23 cases)",
		"WARNING: The following functions were untested: geom.Scale",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("text output missing %q:\n%s", want, output)
		}
	}
}

func TestWriteText_HidesPassed(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReport(), TextOptions{}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(stripANSI(buf.String()), "geom.Area") {
		t.Error("passing function listed with ShowPassed=false")
	}
}

func TestWriteText_AllPassedHidden(t *testing.T) {
	rpt := Build([]taxonomy.FunctionResult{
		{Target: taxonomy.FunctionTarget{Function: "f"}, Verdict: taxonomy.Passed, Executed: 1},
	}, "", "dev", time.Now())
	var buf bytes.Buffer
	if err := WriteText(&buf, rpt, TextOptions{}); err != nil {
		t.Fatal(err)
	}
	output := stripANSI(buf.String())
	if !strings.Contains(output, "All functions passed.") {
		t.Errorf("expected all-passed note, got:\n%s", output)
	}
	if strings.Contains(output, "WARNING") {
		t.Errorf("unexpected untested warning:\n%s", output)
	}
}

// stripANSI removes ANSI escape sequences from text for width measurement.
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func TestWriteText_FitsIn80Columns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReport(), TextOptions{ShowPassed: true}); err != nil {
		t.Fatal(err)
	}

	const maxWidth = 80
	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		// Failure messages and the summary are free text.
		if strings.HasPrefix(line, "    ") || strings.Contains(line, "verified:") || strings.Contains(line, "WARNING") {
			continue
		}
		plain := stripANSI(line)
		width := utf8.RuneCountInString(plain)
		if width > maxWidth {
			t.Errorf("line %d exceeds %d columns (%d runes): %q",
				i+1, maxWidth, width, plain)
		}
	}
}

func TestShortenPath(t *testing.T) {
	tests := map[string]string{
		"/a/b/c/geom.go:3": "c/geom.go:3",
		"geom.go:3":        "geom.go:3",
		"c/geom.go:3":      "c/geom.go:3",
	}
	for in, want := range tests {
		if got := shortenPath(in); got != want {
			t.Errorf("shortenPath(%q) = %q, want %q", in, got, want)
		}
	}
}
