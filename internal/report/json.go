// Package report provides output formatters for paranoid verify
// results in JSON and human-readable text formats.
package report

import (
	"encoding/json"
	"io"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/unbound-force/paranoid/internal/taxonomy"
)

// SchemaVersion is the version of the JSON output format.
const SchemaVersion = "1.0.0"

// JSONReport is the top-level JSON output structure.
type JSONReport struct {
	Version string `json:"version"`
	taxonomy.Report
}

// Build sorts results by verdict and wraps them in a report with a
// fresh run ID and summary.
func Build(results []taxonomy.FunctionResult, target, version string, start time.Time) taxonomy.Report {
	if results == nil {
		results = []taxonomy.FunctionResult{}
	}
	taxonomy.SortResults(results)
	return taxonomy.Report{
		Results: results,
		Summary: taxonomy.Summarize(results),
		Metadata: taxonomy.Metadata{
			RunID:           uuid.NewString(),
			ParanoidVersion: version,
			GoVersion:       runtime.Version(),
			Target:          target,
			Timestamp:       start,
			Duration:        time.Since(start),
		},
	}
}

// WriteJSON writes a report as formatted JSON to the writer.
func WriteJSON(w io.Writer, rpt taxonomy.Report) error {
	if rpt.Results == nil {
		rpt.Results = []taxonomy.FunctionResult{}
	}
	if rpt.Summary.UntestedNames == nil {
		rpt.Summary.UntestedNames = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(JSONReport{
		Version: SchemaVersion,
		Report:  rpt,
	})
}
