package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/specdiff/internal/ir"
)

// Report renders a run as stable text for golden comparison.
//
//	scenario: undocumented_query
//	records: 2 skipped: 1 compared: 1 written: 1
//	UnmatchedQueryParameter request GET /users/{id} param=debug tags=[smoke]
//
// Fingerprints and peak concurrency are left out; both are covered by unit
// tests and neither reads well in a diff.
func Report(name string, result *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	fmt.Fprintf(&b, "records: %d skipped: %d compared: %d written: %d\n",
		result.Stats.Records, result.Stats.Skipped, result.Stats.Compared, result.Stats.Written)
	for _, env := range result.Findings {
		b.WriteString(ReportLine(env))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// ReportLine renders one envelope without its fingerprint.
func ReportLine(env ir.Envelope) string {
	f := env.Finding
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s %s", f.Kind, f.Location.In, f.Location.Method, f.Location.Path)
	if f.Location.StatusCode != 0 {
		fmt.Fprintf(&b, " status=%d", f.Location.StatusCode)
	}
	if f.Location.ContentType != "" {
		fmt.Fprintf(&b, " type=%s", f.Location.ContentType)
	}
	if f.Parameter != "" {
		fmt.Fprintf(&b, " param=%s", f.Parameter)
	}

	expected, observed := f.Expected, f.Observed
	if f.Shape != nil {
		fmt.Fprintf(&b, " at=%s issue=%s", f.Shape.JSONPath, f.Shape.Issue)
		expected, observed = f.Shape.Expected, f.Shape.Observed
	}
	if expected != "" {
		fmt.Fprintf(&b, " expected=%s", expected)
	}
	if observed != "" {
		fmt.Fprintf(&b, " observed=%s", observed)
	}
	fmt.Fprintf(&b, " tags=[%s]", strings.Join(env.Tags, ","))
	return b.String()
}

// RunWithGolden executes a scenario and compares its report against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario could not be executed. A report mismatch
// fails t through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Report(scenario.Name, result))
	return result, nil
}
