package harness

import (
	"fmt"
	"slices"
	"sort"

	"github.com/roach88/specdiff/internal/ir"
)

// EvaluateAssertions runs every assertion against the findings of a run and
// returns one message per failed assertion.
func EvaluateAssertions(findings []ir.Envelope, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(findings, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(findings []ir.Envelope, a Assertion) error {
	matched := 0
	for _, env := range findings {
		if matches(env, a) {
			matched++
		}
	}

	switch a.Type {
	case AssertFindingContains:
		if matched == 0 {
			return fmt.Errorf("no finding matches %s", describe(a))
		}
	case AssertFindingAbsent:
		if matched > 0 {
			return fmt.Errorf("%d finding(s) match %s", matched, describe(a))
		}
	case AssertFindingCount:
		if matched != a.Count {
			return fmt.Errorf("expected %d finding(s) matching %s, got %d", a.Count, describe(a), matched)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// matches reports whether env satisfies every field set in a.
func matches(env ir.Envelope, a Assertion) bool {
	f := env.Finding
	if a.Kind != "" && string(f.Kind) != a.Kind {
		return false
	}
	if a.Path != "" && f.Location.Path != a.Path {
		return false
	}
	if a.Method != "" && f.Location.Method != a.Method {
		return false
	}
	if a.Parameter != "" && f.Parameter != a.Parameter {
		return false
	}
	if a.JSONPath != "" && (f.Shape == nil || f.Shape.JSONPath != a.JSONPath) {
		return false
	}
	if a.Issue != "" && (f.Shape == nil || string(f.Shape.Issue) != a.Issue) {
		return false
	}
	if a.Tags != nil && !slices.Equal([]string(env.Tags), a.Tags) {
		return false
	}
	return true
}

func describe(a Assertion) string {
	s := "{"
	add := func(k, v string) {
		if v == "" {
			return
		}
		if len(s) > 1 {
			s += " "
		}
		s += k + "=" + v
	}
	add("kind", a.Kind)
	add("method", a.Method)
	add("path", a.Path)
	add("parameter", a.Parameter)
	add("json_path", a.JSONPath)
	add("issue", a.Issue)
	if a.Tags != nil {
		add("tags", fmt.Sprint(a.Tags))
	}
	return s + "}"
}

// evaluateExpect checks run-level expectations.
func evaluateExpect(result *Result, expect *ExpectClause) []string {
	if expect == nil {
		return nil
	}
	var errs []string
	if expect.Records != nil && *expect.Records != result.Stats.Records {
		errs = append(errs, fmt.Sprintf("expected %d records, got %d", *expect.Records, result.Stats.Records))
	}
	if expect.Skipped != nil && *expect.Skipped != result.Stats.Skipped {
		errs = append(errs, fmt.Sprintf("expected %d skipped records, got %d", *expect.Skipped, result.Stats.Skipped))
	}
	if expect.Results != nil && *expect.Results != len(result.Findings) {
		errs = append(errs, fmt.Sprintf("expected %d results, got %d", *expect.Results, len(result.Findings)))
	}
	if expect.Kinds != nil {
		want := slices.Clone(expect.Kinds)
		got := make([]string, 0, len(result.Findings))
		for _, env := range result.Findings {
			got = append(got, string(env.Finding.Kind))
		}
		sort.Strings(want)
		sort.Strings(got)
		if !slices.Equal(want, got) {
			errs = append(errs, fmt.Sprintf("expected kinds %v, got %v", want, got))
		}
	}
	return errs
}
