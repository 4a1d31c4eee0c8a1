package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specdiff/internal/ir"
)

func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		scenario, err := LoadScenario(file)
		require.NoError(t, err, file)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ReportsExpectationFailures(t *testing.T) {
	records, results := int64(5), 3
	scenario := &Scenario{
		Name:        "wrong_expectations",
		Description: "expectations that do not hold",
		Spec:        "testdata/specs/users.json",
		Input: []InputRecord{
			{Method: "GET", Path: "/nowhere", Status: 200},
		},
		Expect: &ExpectClause{
			Records: &records,
			Results: &results,
			Kinds:   []string{"UnmatchedRequestMethod"},
		},
		Assertions: []Assertion{
			{Type: AssertFindingAbsent, Kind: "UnmatchedRequestUrl"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "expected 5 records, got 1")
	assert.Contains(t, result.Errors[1], "expected 3 results, got 1")
	assert.Contains(t, result.Errors[2], "expected kinds [UnmatchedRequestMethod], got [UnmatchedRequestUrl]")
	assert.Contains(t, result.Errors[3], "1 finding(s) match {kind=UnmatchedRequestUrl}")
}

func TestRun_SpecLoadFailure(t *testing.T) {
	scenario := &Scenario{Name: "x", Description: "x", Spec: "testdata/specs/missing.json"}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load spec")
}

func TestRenderInput(t *testing.T) {
	input, err := RenderInput([]InputRecord{
		{Raw: "garbage"},
		{Method: "POST", Path: "/users", Status: 201, Query: "a=1", RequestBody: `{"name":"x"}`, Tags: []string{"t"}},
		{Method: "GET", Path: "/search", Status: 200, ResponseContentType: "text/plain", ResponseBody: "hi"},
	})
	require.NoError(t, err)

	lines := splitLines(input)
	require.Len(t, lines, 3)
	assert.Equal(t, "garbage", lines[0])

	var rec ir.TaggedInteraction
	require.NoError(t, rec.UnmarshalJSON([]byte(lines[1])))
	assert.Equal(t, ir.Tags{"t"}, rec.Tags)
	require.NotNil(t, rec.Interaction.Request.Query.AsText)
	assert.Equal(t, "a=1", *rec.Interaction.Request.Query.AsText)
	assert.Equal(t, "application/json", rec.Interaction.Request.Body.ContentType)
	require.NotNil(t, rec.Interaction.Request.Body.Value.AsJSONString)
	assert.False(t, rec.Interaction.Response.Body.HasBody())

	require.NoError(t, rec.UnmarshalJSON([]byte(lines[2])))
	require.NotNil(t, rec.Interaction.Response.Body.Value.AsText)
	assert.Nil(t, rec.Interaction.Response.Body.Value.AsJSONString)
	assert.Equal(t, ir.Tags{}, rec.Tags)
}

func TestEvaluateAssertions(t *testing.T) {
	findings := []ir.Envelope{
		{
			Finding: ir.Finding{
				Kind:     ir.KindUnmatchedResponseBodyShape,
				Location: ir.Location{In: ir.InResponse, Method: "GET", Path: "/users/{id}", StatusCode: 200},
				Shape:    &ir.ShapeTrail{JSONPath: "$.id", Issue: ir.IssueKindMismatch},
			},
			Tags: ir.Tags{"a"},
		},
		{
			Finding: ir.Finding{
				Kind:      ir.KindUnmatchedQueryParameter,
				Location:  ir.Location{In: ir.InRequest, Method: "GET", Path: "/users"},
				Parameter: "debug",
			},
			Tags: ir.Tags{},
		},
	}

	passing := []Assertion{
		{Type: AssertFindingContains, JSONPath: "$.id", Issue: "kind_mismatch", Tags: []string{"a"}},
		{Type: AssertFindingContains, Parameter: "debug", Method: "GET"},
		{Type: AssertFindingCount, Kind: "UnmatchedQueryParameter", Count: 1},
		{Type: AssertFindingCount, Kind: "MissingQueryParameter", Count: 0},
		{Type: AssertFindingAbsent, Path: "/orders"},
	}
	assert.Empty(t, EvaluateAssertions(findings, passing))

	failing := []Assertion{
		{Type: AssertFindingContains, JSONPath: "$.name"},
		{Type: AssertFindingContains, Parameter: "debug", Tags: []string{"a"}},
		{Type: AssertFindingCount, Kind: "UnmatchedResponseBodyShape", Count: 2},
		{Type: AssertFindingAbsent, Kind: "UnmatchedQueryParameter"},
	}
	errs := EvaluateAssertions(findings, failing)
	require.Len(t, errs, 4)
	assert.Contains(t, errs[0], "no finding matches {json_path=$.name}")
	assert.Contains(t, errs[2], "expected 2 finding(s)")
}

func TestReportLine(t *testing.T) {
	env := ir.Envelope{
		Finding: ir.Finding{
			Kind:     ir.KindUnmatchedRequestMethod,
			Location: ir.Location{In: ir.InRequest, Method: "PATCH", Path: "/users/{id}"},
			Expected: "DELETE,GET",
			Observed: "PATCH",
		},
		Tags:        ir.Tags{"a", "b"},
		Fingerprint: "ignored",
	}
	assert.Equal(t, "UnmatchedRequestMethod request PATCH /users/{id} expected=DELETE,GET observed=PATCH tags=[a,b]", ReportLine(env))
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: s
description: d
spec: specs/users.json
expect:
  results: 0
`), 0644))

	base, err := filepath.Abs("testdata")
	require.NoError(t, err)
	scenario, err := LoadScenarioWithBasePath(path, base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "specs/users.json"), scenario.Spec)

	_, err = LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec file not found")
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}
