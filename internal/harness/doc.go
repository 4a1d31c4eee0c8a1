// Package harness provides conformance testing for specdiff.
//
// A scenario names a specification, a list of input records and the
// findings the pipeline is expected to produce for them. The harness runs the
// records through the real pipeline and comparison engine and checks the
// outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: undocumented_query
//	description: "A query parameter missing from the spec is reported"
//	spec: ../specs/users.json
//	input:
//	  - method: GET
//	    path: /users/7?debug=true
//	    status: 200
//	    response_body: '{"id":"7","name":"ada"}'
//	    tags: [smoke]
//	  - raw: 'not a record'
//	expect:
//	  records: 2
//	  skipped: 1
//	  results: 1
//	  kinds: [UnmatchedQueryParameter]
//	assertions:
//	  - type: finding_contains
//	    kind: UnmatchedQueryParameter
//	    parameter: debug
//
// The spec path is relative to the scenario file unless a base path is given.
// A record is either structured (method, path, status, bodies, tags) or raw,
// in which case the line is fed to the pipeline verbatim.
//
// # Assertion Types
//
//   - finding_contains: some finding matches every field given
//   - finding_count: exactly count findings have the given kind
//   - finding_absent: no finding matches every field given
//
// # Determinism
//
// Findings from different records may be written in any order, so the
// harness sorts them before evaluating assertions or rendering reports.
// Reports omit fingerprints and timing and are stable across runs.
package harness
