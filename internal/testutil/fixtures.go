// Package testutil provides fixtures and instrumentation shared by the
// specdiff test suites.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/specdiff/internal/ir"
	"github.com/roach88/specdiff/internal/spec"
)

// UsersSpecJSON is a small specification used throughout the tests.
const UsersSpecJSON = `{
  "info": {"title": "users-api", "version": "1.0.0"},
  "endpoints": [
    {
      "method": "GET",
      "path": "/users",
      "query": {"limit": {}, "cursor": {}},
      "responses": [
        {"status": 200, "contentType": "application/json",
         "shape": {"type": "array", "items": {"type": "object", "fields": {"id": {"type": "string"}, "name": {"type": "string"}}}}}
      ]
    },
    {
      "method": "POST",
      "path": "/users",
      "request": {"contentType": "application/json",
                  "shape": {"type": "object", "fields": {"name": {"type": "string"}, "age": {"type": "number", "optional": true}}}},
      "responses": [
        {"status": 201, "contentType": "application/json", "shape": {"type": "object", "fields": {"id": {"type": "string"}}}},
        {"status": 400}
      ]
    },
    {
      "method": "GET",
      "path": "/users/{id}",
      "query": {"expand": {"required": false}},
      "responses": [
        {"status": 200, "contentType": "application/json",
         "shape": {"type": "object", "fields": {"id": {"type": "string"}, "name": {"type": "string"}, "nick": {"type": "string", "nullable": true, "optional": true}}}},
        {"status": 404}
      ]
    },
    {
      "method": "DELETE",
      "path": "/users/{id}",
      "responses": [{"status": 204}]
    },
    {
      "method": "GET",
      "path": "/search",
      "query": {"q": {"required": true}},
      "responses": [{"status": 200, "contentType": "text/plain"}]
    }
  ]
}`

// WriteUsersSpec writes UsersSpecJSON to a temp file and returns its path.
func WriteUsersSpec(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(UsersSpecJSON), 0644))
	return path
}

// UsersSnapshot loads UsersSpecJSON.
func UsersSnapshot(t testing.TB) *spec.Snapshot {
	t.Helper()
	snap, err := spec.LoadBytes("users.json", []byte(UsersSpecJSON), spec.FormatJSON)
	require.NoError(t, err)
	return snap
}

// Interaction builds an interaction with no bodies and no query.
func Interaction(method, path string, status int64) ir.HTTPInteraction {
	return ir.HTTPInteraction{
		Request:  ir.HTTPRequest{Method: method, Path: path},
		Response: ir.HTTPResponse{StatusCode: status},
	}
}

// WithQuery sets the raw query string.
func WithQuery(in ir.HTTPInteraction, query string) ir.HTTPInteraction {
	in.Request.Query = ir.ArbitraryData{AsText: &query}
	return in
}

// WithRequestJSON sets a JSON request body.
func WithRequestJSON(in ir.HTTPInteraction, doc string) ir.HTTPInteraction {
	in.Request.Body = JSONBody("application/json", doc)
	return in
}

// WithResponseJSON sets a JSON response body.
func WithResponseJSON(in ir.HTTPInteraction, doc string) ir.HTTPInteraction {
	in.Response.Body = JSONBody("application/json", doc)
	return in
}

// WithResponseText sets a text response body of the given content type.
func WithResponseText(in ir.HTTPInteraction, contentType, text string) ir.HTTPInteraction {
	in.Response.Body = ir.Body{ContentType: contentType, Value: ir.ArbitraryData{AsText: &text}}
	return in
}

// JSONBody builds a body carrying doc as its JSON rendering.
func JSONBody(contentType, doc string) ir.Body {
	return ir.Body{ContentType: contentType, Value: ir.ArbitraryData{AsJSONString: &doc}}
}

// Line renders one input record, [interaction, tags], without a newline.
func Line(t testing.TB, in ir.HTTPInteraction, tags ...string) string {
	t.Helper()
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(ir.TaggedInteraction{Interaction: in, Tags: tags})
	require.NoError(t, err)
	return string(data)
}

// Lines joins records into newline-delimited input.
func Lines(lines ...string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// ConformingUserLine is a record that matches UsersSpecJSON exactly.
func ConformingUserLine(t testing.TB, tags ...string) string {
	t.Helper()
	return Line(t, WithResponseJSON(Interaction("GET", "/users/7", 200), `{"id":"7","name":"ada"}`), tags...)
}

// UndocumentedQueryInteraction conforms except for one undocumented query
// parameter, "debug".
func UndocumentedQueryInteraction() ir.HTTPInteraction {
	in := WithQuery(Interaction("GET", "/users/7", 200), "debug=true")
	return WithResponseJSON(in, `{"id":"7","name":"ada"}`)
}

// UndocumentedQueryLine is the record form of UndocumentedQueryInteraction.
func UndocumentedQueryLine(t testing.TB, tags ...string) string {
	t.Helper()
	return Line(t, UndocumentedQueryInteraction(), tags...)
}

// DecodeEnvelopes parses newline-delimited output into envelopes.
func DecodeEnvelopes(t testing.TB, output string) []ir.Envelope {
	t.Helper()
	var out []ir.Envelope
	dec := json.NewDecoder(strings.NewReader(output))
	for dec.More() {
		var env ir.Envelope
		require.NoError(t, dec.Decode(&env))
		out = append(out, env)
	}
	return out
}
