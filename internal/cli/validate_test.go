package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specdiff/internal/spec"
	"github.com/roach88/specdiff/internal/testutil"
)

func writeSpec(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateCommand_Text(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{testutil.WriteUsersSpec(t)})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "✓ users-api 1.0.0: 5 operation(s) on 3 path(s)\n", buf.String())
}

func TestValidateCommand_VerboseListsEndpoints(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text", Verbose: true})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{testutil.WriteUsersSpec(t)})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "/users/{id}")
	assert.Contains(t, buf.String(), "DELETE, GET")
	assert.Contains(t, buf.String(), "METHODS")
}

func TestValidateCommand_JSON(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{testutil.WriteUsersSpec(t)})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "users-api", resp.Data.Title)
	assert.Equal(t, 5, resp.Data.Operations)
	assert.Equal(t, 3, resp.Data.Paths)
	assert.Len(t, resp.Data.Endpoints, 3)
}

func TestValidateCommand_YAMLSpec(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("..", "harness", "testdata", "specs", "users.yaml")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "5 operation(s) on 3 path(s)")
}

func TestValidateCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		specPath func(t *testing.T) string
		code     string
	}{
		{
			name:     "missing_file",
			specPath: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.json") },
			code:     spec.ErrCodeReadFailed,
		},
		{
			name:     "unparsable",
			specPath: func(t *testing.T) string { return writeSpec(t, "api.json", "{") },
			code:     spec.ErrCodeParseFailed,
		},
		{
			name:     "unsupported_type",
			specPath: func(t *testing.T) string { return writeSpec(t, "api.toml", "") },
			code:     spec.ErrCodeUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewValidateCommand(&RootOptions{Format: "json"})
			buf := &bytes.Buffer{}
			cmd.SetOut(buf)
			cmd.SetArgs([]string{tt.specPath(t)})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp Response
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestValidateCommand_TextError(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeSpec(t, "api.json", "{")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Error [E002]")
	assert.Contains(t, err.Error(), "E002")
}

func TestValidateCommand_VerboseTextErrorShowsDetails(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text", Verbose: true})
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(diag)
	path := writeSpec(t, "api.json", "{")
	cmd.SetArgs([]string{path})

	require.Error(t, cmd.Execute())
	assert.Contains(t, out.String(), "Error [E002]")
	assert.Contains(t, out.String(), "Details: {")
	assert.Equal(t, "Loading "+path+"\n", diag.String())
}

func TestValidateCommand_VerboseJSONKeepsStdoutClean(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "json", Verbose: true})
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(diag)
	cmd.SetArgs([]string{testutil.WriteUsersSpec(t)})

	require.NoError(t, cmd.Execute())
	assert.True(t, json.Valid(out.Bytes()), out.String())
	assert.Contains(t, diag.String(), "Loading ")
}
