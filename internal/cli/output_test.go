package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", base, ExitFailure},
		{"command", exitErrorf(ExitCommandError, "bad args"), ExitCommandError},
		{"wrapped", fmt.Errorf("outer: %w", exitErrorf(ExitFailure, "run failed: %w", base)), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitErrorf_KeepsCause(t *testing.T) {
	base := errors.New("boom")
	err := exitErrorf(ExitCommandError, "failed to load specification: %w", base)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "failed to load specification: boom", err.Error())
}

func TestWriteResponse_OmitsEmptyFields(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, writeResponse(buf, Response{
		Status: "error",
		Error:  &ResponseError{Code: "E003", Message: "specification does not match schema"},
	}))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "error", raw["status"])
	assert.NotContains(t, raw, "data")
	assert.NotContains(t, raw["error"], "details")
}
