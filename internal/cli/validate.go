package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/specdiff/internal/spec"
)

// ValidationResult summarises a specification that loaded cleanly.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Title      string            `json:"title,omitempty"`
	Version    string            `json:"version,omitempty"`
	Paths      int               `json:"paths"`
	Operations int               `json:"operations"`
	Endpoints  []EndpointSummary `json:"endpoints"`
}

// EndpointSummary lists the methods documented on one path template.
type EndpointSummary struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
}

// LoadErrorDetails locates a load failure in the specification file.
type LoadErrorDetails struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Cause  string `json:"cause,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <spec-file>",
		Short: "Validate a specification without reading interactions",
		Long: `Load a specification and check it against the schema.

Reports the first problem found with its position in the file, or a summary
of the documented endpoints.

Examples:
  specdiff validate ./api.json
  specdiff validate ./api.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specPath string, cmd *cobra.Command) error {
	w := cmd.OutOrStdout()
	if opts.Verbose {
		// Diagnostics stay off stdout so JSON output remains parseable.
		fmt.Fprintf(cmd.ErrOrStderr(), "Loading %s\n", specPath)
	}

	snap, err := spec.Load(specPath)
	if err != nil {
		var loadErr *spec.LoadError
		if errors.As(err, &loadErr) {
			return outputValidateError(w, opts, loadErr.Code, loadErr.Message, loadErrorDetails(loadErr))
		}
		return outputValidateError(w, opts, spec.ErrCodeReadFailed, err.Error(), nil)
	}

	result := summarize(snap)
	if opts.Format == "json" {
		return writeResponse(w, Response{Status: "ok", Data: result})
	}

	name := result.Title
	if name == "" {
		name = specPath
	}
	if result.Version != "" {
		name += " " + result.Version
	}
	fmt.Fprintf(w, "✓ %s: %d operation(s) on %d path(s)\n", name, result.Operations, result.Paths)
	if opts.Verbose && len(result.Endpoints) > 0 {
		rows := make([][]string, 0, len(result.Endpoints))
		for _, ep := range result.Endpoints {
			rows = append(rows, []string{ep.Path, strings.Join(ep.Methods, ", ")})
		}
		fmt.Fprintln(w, renderTable([]string{"Path", "Methods"}, rows))
	}
	return nil
}

func summarize(snap *spec.Snapshot) ValidationResult {
	paths := snap.Paths()
	result := ValidationResult{
		Valid:      true,
		Title:      snap.Info().Title,
		Version:    snap.Info().Version,
		Paths:      len(paths),
		Operations: snap.OperationCount(),
		Endpoints:  make([]EndpointSummary, 0, len(paths)),
	}
	for _, p := range paths {
		result.Endpoints = append(result.Endpoints, EndpointSummary{Path: p.Template(), Methods: p.Methods()})
	}
	return result
}

func loadErrorDetails(le *spec.LoadError) *LoadErrorDetails {
	d := &LoadErrorDetails{}
	if le.Pos.IsValid() {
		d.File = le.Pos.Filename()
		d.Line = le.Pos.Line()
		d.Column = le.Pos.Column()
	}
	if le.Err != nil {
		d.Cause = le.Err.Error()
	}
	if *d == (LoadErrorDetails{}) {
		return nil
	}
	return d
}

// outputValidateError reports a load failure and returns it as a command error.
func outputValidateError(w io.Writer, opts *RootOptions, code, message string, details *LoadErrorDetails) error {
	if opts.Format == "json" {
		resp := Response{Status: "error", Error: &ResponseError{Code: code, Message: message}}
		if details != nil {
			resp.Error.Details = details
		}
		_ = writeResponse(w, resp)
	} else {
		fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
		if opts.Verbose && details != nil {
			fmt.Fprintf(w, "Details: %+v\n", *details)
		}
	}
	return exitErrorf(ExitCommandError, "%s: %s", code, message)
}
