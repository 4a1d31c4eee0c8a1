package spec

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Format is the syntax a specification document is written in.
type Format string

const (
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
	FormatYAML Format = "yaml"
)

// Error codes for LoadError.
const (
	ErrCodeReadFailed   = "E001" // file missing or unreadable
	ErrCodeParseFailed  = "E002" // not valid JSON / CUE / YAML
	ErrCodeSchemaFailed = "E003" // does not satisfy the schema
	ErrCodeBuildFailed  = "E004" // semantically invalid (duplicates, bad templates)
	ErrCodeUnknownType  = "E005" // unrecognized file extension
)

// LoadError reports why a specification could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsReadError reports whether err is a failure to read the specification file.
func IsReadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Code == ErrCodeReadFailed
}

// FormatForPath picks the document format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", &LoadError{
			Code:    ErrCodeUnknownType,
			Message: fmt.Sprintf("unsupported specification file type %q (want .json, .cue, .yaml or .yml)", filepath.Ext(path)),
		}
	}
}

// Load reads, validates and builds the specification at path.
func Load(path string) (*Snapshot, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: "could not read specification file", Err: err}
	}
	return LoadBytes(path, data, format)
}

// LoadBytes validates and builds a specification held in memory.
// name is used for error positions only.
func LoadBytes(name string, data []byte, format Format) (*Snapshot, error) {
	ctx := cuecontext.New()

	value, err := compileDocument(ctx, name, data, format)
	if err != nil {
		return nil, err
	}

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded; failing to compile it is a programming error.
		return nil, fmt.Errorf("spec: compiling embedded schema: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Spec")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, schemaError(err)
	}

	var doc document
	if err := unified.Decode(&doc); err != nil {
		return nil, schemaError(err)
	}

	snap, err := build(&doc)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: "invalid specification", Err: err}
	}
	return snap, nil
}

func compileDocument(ctx *cue.Context, name string, data []byte, format Format) (cue.Value, error) {
	parseErr := func(err error) error {
		return &LoadError{Code: ErrCodeParseFailed, Message: "specification file could not be parsed", Err: err}
	}

	switch format {
	case FormatJSON:
		// JSON is valid CUE, but checking it as JSON first keeps the error
		// message in the terms the author used.
		var probe any
		if err := json.Unmarshal(data, &probe); err != nil {
			return cue.Value{}, parseErr(err)
		}
		fallthrough
	case FormatCUE:
		v := ctx.CompileBytes(data, cue.Filename(name))
		if err := v.Err(); err != nil {
			return cue.Value{}, withPosition(parseErr(err), err)
		}
		return v, nil
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cue.Value{}, parseErr(err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
		v := ctx.Encode(raw)
		if err := v.Err(); err != nil {
			return cue.Value{}, parseErr(err)
		}
		return v, nil
	default:
		return cue.Value{}, &LoadError{Code: ErrCodeUnknownType, Message: fmt.Sprintf("unsupported format %q", format)}
	}
}

// schemaError extracts the first CUE error with its position.
func schemaError(err error) error {
	le := &LoadError{Code: ErrCodeSchemaFailed, Message: "specification does not match schema", Err: err}
	return withPosition(le, err)
}

func withPosition(target error, cueErr error) error {
	le, ok := target.(*LoadError)
	if !ok {
		return target
	}
	errs := cueerrors.Errors(cueErr)
	if len(errs) == 0 {
		return le
	}
	first := errs[0]
	le.Err = first
	for _, pos := range cueerrors.Positions(first) {
		// Positions inside the embedded schema do not help the author.
		if pos.IsValid() && pos.Filename() != "schema.cue" {
			le.Pos = pos
			break
		}
	}
	return le
}
