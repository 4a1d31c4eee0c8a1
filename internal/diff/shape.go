package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/roach88/specdiff/internal/ir"
	"github.com/roach88/specdiff/internal/spec"
)

// decodeBody parses the JSON payload of a body. ok is false when the body
// carries no JSON rendering to check.
//
// AsJSONString is validated when the record is decoded, so a parse failure
// here means the record changed after validation and is reported as an error.
// AsText is best-effort: text that is not JSON is skipped.
func decodeBody(v ir.ArbitraryData) (value any, ok bool, err error) {
	if v.AsJSONString != nil {
		value, err := decodeJSON(*v.AsJSONString)
		if err != nil {
			return nil, false, fmt.Errorf("diff: validated JSON body failed to decode: %w", err)
		}
		return value, true, nil
	}
	if v.AsText != nil {
		value, err := decodeJSON(*v.AsText)
		if err != nil {
			return nil, false, nil
		}
		return value, true, nil
	}
	return nil, false, nil
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

// observedKind names the JSON type of a decoded value.
func observedKind(v any) spec.ShapeKind {
	switch v.(type) {
	case nil:
		return spec.ShapeNull
	case bool:
		return spec.ShapeBoolean
	case json.Number, float64:
		return spec.ShapeNumber
	case string:
		return spec.ShapeString
	case []any:
		return spec.ShapeArray
	case map[string]any:
		return spec.ShapeObject
	default:
		return ""
	}
}

// walkShape reports every position where value does not conform to shape.
// Object fields are visited in sorted order; array elements share the path
// segment "[]".
func walkShape(shape *spec.Shape, value any, path string, emit func(ir.ShapeTrail)) error {
	if value == nil {
		if shape.Kind() == spec.ShapeNull || shape.Kind() == spec.ShapeAny || shape.Nullable() {
			return nil
		}
		emit(ir.ShapeTrail{
			JSONPath: path,
			Issue:    ir.IssueUnexpectedNull,
			Expected: string(shape.Kind()),
			Observed: string(spec.ShapeNull),
		})
		return nil
	}

	switch shape.Kind() {
	case spec.ShapeAny:
		return nil
	case spec.ShapeString, spec.ShapeNumber, spec.ShapeBoolean, spec.ShapeNull, spec.ShapeObject, spec.ShapeArray:
	default:
		return fmt.Errorf("diff: unknown shape kind %q at %s", shape.Kind(), path)
	}

	observed := observedKind(value)
	if observed == "" {
		return fmt.Errorf("diff: unexpected decoded type %T at %s", value, path)
	}
	if observed != shape.Kind() {
		emit(ir.ShapeTrail{
			JSONPath: path,
			Issue:    ir.IssueKindMismatch,
			Expected: string(shape.Kind()),
			Observed: string(observed),
		})
		return nil
	}

	switch v := value.(type) {
	case map[string]any:
		return walkObject(shape, v, path, emit)
	case []any:
		for _, elem := range v {
			if err := walkShape(shape.Items(), elem, path+"[]", emit); err != nil {
				return err
			}
		}
	}
	return nil
}

func walkObject(shape *spec.Shape, obj map[string]any, path string, emit func(ir.ShapeTrail)) error {
	for _, name := range shape.FieldNames() {
		child, _ := shape.Field(name)
		val, present := obj[name]
		if !present {
			if !child.Optional() {
				emit(ir.ShapeTrail{
					JSONPath: fieldPath(path, name),
					Issue:    ir.IssueMissingField,
					Expected: string(child.Kind()),
				})
			}
			continue
		}
		if err := walkShape(child, val, fieldPath(path, name), emit); err != nil {
			return err
		}
	}

	extra := make([]string, 0)
	for name := range obj {
		if _, ok := shape.Field(name); !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		emit(ir.ShapeTrail{
			JSONPath: fieldPath(path, name),
			Issue:    ir.IssueUnexpectedField,
			Observed: string(observedKind(obj[name])),
		})
	}
	return nil
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// fieldPath appends an object member to a JSON path, bracket-quoting names
// that are not plain identifiers.
func fieldPath(parent, name string) string {
	if identifierPattern.MatchString(name) {
		return parent + "." + name
	}
	return parent + "[" + strconv.Quote(name) + "]"
}
