package spec

import (
	"fmt"
	"sort"
)

// ShapeKind is the JSON type a shape accepts.
type ShapeKind string

const (
	ShapeString  ShapeKind = "string"
	ShapeNumber  ShapeKind = "number"
	ShapeBoolean ShapeKind = "boolean"
	ShapeNull    ShapeKind = "null"
	ShapeObject  ShapeKind = "object"
	ShapeArray   ShapeKind = "array"
	ShapeAny     ShapeKind = "any"
)

// Shape describes the accepted structure of a JSON value.
// Shapes are immutable once built.
type Shape struct {
	kind       ShapeKind
	optional   bool
	nullable   bool
	fields     map[string]*Shape
	fieldNames []string
	items      *Shape
}

// Kind returns the accepted JSON type.
func (s *Shape) Kind() ShapeKind { return s.kind }

// Optional reports whether the field holding this shape may be absent.
func (s *Shape) Optional() bool { return s.optional }

// Nullable reports whether null is accepted in addition to Kind.
func (s *Shape) Nullable() bool { return s.nullable }

// Items returns the element shape of an array, or nil.
func (s *Shape) Items() *Shape { return s.items }

// Field returns the shape of a documented object field.
func (s *Shape) Field(name string) (*Shape, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// FieldNames returns the documented object fields in sorted order.
func (s *Shape) FieldNames() []string {
	out := make([]string, len(s.fieldNames))
	copy(out, s.fieldNames)
	return out
}

// shapeDoc is the decoded document form of a shape.
type shapeDoc struct {
	Type     string               `json:"type"`
	Optional bool                 `json:"optional,omitempty"`
	Nullable bool                 `json:"nullable,omitempty"`
	Fields   map[string]*shapeDoc `json:"fields,omitempty"`
	Items    *shapeDoc            `json:"items,omitempty"`
}

func buildShape(doc *shapeDoc, at string) (*Shape, error) {
	if doc == nil {
		return nil, nil
	}
	s := &Shape{
		kind:     ShapeKind(doc.Type),
		optional: doc.Optional,
		nullable: doc.Nullable,
	}

	switch s.kind {
	case ShapeString, ShapeNumber, ShapeBoolean, ShapeNull, ShapeAny:
		if len(doc.Fields) > 0 || doc.Items != nil {
			return nil, fmt.Errorf("%s: %q shapes take neither fields nor items", at, s.kind)
		}
	case ShapeObject:
		if doc.Items != nil {
			return nil, fmt.Errorf("%s: object shapes take no items", at)
		}
		s.fields = make(map[string]*Shape, len(doc.Fields))
		for name, fd := range doc.Fields {
			child, err := buildShape(fd, at+"."+name)
			if err != nil {
				return nil, err
			}
			s.fields[name] = child
			s.fieldNames = append(s.fieldNames, name)
		}
		sort.Strings(s.fieldNames)
	case ShapeArray:
		if len(doc.Fields) > 0 {
			return nil, fmt.Errorf("%s: array shapes take no fields", at)
		}
		if doc.Items == nil {
			// An array without an item shape accepts any elements.
			s.items = &Shape{kind: ShapeAny}
			break
		}
		items, err := buildShape(doc.Items, at+"[]")
		if err != nil {
			return nil, err
		}
		s.items = items
	default:
		return nil, fmt.Errorf("%s: unknown shape type %q", at, doc.Type)
	}
	return s, nil
}
