package spec

import (
	"fmt"
	"strings"
)

// segment is one component of a path template. A parameter segment
// ("{id}") matches any single non-empty request path component.
type segment struct {
	literal string
	param   string
}

func (s segment) isParam() bool { return s.param != "" }

// splitPath breaks a request path into components. The query string and a
// trailing slash are ignored, so "/users/" and "/users?x=1" both yield
// ["users"]. The root path yields no components.
func splitPath(p string) []string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func parseTemplate(tmpl string) ([]segment, error) {
	if !strings.HasPrefix(tmpl, "/") {
		return nil, fmt.Errorf("template %q must start with '/'", tmpl)
	}
	if strings.Contains(tmpl, "?") {
		return nil, fmt.Errorf("template %q must not contain a query string", tmpl)
	}

	parts := splitPath(tmpl)
	segs := make([]segment, 0, len(parts))
	seen := make(map[string]bool)
	for _, part := range parts {
		switch {
		case part == "":
			return nil, fmt.Errorf("template %q has an empty segment", tmpl)
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			name := part[1 : len(part)-1]
			if name == "" || strings.ContainsAny(name, "{}") {
				return nil, fmt.Errorf("template %q has an invalid parameter %q", tmpl, part)
			}
			if seen[name] {
				return nil, fmt.Errorf("template %q repeats parameter %q", tmpl, name)
			}
			seen[name] = true
			segs = append(segs, segment{param: name})
		case strings.ContainsAny(part, "{}"):
			return nil, fmt.Errorf("template %q: parameters must span a whole segment: %q", tmpl, part)
		default:
			segs = append(segs, segment{literal: part})
		}
	}
	return segs, nil
}

// templateKey identifies templates that match the same request paths,
// ignoring parameter names: "/u/{id}" and "/u/{uid}" share a key.
func templateKey(segs []segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		if s.isParam() {
			b.WriteString("{}")
			continue
		}
		b.WriteString(s.literal)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func (p *PathItem) matches(parts []string) bool {
	if len(parts) != len(p.segments) {
		return false
	}
	for i, s := range p.segments {
		if s.isParam() {
			if parts[i] == "" {
				return false
			}
			continue
		}
		if parts[i] != s.literal {
			return false
		}
	}
	return true
}

// moreSpecific orders templates for matching: at the first position where
// they differ in kind, a literal segment wins over a parameter. Otherwise
// shorter templates come first and ties keep document order.
func moreSpecific(a, b []segment) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].isParam() != b[i].isParam() {
			return !a[i].isParam()
		}
	}
	return len(a) < len(b)
}
