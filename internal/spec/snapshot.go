package spec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/specdiff/internal/ir"
)

// Info carries the optional document metadata.
type Info struct {
	Title   string `json:"title,omitempty"`
	Version string `json:"version,omitempty"`
}

// QueryParam describes one documented query parameter.
type QueryParam struct {
	Required bool
}

// BodySpec describes a documented message body.
// Shape is nil when only the content type is documented.
type BodySpec struct {
	ContentType string
	MediaType   string
	Shape       *Shape
}

// Operation is one documented method on a path.
type Operation struct {
	method     string
	path       *PathItem
	query      map[string]QueryParam
	queryNames []string
	request    *BodySpec
	responses  map[int64]*BodySpec
	statuses   []int64
}

// Method returns the upper-cased HTTP method.
func (o *Operation) Method() string { return o.method }

// PathTemplate returns the documented path template.
func (o *Operation) PathTemplate() string { return o.path.template }

// QueryParam returns the documented query parameter with the given name.
func (o *Operation) QueryParam(name string) (QueryParam, bool) {
	q, ok := o.query[name]
	return q, ok
}

// QueryParamNames returns the documented query parameter names, sorted.
func (o *Operation) QueryParamNames() []string {
	out := make([]string, len(o.queryNames))
	copy(out, o.queryNames)
	return out
}

// Request returns the documented request body, or nil if none is accepted.
func (o *Operation) Request() *BodySpec { return o.request }

// Response returns the documented response for a status code.
// The returned BodySpec has an empty ContentType when the response has no body.
func (o *Operation) Response(status int64) (*BodySpec, bool) {
	r, ok := o.responses[status]
	return r, ok
}

// Statuses returns the documented status codes in ascending order.
func (o *Operation) Statuses() []int64 {
	out := make([]int64, len(o.statuses))
	copy(out, o.statuses)
	return out
}

// PathItem groups the operations documented on one path template.
type PathItem struct {
	template   string
	segments   []segment
	operations map[string]*Operation
	methods    []string
}

// Template returns the path template as written in the document.
func (p *PathItem) Template() string { return p.template }

// Operation returns the operation for an HTTP method (case-insensitive).
func (p *PathItem) Operation(method string) (*Operation, bool) {
	op, ok := p.operations[strings.ToUpper(method)]
	return op, ok
}

// Methods returns the documented methods, sorted.
func (p *PathItem) Methods() []string {
	out := make([]string, len(p.methods))
	copy(out, p.methods)
	return out
}

// Snapshot is the immutable in-memory form of a specification.
type Snapshot struct {
	info  Info
	paths []*PathItem // specificity order: literal segments before parameters
}

// Info returns the document metadata.
func (s *Snapshot) Info() Info { return s.info }

// Paths returns the documented path items in matching order.
func (s *Snapshot) Paths() []*PathItem {
	out := make([]*PathItem, len(s.paths))
	copy(out, s.paths)
	return out
}

// OperationCount returns the number of documented method+path pairs.
func (s *Snapshot) OperationCount() int {
	n := 0
	for _, p := range s.paths {
		n += len(p.operations)
	}
	return n
}

// MatchPath returns the most specific path item matching a request path.
// Any query string on the path is ignored.
func (s *Snapshot) MatchPath(requestPath string) (*PathItem, bool) {
	parts := splitPath(requestPath)
	for _, p := range s.paths {
		if p.matches(parts) {
			return p, true
		}
	}
	return nil, false
}

// Operation resolves a method and request path to a documented operation.
func (s *Snapshot) Operation(method, requestPath string) (*Operation, bool) {
	p, ok := s.MatchPath(requestPath)
	if !ok {
		return nil, false
	}
	return p.Operation(method)
}

// endpointDoc is the decoded document form of an endpoint.
type endpointDoc struct {
	Method    string                   `json:"method"`
	Path      string                   `json:"path"`
	Query     map[string]queryParamDoc `json:"query,omitempty"`
	Request   *bodyDoc                 `json:"request,omitempty"`
	Responses []responseDoc            `json:"responses"`
}

type queryParamDoc struct {
	Required bool `json:"required,omitempty"`
}

type bodyDoc struct {
	ContentType string    `json:"contentType"`
	Shape       *shapeDoc `json:"shape,omitempty"`
}

type responseDoc struct {
	Status      int64     `json:"status"`
	ContentType string    `json:"contentType,omitempty"`
	Shape       *shapeDoc `json:"shape,omitempty"`
}

// document is the decoded top level of a specification file.
type document struct {
	Info      *Info         `json:"info,omitempty"`
	Endpoints []endpointDoc `json:"endpoints"`
}

// build turns a schema-validated document into a Snapshot.
func build(doc *document) (*Snapshot, error) {
	snap := &Snapshot{}
	if doc.Info != nil {
		snap.info = *doc.Info
	}

	byKey := make(map[string]*PathItem)
	for i, ep := range doc.Endpoints {
		at := fmt.Sprintf("endpoints[%d]", i)

		segs, err := parseTemplate(ep.Path)
		if err != nil {
			return nil, fmt.Errorf("%s.path: %w", at, err)
		}
		key := templateKey(segs)
		item, ok := byKey[key]
		if !ok {
			item = &PathItem{
				template:   ep.Path,
				segments:   segs,
				operations: make(map[string]*Operation),
			}
			byKey[key] = item
			snap.paths = append(snap.paths, item)
		}

		method := strings.ToUpper(ep.Method)
		if _, dup := item.operations[method]; dup {
			return nil, fmt.Errorf("%s: duplicate operation %s %s", at, method, ep.Path)
		}
		op, err := buildOperation(ep, method, item, at)
		if err != nil {
			return nil, err
		}
		item.operations[method] = op
		item.methods = append(item.methods, method)
	}

	for _, p := range snap.paths {
		sort.Strings(p.methods)
	}
	sort.SliceStable(snap.paths, func(i, j int) bool {
		return moreSpecific(snap.paths[i].segments, snap.paths[j].segments)
	})
	return snap, nil
}

func buildOperation(ep endpointDoc, method string, item *PathItem, at string) (*Operation, error) {
	op := &Operation{
		method:    method,
		path:      item,
		query:     make(map[string]QueryParam, len(ep.Query)),
		responses: make(map[int64]*BodySpec, len(ep.Responses)),
	}

	for name, q := range ep.Query {
		op.query[name] = QueryParam{Required: q.Required}
		op.queryNames = append(op.queryNames, name)
	}
	sort.Strings(op.queryNames)

	if ep.Request != nil {
		body, err := buildBody(ep.Request.ContentType, ep.Request.Shape, at+".request")
		if err != nil {
			return nil, err
		}
		op.request = body
	}

	for j, r := range ep.Responses {
		rat := fmt.Sprintf("%s.responses[%d]", at, j)
		if _, dup := op.responses[r.Status]; dup {
			return nil, fmt.Errorf("%s: duplicate status %d", rat, r.Status)
		}
		body, err := buildBody(r.ContentType, r.Shape, rat)
		if err != nil {
			return nil, err
		}
		op.responses[r.Status] = body
		op.statuses = append(op.statuses, r.Status)
	}
	sort.Slice(op.statuses, func(a, b int) bool { return op.statuses[a] < op.statuses[b] })

	return op, nil
}

func buildBody(contentType string, sd *shapeDoc, at string) (*BodySpec, error) {
	body := &BodySpec{
		ContentType: contentType,
		MediaType:   ir.MediaType(contentType),
	}
	if sd == nil {
		return body, nil
	}
	if body.MediaType == "" {
		return nil, fmt.Errorf("%s: shape requires a contentType", at)
	}
	if !ir.IsJSONMediaType(body.MediaType) {
		return nil, fmt.Errorf("%s: shape given for non-JSON content type %q", at, contentType)
	}
	shape, err := buildShape(sd, at+".shape")
	if err != nil {
		return nil, err
	}
	body.Shape = shape
	return body, nil
}
