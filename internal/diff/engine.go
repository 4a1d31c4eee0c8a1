package diff

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/roach88/specdiff/internal/ir"
	"github.com/roach88/specdiff/internal/spec"
)

// Errors returned for broken invariants. A well-formed interaction compared
// against a loaded snapshot never produces them.
var (
	ErrNilSnapshot    = errors.New("diff: nil snapshot")
	ErrNilInteraction = errors.New("diff: nil interaction")
)

// Engine compares interactions against a snapshot.
// The zero value is ready to use.
type Engine struct{}

// Compare returns the discrepancies between an interaction and the snapshot.
// An empty result means the interaction conforms.
func (Engine) Compare(snap *spec.Snapshot, in *ir.HTTPInteraction) ([]ir.Finding, error) {
	return Compare(snap, in)
}

// Compare is the function form of Engine.Compare.
func Compare(snap *spec.Snapshot, in *ir.HTTPInteraction) ([]ir.Finding, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if in == nil {
		return nil, ErrNilInteraction
	}

	method := strings.ToUpper(in.Request.Method)
	rawPath, pathQuery, _ := strings.Cut(in.Request.Path, "?")

	item, ok := snap.MatchPath(rawPath)
	if !ok {
		return []ir.Finding{{
			Kind:     ir.KindUnmatchedRequestURL,
			Location: ir.Location{In: ir.InRequest, Method: method, Path: rawPath},
		}}, nil
	}

	op, ok := item.Operation(method)
	if !ok {
		return []ir.Finding{{
			Kind:     ir.KindUnmatchedRequestMethod,
			Location: ir.Location{In: ir.InRequest, Method: method, Path: item.Template()},
			Expected: strings.Join(item.Methods(), ","),
			Observed: method,
		}}, nil
	}

	c := newCollector()
	compareQuery(c, op, queryString(in.Request.Query, pathQuery))
	if err := compareRequestBody(c, op, in.Request.Body); err != nil {
		return nil, err
	}
	if err := compareResponse(c, op, in.Response); err != nil {
		return nil, err
	}
	return c.findings, nil
}

// collector accumulates findings in emission order, dropping exact duplicates.
type collector struct {
	findings []ir.Finding
	seen     map[string]bool
}

func newCollector() *collector {
	return &collector{seen: make(map[string]bool)}
}

func (c *collector) add(f ir.Finding) {
	key := dedupeKey(&f)
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	c.findings = append(c.findings, f)
}

func dedupeKey(f *ir.Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s|%s|%d|%s|%s|%s|%s",
		f.Kind, f.Location.In, f.Location.Method, f.Location.Path, f.Location.StatusCode,
		f.Location.ContentType, f.Parameter, f.Expected, f.Observed)
	if f.Shape != nil {
		fmt.Fprintf(&b, "|%s|%s|%s|%s", f.Shape.JSONPath, f.Shape.Issue, f.Shape.Expected, f.Shape.Observed)
	}
	return b.String()
}

// queryString picks the recorded query text, falling back to a query string
// left on the request path.
func queryString(q ir.ArbitraryData, fromPath string) string {
	if q.AsText != nil && *q.AsText != "" {
		return strings.TrimPrefix(*q.AsText, "?")
	}
	return fromPath
}

func compareQuery(c *collector, op *spec.Operation, raw string) {
	// A malformed pair is dropped by ParseQuery; the rest still get checked.
	values, _ := url.ParseQuery(raw)

	observed := make([]string, 0, len(values))
	for name := range values {
		observed = append(observed, name)
	}
	sort.Strings(observed)

	loc := ir.Location{In: ir.InRequest, Method: op.Method(), Path: op.PathTemplate()}
	for _, name := range observed {
		if _, ok := op.QueryParam(name); !ok {
			c.add(ir.Finding{Kind: ir.KindUnmatchedQueryParameter, Location: loc, Parameter: name})
		}
	}
	for _, name := range op.QueryParamNames() {
		q, _ := op.QueryParam(name)
		if _, present := values[name]; q.Required && !present {
			c.add(ir.Finding{Kind: ir.KindMissingQueryParameter, Location: loc, Parameter: name})
		}
	}
}

func compareRequestBody(c *collector, op *spec.Operation, body ir.Body) error {
	if !body.HasBody() {
		return nil
	}
	loc := ir.Location{In: ir.InRequest, Method: op.Method(), Path: op.PathTemplate()}
	return compareBody(c, loc, op.Request(), body,
		ir.KindUnmatchedRequestBodyContentType, ir.KindUnmatchedRequestBodyShape)
}

func compareResponse(c *collector, op *spec.Operation, resp ir.HTTPResponse) error {
	loc := ir.Location{
		In:         ir.InResponse,
		Method:     op.Method(),
		Path:       op.PathTemplate(),
		StatusCode: resp.StatusCode,
	}

	documented, ok := op.Response(resp.StatusCode)
	if !ok {
		c.add(ir.Finding{Kind: ir.KindUnmatchedResponseStatusCode, Location: loc})
		return nil
	}
	if !resp.Body.HasBody() {
		return nil
	}
	if documented.ContentType == "" {
		documented = nil
	}
	return compareBody(c, loc, documented, resp.Body,
		ir.KindUnmatchedResponseBodyContentType, ir.KindUnmatchedResponseBodyShape)
}

// compareBody checks an observed body against its documentation. documented
// is nil when no body is documented at this location.
func compareBody(c *collector, loc ir.Location, documented *spec.BodySpec, body ir.Body, contentTypeKind, shapeKind ir.FindingKind) error {
	mediaType := body.MediaType()
	loc.ContentType = mediaType

	if documented == nil || documented.MediaType != mediaType {
		f := ir.Finding{Kind: contentTypeKind, Location: loc, Observed: mediaType}
		if documented != nil {
			f.Expected = documented.MediaType
		}
		c.add(f)
		return nil
	}

	if documented.Shape == nil || !ir.IsJSONMediaType(mediaType) {
		return nil
	}
	value, ok, err := decodeBody(body.Value)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return walkShape(documented.Shape, value, "$", func(trail ir.ShapeTrail) {
		t := trail
		c.add(ir.Finding{Kind: shapeKind, Location: loc, Shape: &t})
	})
}
