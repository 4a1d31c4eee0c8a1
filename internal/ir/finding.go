package ir

// FindingKind identifies the category of a discrepancy.
type FindingKind string

const (
	// KindUnmatchedRequestURL: no documented path matches the request path.
	KindUnmatchedRequestURL FindingKind = "UnmatchedRequestUrl"

	// KindUnmatchedRequestMethod: the path is documented but not for this method.
	KindUnmatchedRequestMethod FindingKind = "UnmatchedRequestMethod"

	// KindUnmatchedQueryParameter: the request carries an undocumented query parameter.
	KindUnmatchedQueryParameter FindingKind = "UnmatchedQueryParameter"

	// KindMissingQueryParameter: a required query parameter is absent.
	KindMissingQueryParameter FindingKind = "MissingQueryParameter"

	// KindUnmatchedRequestBodyContentType: request body content type is undocumented.
	KindUnmatchedRequestBodyContentType FindingKind = "UnmatchedRequestBodyContentType"

	// KindUnmatchedRequestBodyShape: request body does not conform to its shape.
	KindUnmatchedRequestBodyShape FindingKind = "UnmatchedRequestBodyShape"

	// KindUnmatchedResponseStatusCode: the status code is undocumented for the operation.
	KindUnmatchedResponseStatusCode FindingKind = "UnmatchedResponseStatusCode"

	// KindUnmatchedResponseBodyContentType: response body content type is undocumented.
	KindUnmatchedResponseBodyContentType FindingKind = "UnmatchedResponseBodyContentType"

	// KindUnmatchedResponseBodyShape: response body does not conform to its shape.
	KindUnmatchedResponseBodyShape FindingKind = "UnmatchedResponseBodyShape"
)

// ShapeIssue categorizes a body shape discrepancy.
type ShapeIssue string

const (
	IssueKindMismatch    ShapeIssue = "kind_mismatch"
	IssueUnexpectedField ShapeIssue = "unexpected_field"
	IssueMissingField    ShapeIssue = "missing_field"
	IssueUnexpectedNull  ShapeIssue = "unexpected_null"
)

// Side values for Location.In.
const (
	InRequest  = "request"
	InResponse = "response"
)

// Location anchors a finding in the specification.
//
// Path is the documented path template ("/users/{id}") whenever the request
// matched one. Only KindUnmatchedRequestURL carries the raw request path.
type Location struct {
	In          string `json:"in"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	StatusCode  int64  `json:"statusCode,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// ShapeTrail points at the offending position inside a JSON body.
// Array elements are written as "[]" rather than by index.
type ShapeTrail struct {
	JSONPath string     `json:"jsonPath"`
	Issue    ShapeIssue `json:"issue"`
	Expected string     `json:"expected,omitempty"`
	Observed string     `json:"observed,omitempty"`
}

// Finding is one discrepancy between an interaction and the specification.
type Finding struct {
	Kind      FindingKind `json:"kind"`
	Location  Location    `json:"location"`
	Parameter string      `json:"parameter,omitempty"`
	Expected  string      `json:"expected,omitempty"`
	Observed  string      `json:"observed,omitempty"`
	Shape     *ShapeTrail `json:"shape,omitempty"`
}

// canonicalMap mirrors the JSON encoding of f (omitempty included) as plain
// values accepted by MarshalCanonical.
func (f *Finding) canonicalMap() map[string]any {
	loc := map[string]any{
		"in":     f.Location.In,
		"method": f.Location.Method,
		"path":   f.Location.Path,
	}
	if f.Location.StatusCode != 0 {
		loc["statusCode"] = f.Location.StatusCode
	}
	if f.Location.ContentType != "" {
		loc["contentType"] = f.Location.ContentType
	}

	m := map[string]any{
		"kind":     string(f.Kind),
		"location": loc,
	}
	if f.Parameter != "" {
		m["parameter"] = f.Parameter
	}
	if f.Expected != "" {
		m["expected"] = f.Expected
	}
	if f.Observed != "" {
		m["observed"] = f.Observed
	}
	if f.Shape != nil {
		shape := map[string]any{
			"jsonPath": f.Shape.JSONPath,
			"issue":    string(f.Shape.Issue),
		}
		if f.Shape.Expected != "" {
			shape["expected"] = f.Shape.Expected
		}
		if f.Shape.Observed != "" {
			shape["observed"] = f.Shape.Observed
		}
		m["shape"] = shape
	}
	return m
}
