package ir

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNullTags is returned when the tag list, or one of its elements, is
// JSON null. Tags must round-trip element for element, and null has no
// string form to carry.
var ErrNullTags = errors.New("tags must be an array of strings, not null")

// Tags is the ordered list of opaque labels attached to an input record.
// Tags are never interpreted; they are carried verbatim onto every result.
type Tags []string

// RawRecord is one undecoded input line.
type RawRecord struct {
	// Line is the 1-based line number in the input stream.
	Line int64

	// Data is the line content without the trailing newline.
	Data []byte
}

// HTTPInteraction describes one captured HTTP exchange.
type HTTPInteraction struct {
	UUID     string       `json:"uuid,omitempty"`
	Request  HTTPRequest  `json:"request"`
	Response HTTPResponse `json:"response"`
}

// HTTPRequest is the request half of an interaction.
type HTTPRequest struct {
	Host    string          `json:"host,omitempty"`
	Method  string          `json:"method"`
	Path    string          `json:"path"`
	Query   ArbitraryData   `json:"query"`
	Headers json.RawMessage `json:"headers,omitempty"`
	Body    Body            `json:"body"`
}

// HTTPResponse is the response half of an interaction.
type HTTPResponse struct {
	StatusCode int64           `json:"statusCode"`
	Headers    json.RawMessage `json:"headers,omitempty"`
	Body       Body            `json:"body"`
}

// Body is a captured message body. An empty ContentType means no body.
type Body struct {
	ContentType string        `json:"contentType,omitempty"`
	Value       ArbitraryData `json:"value"`
}

// ArbitraryData holds a captured payload in one of its recorded encodings.
// AsJSONString, when set, is a JSON document encoded as a string.
type ArbitraryData struct {
	AsJSONString *string `json:"asJsonString,omitempty"`
	AsText       *string `json:"asText,omitempty"`
}

// HasBody reports whether the body was captured with a content type.
func (b Body) HasBody() bool {
	return b.ContentType != ""
}

// MediaType returns the content type without parameters, lowercased.
//
//	"Application/JSON; charset=utf-8" -> "application/json"
func (b Body) MediaType() string {
	return MediaType(b.ContentType)
}

// MediaType strips parameters from a content type and lowercases it.
func MediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// IsJSONMediaType reports whether a media type carries a JSON document.
func IsJSONMediaType(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// TaggedInteraction is one decoded input record: [interaction, tags].
type TaggedInteraction struct {
	Interaction HTTPInteraction
	Tags        Tags
}

// UnmarshalJSON decodes the two-element array form [interaction, tags].
// Anything other than exactly two elements is rejected.
func (t *TaggedInteraction) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("tagged interaction: %w", err)
	}
	if len(parts) != 2 {
		return fmt.Errorf("tagged interaction: expected 2 elements, got %d", len(parts))
	}

	var interaction HTTPInteraction
	if err := json.Unmarshal(parts[0], &interaction); err != nil {
		return fmt.Errorf("interaction: %w", err)
	}

	// Decoding through pointers tells a null element apart from "".
	var raw []*string
	if err := json.Unmarshal(parts[1], &raw); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("tags: %w", ErrNullTags)
	}
	tags := make(Tags, len(raw))
	for i, tag := range raw {
		if tag == nil {
			return fmt.Errorf("tags[%d]: %w", i, ErrNullTags)
		}
		tags[i] = *tag
	}

	t.Interaction = interaction
	t.Tags = tags
	return nil
}

// MarshalJSON encodes the two-element array form [interaction, tags].
func (t TaggedInteraction) MarshalJSON() ([]byte, error) {
	tags := t.Tags
	if tags == nil {
		tags = Tags{}
	}
	return json.Marshal([]any{t.Interaction, tags})
}

// Validation errors returned by HTTPInteraction.Validate.
var (
	ErrMissingMethod   = errors.New("request method is required")
	ErrInvalidPath     = errors.New("request path must start with '/'")
	ErrInvalidStatus   = errors.New("response status code must be within 100-599")
	ErrInvalidJSONBody = errors.New("body declared as JSON is not valid JSON")
)

// Validate checks the structural requirements comparison relies on.
// A record failing validation is malformed input, not a discrepancy.
func (i *HTTPInteraction) Validate() error {
	if i.Request.Method == "" {
		return ErrMissingMethod
	}
	if !strings.HasPrefix(i.Request.Path, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, i.Request.Path)
	}
	if i.Response.StatusCode < 100 || i.Response.StatusCode > 599 {
		return fmt.Errorf("%w: %d", ErrInvalidStatus, i.Response.StatusCode)
	}
	if err := validateJSONBody("request", i.Request.Body); err != nil {
		return err
	}
	return validateJSONBody("response", i.Response.Body)
}

func validateJSONBody(side string, b Body) error {
	if !b.HasBody() || b.Value.AsJSONString == nil {
		return nil
	}
	if !json.Valid([]byte(*b.Value.AsJSONString)) {
		return fmt.Errorf("%s %w", side, ErrInvalidJSONBody)
	}
	return nil
}
