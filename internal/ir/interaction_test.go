package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTagged = `[{"uuid":"u-1","request":{"host":"api.example.com","method":"GET","path":"/users/7","query":{"asText":"limit=1"},"headers":[{"name":"Accept","value":"*/*"}],"body":{"value":{}}},"response":{"statusCode":200,"body":{"contentType":"application/json","value":{"asJsonString":"{\"id\":\"7\"}"}}}},["capture-1","env:ci"]]`

func TestTaggedInteractionUnmarshal(t *testing.T) {
	var got TaggedInteraction
	require.NoError(t, json.Unmarshal([]byte(sampleTagged), &got))

	assert.Equal(t, Tags{"capture-1", "env:ci"}, got.Tags)
	assert.Equal(t, "GET", got.Interaction.Request.Method)
	assert.Equal(t, "/users/7", got.Interaction.Request.Path)
	require.NotNil(t, got.Interaction.Request.Query.AsText)
	assert.Equal(t, "limit=1", *got.Interaction.Request.Query.AsText)
	assert.False(t, got.Interaction.Request.Body.HasBody())
	assert.Equal(t, int64(200), got.Interaction.Response.StatusCode)
	require.NotNil(t, got.Interaction.Response.Body.Value.AsJSONString)
	assert.Equal(t, `{"id":"7"}`, *got.Interaction.Response.Body.Value.AsJSONString)
	assert.NoError(t, got.Interaction.Validate())
}

func TestTaggedInteractionRejectsWrongArity(t *testing.T) {
	var got TaggedInteraction

	err := json.Unmarshal([]byte(`[{}]`), &got)
	assert.ErrorContains(t, err, "expected 2 elements, got 1")

	err = json.Unmarshal([]byte(`[{}, [], "extra"]`), &got)
	assert.ErrorContains(t, err, "expected 2 elements, got 3")

	err = json.Unmarshal([]byte(`{"request":{}}`), &got)
	assert.Error(t, err)
}

func TestTaggedInteractionRejectsNonStringTags(t *testing.T) {
	var got TaggedInteraction
	err := json.Unmarshal([]byte(`[{"request":{"method":"GET","path":"/"},"response":{"statusCode":200}}, [1, 2]]`), &got)
	assert.ErrorContains(t, err, "tags")
}

func TestTaggedInteractionRejectsNullTags(t *testing.T) {
	tests := []struct {
		name string
		tags string
		want string
	}{
		{"null list", `null`, "tags: "},
		{"null element", `["a", null]`, "tags[1]: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got TaggedInteraction
			err := json.Unmarshal([]byte(`[{"request":{"method":"GET","path":"/"},"response":{"statusCode":204}}, `+tt.tags+`]`), &got)
			assert.ErrorIs(t, err, ErrNullTags)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestTaggedInteractionKeepsEmptyStringTags(t *testing.T) {
	var got TaggedInteraction
	require.NoError(t, json.Unmarshal([]byte(`[{"request":{"method":"GET","path":"/"},"response":{"statusCode":204}}, ["", "b"]]`), &got))
	assert.Equal(t, Tags{"", "b"}, got.Tags)
}

func TestTaggedInteractionRoundTrip(t *testing.T) {
	var first TaggedInteraction
	require.NoError(t, json.Unmarshal([]byte(sampleTagged), &first))

	data, err := json.Marshal(first)
	require.NoError(t, err)

	var second TaggedInteraction
	require.NoError(t, json.Unmarshal(data, &second))
	assert.Equal(t, first, second)
}

func TestHTTPInteractionValidate(t *testing.T) {
	valid := func() HTTPInteraction {
		return HTTPInteraction{
			Request:  HTTPRequest{Method: "POST", Path: "/orders"},
			Response: HTTPResponse{StatusCode: 201},
		}
	}
	bad := `{"unterminated`

	tests := []struct {
		name    string
		mutate  func(*HTTPInteraction)
		wantErr error
	}{
		{"valid", func(*HTTPInteraction) {}, nil},
		{"missing method", func(i *HTTPInteraction) { i.Request.Method = "" }, ErrMissingMethod},
		{"relative path", func(i *HTTPInteraction) { i.Request.Path = "orders" }, ErrInvalidPath},
		{"status too low", func(i *HTTPInteraction) { i.Response.StatusCode = 99 }, ErrInvalidStatus},
		{"status too high", func(i *HTTPInteraction) { i.Response.StatusCode = 600 }, ErrInvalidStatus},
		{"invalid request json", func(i *HTTPInteraction) {
			i.Request.Body = Body{ContentType: "application/json", Value: ArbitraryData{AsJSONString: &bad}}
		}, ErrInvalidJSONBody},
		{"invalid json without content type is ignored", func(i *HTTPInteraction) {
			i.Response.Body = Body{Value: ArbitraryData{AsJSONString: &bad}}
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "application/json", MediaType("Application/JSON; charset=utf-8"))
	assert.Equal(t, "text/plain", MediaType(" text/plain "))
	assert.Equal(t, "", MediaType(""))

	assert.True(t, IsJSONMediaType("application/json"))
	assert.True(t, IsJSONMediaType("application/problem+json"))
	assert.False(t, IsJSONMediaType("text/html"))
}
