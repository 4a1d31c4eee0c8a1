// Package spec loads API specification files into an immutable Snapshot.
//
// A specification document lists endpoints (method + path template), the
// query parameters they accept, and the request and response bodies they
// exchange, described as JSON shapes:
//
//	{
//	  "info": {"title": "users", "version": "1"},
//	  "endpoints": [{
//	    "method": "GET",
//	    "path": "/users/{id}",
//	    "query": {"fields": {"required": false}},
//	    "responses": [{
//	      "status": 200,
//	      "contentType": "application/json",
//	      "shape": {"type": "object", "fields": {"id": {"type": "string"}}}
//	    }, {"status": 404}]
//	  }]
//	}
//
// Documents may be written as JSON, CUE or YAML. Each is unified with the
// embedded CUE schema (schema.cue) before being built, so structural mistakes
// are reported with file positions.
//
// A Snapshot is built once and never mutated. Every accessor returns either a
// value or an immutable view, so a single *Snapshot may be shared by any
// number of goroutines without locking.
package spec
