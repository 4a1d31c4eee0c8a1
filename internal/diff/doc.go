// Package diff compares captured HTTP interactions against a spec.Snapshot.
//
// Compare is a pure function of its inputs: it never mutates the snapshot or
// the interaction, keeps no state between calls, and returns findings in a
// deterministic order. One Engine value may be shared by any number of
// goroutines.
//
// Comparison proceeds from coarse to fine and stops at the first level that
// cannot be matched:
//
//  1. path        -> UnmatchedRequestUrl
//  2. method      -> UnmatchedRequestMethod
//  3. query       -> UnmatchedQueryParameter, MissingQueryParameter
//  4. request     -> UnmatchedRequestBodyContentType, UnmatchedRequestBodyShape
//  5. status code -> UnmatchedResponseStatusCode
//  6. response    -> UnmatchedResponseBodyContentType, UnmatchedResponseBodyShape
//
// Query and request body findings are reported even when the response later
// fails to match.
package diff
