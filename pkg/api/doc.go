// Package api defines the request and error types for the strom streaming API.
//
// Every stream endpoint accepts one request variant. Requests are decoded from
// JSON (or from the query string for the metrics stream), defaults are applied,
// and the result is validated before any producer is started. Validation
// failures surface as [APIError] values of type invalid_request, which the
// transport maps to HTTP 422.
//
// Core types:
//   - [Kind]: the stream kind, one per endpoint
//   - [StreamRequest]: the validated, immutable input for one stream
//   - [Fields]: an insertion-ordered JSON object used by the data stream
//   - [APIError]: structured error with type, code, param, and message
package api
