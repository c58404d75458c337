// Package engine implements the stream dispatcher for strom.
// The Engine struct implements transport.StreamHandler, binding a validated
// request to its chunk producer and pumping chunks to the client until the
// producer is exhausted, the client goes away, the session is cancelled, or
// the maximum stream duration is reached. Every session is registered in a
// transport.SessionRegistry for listing and explicit cancellation.
package engine
