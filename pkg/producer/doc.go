// Package producer defines the chunk producers behind each stream kind.
// A Producer is a lazy sequence: every call to Next yields the next chunk
// or io.EOF once the sequence is exhausted. Producers suspend only inside
// their Pacer, so cancelling the context stops even the unbounded metrics
// stream within one pacing interval.
package producer
