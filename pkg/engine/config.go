package engine

import (
	"time"

	"github.com/rhuss/strom/pkg/producer"
)

// DefaultMaxDuration bounds every session unless configured otherwise.
const DefaultMaxDuration = time.Hour

// Config holds configuration for the stream dispatcher.
type Config struct {
	// MaxDuration ends any session that runs longer. Zero disables the
	// limit; unbounded streams then only end when the client leaves.
	MaxDuration time.Duration

	// Pacer performs the delay between chunks. Nil means wall-clock
	// pacing. Tests use producer.Instant.
	Pacer producer.Pacer
}
