package producer

import (
	"fmt"
	"time"

	"github.com/rhuss/strom/pkg/api"
)

const logsDelay = 50 * time.Millisecond

// timestampLayout matches an ISO 8601 local timestamp with microseconds.
const timestampLayout = "2006-01-02T15:04:05.000000"

var logMessages = map[string][]string{
	api.LevelDebug:    {"Debug: Processing request", "Debug: Cache hit", "Debug: Database query"},
	api.LevelInfo:     {"Info: User logged in", "Info: Request processed", "Info: Cache updated"},
	api.LevelWarning:  {"Warning: High memory usage", "Warning: Slow query detected", "Warning: Rate limit approaching"},
	api.LevelError:    {"Error: Database connection failed", "Error: Invalid input", "Error: Service unavailable"},
	api.LevelCritical: {"Critical: System failure", "Critical: Data corruption", "Critical: Security breach"},
}

// newLogs emits one line per requested log entry, numbered from 1.
func newLogs(r *api.LogsRequest, opts Options) Producer {
	level := r.LogLevel
	pool, ok := logMessages[level]
	if !ok {
		pool = logMessages[api.LevelInfo]
	}

	return &sequence{
		pacer: opts.Pacer,
		delay: logsDelay,
		n:     *r.Lines,
		chunk: func(i int) (Chunk, error) {
			msg := pool[opts.Rand.IntN(len(pool))]
			line := fmt.Sprintf("[%s] %s: %s - Line %d\n", opts.Now().Format(timestampLayout), level, msg, i+1)
			return TextChunk(line), nil
		},
	}
}
