package producer

import (
	"time"
	"unicode/utf8"

	"github.com/rhuss/strom/pkg/api"
)

const textDelay = 100 * time.Millisecond

func newText(r *api.TextRequest, opts Options) Producer {
	return fromStrings(splitRunes(r.Text, *r.ChunkSize), opts.Pacer, textDelay)
}

// splitRunes cuts s into slices of size code points. The last slice holds
// the remainder.
func splitRunes(s string, size int) []string {
	if size < 1 {
		size = 1
	}
	n := utf8.RuneCountInString(s)
	parts := make([]string, 0, (n+size-1)/size)

	start, count := 0, 0
	for i := range s {
		if count == size {
			parts = append(parts, s[start:i])
			start, count = i, 0
		}
		count++
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}
