package producer

import (
	"time"

	"github.com/rhuss/strom/pkg/api"
)

const (
	transcriptionDelay = 150 * time.Millisecond

	// TranscriptionComplete closes every transcription stream.
	TranscriptionComplete = "\n[Transcription complete]"
)

func newTranscription(r *api.TranscriptionRequest, opts Options) Producer {
	words := []string{
		"Hello", "world", "this", "is", "a", "streaming", "transcription",
		"of", "the", "audio", "file", "from", r.AudioURL, "in", r.Language, "language.",
	}

	parts := make([]string, 0, len(words)+1)
	for _, w := range words {
		parts = append(parts, w+" ")
	}
	parts = append(parts, TranscriptionComplete)

	return fromStrings(parts, opts.Pacer, transcriptionDelay)
}
