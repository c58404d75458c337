package producer

import (
	"strings"
	"time"

	"github.com/rhuss/strom/pkg/api"
)

const (
	chatDelay = 200 * time.Millisecond

	// chatEcho is how many characters of the user message are echoed back.
	chatEcho = 50

	// ChatDone is the data of the final event of a chat stream.
	ChatDone = "[DONE]"
)

// newChat streams a canned reply as server-sent events, one word per event,
// and closes with a [DONE] event.
func newChat(r *api.ChatRequest, opts Options) Producer {
	words := []string{
		"This", "is", "a", "streaming", "chat", "response", "generated",
		"by", "the", r.Model, "model.", "The", "message", "you", "sent",
		"was:", echo(r.Message, chatEcho), "...",
	}

	events := make([]string, 0, len(words)+1)
	for _, w := range words {
		events = append(events, "data: "+w+" \n\n")
	}
	events = append(events, "data: "+ChatDone+"\n\n")

	return fromStrings(events, opts.Pacer, chatDelay)
}

// echo returns the first n characters of s on a single line so it cannot
// break event framing.
func echo(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(string(runes))
}
