package producer

import (
	"fmt"
	"strings"
	"time"

	"github.com/rhuss/strom/pkg/api"
)

const translationDelay = 100 * time.Millisecond

// newTranslation tags each whitespace-separated word with the target
// language and ends with a completion marker. Input without words yields
// the marker alone.
func newTranslation(r *api.TranslationRequest, opts Options) Producer {
	words := strings.Fields(r.Text)

	parts := make([]string, 0, len(words)+1)
	for _, w := range words {
		parts = append(parts, "["+r.TargetLang+"]"+w+" ")
	}
	parts = append(parts, TranslationComplete(r.SourceLang, r.TargetLang))

	return fromStrings(parts, opts.Pacer, translationDelay)
}

// TranslationComplete returns the final chunk of a translation stream.
func TranslationComplete(source, target string) string {
	return fmt.Sprintf("\n[Translation from %s to %s complete]", source, target)
}
