package transport

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rhuss/strom/pkg/api"
	"github.com/rhuss/strom/pkg/observability"
)

func TestStreamHandlerFuncAdapter(t *testing.T) {
	var gotKind api.Kind
	h := StreamHandlerFunc(func(ctx context.Context, req api.StreamRequest, w ChunkWriter) error {
		gotKind = req.Kind()
		return w.WriteChunk([]byte("chunk"))
	})

	w := &recordingWriter{}
	if err := h.Stream(context.Background(), &api.ChatRequest{Message: "hi"}, w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKind != api.KindChat {
		t.Errorf("kind = %q, want %q", gotKind, api.KindChat)
	}
	if len(w.chunks) != 1 || string(w.chunks[0]) != "chunk" {
		t.Errorf("chunks = %q, want [chunk]", w.chunks)
	}
}

func TestEndedNormally(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"client disconnect", &outcomeError{observability.OutcomeClientDisconnect}, true},
		{"cancelled", &outcomeError{observability.OutcomeCancelled}, true},
		{"max duration wrapped", fmt.Errorf("x: %w", &outcomeError{observability.OutcomeMaxDuration}), true},
		{"producer error", &outcomeError{observability.OutcomeProducerError}, false},
		{"completed", &outcomeError{observability.OutcomeCompleted}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EndedNormally(tt.err); got != tt.want {
				t.Errorf("EndedNormally(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
