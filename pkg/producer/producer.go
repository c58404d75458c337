package producer

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/rhuss/strom/pkg/api"
)

// Chunk is one unit of streamed output. Binary chunks carry raw bytes,
// all others carry UTF-8 text.
type Chunk struct {
	Data   []byte
	Binary bool
}

// TextChunk returns a text chunk holding s.
func TextChunk(s string) Chunk {
	return Chunk{Data: []byte(s)}
}

// String returns the chunk payload as a string.
func (c Chunk) String() string {
	return string(c.Data)
}

// Producer yields the chunks of one stream in order.
//
// Next returns io.EOF when the sequence is complete and ctx.Err() when the
// context is cancelled while waiting for the next chunk. Once Next has
// returned an error the producer must not be called again.
//
// A Producer is owned by a single session and is not safe for concurrent use.
type Producer interface {
	Next(ctx context.Context) (Chunk, error)
}

// Options tune how producers are built. The zero value uses wall-clock
// pacing, time.Now and a randomly seeded source.
type Options struct {
	// Pacer performs the delay between chunks.
	Pacer Pacer

	// Now returns the timestamp stamped into log and metrics chunks.
	Now func() time.Time

	// Rand picks log messages and metric values.
	Rand *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.Pacer == nil {
		o.Pacer = RealTime
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return o
}

// New builds the producer for a validated request.
func New(req api.StreamRequest, opts Options) (Producer, error) {
	opts = opts.withDefaults()

	switch r := req.(type) {
	case *api.TextRequest:
		return newText(r, opts), nil
	case *api.AudioRequest:
		return newAudio(r, opts), nil
	case *api.VideoRequest:
		return newVideo(r, opts), nil
	case *api.DataRequest:
		return newData(r, opts)
	case *api.LogsRequest:
		return newLogs(r, opts), nil
	case *api.MetricsRequest:
		return newMetrics(r, opts), nil
	case *api.ChatRequest:
		return newChat(r, opts), nil
	case *api.TranscriptionRequest:
		return newTranscription(r, opts), nil
	case *api.TranslationRequest:
		return newTranslation(r, opts), nil
	case *api.AnalysisRequest:
		return newAnalysis(r, opts)
	}
	return nil, fmt.Errorf("producer: unsupported request type %T", req)
}

// unbounded marks a sequence with no natural end.
const unbounded = -1

// sequence is the shared engine behind every producer: n chunks built on
// demand by chunk(i), with delay applied between consecutive chunks. The
// first chunk is emitted without waiting.
type sequence struct {
	pacer Pacer
	delay time.Duration
	n     int
	i     int
	chunk func(i int) (Chunk, error)
}

// Next implements Producer.
func (s *sequence) Next(ctx context.Context) (Chunk, error) {
	if s.n != unbounded && s.i >= s.n {
		return Chunk{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return Chunk{}, err
	}
	if s.i > 0 && s.delay > 0 {
		if err := s.pacer.Wait(ctx, s.delay); err != nil {
			return Chunk{}, err
		}
	}
	c, err := s.chunk(s.i)
	if err != nil {
		return Chunk{}, err
	}
	s.i++
	return c, nil
}

// Collect drains p into a slice. It is meant for tests and small finite
// streams; on an unbounded producer it returns only when ctx is done.
func Collect(ctx context.Context, p Producer) ([]Chunk, error) {
	var chunks []Chunk
	for {
		c, err := p.Next(ctx)
		if err == io.EOF {
			return chunks, nil
		}
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, c)
	}
}

// fromStrings is a sequence over precomputed text chunks.
func fromStrings(parts []string, pacer Pacer, delay time.Duration) *sequence {
	return &sequence{
		pacer: pacer,
		delay: delay,
		n:     len(parts),
		chunk: func(i int) (Chunk, error) {
			return TextChunk(parts[i]), nil
		},
	}
}
