package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rhuss/strom/pkg/api"
	"github.com/rhuss/strom/pkg/debug"
	"github.com/rhuss/strom/pkg/observability"
	"github.com/rhuss/strom/pkg/producer"
	"github.com/rhuss/strom/pkg/transport"
)

// Engine dispatches stream requests to chunk producers. It implements
// transport.StreamHandler.
type Engine struct {
	cfg      Config
	registry *transport.SessionRegistry

	// newProducer is replaced in tests.
	newProducer func(api.StreamRequest, producer.Options) (producer.Producer, error)
}

// Ensure Engine implements transport.StreamHandler at compile time.
var _ transport.StreamHandler = (*Engine)(nil)

// New creates a new Engine. A nil registry gets a private one.
func New(registry *transport.SessionRegistry, cfg Config) *Engine {
	if registry == nil {
		registry = transport.NewSessionRegistry()
	}
	return &Engine{
		cfg:         cfg,
		registry:    registry,
		newProducer: producer.New,
	}
}

// Registry returns the registry holding the engine's in-flight sessions.
func (e *Engine) Registry() *transport.SessionRegistry {
	return e.registry
}

// Stream runs one session: it selects the producer for req, registers the
// session, commits the response headers and writes chunks until the
// session ends. It returns nil when the producer was exhausted and a
// *StreamError otherwise. Errors returned before w is started are
// *api.APIError values.
func (e *Engine) Stream(ctx context.Context, req api.StreamRequest, w transport.ChunkWriter) error {
	p, err := e.newProducer(req, producer.Options{Pacer: e.cfg.Pacer})
	if err != nil {
		return api.NewServerError(fmt.Sprintf("no producer for %s stream", req.Kind()))
	}

	sess := &transport.Session{
		ID:        api.NewSessionID(),
		Kind:      req.Kind(),
		RequestID: transport.RequestIDFromContext(ctx),
		StartedAt: time.Now(),
	}

	sctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if e.cfg.MaxDuration > 0 {
		var stop context.CancelFunc
		sctx, stop = context.WithTimeoutCause(sctx, e.cfg.MaxDuration, ErrMaxDuration)
		defer stop()
	}

	e.registry.Register(sess, cancel)
	defer e.registry.Remove(sess.ID)

	kind := string(sess.Kind)
	observability.ActiveStreams.WithLabelValues(kind).Inc()
	defer observability.ActiveStreams.WithLabelValues(kind).Dec()

	debug.Log("dispatch", "session started",
		"session_id", sess.ID,
		"kind", kind,
		"request_id", sess.RequestID,
	)

	err = e.pump(sctx, sess, p, w)

	outcome := observability.OutcomeCompleted
	var serr *StreamError
	if errors.As(err, &serr) {
		outcome = serr.Result
	}
	observability.StreamsTotal.WithLabelValues(kind, outcome).Inc()
	observability.StreamDuration.WithLabelValues(kind).Observe(time.Since(sess.StartedAt).Seconds())

	debug.Log("dispatch", "session ended",
		"session_id", sess.ID,
		"outcome", outcome,
		"chunks", sess.Chunks(),
		"bytes", sess.Bytes(),
	)
	return err
}

// pump moves chunks from p to w. Cancellation is observed by the producer
// before each chunk, so nothing is written once ctx is done.
func (e *Engine) pump(ctx context.Context, sess *transport.Session, p producer.Producer, w transport.ChunkWriter) error {
	if err := w.Start(sess.ID); err != nil {
		return e.interrupted(ctx, sess, err)
	}

	kind := string(sess.Kind)
	chunks := observability.StreamChunksTotal.WithLabelValues(kind)
	bytes := observability.StreamBytesTotal.WithLabelValues(kind)

	for {
		c, err := p.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return e.interrupted(ctx, sess, err)
			}
			return &StreamError{
				SessionID: sess.ID,
				Result:    observability.OutcomeProducerError,
				Err:       fmt.Errorf("%w: %w", ErrProducer, err),
			}
		}

		if err := w.WriteChunk(c.Data); err != nil {
			return e.interrupted(ctx, sess, err)
		}

		sess.Record(len(c.Data))
		chunks.Inc()
		bytes.Add(float64(len(c.Data)))

		if debug.TraceIsEnabled("dispatch") {
			preview := "<binary>"
			if !c.Binary {
				preview = debug.Truncate(c.String(), 80)
			}
			debug.Trace("dispatch", "chunk written",
				"session_id", sess.ID,
				"seq", sess.Chunks(),
				"bytes", len(c.Data),
				"data", preview,
			)
		}
	}
}

// interrupted classifies a session that stopped early by the cause of its
// context. A write failure on a live context means the client is gone.
func (e *Engine) interrupted(ctx context.Context, sess *transport.Session, err error) *StreamError {
	serr := &StreamError{SessionID: sess.ID}
	cause := context.Cause(ctx)

	switch {
	case errors.Is(cause, transport.ErrSessionCancelled):
		serr.Result = observability.OutcomeCancelled
		serr.Err = cause
	case errors.Is(cause, ErrMaxDuration):
		serr.Result = observability.OutcomeMaxDuration
		serr.Err = cause
	default:
		serr.Result = observability.OutcomeClientDisconnect
		serr.Err = fmt.Errorf("%w: %w", ErrClientDisconnect, err)
	}
	return serr
}
