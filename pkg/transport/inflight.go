package transport

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rhuss/strom/pkg/api"
)

// ErrSessionCancelled is the cancellation cause for sessions stopped through
// the registry, either explicitly or during shutdown.
var ErrSessionCancelled = errors.New("session cancelled")

// Session is the registry entry for one in-flight stream.
type Session struct {
	ID        string
	Kind      api.Kind
	RequestID string
	StartedAt time.Time

	chunks atomic.Int64
	bytes  atomic.Int64
	cancel context.CancelCauseFunc
}

// Record counts one delivered chunk of n bytes.
func (s *Session) Record(n int) {
	s.chunks.Add(1)
	s.bytes.Add(int64(n))
}

// Chunks returns the number of chunks delivered so far.
func (s *Session) Chunks() int64 { return s.chunks.Load() }

// Bytes returns the number of payload bytes delivered so far.
func (s *Session) Bytes() int64 { return s.bytes.Load() }

// SessionInfo is the JSON view of an in-flight session.
type SessionInfo struct {
	ID        string    `json:"id"`
	Kind      api.Kind  `json:"kind"`
	RequestID string    `json:"request_id,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Chunks    int64     `json:"chunks"`
	Bytes     int64     `json:"bytes"`
}

// Info returns a snapshot of the session.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:        s.ID,
		Kind:      s.Kind,
		RequestID: s.RequestID,
		StartedAt: s.StartedAt,
		Chunks:    s.Chunks(),
		Bytes:     s.Bytes(),
	}
}

// SessionRegistry tracks in-flight stream sessions for listing and
// explicit cancellation. It maps session IDs to their cancel functions.
//
// All methods are safe for concurrent access.
type SessionRegistry struct {
	mu      sync.Mutex
	entries map[string]*Session
}

// NewSessionRegistry creates a new empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		entries: make(map[string]*Session),
	}
}

// Register adds an in-flight session. cancel is invoked with
// ErrSessionCancelled if the session is cancelled through the registry.
func (r *SessionRegistry) Register(s *Session, cancel context.CancelCauseFunc) {
	s.cancel = cancel
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[s.ID] = s
}

// Cancel cancels an in-flight session by calling its cancel function.
// Returns true if the session was found and cancelled, false if the ID
// was not registered (either already completed or never existed).
func (r *SessionRegistry) Cancel(id string) bool {
	r.mu.Lock()
	s, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	s.cancel(ErrSessionCancelled)
	return true
}

// CancelAll cancels every registered session and returns how many there were.
func (r *SessionRegistry) CancelAll() int {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.entries))
	for id, s := range r.entries {
		sessions = append(sessions, s)
		delete(r.entries, id)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.cancel(ErrSessionCancelled)
	}
	return len(sessions)
}

// Remove removes a session from the registry without cancelling it.
// Called when a stream ends on its own.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// List returns snapshots of all in-flight sessions, oldest first.
func (r *SessionRegistry) List() []SessionInfo {
	r.mu.Lock()
	infos := make([]SessionInfo, 0, len(r.entries))
	for _, s := range r.entries {
		infos = append(infos, s.Info())
	}
	r.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].StartedAt.Equal(infos[j].StartedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].StartedAt.Before(infos[j].StartedAt)
	})
	return infos
}

// Len returns the number of in-flight sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
