package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/apprentice/internal/quiz"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("quiz session not found")

type sessionEntry struct {
	poolID   string
	session  *quiz.Session
	lastUsed time.Time
}

// Registry holds active quiz sessions. Access to each session is serialised
// because quiz.Session is not safe for concurrent use.
type Registry struct {
	sessions map[string]*sessionEntry
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

// NewRegistry creates a registry that forgets sessions idle for longer than ttl.
// A non-positive ttl keeps sessions until they are removed.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create stores s and returns its new id.
func (r *Registry) Create(poolID string, s *quiz.Session) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	r.sessions[id] = &sessionEntry{poolID: poolID, session: s, lastUsed: r.now()}
	return id
}

// With runs fn with exclusive access to session id.
func (r *Registry) With(id string, fn func(poolID string, s *quiz.Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok || r.expired(e) {
		delete(r.sessions, id)
		return ErrSessionNotFound
	}
	e.lastUsed = r.now()
	return fn(e.poolID, e.session)
}

// Remove forgets session id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of stored sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.sessions {
		if r.expired(e) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Info("expired quiz sessions removed", "count", n)
			}
		}
	}
}

func (r *Registry) expired(e *sessionEntry) bool {
	return r.ttl > 0 && r.now().Sub(e.lastUsed) > r.ttl
}
