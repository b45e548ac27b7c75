package api

import (
	"errors"
	"testing"
	"time"

	"github.com/p-n-ai/apprentice/internal/quiz"
)

func newSession(t *testing.T) *quiz.Session {
	t.Helper()
	s, err := quiz.NewSession([]quiz.Question{
		{ID: "q1", Prompt: "?", Options: []string{"a", "b"}},
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func TestRegistry_CreateAndWith(t *testing.T) {
	r := NewRegistry(0)
	a := r.Create("pool", newSession(t))
	b := r.Create("pool", newSession(t))
	if a == b {
		t.Fatal("ids must be unique")
	}

	var gotPool string
	err := r.With(a, func(poolID string, s *quiz.Session) error {
		gotPool = poolID
		return s.Select(1)
	})
	if err != nil {
		t.Fatalf("With() error = %v", err)
	}
	if gotPool != "pool" {
		t.Errorf("poolID = %q", gotPool)
	}

	if err := r.With("missing", func(string, *quiz.Session) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("With(missing) error = %v, want ErrSessionNotFound", err)
	}
}

func TestRegistry_ExpiresIdleSessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(time.Hour)
	r.now = func() time.Time { return now }

	stale := r.Create("pool", newSession(t))
	now = now.Add(30 * time.Minute)
	r.Create("pool", newSession(t))

	// Touching stale resets its idle timer.
	if err := r.With(stale, func(string, *quiz.Session) error { return nil }); err != nil {
		t.Fatalf("With(stale) error = %v", err)
	}

	now = now.Add(61 * time.Minute)
	if n := r.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after sweep", r.Len())
	}

	kept := r.Create("pool", newSession(t))
	now = now.Add(2 * time.Hour)
	if err := r.With(kept, func(string, *quiz.Session) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expired With() error = %v, want ErrSessionNotFound", err)
	}
}
