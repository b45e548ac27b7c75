package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/p-n-ai/apprentice/internal/quiz"
)

const maxBodyBytes = 1 << 10

type poolSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Questions int    `json:"questions"`
}

type quizzesResponse struct {
	Quizzes []poolSummary `json:"quizzes"`
}

type sessionResponse struct {
	ID      string        `json:"id"`
	Pool    string        `json:"pool"`
	Session quiz.Snapshot `json:"session"`
	Correct *bool         `json:"correct,omitempty"`
}

type selectRequest struct {
	Option *int `json:"option"`
}

func (s *Server) handleQuizzes(w http.ResponseWriter, r *http.Request) {
	pools := s.content.Pools()
	resp := quizzesResponse{Quizzes: make([]poolSummary, 0, len(pools))}
	for _, p := range pools {
		resp.Quizzes = append(resp.Quizzes, poolSummary{ID: p.ID, Title: p.Title, Questions: len(p.Questions)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("pool")
	pool, ok := s.content.Pool(poolID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown quiz "+poolID)
		return
	}

	session, err := quiz.NewSession(pool.Questions,
		quiz.WithSampleSize(s.sampleSize),
		quiz.WithRecorder(s.progress),
	)
	if err != nil {
		writeQuizError(w, err)
		return
	}

	id := s.sessions.Create(poolID, session)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Pool: poolID, Session: session.Snapshot()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(*quiz.Session) (*bool, error) { return nil, nil })
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Remove(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Option == nil {
		writeError(w, http.StatusBadRequest, `body must be {"option": <index>}`)
		return
	}
	s.withSession(w, r, func(qs *quiz.Session) (*bool, error) {
		return nil, qs.Select(*req.Option)
	})
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(qs *quiz.Session) (*bool, error) {
		correct, err := qs.Reveal()
		if err != nil {
			return nil, err
		}
		return &correct, nil
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(qs *quiz.Session) (*bool, error) {
		return nil, qs.Advance()
	})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(qs *quiz.Session) (*bool, error) {
		return nil, qs.Retry()
	})
}

// withSession applies fn to the session named in the path and writes its snapshot.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*quiz.Session) (*bool, error)) {
	id := r.PathValue("id")
	var resp sessionResponse
	err := s.sessions.With(id, func(poolID string, qs *quiz.Session) error {
		correct, err := fn(qs)
		if err != nil {
			return err
		}
		resp = sessionResponse{ID: id, Pool: poolID, Session: qs.Snapshot(), Correct: correct}
		return nil
	})
	if err != nil {
		writeQuizError(w, fmt.Errorf("session %s: %w", id, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
