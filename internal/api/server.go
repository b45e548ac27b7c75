// Package api exposes the catalogue, quizzes and learner progress over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-n-ai/apprentice/internal/catalogue"
	"github.com/p-n-ai/apprentice/internal/content"
	"github.com/p-n-ai/apprentice/internal/kv"
	"github.com/p-n-ai/apprentice/internal/progress"
	"github.com/p-n-ai/apprentice/internal/quiz"
)

const readyTimeout = 2 * time.Second

// Content is the read-only course dataset served by the API.
type Content interface {
	Templates() []catalogue.CircuitTemplate
	Pool(id string) (quiz.Pool, bool)
	Pools() []quiz.Pool
	Section(id string) (content.Section, bool)
	TotalItems() int
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	content    Content
	progress   *progress.Store
	sessions   *Registry
	hub        *Hub
	checks     []kv.HealthChecker
	sampleSize int
}

// Option configures a Server.
type Option func(*Server)

// WithSampleSize sets how many questions a new quiz session draws.
func WithSampleSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.sampleSize = n
		}
	}
}

// WithHub serves progress events on /ws/progress.
func WithHub(h *Hub) Option {
	return func(s *Server) { s.hub = h }
}

// WithHealthCheck adds a dependency checked by /readyz.
func WithHealthCheck(c kv.HealthChecker) Option {
	return func(s *Server) { s.checks = append(s.checks, c) }
}

// WithRegistry replaces the default session registry.
func WithRegistry(r *Registry) Option {
	return func(s *Server) { s.sessions = r }
}

// NewServer wires handlers to the dataset and progress store.
func NewServer(c Content, p *progress.Store, opts ...Option) *Server {
	s := &Server{
		content:    c,
		progress:   p,
		sessions:   NewRegistry(0),
		sampleSize: quiz.DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/templates", s.handleTemplates)

	mux.HandleFunc("GET /api/progress/overall", s.handleOverallProgress)
	mux.HandleFunc("GET /api/sections/{id}/progress", s.handleSectionProgress)
	mux.HandleFunc("GET /api/items/{id}", s.handleItem)
	mux.HandleFunc("POST /api/items/{id}/read", s.handleMarkRead)
	mux.HandleFunc("GET /api/bookmarks", s.handleBookmarks)
	mux.HandleFunc("POST /api/bookmarks/{id}/toggle", s.handleToggleBookmark)
	mux.HandleFunc("GET /api/checklists/{id}", s.handleChecklist)
	mux.HandleFunc("POST /api/checklists/{id}/items/{index}/toggle", s.handleToggleChecklistItem)
	mux.HandleFunc("GET /api/quiz-result", s.handleQuizResult)

	mux.HandleFunc("GET /api/quizzes", s.handleQuizzes)
	mux.HandleFunc("POST /api/quizzes/{pool}/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/select", s.handleSelect)
	mux.HandleFunc("POST /api/sessions/{id}/reveal", s.handleReveal)
	mux.HandleFunc("POST /api/sessions/{id}/advance", s.handleAdvance)
	mux.HandleFunc("POST /api/sessions/{id}/retry", s.handleRetry)

	if s.hub != nil {
		mux.Handle("GET /ws/progress", s.hub)
	}
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	for _, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			slog.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeQuizError maps quiz and registry errors to status codes.
func writeQuizError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, quiz.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, quiz.ErrInvalidStateTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, quiz.ErrEmptyPool):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("quiz request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
