package api

import (
	"net/http"
	"strconv"

	"github.com/p-n-ai/apprentice/internal/progress"
)

type overallResponse struct {
	progress.OverallProgress
	LastQuizResult *progress.QuizResult `json:"lastQuizResult,omitempty"`
}

type itemResponse struct {
	ID         string `json:"id"`
	Read       bool   `json:"read"`
	Bookmarked bool   `json:"bookmarked"`
}

type bookmarksResponse struct {
	Bookmarks []string `json:"bookmarks"`
}

type checklistResponse struct {
	ID      string `json:"id"`
	Checked []int  `json:"checked"`
}

type checklistToggleResponse struct {
	ID      string `json:"id"`
	Index   int    `json:"index"`
	Checked bool   `json:"checked"`
}

type quizResultResponse struct {
	Result *progress.QuizResult `json:"result"`
}

func (s *Server) handleOverallProgress(w http.ResponseWriter, r *http.Request) {
	resp := overallResponse{OverallProgress: s.progress.OverallProgress(s.content.TotalItems())}
	if res, ok := s.progress.LastQuizResult(); ok {
		resp.LastQuizResult = &res
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSectionProgress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	section, ok := s.content.Section(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown section "+id)
		return
	}
	writeJSON(w, http.StatusOK, s.progress.SectionProgress(section.Items))
}

func (s *Server) itemState(id string) itemResponse {
	return itemResponse{
		ID:         id,
		Read:       s.progress.IsRead(id),
		Bookmarked: s.progress.IsBookmarked(id),
	}
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.itemState(r.PathValue("id")))
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.progress.MarkRead(id)
	writeJSON(w, http.StatusOK, s.itemState(id))
}

func (s *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bookmarksResponse{Bookmarks: s.progress.Bookmarks()})
}

func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	resp := s.itemState(id)
	resp.Bookmarked = s.progress.ToggleBookmark(id)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChecklist(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	writeJSON(w, http.StatusOK, checklistResponse{ID: id, Checked: s.progress.ChecklistItems(id)})
}

func (s *Server) handleToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	checked, err := s.progress.ToggleChecklistItem(id, index)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, checklistToggleResponse{ID: id, Index: index, Checked: checked})
}

func (s *Server) handleQuizResult(w http.ResponseWriter, r *http.Request) {
	var resp quizResultResponse
	if res, ok := s.progress.LastQuizResult(); ok {
		resp.Result = &res
	}
	writeJSON(w, http.StatusOK, resp)
}
