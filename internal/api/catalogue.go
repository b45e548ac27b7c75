package api

import (
	"net/http"

	"github.com/p-n-ai/apprentice/internal/catalogue"
)

type templatesResponse struct {
	Templates []catalogue.CircuitTemplate `json:"templates"`
}

// handleTemplates serves GET /api/templates?category=&q=.
// An empty category means every category; an unknown one matches nothing.
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := catalogue.Category(q.Get("category"))

	records := catalogue.Query(s.content.Templates(), category, q.Get("q"))
	writeJSON(w, http.StatusOK, templatesResponse{Templates: records})
}
