package api

import (
	"net/http"

	"github.com/matchbook/matchbook/internal/logbook"
)

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.store.ListCourses(r.Context())
	if err != nil {
		s.writeInternalError(w, r, "failed to list courses", err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) handleSuggestCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.store.ListCourses(r.Context())
	if err != nil {
		s.writeInternalError(w, r, "failed to list courses", err)
		return
	}
	writeJSON(w, http.StatusOK, logbook.Suggest(courses, r.URL.Query().Get("q")))
}
