package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/matchbook/matchbook/internal/db"
	"github.com/matchbook/matchbook/internal/logbook"
)

// logbookResponse is the grouped logbook view.
type logbookResponse struct {
	Filter  logbook.Filter  `json:"filter"`
	Active  bool            `json:"active"`
	Total   int             `json:"total"`
	Groups  []logbook.Group `json:"groups"`
	Courses []string        `json:"courses"`
}

func filterFromQuery(r *http.Request) (logbook.Filter, error) {
	q := r.URL.Query()
	return logbook.ParseFilter(q.Get("period"), q.Get("result"), q.Get("course"))
}

// loadLogbook fetches the user's matches newest first and applies f.
// It returns the filtered list and the course options from the full history.
func (s *Server) loadLogbook(r *http.Request, userID string, f logbook.Filter) ([]db.Match, []string, error) {
	all, err := s.store.ListMatches(r.Context(), userID, db.NewestFirst)
	if err != nil {
		return nil, nil, err
	}
	return logbook.Apply(all, f, s.opts.Now()), logbook.UniqueCourses(all), nil
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, _, err := s.loadLogbook(r, claims.UserID, f)
	if err != nil {
		s.writeInternalError(w, r, "failed to list matches", err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleLogbook(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, courses, err := s.loadLogbook(r, claims.UserID, f)
	if err != nil {
		s.writeInternalError(w, r, "failed to load logbook", err)
		return
	}
	writeJSON(w, http.StatusOK, logbookResponse{
		Filter:  f,
		Active:  f.Active(),
		Total:   len(matches),
		Groups:  logbook.GroupByMonth(matches),
		Courses: courses,
	})
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())

	var form logbook.Form
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	logged, err := s.logMatch(r, claims.UserID, form)
	if err != nil {
		s.writeStoreError(w, r, "failed to save match", err)
		return
	}
	writeJSON(w, http.StatusCreated, logged)
}

// logMatch runs the write path and records its metrics.
func (s *Server) logMatch(r *http.Request, userID string, form logbook.Form) (*logbook.Logged, error) {
	logged, err := s.logbook.LogMatch(r.Context(), userID, form)
	if err != nil {
		return nil, err
	}
	s.metrics.MatchLogged(logged.Match.Result, logged.CourseCreated)
	return logged, nil
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	id := r.PathValue("id")
	if uuid.Validate(id) != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	m, err := s.store.GetMatch(r.Context(), claims.UserID, id)
	if err != nil {
		s.writeStoreError(w, r, "failed to get match", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	id := r.PathValue("id")
	if uuid.Validate(id) != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.store.DeleteMatch(r.Context(), claims.UserID, id); err != nil {
		s.writeStoreError(w, r, "failed to delete match", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
