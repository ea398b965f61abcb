package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/matchbook/matchbook/internal/chart"
	"github.com/matchbook/matchbook/internal/db"
	"github.com/matchbook/matchbook/internal/stats"
)

// buildDashboard loads the user's history oldest first and aggregates it for
// the year filter.
func (s *Server) buildDashboard(r *http.Request, userID, year string) (stats.Dashboard, error) {
	matches, err := s.store.ListMatches(r.Context(), userID, db.OldestFirst)
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.Build(matches, year), nil
}

func yearFromQuery(r *http.Request) (string, error) {
	year := r.URL.Query().Get("year")
	if !stats.ValidYearFilter(year) {
		return "", fmt.Errorf("invalid year %q", year)
	}
	return year, nil
}

// handleDashboard returns the stat cards and monthly histogram.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	year, err := yearFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dash, err := s.buildDashboard(r, claims.UserID, year)
	if err != nil {
		s.writeInternalError(w, r, "failed to build dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// handleDashboardChart renders the monthly histogram as an image.
func (s *Server) handleDashboardChart(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	year, err := yearFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	format, err := chart.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dash, err := s.buildDashboard(r, claims.UserID, year)
	if err != nil {
		s.writeInternalError(w, r, "failed to build dashboard", err)
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, dash.Monthly, "Performance "+dash.Filter, format); err != nil {
		s.writeInternalError(w, r, "failed to render chart", err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
