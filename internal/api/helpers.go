package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/matchbook/matchbook/internal/db"
	"github.com/matchbook/matchbook/internal/logbook"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeInternalError logs err and writes a generic 500.
func (s *Server) writeInternalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	s.logger.Error(message,
		zap.String("request_id", requestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, message)
}

// writeStoreError maps store and validation errors onto status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var verr *logbook.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, db.ErrDuplicate):
		writeError(w, http.StatusConflict, "already exists")
	default:
		s.writeInternalError(w, r, message, err)
	}
}

// decodeJSON decodes a JSON request body.
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v)
}
