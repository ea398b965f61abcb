// Package api serves the JSON API and the server-rendered dashboard and
// logbook pages.
package api

import (
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/matchbook/matchbook/internal/auth"
	"github.com/matchbook/matchbook/internal/db"
	"github.com/matchbook/matchbook/internal/logbook"
	"github.com/matchbook/matchbook/internal/metrics"
)

// Options tunes a Server.
type Options struct {
	// RateLimitRPS of zero disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
	// Now overrides the clock used for relative filters and form defaults.
	Now func() time.Time
}

// Server holds all dependencies for the HTTP API.
type Server struct {
	store   db.Store
	auth    *auth.Auth
	logbook *logbook.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
	limiter *rateLimiter
	tmpls   map[string]*template.Template
	opts    Options
	mux     *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(store db.Store, authSvc *auth.Auth, m *metrics.Metrics, logger *zap.Logger, opts Options) (*Server, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	s := &Server{
		store:   store,
		auth:    authSvc,
		logbook: logbook.NewService(store, opts.Now),
		metrics: m,
		logger:  logger,
		opts:    opts,
		mux:     http.NewServeMux(),
	}
	if opts.RateLimitRPS > 0 {
		s.limiter = newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	}

	tmpls, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	s.tmpls = tmpls

	s.setupRoutes()
	return s, nil
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.loggingMiddleware(s.mux)
	if s.limiter != nil {
		h = rateLimitMiddleware(s.limiter)(h)
	}
	h = requestIDMiddleware(h)
	h = corsMiddleware(h)
	return securityHeadersMiddleware(h)
}

// Close stops background work started by NewServer.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.stop()
	}
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	authed := func(h http.HandlerFunc) http.Handler { return s.authMiddleware(h) }
	page := func(h http.HandlerFunc) http.Handler { return s.pageAuthMiddleware(h) }

	// Health and metrics
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	// Auth endpoints (no auth required)
	s.mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.mux.Handle("GET /api/v1/auth/me", authed(s.handleMe))

	// Matches
	s.mux.Handle("GET /api/v1/matches", authed(s.handleListMatches))
	s.mux.Handle("POST /api/v1/matches", authed(s.handleCreateMatch))
	s.mux.Handle("GET /api/v1/matches/{id}", authed(s.handleGetMatch))
	s.mux.Handle("DELETE /api/v1/matches/{id}", authed(s.handleDeleteMatch))
	s.mux.Handle("GET /api/v1/logbook", authed(s.handleLogbook))

	// Courses
	s.mux.Handle("GET /api/v1/courses", authed(s.handleListCourses))
	s.mux.Handle("GET /api/v1/courses/suggest", authed(s.handleSuggestCourses))

	// Dashboard
	s.mux.Handle("GET /api/v1/dashboard", authed(s.handleDashboard))
	s.mux.Handle("GET /api/v1/dashboard/chart", authed(s.handleDashboardChart))

	// Pages
	s.mux.HandleFunc("GET /login", s.handleLoginPage)
	s.mux.HandleFunc("POST /login", s.handleLoginSubmit)
	s.mux.HandleFunc("POST /register", s.handleRegisterSubmit)
	s.mux.HandleFunc("POST /logout", s.handleLogout)
	s.mux.Handle("GET /{$}", page(s.handleDashboardPage))
	s.mux.Handle("GET /logbook", page(s.handleLogbookPage))
	s.mux.Handle("POST /logbook", page(s.handleLogbookSubmit))
	s.mux.Handle("POST /logbook/{id}/delete", page(s.handleLogbookDelete))
	s.mux.Handle("GET /static/", staticHandler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
