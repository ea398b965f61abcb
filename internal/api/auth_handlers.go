package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/matchbook/matchbook/internal/auth"
	"github.com/matchbook/matchbook/internal/db"
)

// registerRequest represents the registration payload.
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// loginRequest represents the login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is returned by register and login.
type sessionResponse struct {
	User      *db.User  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// meResponse is the current user plus their match count.
type meResponse struct {
	*db.User
	MatchCount int64 `json:"match_count"`
}

var errInvalidCredentials = errors.New("invalid credentials")

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// register creates an account and signs a session for it.
func (s *Server) register(ctx context.Context, req registerRequest) (*sessionResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, badRequest("email, password, and name are required")
	}

	hash, err := s.auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrWeakPassword) {
		return nil, badRequest(err.Error())
	}
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, req.Email, hash, req.Name)
	if err != nil {
		return nil, err
	}
	return s.issueSession(user)
}

// login checks credentials and signs a session.
func (s *Server) login(ctx context.Context, req loginRequest) (*sessionResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, badRequest("email and password are required")
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, db.ErrNotFound) {
		// Don't reveal whether the email exists
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.auth.CheckPassword(req.Password, user.PasswordHash); err != nil {
		return nil, errInvalidCredentials
	}
	return s.issueSession(user)
}

func (s *Server) issueSession(user *db.User) (*sessionResponse, error) {
	token, expires, err := s.auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &sessionResponse{User: user, Token: token, ExpiresAt: expires}, nil
}

// badRequestError carries a message safe to show the caller.
type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return &badRequestError{msg: msg} }

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.register(r.Context(), req)
	var bad *badRequestError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, sess)
	case errors.As(err, &bad):
		writeError(w, http.StatusBadRequest, bad.msg)
	case errors.Is(err, db.ErrDuplicate):
		writeError(w, http.StatusConflict, "email already registered")
	default:
		s.writeInternalError(w, r, "failed to create user", err)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.login(r.Context(), req)
	var bad *badRequestError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sess)
	case errors.As(err, &bad):
		writeError(w, http.StatusBadRequest, bad.msg)
	case errors.Is(err, errInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		s.writeInternalError(w, r, "failed to log in", err)
	}
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	if err != nil {
		s.writeInternalError(w, r, "failed to get user", err)
		return
	}

	count, err := s.store.CountMatches(r.Context(), user.ID)
	if err != nil {
		s.writeInternalError(w, r, "failed to count matches", err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: user, MatchCount: count})
}

// setSessionCookie stores the session token for browser requests.
func (s *Server) setSessionCookie(w http.ResponseWriter, sess *sessionResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
