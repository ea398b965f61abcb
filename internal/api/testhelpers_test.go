package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matchbook/matchbook/internal/api"
	"github.com/matchbook/matchbook/internal/auth"
	"github.com/matchbook/matchbook/internal/db"
	"github.com/matchbook/matchbook/internal/metrics"
)

// fixedNow anchors relative logbook filters and form defaults.
var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store   *db.SQLite
	auth    *auth.Auth
	metrics *metrics.Metrics
	server  *api.Server
	handler http.Handler
}

// newTestEnv wires a server over a migrated in-memory SQLite store.
func newTestEnv(t *testing.T, opts api.Options) *testEnv {
	t.Helper()
	store, err := db.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(store.Close)
	_, err = store.Migrate(context.Background())
	require.NoError(t, err)

	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	a := auth.New("test-secret", time.Hour)
	m := metrics.New()
	srv, err := api.NewServer(store, a, m, nil, opts)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return &testEnv{store: store, auth: a, metrics: m, server: srv, handler: srv.Handler()}
}

// do sends a request through the full middleware chain.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// registerUser creates an account through the API and returns its token and id.
func (e *testEnv) registerUser(t *testing.T, email string) (token, userID string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "correct horse",
		"name":     "Player",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string  `json:"token"`
		User  db.User `json:"user"`
	}
	decodeJSON(t, rec, &resp)
	return resp.Token, resp.User.ID
}

// mustLogMatch posts a match and returns it.
func (e *testEnv) mustLogMatch(t *testing.T, token string, form map[string]string) db.Match {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/matches", token, form)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Match db.Match `json:"match"`
	}
	decodeJSON(t, rec, &resp)
	return resp.Match
}

// decodeJSON decodes the response body into v.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decodeJSON: %v (body: %s)", err, rec.Body.String())
	}
}

func matchForm(date, course, opponent, result, score string) map[string]string {
	return map[string]string{
		"date":        date,
		"course_name": course,
		"opponent":    opponent,
		"format":      db.FormatSingles,
		"result":      result,
		"score":       score,
	}
}
