package api_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchbook/matchbook/internal/api"
	"github.com/matchbook/matchbook/internal/db"
)

// page sends a browser-style request carrying the session cookie.
func (e *testEnv) page(t *testing.T, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: api.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == api.SessionCookie {
			return c
		}
	}
	return nil
}

func TestPagesRedirectToLogin(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	for _, path := range []string{"/", "/logbook"} {
		rec := e.page(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestLoginPageFlow(t *testing.T) {
	e := newTestEnv(t, api.Options{})

	rec := e.page(t, http.MethodGet, "/login", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/login"`)

	rec = e.page(t, http.MethodGet, "/login?mode=register", "", nil)
	assert.Contains(t, rec.Body.String(), `action="/register"`)

	rec = e.page(t, http.MethodPost, "/register", "", url.Values{
		"name":     {"Player"},
		"email":    {"p@example.com"},
		"password": {"correct horse"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	rec = e.page(t, http.MethodPost, "/register", "", url.Values{
		"name":     {"Player"},
		"email":    {"p@example.com"},
		"password": {"correct horse"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered")

	rec = e.page(t, http.MethodPost, "/login", "", url.Values{"email": {"p@example.com"}, "password": {"nope nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password.")

	rec = e.page(t, http.MethodPost, "/login", "", url.Values{"email": {"p@example.com"}, "password": {"correct horse"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	require.NotNil(t, sessionCookie(rec))

	rec = e.page(t, http.MethodGet, "/login", cookie.Value, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code, "signed-in players skip the login page")

	rec = e.page(t, http.MethodPost, "/logout", cookie.Value, url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, -1, sessionCookie(rec).MaxAge)
}

func TestDashboardPage(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, _ := e.registerUser(t, "p@example.com")
	e.mustLogMatch(t, token, matchForm("2023-05-01", "Clovelly", "Jo", db.ResultLoss, "2 & 1"))
	e.mustLogMatch(t, token, matchForm("2024-04-10", "Erinvale", "Sam", db.ResultWin, "4 & 3"))

	rec := e.page(t, http.MethodGet, "/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "1-1-0")
	assert.Contains(t, body, "Erinvale")
	assert.Contains(t, body, "4 &amp; 3")
	assert.Contains(t, body, `<option value="2023"`)
	assert.Contains(t, body, `src="/api/v1/dashboard/chart?format=svg`)
	assert.Contains(t, body, `<span class="sub">Most Wins</span>`)
	assert.Contains(t, body, `<span class="sub">Current Streak</span>`)
	assert.Contains(t, body, `<span class="sub">All Time</span>`)

	rec = e.page(t, http.MethodGet, "/?year=2023", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "0-1-0")
	assert.Contains(t, rec.Body.String(), `<option value="2023" selected>`)
	assert.Contains(t, rec.Body.String(), `<span class="sub">2023</span>`, "best win caption follows the year")
}

func TestLogbookPage(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, _ := e.registerUser(t, "p@example.com")

	rec := e.page(t, http.MethodGet, "/logbook", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No matches found.")

	e.mustLogMatch(t, token, matchForm("2024-06-10", "Erinvale", "Sam", db.ResultWin, "3 & 2"))
	e.mustLogMatch(t, token, matchForm("2024-05-02", "Clovelly", "Jo", db.ResultLoss, ""))

	rec = e.page(t, http.MethodGet, "/logbook", token, nil)
	body := rec.Body.String()
	assert.Contains(t, body, "June 2024")
	assert.Contains(t, body, "May 2024")
	assert.Contains(t, body, "10 June 2024")
	assert.Contains(t, body, `class="score loss">-<`)
	assert.Contains(t, body, "vs Sam • Singles")
	assert.NotContains(t, body, `<datalist`)

	rec = e.page(t, http.MethodGet, "/logbook?result=Loss", token, nil)
	body = rec.Body.String()
	assert.NotContains(t, body, "June 2024")
	assert.Contains(t, body, "Clear")

	rec = e.page(t, http.MethodGet, "/logbook?new=true", token, nil)
	body = rec.Body.String()
	assert.Contains(t, body, `<datalist id="course-options">`)
	assert.Contains(t, body, `<option value="Erinvale">`)
	assert.Contains(t, body, `value="2024-06-15"`)
}

func TestLogbookPageSubmit(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, userID := e.registerUser(t, "p@example.com")

	rec := e.page(t, http.MethodPost, "/logbook", token, url.Values{
		"date":        {"2024-06-01"},
		"course_name": {"Erinvale"},
		"opponent":    {""},
		"format":      {db.FormatBetterball},
		"result":      {db.ResultHalf},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "please fill in course and opponent")
	assert.Contains(t, rec.Body.String(), `value="Erinvale"`, "form keeps the player's input")

	rec = e.page(t, http.MethodPost, "/logbook", token, url.Values{
		"date":        {"2024-06-01"},
		"course_name": {"Erinvale"},
		"opponent":    {"Sam"},
		"format":      {db.FormatBetterball},
		"result":      {db.ResultHalf},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/logbook", rec.Header().Get("Location"))

	matches, err := e.store.ListMatches(t.Context(), userID, db.NewestFirst)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, db.FormatBetterball, matches[0].Format)

	rec = e.page(t, http.MethodPost, "/logbook/"+matches[0].ID+"/delete", token, url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	count, err := e.store.CountMatches(t.Context(), userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStaticAssets(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	rec := e.page(t, http.MethodGet, "/static/style.css", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}
