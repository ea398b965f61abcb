package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchbook/matchbook/internal/api"
	"github.com/matchbook/matchbook/internal/db"
	"github.com/matchbook/matchbook/internal/stats"
)

func TestHealth(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	rec := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t, api.Options{})

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing name", map[string]string{"email": "a@example.com", "password": "correct horse"}, http.StatusBadRequest},
		{"short password", map[string]string{"email": "a@example.com", "password": "short", "name": "A"}, http.StatusBadRequest},
		{"ok", map[string]string{"email": "a@example.com", "password": "correct horse", "name": "A"}, http.StatusCreated},
		{"duplicate ignoring case", map[string]string{"email": "A@Example.com", "password": "correct horse", "name": "A"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	_, userID := e.registerUser(t, "p@example.com")

	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "p@example.com", "password": "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "correct horse"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": " P@example.com ", "password": "correct horse"})
	require.Equal(t, http.StatusOK, rec.Code)
	var sess struct {
		Token string `json:"token"`
	}
	decodeJSON(t, rec, &sess)
	require.NotEmpty(t, sess.Token)

	e.mustLogMatch(t, sess.Token, matchForm("2024-06-01", "Erinvale", "Sam", db.ResultWin, "3 & 2"))

	rec = e.do(t, http.MethodGet, "/api/v1/auth/me", sess.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		MatchCount int64  `json:"match_count"`
	}
	decodeJSON(t, rec, &me)
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "p@example.com", me.Email)
	assert.Equal(t, int64(1), me.MatchCount)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t, api.Options{})

	rec := e.do(t, http.MethodGet, "/api/v1/matches", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/matches", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionCookieAuthenticatesAPI(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, _ := e.registerUser(t, "p@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
	req.AddCookie(&http.Cookie{Name: api.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestCreateMatch(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, userID := e.registerUser(t, "p@example.com")

	rec := e.do(t, http.MethodPost, "/api/v1/matches", token, map[string]string{"course_name": "Erinvale", "opponent": "Sam"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first struct {
		Match         db.Match `json:"match"`
		CourseCreated bool     `json:"course_created"`
	}
	decodeJSON(t, rec, &first)
	assert.True(t, first.CourseCreated)
	assert.Equal(t, "2024-06-15", first.Match.Date)
	assert.Equal(t, db.FormatSingles, first.Match.Format)
	assert.Equal(t, db.ResultWin, first.Match.Result)
	assert.Equal(t, userID, first.Match.UserID)

	rec = e.do(t, http.MethodPost, "/api/v1/matches", token, matchForm("2024-06-10", "erinvale", "Jo", db.ResultLoss, ""))
	require.Equal(t, http.StatusCreated, rec.Code)
	var second struct {
		Match         db.Match `json:"match"`
		CourseCreated bool     `json:"course_created"`
	}
	decodeJSON(t, rec, &second)
	assert.False(t, second.CourseCreated)
	assert.Equal(t, first.Match.CourseID, second.Match.CourseID)

	courses, err := e.store.ListCourses(t.Context())
	require.NoError(t, err)
	assert.Len(t, courses, 1)

	rec = e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `matchbook_matches_logged_total{result="Win"} 1`)
	assert.Contains(t, rec.Body.String(), `matchbook_matches_logged_total{result="Loss"} 1`)
	assert.Contains(t, rec.Body.String(), "matchbook_courses_created_total 1")
}

func TestCreateMatchValidation(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, _ := e.registerUser(t, "p@example.com")

	tests := []struct {
		name string
		form map[string]string
		want string
	}{
		{"missing course", matchForm("2024-06-01", "  ", "Sam", db.ResultWin, ""), "please fill in course and opponent"},
		{"missing opponent", matchForm("2024-06-01", "Erinvale", "", db.ResultWin, ""), "please fill in course and opponent"},
		{"bad result", matchForm("2024-06-01", "Erinvale", "Sam", "Draw", ""), "result must be one of"},
		{"bad date", matchForm("01/06/2024", "Erinvale", "Sam", db.ResultWin, ""), "date must be YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/api/v1/matches", token, tt.form)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp map[string]string
			decodeJSON(t, rec, &resp)
			assert.Contains(t, resp["error"], tt.want)
		})
	}

	courses, err := e.store.ListCourses(t.Context())
	require.NoError(t, err)
	assert.Empty(t, courses, "failed saves must not create courses")
}

func TestListMatchesFilters(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, _ := e.registerUser(t, "p@example.com")

	e.mustLogMatch(t, token, matchForm("2024-06-10", "Erinvale", "Sam", db.ResultWin, "3 & 2"))
	e.mustLogMatch(t, token, matchForm("2024-03-02", "Clovelly", "Jo", db.ResultLoss, "1 up"))
	e.mustLogMatch(t, token, matchForm("2023-11-20", "Erinvale", "Ann", db.ResultHalf, ""))

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"2024-06-10", "2024-03-02", "2023-11-20"}},
		{"?period=Last+30+Days", []string{"2024-06-10"}},
		{"?period=This+Year", []string{"2024-06-10", "2024-03-02"}},
		{"?period=Last+Year", []string{"2023-11-20"}},
		{"?result=Loss", []string{"2024-03-02"}},
		{"?course=Erinvale&result=Half", []string{"2023-11-20"}},
		{"?course=Nowhere", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := e.do(t, http.MethodGet, "/api/v1/matches"+tt.query, token, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var matches []db.Match
			decodeJSON(t, rec, &matches)
			dates := []string{}
			for _, m := range matches {
				dates = append(dates, m.Date)
			}
			assert.Equal(t, tt.want, dates)
		})
	}

	rec := e.do(t, http.MethodGet, "/api/v1/matches?period=Tomorrow", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogbook(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, _ := e.registerUser(t, "p@example.com")

	e.mustLogMatch(t, token, matchForm("2024-06-10", "Erinvale", "Sam", db.ResultWin, "3 & 2"))
	e.mustLogMatch(t, token, matchForm("2024-06-02", "Clovelly", "Jo", db.ResultLoss, "1 up"))
	e.mustLogMatch(t, token, matchForm("2024-04-20", "Erinvale", "Ann", db.ResultHalf, ""))

	rec := e.do(t, http.MethodGet, "/api/v1/logbook?result=Win", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Active bool `json:"active"`
		Total  int  `json:"total"`
		Groups []struct {
			Title string     `json:"title"`
			Items []db.Match `json:"items"`
		} `json:"groups"`
		Courses []string `json:"courses"`
	}
	decodeJSON(t, rec, &resp)
	assert.True(t, resp.Active)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, "June 2024", resp.Groups[0].Title)
	assert.Equal(t, []string{"Clovelly", "Erinvale"}, resp.Courses)

	rec = e.do(t, http.MethodGet, "/api/v1/logbook", token, nil)
	decodeJSON(t, rec, &resp)
	assert.False(t, resp.Active)
	require.Len(t, resp.Groups, 2)
	assert.Len(t, resp.Groups[0].Items, 2)
	assert.Equal(t, "April 2024", resp.Groups[1].Title)
}

func TestGetAndDeleteMatch(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, _ := e.registerUser(t, "p@example.com")
	other, _ := e.registerUser(t, "q@example.com")

	m := e.mustLogMatch(t, token, matchForm("2024-06-10", "Erinvale", "Sam", db.ResultWin, "3 & 2"))

	rec := e.do(t, http.MethodGet, "/api/v1/matches/"+m.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got db.Match
	decodeJSON(t, rec, &got)
	assert.Equal(t, "Erinvale", got.CourseName)

	rec = e.do(t, http.MethodGet, "/api/v1/matches/"+m.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "matches are private to their player")

	rec = e.do(t, http.MethodGet, "/api/v1/matches/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/v1/matches/"+m.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/v1/matches/"+m.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/v1/matches/"+m.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourses(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, _ := e.registerUser(t, "p@example.com")

	rec := e.do(t, http.MethodGet, "/api/v1/courses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	e.mustLogMatch(t, token, matchForm("2024-06-10", "Royal Cape", "Sam", db.ResultWin, ""))
	e.mustLogMatch(t, token, matchForm("2024-06-11", "Erinvale", "Sam", db.ResultWin, ""))
	e.mustLogMatch(t, token, matchForm("2024-06-12", "Cape Town GC", "Sam", db.ResultWin, ""))

	rec = e.do(t, http.MethodGet, "/api/v1/courses", token, nil)
	var courses []db.Course
	decodeJSON(t, rec, &courses)
	assert.Len(t, courses, 3)

	tests := []struct {
		q    string
		want []string
	}{
		{"c", []string{}},
		{"CAPE", []string{"Cape Town GC", "Royal Cape"}},
		{"vale", []string{"Erinvale"}},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			rec := e.do(t, http.MethodGet, "/api/v1/courses/suggest?q="+tt.q, token, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var got []db.Course
			decodeJSON(t, rec, &got)
			names := []string{}
			for _, c := range got {
				names = append(names, c.Name)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestDashboard(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, _ := e.registerUser(t, "p@example.com")

	e.mustLogMatch(t, token, matchForm("2023-04-02", "Clovelly", "Jo", db.ResultLoss, "2 & 1"))
	e.mustLogMatch(t, token, matchForm("2024-04-10", "Erinvale", "Sam", db.ResultWin, "3 & 2"))
	e.mustLogMatch(t, token, matchForm("2024-05-01", "Erinvale", "Ann", db.ResultWin, "5 & 4"))
	e.mustLogMatch(t, token, matchForm("2024-06-01", "Clovelly", "Ann", db.ResultHalf, ""))

	rec := e.do(t, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash stats.Dashboard
	decodeJSON(t, rec, &dash)
	assert.Equal(t, stats.AllTime, dash.Filter)
	assert.Equal(t, []int{2024, 2023}, dash.Years)
	assert.Equal(t, "2-1-1", dash.Summary.Record)
	assert.Equal(t, 3, dash.Summary.UnbeatenStreak)
	assert.Equal(t, "Erinvale", dash.Summary.FavoriteCourse)
	assert.Equal(t, "3 & 2", dash.Summary.BestWin, "earliest win, not the loss or the bigger margin")
	require.Len(t, dash.Monthly, 12)
	assert.Equal(t, stats.Month{Name: "Apr", Win: 1, Loss: 1}, dash.Monthly[3])

	rec = e.do(t, http.MethodGet, "/api/v1/dashboard?year=2023", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &dash)
	assert.Equal(t, "0-1-0", dash.Summary.Record)
	assert.Equal(t, []int{2024, 2023}, dash.Years)

	rec = e.do(t, http.MethodGet, "/api/v1/dashboard?year=last", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardEmpty(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, _ := e.registerUser(t, "p@example.com")

	rec := e.do(t, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash stats.Dashboard
	decodeJSON(t, rec, &dash)
	assert.Equal(t, []int{}, dash.Years)
	assert.Equal(t, "0-0-0", dash.Summary.Record)
	assert.Equal(t, stats.None, dash.Summary.FavoriteCourse)
}

func TestDashboardChart(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	token, _ := e.registerUser(t, "p@example.com")
	e.mustLogMatch(t, token, matchForm("2024-04-10", "Erinvale", "Sam", db.ResultWin, "3 & 2"))

	rec := e.do(t, http.MethodGet, "/api/v1/dashboard/chart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = e.do(t, http.MethodGet, "/api/v1/dashboard/chart?format=png&year=2024", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = e.do(t, http.MethodGet, "/api/v1/dashboard/chart?format=gif", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	e := newTestEnv(t, api.Options{RateLimitRPS: 0.001, RateLimitBurst: 2})

	for i := 0; i < 2; i++ {
		rec := e.do(t, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t, api.Options{})
	rec := e.do(t, http.MethodOptions, "/api/v1/matches", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
