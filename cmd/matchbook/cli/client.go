package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matchbook/matchbook/internal/db"
	"github.com/matchbook/matchbook/internal/logbook"
	"github.com/matchbook/matchbook/internal/stats"
)

// APIClient handles HTTP communication with the Matchbook server.
type APIClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (%d)", e.StatusCode)
}

// NewClient creates a new APIClient from stored credentials.
func NewClient() (*APIClient, error) {
	tokenData, err := LoadToken()
	if err != nil {
		return nil, err
	}
	c := NewClientWithURL(tokenData.Server)
	c.Token = tokenData.Token
	return c, nil
}

// NewClientWithURL creates a new APIClient with an explicit server URL (for login).
func NewClientWithURL(serverURL string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(serverURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// send performs the request and returns the raw body of a 2xx response.
func (c *APIClient) send(method, path string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	endpoint := c.BaseURL + path
	req, err := http.NewRequest(method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// Try to parse structured error
		_ = json.Unmarshal(respBody, apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}
	return respBody, nil
}

func (c *APIClient) do(method, path string, body interface{}, result interface{}) error {
	respBody, err := c.send(method, path, body)
	if err != nil {
		return err
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// Session is the response to login and register.
type Session struct {
	User  db.User `json:"user"`
	Token string  `json:"token"`
}

// Login authenticates with email/password and returns the session.
func (c *APIClient) Login(email, password string) (*Session, error) {
	var resp Session
	err := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("server returned empty token")
	}
	return &resp, nil
}

// Register creates an account and returns its session.
func (c *APIClient) Register(email, password, name string) (*Session, error) {
	var resp Session
	err := c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("server returned empty token")
	}
	return &resp, nil
}

// Profile is the signed-in player with their match count.
type Profile struct {
	db.User
	MatchCount int64 `json:"match_count"`
}

// Me returns the signed-in player.
func (c *APIClient) Me() (*Profile, error) {
	var resp Profile
	if err := c.do(http.MethodGet, "/api/v1/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func filterQuery(f logbook.Filter) string {
	q := url.Values{}
	if f.Period != "" {
		q.Set("period", f.Period)
	}
	if f.Result != "" {
		q.Set("result", f.Result)
	}
	if f.Course != "" {
		q.Set("course", f.Course)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListMatches returns the filtered matches, newest first.
func (c *APIClient) ListMatches(f logbook.Filter) ([]db.Match, error) {
	var resp []db.Match
	if err := c.do(http.MethodGet, "/api/v1/matches"+filterQuery(f), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Logbook is the month-grouped logbook.
type Logbook struct {
	Filter  logbook.Filter  `json:"filter"`
	Active  bool            `json:"active"`
	Total   int             `json:"total"`
	Groups  []logbook.Group `json:"groups"`
	Courses []string        `json:"courses"`
}

// Logbook returns the filtered matches grouped by month.
func (c *APIClient) Logbook(f logbook.Filter) (*Logbook, error) {
	var resp Logbook
	if err := c.do(http.MethodGet, "/api/v1/logbook"+filterQuery(f), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateMatch logs a match.
func (c *APIClient) CreateMatch(form logbook.Form) (*logbook.Logged, error) {
	var resp logbook.Logged
	if err := c.do(http.MethodPost, "/api/v1/matches", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMatch fetches one match.
func (c *APIClient) GetMatch(id string) (*db.Match, error) {
	var resp db.Match
	if err := c.do(http.MethodGet, "/api/v1/matches/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteMatch removes a match.
func (c *APIClient) DeleteMatch(id string) error {
	return c.do(http.MethodDelete, "/api/v1/matches/"+url.PathEscape(id), nil, nil)
}

// ListCourses returns every known course.
func (c *APIClient) ListCourses() ([]db.Course, error) {
	var resp []db.Course
	if err := c.do(http.MethodGet, "/api/v1/courses", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SuggestCourses returns the courses matching query.
func (c *APIClient) SuggestCourses(query string) ([]db.Course, error) {
	var resp []db.Course
	if err := c.do(http.MethodGet, "/api/v1/courses/suggest?q="+url.QueryEscape(query), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func yearQuery(year string) url.Values {
	q := url.Values{}
	if year != "" {
		q.Set("year", year)
	}
	return q
}

// Dashboard returns the stat cards and monthly histogram for year.
func (c *APIClient) Dashboard(year string) (*stats.Dashboard, error) {
	var resp stats.Dashboard
	path := "/api/v1/dashboard"
	if q := yearQuery(year); len(q) > 0 {
		path += "?" + q.Encode()
	}
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chart downloads the rendered performance chart.
func (c *APIClient) Chart(year, format string) ([]byte, error) {
	q := yearQuery(year)
	q.Set("format", format)
	return c.send(http.MethodGet, "/api/v1/dashboard/chart?"+q.Encode(), nil)
}
