package api

import (
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matchbook/matchbook/internal/auth"
	"github.com/matchbook/matchbook/internal/db"
	"github.com/matchbook/matchbook/internal/logbook"
	"github.com/matchbook/matchbook/internal/stats"
)

type pageData struct {
	Title string
	Nav   string
	User  *auth.Claims
	Error string
}

type loginPage struct {
	pageData
	Email    string
	Name     string
	Register bool
}

type dashboardPage struct {
	pageData
	Dashboard stats.Dashboard
	AllTime   string
	ChartURL  string
}

type logbookPage struct {
	pageData
	Filter   logbook.Filter
	Active   bool
	All      string
	Periods  []string
	Results  []string
	Formats  []string
	Courses  []string
	Groups   []logbook.Group
	ShowForm bool
	Form     logbook.Form
	Known    []db.Course
}

// internalPageError logs err and answers with a bare 500.
func (s *Server) internalPageError(w http.ResponseWriter, r *http.Request, message string, err error) {
	s.logger.Error(message,
		zap.String("request_id", requestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.auth.ValidateJWT(sessionToken(r)); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", loginPage{
		pageData: pageData{Title: "Sign in"},
		Register: r.URL.Query().Get("mode") == "register",
	})
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := loginRequest{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}

	sess, err := s.login(r.Context(), req)
	if err != nil {
		var bad *badRequestError
		page := loginPage{pageData: pageData{Title: "Sign in"}, Email: req.Email}
		switch {
		case errors.As(err, &bad):
			page.Error = bad.msg
			s.render(w, r, http.StatusBadRequest, "login.html", page)
		case errors.Is(err, errInvalidCredentials):
			page.Error = "Invalid email or password."
			s.render(w, r, http.StatusUnauthorized, "login.html", page)
		default:
			s.internalPageError(w, r, "failed to log in", err)
		}
		return
	}
	s.setSessionCookie(w, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := registerRequest{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Name:     r.PostFormValue("name"),
	}

	sess, err := s.register(r.Context(), req)
	if err != nil {
		var bad *badRequestError
		page := loginPage{pageData: pageData{Title: "Create account"}, Email: req.Email, Name: req.Name, Register: true}
		switch {
		case errors.As(err, &bad):
			page.Error = bad.msg
			s.render(w, r, http.StatusBadRequest, "login.html", page)
		case errors.Is(err, db.ErrDuplicate):
			page.Error = "That email is already registered."
			s.render(w, r, http.StatusConflict, "login.html", page)
		default:
			s.internalPageError(w, r, "failed to create user", err)
		}
		return
	}
	s.setSessionCookie(w, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	page := dashboardPage{
		pageData: pageData{Title: "Dashboard", Nav: "dashboard", User: claims},
		AllTime:  stats.AllTime,
	}

	year, err := yearFromQuery(r)
	if err != nil {
		page.Error = err.Error()
		year = stats.AllTime
	}

	dash, err := s.buildDashboard(r, claims.UserID, year)
	if err != nil {
		s.internalPageError(w, r, "failed to build dashboard", err)
		return
	}
	page.Dashboard = dash

	q := url.Values{}
	q.Set("year", dash.Filter)
	q.Set("format", "svg")
	page.ChartURL = "/api/v1/dashboard/chart?" + q.Encode()

	s.render(w, r, http.StatusOK, "dashboard.html", page)
}

// logbookView loads the logbook page for f. Matches and the course list are
// fetched concurrently.
func (s *Server) logbookView(r *http.Request, claims *auth.Claims, f logbook.Filter) (logbookPage, error) {
	var (
		all   []db.Match
		known []db.Course
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		all, err = s.store.ListMatches(ctx, claims.UserID, db.NewestFirst)
		return err
	})
	g.Go(func() error {
		var err error
		known, err = s.store.ListCourses(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return logbookPage{}, err
	}

	matches := logbook.Apply(all, f, s.opts.Now())
	return logbookPage{
		pageData: pageData{Title: "Logbook", Nav: "logbook", User: claims},
		Filter:   f,
		Active:   f.Active(),
		All:      logbook.All,
		Periods:  logbook.Periods,
		Results:  db.Results,
		Formats:  db.Formats,
		Courses:  logbook.UniqueCourses(all),
		Groups:   logbook.GroupByMonth(matches),
		Form:     logbook.NewForm(s.opts.Now()),
		Known:    known,
	}, nil
}

func (s *Server) handleLogbookPage(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())

	f, filterErr := filterFromQuery(r)
	if filterErr != nil {
		f, _ = logbook.ParseFilter("", "", "")
	}

	page, err := s.logbookView(r, claims, f)
	if err != nil {
		s.internalPageError(w, r, "failed to load logbook", err)
		return
	}
	if filterErr != nil {
		page.Error = filterErr.Error()
	}
	page.ShowForm = r.URL.Query().Get("new") == "true"
	s.render(w, r, http.StatusOK, "logbook.html", page)
}

func (s *Server) handleLogbookSubmit(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := logbook.Form{
		Date:       r.PostFormValue("date"),
		CourseName: r.PostFormValue("course_name"),
		Format:     r.PostFormValue("format"),
		Opponent:   r.PostFormValue("opponent"),
		Result:     r.PostFormValue("result"),
		Score:      r.PostFormValue("score"),
	}

	_, err := s.logMatch(r, claims.UserID, form)
	if err == nil {
		http.Redirect(w, r, "/logbook", http.StatusSeeOther)
		return
	}

	var verr *logbook.ValidationError
	if !errors.As(err, &verr) {
		s.internalPageError(w, r, "failed to save match", err)
		return
	}

	f, _ := logbook.ParseFilter("", "", "")
	page, err := s.logbookView(r, claims, f)
	if err != nil {
		s.internalPageError(w, r, "failed to load logbook", err)
		return
	}
	page.ShowForm = true
	page.Form = form
	page.Error = verr.Message
	s.render(w, r, http.StatusBadRequest, "logbook.html", page)
}

func (s *Server) handleLogbookDelete(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	id := r.PathValue("id")

	err := s.store.DeleteMatch(r.Context(), claims.UserID, id)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		s.internalPageError(w, r, "failed to delete match", err)
		return
	}
	http.Redirect(w, r, "/logbook", http.StatusSeeOther)
}
