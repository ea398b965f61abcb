package logbook

import (
	"fmt"
	"strings"
	"time"

	"github.com/matchbook/matchbook/internal/db"
)

// ValidationError is returned for input the player must correct.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Form is the add-match form.
type Form struct {
	Date       string `json:"date"`
	CourseName string `json:"course_name"`
	Format     string `json:"format"`
	Opponent   string `json:"opponent"`
	Result     string `json:"result"`
	Score      string `json:"score"`
}

// NewForm returns a form with the defaults: today, Singles, Win.
func NewForm(now time.Time) Form {
	return Form{
		Date:   now.Format(db.DateLayout),
		Format: db.FormatSingles,
		Result: db.ResultWin,
	}
}

// Normalize trims whitespace and fills defaulted fields left empty.
func (f *Form) Normalize(now time.Time) {
	f.Date = strings.TrimSpace(f.Date)
	f.CourseName = strings.TrimSpace(f.CourseName)
	f.Format = strings.TrimSpace(f.Format)
	f.Opponent = strings.TrimSpace(f.Opponent)
	f.Result = strings.TrimSpace(f.Result)
	f.Score = strings.TrimSpace(f.Score)

	def := NewForm(now)
	if f.Date == "" {
		f.Date = def.Date
	}
	if f.Format == "" {
		f.Format = def.Format
	}
	if f.Result == "" {
		f.Result = def.Result
	}
}

// Validate checks the form. Course and opponent are required.
func (f Form) Validate() error {
	if f.CourseName == "" || f.Opponent == "" {
		return invalid("please fill in course and opponent")
	}
	if _, err := time.Parse(db.DateLayout, f.Date); err != nil {
		return invalid("date must be YYYY-MM-DD, got %q", f.Date)
	}
	if !contains(db.Results, f.Result) {
		return invalid("result must be one of %s", strings.Join(db.Results, ", "))
	}
	if !contains(db.Formats, f.Format) {
		return invalid("format must be one of %s", strings.Join(db.Formats, ", "))
	}
	return nil
}
