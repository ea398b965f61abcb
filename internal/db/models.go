package db

import (
	"time"
)

// Match results.
const (
	ResultWin  = "Win"
	ResultLoss = "Loss"
	ResultHalf = "Half"
)

// Match formats.
const (
	FormatSingles    = "Singles"
	FormatBetterball = "Betterball"
	FormatFoursomes  = "Foursomes"
)

// DateLayout is the storage and wire layout of Match.Date.
const DateLayout = "2006-01-02"

// Results lists the valid match results in display order.
var Results = []string{ResultWin, ResultLoss, ResultHalf}

// Formats lists the valid match formats in display order.
var Formats = []string{FormatSingles, FormatBetterball, FormatFoursomes}

// User represents a player account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Course is a named golf venue shared by all players.
type Course struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Match is the result of one played round.
type Match struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	Date     string `json:"date"` // YYYY-MM-DD
	Format   string `json:"format"`
	Opponent string `json:"opponent"`
	Result   string `json:"result"`
	Score    string `json:"score"`

	CreatedAt time.Time `json:"created_at"`

	// Joined fields
	CourseName string `json:"course_name,omitempty"`
}

// PlayedOn parses Date. The zero time is returned for malformed dates.
func (m Match) PlayedOn() time.Time {
	t, err := time.Parse(DateLayout, m.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}
