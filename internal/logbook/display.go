package logbook

import (
	"github.com/matchbook/matchbook/internal/db"
)

// ResultClass maps a result to its colour class: win (green), loss (red),
// half (grey).
func ResultClass(result string) string {
	switch result {
	case db.ResultWin:
		return "win"
	case db.ResultLoss:
		return "loss"
	default:
		return "half"
	}
}

// DisplayScore shows "-" for a match with no recorded score.
func DisplayScore(score string) string {
	if score == "" {
		return "-"
	}
	return score
}

// DisplayDate formats a match date as "2 January 2006".
func DisplayDate(m db.Match) string {
	t := m.PlayedOn()
	if t.IsZero() {
		return m.Date
	}
	return t.Format("2 January 2006")
}

// DisplayCourse falls back to "Unknown Course" when the course is missing.
func DisplayCourse(m db.Match) string {
	if m.CourseName == "" {
		return "Unknown Course"
	}
	return m.CourseName
}
