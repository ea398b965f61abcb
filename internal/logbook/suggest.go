package logbook

import (
	"strings"
	"unicode/utf8"

	"github.com/matchbook/matchbook/internal/db"
)

// Suggest returns the courses whose name contains query, ignoring case.
// Queries of one character or less suggest nothing.
func Suggest(courses []db.Course, query string) []db.Course {
	out := []db.Course{}
	if utf8.RuneCountInString(query) <= 1 {
		return out
	}
	q := strings.ToLower(query)
	for _, c := range courses {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}
