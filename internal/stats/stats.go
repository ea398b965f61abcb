// Package stats computes the dashboard aggregates over a player's match
// history: record, unbeaten streak, favourite course, best win and the
// month-by-month result histogram.
package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/matchbook/matchbook/internal/db"
)

// AllTime is the year filter that keeps every match.
const AllTime = "All Time"

// None is shown for stats that have no qualifying match.
const None = "-"

// UnknownCourse names wins whose course could not be joined.
const UnknownCourse = "Unknown"

// Summary holds the dashboard stat cards.
type Summary struct {
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	Halves         int     `json:"halves"`
	Total          int     `json:"total"`
	Record         string  `json:"record"`
	WinRate        float64 `json:"win_rate"`
	UnbeatenStreak int     `json:"unbeaten_streak"`
	FavoriteCourse string  `json:"favorite_course"`
	BestWin        string  `json:"best_win"`
}

// AvailableYears returns the distinct years present in matches, newest first.
func AvailableYears(matches []db.Match) []int {
	seen := make(map[int]bool)
	var years []int
	for _, m := range matches {
		t := m.PlayedOn()
		if t.IsZero() {
			continue
		}
		if y := t.Year(); !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// ValidYearFilter reports whether filter is AllTime, empty, or a four-digit year.
func ValidYearFilter(filter string) bool {
	if filter == "" || filter == AllTime {
		return true
	}
	if len(filter) != 4 {
		return false
	}
	_, err := strconv.Atoi(filter)
	return err == nil
}

// FilterByYear keeps the matches played in the given year. AllTime and the
// empty string keep everything.
func FilterByYear(matches []db.Match, filter string) []db.Match {
	if filter == "" || filter == AllTime {
		return matches
	}
	out := make([]db.Match, 0, len(matches))
	for _, m := range matches {
		t := m.PlayedOn()
		if !t.IsZero() && strconv.Itoa(t.Year()) == filter {
			out = append(out, m)
		}
	}
	return out
}

// Summarize computes the stat cards. matches must be ordered oldest first.
func Summarize(matches []db.Match) Summary {
	var s Summary
	for _, m := range matches {
		switch m.Result {
		case db.ResultWin:
			s.Wins++
		case db.ResultLoss:
			s.Losses++
		case db.ResultHalf:
			s.Halves++
		}
	}
	s.Total = len(matches)
	s.Record = fmt.Sprintf("%d-%d-%d", s.Wins, s.Losses, s.Halves)
	if s.Total > 0 {
		s.WinRate = float64(s.Wins) * 100 / float64(s.Total)
	}
	s.UnbeatenStreak = UnbeatenStreak(matches)
	s.FavoriteCourse = FavoriteCourse(matches)
	s.BestWin = BestWin(matches)
	return s
}

// UnbeatenStreak counts back from the most recent match to the first loss.
func UnbeatenStreak(matches []db.Match) int {
	streak := 0
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i].Result == db.ResultLoss {
			break
		}
		streak++
	}
	return streak
}

// FavoriteCourse returns the course with the most wins. On a tie the course
// whose first win came later is chosen.
func FavoriteCourse(matches []db.Match) string {
	counts := make(map[string]int)
	var order []string
	for _, m := range matches {
		if m.Result != db.ResultWin {
			continue
		}
		name := m.CourseName
		if name == "" {
			name = UnknownCourse
		}
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
	}
	if len(order) == 0 {
		return None
	}
	best := order[0]
	for _, name := range order[1:] {
		if counts[best] <= counts[name] {
			best = name
		}
	}
	return best
}

// BestWin returns the score of the earliest win whose score contains "&"
// ("3 & 2", "3&2 (conceded)"). Wins by holes ("1 up", "19th") never qualify.
func BestWin(matches []db.Match) string {
	for _, m := range matches {
		if m.Result == db.ResultWin && strings.Contains(m.Score, "&") {
			return m.Score
		}
	}
	return None
}
