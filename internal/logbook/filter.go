// Package logbook implements the match log: list filters, month grouping,
// course autocomplete, and the add-match write path.
package logbook

import (
	"fmt"
	"sort"
	"time"

	"github.com/matchbook/matchbook/internal/db"
)

// All disables a filter dimension.
const All = "All"

// Periods.
const (
	PeriodLast30Days = "Last 30 Days"
	PeriodThisYear   = "This Year"
	PeriodLastYear   = "Last Year"
)

// Periods lists the period options in display order.
var Periods = []string{All, PeriodLast30Days, PeriodThisYear, PeriodLastYear}

// Filter narrows the logbook list.
type Filter struct {
	Period string `json:"period"`
	Result string `json:"result"`
	Course string `json:"course"`
}

// ParseFilter normalizes empty fields to All and rejects unknown periods and
// results.
func ParseFilter(period, result, course string) (Filter, error) {
	f := Filter{Period: period, Result: result, Course: course}
	if f.Period == "" {
		f.Period = All
	}
	if f.Result == "" {
		f.Result = All
	}
	if f.Course == "" {
		f.Course = All
	}
	if !contains(Periods, f.Period) {
		return Filter{}, fmt.Errorf("unknown period %q", period)
	}
	if f.Result != All && !contains(db.Results, f.Result) {
		return Filter{}, fmt.Errorf("unknown result %q", result)
	}
	return f, nil
}

// Active reports whether any dimension is narrowing the list.
func (f Filter) Active() bool {
	return (f.Period != "" && f.Period != All) ||
		(f.Result != "" && f.Result != All) ||
		(f.Course != "" && f.Course != All)
}

// Match reports whether m passes every predicate of f. now anchors the
// relative periods.
func (f Filter) Match(m db.Match, now time.Time) bool {
	now = now.UTC()
	d := m.PlayedOn()
	switch f.Period {
	case PeriodLast30Days:
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if d.Before(today.AddDate(0, 0, -30)) {
			return false
		}
	case PeriodThisYear:
		if d.Year() != now.Year() {
			return false
		}
	case PeriodLastYear:
		if d.Year() != now.Year()-1 {
			return false
		}
	}
	if f.Result != "" && f.Result != All && m.Result != f.Result {
		return false
	}
	if f.Course != "" && f.Course != All && m.CourseName != f.Course {
		return false
	}
	return true
}

// Apply returns the matches that pass f, preserving order.
func Apply(matches []db.Match, f Filter, now time.Time) []db.Match {
	out := make([]db.Match, 0, len(matches))
	for _, m := range matches {
		if f.Match(m, now) {
			out = append(out, m)
		}
	}
	return out
}

// Group is a run of matches sharing a month heading.
type Group struct {
	Title string     `json:"title"`
	Items []db.Match `json:"items"`
}

// GroupByMonth groups consecutive matches by "January 2006" heading. Order is
// preserved, so newest-first input gives newest-first groups.
func GroupByMonth(matches []db.Match) []Group {
	groups := []Group{}
	for _, m := range matches {
		title := m.PlayedOn().Format("January 2006")
		if n := len(groups); n > 0 && groups[n-1].Title == title {
			groups[n-1].Items = append(groups[n-1].Items, m)
			continue
		}
		groups = append(groups, Group{Title: title, Items: []db.Match{m}})
	}
	return groups
}

// UniqueCourses returns the sorted distinct course names played.
func UniqueCourses(matches []db.Match) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, m := range matches {
		if m.CourseName == "" || seen[m.CourseName] {
			continue
		}
		seen[m.CourseName] = true
		names = append(names, m.CourseName)
	}
	sort.Strings(names)
	return names
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
