package stats

import "github.com/matchbook/matchbook/internal/db"

// Dashboard is everything the dashboard view shows for one year filter.
type Dashboard struct {
	Filter  string  `json:"filter"`
	Years   []int   `json:"years"`
	Summary Summary `json:"summary"`
	Monthly []Month `json:"monthly"`
}

// Build filters matches (oldest first) by year and computes the dashboard.
// The year list always comes from the unfiltered history.
func Build(matches []db.Match, yearFilter string) Dashboard {
	if yearFilter == "" {
		yearFilter = AllTime
	}
	filtered := FilterByYear(matches, yearFilter)
	years := AvailableYears(matches)
	if years == nil {
		years = []int{}
	}
	return Dashboard{
		Filter:  yearFilter,
		Years:   years,
		Summary: Summarize(filtered),
		Monthly: Monthly(filtered),
	}
}
