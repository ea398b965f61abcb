package stats

import (
	"github.com/matchbook/matchbook/internal/db"
)

// MonthNames are the chart's x-axis labels.
var MonthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Month is one bar of the performance chart.
type Month struct {
	Name string `json:"name"`
	Win  int    `json:"win"`
	Loss int    `json:"loss"`
	Half int    `json:"half"`
}

// Total is the bar height.
func (m Month) Total() int { return m.Win + m.Loss + m.Half }

// Monthly buckets results by calendar month. Matches from different years
// share a bucket.
func Monthly(matches []db.Match) []Month {
	months := make([]Month, 12)
	for i := range months {
		months[i].Name = MonthNames[i]
	}
	for _, m := range matches {
		t := m.PlayedOn()
		if t.IsZero() {
			continue
		}
		b := &months[t.Month()-1]
		switch m.Result {
		case db.ResultWin:
			b.Win++
		case db.ResultLoss:
			b.Loss++
		case db.ResultHalf:
			b.Half++
		}
	}
	return months
}

// Peak returns the tallest bar.
func Peak(months []Month) int {
	peak := 0
	for _, m := range months {
		if t := m.Total(); t > peak {
			peak = t
		}
	}
	return peak
}
