package engine

import "github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"

// WeekdayRollup tallies entries per weekday. Index 0 is Monday, 6 is Sunday.
func WeekdayRollup(series domain.LogSeries) [7]domain.Rollup {
	var out [7]domain.Rollup
	for _, e := range series.Entries() {
		r := &out[domain.WeekdayOf(e.Date)-1]
		r.Total++
		if e.Completed {
			r.Completed++
		}
	}
	for i := range out {
		out[i].CompletionRate = percent(out[i].Completed, out[i].Total)
	}
	return out
}

// MonthRollup tallies entries per calendar month across years. Index 0 is January.
func MonthRollup(series domain.LogSeries) [12]domain.Rollup {
	var out [12]domain.Rollup
	for _, e := range series.Entries() {
		r := &out[e.Date.Month()-1]
		r.Total++
		if e.Completed {
			r.Completed++
		}
	}
	for i := range out {
		out[i].CompletionRate = percent(out[i].Completed, out[i].Total)
	}
	return out
}
