package engine_test

import (
	"time"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
)

// today is a Monday.
var today = domain.Date(2024, 1, 15)

func daysAgo(n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func done(d time.Time) domain.LogEntry {
	return domain.LogEntry{Date: d, Completed: true}
}

func missed(d time.Time) domain.LogEntry {
	return domain.LogEntry{Date: d, Completed: false}
}

func series(entries ...domain.LogEntry) domain.LogSeries {
	return domain.NewLogSeries(today.AddDate(0, 0, -90), today, entries)
}

func contiguous(n int) domain.LogSeries {
	entries := make([]domain.LogEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, done(daysAgo(i)))
	}
	return series(entries...)
}
