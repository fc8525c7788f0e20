package domain

import (
	"sort"
	"time"
)

const DateLayout = "2006-01-02"

// NormalizeDate drops the time component, keeping the calendar date the
// timestamp carries in its own location, and returns it as UTC midnight.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
// Both dates are normalized first, so the result is exact regardless of time of day.
func DaysBetween(a, b time.Time) int {
	return int(NormalizeDate(b).Sub(NormalizeDate(a)).Hours() / 24)
}

type LogEntry struct {
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
}

// LogSeries is the per-habit input to the engine. Dates without an entry are
// absent, not missed. At most one entry per date is expected; the series does
// not deduplicate.
type LogSeries struct {
	StartDate time.Time
	EndDate   time.Time
	entries   []LogEntry
}

// NewLogSeries copies entries so later changes by the caller cannot leak in.
func NewLogSeries(start, end time.Time, entries []LogEntry) LogSeries {
	cp := make([]LogEntry, len(entries))
	for i, e := range entries {
		cp[i] = LogEntry{Date: NormalizeDate(e.Date), Completed: e.Completed}
	}

	return LogSeries{
		StartDate: NormalizeDate(start),
		EndDate:   NormalizeDate(end),
		entries:   cp,
	}
}

func (s LogSeries) Len() int {
	return len(s.entries)
}

func (s LogSeries) Entries() []LogEntry {
	out := make([]LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s LogSeries) CompletedCount() int {
	n := 0
	for _, e := range s.entries {
		if e.Completed {
			n++
		}
	}
	return n
}

// Ascending returns a copy of the entries sorted oldest first.
func (s LogSeries) Ascending() []LogEntry {
	out := s.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Descending returns a copy of the entries sorted newest first.
func (s LogSeries) Descending() []LogEntry {
	out := s.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
