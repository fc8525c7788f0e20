// Package engine turns a habit's log series into streaks, scores and
// projections. Nothing here performs I/O or reads the clock.
package engine

import (
	"time"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
)

type StreakResult struct {
	Current       int
	Longest       int
	LastCompleted *time.Time
}

// StreakCalculator counts runs of completed entries. Two neighbouring entries
// belong to the same run only when they are adjacent under the schedule:
// exactly one day apart for daily habits, or with no target weekday strictly
// between them for weekly habits. The same rule applies to the current and the
// longest streak, so Longest >= Current always holds.
type StreakCalculator struct {
	weekly  bool
	targets [8]bool
}

// NewStreakCalculator expects a validated schedule. The zero value behaves as daily.
func NewStreakCalculator(schedule domain.HabitSchedule) *StreakCalculator {
	return &StreakCalculator{
		weekly:  schedule.Frequency == domain.FrequencyWeekly,
		targets: schedule.Targets(),
	}
}

func (c *StreakCalculator) Compute(series domain.LogSeries) StreakResult {
	if series.Len() == 0 {
		return StreakResult{}
	}

	var res StreakResult
	res.LastCompleted = lastCompleted(series.Descending())
	res.Current = c.current(series.Descending())
	res.Longest = c.longest(series.Ascending())
	return res
}

// current scans newest first. A miss as the newest entry means no current streak.
func (c *StreakCalculator) current(desc []domain.LogEntry) int {
	if len(desc) == 0 || !desc[0].Completed {
		return 0
	}

	streak := 1
	for i := 1; i < len(desc); i++ {
		if !desc[i].Completed {
			break
		}
		if !c.adjacent(desc[i].Date, desc[i-1].Date) {
			break
		}
		streak++
	}
	return streak
}

func (c *StreakCalculator) longest(asc []domain.LogEntry) int {
	longest, run := 0, 0
	var prev time.Time

	for _, e := range asc {
		if !e.Completed {
			run = 0
			continue
		}

		if run > 0 && c.adjacent(prev, e.Date) {
			run++
		} else {
			run = 1
		}
		prev = e.Date

		if run > longest {
			longest = run
		}
	}
	return longest
}

func (c *StreakCalculator) adjacent(older, newer time.Time) bool {
	days := domain.DaysBetween(older, newer)
	switch {
	case days < 1:
		return false
	case days == 1:
		return true
	case !c.weekly, days > 7:
		return false
	}

	for i := 1; i < days; i++ {
		if c.targets[domain.WeekdayOf(older.AddDate(0, 0, i))] {
			return false
		}
	}
	return true
}

func lastCompleted(desc []domain.LogEntry) *time.Time {
	for _, e := range desc {
		if e.Completed {
			d := e.Date
			return &d
		}
	}
	return nil
}
