package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/engine"
)

func TestHabitStatsAggregator_ComputeHabitStats(t *testing.T) {
	agg := engine.NewHabitStatsAggregator()

	t.Run("Empty series degrades to zero values", func(t *testing.T) {
		stats, err := agg.ComputeHabitStats(engine.HabitStatsInput{
			HabitID:  "h1",
			Series:   series(),
			Schedule: domain.DailySchedule(),
		})
		require.NoError(t, err)

		assert.Equal(t, domain.HabitStats{HabitID: "h1"}, stats)
	})

	t.Run("Seven completed days in a row", func(t *testing.T) {
		stats, err := agg.ComputeHabitStats(engine.HabitStatsInput{
			Series:   contiguous(7),
			Schedule: domain.DailySchedule(),
		})
		require.NoError(t, err)

		assert.Equal(t, 7, stats.CurrentStreak)
		assert.Equal(t, 7, stats.LongestStreak)
		assert.Equal(t, 100.0, stats.CompletionRate)
		assert.Equal(t, 7, stats.TotalLogs)
		assert.Equal(t, 7, stats.CompletedLogs)
		assert.Equal(t, 100, stats.ConsistencyScore)
		require.NotNil(t, stats.LastCompletedDate)
		assert.Equal(t, today, *stats.LastCompletedDate)
		assert.Nil(t, stats.BestWeekday, "one sample per weekday is below the minimum")
	})

	t.Run("Recent miss", func(t *testing.T) {
		stats, err := agg.ComputeHabitStats(engine.HabitStatsInput{
			Series:   series(missed(daysAgo(1)), done(daysAgo(2)), done(daysAgo(3))),
			Schedule: domain.DailySchedule(),
		})
		require.NoError(t, err)

		assert.Equal(t, 0, stats.CurrentStreak)
		assert.Equal(t, 2, stats.LongestStreak)
		assert.Equal(t, 66.67, stats.CompletionRate)
	})

	t.Run("Weekly habit with every target day completed", func(t *testing.T) {
		stats, err := agg.ComputeHabitStats(engine.HabitStatsInput{
			Series:   threeWeeksMWF(),
			Schedule: domain.WeeklySchedule(domain.Monday, domain.Wednesday, domain.Friday),
		})
		require.NoError(t, err)

		assert.Equal(t, 100.0, stats.CompletionRate)
		assert.Equal(t, 9, stats.CurrentStreak)
		assert.Equal(t, 100, stats.ConsistencyScore)
	})

	t.Run("Invalid schedule is reported, not computed", func(t *testing.T) {
		_, err := agg.ComputeHabitStats(engine.HabitStatsInput{
			HabitID:  "bad",
			Series:   contiguous(3),
			Schedule: domain.HabitSchedule{Frequency: domain.FrequencyWeekly},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
		assert.Contains(t, err.Error(), "bad")
	})

	t.Run("Identical inputs give identical output", func(t *testing.T) {
		in := engine.HabitStatsInput{
			HabitID:  "h1",
			Series:   series(done(daysAgo(0)), missed(daysAgo(1)), done(daysAgo(2)), done(daysAgo(3))),
			Schedule: domain.DailySchedule(),
		}
		first, err := agg.ComputeHabitStats(in)
		require.NoError(t, err)
		second, err := agg.ComputeHabitStats(in)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestBestWeekday(t *testing.T) {
	mon := domain.Date(2024, 1, 1)

	weeks := func(offset, n int, completed func(week int) bool) []domain.LogEntry {
		var out []domain.LogEntry
		for w := 0; w < n; w++ {
			out = append(out, domain.LogEntry{Date: mon.AddDate(0, 0, 7*w+offset), Completed: completed(w)})
		}
		return out
	}
	always := func(int) bool { return true }

	t.Run("Below the minimum sample no weekday qualifies", func(t *testing.T) {
		h := series(weeks(0, 4, always)...)
		assert.Nil(t, engine.BestWeekday(h))
	})

	t.Run("Highest rate wins", func(t *testing.T) {
		var entries []domain.LogEntry
		entries = append(entries, weeks(0, 5, func(w int) bool { return w < 3 })...)
		entries = append(entries, weeks(1, 6, func(w int) bool { return w != 0 })...)
		entries = append(entries, weeks(2, 4, always)...)

		best := engine.BestWeekday(series(entries...))
		require.NotNil(t, best)
		assert.Equal(t, domain.Tuesday, *best, "Wednesday is perfect but has only four samples")
	})

	t.Run("Ties prefer the lower weekday", func(t *testing.T) {
		var entries []domain.LogEntry
		entries = append(entries, weeks(6, 5, always)...)
		entries = append(entries, weeks(3, 5, always)...)

		best := engine.BestWeekday(series(entries...))
		require.NotNil(t, best)
		assert.Equal(t, domain.Thursday, *best)
	})

	t.Run("Uses history rather than the window", func(t *testing.T) {
		agg := engine.NewHabitStatsAggregator()
		history := series(weeks(4, 5, always)...)

		stats, err := agg.ComputeHabitStats(engine.HabitStatsInput{
			Series:   series(done(daysAgo(0))),
			History:  &history,
			Schedule: domain.DailySchedule(),
		})
		require.NoError(t, err)
		require.NotNil(t, stats.BestWeekday)
		assert.Equal(t, domain.Friday, *stats.BestWeekday)
	})
}

func TestHabitStatsAggregator_ComputeMany(t *testing.T) {
	agg := engine.NewHabitStatsAggregator()

	inputs := []engine.HabitStatsInput{
		{HabitID: "ok-1", Series: contiguous(3), Schedule: domain.DailySchedule()},
		{HabitID: "broken", Series: contiguous(5), Schedule: domain.HabitSchedule{Frequency: "hourly"}},
		{HabitID: "ok-2", Series: contiguous(2), Schedule: domain.DailySchedule()},
	}

	stats, err := agg.ComputeMany(inputs)

	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
	var habitErr *engine.HabitError
	require.ErrorAs(t, err, &habitErr)
	assert.Equal(t, "broken", habitErr.HabitID)

	require.Len(t, stats, 3, "a failing habit must not abort the others")
	assert.Equal(t, 3, stats[0].CurrentStreak)
	assert.Equal(t, domain.HabitStats{HabitID: "broken"}, stats[1])
	assert.Equal(t, 2, stats[2].CurrentStreak)
}

func TestComputeUserStats(t *testing.T) {
	t.Run("No habits", func(t *testing.T) {
		us := engine.ComputeUserStats(nil)

		assert.Equal(t, 0, us.HabitCount)
		assert.Equal(t, 0.0, us.OverallRate)
		assert.Equal(t, 0.0, us.AverageStreak)
		assert.NotNil(t, us.Ranking)
		assert.Empty(t, us.Ranking)
	})

	t.Run("Aggregates and ranks with stable ties", func(t *testing.T) {
		perHabit := []domain.HabitStats{
			{HabitID: "h1", CompletionRate: 50, CurrentStreak: 2, LongestStreak: 9},
			{HabitID: "h2", CompletionRate: 80, CurrentStreak: 5, LongestStreak: 5},
			{HabitID: "h3", CompletionRate: 50, CurrentStreak: 3, LongestStreak: 4},
		}

		us := engine.ComputeUserStats(perHabit)

		assert.Equal(t, 3, us.HabitCount)
		assert.Equal(t, 60.0, us.OverallRate)
		assert.Equal(t, 5, us.CurrentStreak)
		assert.Equal(t, 5, us.BestStreak)
		assert.Equal(t, 9, us.LongestStreak)
		assert.Equal(t, 3.33, us.AverageStreak)

		ids := make([]string, 0, len(us.Ranking))
		for _, s := range us.Ranking {
			ids = append(ids, s.HabitID)
		}
		assert.Equal(t, []string{"h2", "h1", "h3"}, ids)
		assert.Equal(t, "h1", perHabit[0].HabitID, "input slice is not reordered")
	})
}
