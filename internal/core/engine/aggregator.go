package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
)

// MinWeekdaySample is the number of logged days a weekday needs before it can be the best weekday.
const MinWeekdaySample = 5

type HabitStatsInput struct {
	HabitID string
	// Series covers the query window.
	Series domain.LogSeries
	// History is the full log history, used for the best weekday. Nil falls back to Series.
	History  *domain.LogSeries
	Schedule domain.HabitSchedule
}

// HabitError ties a computation failure to the habit it belongs to.
type HabitError struct {
	HabitID string
	Err     error
}

func (e *HabitError) Error() string {
	return fmt.Sprintf("habit %s: %v", e.HabitID, e.Err)
}

func (e *HabitError) Unwrap() error {
	return e.Err
}

type HabitStatsAggregator struct {
	adherence   ScheduleAdherenceScorer
	consistency ConsistencyScorer
}

func NewHabitStatsAggregator() *HabitStatsAggregator {
	return &HabitStatsAggregator{}
}

func (a *HabitStatsAggregator) ComputeHabitStats(in HabitStatsInput) (domain.HabitStats, error) {
	if err := in.Schedule.Validate(); err != nil {
		return domain.HabitStats{}, &HabitError{HabitID: in.HabitID, Err: err}
	}

	streaks := NewStreakCalculator(in.Schedule).Compute(in.Series)
	scheduleScore := a.adherence.Score(in.Series, in.Schedule)

	history := in.Series
	if in.History != nil {
		history = *in.History
	}

	total := in.Series.Len()
	completed := in.Series.CompletedCount()

	return domain.HabitStats{
		HabitID:           in.HabitID,
		CurrentStreak:     streaks.Current,
		LongestStreak:     streaks.Longest,
		CompletionRate:    percent(completed, total),
		TotalLogs:         total,
		CompletedLogs:     completed,
		LastCompletedDate: streaks.LastCompleted,
		BestWeekday:       BestWeekday(history),
		ConsistencyScore:  a.consistency.Score(in.Series, streaks, scheduleScore),
	}, nil
}

// ComputeMany never drops a habit: a failing input yields zeroed stats that
// keep only the habit ID, and the failures come back joined as *HabitError values.
func (a *HabitStatsAggregator) ComputeMany(inputs []HabitStatsInput) ([]domain.HabitStats, error) {
	out := make([]domain.HabitStats, 0, len(inputs))
	var errs []error

	for _, in := range inputs {
		stats, err := a.ComputeHabitStats(in)
		if err != nil {
			errs = append(errs, err)
			stats = domain.HabitStats{HabitID: in.HabitID}
		}
		out = append(out, stats)
	}

	return out, errors.Join(errs...)
}

// BestWeekday picks the weekday with the highest completion rate among those
// with at least MinWeekdaySample entries. Ties go to the lower weekday.
func BestWeekday(history domain.LogSeries) *domain.Weekday {
	byDay := WeekdayRollup(history)

	var best *domain.Weekday
	bestRate := -1.0
	for i, r := range byDay {
		if r.Total < MinWeekdaySample {
			continue
		}
		rate := float64(r.Completed) / float64(r.Total)
		if rate > bestRate {
			bestRate = rate
			d := domain.Weekday(i + 1)
			best = &d
		}
	}
	return best
}

// ComputeUserStats aggregates per-habit stats. Both CurrentStreak and
// BestStreak are the highest current streak across habits; LongestStreak is
// the highest longest streak.
func ComputeUserStats(perHabit []domain.HabitStats) domain.UserStats {
	us := domain.UserStats{
		HabitCount: len(perHabit),
		Ranking:    make([]domain.HabitStats, len(perHabit)),
	}
	copy(us.Ranking, perHabit)

	if len(perHabit) == 0 {
		return us
	}

	var rateSum float64
	var streakSum int
	for _, s := range perHabit {
		rateSum += s.CompletionRate
		streakSum += s.CurrentStreak
		us.CurrentStreak = max(us.CurrentStreak, s.CurrentStreak)
		us.LongestStreak = max(us.LongestStreak, s.LongestStreak)
	}
	us.BestStreak = us.CurrentStreak
	us.OverallRate = round2(rateSum / float64(len(perHabit)))
	us.AverageStreak = round2(float64(streakSum) / float64(len(perHabit)))

	sort.SliceStable(us.Ranking, func(i, j int) bool {
		return us.Ranking[i].CompletionRate > us.Ranking[j].CompletionRate
	})

	return us
}
