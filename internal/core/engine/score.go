package engine

import (
	"math"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/core/domain"
)

const (
	completionWeight = 50.0
	streakWeight     = 30.0
	scheduleWeight   = 20.0
)

// ScheduleAdherenceScorer produces the 0..20 schedule component of the consistency score.
type ScheduleAdherenceScorer struct{}

// Score for daily habits is all or nothing: full marks as soon as one entry
// is completed. Weekly habits are scored on completed entries against the
// distinct logged dates that fall on a target weekday.
func (ScheduleAdherenceScorer) Score(series domain.LogSeries, schedule domain.HabitSchedule) float64 {
	completed := series.CompletedCount()

	if schedule.Frequency != domain.FrequencyWeekly {
		if completed > 0 {
			return scheduleWeight
		}
		return 0
	}

	targets := schedule.Targets()
	seen := make(map[int64]bool, series.Len())
	expected := 0
	for _, e := range series.Entries() {
		key := e.Date.Unix()
		if seen[key] {
			continue
		}
		seen[key] = true
		if targets[domain.WeekdayOf(e.Date)] {
			expected++
		}
	}

	if expected == 0 {
		return 0
	}
	return math.Min(scheduleWeight, float64(completed)/float64(expected)*scheduleWeight)
}

type ConsistencyScorer struct{}

// Score blends completion (50), streak stability (30) and schedule adherence (20).
func (ConsistencyScorer) Score(series domain.LogSeries, streaks StreakResult, scheduleScore float64) int {
	var completion float64
	if total := series.Len(); total > 0 {
		completion = float64(series.CompletedCount()) / float64(total) * completionWeight
	}

	streak := math.Min(float64(streaks.Current)/float64(max(streaks.Longest, 1))*streakWeight, streakWeight)
	schedule := math.Max(0, math.Min(scheduleScore, scheduleWeight))

	score := int(math.Round(completion + streak + schedule))
	return min(max(score, 0), 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}
