package domain

import (
	"errors"
	"fmt"
	"time"
)

type HabitStats struct {
	HabitID           string     `json:"habit_id,omitempty"`
	CurrentStreak     int        `json:"current_streak"`
	LongestStreak     int        `json:"longest_streak"`
	CompletionRate    float64    `json:"completion_rate"`
	TotalLogs         int        `json:"total_logs"`
	CompletedLogs     int        `json:"completed_logs"`
	LastCompletedDate *time.Time `json:"last_completed_date"`
	BestWeekday       *Weekday   `json:"best_weekday"`
	ConsistencyScore  int        `json:"consistency_score"`
}

type UserStats struct {
	HabitCount     int          `json:"habit_count"`
	OverallRate    float64      `json:"overall_completion_rate"`
	CurrentStreak  int          `json:"current_streak"`
	BestStreak     int          `json:"best_streak"`
	LongestStreak  int          `json:"longest_streak"`
	AverageStreak  float64      `json:"average_streak"`
	Ranking        []HabitStats `json:"ranking"`
	DegradedHabits []string     `json:"degraded_habits,omitempty"`
}

type MilestoneProjection struct {
	NextMilestone        int `json:"next_milestone"`
	EstimatedDaysToReach int `json:"estimated_days_to_reach"`
	Confidence           int `json:"confidence"`
}

// Rollup is a completed/total tally for one bucket of a weekday or month breakdown.
type Rollup struct {
	Completed      int     `json:"completed"`
	Total          int     `json:"total"`
	CompletionRate float64 `json:"completion_rate"`
}

type Breakdown struct {
	HabitID   string     `json:"habit_id"`
	ByWeekday [7]Rollup  `json:"by_weekday"`
	ByMonth   [12]Rollup `json:"by_month"`
}

// StatsInput carries the caller's explicit window. EndDate doubles as "today".
type StatsInput struct {
	UserID    string
	HabitID   string
	StartDate time.Time
	EndDate   time.Time
}

var ErrInvalidDateRange = errors.New("start date must not be after end date")

func (in StatsInput) Validate() error {
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return fmt.Errorf("%w: both dates are required", ErrInvalidDateRange)
	}
	if NormalizeDate(in.StartDate).After(NormalizeDate(in.EndDate)) {
		return ErrInvalidDateRange
	}
	return nil
}
