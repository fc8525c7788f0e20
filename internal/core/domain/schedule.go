package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrInvalidSchedule  = errors.New("invalid habit schedule")
	ErrInvalidFrequency = errors.New("invalid frequency (must be daily or weekly)")
	ErrInvalidWeekdays  = errors.New("invalid weekdays (must be 1-7)")
	ErrNoTargetWeekdays = errors.New("weekly schedule requires at least one target weekday")
)

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Weekday numbers days ISO style: 1=Monday through 7=Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return time.Weekday(int(d) % 7).String()
}

// WeekdayOf remaps time.Weekday (0=Sunday) onto the 1..7 numbering.
func WeekdayOf(t time.Time) Weekday {
	wd := int(t.Weekday())
	if wd == 0 {
		return Sunday
	}
	return Weekday(wd)
}

type HabitSchedule struct {
	Frequency      Frequency `json:"frequency"`
	TargetWeekdays []Weekday `json:"target_weekdays,omitempty"`
}

func DailySchedule() HabitSchedule {
	return HabitSchedule{Frequency: FrequencyDaily}
}

// WeeklySchedule builds a weekly schedule with its weekdays deduplicated and sorted.
// The result is not validated; call Validate before handing it to the engine.
func WeeklySchedule(days ...Weekday) HabitSchedule {
	return HabitSchedule{Frequency: FrequencyWeekly, TargetWeekdays: normalizeWeekdays(days)}
}

func (s HabitSchedule) Validate() error {
	switch s.Frequency {
	case FrequencyDaily:
	case FrequencyWeekly:
		if len(s.TargetWeekdays) == 0 {
			return fmt.Errorf("%w: %w", ErrInvalidSchedule, ErrNoTargetWeekdays)
		}
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidSchedule, ErrInvalidFrequency, s.Frequency)
	}

	for _, d := range s.TargetWeekdays {
		if !d.Valid() {
			return fmt.Errorf("%w: %w: %d", ErrInvalidSchedule, ErrInvalidWeekdays, d)
		}
	}
	return nil
}

// Targets reports, per weekday index, whether activity is expected on that day.
// Daily schedules expect activity every day. Index 0 is unused.
func (s HabitSchedule) Targets() [8]bool {
	var set [8]bool
	if s.Frequency != FrequencyWeekly {
		for d := Monday; d <= Sunday; d++ {
			set[d] = true
		}
		return set
	}
	for _, d := range s.TargetWeekdays {
		if d.Valid() {
			set[d] = true
		}
	}
	return set
}

func normalizeWeekdays(days []Weekday) []Weekday {
	if len(days) == 0 {
		return nil
	}

	seen := make(map[Weekday]bool, len(days))
	var unique []Weekday
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			unique = append(unique, d)
		}
	}

	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return unique
}
